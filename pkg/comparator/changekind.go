package comparator

import (
	"strings"

	"github.com/licencecheck/licencecheck/pkg/licence"
)

// ChangeKind is one of the categories a driver can be flagged under. Errors
// are kept separately on the report because they carry messages, not keys.
type ChangeKind int

const (
	ChangeClass ChangeKind = iota
	ChangeStatus
	ChangeComments
	ChangeExpiringLicence
	ChangeExpiringMedical
)

var ChangeKinds = []ChangeKind{
	ChangeClass,
	ChangeStatus,
	ChangeComments,
	ChangeExpiringLicence,
	ChangeExpiringMedical,
}

const ErrorsCategory = "errors"

func (k ChangeKind) String() string {
	switch k {
	case ChangeClass:
		return "class"
	case ChangeStatus:
		return "status"
	case ChangeComments:
		return "comments"
	case ChangeExpiringLicence:
		return "expiring_licences"
	case ChangeExpiringMedical:
		return "expiring_medicals"
	}

	return "unknown"
}

// Label is the display name of the field the kind looks at
func (k ChangeKind) Label() string {
	switch k {
	case ChangeClass:
		return "Class"
	case ChangeStatus:
		return "Licence Status"
	case ChangeComments:
		return "Comments"
	case ChangeExpiringLicence:
		return "Expiry Date"
	case ChangeExpiringMedical:
		return "Medical Due Date"
	}

	return ""
}

// Title is the heading used in reports, eg. EXPIRING LICENCES
func (k ChangeKind) Title() string {
	return strings.ToUpper(strings.ReplaceAll(k.String(), "_", " "))
}

// Value reads the field the kind looks at from a record
func (k ChangeKind) Value(record *licence.DriverRecord) string {
	switch k {
	case ChangeClass:
		return record.Class
	case ChangeStatus:
		return record.LicenceStatus
	case ChangeComments:
		return record.CommentText()
	case ChangeExpiringLicence:
		return record.ExpiryDate
	case ChangeExpiringMedical:
		return record.MedicalDueDate
	}

	return ""
}

// IsExpiry is true for the kinds raised by a date window rather than a
// difference between the two days
func (k ChangeKind) IsExpiry() bool {
	return k == ChangeExpiringLicence || k == ChangeExpiringMedical
}
