package licence

import (
	"strings"
	"time"

	"github.com/licencecheck/licencecheck/pkg/util"
)

const (
	AirBrakeEndorsement = "AIR BRAKE ENDORSEMENT"
	AirBrakeClass       = "Z"
	StatusLicenced      = "LICENCED"

	CommentSeparator = "; "
)

type DriverRecord struct {
	ClientName     string   `json:"ClientName"`
	LicenceNumber  string   `json:"LicenceNumber"`
	Class          string   `json:"Class"`
	ExpiryDate     string   `json:"ExpiryDate"`
	LicenceStatus  string   `json:"LicenceStatus"`
	MedicalDueDate string   `json:"MedicalDueDate"`
	Comments       []string `json:"Comments"`
}

func (r *DriverRecord) Key() string {
	return NormalizeKey(r.LicenceNumber)
}

// Finalize closes a record with its collected comments. An air brake
// endorsement is folded into the class as a trailing Z and removed from the
// comments. Calling it again on an already finalized record changes nothing.
func (r *DriverRecord) Finalize(pending []string) {
	comments := append([]string{}, pending...)

	if util.ContainsString(comments, AirBrakeEndorsement) {
		if !strings.HasSuffix(r.Class, AirBrakeClass) {
			r.Class += AirBrakeClass
		}

		util.InPlaceFilter(&comments, func(comment string) bool {
			return comment != AirBrakeEndorsement
		})
	}

	r.Comments = comments
}

func (r *DriverRecord) CommentText() string {
	return strings.Join(r.Comments, CommentSeparator)
}

func (r *DriverRecord) IsLicenced() bool {
	return strings.ToUpper(r.LicenceStatus) == StatusLicenced
}

func (r *DriverRecord) Expiry() (time.Time, error) {
	return util.ParseDate(r.ExpiryDate)
}

// MedicalDue reports false when there is no medical due date or it does not
// parse, the two cases are not told apart.
func (r *DriverRecord) MedicalDue() (time.Time, bool) {
	if r.MedicalDueDate == "" {
		return time.Time{}, false
	}

	due, err := util.ParseDate(r.MedicalDueDate)
	if err != nil {
		return time.Time{}, false
	}

	return due, true
}

// SplitComments is the inverse of CommentText for values read back from a
// persisted snapshot.
func SplitComments(text string) []string {
	var comments []string
	for _, comment := range strings.Split(text, CommentSeparator) {
		if comment = strings.TrimSpace(comment); comment != "" {
			comments = append(comments, comment)
		}
	}

	return comments
}
