package aris

import (
	"fmt"

	"github.com/licencecheck/licencecheck/pkg/licence"
)

const displayLicenceLength = 17

type ValidationIssue struct {
	Index         int
	LicenceNumber string
	Problem       string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("record %d (%s): %s", v.Index, v.LicenceNumber, v.Problem)
}

// Validate is the strict pass the lenient parser leaves to its callers. It
// reports problems and never changes the records.
func Validate(records []*licence.DriverRecord) []ValidationIssue {
	var issues []ValidationIssue

	for i, record := range records {
		if len(record.LicenceNumber) != displayLicenceLength {
			issues = append(issues, ValidationIssue{
				Index:         i,
				LicenceNumber: record.LicenceNumber,
				Problem:       fmt.Sprintf("licence number has %d characters, expected %d", len(record.LicenceNumber), displayLicenceLength),
			})
		}

		if _, err := record.Expiry(); err != nil {
			issues = append(issues, ValidationIssue{
				Index:         i,
				LicenceNumber: record.LicenceNumber,
				Problem:       fmt.Sprintf("expiry date %q does not parse", record.ExpiryDate),
			})
		}

		if record.ClientName == "" {
			issues = append(issues, ValidationIssue{
				Index:         i,
				LicenceNumber: record.LicenceNumber,
				Problem:       "client name is empty",
			})
		}
	}

	return issues
}
