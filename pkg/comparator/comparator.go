package comparator

import (
	"fmt"
	"strings"
	"time"

	"github.com/licencecheck/licencecheck/pkg/licence"
	"github.com/licencecheck/licencecheck/pkg/util"
	"golang.org/x/exp/slices"
)

const DefaultExpiryWindowDays = 7

type ChangeReport struct {
	Class            []string `json:"class"`
	Status           []string `json:"status"`
	Comments         []string `json:"comments"`
	ExpiringLicences []string `json:"expiring_licences"`
	ExpiringMedicals []string `json:"expiring_medicals"`
	Errors           []string `json:"errors"`

	Total           int `json:"total"`
	UnlicensedCount int `json:"unlicensed_count"`

	DuplicatesToday     []string `json:"duplicates_today"`
	DuplicatesYesterday []string `json:"duplicates_yesterday"`
}

// Keys returns the licence keys flagged under a kind
func (r *ChangeReport) Keys(kind ChangeKind) []string {
	switch kind {
	case ChangeClass:
		return r.Class
	case ChangeStatus:
		return r.Status
	case ChangeComments:
		return r.Comments
	case ChangeExpiringLicence:
		return r.ExpiringLicences
	case ChangeExpiringMedical:
		return r.ExpiringMedicals
	}

	return nil
}

func (r *ChangeReport) add(kind ChangeKind, key string) {
	switch kind {
	case ChangeClass:
		r.Class = append(r.Class, key)
	case ChangeStatus:
		r.Status = append(r.Status, key)
	case ChangeComments:
		r.Comments = append(r.Comments, key)
	case ChangeExpiringLicence:
		r.ExpiringLicences = append(r.ExpiringLicences, key)
	case ChangeExpiringMedical:
		r.ExpiringMedicals = append(r.ExpiringMedicals, key)
	}
}

// ChangeCount is the number of flagged keys over every kind
func (r *ChangeReport) ChangeCount() int {
	count := 0
	for _, kind := range ChangeKinds {
		count += len(r.Keys(kind))
	}

	return count
}

type Comparator struct {
	// AsOf is the date expiry windows are measured from
	AsOf             time.Time
	ExpiryWindowDays int
}

func New(asOf time.Time, expiryWindowDays int) *Comparator {
	return &Comparator{
		AsOf:             util.DateOnly(asOf),
		ExpiryWindowDays: expiryWindowDays,
	}
}

// Compare diffs today's snapshot against yesterday's. Problems with single
// records end up in the report's errors and never stop the comparison. A
// missing snapshot or a negative window is a caller bug and panics.
func (c *Comparator) Compare(today *licence.Snapshot, yesterday *licence.Snapshot) *ChangeReport {
	if today == nil || yesterday == nil {
		panic("comparator: today and yesterday snapshots are required, pass an empty snapshot instead of nil")
	}
	if c.ExpiryWindowDays < 0 {
		panic(fmt.Sprintf("comparator: expiry window must not be negative, got %d", c.ExpiryWindowDays))
	}

	report := &ChangeReport{
		Class:            []string{},
		Status:           []string{},
		Comments:         []string{},
		ExpiringLicences: []string{},
		ExpiringMedicals: []string{},
		Errors:           []string{},

		DuplicatesToday:     util.DuplicateStrings(today.Keys()),
		DuplicatesYesterday: util.DuplicateStrings(yesterday.Keys()),
	}

	todayIndex, todayKeys := today.Index()
	yesterdayIndex, _ := yesterday.Index()

	for _, key := range todayKeys {
		current := todayIndex[key]

		previous, exists := yesterdayIndex[key]
		if !exists {
			report.Errors = append(report.Errors, NotFoundError(key))
			continue
		}

		if current.Class != previous.Class {
			report.add(ChangeClass, key)
		}
		if current.LicenceStatus != previous.LicenceStatus {
			report.add(ChangeStatus, key)
		}
		if !slices.Equal(NormalizeComments(current.Comments), NormalizeComments(previous.Comments)) {
			report.add(ChangeComments, key)
		}

		expiry, err := current.Expiry()
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Invalid expiry date for %s", key))
		} else if c.withinWindow(expiry) {
			report.add(ChangeExpiringLicence, key)
		}

		// An unusable medical due date counts as having none
		if medicalDue, ok := current.MedicalDue(); ok && c.withinWindow(medicalDue) {
			report.add(ChangeExpiringMedical, key)
		}
	}

	report.Total = len(todayIndex)
	for _, record := range todayIndex {
		if !record.IsLicenced() {
			report.UnlicensedCount++
		}
	}

	return report
}

func (c *Comparator) withinWindow(date time.Time) bool {
	return util.DaysBetween(c.AsOf, date) <= c.ExpiryWindowDays
}

const notFoundPrefix = "Driver not found in yesterday's data: "

func NotFoundError(key string) string {
	return notFoundPrefix + key
}

// NotFoundKey extracts the licence key from a NotFoundError message
func NotFoundKey(message string) (string, bool) {
	if !strings.HasPrefix(message, notFoundPrefix) {
		return "", false
	}

	return strings.TrimPrefix(message, notFoundPrefix), true
}

// NormalizeComments makes comment lists comparable regardless of order and
// case. Items are split on ';', trimmed, lowercased and sorted, blanks are
// dropped and repeats are kept.
func NormalizeComments(comments []string) []string {
	normalized := []string{}

	for _, comment := range comments {
		for _, item := range strings.Split(comment, ";") {
			if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
				normalized = append(normalized, item)
			}
		}
	}

	slices.Sort(normalized)

	return normalized
}
