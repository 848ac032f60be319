package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/licencecheck/licencecheck/pkg/comparator"
	"github.com/licencecheck/licencecheck/pkg/licence"
	"github.com/licencecheck/licencecheck/pkg/roster"
	"github.com/licencecheck/licencecheck/pkg/util"
)

const (
	None    = "NONE"
	Unknown = "UNKNOWN"

	SuspendedTitlePrefix = "**DRIVER SUSPENDED** "
)

// ContainsSuspended is true when a driver whose status changed is now
// suspended in any letter case
func ContainsSuspended(report *comparator.ChangeReport, today *licence.Snapshot) bool {
	index, _ := today.Index()

	for _, key := range report.Status {
		if record, exists := index[key]; exists && strings.Contains(strings.ToUpper(record.LicenceStatus), "SUSPENDED") {
			return true
		}
	}

	return false
}

// ChangeText describes a flagged value. Expiry kinds whose date did not
// move are described relative to asOf, everything else as old → new.
func ChangeText(kind comparator.ChangeKind, oldValue string, newValue string, asOf time.Time) string {
	if !kind.IsExpiry() || oldValue != newValue {
		return fmt.Sprintf("%s → %s", oldValue, newValue)
	}

	date, err := util.ParseDate(newValue)
	if err != nil {
		return newValue
	}

	daysLeft := util.DaysBetween(asOf, date)
	switch {
	case daysLeft < 0:
		return fmt.Sprintf("EXPIRED %d DAYS AGO (Expiry Date: %s)", -daysLeft, newValue)
	case daysLeft == 0:
		return fmt.Sprintf("EXPIRES TODAY (Expiry Date: %s)", newValue)
	default:
		return fmt.Sprintf("APPROACHING IN %d DAYS (Expiry Date: %s)", daysLeft, newValue)
	}
}

// Change is one flagged driver matched to the operator roster
type Change struct {
	Operator      *roster.Operator
	Kind          comparator.ChangeKind
	Text          string
	LicenceNumber string
	Comments      string
}

func (c *Change) Category() string {
	return c.Kind.String()
}

func (c *Change) Title() string {
	return c.Kind.Title()
}

// Changes lists every flagged driver that is on the roster and present in
// both snapshots, grouped by kind in report order
func Changes(report *comparator.ChangeReport, today *licence.Snapshot, yesterday *licence.Snapshot, operators *roster.Roster, asOf time.Time) []*Change {
	todayIndex, _ := today.Index()
	yesterdayIndex, _ := yesterday.Index()

	changes := []*Change{}

	for _, kind := range comparator.ChangeKinds {
		for _, key := range report.Keys(kind) {
			operator, found := operators.Lookup(key)
			if !found {
				continue
			}

			current, inToday := todayIndex[key]
			previous, inYesterday := yesterdayIndex[key]
			if !inToday || !inYesterday {
				continue
			}

			changes = append(changes, &Change{
				Operator:      operator,
				Kind:          kind,
				Text:          ChangeText(kind, kind.Value(previous), kind.Value(current), asOf),
				LicenceNumber: licence.FormatLicenceNumber(key),
				Comments:      orDefault(current.CommentText(), None),
			})
		}
	}

	return changes
}

// UnlicensedDriver is a driver whose status is not LICENCED, with roster
// details when the driver could be matched
type UnlicensedDriver struct {
	Name           string
	OperatorID     string
	DepartmentName string
	DepartmentID   string
	Status         string
	LicenceNumber  string
	Comments       string
}

func Unlicensed(today *licence.Snapshot, operators *roster.Roster) []*UnlicensedDriver {
	index, keys := today.Index()

	drivers := []*UnlicensedDriver{}
	for _, key := range keys {
		record := index[key]
		if record.IsLicenced() {
			continue
		}

		driver := &UnlicensedDriver{
			Name:           orDefault(record.ClientName, Unknown),
			OperatorID:     Unknown,
			DepartmentName: Unknown,
			DepartmentID:   Unknown,
			Status:         orDefault(strings.TrimSpace(record.LicenceStatus), Unknown),
			LicenceNumber:  licence.DisplayKey(key, record.LicenceNumber),
			Comments:       orDefault(strings.TrimSpace(record.CommentText()), None),
		}

		if operator, found := operators.Lookup(key); found {
			driver.Name = operator.OperatorName
			driver.OperatorID = operator.OperatorID
			driver.DepartmentName = orDefault(operator.DepartmentName, Unknown)
			driver.DepartmentID = operator.DepartmentID
		}

		drivers = append(drivers, driver)
	}

	return drivers
}

// ErrorLines renders the report errors for display. Drivers missing from
// yesterday are shown with their 5-5-5 licence and today's client name.
func ErrorLines(report *comparator.ChangeReport, today *licence.Snapshot) []string {
	index, _ := today.Index()

	lines := make([]string, 0, len(report.Errors))
	for _, message := range report.Errors {
		key, notFound := comparator.NotFoundKey(message)
		if !notFound {
			lines = append(lines, message)
			continue
		}

		line := comparator.NotFoundError(licence.FormatLicenceNumber(key))
		if record, exists := index[key]; exists && record.ClientName != "" {
			line += " – " + record.ClientName
		}
		lines = append(lines, line)
	}

	return lines
}

func orDefault(value string, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
