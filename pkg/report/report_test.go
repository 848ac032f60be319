package report_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/licencecheck/licencecheck/pkg/comparator"
	"github.com/licencecheck/licencecheck/pkg/licence"
	"github.com/licencecheck/licencecheck/pkg/report"
	"github.com/licencecheck/licencecheck/pkg/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

const rosterCSV = "DepartmentID,DepartmentName,OperatorName,OperatorID,LicenceNo\n" +
	"10,Transit,\"Smith, John\",1234,A1234-B5678-C9012\n" +
	"20,Roads,Jane Doe,5678,B0000-C1111-D2222\n"

func fixtures(t *testing.T) (*licence.Snapshot, *licence.Snapshot, *roster.Roster) {
	t.Helper()

	yesterday := licence.NewSnapshot(asOf.AddDate(0, 0, -1), []*licence.DriverRecord{
		{ClientName: "SMITH, JOHN", LicenceNumber: "A1234-B5678-C9012", Class: "D", ExpiryDate: "2024-01-12", LicenceStatus: "LICENCED"},
		{ClientName: "DOE, JANE", LicenceNumber: "B0000-C1111-D2222", Class: "G", ExpiryDate: "2030-01-01", LicenceStatus: "LICENCED"},
	})
	today := licence.NewSnapshot(asOf, []*licence.DriverRecord{
		{ClientName: "SMITH, JOHN", LicenceNumber: "A1234-B5678-C9012", Class: "DZ", ExpiryDate: "2024-01-12", LicenceStatus: "LICENCED", Comments: []string{"CORRECTIVE LENSES"}},
		{ClientName: "DOE, JANE", LicenceNumber: "B0000-C1111-D2222", Class: "G", ExpiryDate: "2030-01-01", LicenceStatus: "Suspended"},
		{ClientName: "NEW, PERSON", LicenceNumber: "C0000-C1111-D2222", Class: "G", ExpiryDate: "2030-01-01", LicenceStatus: "EXPIRED"},
	})

	operators, err := roster.Parse(strings.NewReader(rosterCSV))
	require.NoError(t, err)

	return today, yesterday, operators
}

func TestChangeText(t *testing.T) {
	tests := []struct {
		name     string
		kind     comparator.ChangeKind
		old, new string
		expected string
	}{
		{"value change", comparator.ChangeClass, "D", "DZ", "D → DZ"},
		{"expired", comparator.ChangeExpiringLicence, "2024-01-07", "2024-01-07", "EXPIRED 3 DAYS AGO (Expiry Date: 2024-01-07)"},
		{"today", comparator.ChangeExpiringMedical, "2024-01-10", "2024-01-10", "EXPIRES TODAY (Expiry Date: 2024-01-10)"},
		{"approaching", comparator.ChangeExpiringLicence, "2024-01-15", "2024-01-15", "APPROACHING IN 5 DAYS (Expiry Date: 2024-01-15)"},
		{"unparsable", comparator.ChangeExpiringLicence, "soon", "soon", "soon"},
		{"moved expiry", comparator.ChangeExpiringLicence, "2024-01-01", "2024-01-15", "2024-01-01 → 2024-01-15"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, report.ChangeText(test.kind, test.old, test.new, asOf))
		})
	}
}

func TestContainsSuspended(t *testing.T) {
	today, yesterday, _ := fixtures(t)
	changes := comparator.New(asOf, 7).Compare(today, yesterday)

	assert.True(t, report.ContainsSuspended(changes, today))

	changes.Status = []string{"A1234B5678C9012"}
	assert.False(t, report.ContainsSuspended(changes, today))
}

func TestChanges(t *testing.T) {
	today, yesterday, operators := fixtures(t)
	changes := comparator.New(asOf, 7).Compare(today, yesterday)

	listed := report.Changes(changes, today, yesterday, operators, asOf)

	var categories []string
	for _, change := range listed {
		categories = append(categories, change.Category())
	}
	assert.Equal(t, []string{"class", "status", "comments", "expiring_licences"}, categories)

	assert.Equal(t, "D → DZ", listed[0].Text)
	assert.Equal(t, "A1234-B5678-C9012", listed[0].LicenceNumber)
	assert.Equal(t, "CORRECTIVE LENSES", listed[0].Comments)
	assert.Equal(t, "NONE", listed[1].Comments)
	assert.Equal(t, "APPROACHING IN 2 DAYS (Expiry Date: 2024-01-12)", listed[3].Text)
}

func TestUnlicensed(t *testing.T) {
	today, _, operators := fixtures(t)

	drivers := report.Unlicensed(today, operators)

	require.Len(t, drivers, 2)
	assert.Equal(t, "Jane Doe", drivers[0].Name)
	assert.Equal(t, "5678", drivers[0].OperatorID)
	assert.Equal(t, "NEW, PERSON", drivers[1].Name)
	assert.Equal(t, "UNKNOWN", drivers[1].DepartmentName)
	assert.Equal(t, "C0000-C1111-D2222", drivers[1].LicenceNumber)
	assert.Equal(t, "NONE", drivers[1].Comments)
}

func TestErrorLines(t *testing.T) {
	today, yesterday, _ := fixtures(t)
	changes := comparator.New(asOf, 7).Compare(today, yesterday)
	changes.Errors = append(changes.Errors, "Invalid expiry date for X")

	assert.Equal(t, []string{
		"Driver not found in yesterday's data: C0000-C1111-D2222 – NEW, PERSON",
		"Invalid expiry date for X",
	}, report.ErrorLines(changes, today))
}

func TestSummary_Render(t *testing.T) {
	today, yesterday, operators := fixtures(t)

	summary := &report.Summary{
		Date:             asOf,
		StartTime:        asOf.Add(6 * time.Hour),
		EndTime:          asOf.Add(6*time.Hour + time.Minute),
		ServerAddress:    "loader:2000",
		ServerOnline:     false,
		ExpiryWindowDays: 7,
		Report:           comparator.New(asOf, 7).Compare(today, yesterday),
		Today:            today,
		Yesterday:        yesterday,
		Roster:           operators,
		UploadFailures:   []string{"❌ Server unreachable: loader:2000"},
		LoaderLog:        "line <1>",
	}

	var buffer bytes.Buffer
	require.NoError(t, summary.Render(&buffer))
	html := buffer.String()

	assert.Contains(t, html, "**DRIVER SUSPENDED** Driver Licence Change Report – 2024-01-10")
	assert.Contains(t, html, "loader:2000 is UNREACHABLE")
	assert.Contains(t, html, "Total operators pulled from parser: 3")
	assert.Contains(t, html, "Total operators unlicenced: 2")
	assert.Contains(t, html, "Total operators within 7 days of valid expiry: 1")
	assert.Contains(t, html, "<h3>Unlicenced Operators</h3>")
	assert.Contains(t, html, "Smith, John (ID: 1234)")
	assert.Contains(t, html, "D → DZ")
	assert.Contains(t, html, "C0000-C1111-D2222 – NEW, PERSON")
	assert.Contains(t, html, "❌ AssetWorks upload: NOT CONFIRMED — ❌ Server unreachable: loader:2000")
	assert.Contains(t, html, "line &lt;1&gt;")
	assert.Contains(t, html, "<b>End:</b> 2024-01-10 06:01:00")
}

func TestSummary_RenderNoChanges(t *testing.T) {
	today, _, operators := fixtures(t)

	summary := &report.Summary{
		Date:           asOf,
		ServerOnline:   true,
		Report:         comparator.New(asOf, 7).Compare(licence.NewSnapshot(asOf, nil), licence.NewSnapshot(asOf, nil)),
		Today:          licence.NewSnapshot(asOf, nil),
		Yesterday:      today,
		Roster:         operators,
		UploadSuccess:  true,
		LoaderLogError: errors.New("permission denied"),
	}

	var buffer bytes.Buffer
	require.NoError(t, summary.Render(&buffer))
	html := buffer.String()

	assert.NotContains(t, html, "SUSPENDED")
	assert.NotContains(t, html, "UNREACHABLE")
	assert.NotContains(t, html, "Unlicenced Operators")
	assert.Contains(t, html, "<p>NONE</p>")
	assert.Contains(t, html, "AssetWorks upload: DONE")
	assert.Contains(t, html, "permission denied")
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Driver Licence Change Report – 2024-01-10", report.Subject(asOf, true))
	assert.Equal(t, "Driver Licence Change Report – 2024-01-10 [SERVER DOWN]", report.Subject(asOf, false))
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "Smith_John", report.SafeName("Smith, John"))
	assert.Equal(t, "a_b_c_d", report.SafeName("a/b*c?d"))
}

func TestWriteNotices(t *testing.T) {
	today, yesterday, operators := fixtures(t)
	changes := report.Changes(comparator.New(asOf, 7).Compare(today, yesterday), today, yesterday, operators, asOf)
	directory := t.TempDir()

	notices, err := report.WriteNotices(directory, changes, asOf)
	require.NoError(t, err)
	require.Len(t, notices, len(changes))

	contents, err := os.ReadFile(filepath.Join(directory, "Smith_John_class.html"))
	require.NoError(t, err)
	assert.Contains(t, string(contents), "Report Generated:</b> 2024-01-10")
	assert.Contains(t, string(contents), "D → DZ")

	assert.Equal(t, "[Driver Alert] Smith, John – CLASS", notices[0].Subject())
	assert.FileExists(t, filepath.Join(directory, "Jane_Doe_status.html"))
}

func TestWriteNotices_KeepsWrittenOnFailure(t *testing.T) {
	today, yesterday, operators := fixtures(t)
	changes := report.Changes(comparator.New(asOf, 7).Compare(today, yesterday), today, yesterday, operators, asOf)
	directory := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(directory, "Jane_Doe_status.html"), 0o755))

	notices, err := report.WriteNotices(directory, changes, asOf)

	assert.Error(t, err)
	require.Len(t, notices, len(changes)-1)
	for _, notice := range notices {
		assert.NotEqual(t, filepath.Join(directory, "Jane_Doe_status.html"), notice.Path)
		assert.FileExists(t, notice.Path)
	}
}
