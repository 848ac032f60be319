package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"
	"time"

	"github.com/licencecheck/licencecheck/pkg/comparator"
	"github.com/licencecheck/licencecheck/pkg/licence"
	"github.com/licencecheck/licencecheck/pkg/roster"
	"github.com/licencecheck/licencecheck/pkg/util"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const TitleText = "Driver Licence Change Report"

// Subject is the summary email subject line
func Subject(date time.Time, serverOnline bool) string {
	subject := fmt.Sprintf("%s – %s", TitleText, date.Format(util.DateFormat))
	if !serverOnline {
		subject += " [SERVER DOWN]"
	}

	return subject
}

// Summary holds everything the daily summary page shows
type Summary struct {
	Date      time.Time
	StartTime time.Time
	EndTime   time.Time

	ServerAddress string
	ServerOnline  bool

	ExpiryWindowDays int

	Report    *comparator.ChangeReport
	Today     *licence.Snapshot
	Yesterday *licence.Snapshot
	Roster    *roster.Roster

	UploadSuccess  bool
	UploadFailures []string

	// LoaderLog is the loader summary log text, empty when none was found
	LoaderLog      string
	LoaderLogError error
}

type summaryPage struct {
	Title            string
	Start            string
	End              string
	ServerOnline     bool
	ServerAddress    string
	ExpiryWindowDays int

	Total            int
	UnlicensedCount  int
	ClassCount       int
	CommentsCount    int
	StatusCount      int
	ExpiringLicences int
	ExpiringMedicals int

	Unlicensed          []*UnlicensedDriver
	Changes             []*Change
	Errors              []string
	DuplicatesToday     []string
	DuplicatesYesterday []string

	UploadLine     string
	LoaderLog      string
	LoaderLogError string
}

func (s *Summary) page() *summaryPage {
	title := fmt.Sprintf("%s – %s", TitleText, s.Date.Format(util.DateFormat))
	if ContainsSuspended(s.Report, s.Today) {
		title = SuspendedTitlePrefix + title
	}

	page := &summaryPage{
		Title:            title,
		Start:            s.StartTime.Format(time.DateTime),
		End:              s.EndTime.Format(time.DateTime),
		ServerOnline:     s.ServerOnline,
		ServerAddress:    s.ServerAddress,
		ExpiryWindowDays: s.ExpiryWindowDays,

		Total:            s.Report.Total,
		UnlicensedCount:  s.Report.UnlicensedCount,
		ClassCount:       len(s.Report.Class),
		CommentsCount:    len(s.Report.Comments),
		StatusCount:      len(s.Report.Status),
		ExpiringLicences: len(s.Report.ExpiringLicences),
		ExpiringMedicals: len(s.Report.ExpiringMedicals),

		Changes:             Changes(s.Report, s.Today, s.Yesterday, s.Roster, s.Date),
		Errors:              ErrorLines(s.Report, s.Today),
		DuplicatesToday:     s.Report.DuplicatesToday,
		DuplicatesYesterday: s.Report.DuplicatesYesterday,

		UploadLine: UploadLine(s.UploadSuccess, s.UploadFailures),
		LoaderLog:  s.LoaderLog,
	}

	if s.Report.UnlicensedCount > 0 {
		page.Unlicensed = Unlicensed(s.Today, s.Roster)
	}
	if s.LoaderLogError != nil {
		page.LoaderLogError = s.LoaderLogError.Error()
	}

	return page
}

func UploadLine(success bool, failures []string) string {
	line := "❌ AssetWorks upload: NOT CONFIRMED"
	if success {
		line = "AssetWorks upload: DONE"
	}

	if len(failures) > 0 {
		line += " — " + strings.Join(failures, " | ")
	}

	return line
}

func (s *Summary) Render(writer io.Writer) error {
	return templates.ExecuteTemplate(writer, "summary.html", s.page())
}

// WriteFile renders the summary to path, replacing any existing file
func (s *Summary) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := s.Render(file); err != nil {
		file.Close()
		return fmt.Errorf("render summary: %w", err)
	}

	return file.Close()
}
