package manager

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/licencecheck/licencecheck/pkg/comparator"
	"github.com/licencecheck/licencecheck/pkg/dataimporter/formats"
	"github.com/licencecheck/licencecheck/pkg/dataimporter/formats/aris"
	"github.com/licencecheck/licencecheck/pkg/licence"
	"github.com/licencecheck/licencecheck/pkg/notify"
	"github.com/licencecheck/licencecheck/pkg/redis_client"
	"github.com/licencecheck/licencecheck/pkg/report"
	"github.com/licencecheck/licencecheck/pkg/roster"
	"github.com/licencecheck/licencecheck/pkg/snapshot"
	"github.com/licencecheck/licencecheck/pkg/upload"
	"github.com/licencecheck/licencecheck/pkg/util"
	"github.com/licencecheck/licencecheck/pkg/workspace"
	"github.com/rs/zerolog/log"
)

type Options struct {
	// Date overrides today, zero means the current date
	Date       time.Time
	Force      bool
	SkipUpload bool
	SkipEmail  bool
}

// Outcome is what a daily run produced
type Outcome struct {
	Date       time.Time
	Skipped    bool
	Report     *comparator.ChangeReport
	Upload     *upload.Result
	ReportPath string
	Notices    []*report.Notice
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}

	return r.Now()
}

// Run executes the daily job: parse today's feed, compare it with
// yesterday's snapshot, stage and upload, then report
func (r *Runner) Run(ctx context.Context, options Options) (*Outcome, error) {
	startTime := r.now()

	date := options.Date
	if date.IsZero() {
		date = startTime
	}
	date = util.DateOnly(date)
	outcome := &Outcome{Date: date}

	if err := r.prepareWorkspace(); err != nil {
		return nil, err
	}

	inputPath := r.Workspace.InputPath(date)
	contents, err := os.ReadFile(inputPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("input file not found: %s", inputPath)
	} else if err != nil {
		return nil, err
	}

	digest := redis_client.Digest(contents)
	if !options.Force && r.Marker.Processed(ctx, date, digest) {
		log.Info().Str("date", date.Format(util.DateFormat)).Msg("Input already processed today, skipping (use --force to run again)")
		outcome.Skipped = true
		return outcome, nil
	}

	today, err := r.parseFeed(ctx, date, contents)
	if err != nil {
		return nil, err
	}

	yesterdayDate := date.AddDate(0, 0, -1)
	yesterday, err := r.Store.Load(ctx, yesterdayDate)
	if errors.Is(err, snapshot.ErrNotFound) {
		log.Warn().Str("date", yesterdayDate.Format(util.DateFormat)).Msg("No snapshot for yesterday, every driver will be reported as not found")
		yesterday = licence.NewSnapshot(yesterdayDate, nil)
	} else if err != nil {
		return nil, fmt.Errorf("load yesterday's snapshot: %w", err)
	}

	changes := comparator.New(date, r.Config.Policy.ExpiryWindowDays).Compare(today, yesterday)
	outcome.Report = changes
	logReport(changes, r.Config.Policy.ExpiryWindowDays)

	operators, err := r.loadRoster()
	if err != nil {
		return nil, err
	}

	outcome.Upload = r.upload(ctx, today, operators, options.SkipUpload)

	summary := &report.Summary{
		Date:             date,
		StartTime:        startTime,
		ServerAddress:    r.Loader.Address(),
		ServerOnline:     outcome.Upload.ServerOnline,
		ExpiryWindowDays: r.Config.Policy.ExpiryWindowDays,
		Report:           changes,
		Today:            today,
		Yesterday:        yesterday,
		Roster:           operators,
		UploadSuccess:    outcome.Upload.Success,
		UploadFailures:   outcome.Upload.Failures,
	}
	summary.LoaderLog, summary.LoaderLogError = upload.SummaryLog(r.Loader.Directory, date)
	summary.EndTime = r.now()

	outcome.ReportPath = r.Workspace.ReportPath(date)
	if err := summary.WriteFile(outcome.ReportPath); err != nil {
		return nil, err
	}
	log.Info().Str("path", outcome.ReportPath).Msg("Written summary report")

	outcome.Notices, err = report.WriteNotices(
		r.Workspace.Folder(workspace.NoticesFolder),
		report.Changes(changes, today, yesterday, operators, date),
		date,
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to write operator notices")
	}

	if options.SkipEmail {
		log.Info().Msg("Email step skipped")
	} else {
		r.sendEmails(ctx, outcome, report.Subject(date, outcome.Upload.ServerOnline))
	}

	r.finish(ctx, outcome, yesterdayDate, digest, startTime)

	return outcome, nil
}

func (r *Runner) prepareWorkspace() error {
	if err := r.Workspace.Bootstrap(); err != nil {
		return err
	}

	if _, err := r.Workspace.PruneLogs(r.Config.Policy.LogRetention); err != nil {
		log.Warn().Err(err).Msg("Failed to prune old logs")
	}
	if err := r.Workspace.RemoveReports(); err != nil {
		log.Warn().Err(err).Msg("Failed to delete old HTML reports")
	}

	return nil
}

func (r *Runner) parseFeed(ctx context.Context, date time.Time, contents []byte) (*licence.Snapshot, error) {
	var format formats.Format = &aris.Feed{}
	if err := format.ParseFile(bytes.NewReader(contents)); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	records := format.DriverRecords()

	for _, issue := range aris.Validate(records) {
		log.Warn().Int("index", issue.Index).Str("licence", issue.LicenceNumber).Msg(issue.Problem)
	}

	today := licence.NewSnapshot(date, records)
	if err := r.Store.Save(ctx, today); err != nil {
		return nil, fmt.Errorf("save today's snapshot: %w", err)
	}
	log.Info().Int("records", len(records)).Str("date", today.DateString()).Msg("Parsed feed and saved snapshot")

	return today, nil
}

func (r *Runner) loadRoster() (*roster.Roster, error) {
	path := r.Workspace.RosterPath()

	operators, err := roster.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Error().Str("path", path).Msg("Operator roster not found, continuing without it")
		return roster.Empty(), nil
	} else if err != nil {
		return nil, err
	}

	log.Info().Int("operators", operators.Len()).Msg("Loaded operator roster")

	return operators, nil
}

func (r *Runner) upload(ctx context.Context, today *licence.Snapshot, operators *roster.Roster, skip bool) *upload.Result {
	if _, err := upload.WriteStaging(r.Loader.Directory, today, operators); err != nil {
		log.Error().Err(err).Msg("Failed to generate loader upload file")

		return &upload.Result{
			ServerOnline: r.Loader.ServerOnline(ctx),
			Failures:     []string{fmt.Sprintf("❌ Upload file not generated: %s", err)},
		}
	}

	if _, err := upload.PurgeStaging(r.Loader.Directory, today.Date); err != nil {
		log.Warn().Err(err).Msg("Failed to purge old loader files")
	}

	if skip || !r.Config.Upload.Enabled {
		log.Info().Msg("Upload step skipped")

		return &upload.Result{
			ServerOnline: r.Loader.ServerOnline(ctx),
			Failures:     []string{"Upload skipped"},
		}
	}

	return r.Loader.Upload(ctx, today.Date)
}

func (r *Runner) sendEmails(ctx context.Context, outcome *Outcome, subject string) {
	recipients := r.Config.Email.RecipientList()
	if len(recipients) == 0 || r.Mailer == nil {
		log.Warn().Msg("No email recipients configured, not sending")
		return
	}

	body, err := os.ReadFile(outcome.ReportPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to prepare summary email")
		return
	}

	messages := []*notify.Message{{
		From:     r.Config.Email.From,
		To:       recipients,
		Subject:  subject,
		HTMLBody: string(body),
	}}

	for _, notice := range outcome.Notices {
		body, err := notice.Body()
		if err != nil {
			log.Error().Err(err).Str("operator", notice.Change.Operator.OperatorName).Msg("Failed to render operator notice")
			continue
		}

		messages = append(messages, &notify.Message{
			From:     r.Config.Email.From,
			To:       recipients,
			Subject:  notice.Subject(),
			HTMLBody: body,
		})
	}

	for _, message := range messages {
		if err := r.Mailer.Send(ctx, message); err != nil {
			log.Error().Err(err).Str("subject", message.Subject).Strs("to", recipients).Msg("Failed to send email")
		}
	}
}

func (r *Runner) finish(ctx context.Context, outcome *Outcome, yesterdayDate time.Time, digest string, startTime time.Time) {
	if r.Config.Policy.DeleteYesterdayOutput {
		if err := r.Store.Delete(ctx, yesterdayDate); err != nil {
			log.Warn().Err(err).Msg("Failed to delete yesterday's snapshot")
		}
	}

	if _, err := r.Workspace.CleanOutput(r.Config.Policy.OutputMaxAge, r.now()); err != nil {
		log.Warn().Err(err).Msg("Failed to clean output folder")
	}
	if err := r.Workspace.EmptyInput(); err != nil {
		log.Warn().Err(err).Msg("Failed to empty input folder")
	}

	duration := r.now().Sub(startTime)

	if r.Metrics != nil {
		r.Metrics.Observe(outcome.Report, outcome.Upload.Success, duration)

		if url := r.Config.Metrics.PushgatewayURL; url != "" {
			if err := r.Metrics.Push(url); err != nil {
				log.Warn().Err(err).Msg("Failed to push metrics")
			}
		}
	}

	if err := r.AppendRunSummary(outcome, r.now()); err != nil {
		log.Warn().Err(err).Msg("Failed to write run summary to the driver log")
	}

	if err := r.Marker.Mark(ctx, outcome.Date, digest); err != nil {
		log.Warn().Err(err).Msg("Failed to set run marker")
	}

	log.Info().
		Int("parsed", outcome.Report.Total).
		Int("unlicensed", outcome.Report.UnlicensedCount).
		Int("errors", len(outcome.Report.Errors)).
		Bool("uploaded", outcome.Upload.Success).
		Strs("uploadfailures", outcome.Upload.Failures).
		Str("duration", duration.String()).
		Msg("Run complete")
}

func logReport(changes *comparator.ChangeReport, window int) {
	log.Info().Int("parsed", changes.Total).Int("unlicensed", changes.UnlicensedCount).Msg("Compared with yesterday")

	event := log.Info().Int("window", window)
	for _, kind := range comparator.ChangeKinds {
		event = event.Int(kind.String(), len(changes.Keys(kind)))
	}
	event.Int(comparator.ErrorsCategory, len(changes.Errors)).Msg("Comparison summary")

	for _, key := range changes.DuplicatesToday {
		log.Warn().Str("licence", key).Msg("Duplicate licence number in today's feed")
	}
	for _, key := range changes.DuplicatesYesterday {
		log.Warn().Str("licence", key).Msg("Duplicate licence number in yesterday's snapshot")
	}
}
