package manager

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/licencecheck/licencecheck/pkg/upload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TeeLog copies the global logger output into the file at path until the
// returned function is called
func TeeLog(path string) (func(), error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	previous := log.Logger
	log.Logger = previous.Output(zerolog.MultiLevelWriter(consoleOutput(), file))

	return func() {
		log.Logger = previous
		file.Close()
	}, nil
}

func consoleOutput() io.Writer {
	if os.Getenv("LICENCECHECK_LOG_FORMAT") == "JSON" {
		return os.Stdout
	}

	return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
}

// AppendRunSummary adds the run counts, upload failures and the newest data
// loader log to the daily driver log
func (r *Runner) AppendRunSummary(outcome *Outcome, timestamp time.Time) error {
	window := r.Config.Policy.ExpiryWindowDays
	changes := outcome.Report

	var summary strings.Builder
	rule := strings.Repeat("=", 25)

	fmt.Fprintf(&summary, "\n\n%s RUN: %s %s\n", rule, timestamp.Format("2006-01-02 15:04:05"), rule)
	fmt.Fprintf(&summary, "✅ Total operators parsed: %d\n", changes.Total)
	fmt.Fprintf(&summary, "❗ Total unlicensed operators: %d\n", changes.UnlicensedCount)
	fmt.Fprintf(&summary, "\n➤ Comparison Summary:\n")
	fmt.Fprintf(&summary, "  - Class changes: %d\n", len(changes.Class))
	fmt.Fprintf(&summary, "  - Status changes: %d\n", len(changes.Status))
	fmt.Fprintf(&summary, "  - Endorsement/restriction changes: %d\n", len(changes.Comments))
	fmt.Fprintf(&summary, "  - Expiring licences (within %d days): %d\n", window, len(changes.ExpiringLicences))
	fmt.Fprintf(&summary, "  - Expiring medicals (within %d days): %d\n", window, len(changes.ExpiringMedicals))
	fmt.Fprintf(&summary, "  - Errors: %d\n", len(changes.Errors))

	uploaded := "No"
	if outcome.Upload.Success {
		uploaded = "Yes"
	}
	fmt.Fprintf(&summary, "\n➤ Upload Summary (FADataLoader):\n")
	fmt.Fprintf(&summary, "  - Upload successful: %s\n", uploaded)
	for _, failure := range outcome.Upload.Failures {
		fmt.Fprintf(&summary, "    • %s\n", failure)
	}

	fmt.Fprintf(&summary, "\n➤ FADataLoader Log Output:\n")
	latest, err := upload.LatestLog(filepath.Join(r.Loader.Directory, upload.LoaderLogDirectory))
	switch {
	case err != nil:
		fmt.Fprintf(&summary, "⚠️ Failed to find FADataLoader log: %s\n", err)
	case latest == nil:
		fmt.Fprintf(&summary, "⚠️ No FADataLoader .txt log file found.\n")
	default:
		contents, err := os.ReadFile(latest.Path)
		if err != nil {
			fmt.Fprintf(&summary, "⚠️ Failed to read FADataLoader log: %s\n", err)
		} else {
			fmt.Fprintf(&summary, "%s\n", strings.ToValidUTF8(string(contents), ""))
		}
	}
	fmt.Fprintf(&summary, "%s\n", strings.Repeat("=", 60))

	file, err := os.OpenFile(r.Workspace.LogPath(outcome.Date), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(summary.String())

	return err
}
