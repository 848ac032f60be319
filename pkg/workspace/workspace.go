package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/licencecheck/licencecheck/pkg/util"
	"github.com/rs/zerolog/log"
)

const (
	InputFolder      = "input"
	OutputFolder     = "output"
	ReportsFolder    = "comparison_reports"
	LogsFolder       = "logs"
	AssetsFolder     = "assets"
	NoticesFolder    = "comparison_reports/Individual emails"
	DataLoaderFolder = "DataLoad_21.1.x"

	RosterFile = "Active Operator List.csv"

	driverLogPrefix = "driver_log_"
	writeProbe      = ".__test_write.tmp"
)

var Folders = []string{
	InputFolder,
	OutputFolder,
	ReportsFolder,
	LogsFolder,
	AssetsFolder,
	NoticesFolder,
	DataLoaderFolder,
}

// Workspace is the folder tree a daily run reads from and writes into
type Workspace struct {
	BaseDir string
}

func New(baseDir string) *Workspace {
	return &Workspace{BaseDir: baseDir}
}

func (w *Workspace) Folder(name string) string {
	return filepath.Join(w.BaseDir, filepath.FromSlash(name))
}

// Bootstrap creates every folder and checks each one can be written to
func (w *Workspace) Bootstrap() error {
	for _, folder := range Folders {
		path := w.Folder(folder)

		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create folder %s: %w", path, err)
		}

		probe := filepath.Join(path, writeProbe)
		if err := os.WriteFile(probe, []byte("test"), 0o644); err != nil {
			return fmt.Errorf("cannot write to folder %s: %w", path, err)
		}
		if err := os.Remove(probe); err != nil {
			return fmt.Errorf("cannot write to folder %s: %w", path, err)
		}
	}

	return nil
}

func (w *Workspace) InputPath(date time.Time) string {
	return filepath.Join(w.Folder(InputFolder), fmt.Sprintf("input_%s.txt", date.Format(util.DateFormat)))
}

func (w *Workspace) ReportPath(date time.Time) string {
	return filepath.Join(w.Folder(ReportsFolder), fmt.Sprintf("comparison_%s.html", date.Format(util.DateFormat)))
}

func (w *Workspace) LogPath(date time.Time) string {
	return filepath.Join(w.Folder(LogsFolder), fmt.Sprintf("%s%s.txt", driverLogPrefix, date.Format(util.DateFormat)))
}

func (w *Workspace) RosterPath() string {
	return filepath.Join(w.Folder(AssetsFolder), RosterFile)
}

// PruneLogs keeps the newest keep driver logs. Log names carry the date so
// name order is age order.
func (w *Workspace) PruneLogs(keep int) ([]string, error) {
	entries, err := os.ReadDir(w.Folder(LogsFolder))
	if err != nil {
		return nil, err
	}

	var logs []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, driverLogPrefix) && strings.HasSuffix(name, ".txt") {
			logs = append(logs, name)
		}
	}
	if len(logs) <= keep {
		return nil, nil
	}

	sort.Sort(sort.Reverse(sort.StringSlice(logs)))

	var removed []string
	for _, name := range logs[keep:] {
		path := filepath.Join(w.Folder(LogsFolder), name)
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to delete old log")
			continue
		}
		removed = append(removed, path)
	}

	return removed, nil
}

// CleanOutput removes workbooks in the output folder last modified before
// now minus maxAge
func (w *Workspace) CleanOutput(maxAge time.Duration, now time.Time) ([]string, error) {
	folder := w.Folder(OutputFolder)

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}

	cutoff := now.Add(-maxAge)
	var removed []string

	for _, entry := range entries {
		name := strings.ToLower(entry.Name())
		if entry.IsDir() || !(strings.HasSuffix(name, ".xml") || strings.HasSuffix(name, ".xlsx")) {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(folder, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Could not delete old output file")
			continue
		}

		log.Info().Str("path", path).Msg("Deleted old output file")
		removed = append(removed, path)
	}

	return removed, nil
}

// RemoveReports deletes generated HTML from the report folders
func (w *Workspace) RemoveReports() error {
	var errs []error

	for _, folder := range []string{ReportsFolder, NoticesFolder} {
		entries, err := os.ReadDir(w.Folder(folder))
		if err != nil {
			errs = append(errs, err)
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
				continue
			}

			if err := os.Remove(filepath.Join(w.Folder(folder), entry.Name())); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

// EmptyInput clears the input folder ready for the next drop
func (w *Workspace) EmptyInput() error {
	folder := w.Folder(InputFolder)

	entries, err := os.ReadDir(folder)
	if err != nil {
		return err
	}

	var errs []error
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(folder, entry.Name())); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
