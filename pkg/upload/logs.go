package upload

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	SummaryLogLines = 400

	summaryImportCode = "2022"
	truncatedMarker   = "(…truncated… last 400 lines)"
)

// LogFile is a loader log with its stat
type LogFile struct {
	fs.FileInfo
	Path string
}

// LatestLog finds the most recently modified .txt file anywhere under root.
// A missing root gives no log and no error.
func LatestLog(root string) (*LogFile, error) {
	var latest *LogFile

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".txt") {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return nil
		}
		if latest == nil || info.ModTime().After(latest.ModTime()) {
			latest = &LogFile{FileInfo: info, Path: path}
		}

		return nil
	})

	return latest, err
}

// SummaryLogPath prefers the day's import summary under logs/2022 and falls
// back to the newest log of any kind
func SummaryLogPath(directory string, date time.Time) (string, error) {
	summaries := filepath.Join(directory, LoaderLogDirectory, summaryImportCode)
	prefix := StagingName(date) + "-" + summaryImportCode + "-"

	entries, err := os.ReadDir(summaries)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	var newest string
	var newestTime time.Time
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, "-Summary.txt") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest, newestTime = filepath.Join(summaries, name), info.ModTime()
		}
	}
	if newest != "" {
		return newest, nil
	}

	latest, err := LatestLog(filepath.Join(directory, LoaderLogDirectory))
	if err != nil || latest == nil {
		return "", err
	}

	return latest.Path, nil
}

// SummaryLog returns the loader summary for date cut to its last 400 lines,
// or an empty string when no log exists
func SummaryLog(directory string, date time.Time) (string, error) {
	path, err := SummaryLogPath(directory, date)
	if err != nil || path == "" {
		return "", err
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	text := strings.TrimRight(strings.ReplaceAll(string(contents), "\r\n", "\n"), "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > SummaryLogLines {
		lines = append([]string{truncatedMarker}, lines[len(lines)-SummaryLogLines:]...)
	}

	return strings.Join(lines, "\n"), nil
}
