package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/licencecheck/licencecheck/pkg/licence"
	"github.com/licencecheck/licencecheck/pkg/roster"
	"github.com/licencecheck/licencecheck/pkg/spreadsheetml"
	"github.com/licencecheck/licencecheck/pkg/util"
	"github.com/rs/zerolog/log"
)

var ErrDecimalOperatorID = errors.New("operator ID contains decimals, not able to upload")

const (
	stagingSheet  = "Sheet1"
	stagingPrefix = "ARIS_upload_"

	UnknownOperator = "UNKNOWN"
	NoComments      = "NONE"
	UpdateMarker    = "[u:1]"
)

// StagingHeader is the loader import code followed by the target field codes
var StagingHeader = []string{"2022", "101:2", "104:10", "104:6", "104:8", "104:15", "104:20"}

func StagingName(date time.Time) string {
	return stagingPrefix + date.Format(util.DateFormat)
}

func StagingPath(directory string, date time.Time) string {
	return filepath.Join(directory, StagingName(date)+".xml")
}

func ProcessedPath(directory string, date time.Time) string {
	return filepath.Join(directory, StagingName(date)+"-processed.txt")
}

// StagingRows joins today's records to the roster by licence key. Records
// without a roster entry are kept with an UNKNOWN operator.
func StagingRows(today *licence.Snapshot, operators *roster.Roster) ([][]string, error) {
	rows := [][]string{StagingHeader}
	decimals := 0

	for _, record := range today.Records {
		operatorID := UnknownOperator
		if operator, found := operators.Lookup(record.Key()); found && operator.OperatorID != "" {
			operatorID = operator.OperatorID
		}

		if strings.Contains(operatorID, ".") {
			decimals++
		}

		comments := strings.TrimSpace(record.CommentText())
		if comments == "" {
			comments = NoComments
		}

		rows = append(rows, []string{
			UpdateMarker,
			operatorID,
			today.DateString(),
			record.ExpiryDate,
			record.Class,
			record.MedicalDueDate,
			comments,
		})
	}

	if decimals > 0 {
		return nil, fmt.Errorf("%w: %d row(s)", ErrDecimalOperatorID, decimals)
	}

	return rows, nil
}

// WriteStaging writes today's loader workbook into directory
func WriteStaging(directory string, today *licence.Snapshot, operators *roster.Roster) (string, error) {
	rows, err := StagingRows(today, operators)
	if err != nil {
		return "", err
	}

	path := StagingPath(directory, today.Date)

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if err := spreadsheetml.Encode(file, stagingSheet, rows); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}

	log.Info().Str("path", path).Int("rows", len(rows)-1).Msg("Generated loader upload file")

	return path, nil
}

// PurgeStaging removes staging and confirmation files from days other than
// date. Failures to remove single files are logged and skipped.
func PurgeStaging(directory string, date time.Time) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, err
	}

	keep := StagingName(date)
	var removed []string

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, stagingPrefix) {
			continue
		}
		if !strings.HasSuffix(name, ".xml") && !strings.HasSuffix(name, "-processed.txt") {
			continue
		}
		if strings.Contains(name, keep) {
			continue
		}

		path := filepath.Join(directory, name)
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Could not delete old loader file")
			continue
		}

		log.Info().Str("path", path).Msg("Deleted old loader file")
		removed = append(removed, path)
	}

	return removed, nil
}
