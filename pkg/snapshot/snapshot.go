package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/licencecheck/licencecheck/pkg/licence"
	"github.com/licencecheck/licencecheck/pkg/spreadsheetml"
)

var ErrNotFound = errors.New("snapshot not found")

const sheetName = "Drivers"

const (
	ColumnClientName     = "Client Name"
	ColumnLicenceNumber  = "Driver Licence Number"
	ColumnClass          = "Class"
	ColumnExpiryDate     = "Expiry Date"
	ColumnLicenceStatus  = "Licence Status"
	ColumnMedicalDueDate = "Medical Due Date"
	ColumnComments       = "Comments"
)

var Header = []string{
	ColumnClientName,
	ColumnLicenceNumber,
	ColumnClass,
	ColumnExpiryDate,
	ColumnLicenceStatus,
	ColumnMedicalDueDate,
	ColumnComments,
}

// Store persists one snapshot per calendar day
type Store interface {
	Save(ctx context.Context, snapshot *licence.Snapshot) error
	Load(ctx context.Context, date time.Time) (*licence.Snapshot, error)
	Delete(ctx context.Context, date time.Time) error
}

// WriteWorkbook writes records as a SpreadsheetML workbook with a header row
func WriteWorkbook(writer io.Writer, records []*licence.DriverRecord) error {
	rows := [][]string{Header}

	for _, record := range records {
		rows = append(rows, []string{
			record.ClientName,
			record.LicenceNumber,
			record.Class,
			record.ExpiryDate,
			record.LicenceStatus,
			record.MedicalDueDate,
			record.CommentText(),
		})
	}

	return spreadsheetml.Encode(writer, sheetName, rows)
}

// ReadWorkbook rebuilds a snapshot from a workbook made by WriteWorkbook.
// Columns are found by header name, and a workbook without data rows gives
// an empty snapshot.
func ReadWorkbook(reader io.Reader, date time.Time) (*licence.Snapshot, error) {
	rows, err := spreadsheetml.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot workbook: %w", err)
	}

	if len(rows) < 2 {
		return licence.NewSnapshot(date, nil), nil
	}

	columns := map[string]int{}
	for i, name := range rows[0] {
		columns[name] = i
	}

	value := func(row []string, column string) string {
		i, exists := columns[column]
		if !exists || i >= len(row) {
			return ""
		}

		return row[i]
	}

	records := make([]*licence.DriverRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, &licence.DriverRecord{
			ClientName:     value(row, ColumnClientName),
			LicenceNumber:  value(row, ColumnLicenceNumber),
			Class:          value(row, ColumnClass),
			ExpiryDate:     value(row, ColumnExpiryDate),
			LicenceStatus:  value(row, ColumnLicenceStatus),
			MedicalDueDate: value(row, ColumnMedicalDueDate),
			Comments:       licence.SplitComments(value(row, ColumnComments)),
		})
	}

	return licence.NewSnapshot(date, records), nil
}
