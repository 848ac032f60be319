package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/licencecheck/licencecheck/pkg/licence"
	"golang.org/x/exp/slices"
)

var ErrMissingColumns = errors.New("operator roster is missing required columns")

var RequiredColumns = []string{"DepartmentID", "DepartmentName", "OperatorID", "OperatorName", "LicenceNo"}

type Operator struct {
	DepartmentID   string `csv:"DepartmentID"`
	DepartmentName string `csv:"DepartmentName"`
	OperatorName   string `csv:"OperatorName"`
	OperatorID     string `csv:"OperatorID"`
	LicenceNo      string `csv:"LicenceNo"`
}

// Roster is the active operator list keyed by normalized licence number
type Roster struct {
	Operators []*Operator

	byKey map[string]*Operator
}

func Empty() *Roster {
	return &Roster{
		Operators: []*Operator{},
		byKey:     map[string]*Operator{},
	}
}

func Load(path string) (*Roster, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads the roster CSV. Licence numbers are stored normalized and a
// spreadsheet style trailing ".0" is stripped from operator IDs.
func Parse(reader io.Reader) (*Roster, error) {
	contents, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	contents = bytes.TrimPrefix(contents, []byte("\ufeff"))

	header, err := newCSVReader(contents).Read()
	if errors.Is(err, io.EOF) {
		header = []string{}
	} else if err != nil {
		return nil, fmt.Errorf("read roster header: %w", err)
	}

	var missing []string
	for _, column := range RequiredColumns {
		if !slices.Contains(header, column) {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: have %v, need %v", ErrMissingColumns, header, RequiredColumns)
	}

	var operators []*Operator
	if err := gocsv.UnmarshalCSV(newCSVReader(contents), &operators); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	roster := Empty()
	for _, operator := range operators {
		operator.LicenceNo = licence.NormalizeKey(strings.TrimSpace(operator.LicenceNo))
		operator.OperatorID = strings.TrimSuffix(strings.TrimSpace(operator.OperatorID), ".0")

		roster.Operators = append(roster.Operators, operator)
		if _, exists := roster.byKey[operator.LicenceNo]; !exists {
			roster.byKey[operator.LicenceNo] = operator
		}
	}

	return roster, nil
}

// Lookup returns the first operator listed against a licence key
func (r *Roster) Lookup(key string) (*Operator, bool) {
	operator, exists := r.byKey[key]

	return operator, exists
}

func (r *Roster) Len() int {
	return len(r.Operators)
}

func newCSVReader(contents []byte) *csv.Reader {
	reader := csv.NewReader(bytes.NewReader(contents))
	// Allow rows with missing trailing columns
	reader.FieldsPerRecord = -1

	return reader
}
