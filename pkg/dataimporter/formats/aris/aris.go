package aris

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/licencecheck/licencecheck/pkg/licence"
	"github.com/licencecheck/licencecheck/pkg/util"
)

// Feed is the daily fixed width driver licence export
type Feed struct {
	Records []*licence.DriverRecord
}

func (f *Feed) ParseFile(reader io.Reader) error {
	var lines []string

	// Lines have no length limit, an oversized line is just another
	// line the record types do not match
	bufferedReader := bufio.NewReader(reader)
	for {
		line, err := bufferedReader.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			lines = append(lines, strings.TrimSuffix(line, "\r"))
		}

		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return err
		}
	}

	f.Records = Parse(lines)

	return nil
}

func (f *Feed) DriverRecords() []*licence.DriverRecord {
	return f.Records
}

// Parse turns feed lines into driver records. A 100001 line opens a record,
// the 210001 lines after it add a medical due date and comments, and the next
// 100001 line or the end of input closes it. Short or malformed lines never
// fail, the affected fields just come out empty or truncated.
func Parse(lines []string) []*licence.DriverRecord {
	records := []*licence.DriverRecord{}

	var currentRecord *licence.DriverRecord
	var collectingComments []string

	for _, line := range lines {
		recordType := util.SliceString(line, recordTypeStart, recordTypeEnd)

		switch recordType {
		case RecordTypeDriver:
			if currentRecord != nil {
				currentRecord.Finalize(collectingComments)
				records = append(records, currentRecord)
				collectingComments = nil
			}

			currentRecord = parseDriverLine(line)
		case RecordTypeDetail:
			if currentRecord == nil {
				continue
			}

			if strings.Contains(line, medicalDueMarker) {
				if medicalDue, ok := parseShortDate(util.SliceTrimmed(line, medicalDueStart, medicalDueEnd)); ok {
					currentRecord.MedicalDueDate = medicalDue
				}
			}

			if util.SliceString(line, commentTagStart, commentTagEnd) == commentTag {
				comment := field(line, commentStart, commentEnd)
				if comment != "" && !strings.Contains(comment, actionsCountMarker) {
					collectingComments = append(collectingComments, comment)
				}
			}
		}
	}

	if currentRecord != nil {
		currentRecord.Finalize(collectingComments)
		records = append(records, currentRecord)
	}

	return records
}

// field cuts a trimmed value out of line as storable text. Byte offsets can
// split a multi-byte character and the feed is not always UTF-8.
func field(line string, start int, end int) string {
	return util.StorableText(util.SliceTrimmed(line, start, end))
}

func parseDriverLine(line string) *licence.DriverRecord {
	rawLicence := field(line, licenceNumberStart, licenceNumberEnd)

	return &licence.DriverRecord{
		ClientName:    field(line, clientNameStart, clientNameEnd),
		LicenceNumber: licence.FormatLicenceNumber(rawLicence),
		Class:         strings.ReplaceAll(field(line, classStart, classEnd), "*", ""),
		ExpiryDate: util.StorableText(century + util.SliceString(line, expiryYearStart, expiryMonthStart) +
			"-" + util.SliceString(line, expiryMonthStart, expiryDayStart) +
			"-" + util.SliceString(line, expiryDayStart, expiryDayEnd)),
		LicenceStatus: field(line, statusStart, statusEnd),
		Comments:      []string{},
	}
}

// parseShortDate expands a YYMMDD value into 20YY-MM-DD
func parseShortDate(raw string) (string, bool) {
	if len(raw) != 6 || !util.IsDigits(raw) {
		return "", false
	}

	return century + raw[0:2] + "-" + raw[2:4] + "-" + raw[4:6], true
}
