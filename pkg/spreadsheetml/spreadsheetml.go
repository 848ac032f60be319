// Package spreadsheetml reads and writes single table Excel 2003 XML
// workbooks where every cell is a string.
package spreadsheetml

import (
	"encoding/xml"
	"io"
)

const (
	namespaceSpreadsheet = "urn:schemas-microsoft-com:office:spreadsheet"
	namespaceOffice      = "urn:schemas-microsoft-com:office:office"
	namespaceExcel       = "urn:schemas-microsoft-com:office:excel"
	namespaceHTML        = "http://www.w3.org/TR/REC-html40"

	cellTypeString = "String"
)

type workbook struct {
	XMLName    xml.Name `xml:"Workbook"`
	Xmlns      string   `xml:"xmlns,attr"`
	XmlnsO     string   `xml:"xmlns:o,attr"`
	XmlnsX     string   `xml:"xmlns:x,attr"`
	XmlnsSS    string   `xml:"xmlns:ss,attr"`
	XmlnsHTML  string   `xml:"xmlns:html,attr"`
	Worksheets []worksheet
}

type worksheet struct {
	XMLName xml.Name `xml:"Worksheet"`
	Name    string   `xml:"ss:Name,attr"`
	Rows    []row    `xml:"Table>Row"`
}

type row struct {
	Cells []cell `xml:"Cell"`
}

type cell struct {
	Data data `xml:"Data"`
}

type data struct {
	Type  string `xml:"ss:Type,attr"`
	Value string `xml:",chardata"`
}

// Encode writes rows as one worksheet. The first row is normally the header.
func Encode(writer io.Writer, sheetName string, rows [][]string) error {
	document := workbook{
		Xmlns:     namespaceSpreadsheet,
		XmlnsO:    namespaceOffice,
		XmlnsX:    namespaceExcel,
		XmlnsSS:   namespaceSpreadsheet,
		XmlnsHTML: namespaceHTML,
		Worksheets: []worksheet{
			{Name: sheetName},
		},
	}

	for _, values := range rows {
		r := row{Cells: make([]cell, 0, len(values))}
		for _, value := range values {
			r.Cells = append(r.Cells, cell{Data: data{Type: cellTypeString, Value: value}})
		}
		document.Worksheets[0].Rows = append(document.Worksheets[0].Rows, r)
	}

	if _, err := io.WriteString(writer, xml.Header); err != nil {
		return err
	}

	encoder := xml.NewEncoder(writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(document); err != nil {
		return err
	}

	return encoder.Close()
}

type decodeWorkbook struct {
	Worksheets []struct {
		Rows []struct {
			Cells []struct {
				Data *struct {
					Value string `xml:",chardata"`
				} `xml:"Data"`
			} `xml:"Cell"`
		} `xml:"Table>Row"`
	} `xml:"Worksheet"`
}

// Decode returns the rows of every worksheet in document order. A cell
// without a Data element reads as an empty string.
func Decode(reader io.Reader) ([][]string, error) {
	var document decodeWorkbook
	if err := xml.NewDecoder(reader).Decode(&document); err != nil {
		return nil, err
	}

	var rows [][]string
	for _, sheet := range document.Worksheets {
		for _, r := range sheet.Rows {
			values := make([]string, 0, len(r.Cells))
			for _, c := range r.Cells {
				if c.Data == nil {
					values = append(values, "")
				} else {
					values = append(values, c.Data.Value)
				}
			}
			rows = append(rows, values)
		}
	}

	return rows, nil
}
