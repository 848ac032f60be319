package formats

import (
	"io"

	"github.com/licencecheck/licencecheck/pkg/licence"
)

// Format reads a complete feed file and exposes the driver records in it
type Format interface {
	ParseFile(io.Reader) error
	DriverRecords() []*licence.DriverRecord
}
