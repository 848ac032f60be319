package licence

import (
	"time"

	"github.com/licencecheck/licencecheck/pkg/util"
)

// Snapshot is every driver record for one calendar day
type Snapshot struct {
	Date    time.Time
	Records []*DriverRecord
}

func NewSnapshot(date time.Time, records []*DriverRecord) *Snapshot {
	if records == nil {
		records = []*DriverRecord{}
	}

	return &Snapshot{
		Date:    util.DateOnly(date),
		Records: records,
	}
}

// Index maps licence keys to records and the keys in first-seen order.
// A repeated key keeps the last record.
func (s *Snapshot) Index() (map[string]*DriverRecord, []string) {
	index := make(map[string]*DriverRecord, len(s.Records))
	var order []string

	for _, record := range s.Records {
		key := record.Key()
		if _, exists := index[key]; !exists {
			order = append(order, key)
		}
		index[key] = record
	}

	return index, order
}

func (s *Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.Records))
	for _, record := range s.Records {
		keys = append(keys, record.Key())
	}

	return keys
}

func (s *Snapshot) DateString() string {
	return s.Date.Format(util.DateFormat)
}
