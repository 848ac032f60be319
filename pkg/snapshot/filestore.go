package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/licencecheck/licencecheck/pkg/licence"
	"github.com/licencecheck/licencecheck/pkg/util"
)

// FileStore keeps each day as output/ARIS_<date>.xml
type FileStore struct {
	Directory string
}

func (s *FileStore) Path(date time.Time) string {
	return filepath.Join(s.Directory, fmt.Sprintf("ARIS_%s.xml", date.Format(util.DateFormat)))
}

func (s *FileStore) Save(_ context.Context, snapshot *licence.Snapshot) error {
	path := s.Path(snapshot.Date)

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteWorkbook(file, snapshot.Records); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return file.Close()
}

func (s *FileStore) Load(_ context.Context, date time.Time) (*licence.Snapshot, error) {
	file, err := os.Open(s.Path(date))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadWorkbook(file, date)
}

func (s *FileStore) Delete(_ context.Context, date time.Time) error {
	err := os.Remove(s.Path(date))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}
