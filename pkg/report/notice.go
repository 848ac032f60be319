package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/licencecheck/licencecheck/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

const noticeWorkers = 4

var unsafeFilenameCharacters = regexp.MustCompile(`[\\/*?:"<>|]`)

// SafeName turns an operator name into something usable in a file name
func SafeName(name string) string {
	name = unsafeFilenameCharacters.ReplaceAllString(name, "_")
	name = strings.ReplaceAll(name, ",", "")

	return strings.ReplaceAll(name, " ", "_")
}

// Notice is the individual message for one operator and one change
type Notice struct {
	Change *Change
	Date   time.Time
	Path   string
}

func (n *Notice) Subject() string {
	return fmt.Sprintf("[Driver Alert] %s – %s", n.Change.Operator.OperatorName, n.Change.Title())
}

type noticePage struct {
	Date   string
	Change *Change
}

// Body renders the notice HTML
func (n *Notice) Body() (string, error) {
	var builder strings.Builder

	err := templates.ExecuteTemplate(&builder, "notice.html", &noticePage{
		Date:   n.Date.Format(util.DateFormat),
		Change: n.Change,
	})

	return builder.String(), err
}

// WriteNotices writes one HTML file per change into directory. Files are
// named after the operator and category so a repeated pair overwrites. The
// notices written are returned even when others failed.
func WriteNotices(directory string, changes []*Change, date time.Time) ([]*Notice, error) {
	notices := make([]*Notice, 0, len(changes))
	positions := map[string]int{}

	for _, change := range changes {
		notice := &Notice{
			Change: change,
			Date:   date,
			Path:   filepath.Join(directory, fmt.Sprintf("%s_%s.html", SafeName(change.Operator.OperatorName), change.Category())),
		}

		if position, exists := positions[notice.Path]; exists {
			notices[position] = notice
			continue
		}

		positions[notice.Path] = len(notices)
		notices = append(notices, notice)
	}

	written := make([]bool, len(notices))

	p := pool.New().WithErrors().WithMaxGoroutines(noticeWorkers)
	for i, notice := range notices {
		i, notice := i, notice

		p.Go(func() error {
			body, err := notice.Body()
			if err != nil {
				return fmt.Errorf("render notice %s: %w", notice.Path, err)
			}

			if err := os.WriteFile(notice.Path, []byte(body), 0o644); err != nil {
				return err
			}
			written[i] = true

			return nil
		})
	}
	err := p.Wait()

	succeeded := make([]*Notice, 0, len(notices))
	for i, notice := range notices {
		if written[i] {
			succeeded = append(succeeded, notice)
		}
	}

	log.Info().Int("notices", len(succeeded)).Int("failed", len(notices)-len(succeeded)).Str("directory", directory).Msg("Written operator notices")

	return succeeded, err
}
