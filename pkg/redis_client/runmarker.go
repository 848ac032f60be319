package redis_client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/licencecheck/licencecheck/pkg/util"
)

const RunMarkerExpiration = 36 * time.Hour

// RunMarker remembers which input feed was already processed for a day. A
// nil marker never reports a day as processed.
type RunMarker struct {
	Cache cache.CacheInterface[string]
}

func NewRunMarker() *RunMarker {
	redisStore := redisstore.NewRedis(Client, store.WithExpiration(RunMarkerExpiration))

	return &RunMarker{
		Cache: cache.New[string](redisStore),
	}
}

func RunMarkerKey(date time.Time) string {
	return fmt.Sprintf("licencecheck:processed:%s", date.Format(util.DateFormat))
}

// Digest is the hex SHA-256 of an input feed
func Digest(contents []byte) string {
	sum := sha256.Sum256(contents)

	return hex.EncodeToString(sum[:])
}

func (m *RunMarker) Processed(ctx context.Context, date time.Time, digest string) bool {
	if m == nil {
		return false
	}

	stored, err := m.Cache.Get(ctx, RunMarkerKey(date))

	return err == nil && stored == digest
}

func (m *RunMarker) Mark(ctx context.Context, date time.Time, digest string) error {
	if m == nil {
		return nil
	}

	return m.Cache.Set(ctx, RunMarkerKey(date), digest)
}
