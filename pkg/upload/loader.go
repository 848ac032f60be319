package upload

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

const (
	DefaultDialTimeout  = 3 * time.Second
	DefaultRunTimeout   = 300 * time.Second
	DefaultPollAttempts = 30
	DefaultPollInterval = 3 * time.Second
	DefaultLogFreshness = 10 * time.Minute

	LoaderLogDirectory = "logs"
)

// Loader drives the external data loader executable that imports the
// staging workbook into the fleet system
type Loader struct {
	Directory  string
	Executable string

	Host     string
	Port     int
	User     string
	Password string

	DialTimeout  time.Duration
	RunTimeout   time.Duration
	PollAttempts int
	PollInterval time.Duration
	LogFreshness time.Duration

	// Now is used to judge loader log freshness
	Now func() time.Time
}

// Result is the outcome of one upload attempt. Failures are human readable
// and end up in the summary report.
type Result struct {
	ServerOnline bool
	Success      bool
	ExitCode     *int
	Failures     []string
}

func (l *Loader) Address() string {
	return net.JoinHostPort(l.Host, strconv.Itoa(l.Port))
}

func (l *Loader) withDefaults() {
	if l.DialTimeout == 0 {
		l.DialTimeout = DefaultDialTimeout
	}
	if l.RunTimeout == 0 {
		l.RunTimeout = DefaultRunTimeout
	}
	if l.PollAttempts == 0 {
		l.PollAttempts = DefaultPollAttempts
	}
	if l.PollInterval == 0 {
		l.PollInterval = DefaultPollInterval
	}
	if l.LogFreshness == 0 {
		l.LogFreshness = DefaultLogFreshness
	}
	if l.Now == nil {
		l.Now = time.Now
	}
}

// ServerOnline reports whether the loader's target accepts TCP connections
func (l *Loader) ServerOnline(ctx context.Context) bool {
	l.withDefaults()

	dialer := net.Dialer{Timeout: l.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", l.Address())
	if err != nil {
		return false
	}
	conn.Close()

	return true
}

// Upload imports the staging file for date. The upload only counts as
// confirmed when the loader exits cleanly, writes its processed file and
// leaves a fresh non-empty log behind.
func (l *Loader) Upload(ctx context.Context, date time.Time) *Result {
	l.withDefaults()
	result := &Result{}

	if !l.ServerOnline(ctx) {
		log.Error().Str("server", l.Address()).Msg("Server is unreachable, upload step skipped")
		result.Failures = append(result.Failures, fmt.Sprintf("❌ Server unreachable: %s", l.Address()))
		return result
	}
	result.ServerOnline = true
	log.Info().Str("server", l.Address()).Msg("Server is reachable, proceeding with upload")

	if err := os.MkdirAll(filepath.Join(l.Directory, LoaderLogDirectory), 0o755); err != nil {
		result.Failures = append(result.Failures, fmt.Sprintf("❌ Loader log directory: %s", err))
		return result
	}

	exitCode, err := l.run(ctx, date)
	if err != nil {
		log.Error().Err(err).Msg("Failed to run data loader")
		result.Failures = append(result.Failures, fmt.Sprintf("❌ Loader launch failed: %s", err))
	} else {
		result.ExitCode = &exitCode
		log.Info().Int("exitcode", exitCode).Msg("Data loader finished")
	}

	processed := ProcessedPath(l.Directory, date)
	foundProcessed := l.waitForFile(ctx, processed) == nil

	result.Success = foundProcessed && result.ExitCode != nil && *result.ExitCode == 0

	if result.Success {
		log.Info().Str("path", processed).Msg("Upload confirmed")
	} else {
		if !foundProcessed {
			log.Warn().Str("path", processed).Msg("Upload may have failed, confirmation file not found")
			result.Failures = append(result.Failures, "⚠️ No confirmation file generated")
		}
		if result.ExitCode == nil {
			result.Failures = append(result.Failures, "⚠️ Loader did not run (no exit code)")
		} else if *result.ExitCode != 0 {
			result.Failures = append(result.Failures, fmt.Sprintf("⚠️ Loader exit code: %d", *result.ExitCode))
		}
	}

	if result.Success && !l.freshLog() {
		result.Success = false
		result.Failures = append(result.Failures, "⚠️ Loader log missing, empty, or stale")
	}

	return result
}

func (l *Loader) run(ctx context.Context, date time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, l.RunTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, l.Executable,
		"-n", "10",
		"-l", LoaderLogDirectory,
		"-a", l.Address(),
		"-u", l.User,
		"-p", l.Password,
		"-i", filepath.Base(StagingPath(l.Directory, date)),
	)
	cmd.Dir = l.Directory

	err := cmd.Run()

	var exitError *exec.ExitError
	if errors.As(err, &exitError) && ctx.Err() == nil {
		return exitError.ExitCode(), nil
	} else if err != nil {
		return 0, err
	}

	return 0, nil
}

func (l *Loader) waitForFile(ctx context.Context, path string) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(l.PollInterval), uint64(l.PollAttempts-1)),
		ctx,
	)

	return backoff.Retry(func() error {
		_, err := os.Stat(path)
		return err
	}, policy)
}

func (l *Loader) freshLog() bool {
	latest, err := LatestLog(filepath.Join(l.Directory, LoaderLogDirectory))
	if err != nil || latest == nil {
		return false
	}

	return latest.Size() > 0 && l.Now().Sub(latest.ModTime()) <= l.LogFreshness
}
