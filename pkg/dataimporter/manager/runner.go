package manager

import (
	"context"
	"path/filepath"
	"time"

	"github.com/licencecheck/licencecheck/pkg/config"
	"github.com/licencecheck/licencecheck/pkg/database"
	"github.com/licencecheck/licencecheck/pkg/notify"
	"github.com/licencecheck/licencecheck/pkg/redis_client"
	"github.com/licencecheck/licencecheck/pkg/snapshot"
	"github.com/licencecheck/licencecheck/pkg/stats"
	"github.com/licencecheck/licencecheck/pkg/upload"
	"github.com/licencecheck/licencecheck/pkg/workspace"
	"github.com/rs/zerolog/log"
)

// Runner carries the collaborators of the daily run
type Runner struct {
	Config    *config.Config
	Workspace *workspace.Workspace
	Store     snapshot.Store
	Mailer    notify.Mailer
	Marker    *redis_client.RunMarker
	Loader    *upload.Loader
	Metrics   *stats.RunMetrics

	Now func() time.Time
}

// NewRunner connects everything the config asks for. The returned close
// function releases those connections.
func NewRunner(ctx context.Context, cfg *config.Config) (*Runner, func(), error) {
	runner := &Runner{
		Config:    cfg,
		Workspace: workspace.New(cfg.BaseDir),
		Loader:    NewLoader(cfg),
		Metrics:   stats.NewRunMetrics(),
		Now:       time.Now,
	}
	var closers []func()
	closeAll := func() {
		for _, closer := range closers {
			closer()
		}
	}

	store, closeStore, err := OpenStore(cfg, runner.Workspace)
	if err != nil {
		return nil, nil, err
	}
	runner.Store = store
	closers = append(closers, closeStore)

	if cfg.Redis.Address != "" {
		if err := redis_client.Connect(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.Database); err != nil {
			closeAll()
			return nil, nil, err
		}
		runner.Marker = redis_client.NewRunMarker()
		closers = append(closers, func() { redis_client.Disconnect() })
	} else {
		log.Debug().Msg("Redis not configured, run marker disabled")
	}

	mailer, err := notify.NewMailer(ctx, notify.Settings{
		Transport:         cfg.Email.Transport,
		SMTPHost:          cfg.Email.SMTPHost,
		SMTPPort:          cfg.Email.SMTPPort,
		GmailClientID:     cfg.Email.GmailClientID,
		GmailClientSecret: cfg.Email.GmailClientSecret,
		GmailRefreshToken: cfg.Email.GmailRefreshToken,
	})
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	runner.Mailer = mailer

	return runner, closeAll, nil
}

// OpenStore returns the snapshot store selected in the config
func OpenStore(cfg *config.Config, w *workspace.Workspace) (snapshot.Store, func(), error) {
	if cfg.Snapshot.Store == config.SnapshotStoreMongo {
		if err := database.Connect(cfg.Snapshot.MongoConnection, cfg.Snapshot.MongoDatabase); err != nil {
			return nil, nil, err
		}

		return snapshot.NewMongoStore(), func() { database.Disconnect() }, nil
	}

	return &snapshot.FileStore{Directory: w.Folder(workspace.OutputFolder)}, func() {}, nil
}

func NewLoader(cfg *config.Config) *upload.Loader {
	directory := filepath.Join(cfg.BaseDir, workspace.DataLoaderFolder)

	executable := cfg.Upload.Executable
	if !filepath.IsAbs(executable) {
		executable = filepath.Join(directory, executable)
	}

	return &upload.Loader{
		Directory:  directory,
		Executable: executable,
		Host:       cfg.Server.Host,
		Port:       cfg.Server.Port,
		User:       cfg.Upload.User,
		Password:   cfg.Upload.Password,
	}
}
