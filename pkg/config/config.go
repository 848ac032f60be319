package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/licencecheck/licencecheck/pkg/util"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

const (
	SnapshotStoreFile  = "file"
	SnapshotStoreMongo = "mongo"
)

type Config struct {
	BaseDir  string         `yaml:"base_dir"`
	Email    EmailConfig    `yaml:"email"`
	Server   ServerConfig   `yaml:"server"`
	Upload   UploadConfig   `yaml:"upload"`
	Policy   PolicyConfig   `yaml:"policy"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Redis    RedisConfig    `yaml:"redis"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type EmailConfig struct {
	From string `yaml:"from_address"`
	// Recipients is separated by ; or ,
	Recipients string `yaml:"recipients"`
	Transport  string `yaml:"transport"`

	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`

	GmailClientID     string `yaml:"gmail_client_id"`
	GmailClientSecret string `yaml:"gmail_client_secret"`
	GmailRefreshToken string `yaml:"gmail_refresh_token"`
}

func (e EmailConfig) RecipientList() []string {
	return util.SplitList(e.Recipients)
}

// ServerConfig is the fleet system host the data loader uploads to
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type UploadConfig struct {
	Enabled    bool   `yaml:"enabled"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Executable string `yaml:"executable"`
}

type PolicyConfig struct {
	ExpiryWindowDays      int           `yaml:"expiry_window_days"`
	DeleteYesterdayOutput bool          `yaml:"delete_yesterday_output"`
	LogRetention          int           `yaml:"log_retention"`
	OutputMaxAge          time.Duration `yaml:"output_max_age"`
}

type SnapshotConfig struct {
	Store           string `yaml:"store"`
	MongoConnection string `yaml:"mongo_connection"`
	MongoDatabase   string `yaml:"mongo_database"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
}

type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
}

func Default() *Config {
	return &Config{
		BaseDir: ".",
		Email: EmailConfig{
			From:      "no-reply@localhost",
			Transport: "smtp",
			SMTPHost:  "localhost",
			SMTPPort:  25,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 2000,
		},
		Upload: UploadConfig{
			Enabled:    true,
			Executable: "FADATALOADER.EXE",
		},
		Policy: PolicyConfig{
			ExpiryWindowDays:      7,
			DeleteYesterdayOutput: true,
			LogRetention:          3,
			OutputMaxAge:          48 * time.Hour,
		},
		Snapshot: SnapshotConfig{
			Store:           SnapshotStoreFile,
			MongoConnection: "mongodb://localhost:27017/",
			MongoDatabase:   "licencecheck",
		},
	}
}

// Load reads the config file at path, seeding it with defaults when it does
// not exist yet. A .env file and LICENCECHECK_* variables override the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	config := Default()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := seed(path, config); err != nil {
			return nil, fmt.Errorf("seed config %s: %w", path, err)
		}
		log.Info().Str("path", path).Msg("Created default config file")
	} else if err != nil {
		return nil, err
	} else if err := read(path, config); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := config.applyEnvironment(util.GetEnvironmentVariables()); err != nil {
		return nil, err
	}

	return config, config.Validate()
}

func isINI(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".ini")
}

func read(path string, config *Config) error {
	if isINI(path) {
		return readINI(path, config)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(contents, config)
}

func seed(path string, config *Config) error {
	if isINI(path) {
		return writeINI(path, config)
	}

	contents, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, contents, 0o600)
}

func (c *Config) applyEnvironment(env map[string]string) error {
	strs := map[string]*string{
		"LICENCECHECK_BASE_DIR":            &c.BaseDir,
		"LICENCECHECK_EMAIL_FROM":          &c.Email.From,
		"LICENCECHECK_EMAIL_RECIPIENTS":    &c.Email.Recipients,
		"LICENCECHECK_EMAIL_TRANSPORT":     &c.Email.Transport,
		"LICENCECHECK_SMTP_HOST":           &c.Email.SMTPHost,
		"LICENCECHECK_GMAIL_CLIENT_ID":     &c.Email.GmailClientID,
		"LICENCECHECK_GMAIL_CLIENT_SECRET": &c.Email.GmailClientSecret,
		"LICENCECHECK_GMAIL_REFRESH_TOKEN": &c.Email.GmailRefreshToken,
		"LICENCECHECK_SERVER_HOST":         &c.Server.Host,
		"LICENCECHECK_UPLOAD_USER":         &c.Upload.User,
		"LICENCECHECK_UPLOAD_PASSWORD":     &c.Upload.Password,
		"LICENCECHECK_UPLOAD_EXECUTABLE":   &c.Upload.Executable,
		"LICENCECHECK_SNAPSHOT_STORE":      &c.Snapshot.Store,
		"LICENCECHECK_MONGODB_CONNECTION":  &c.Snapshot.MongoConnection,
		"LICENCECHECK_MONGODB_DATABASE":    &c.Snapshot.MongoDatabase,
		"LICENCECHECK_REDIS_ADDRESS":       &c.Redis.Address,
		"LICENCECHECK_REDIS_PASSWORD":      &c.Redis.Password,
		"LICENCECHECK_PUSHGATEWAY_URL":     &c.Metrics.PushgatewayURL,
	}
	for name, target := range strs {
		if value, exists := env[name]; exists && value != "" {
			*target = value
		}
	}

	ints := map[string]*int{
		"LICENCECHECK_SMTP_PORT":          &c.Email.SMTPPort,
		"LICENCECHECK_SERVER_PORT":        &c.Server.Port,
		"LICENCECHECK_EXPIRY_WINDOW_DAYS": &c.Policy.ExpiryWindowDays,
		"LICENCECHECK_REDIS_DATABASE":     &c.Redis.Database,
	}
	for name, target := range ints {
		value, exists := env[name]
		if !exists || value == "" {
			continue
		}

		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*target = parsed
	}

	if value := env["LICENCECHECK_UPLOAD_ENABLED"]; value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("LICENCECHECK_UPLOAD_ENABLED: %w", err)
		}
		c.Upload.Enabled = enabled
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Policy.ExpiryWindowDays < 0 {
		return fmt.Errorf("policy expiry_window_days must not be negative, got %d", c.Policy.ExpiryWindowDays)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", c.Server.Port)
	}
	if c.Snapshot.Store != SnapshotStoreFile && c.Snapshot.Store != SnapshotStoreMongo {
		return fmt.Errorf("unknown snapshot store %q", c.Snapshot.Store)
	}
	if c.BaseDir == "" {
		return errors.New("base_dir must be set")
	}

	return nil
}
