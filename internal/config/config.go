// Package config loads smartmark settings. Environment variables
// (SMARTMARK_*) override config.yaml, which overrides built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nikbrunner/smartmark/internal/logger"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "SMARTMARK"
	envConfigDir   = "SMARTMARK_CONFIG_DIR"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"

	FeedLocal    = "local"
	FeedRedis    = "redis"
	FeedPostgres = "postgres"
)

var (
	ErrBackendUnknown  = errors.New("config: unknown storage backend")
	ErrFeedUnknown     = errors.New("config: unknown feed driver")
	ErrDSNRequired     = errors.New("config: storage.postgres_dsn is required")
	ErrRedisAddr       = errors.New("config: feed.redis.addr is required")
	ErrFeedNeedsPG     = errors.New("config: postgres feed requires the postgres backend")
	ErrLogLevel        = errors.New("config: unknown log level")
	ErrTimeout         = errors.New("config: timeouts must be positive")
	ErrTokenNeedsKey   = errors.New("config: token requires token_secret")
	ErrOwnerOrTokenReq = errors.New("config: owner or token is required")
)

const defaultConfigYAML = `# smartmark configuration
owner: local

log:
  level: info
  pretty: false

storage:
  backend: sqlite
  timeout: 10s

feed:
  driver: local

metadata:
  timeout: 5s

check:
  concurrency: 8
  timeout: 10s
  # 404s on these domains are reported as possibly private, not dead.
  private_domains:
    - github.com
    - gitlab.com
`

// Config is the resolved configuration.
type Config struct {
	Dir string

	Owner       string
	Token       string
	TokenSecret string

	Log      LogConfig
	Storage  StorageConfig
	Feed     FeedConfig
	Metadata MetadataConfig
	Check    CheckConfig
}

type LogConfig struct {
	Level  string
	Pretty bool
	File   string
}

type StorageConfig struct {
	Backend     string
	SQLitePath  string
	PostgresDSN string
	Timeout     time.Duration
}

type FeedConfig struct {
	Driver string
	Redis  RedisConfig
}

type RedisConfig struct {
	Addr        string
	Username    string
	Password    string
	DB          int
	DialTimeout time.Duration
}

type MetadataConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// CheckConfig drives the dead-link check.
type CheckConfig struct {
	Concurrency    int
	Timeout        time.Duration
	PrivateDomains []string
}

// DefaultDir returns $SMARTMARK_CONFIG_DIR or ~/.config/smartmark.
func DefaultDir() (string, error) {
	if dir := os.Getenv(envConfigDir); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "smartmark"), nil
}

// Load reads configDir/config.yaml, creating it with defaults on first run.
func Load(configDir string) (*Config, error) {
	v, err := loadViper(configDir)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Dir:         configDir,
		Owner:       v.GetString("owner"),
		Token:       v.GetString("token"),
		TokenSecret: v.GetString("token_secret"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Pretty: v.GetBool("log.pretty"),
			File:   v.GetString("log.file"),
		},
		Storage: StorageConfig{
			Backend:     v.GetString("storage.backend"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
			Timeout:     v.GetDuration("storage.timeout"),
		},
		Feed: FeedConfig{
			Driver: v.GetString("feed.driver"),
			Redis: RedisConfig{
				Addr:        v.GetString("feed.redis.addr"),
				Username:    v.GetString("feed.redis.username"),
				Password:    v.GetString("feed.redis.password"),
				DB:          v.GetInt("feed.redis.db"),
				DialTimeout: v.GetDuration("feed.redis.dial_timeout"),
			},
		},
		Metadata: MetadataConfig{
			Timeout:   v.GetDuration("metadata.timeout"),
			UserAgent: v.GetString("metadata.user_agent"),
		},
		Check: CheckConfig{
			Concurrency:    v.GetInt("check.concurrency"),
			Timeout:        v.GetDuration("check.timeout"),
			PrivateDomains: v.GetStringSlice("check.private_domains"),
		},
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = filepath.Join(configDir, "bookmarks.db")
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(configDir, "smartmark.log")
	}
	return cfg, nil
}

func loadViper(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("owner", "local")
	v.SetDefault("token", "")
	v.SetDefault("token_secret", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.file", "")
	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.sqlite_path", "")
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.timeout", 10*time.Second)
	v.SetDefault("feed.driver", FeedLocal)
	v.SetDefault("feed.redis.addr", "localhost:6379")
	v.SetDefault("feed.redis.username", "")
	v.SetDefault("feed.redis.password", "")
	v.SetDefault("feed.redis.db", 0)
	v.SetDefault("feed.redis.dial_timeout", 5*time.Second)
	v.SetDefault("metadata.timeout", 5*time.Second)
	v.SetDefault("metadata.user_agent", "SmartMark-Bot/1.0")
	v.SetDefault("check.concurrency", 8)
	v.SetDefault("check.timeout", 10*time.Second)
	v.SetDefault("check.private_domains", []string{"github.com", "gitlab.com"})
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// Validate checks that the combination of settings can be wired.
func (c *Config) Validate() error {
	if c.Owner == "" && c.Token == "" {
		return ErrOwnerOrTokenReq
	}
	if c.Token != "" && c.TokenSecret == "" {
		return ErrTokenNeedsKey
	}
	if !logger.ValidLevel(c.Log.Level) {
		return fmt.Errorf("%w: %q", ErrLogLevel, c.Log.Level)
	}
	if c.Storage.Timeout <= 0 || c.Metadata.Timeout <= 0 || c.Check.Timeout <= 0 {
		return ErrTimeout
	}

	switch c.Storage.Backend {
	case BackendSQLite:
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return ErrDSNRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrBackendUnknown, c.Storage.Backend)
	}

	switch c.Feed.Driver {
	case FeedLocal:
	case FeedRedis:
		if c.Feed.Redis.Addr == "" {
			return ErrRedisAddr
		}
	case FeedPostgres:
		if c.Storage.Backend != BackendPostgres {
			return ErrFeedNeedsPG
		}
	default:
		return fmt.Errorf("%w: %q", ErrFeedUnknown, c.Feed.Driver)
	}
	return nil
}
