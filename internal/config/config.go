// Package config loads and validates crawler configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. CAREERS_HTTP_TIMEOUT.
const EnvPrefix = "CAREERS"

// DefaultUserAgent identifies the crawler to career sites.
const DefaultUserAgent = "HireableScraper/1.0 (+https://github.com/hireable)"

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Sites    SitesConfig    `mapstructure:"sites"`
	Storage  StorageConfig  `mapstructure:"storage"`
	DB       DBConfig       `mapstructure:"db"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// CrawlerConfig governs crawl pacing and page budgets.
type CrawlerConfig struct {
	UserAgent         string        `mapstructure:"user_agent"`
	PageDelay         time.Duration `mapstructure:"page_delay"`
	MaxPagesDefault   int           `mapstructure:"max_pages_default"`
	MaxPagesLimit     int           `mapstructure:"max_pages_limit"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// HTTPConfig configures the fetcher and its retry behavior.
type HTTPConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetries    int           `mapstructure:"max_retries"`
	BackoffStep   time.Duration `mapstructure:"backoff_step"`
	RespectRobots bool          `mapstructure:"respect_robots"`
}

// HeadlessConfig configures the headless rendering fetcher.
type HeadlessConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxParallel   int           `mapstructure:"max_parallel"`
	NavTimeout    time.Duration `mapstructure:"nav_timeout"`
	ReadySelector string        `mapstructure:"ready_selector"`
	SettleDelay   time.Duration `mapstructure:"settle_delay"`

	// PromotionThreshold is the visible-text length under which a page with
	// SPA markers is re-fetched headless.
	PromotionThreshold int `mapstructure:"promotion_threshold"`
}

// SitesConfig points at an alternative site registry file.
type SitesConfig struct {
	RegistryPath string `mapstructure:"registry_path"`
}

// StorageConfig selects where crawl archives are written.
type StorageConfig struct {
	LocalDir  string `mapstructure:"local_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// DBConfig controls access to the postings database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// PubSubConfig holds the crawl-completion topic.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding existing variables. Missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load builds a Config from defaults, an optional file, and the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_key", "")
	v.SetDefault("crawler.user_agent", DefaultUserAgent)
	v.SetDefault("crawler.page_delay", "1s")
	v.SetDefault("crawler.max_pages_default", 2)
	v.SetDefault("crawler.max_pages_limit", 10)
	v.SetDefault("crawler.requests_per_second", 0)
	v.SetDefault("crawler.burst", 1)
	v.SetDefault("http.timeout", "15s")
	v.SetDefault("http.max_retries", 2)
	v.SetDefault("http.backoff_step", "1s")
	v.SetDefault("http.respect_robots", false)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout", "25s")
	v.SetDefault("headless.ready_selector", "body")
	v.SetDefault("headless.settle_delay", "500ms")
	v.SetDefault("headless.promotion_threshold", 2048)
	v.SetDefault("sites.registry_path", "")
	v.SetDefault("storage.local_dir", "")
	v.SetDefault("storage.gcs_bucket", "")
	v.SetDefault("storage.prefix", "crawls")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.table", "job_postings")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_id", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Crawler.PageDelay < 0 {
		return fmt.Errorf("crawler.page_delay must be >= 0")
	}
	if c.Crawler.MaxPagesLimit <= 0 {
		return fmt.Errorf("crawler.max_pages_limit must be > 0")
	}
	if c.Crawler.MaxPagesDefault <= 0 || c.Crawler.MaxPagesDefault > c.Crawler.MaxPagesLimit {
		return fmt.Errorf("crawler.max_pages_default must be between 1 and crawler.max_pages_limit")
	}
	if c.Crawler.RequestsPerSecond < 0 {
		return fmt.Errorf("crawler.requests_per_second must be >= 0")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.DB.DSN != "" && c.DB.Table == "" {
		return fmt.Errorf("db.table must be set when db.dsn is configured")
	}
	if c.PubSub.TopicID != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id must be set when pubsub.topic_id is configured")
	}
	return nil
}

// ClampMaxPages applies the default to a non-positive request and caps it
// at the configured limit.
func (c Config) ClampMaxPages(requested int) int {
	if requested <= 0 {
		return c.Crawler.MaxPagesDefault
	}
	if requested > c.Crawler.MaxPagesLimit {
		return c.Crawler.MaxPagesLimit
	}
	return requested
}
