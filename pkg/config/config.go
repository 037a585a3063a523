package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"

	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"

	defaultUserAgent = "Mozilla/5.0 (compatible; lesingerouge-crawler/1.0)"
)

// Config holds the application configuration.
type Config struct {
	LogLevel string `mapstructure:"LOG_LEVEL"`

	VisitedBackend string `mapstructure:"VISITED_BACKEND"`
	RedisHost      string `mapstructure:"REDIS_HOST"`
	RedisPort      int    `mapstructure:"REDIS_PORT"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int    `mapstructure:"REDIS_DB"`
	SQLitePath     string `mapstructure:"SQLITE_PATH"`

	MaxConcurrency int           `mapstructure:"MAX_CONCURRENCY"`
	CrawlDepth     int           `mapstructure:"CRAWL_DEPTH"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	FetchMode      string        `mapstructure:"FETCH_MODE"`
	UserAgent      string        `mapstructure:"USER_AGENT"`
	MaxBodyBytes   int64         `mapstructure:"MAX_BODY_BYTES"`

	// Optional rotation lists for the HTTP fetcher, comma-separated in the
	// environment.
	UserAgents []string `mapstructure:"USER_AGENTS"`
	ProxyURLs  []string `mapstructure:"PROXY_URLS"`

	OutputQueue string `mapstructure:"OUTPUT_QUEUE"`
	OutputFile  string `mapstructure:"OUTPUT_FILE"`
	PostgresURL string `mapstructure:"POSTGRES_URL"`
	RetryQueue  string `mapstructure:"RETRY_QUEUE"`

	MetricsAddr string `mapstructure:"METRICS_ADDR"`
}

// RedisAddr joins host and port for the redis client.
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort))
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"log-level":       "LOG_LEVEL",
	"visited-backend": "VISITED_BACKEND",
	"redis-host":      "REDIS_HOST",
	"redis-port":      "REDIS_PORT",
	"sqlite-path":     "SQLITE_PATH",
	"max-concurrency": "MAX_CONCURRENCY",
	"depth":           "CRAWL_DEPTH",
	"timeout":         "REQUEST_TIMEOUT",
	"fetch-mode":      "FETCH_MODE",
	"user-agent":      "USER_AGENT",
	"user-agents":     "USER_AGENTS",
	"proxy-urls":      "PROXY_URLS",
	"output-queue":    "OUTPUT_QUEUE",
	"output-file":     "OUTPUT_FILE",
	"postgres-url":    "POSTGRES_URL",
	"retry-queue":     "RETRY_QUEUE",
	"metrics-addr":    "METRICS_ADDR",
}

// RegisterFlags adds the flags that can override environment settings.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("visited-backend", BackendRedis, "visited store backend (redis, sqlite)")
	fs.String("redis-host", "localhost", "redis host")
	fs.Int("redis-port", 6379, "redis port")
	fs.String("sqlite-path", "crawler.db", "sqlite visited store file")
	fs.Int("max-concurrency", 200, "maximum simultaneous requests per chunk")
	fs.Int("depth", 2, "number of link levels to follow after the seed")
	fs.Duration("timeout", 30*time.Second, "per-request timeout")
	fs.String("fetch-mode", FetchModeHTTP, "page fetcher (http, browser)")
	fs.String("user-agent", defaultUserAgent, "User-Agent header sent with every request")
	fs.StringSlice("user-agents", nil, "user agents picked at random per request (http fetcher)")
	fs.StringSlice("proxy-urls", nil, "proxies used in rotation (http fetcher)")
	fs.String("output-queue", "", "redis list receiving result records")
	fs.String("output-file", "", "file receiving result records as JSON lines")
	fs.String("postgres-url", "", "postgres DSN for the result table and failed URL ledger")
	fs.String("retry-queue", "", "redis list receiving URLs that failed to fetch")
	fs.String("metrics-addr", "", "listen address for /metrics and /api/health")
}

// Load reads configuration from a .env file, the environment and, when
// given, command-line flags registered with RegisterFlags.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing .env is fine; the environment alone can configure the crawler.
	_ = v.ReadInConfig()

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VISITED_BACKEND", BackendRedis)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SQLITE_PATH", "crawler.db")
	v.SetDefault("MAX_CONCURRENCY", 200)
	v.SetDefault("CRAWL_DEPTH", 2)
	v.SetDefault("REQUEST_TIMEOUT", 30*time.Second)
	v.SetDefault("FETCH_MODE", FetchModeHTTP)
	v.SetDefault("USER_AGENT", defaultUserAgent)
	v.SetDefault("MAX_BODY_BYTES", 10*1024*1024)
	v.SetDefault("USER_AGENTS", []string{})
	v.SetDefault("PROXY_URLS", []string{})
	v.SetDefault("OUTPUT_QUEUE", "")
	v.SetDefault("OUTPUT_FILE", "")
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("RETRY_QUEUE", "")
	v.SetDefault("METRICS_ADDR", "")

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings the crawler cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxConcurrency < 1 {
		errs = append(errs, fmt.Errorf("MAX_CONCURRENCY must be at least 1, got %d", c.MaxConcurrency))
	}
	if c.CrawlDepth < 0 {
		errs = append(errs, fmt.Errorf("CRAWL_DEPTH must not be negative, got %d", c.CrawlDepth))
	}
	switch c.VisitedBackend {
	case BackendRedis, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown VISITED_BACKEND %q", c.VisitedBackend))
	}
	switch c.FetchMode {
	case FetchModeHTTP, FetchModeBrowser:
	default:
		errs = append(errs, fmt.Errorf("unknown FETCH_MODE %q", c.FetchMode))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_LEVEL %q", c.LogLevel))
	}
	return errors.Join(errs...)
}
