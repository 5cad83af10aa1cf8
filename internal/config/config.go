package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

var validRollbacks = map[string]bool{
	"snapshot": true,
	"inverse":  true,
}

const (
	DefaultAPIURL   = "https://jsonplaceholder.typicode.com"
	MaxPageSize     = 50
	defaultPageSize = 10
)

type Config struct {
	AppEnv   string        `toml:"app_env"`
	LogLevel string        `toml:"log_level"`
	LogFile  string        `toml:"log_file"`
	Client   ClientConfig  `toml:"client"`
	MockAPI  MockAPIConfig `toml:"mockapi"`

	errs []error
}

// ClientConfig drives the terminal client.
type ClientConfig struct {
	APIURL            string        `toml:"api_url"`
	Timeout           time.Duration `toml:"timeout"`
	PageSize          int           `toml:"page_size"`
	Infinite          bool          `toml:"infinite"`
	InfinitePageSize  int           `toml:"infinite_page_size"`
	RefreshInterval   time.Duration `toml:"refresh_interval"`
	MaskWriteFailures bool          `toml:"mask_write_failures"`
	Rollback          string        `toml:"rollback"`
}

// MockAPIConfig drives the local backing API server.
type MockAPIConfig struct {
	ServerPort string        `toml:"server_port"`
	SeedFile   string        `toml:"seed_file"`
	Latency    time.Duration `toml:"latency"`
	FailRate   float64       `toml:"fail_rate"`
	DSN        string        `toml:"dsn"`
	DB         DBConfig      `toml:"db"`
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) Validate() error {
	if err := errors.Join(c.errs...); err != nil {
		return err
	}
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}
	u, err := url.Parse(c.Client.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid TASKBOARD_API_URL %q: must be an absolute URL", c.Client.APIURL)
	}
	if c.Client.Timeout <= 0 {
		return fmt.Errorf("invalid TASKBOARD_TIMEOUT %s: must be positive", c.Client.Timeout)
	}
	if c.Client.PageSize < 1 || c.Client.PageSize > MaxPageSize {
		return fmt.Errorf("invalid TASKBOARD_PAGE_SIZE %d: must be between 1 and %d", c.Client.PageSize, MaxPageSize)
	}
	if c.Client.InfinitePageSize < 1 || c.Client.InfinitePageSize > MaxPageSize {
		return fmt.Errorf("invalid TASKBOARD_INFINITE_PAGE_SIZE %d: must be between 1 and %d", c.Client.InfinitePageSize, MaxPageSize)
	}
	if c.Client.RefreshInterval < 0 {
		return fmt.Errorf("invalid TASKBOARD_REFRESH_INTERVAL %s: must not be negative", c.Client.RefreshInterval)
	}
	if !validRollbacks[c.Client.Rollback] {
		return fmt.Errorf("invalid TASKBOARD_ROLLBACK %q: must be one of snapshot, inverse", c.Client.Rollback)
	}
	if _, err := strconv.Atoi(c.MockAPI.ServerPort); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.MockAPI.ServerPort, err)
	}
	if c.MockAPI.FailRate < 0 || c.MockAPI.FailRate > 1 {
		return fmt.Errorf("invalid MOCKAPI_FAIL_RATE %v: must be between 0 and 1", c.MockAPI.FailRate)
	}
	if c.MockAPI.Latency < 0 {
		return fmt.Errorf("invalid MOCKAPI_LATENCY %s: must not be negative", c.MockAPI.Latency)
	}
	if c.MockAPI.SeedFile != "" && c.MockAPI.PostgresDSN() != "" {
		return fmt.Errorf("MOCKAPI_SEED_FILE and a database source are mutually exclusive")
	}
	return nil
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	SSLMode  string `toml:"sslmode"`
}

func (d DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(d.SSLMode)),
	}
	return u.String()
}

// PostgresDSN returns MOCKAPI_DSN, or a DSN built from the DB_* settings
// when DB_HOST is set, or "" when fixtures do not come from a database.
func (m MockAPIConfig) PostgresDSN() string {
	if m.DSN != "" {
		return m.DSN
	}
	if m.DB.Host != "" {
		return m.DB.DSN()
	}
	return ""
}

func defaults() Config {
	return Config{
		AppEnv:   "local",
		LogLevel: "info",
		Client: ClientConfig{
			APIURL:            DefaultAPIURL,
			Timeout:           10 * time.Second,
			PageSize:          defaultPageSize,
			InfinitePageSize:  defaultPageSize,
			RefreshInterval:   30 * time.Second,
			MaskWriteFailures: true,
			Rollback:          "snapshot",
		},
		MockAPI: MockAPIConfig{
			ServerPort: "8080",
			DB: DBConfig{
				Port:    "5432",
				User:    "taskboard",
				Name:    "taskboard",
				SSLMode: "disable",
			},
		},
	}
}

// Load reads the environment on top of the built-in defaults.
func Load() Config {
	cfg := defaults()
	cfg.applyEnv()
	return cfg
}

// LoadFile reads a TOML file on top of the defaults, then the environment
// on top of that. An empty path behaves like Load.
func LoadFile(path string) (Config, error) {
	cfg := defaults()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.AppEnv = envOrDefault("APP_ENV", c.AppEnv)
	c.LogLevel = envOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFile = envOrDefault("LOG_FILE", c.LogFile)

	cl := &c.Client
	cl.APIURL = strings.TrimRight(envOrDefault("TASKBOARD_API_URL", cl.APIURL), "/")
	cl.Timeout = c.envDuration("TASKBOARD_TIMEOUT", cl.Timeout)
	cl.PageSize = c.envInt("TASKBOARD_PAGE_SIZE", cl.PageSize)
	cl.Infinite = c.envBool("TASKBOARD_INFINITE", cl.Infinite)
	cl.InfinitePageSize = c.envInt("TASKBOARD_INFINITE_PAGE_SIZE", cl.InfinitePageSize)
	cl.RefreshInterval = c.envDuration("TASKBOARD_REFRESH_INTERVAL", cl.RefreshInterval)
	cl.MaskWriteFailures = c.envBool("TASKBOARD_MASK_WRITE_FAILURES", cl.MaskWriteFailures)
	cl.Rollback = strings.ToLower(envOrDefault("TASKBOARD_ROLLBACK", cl.Rollback))

	m := &c.MockAPI
	m.ServerPort = envOrDefault("SERVER_PORT", m.ServerPort)
	m.SeedFile = envOrDefault("MOCKAPI_SEED_FILE", m.SeedFile)
	m.DSN = envOrDefault("MOCKAPI_DSN", m.DSN)
	m.Latency = c.envDuration("MOCKAPI_LATENCY", m.Latency)
	m.FailRate = c.envFloat("MOCKAPI_FAIL_RATE", m.FailRate)
	m.DB.Host = envOrDefault("DB_HOST", m.DB.Host)
	m.DB.Port = envOrDefault("DB_PORT", m.DB.Port)
	m.DB.User = envOrDefault("DB_USER", m.DB.User)
	m.DB.Password = envOrDefault("DB_PASSWORD", m.DB.Password)
	m.DB.Name = envOrDefault("DB_NAME", m.DB.Name)
	m.DB.SSLMode = envOrDefault("DB_SSLMODE", m.DB.SSLMode)
}

// Parse failures are kept and reported by Validate.

func (c *Config) envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return n
}

func (c *Config) envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return f
}

// envDuration accepts Go durations ("10s") or bare milliseconds ("10000").
func (c *Config) envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return def
	}
	return d
}

func (c *Config) envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true") || v == "1"
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
