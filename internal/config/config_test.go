package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jaekwang-park/taskboard/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "LOG_LEVEL", "LOG_FILE",
		"TASKBOARD_API_URL", "TASKBOARD_TIMEOUT", "TASKBOARD_PAGE_SIZE", "TASKBOARD_INFINITE",
		"TASKBOARD_INFINITE_PAGE_SIZE", "TASKBOARD_REFRESH_INTERVAL", "TASKBOARD_MASK_WRITE_FAILURES",
		"TASKBOARD_ROLLBACK", "SERVER_PORT", "MOCKAPI_SEED_FILE", "MOCKAPI_DSN", "MOCKAPI_LATENCY",
		"MOCKAPI_FAIL_RATE", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := config.Load()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"AppEnv", cfg.AppEnv, "local"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"Client.APIURL", cfg.Client.APIURL, "https://jsonplaceholder.typicode.com"},
		{"Client.Timeout", cfg.Client.Timeout, 10 * time.Second},
		{"Client.PageSize", cfg.Client.PageSize, 10},
		{"Client.Infinite", cfg.Client.Infinite, false},
		{"Client.InfinitePageSize", cfg.Client.InfinitePageSize, 10},
		{"Client.RefreshInterval", cfg.Client.RefreshInterval, 30 * time.Second},
		{"Client.MaskWriteFailures", cfg.Client.MaskWriteFailures, true},
		{"Client.Rollback", cfg.Client.Rollback, "snapshot"},
		{"MockAPI.ServerPort", cfg.MockAPI.ServerPort, "8080"},
		{"MockAPI.PostgresDSN", cfg.MockAPI.PostgresDSN(), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "alpha")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "/tmp/taskboard.log")
	t.Setenv("TASKBOARD_API_URL", "http://localhost:8080/")
	t.Setenv("TASKBOARD_TIMEOUT", "2500")
	t.Setenv("TASKBOARD_PAGE_SIZE", "25")
	t.Setenv("TASKBOARD_INFINITE", "TRUE")
	t.Setenv("TASKBOARD_INFINITE_PAGE_SIZE", "5")
	t.Setenv("TASKBOARD_REFRESH_INTERVAL", "1m")
	t.Setenv("TASKBOARD_MASK_WRITE_FAILURES", "false")
	t.Setenv("TASKBOARD_ROLLBACK", "Inverse")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MOCKAPI_LATENCY", "150ms")
	t.Setenv("MOCKAPI_FAIL_RATE", "0.25")

	cfg := config.Load()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"AppEnv", cfg.AppEnv, "alpha"},
		{"LogLevel", cfg.LogLevel, "debug"},
		{"LogFile", cfg.LogFile, "/tmp/taskboard.log"},
		{"Client.APIURL", cfg.Client.APIURL, "http://localhost:8080"},
		{"Client.Timeout", cfg.Client.Timeout, 2500 * time.Millisecond},
		{"Client.PageSize", cfg.Client.PageSize, 25},
		{"Client.Infinite", cfg.Client.Infinite, true},
		{"Client.InfinitePageSize", cfg.Client.InfinitePageSize, 5},
		{"Client.RefreshInterval", cfg.Client.RefreshInterval, time.Minute},
		{"Client.MaskWriteFailures", cfg.Client.MaskWriteFailures, false},
		{"Client.Rollback", cfg.Client.Rollback, "inverse"},
		{"MockAPI.ServerPort", cfg.MockAPI.ServerPort, "9090"},
		{"MockAPI.Latency", cfg.MockAPI.Latency, 150 * time.Millisecond},
		{"MockAPI.FailRate", cfg.MockAPI.FailRate, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "taskboard.toml")
	content := `
log_level = "warn"

[client]
api_url = "http://file.example"
page_size = 20
refresh_interval = "5s"
rollback = "inverse"

[mockapi]
seed_file = "seed.yaml"
latency = "20ms"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TASKBOARD_PAGE_SIZE", "30")

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"LogLevel from file", cfg.LogLevel, "warn"},
		{"APIURL from file", cfg.Client.APIURL, "http://file.example"},
		{"PageSize from env", cfg.Client.PageSize, 30},
		{"RefreshInterval from file", cfg.Client.RefreshInterval, 5 * time.Second},
		{"Rollback from file", cfg.Client.Rollback, "inverse"},
		{"Timeout default", cfg.Client.Timeout, 10 * time.Second},
		{"SeedFile from file", cfg.MockAPI.SeedFile, "seed.yaml"},
		{"Latency from file", cfg.MockAPI.Latency, 20 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)

	if _, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("client = ["), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.LoadFile(path); err == nil {
		t.Error("expected error for malformed file")
	}

	cfg, err := config.LoadFile("")
	if err != nil {
		t.Fatalf("empty path: %v", err)
	}
	if cfg.Client.APIURL != config.DefaultAPIURL {
		t.Errorf("expected default api url, got %s", cfg.Client.APIURL)
	}
}

func TestConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantSub  string
	}{
		{
			name:     "simple password",
			password: "taskboard",
			wantSub:  "taskboard:taskboard@",
		},
		{
			name:     "password with special chars",
			password: "p@ss/w#rd?",
			wantSub:  "taskboard:p%40ss%2Fw%23rd%3F@",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DB_HOST", "localhost")
			t.Setenv("DB_PASSWORD", tt.password)

			cfg := config.Load()
			dsn := cfg.MockAPI.PostgresDSN()

			if !strings.Contains(dsn, tt.wantSub) {
				t.Errorf("DSN=%s, want to contain %s", dsn, tt.wantSub)
			}
			if !strings.HasPrefix(dsn, "postgres://") {
				t.Errorf("DSN=%s, want postgres:// prefix", dsn)
			}
			if !strings.Contains(dsn, "sslmode=disable") {
				t.Errorf("DSN=%s, want sslmode=disable", dsn)
			}
		})
	}
}

func TestConfig_PostgresDSN_ExplicitWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "db.example.com")
	t.Setenv("MOCKAPI_DSN", "postgres://u:p@elsewhere/db")

	cfg := config.Load()
	if got := cfg.MockAPI.PostgresDSN(); got != "postgres://u:p@elsewhere/db" {
		t.Errorf("got %s, want MOCKAPI_DSN", got)
	}
}

func TestConfig_ParseLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"mixed case Warn", "Warn", slog.LevelWarn},
		{"empty defaults to info", "", slog.LevelInfo},
		{"invalid defaults to info", "verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("LOG_LEVEL", tt.value)

			cfg := config.Load()
			got := cfg.ParseLogLevel()

			if got != tt.want {
				t.Errorf("LOG_LEVEL=%q: got %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"defaults", nil, ""},
		{"prod", map[string]string{"APP_ENV": "prod"}, ""},
		{"invalid env", map[string]string{"APP_ENV": "staging"}, "invalid APP_ENV"},
		{"relative api url", map[string]string{"TASKBOARD_API_URL": "/todos"}, "invalid TASKBOARD_API_URL"},
		{"unparsable page size", map[string]string{"TASKBOARD_PAGE_SIZE": "ten"}, "invalid TASKBOARD_PAGE_SIZE"},
		{"page size too large", map[string]string{"TASKBOARD_PAGE_SIZE": "51"}, "invalid TASKBOARD_PAGE_SIZE"},
		{"infinite page size zero", map[string]string{"TASKBOARD_INFINITE_PAGE_SIZE": "0"}, "invalid TASKBOARD_INFINITE_PAGE_SIZE"},
		{"zero timeout", map[string]string{"TASKBOARD_TIMEOUT": "0"}, "invalid TASKBOARD_TIMEOUT"},
		{"bad refresh", map[string]string{"TASKBOARD_REFRESH_INTERVAL": "soon"}, "invalid TASKBOARD_REFRESH_INTERVAL"},
		{"unknown rollback", map[string]string{"TASKBOARD_ROLLBACK": "undo"}, "invalid TASKBOARD_ROLLBACK"},
		{"invalid port", map[string]string{"SERVER_PORT": "abc"}, "invalid SERVER_PORT"},
		{"fail rate above one", map[string]string{"MOCKAPI_FAIL_RATE": "1.5"}, "invalid MOCKAPI_FAIL_RATE"},
		{"unparsable fail rate", map[string]string{"MOCKAPI_FAIL_RATE": "often"}, "invalid MOCKAPI_FAIL_RATE"},
		{"seed and database", map[string]string{"MOCKAPI_SEED_FILE": "seed.yaml", "DB_HOST": "localhost"}, "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := config.Load()
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.wantErr)
				} else if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}
