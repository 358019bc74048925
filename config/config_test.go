package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/streamcast/errors"
)

type mockFS struct {
	files  map[string]bool
	loaded []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }

func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const sampleYAML = `
name: ticker
environment: staging
broadcast:
  name: prices
  capacity: 16
source:
  interval: 250ms
  limit: 10
http:
  addr: ":9090"
  path: /stream
  keep_alive: 5s
`

func TestLoadConfig_YAML(t *testing.T) {
	path := writeFile(t, "config.yml", sampleYAML)

	var cfg ServiceConfig
	if err := LoadConfig("ticker", &cfg, WithConfigFile(path), WithFileSystem(OSFileSystem{})); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Name != "ticker" || cfg.Environment != "staging" {
		t.Errorf("unexpected identity %q/%q", cfg.Name, cfg.Environment)
	}
	if cfg.Broadcast.Name != "prices" || cfg.Broadcast.Capacity != 16 {
		t.Errorf("unexpected broadcast section %+v", cfg.Broadcast)
	}
	if cfg.Source.Interval != 250*time.Millisecond || cfg.Source.Limit != 10 {
		t.Errorf("unexpected source section %+v", cfg.Source)
	}
	if cfg.HTTP.Addr != ":9090" || cfg.HTTP.Path != "/stream" || cfg.HTTP.KeepAlive != 5*time.Second {
		t.Errorf("unexpected http section %+v", cfg.HTTP)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yml", sampleYAML)
	t.Setenv("BROADCAST_CAPACITY", "128")
	t.Setenv("HTTP_KEEP_ALIVE", "1m")

	var cfg ServiceConfig
	if err := LoadConfig("ticker", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Broadcast.Capacity != 128 {
		t.Errorf("expected capacity 128 from env, got %d", cfg.Broadcast.Capacity)
	}
	if cfg.HTTP.KeepAlive != time.Minute {
		t.Errorf("expected keep_alive 1m from env, got %v", cfg.HTTP.KeepAlive)
	}
	if cfg.Broadcast.Name != "prices" {
		t.Errorf("expected file value kept, got %q", cfg.Broadcast.Name)
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	cfgPath := writeFile(t, "config.yml", sampleYAML)
	envPath := writeFile(t, ".env", "SOURCE_LIMIT=3\n")
	t.Cleanup(func() { os.Unsetenv("SOURCE_LIMIT") })

	var cfg ServiceConfig
	if err := LoadConfig("ticker", &cfg, WithConfigFile(cfgPath), WithEnvFile(envPath)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Source.Limit != 3 {
		t.Errorf("expected limit 3 from env file, got %d", cfg.Source.Limit)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	var cfg ServiceConfig
	fs := &mockFS{files: map[string]bool{}}
	if err := LoadConfig("ticker", &cfg, WithFileSystem(fs)); err != nil {
		t.Fatalf("expected missing files to be skipped, got %v", err)
	}
	cfg.ApplyDefaults()
	if cfg.Name != "streamcast" {
		t.Errorf("expected default name, got %q", cfg.Name)
	}
}

func TestResolver_ResolveFiles(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/svc/config.yml": true,
		"./.env":               true,
	}}
	r := &Resolver{FileSystem: fs}

	got := r.ResolveFiles("svc", LoaderConfig{})
	if got.ConfigFile != "./cmd/svc/config.yml" {
		t.Errorf("unexpected config file %q", got.ConfigFile)
	}
	if got.EnvFile != "./.env" {
		t.Errorf("unexpected env file %q", got.EnvFile)
	}

	fs.files["./cmd/svc/.env.svc"] = true
	if got := r.ResolveFiles("svc", LoaderConfig{}); got.EnvFile != "./cmd/svc/.env.svc" {
		t.Errorf("expected service env file preferred, got %q", got.EnvFile)
	}

	got = r.ResolveFiles("svc", LoaderConfig{ConfigFile: "/etc/svc.yml"})
	if got.ConfigFile != "/etc/svc.yml" {
		t.Errorf("expected explicit config file, got %q", got.ConfigFile)
	}
}

func TestLoadConfig_LoadsResolvedEnvFile(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"./.env": true}}
	var cfg ServiceConfig
	if err := LoadConfig("svc", &cfg, WithFileSystem(fs)); err != nil {
		t.Fatal(err)
	}
	if len(fs.loaded) != 1 || fs.loaded[0] != "./.env" {
		t.Errorf("expected ./.env loaded, got %v", fs.loaded)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"NAME", []string{"name"}},
		{"HTTP_ADDR", []string{"http_addr", "http.addr"}},
		{"HTTP_KEEP_ALIVE", []string{"http_keep_alive", "http.keep.alive", "http.keep_alive", "http_keep.alive"}},
	}
	for _, tt := range tests {
		got := envKeyVariants(tt.in)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("envKeyVariants(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestServiceConfig_Defaults(t *testing.T) {
	var cfg ServiceConfig
	cfg.ApplyDefaults()

	if cfg.Name != "streamcast" || cfg.Environment != "development" || cfg.Version != "dev" {
		t.Errorf("unexpected identity defaults %+v", cfg)
	}
	if cfg.Broadcast.Name != "ticks" || cfg.Broadcast.Capacity != 64 {
		t.Errorf("unexpected broadcast defaults %+v", cfg.Broadcast)
	}
	if cfg.Source.Interval != time.Second {
		t.Errorf("unexpected source interval %v", cfg.Source.Interval)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.HTTP.Path != "/events" {
		t.Errorf("unexpected http defaults %+v", cfg.HTTP)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestServiceConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*ServiceConfig)
		field string
	}{
		{"bad environment", func(c *ServiceConfig) { c.Environment = "moon" }, "environment"},
		{"relative path", func(c *ServiceConfig) { c.HTTP.Path = "events" }, "http.path"},
		{"negative capacity", func(c *ServiceConfig) { c.Broadcast.Capacity = -1 }, "broadcast.capacity"},
		{"negative limit", func(c *ServiceConfig) { c.Source.Limit = -2 }, "source.limit"},
		{"negative interval", func(c *ServiceConfig) { c.Source.Interval = -time.Second }, "source.interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg ServiceConfig
			cfg.ApplyDefaults()
			tt.mod(&cfg)

			err := cfg.Validate()
			var appErr *errors.AppError
			if !stderrors.As(err, &appErr) {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != errors.ErrCodeInvalidInput {
				t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
			}
			fields, _ := appErr.Details["fields"].([]FieldError)
			found := false
			for _, f := range fields {
				if f.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected field %q in %v", tt.field, fields)
			}
		})
	}
}

func TestServiceConfig_ValidateLogging(t *testing.T) {
	var cfg ServiceConfig
	cfg.ApplyDefaults()
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	if !stderrors.Is(err, &errors.AppError{Code: errors.ErrCodeInvalidInput}) {
		t.Errorf("expected INVALID_INPUT for bad log level, got %v", err)
	}
}
