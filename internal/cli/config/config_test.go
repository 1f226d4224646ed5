package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
}

func TestLoad(t *testing.T) {
	// Test loading with no config file (should use defaults)
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if len(cfg.Declarations) != 1 || cfg.Declarations[0] != "resources" {
		t.Errorf("expected default declarations [resources], got %v", cfg.Declarations)
	}

	if len(cfg.Backends) != 4 {
		t.Errorf("expected all backends by default, got %v", cfg.Backends)
	}

	if cfg.Cache.Driver != CacheMemory {
		t.Errorf("expected default cache driver 'memory', got %s", cfg.Cache.Driver)
	}

	if cfg.Cache.TTL != time.Hour {
		t.Errorf("expected default ttl 1h, got %s", cfg.Cache.TTL)
	}

	if cfg.Cache.LocalSize != 256 {
		t.Errorf("expected default local size 256, got %d", cfg.Cache.LocalSize)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("expected default log level 'warn', got %s", cfg.Log.Level)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	configContent := `
declarations:
  - config/resources
  - config/mappings.yaml
backends: [orm, search]
cache:
  driver: redis
  ttl: 5m
  local_size: 32
redis:
  addr: cache:6379
  db: 2
database:
  url: postgresql://localhost/library
log:
  level: debug
`
	os.WriteFile("resourcemeta.yaml", []byte(configContent), 0644)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if len(cfg.Declarations) != 2 || cfg.Declarations[1] != "config/mappings.yaml" {
		t.Errorf("unexpected declarations %v", cfg.Declarations)
	}

	if len(cfg.Backends) != 2 || cfg.Backends[1] != "search" {
		t.Errorf("unexpected backends %v", cfg.Backends)
	}

	if cfg.Cache.Driver != CacheRedis || cfg.Cache.TTL != 5*time.Minute || cfg.Cache.LocalSize != 32 {
		t.Errorf("unexpected cache config %+v", cfg.Cache)
	}

	if cfg.Redis.Addr != "cache:6379" || cfg.Redis.DB != 2 {
		t.Errorf("unexpected redis config %+v", cfg.Redis)
	}

	if cfg.Database.URL != "postgresql://localhost/library" {
		t.Errorf("expected database url, got %s", cfg.Database.URL)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	chdir(t, t.TempDir())

	path := filepath.Join(dir, "meta.yml")
	os.WriteFile(path, []byte("cache:\n  driver: none\n"), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Cache.Driver != CacheNone {
		t.Errorf("expected cache driver 'none', got %s", cfg.Cache.Driver)
	}

	if _, err := Load(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RESOURCEMETA_CACHE_DRIVER", "none")
	t.Setenv("RESOURCEMETA_LOG_LEVEL", "info")
	t.Setenv("DATABASE_URL", "sqlite://library.db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Cache.Driver != CacheNone {
		t.Errorf("expected env cache driver 'none', got %s", cfg.Cache.Driver)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected env log level 'info', got %s", cfg.Log.Level)
	}
	if cfg.Database.URL != "sqlite://library.db" {
		t.Errorf("expected DATABASE_URL fallback, got %s", cfg.Database.URL)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		return Config{
			Declarations: []string{"resources"},
			Backends:     []string{"orm"},
			Cache:        CacheConfig{Driver: CacheMemory},
			Redis:        RedisConfig{Addr: "localhost:6379"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"no declarations", func(c *Config) { c.Declarations = nil }, true},
		{"unknown backend", func(c *Config) { c.Backends = []string{"graph"} }, true},
		{"unknown cache driver", func(c *Config) { c.Cache.Driver = "disk" }, true},
		{"redis without address", func(c *Config) { c.Cache.Driver = CacheRedis; c.Redis.Addr = "" }, true},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, true},
		{"negative local size", func(c *Config) { c.Cache.LocalSize = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := validateConfig(&cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDeclarationPaths(t *testing.T) {
	cfg := Config{Declarations: []string{"resources", "/etc/meta/books.yaml"}}

	paths := cfg.DeclarationPaths("/srv/app")
	if paths[0] != filepath.Join("/srv/app", "resources") {
		t.Errorf("expected relative path joined to base, got %s", paths[0])
	}
	if paths[1] != "/etc/meta/books.yaml" {
		t.Errorf("expected absolute path kept, got %s", paths[1])
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Config{Log: LogConfig{Level: "debug"}}
	logger, err := cfg.NewLogger()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !logger.Core().Enabled(-1) {
		t.Error("expected debug level to be enabled")
	}

	cfg.Log.Level = "loud"
	if _, err := cfg.NewLogger(); err == nil {
		t.Error("expected error for an invalid level")
	}
}
