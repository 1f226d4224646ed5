package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/resourcemeta/internal/backend"
)

// Cache drivers
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config represents the resourcemeta configuration
type Config struct {
	// Declarations lists declaration files, directories or globs
	Declarations []string       `mapstructure:"declarations"`
	Backends     []string       `mapstructure:"backends"`
	Cache        CacheConfig    `mapstructure:"cache"`
	Redis        RedisConfig    `mapstructure:"redis"`
	Database     DatabaseConfig `mapstructure:"database"`
	Log          LogConfig      `mapstructure:"log"`
}

// CacheConfig configures the metadata cache
type CacheConfig struct {
	Driver    string        `mapstructure:"driver"`
	TTL       time.Duration `mapstructure:"ttl"`
	LocalSize int           `mapstructure:"local_size"`
}

// RedisConfig represents redis connection settings for the redis cache driver
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads the configuration from resourcemeta.yml or resourcemeta.yaml in the
// current directory, or from path when it is not empty. Environment variables
// prefixed with RESOURCEMETA_ override file values, e.g. RESOURCEMETA_CACHE_DRIVER.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("declarations", []string{"resources"})
	v.SetDefault("backends", backend.Names())
	v.SetDefault("cache.driver", CacheMemory)
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.local_size", 256)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("database.url", "")
	v.SetDefault("log.level", "warn")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("resourcemeta")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("RESOURCEMETA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// DATABASE_URL is honoured like the rest of the tooling does
	if config.Database.URL == "" {
		config.Database.URL = os.Getenv("DATABASE_URL")
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DeclarationPaths resolves the declaration entries relative to base
func (c *Config) DeclarationPaths(base string) []string {
	paths := make([]string, len(c.Declarations))
	for i, p := range c.Declarations {
		if filepath.IsAbs(p) || base == "" {
			paths[i] = p
			continue
		}
		paths[i] = filepath.Join(base, p)
	}
	return paths
}

// NewLogger builds the zap logger for the configured level. Logs go to stderr so
// they never mix with command output.
func (c *Config) NewLogger() (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return nil, fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	return zc.Build()
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if len(cfg.Declarations) == 0 {
		return fmt.Errorf("declarations must list at least one path")
	}

	for _, name := range cfg.Backends {
		if _, ok := backend.Lookup(name); !ok {
			return fmt.Errorf("unknown backend %q, expected one of: %s", name, strings.Join(backend.Names(), ", "))
		}
	}

	switch cfg.Cache.Driver {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required by the redis cache driver")
		}
	default:
		return fmt.Errorf("cache.driver must be one of none, memory, redis, got: %s", cfg.Cache.Driver)
	}

	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got: %s", cfg.Cache.TTL)
	}
	if cfg.Cache.LocalSize < 0 {
		return fmt.Errorf("cache.local_size must not be negative, got: %d", cfg.Cache.LocalSize)
	}
	return nil
}
