package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Drivers accepted by db.driver.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
)

type Config struct {
	HTTP struct {
		Addr            string
		ShutdownTimeout time.Duration
	}
	DB struct {
		Driver string
		DSN    string
	}
	Redis struct {
		Addr      string
		Password  string
		DB        int
		KeyPrefix string
	}
	Log struct {
		Level  string
		Pretty bool
	}
	Validation struct {
		RevalidatePatch bool
	}
}

// Load reads config from environment (BOOKMARKS_ prefix) and optional bookmarks.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKMARKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("bookmarks")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// The file is optional; a file that exists but does not parse is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read bookmarks.yaml: %w", err)
		}
	}
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8000")
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.dsn", "file:bookmarks.db?_pragma=busy_timeout(5000)")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "bookmarks:")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("validation.revalidate_patch", false)
}

func fromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = strings.ToLower(v.GetString("db.driver"))
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.Redis.KeyPrefix = v.GetString("redis.key_prefix")
	cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	cfg.Log.Pretty = v.GetBool("log.pretty")
	cfg.Validation.RevalidatePatch = v.GetBool("validation.revalidate_patch")

	timeout, err := time.ParseDuration(v.GetString("http.shutdown_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKMARKS_HTTP_SHUTDOWN_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("BOOKMARKS_HTTP_SHUTDOWN_TIMEOUT must be positive, got %s", timeout)
	}
	cfg.HTTP.ShutdownTimeout = timeout

	if cfg.HTTP.Addr == "" {
		return nil, fmt.Errorf("BOOKMARKS_HTTP_ADDR is required")
	}

	switch cfg.DB.Driver {
	case DriverSQLite, DriverPostgres, DriverMySQL:
		if cfg.DB.DSN == "" {
			return nil, fmt.Errorf("BOOKMARKS_DB_DSN is required for driver %q", cfg.DB.Driver)
		}
	case DriverRedis:
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("BOOKMARKS_REDIS_ADDR is required for driver %q", cfg.DB.Driver)
		}
		if cfg.Redis.DB < 0 {
			return nil, fmt.Errorf("BOOKMARKS_REDIS_DB must not be negative, got %d", cfg.Redis.DB)
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported BOOKMARKS_DB_DRIVER %q (sqlite3, postgres, mysql, memory, redis)", cfg.DB.Driver)
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid BOOKMARKS_LOG_LEVEL %q (debug, info, warn, error)", cfg.Log.Level)
	}

	return cfg, nil
}

