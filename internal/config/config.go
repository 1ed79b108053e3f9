package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/maxviazov/volleyball-scoreboard/internal/logger"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"

	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	PublisherRTDB      = "rtdb"
	PublisherFirestore = "firestore"
	PublisherLog       = "log"
)

type Config struct {
	App      AppConfig           `mapstructure:"app"`
	Logger   logger.LoggerConfig `mapstructure:"logger"`
	Storage  StorageConfig       `mapstructure:"storage"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	Session  SessionConfig       `mapstructure:"session"`
	Redis    RedisConfig         `mapstructure:"redis"`
	Live     LiveConfig          `mapstructure:"live"`
	HTTP     HTTPConfig          `mapstructure:"http"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Version         string        `mapstructure:"version"`
	Env             string        `mapstructure:"env" validate:"oneof=dev staging prod test"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StorageConfig struct {
	Driver     string `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"db"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
}

// SessionConfig selects the session backend. LockTTL and LockWait apply to the
// cross-replica lock taken with the redis backend.
type SessionConfig struct {
	Backend    string        `mapstructure:"backend" validate:"oneof=memory redis"`
	CookieName string        `mapstructure:"cookie_name" validate:"required"`
	TTL        time.Duration `mapstructure:"ttl"`
	LockTTL    time.Duration `mapstructure:"lock_ttl"`
	LockWait   time.Duration `mapstructure:"lock_wait"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LiveConfig selects where scoreboard snapshots are broadcast.
type LiveConfig struct {
	Publishers      []string `mapstructure:"publishers" validate:"dive,oneof=rtdb firestore log"`
	DatabaseURL     string   `mapstructure:"database_url"`
	ProjectID       string   `mapstructure:"project_id"`
	CredentialsFile string   `mapstructure:"credentials_file"`
	CredentialsJSON string   `mapstructure:"credentials_json"`
	Path            string   `mapstructure:"path"`
	Collection      string   `mapstructure:"collection"`
	Document        string   `mapstructure:"document"`
}

// Enabled reports whether the named publisher is configured.
func (l LiveConfig) Enabled(name string) bool {
	for _, p := range l.Publishers {
		if p == name {
			return true
		}
	}
	return false
}

type HTTPConfig struct {
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Validate checks field rules and the rules that span sections.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c.App); err != nil {
		return fmt.Errorf("app config: %w", err)
	}
	if err := v.Struct(c.Storage); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}
	if err := v.Struct(c.Session); err != nil {
		return fmt.Errorf("session config: %w", err)
	}
	if err := v.Struct(c.Live); err != nil {
		return fmt.Errorf("live config: %w", err)
	}

	var errs []error
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Postgres.User == "" {
			errs = append(errs, errors.New("postgres user is required"))
		}
		if c.Postgres.Password == "" {
			errs = append(errs, errors.New("postgres password is required"))
		}
		if c.Postgres.DBName == "" {
			errs = append(errs, errors.New("postgres db is required"))
		}
	case StorageDriverSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("storage sqlite_path is required for the sqlite driver"))
		}
	}
	if c.Session.Backend == SessionBackendRedis && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis addr is required for the redis session backend"))
	}
	if c.Live.Enabled(PublisherRTDB) && c.Live.DatabaseURL == "" {
		errs = append(errs, errors.New("live database_url is required for the rtdb publisher"))
	}
	if c.Live.Enabled(PublisherFirestore) && c.Live.ProjectID == "" {
		errs = append(errs, errors.New("live project_id is required for the firestore publisher"))
	}
	return errors.Join(errs...)
}
