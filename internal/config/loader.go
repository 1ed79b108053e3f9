package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads the YAML file at path, overlays APP_-prefixed environment variables and
// validates the result. A .env file in the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	setDefaults(v)
	if err := bindSecrets(v); err != nil {
		return nil, err
	}

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "volleyball-scoreboard")
	v.SetDefault("app.version", "0.0.1")
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.shutdown_timeout", "10s")

	v.SetDefault("storage.driver", StorageDriverPostgres)
	v.SetDefault("storage.sqlite_path", "volleyball.db")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 1)
	v.SetDefault("postgres.max_conn_lifetime", 3600)
	v.SetDefault("postgres.max_conn_idle_time", 300)
	v.SetDefault("postgres.health_check_period", 30)

	v.SetDefault("session.backend", SessionBackendMemory)
	v.SetDefault("session.cookie_name", "scoreboard_session")
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("session.lock_ttl", "10s")
	v.SetDefault("session.lock_wait", "5s")

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("live.publishers", []string{PublisherLog})
	v.SetDefault("live.path", "live_match")
	v.SetDefault("live.collection", "scoreboard")
	v.SetDefault("live.document", "live_match")
}

// bindSecrets maps secrets to the env names they are usually shipped under, on top of
// the APP_ prefixed ones.
func bindSecrets(v *viper.Viper) error {
	bindings := map[string][]string{
		"postgres.user":         {"APP_POSTGRES_USER", "POSTGRES_USER"},
		"postgres.password":     {"APP_POSTGRES_PASSWORD", "POSTGRES_PASSWORD"},
		"postgres.db":           {"APP_POSTGRES_DB", "POSTGRES_DB"},
		"redis.password":        {"APP_REDIS_PASSWORD", "REDIS_PASSWORD"},
		"live.credentials_json": {"APP_LIVE_CREDENTIALS_JSON", "FIREBASE_CREDENTIALS_JSON"},
		"live.database_url":     {"APP_LIVE_DATABASE_URL", "FIREBASE_DATABASE_URL"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}
