package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

// Config se carga una sola vez al arrancar el proceso y se pasa explícitamente
// a router, stores y servicios. No hay defaults globales de paquete.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"ENV"`
	StorageDriver  string `mapstructure:"STORAGE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DatabasePath   string `mapstructure:"DATABASE_PATH"`
	SecretKey      string `mapstructure:"SECRET_KEY"`
	Timezone       string `mapstructure:"TIMEZONE"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	LogFormat      string `mapstructure:"LOG_FORMAT"`
	AppName        string `mapstructure:"APP_NAME"`
	MigrateOnStart bool   `mapstructure:"MIGRATE_ON_START"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORAGE_DRIVER", "")
	v.SetDefault("DATABASE_PATH", "data/medicamentos.db")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("APP_NAME", "medication-tracker")
	v.SetDefault("MIGRATE_ON_START", true)

	for _, key := range []string{
		"PORT", "ENV", "STORAGE_DRIVER", "DATABASE_URL", "DATABASE_PATH", "SECRET_KEY",
		"TIMEZONE", "LOG_LEVEL", "LOG_FORMAT", "APP_NAME", "MIGRATE_ON_START",
	} {
		_ = v.BindEnv(key)
	}

	// .env es opcional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.StorageDriver = cfg.ResolvedStorageDriver()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ResolvedStorageDriver devuelve el driver efectivo. Sin STORAGE_DRIVER explícito:
// DATABASE_URL => postgres, si no => memory.
func (c *Config) ResolvedStorageDriver() string {
	d := strings.ToLower(strings.TrimSpace(c.StorageDriver))
	if d != "" {
		return d
	}
	if strings.TrimSpace(c.DatabaseURL) != "" {
		return StoragePostgres
	}
	return StorageMemory
}

// Location resuelve TIMEZONE. Validate ya garantiza que carga.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate rechaza configuraciones incompletas antes de levantar el motor.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("SECRET_KEY is required")
	}
	if len(c.SecretKey) < 16 {
		return fmt.Errorf("SECRET_KEY must be at least 16 characters, got %d", len(c.SecretKey))
	}
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT is required")
	}

	switch c.ResolvedStorageDriver() {
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required when STORAGE_DRIVER is \"postgres\"")
		}
	case StorageSQLite:
		if strings.TrimSpace(c.DatabasePath) == "" {
			return errors.New("DATABASE_PATH is required when STORAGE_DRIVER is \"sqlite\"")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be \"memory\", \"postgres\" or \"sqlite\", got %q", c.StorageDriver)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is not a valid location: %w", c.Timezone, err)
	}
	return nil
}
