package config

import (
	"github.com/avolkov/pingpong-stats-service/internal/logger"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ShutdownTimeout int `mapstructure:"shutdownTimeout"` // seconds
}

// PostgresConfig holds connection and pool tuning for the database.
type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"dbname"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"maxConns"`
	MinConns          int32  `mapstructure:"minConns"`
	MaxConnLifetime   int    `mapstructure:"maxConnLifetime"`   // seconds
	MaxConnIdleTime   int    `mapstructure:"maxConnIdleTime"`   // seconds
	HealthCheckPeriod int    `mapstructure:"healthCheckPeriod"` // seconds
	MigrationsPath    string `mapstructure:"migrationsPath"`
}

type Config struct {
	Server   ServerConfig        `mapstructure:"server"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	Logger   logger.LoggerConfig `mapstructure:"logger"`
}
