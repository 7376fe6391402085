package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdownTimeout", 10)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.maxConns", 10)
	v.SetDefault("postgres.minConns", 2)
	v.SetDefault("postgres.maxConnLifetime", 3600)
	v.SetDefault("postgres.maxConnIdleTime", 600)
	v.SetDefault("postgres.healthCheckPeriod", 60)
	v.SetDefault("postgres.migrationsPath", "migrations")

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}
