package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// File is the config file that was read, empty when only the environment is used.
	File string
}

// New reads config.yaml from the working directory when present. environment variables override it.
func New() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("ENGINE_TYPE", "sqlite")
	viper.SetDefault("MEMORY_NAME", "default")
	viper.SetDefault("WORKDIR", "data")
	viper.SetDefault("UNIT_CACHE_SIZE", 4096)
	viper.SetDefault("IMPORT_COMMIT_INTERVAL", 1000)
	viper.SetDefault("REMOTE_TIMEOUT", "30s")
	viper.SetDefault("SESSION_TTL", 12*time.Hour)

	if err := viper.ReadInConfig(); err != nil {
		var typeErr viper.ConfigFileNotFoundError
		if !errors.As(err, &typeErr) {
			return nil, err
		}
	}

	return &Config{File: viper.ConfigFileUsed()}, nil
}
