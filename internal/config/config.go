// Package config loads and validates the application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

type StorageConfig struct {
	// Directory holds the database and everything else the app persists.
	Directory    string `mapstructure:"directory" validate:"required"`
	DatabaseFile string `mapstructure:"database_file" validate:"required"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// DatabasePath returns the absolute location of the SQLite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Storage.Directory, c.Storage.DatabaseFile)
}

func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/examdeck")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	v.SetDefault("storage.directory", filepath.Join(home, ".examdeck"))
	v.SetDefault("storage.database_file", "examdeck.db")
	v.SetDefault("log.level", "info")

	if err := v.BindEnv("storage.directory", "EXAMDECK_DATA_DIR"); err != nil {
		return nil, fmt.Errorf("failed to bind EXAMDECK_DATA_DIR environment variable: %w", err)
	}
	if err := v.BindEnv("log.level", "EXAMDECK_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind EXAMDECK_LOG_LEVEL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	validate, trans, err := newValidator()
	if err != nil {
		return fmt.Errorf("newValidator() > %w", err)
	}

	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return fmt.Errorf("validate.Struct() > %w", err)
		}
		messages := make([]string, len(errs))
		for i, fieldError := range errs {
			messages[i] = fieldError.Translate(trans)
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
	}
	return nil
}
