// Package config loads service configuration from the environment with viper.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all settings for the splitledger server. Values come from
// environment variables, with an optional .env file for local development.
type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	DBPath      string `mapstructure:"DB_PATH"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTTTLHours int    `mapstructure:"JWT_TTL_HOURS"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
}

// TokenTTL returns the configured JWT lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

// Load reads configuration from environment variables, looking for an
// optional .env file in the given path.
func Load(path string) (Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DB_PATH", "./data/splitledger.db")
	viper.SetDefault("JWT_SECRET", "dev-only-secret-change-me")
	viper.SetDefault("JWT_TTL_HOURS", 24)
	viper.SetDefault("LOG_LEVEL", "info")

	for _, key := range []string{"SERVER_PORT", "DB_PATH", "JWT_SECRET", "JWT_TTL_HOURS", "LOG_LEVEL"} {
		_ = viper.BindEnv(key)
	}

	// The .env file is optional; only a parse failure of an existing file
	// should surface.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.JWTTTLHours <= 0 {
		cfg.JWTTTLHours = 24
	}
	return cfg, nil
}
