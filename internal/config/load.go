package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

func Load() (*AppConfig, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = EnvDevelopment
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath("./config/app")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; defaults cover everything
		// except database credentials.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Load environment-specific configurations
	if envSettings := v.GetStringMap(fmt.Sprintf("security.%s", env)); len(envSettings) > 0 {
		if err := v.UnmarshalKey(fmt.Sprintf("security.%s", env), &config.Security); err != nil {
			return nil, fmt.Errorf("error unmarshaling env config: %w", err)
		}
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("security.max_failed_attempts", 5)
	v.SetDefault("security.lockout_cooldown", 15*time.Minute)
	v.SetDefault("security.reset_token_ttl", 30*time.Minute)
	v.SetDefault("security.session_idle", 30*time.Minute)
	v.SetDefault("security.session_absolute", 8*time.Hour)
	v.SetDefault("security.bcrypt_cost", 0) // 0 means bcrypt.DefaultCost
	v.SetDefault("security.password.min_length", 8)
	v.SetDefault("security.password.max_length", 128)
}
