package config

import "time"

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type PasswordPolicyConfig struct {
	MinLength int `mapstructure:"min_length"`
	MaxLength int `mapstructure:"max_length"`
}

type SecurityConfig struct {
	MaxFailedAttempts int           `mapstructure:"max_failed_attempts"`
	LockoutCooldown   time.Duration `mapstructure:"lockout_cooldown"`
	ResetTokenTTL     time.Duration `mapstructure:"reset_token_ttl"`
	SessionIdle       time.Duration `mapstructure:"session_idle"`
	SessionAbsolute   time.Duration `mapstructure:"session_absolute"`
	BcryptCost        int           `mapstructure:"bcrypt_cost"`

	// Bcrypt hash of the administrative unlock secret. Empty disables
	// the emergency unlock path entirely.
	AdminSecretHash string `mapstructure:"admin_secret_hash"`

	Password PasswordPolicyConfig `mapstructure:"password"`
}

type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database"`
	Security SecurityConfig `mapstructure:"security"`
}
