package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProductionConfig() *Config {
	return &Config{
		Env:          "production",
		Port:         "8080",
		JWTSecret:    "secure-secret-at-least-32-chars-long",
		DBPassword:   "secure-password",
		DBSSLMode:    "require",
		CookieSecure: true,
	}
}

func TestConfig_ValidateProduction(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Valid production config", func(c *Config) {}, false},
		{"Default JWT secret", func(c *Config) { c.JWTSecret = defaultJWTSecret }, true},
		{"Short JWT secret", func(c *Config) { c.JWTSecret = "short" }, true},
		{"Default DB password", func(c *Config) { c.DBPassword = "password" }, true},
		{"SSL disabled", func(c *Config) { c.DBSSLMode = "disable" }, true},
		{"Insecure cookies", func(c *Config) { c.CookieSecure = false }, true},
		{"Prod alias is production", func(c *Config) { c.Env = "prod"; c.DBSSLMode = "" }, true},
		{"Development relaxes rules", func(c *Config) {
			c.Env = "development"
			c.JWTSecret = "short"
			c.DBSSLMode = "disable"
			c.CookieSecure = false
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validProductionConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateRequiredFields(t *testing.T) {
	c := &Config{Env: "test", JWTSecret: "x"}
	assert.EqualError(t, c.Validate(), "PORT is required")

	c = &Config{Env: "test", Port: "8080"}
	assert.EqualError(t, c.Validate(), "JWT_SECRET is required")

	c = &Config{Env: "test", Port: "8080", JWTSecret: "x", TracingSampleRatio: 1.5}
	assert.Error(t, c.Validate())
}

func TestLoadConfig_DefaultsAndNormalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("PORT")
	defer viper.Reset()

	os.Setenv("APP_ENV", "test")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("PORT", "9191")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "9191", cfg.Port)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "hybrid", cfg.DBSchemaMode)
	assert.True(t, cfg.CSRFEnabled)
	assert.Equal(t, 24, cfg.SessionExpirationHours)
	assert.False(t, cfg.IsProduction())
}
