package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Database: DatabaseConfig{
			Driver:     DriverSQLite,
			SQLitePath: "test.sqlite3",
		},
		Scheduler: SchedulerConfig{
			IntervalMinutes:    5,
			CandidatesPerCheck: 2,
			ArrivalRate:        0.3,
		},
		AI: AIConfig{
			Provider: ProviderNone,
		},
		Session: SessionConfig{
			Secret: "secret",
		},
	}
}

func TestConfigValidation(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	invalidConfig := &Config{
		Server: ServerConfig{
			Port: "",
		},
	}
	assert.Error(t, invalidConfig.Validate())
}

func TestConfigValidationRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"mysql without host", func(c *Config) { c.Database = DatabaseConfig{Driver: DriverMySQL} }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"zero interval", func(c *Config) { c.Scheduler.IntervalMinutes = 0 }},
		{"arrival rate above one", func(c *Config) { c.Scheduler.ArrivalRate = 1.5 }},
		{"unknown provider", func(c *Config) { c.AI.Provider = "palm" }},
		{"missing session secret", func(c *Config) { c.Session.Secret = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	config := DatabaseConfig{
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	}

	expected := "testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=Local"
	assert.Equal(t, expected, config.GetDSN())
}

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("SESSION_SECRET", "from-env")
	t.Setenv("SCHEDULER_INTERVAL_MINUTES", "10")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Scheduler.IntervalMinutes)
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.Interval())
	assert.Equal(t, "from-env", cfg.Session.Secret)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Zero(t, cfg.AI.RequestTimeout)
}
