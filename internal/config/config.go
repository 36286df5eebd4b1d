package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	AI        AIConfig        `mapstructure:"ai"`
	Session   SessionConfig   `mapstructure:"session"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// SchedulerConfig holds review automation configuration
type SchedulerConfig struct {
	Enabled            bool    `mapstructure:"enabled"`
	IntervalMinutes    int     `mapstructure:"interval_minutes"`
	CandidatesPerCheck int     `mapstructure:"candidates_per_check"`
	ArrivalRate        float64 `mapstructure:"arrival_rate"`
}

// Interval returns the sweep period.
func (c SchedulerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// Supported response generation providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// AIConfig holds response generation configuration
type AIConfig struct {
	Provider       string        `mapstructure:"provider"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	BaseURL        string        `mapstructure:"base_url"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Temperature    float64       `mapstructure:"temperature"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// SessionConfig holds login session cookie configuration
type SessionConfig struct {
	Secret string `mapstructure:"secret"`
	MaxAge int    `mapstructure:"max_age"`
	Secure bool   `mapstructure:"secure"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	v.AutomaticEnv()
	bindEnvVars(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.sqlite_path", "reviews.sqlite3")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval_minutes", 5)
	v.SetDefault("scheduler.candidates_per_check", 2)
	v.SetDefault("scheduler.arrival_rate", 0.3)

	v.SetDefault("ai.provider", ProviderOpenAI)
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.max_tokens", 300)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.request_timeout", "0s")

	v.SetDefault("session.max_age", 7*24*3600)
	v.SetDefault("session.secure", false)

	v.SetDefault("log.level", "info")
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "SERVER_PORT", "PORT")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// Database
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sqlite_path", "DB_SQLITE_PATH")

	// Scheduler
	v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	v.BindEnv("scheduler.interval_minutes", "SCHEDULER_INTERVAL_MINUTES")
	v.BindEnv("scheduler.candidates_per_check", "SCHEDULER_CANDIDATES_PER_CHECK")
	v.BindEnv("scheduler.arrival_rate", "SCHEDULER_ARRIVAL_RATE")

	// AI
	v.BindEnv("ai.provider", "AI_PROVIDER")
	v.BindEnv("ai.api_key", "AI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL")
	v.BindEnv("ai.base_url", "AI_BASE_URL")
	v.BindEnv("ai.max_tokens", "AI_MAX_TOKENS")
	v.BindEnv("ai.temperature", "AI_TEMPERATURE")
	v.BindEnv("ai.request_timeout", "AI_REQUEST_TIMEOUT")

	// Session
	v.BindEnv("session.secret", "SESSION_SECRET")
	v.BindEnv("session.max_age", "SESSION_MAX_AGE")
	v.BindEnv("session.secure", "SESSION_SECURE")

	v.BindEnv("log.level", "LOG_LEVEL")
}

// GetDSN returns the MySQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch strings.ToLower(c.Database.Driver) {
	case DriverMySQL:
		if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
			return fmt.Errorf("database host, user, and dbname are required for mysql")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Scheduler.IntervalMinutes <= 0 {
		return fmt.Errorf("scheduler interval must be greater than 0")
	}
	if c.Scheduler.CandidatesPerCheck < 0 {
		return fmt.Errorf("scheduler candidates_per_check must not be negative")
	}
	if c.Scheduler.ArrivalRate < 0 || c.Scheduler.ArrivalRate > 1 {
		return fmt.Errorf("scheduler arrival_rate must be between 0 and 1")
	}

	switch strings.ToLower(c.AI.Provider) {
	case ProviderOpenAI, ProviderAnthropic, ProviderNone, "":
	default:
		return fmt.Errorf("unsupported ai provider %q", c.AI.Provider)
	}

	if c.Session.Secret == "" {
		return fmt.Errorf("session secret is required")
	}

	return nil
}
