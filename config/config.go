package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/spf13/viper"
)

const (
	DefaultPort         = 12346
	DefaultHost         = "127.0.0.1"
	DefaultMaxSessions  = 100
	DefaultMaxWorkInfos = 10
	DefaultLogLevel     = "info"
	DefaultEnv          = "development"
	ConfigFileEnv       = "TASKTREE_CONFIG"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
	Env  string `mapstructure:"env"` // "development" or "production"

	LogLevel string `mapstructure:"log_level"`

	// Cache capacities
	MaxSessions  int `mapstructure:"max_sessions"`
	MaxWorkInfos int `mapstructure:"max_work_infos"`
}

var (
	cfg     *Config
	fileErr error
	once    sync.Once
)

// Get returns the global configuration (singleton)
func Get() *Config {
	once.Do(func() {
		cfg, fileErr = load()
	})
	return cfg
}

// FileError reports why the file named by TASKTREE_CONFIG could not be
// applied, or nil. Get falls back to environment values in that case.
func FileError() error {
	Get()
	return fileErr
}

// load reads configuration from environment variables, then overlays the
// YAML file named by TASKTREE_CONFIG if there is one
func load() (*Config, error) {
	c := fromEnv()
	var err error
	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err = LoadFile(path, c); err != nil {
			err = fmt.Errorf("%s=%s: %w", ConfigFileEnv, path, err)
		}
	}
	c.normalize()
	return c, err
}

func fromEnv() *Config {
	return &Config{
		Port:         getEnvInt("PORT", DefaultPort),
		Host:         getEnv("HOST", DefaultHost),
		Env:          getEnv("ENV", DefaultEnv),
		LogLevel:     getEnv("LOG_LEVEL", DefaultLogLevel),
		MaxSessions:  getEnvInt("MAX_SESSIONS", DefaultMaxSessions),
		MaxWorkInfos: getEnvInt("MAX_WORK_INFOS", DefaultMaxWorkInfos),
	}
}

// LoadFile overlays values from a YAML config file onto c
func LoadFile(path string, c *Config) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	c.normalize()
	return nil
}

// normalize replaces non-positive capacities with defaults
func (c *Config) normalize() {
	if c.MaxSessions <= 0 {
		c.MaxSessions = DefaultMaxSessions
	}
	if c.MaxWorkInfos <= 0 {
		c.MaxWorkInfos = DefaultMaxWorkInfos
	}
	if c.Port <= 0 {
		c.Port = DefaultPort
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// Addr returns host:port for the HTTP listener
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
