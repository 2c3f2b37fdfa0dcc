package server

import (
	"github.com/xiaoyuanzhu-com/tasktree/config"
	"github.com/xiaoyuanzhu-com/tasktree/core"
)

// Config holds server configuration
type Config struct {
	Port int
	Host string
	Env  string // "development" or "production"

	MaxSessions  int
	MaxWorkInfos int
}

// FromAppConfig copies the settings the server needs from the app config
func FromAppConfig(c *config.Config) *Config {
	return &Config{
		Port:         c.Port,
		Host:         c.Host,
		Env:          c.Env,
		MaxSessions:  c.MaxSessions,
		MaxWorkInfos: c.MaxWorkInfos,
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// ToCoreConfig converts server config to task store config
func (c *Config) ToCoreConfig() core.Config {
	return core.Config{
		MaxSessions:  c.MaxSessions,
		MaxWorkInfos: c.MaxWorkInfos,
	}
}
