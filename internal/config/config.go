package config

import (
	"errors"
	"os"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Homey   HomeyConfig   `mapstructure:"homey"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	History HistoryConfig `mapstructure:"history"`
}

// ServerConfig holds the MCP server identity advertised to clients
type ServerConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// HomeyConfig holds the Homey credentials
type HomeyConfig struct {
	LocalIP string `mapstructure:"local_ip"`
	Token   string `mapstructure:"token"`
}

// Address is the base URL of the Homey local API, or "" when no IP is set.
func (h HomeyConfig) Address() string {
	if h.LocalIP == "" {
		return ""
	}
	return "http://" + h.LocalIP
}

// LogConfig holds the logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig holds the Prometheus listener configuration. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// HistoryConfig holds the tool-call journal configuration. Empty DBPath disables it.
type HistoryConfig struct {
	DBPath string `mapstructure:"db_path"`
}

var envBindings = map[string]string{
	"homey.token":     "HOMEY_API_TOKEN",
	"homey.local_ip":  "HOMEY_LOCAL_IP",
	"log.level":       "LOG_LEVEL",
	"metrics.addr":    "HOMEY_MCP_METRICS_ADDR",
	"history.db_path": "HISTORY_DB_PATH",
}

// Load reads config.yaml (or the file named by CONFIG_PATH) and overlays the environment.
// A missing default config file is not an error; credentials usually come from the environment alone.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	explicit := os.Getenv("CONFIG_PATH")
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	v.SetDefault("server.name", "mcp-server-homey")
	v.SetDefault("server.version", "0.1.0")
	v.SetDefault("log.level", "info")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
