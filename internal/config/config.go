package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	OrderDB   OrderDBConfig   `yaml:"order_db"`
	Settings  SettingsConfig  `yaml:"settings"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Printer   PrinterConfig   `yaml:"printer"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// OrderDBConfig points at the shared restaurant database. This service is a
// consumer of that schema, never its owner.
type OrderDBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// SettingsConfig locates the local mutable settings store (printer address,
// admin password). Kept separate from the YAML file because those values
// change at runtime through the API.
type SettingsConfig struct {
	Path string `yaml:"path"`
}

type SchedulerConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

type PrinterConfig struct {
	// DefaultPort is appended to a configured address with no port.
	DefaultPort   int           `yaml:"default_port"`
	PrintTimeout  time.Duration `yaml:"print_timeout"`
	ReportTimeout time.Duration `yaml:"report_timeout"`
}

type WebhookConfig struct {
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	QueueSize int           `yaml:"queue_size"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         4000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		OrderDB: OrderDBConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "comandero",
			Database: "restaurante",
			SSLMode:  "disable",
		},
		Settings: SettingsConfig{
			Path: "./data/comandero.db",
		},
		Scheduler: SchedulerConfig{
			PollInterval: 5 * time.Second,
		},
		Printer: PrinterConfig{
			DefaultPort:   9100,
			PrintTimeout:  3 * time.Second,
			ReportTimeout: 4 * time.Second,
		},
		Webhook: WebhookConfig{
			Timeout:   10 * time.Second,
			QueueSize: 100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func Load(configPath string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("COMANDERO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("COMANDERO_DB_HOST"); v != "" {
		cfg.OrderDB.Host = v
	}
	if v := os.Getenv("COMANDERO_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.OrderDB.Port = port
		}
	}
	if v := os.Getenv("COMANDERO_DB_USER"); v != "" {
		cfg.OrderDB.User = v
	}
	if v := os.Getenv("COMANDERO_DB_PASSWORD"); v != "" {
		cfg.OrderDB.Password = v
	}
	if v := os.Getenv("COMANDERO_DB_NAME"); v != "" {
		cfg.OrderDB.Database = v
	}
	if v := os.Getenv("COMANDERO_SETTINGS_PATH"); v != "" {
		cfg.Settings.Path = v
	}
	if v := os.Getenv("COMANDERO_WEBHOOK_URL"); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv("COMANDERO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.OrderDB.Host == "" {
		return fmt.Errorf("order db host is required")
	}
	if c.OrderDB.Database == "" {
		return fmt.Errorf("order db name is required")
	}
	if c.Settings.Path == "" {
		return fmt.Errorf("settings path is required")
	}
	if c.Scheduler.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.Printer.DefaultPort < 1 || c.Printer.DefaultPort > 65535 {
		return fmt.Errorf("printer default port must be between 1 and 65535, got %d", c.Printer.DefaultPort)
	}
	if c.Printer.PrintTimeout <= 0 || c.Printer.ReportTimeout <= 0 {
		return fmt.Errorf("printer timeouts must be positive")
	}
	if c.Webhook.QueueSize < 1 {
		return fmt.Errorf("webhook queue size must be at least 1")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	return nil
}
