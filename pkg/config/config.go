package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/pluginhost/pkg/observability"
)

// Config holds all host configuration
type Config struct {
	// ServiceName identifies the host service that loads plugins
	ServiceName string `yaml:"service_name"`

	Notifications NotificationsConfig `yaml:"notifications"`
	Plugins       PluginsConfig       `yaml:"plugins"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// NotificationsConfig holds notification backend settings
type NotificationsConfig struct {
	// Driver names the active notification backend
	Driver string `yaml:"driver"`
	// DefaultPublisherID is used when a notification carries no publisher
	DefaultPublisherID string `yaml:"default_publisher_id"`

	Webhook WebhookConfig `yaml:"webhook"`
}

// WebhookConfig configures the webhook notification backend
type WebhookConfig struct {
	URL        string        `yaml:"url"`
	Secret     string        `yaml:"secret"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// Enabled reports whether a webhook URL is configured
func (w WebhookConfig) Enabled() bool {
	return w.URL != ""
}

// PluginsConfig holds plugin discovery settings
type PluginsConfig struct {
	// ClassPaths lists explicit plugin entries of the form <path>.<Symbol>
	ClassPaths []string `yaml:"class_paths"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
	MetricsAddr    string `yaml:"metrics_addr"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ServiceName: "pluginhost",
		Notifications: NotificationsConfig{
			Driver:             "noop",
			DefaultPublisherID: "pluginhost",
			Webhook: WebhookConfig{
				Timeout:    10 * time.Second,
				MaxRetries: 3,
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			MetricsEnabled: false,
			MetricsAddr:    ":9090",
		},
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := Default()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFile loads configuration from a YAML file. Environment variables
// override values from the file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides cfg with any PLUGINHOST_* variables that are set
func applyEnv(cfg *Config) {
	cfg.ServiceName = getEnv("PLUGINHOST_SERVICE_NAME", cfg.ServiceName)

	cfg.Notifications.Driver = getEnv("PLUGINHOST_NOTIFICATION_DRIVER", cfg.Notifications.Driver)
	cfg.Notifications.DefaultPublisherID = getEnv("PLUGINHOST_DEFAULT_PUBLISHER_ID", cfg.Notifications.DefaultPublisherID)
	cfg.Notifications.Webhook.URL = getEnv("PLUGINHOST_WEBHOOK_URL", cfg.Notifications.Webhook.URL)
	cfg.Notifications.Webhook.Secret = getEnv("PLUGINHOST_WEBHOOK_SECRET", cfg.Notifications.Webhook.Secret)
	cfg.Notifications.Webhook.Timeout = getEnvDuration("PLUGINHOST_WEBHOOK_TIMEOUT", cfg.Notifications.Webhook.Timeout)
	cfg.Notifications.Webhook.MaxRetries = getEnvInt("PLUGINHOST_WEBHOOK_MAX_RETRIES", cfg.Notifications.Webhook.MaxRetries)

	if paths := getEnvList("PLUGINHOST_PLUGIN_CLASS_PATHS"); paths != nil {
		cfg.Plugins.ClassPaths = paths
	}

	cfg.Observability.LogLevel = getEnv("PLUGINHOST_LOG_LEVEL", cfg.Observability.LogLevel)
	cfg.Observability.MetricsEnabled = getEnvBool("PLUGINHOST_METRICS_ENABLED", cfg.Observability.MetricsEnabled)
	cfg.Observability.MetricsAddr = getEnv("PLUGINHOST_METRICS_ADDR", cfg.Observability.MetricsAddr)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}

	for i, entry := range c.Plugins.ClassPaths {
		if strings.TrimSpace(entry) == "" {
			return fmt.Errorf("plugin class path %d is empty", i)
		}
	}

	if c.Notifications.Webhook.Enabled() {
		if !strings.HasPrefix(c.Notifications.Webhook.URL, "http://") &&
			!strings.HasPrefix(c.Notifications.Webhook.URL, "https://") {
			return fmt.Errorf("webhook URL must be http or https: %s", c.Notifications.Webhook.URL)
		}
		if c.Notifications.Webhook.MaxRetries < 0 {
			return fmt.Errorf("webhook max retries must not be negative")
		}
	}

	if c.Observability.MetricsEnabled && c.Observability.MetricsAddr == "" {
		return fmt.Errorf("metrics address is required when metrics are enabled")
	}

	return nil
}

// LogLevel returns the parsed observability log level
func (c *Config) LogLevel() observability.LogLevel {
	return observability.ParseLogLevel(c.Observability.LogLevel)
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList returns a comma separated environment variable, or nil when unset
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
