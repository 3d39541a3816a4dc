// Package config loads Flowday settings from a YAML file and FLOWDAY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. FLOWDAY_API_URL.
const EnvPrefix = "FLOWDAY"

// Config holds all client and stub settings.
type Config struct {
	API           APIConfig    `yaml:"api" mapstructure:"api"`
	Log           LogConfig    `yaml:"log" mapstructure:"log"`
	Chat          ChatConfig   `yaml:"chat" mapstructure:"chat"`
	Notifications NotifyConfig `yaml:"notifications" mapstructure:"notifications"`
	Stub          StubConfig   `yaml:"stub" mapstructure:"stub"`
}

// APIConfig points the client at the backend.
type APIConfig struct {
	URL     string        `yaml:"url" mapstructure:"url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type LogConfig struct {
	// Level is a logrus level name.
	Level string `yaml:"level" mapstructure:"level"`
	// Format is text or json.
	Format string `yaml:"format" mapstructure:"format"`
}

type ChatConfig struct {
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
}

// NotifyConfig gates the terminal bell.
type NotifyConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// StubConfig configures the local stub backend.
type StubConfig struct {
	Listen string `yaml:"listen" mapstructure:"listen"`
	DB     string `yaml:"db" mapstructure:"db"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:     "http://localhost:8000/api",
			Timeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Chat: ChatConfig{
			PollInterval: 5 * time.Second,
		},
		Notifications: NotifyConfig{
			Enabled: false,
		},
		Stub: StubConfig{
			Listen: "127.0.0.1:8000",
			DB:     "flowday-stub.db",
		},
	}
}

// Dir returns ~/.config/flowday.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(home, ".config", "flowday"), nil
}

// DefaultPath returns ~/.config/flowday/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating parent directories if needed.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.url %q must be an absolute URL", c.API.URL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Chat.PollInterval < time.Second {
		return fmt.Errorf("chat.poll_interval must be at least 1s")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q, must be: text or json", c.Log.Format)
	}
	if c.Stub.Listen == "" {
		return fmt.Errorf("stub.listen is required")
	}
	return nil
}

// Marshal renders cfg as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("api.url", d.API.URL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("chat.poll_interval", d.Chat.PollInterval)
	v.SetDefault("notifications.enabled", d.Notifications.Enabled)
	v.SetDefault("stub.listen", d.Stub.Listen)
	v.SetDefault("stub.db", d.Stub.DB)
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
