package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ClientConfig drives the CLI and any other API consumer.
type ClientConfig struct {
	APIURL  string        `mapstructure:"api_url" yaml:"api_url"`
	Token   string        `mapstructure:"token" yaml:"token,omitempty"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Output  string        `mapstructure:"output" yaml:"output"`
}

// DefaultClientConfig returns the settings used when nothing is configured.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		APIURL:  "http://localhost:8080",
		Timeout: 10 * time.Second,
		Output:  "table",
	}
}

// LoadClient merges defaults, the YAML file at path (default
// ~/.taskflow/config.yaml, skipped when missing) and TASKFLOW_* env vars.
func LoadClient(path string) (ClientConfig, error) {
	def := DefaultClientConfig()

	v := viper.New()
	v.SetDefault("api_url", def.APIURL)
	v.SetDefault("token", "")
	v.SetDefault("timeout", def.Timeout.String())
	v.SetDefault("output", def.Output)
	v.SetEnvPrefix("TASKFLOW")
	v.AutomaticEnv()

	if path == "" {
		path = ClientConfigPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return def, fmt.Errorf("read %s: %w", path, err)
			}
		}
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return def, fmt.Errorf("decode client config: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return cfg, nil
}

// WriteClient stores cfg as YAML, creating the parent directory.
func WriteClient(path string, cfg ClientConfig) error {
	if path == "" {
		path = ClientConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(struct {
		APIURL  string `yaml:"api_url"`
		Token   string `yaml:"token,omitempty"`
		Timeout string `yaml:"timeout"`
		Output  string `yaml:"output"`
	}{cfg.APIURL, cfg.Token, cfg.Timeout.String(), cfg.Output})
	if err != nil {
		return fmt.Errorf("encode client config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// ClientConfigPath is ~/.taskflow/config.yaml, or empty without a home dir.
func ClientConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".taskflow", "config.yaml")
}
