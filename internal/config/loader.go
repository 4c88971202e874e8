package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/profswitch/host/pkg/types"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} and ${VAR_NAME:-default}
var envVarPattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)(:-([^}]*))?\}`)

// interpolateEnvVars replaces environment variable placeholders with their
// values. Supports ${VAR_NAME} and ${VAR_NAME:-default_value} syntax.
func interpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) >= 4 && parts[3] != "" {
			defaultValue = parts[3]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// signalConfigYAML mirrors SignalConfig with duration strings, which the
// yaml package cannot decode into time.Duration directly
type signalConfigYAML struct {
	Dir            string `yaml:"dir"`
	PollInterval   string `yaml:"poll_interval"`
	ConsumeTimeout string `yaml:"consume_timeout"`
	WatchInterval  string `yaml:"watch_interval"`
}

// UnmarshalYAML decodes durations like "250ms" and leaves omitted fields
// at their current (default) values
func (c *SignalConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw signalConfigYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.Dir != "" {
		c.Dir = raw.Dir
	}
	set := func(field *time.Duration, s, name string) error {
		if s == "" {
			return nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return types.WrapError(types.ErrCodeInvalid, "invalid "+name, err)
		}
		*field = d
		return nil
	}
	if err := set(&c.PollInterval, raw.PollInterval, "poll_interval"); err != nil {
		return err
	}
	if err := set(&c.ConsumeTimeout, raw.ConsumeTimeout, "consume_timeout"); err != nil {
		return err
	}
	return set(&c.WatchInterval, raw.WatchInterval, "watch_interval")
}

// validateFilePath checks if the file path is valid and has the correct extension
func validateFilePath(path string) error {
	if path == "" {
		return types.NewError(types.ErrCodeInvalidArgument, "configuration file path cannot be empty")
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return types.NewError(types.ErrCodeInvalidArgument,
			"configuration file must have .yaml or .yml extension, got: "+ext)
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file, starting from the
// defaults so a partial file only overrides what it names. Environment
// overrides still apply on top of the file.
func LoadFromFile(path string) (*Config, error) {
	if err := validateFilePath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapError(types.ErrCodeNotFound, "failed to read configuration file "+path, err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, types.NewError(types.ErrCodeInvalid, "configuration file is empty: "+path)
	}

	interpolated := interpolateEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(interpolated), cfg); err != nil {
		return nil, types.WrapError(types.ErrCodeInvalid, "invalid YAML syntax in "+path, err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}
