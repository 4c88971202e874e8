package config

import (
	"fmt"
	"time"

	"github.com/profswitch/host/pkg/types"
)

// Config represents the complete configuration for the native host
type Config struct {
	Browser BrowserConfig `json:"browser" yaml:"browser"`
	Signal  SignalConfig  `json:"signal" yaml:"signal"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// BrowserConfig locates the browser installation this host coordinates
type BrowserConfig struct {
	// UserDataDir is the browser's profile root (holds Local State and the
	// per-profile directories).
	UserDataDir string `json:"user_data_dir" yaml:"user_data_dir"`
	// Binary is the executable spawned on launch fallback.
	Binary string `json:"binary" yaml:"binary"`
	// AppName is the application name used for the foreground call.
	AppName string `json:"app_name" yaml:"app_name"`
	// LocalStateFile is the registry file name under UserDataDir.
	LocalStateFile string `json:"local_state_file" yaml:"local_state_file"`
	// AvatarFile is the per-profile picture file name.
	AvatarFile string `json:"avatar_file" yaml:"avatar_file"`
}

// SignalConfig controls the filesystem mailbox and its timing
type SignalConfig struct {
	// Dir is the shared signal directory visible to every profile process.
	Dir string `json:"dir" yaml:"dir"`
	// PollInterval is how often a consumption wait re-checks the slot.
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`
	// ConsumeTimeout bounds the wait before falling back to a launch.
	ConsumeTimeout time.Duration `json:"consume_timeout" yaml:"consume_timeout"`
	// WatchInterval is the watcher's mailbox drain period.
	WatchInterval time.Duration `json:"watch_interval" yaml:"watch_interval"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // json, text
	Output string `json:"output" yaml:"output"` // stderr or file path; stdout carries the protocol
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	// Validate browser configuration
	if c.Browser.UserDataDir == "" {
		return types.NewError(types.ErrCodeInvalidArgument, "browser user data dir cannot be empty")
	}
	if c.Browser.Binary == "" {
		return types.NewError(types.ErrCodeInvalidArgument, "browser binary cannot be empty")
	}
	if c.Browser.LocalStateFile == "" {
		return types.NewError(types.ErrCodeInvalidArgument, "local state file name cannot be empty")
	}

	// Validate signal configuration
	if c.Signal.Dir == "" {
		return types.NewError(types.ErrCodeInvalidArgument, "signal dir cannot be empty")
	}
	if c.Signal.PollInterval <= 0 {
		return types.NewError(types.ErrCodeInvalidArgument, "signal poll interval must be positive")
	}
	if c.Signal.ConsumeTimeout <= 0 {
		return types.NewError(types.ErrCodeInvalidArgument, "signal consume timeout must be positive")
	}
	if c.Signal.WatchInterval <= 0 {
		return types.NewError(types.ErrCodeInvalidArgument, "signal watch interval must be positive")
	}
	if c.Signal.PollInterval > c.Signal.ConsumeTimeout {
		return types.NewError(types.ErrCodeInvalidArgument,
			"signal poll interval cannot exceed the consume timeout")
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return types.NewError(types.ErrCodeInvalidArgument,
			fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level))
	}
	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return types.NewError(types.ErrCodeInvalidArgument,
			fmt.Sprintf("invalid log format: %s (must be json or text)", c.Logging.Format))
	}
	// The framed protocol owns stdout; log bytes there would corrupt it.
	if c.Logging.Output == "stdout" {
		return types.NewError(types.ErrCodeInvalidArgument,
			"log output cannot be stdout: stdout carries the native messaging stream")
	}

	return nil
}

// String returns a loggable summary of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{UserDataDir: %s, SignalDir: %s, ConsumeTimeout: %s}",
		c.Browser.UserDataDir, c.Signal.Dir, c.Signal.ConsumeTimeout)
}
