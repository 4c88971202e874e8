package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	// Environment variable names
	EnvBrowserDir     = "PROFSWITCH_BROWSER_DIR"
	EnvBrowserBin     = "PROFSWITCH_BROWSER_BIN"
	EnvBrowserApp     = "PROFSWITCH_BROWSER_APP"
	EnvSignalDir      = "PROFSWITCH_SIGNAL_DIR"
	EnvPollInterval   = "PROFSWITCH_POLL_INTERVAL"
	EnvConsumeTimeout = "PROFSWITCH_CONSUME_TIMEOUT"
	EnvWatchInterval  = "PROFSWITCH_WATCH_INTERVAL"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
	EnvLogOutput      = "LOG_OUTPUT"
)

const (
	// Default signal timing
	DefaultPollInterval   = 100 * time.Millisecond
	DefaultConsumeTimeout = 2 * time.Second
	DefaultWatchInterval  = 300 * time.Millisecond

	// Default browser metadata
	DefaultAppName        = "Google Chrome"
	DefaultLocalStateFile = "Local State"
	DefaultAvatarFile     = "Google Profile Picture.png"

	// Default logging settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultLogOutput = "stderr"
)

// DefaultBrowserConfig returns the browser defaults for the current platform
func DefaultBrowserConfig() BrowserConfig {
	home, _ := os.UserHomeDir()

	var dataDir, binary string
	switch runtime.GOOS {
	case "darwin":
		dataDir = filepath.Join(home, "Library", "Application Support", "Google", "Chrome")
		binary = "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
	default:
		dataDir = filepath.Join(home, ".config", "google-chrome")
		binary = "google-chrome"
	}

	return BrowserConfig{
		UserDataDir:    dataDir,
		Binary:         binary,
		AppName:        DefaultAppName,
		LocalStateFile: DefaultLocalStateFile,
		AvatarFile:     DefaultAvatarFile,
	}
}

// DefaultSignalConfig returns default signal mailbox settings
func DefaultSignalConfig() SignalConfig {
	return SignalConfig{
		Dir:            filepath.Join(os.TempDir(), "chrome-profile-switcher"),
		PollInterval:   DefaultPollInterval,
		ConsumeTimeout: DefaultConsumeTimeout,
		WatchInterval:  DefaultWatchInterval,
	}
}

// DefaultLoggingConfig returns default logging settings
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  DefaultLogLevel,
		Format: DefaultLogFormat,
		Output: DefaultLogOutput,
	}
}

// Default returns the complete default configuration
func Default() *Config {
	return &Config{
		Browser: DefaultBrowserConfig(),
		Signal:  DefaultSignalConfig(),
		Logging: DefaultLoggingConfig(),
	}
}

// applyEnvOverrides overlays environment variables onto the configuration
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvBrowserDir); v != "" {
		cfg.Browser.UserDataDir = v
	}
	if v := os.Getenv(EnvBrowserBin); v != "" {
		cfg.Browser.Binary = v
	}
	if v := os.Getenv(EnvBrowserApp); v != "" {
		cfg.Browser.AppName = v
	}
	if v := os.Getenv(EnvSignalDir); v != "" {
		cfg.Signal.Dir = v
	}
	if v := os.Getenv(EnvPollInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Signal.PollInterval = d
		}
	}
	if v := os.Getenv(EnvConsumeTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Signal.ConsumeTimeout = d
		}
	}
	if v := os.Getenv(EnvWatchInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Signal.WatchInterval = d
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv(EnvLogOutput); v != "" {
		cfg.Logging.Output = v
	}
}

// Load builds the configuration from defaults plus environment overrides
func Load() (*Config, error) {
	cfg := Default()
	applyEnvOverrides(cfg)
	return cfg, nil
}
