package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/profswitch/host/internal/config"
	"github.com/profswitch/host/internal/logger"
	"github.com/profswitch/host/pkg/host"
	"github.com/profswitch/host/pkg/transport"
	"github.com/spf13/cobra"
)

// Version is stamped at build time
const Version = "1.0.0"

var (
	// CLI flags
	cfgFile    string
	logLevel   string
	logFormat  string
	logOutput  string
	browserDir string
	browserBin string
	signalDir  string

	// Global variables
	rootLog *logger.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "profswitch-host",
	Short: "Native messaging host for cross-profile browser coordination",
	Long: `profswitch-host is the native messaging side of the profile switcher
extension. It speaks the browser's length-prefixed JSON framing on
stdin/stdout, enumerates profiles from the browser's Local State, and
coordinates profile activation across isolated profile processes through
a shared filesystem signal mailbox.

Run without arguments it serves one extension connection until the peer
closes the stream.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runHost,
}

// runHost serves the native messaging connection on stdin/stdout
func runHost(cmd *cobra.Command, args []string) error {
	if err := initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	rootLog.Info("native host starting", "version", Version)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	conn := transport.New(os.Stdin, os.Stdout)
	h := host.New(cfg, conn, rootLog)

	// Returns nil when the extension closes the stream; anything else is
	// an unexpected fault and exits non-zero via Execute.
	return h.Run(context.Background())
}

// initLogger initializes the global logger based on CLI flags and config
func initLogger() error {
	cfg := config.DefaultLoggingConfig()

	if logLevel != "" {
		cfg.Level = logLevel
	}
	if logFormat != "" {
		cfg.Format = logFormat
	}
	if logOutput != "" {
		cfg.Output = logOutput
	}

	log, err := logger.New(cfg)
	if err != nil {
		return err
	}

	rootLog = log
	logger.SetGlobal(log)
	return nil
}

// loadConfig loads the configuration and applies CLI overrides
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if browserDir != "" {
		cfg.Browser.UserDataDir = browserDir
	}
	if browserBin != "" {
		cfg.Browser.Binary = browserBin
	}
	if signalDir != "" {
		cfg.Signal.Dir = signalDir
	}

	return cfg, nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Diagnostics go to stderr only; stdout belongs to the protocol.
		logger.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file path (default: defaults plus environment variables)")

	// Logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (default: from config or env)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Log format: json, text (default: from config or env)")
	rootCmd.PersistentFlags().StringVar(&logOutput, "log-output", "",
		"Log output: stderr or file path (default: stderr)")

	// Browser flags
	rootCmd.PersistentFlags().StringVar(&browserDir, "browser-dir", "",
		"Browser user data directory (default: platform location)")
	rootCmd.PersistentFlags().StringVar(&browserBin, "browser-bin", "",
		"Browser executable for launch fallback (default: platform location)")

	// Signal flags
	rootCmd.PersistentFlags().StringVar(&signalDir, "signal-dir", "",
		"Shared signal mailbox directory (default: under the temp dir)")
}
