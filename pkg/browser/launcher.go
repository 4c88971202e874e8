// Package browser wraps the two external process interactions: spawning a
// fresh browser instance for a target profile and bringing the running
// application's windows to the foreground.
package browser

import (
	"os/exec"

	"github.com/profswitch/host/internal/config"
	"github.com/profswitch/host/internal/logger"
	"github.com/profswitch/host/pkg/types"
)

// Launcher spawns a detached browser process opening directly into a
// profile. Used as the fallback when a signal goes unconsumed.
type Launcher interface {
	Launch(profileDir, url string) error
}

// ExecLauncher launches the configured browser binary
type ExecLauncher struct {
	binary string
	log    *logger.Logger
}

// NewLauncher creates a launcher for the configured browser
func NewLauncher(cfg config.BrowserConfig, log *logger.Logger) *ExecLauncher {
	if log == nil {
		log = logger.Global()
	}
	return &ExecLauncher{
		binary: cfg.Binary,
		log:    log.With("component", "launcher"),
	}
}

// Launch starts a new browser process for the profile, passing the URL as
// a launch argument when present. The child runs in its own session and
// outlives this host.
func (l *ExecLauncher) Launch(profileDir, url string) error {
	args := []string{"--profile-directory=" + profileDir}
	if url != "" {
		args = append(args, url)
	}

	cmd := exec.Command(l.binary, args...)
	cmd.SysProcAttr = detachedProcAttr()

	if err := cmd.Start(); err != nil {
		return types.WrapError(types.ErrCodeLaunchFailed, "failed to launch browser", err)
	}
	l.log.Info("launched browser", "profile", profileDir, "pid", cmd.Process.Pid)

	// Not our child to reap; let it run on its own.
	if err := cmd.Process.Release(); err != nil {
		l.log.Warn("failed to release launched process", "error", err)
	}
	return nil
}
