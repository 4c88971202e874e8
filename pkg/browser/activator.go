package browser

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/profswitch/host/internal/config"
	"github.com/profswitch/host/internal/logger"
)

// Activator brings the browser application's windows to the foreground.
// The call is fire-and-forget: failure is invisible to the caller and
// never aborts an activation.
type Activator interface {
	Activate()
}

// OSActivator uses the platform's UI automation mechanism. Only macOS has
// one today; elsewhere Activate is a no-op and the launch fallback still
// focuses the target.
type OSActivator struct {
	appName string
	log     *logger.Logger
}

// NewActivator creates an activator for the configured application
func NewActivator(cfg config.BrowserConfig, log *logger.Logger) *OSActivator {
	if log == nil {
		log = logger.Global()
	}
	return &OSActivator{
		appName: cfg.AppName,
		log:     log.With("component", "activator"),
	}
}

// Activate asks the OS to raise the application's windows
func (a *OSActivator) Activate() {
	if runtime.GOOS != "darwin" {
		return
	}

	script := fmt.Sprintf("tell application %q to activate", a.appName)
	cmd := exec.Command("osascript", "-e", script)
	if err := cmd.Start(); err != nil {
		a.log.Debug("activate call failed", "error", err)
		return
	}
	if err := cmd.Process.Release(); err != nil {
		a.log.Debug("failed to release activate process", "error", err)
	}
}
