// Package host wires the native messaging pieces together: a sequential
// dispatch loop reading framed requests, the activation state machine for
// cross-profile signals, and the lazy per-process watcher registration.
package host

import (
	"context"
	"errors"

	"github.com/profswitch/host/internal/config"
	"github.com/profswitch/host/internal/logger"
	"github.com/profswitch/host/pkg/browser"
	"github.com/profswitch/host/pkg/profiles"
	"github.com/profswitch/host/pkg/signal"
	"github.com/profswitch/host/pkg/transport"
	"github.com/profswitch/host/pkg/types"
)

// Host serves one extension connection for the lifetime of the process.
// Requests are handled strictly in receipt order on the calling
// goroutine; the signal watcher is the only other line of execution and
// shares the transport's locked write side.
type Host struct {
	cfg       *config.Config
	conn      *transport.Conn
	mailbox   *signal.Mailbox
	store     *profiles.Store
	launcher  browser.Launcher
	activator browser.Activator
	guard     *RegistrationGuard
	log       *logger.Logger
}

// New assembles a host over the given transport connection
func New(cfg *config.Config, conn *transport.Conn, log *logger.Logger) *Host {
	if log == nil {
		log = logger.Global()
	}
	return &Host{
		cfg:       cfg,
		conn:      conn,
		mailbox:   signal.NewMailbox(cfg.Signal, log),
		store:     profiles.NewStore(cfg.Browser, log),
		launcher:  browser.NewLauncher(cfg.Browser, log),
		activator: browser.NewActivator(cfg.Browser, log),
		guard:     NewRegistrationGuard(),
		log:       log.With("component", "host"),
	}
}

// Run reads and answers requests until the peer closes the stream, which
// returns nil (the process should exit 0). Any other transport fault is
// returned and terminates the process with a diagnostic.
func (h *Host) Run(ctx context.Context) error {
	h.log.Info("native host started", "signal_dir", h.cfg.Signal.Dir)

	for {
		var req types.Request
		if err := h.conn.ReadMessage(&req); err != nil {
			if errors.Is(err, transport.ErrClosed) {
				h.log.Info("peer closed the stream, shutting down")
				return nil
			}
			return err
		}

		result := h.dispatch(ctx, &req)
		if req.HasID() {
			result["id"] = req.ID
		}
		if err := h.conn.WriteMessage(result); err != nil {
			return err
		}
	}
}

// dispatch routes one request by action name
func (h *Host) dispatch(ctx context.Context, req *types.Request) types.Result {
	h.log.Debug("request received", "action", req.Action)

	switch req.Action {
	case types.ActionRegister:
		return h.register(ctx, req.ProfileDir)
	case types.ActionGetProfiles:
		return h.getProfiles(req.CurrentEmail)
	case types.ActionSwitchProfile:
		return h.activate(req.ProfileDir, "")
	case types.ActionOpenURLInProfile:
		return h.activate(req.ProfileDir, req.URL)
	default:
		return types.Errorf("Unknown action: %s", req.Action)
	}
}

// register binds this process to its profile directory and starts the
// signal watcher the first time. Re-registration is a success no-op.
func (h *Host) register(ctx context.Context, profileDir string) types.Result {
	if h.guard.Begin(profileDir) {
		watcher := signal.NewWatcher(h.mailbox, profileDir, h.cfg.Signal.WatchInterval, h.conn, h.log)
		go watcher.Run(ctx)
		h.log.Info("registered profile", "profile", profileDir)
	}
	return types.Success()
}

// getProfiles enumerates profiles; failures become a result-level error
// and the host keeps serving
func (h *Host) getProfiles(currentEmail string) types.Result {
	list, err := h.store.List(currentEmail)
	if err != nil {
		h.log.Warn("profile enumeration failed", "error", err)
		return types.Errorf("Failed to read Local State: %v", err)
	}
	return types.Result{
		"profiles":     list.Profiles,
		"currentIndex": list.CurrentIndex,
	}
}

// activate runs the shared switch/open-url state machine: raise the
// application, signal the target, wait a bounded time for the target's
// watcher to consume it, and fall back to launching a fresh process on
// timeout. The window where a slow target consumes the signal just after
// the timeout can double-activate; both paths converge on the target
// being focused, so the duplicate is tolerated.
func (h *Host) activate(profileDir, url string) types.Result {
	h.activator.Activate()

	var payload *types.SignalPayload
	if url != "" {
		payload = &types.SignalPayload{URL: url}
	}
	if err := h.mailbox.Write(profileDir, payload); err != nil {
		h.log.Error("signal write failed", "profile", profileDir, "error", err)
		return types.Errorf("Failed to write signal: %v", err)
	}

	if h.mailbox.WaitForConsumption(profileDir, h.cfg.Signal.ConsumeTimeout) {
		h.log.Info("signal delivered", "profile", profileDir)
		return types.SuccessVia(types.MethodSignal)
	}

	// Target not running; open a fresh instance into the profile.
	if err := h.launcher.Launch(profileDir, url); err != nil {
		h.log.Error("launch fallback failed", "profile", profileDir, "error", err)
		return types.Errorf("Failed to launch browser: %v", err)
	}
	h.log.Info("launched for profile", "profile", profileDir)
	return types.SuccessVia(types.MethodLaunch)
}
