package signal

import (
	"context"
	"time"

	"github.com/profswitch/host/internal/logger"
	"github.com/profswitch/host/pkg/types"
)

// EventWriter pushes an unsolicited event to the controlling extension.
// *transport.Conn satisfies it.
type EventWriter interface {
	WriteMessage(v any) error
}

// Watcher drains one profile's own mailbox and forwards anything found to
// the extension. Exactly one runs per process, and it is the sole
// consumer of its profile's slot.
type Watcher struct {
	mailbox    *Mailbox
	profileDir string
	interval   time.Duration
	out        EventWriter
	log        *logger.Logger
}

// NewWatcher creates a watcher for the given profile identifier
func NewWatcher(mailbox *Mailbox, profileDir string, interval time.Duration, out EventWriter, log *logger.Logger) *Watcher {
	if log == nil {
		log = logger.Global()
	}
	return &Watcher{
		mailbox:    mailbox,
		profileDir: profileDir,
		interval:   interval,
		out:        out,
		log:        log.With("component", "watcher", "profile", profileDir),
	}
}

// Run polls the mailbox until the context is cancelled. In production the
// context never is; the loop lives as long as the process. A payload with
// a URL becomes an open-url event, anything else a plain activate.
func (w *Watcher) Run(ctx context.Context) {
	w.log.Info("signal watcher started", "interval", w.interval)

	tick := time.NewTicker(w.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("signal watcher stopped")
			return
		case <-tick.C:
			w.drain()
		}
	}
}

// drain takes at most one pending signal and forwards it
func (w *Watcher) drain() {
	payload, ok := w.mailbox.Take(w.profileDir)
	if !ok {
		return
	}

	event := types.Event{Action: types.ActionActivate}
	if payload.URL != "" {
		event = types.Event{Action: types.ActionOpenURL, URL: payload.URL}
	}

	if err := w.out.WriteMessage(event); err != nil {
		w.log.Error("failed to push signal event", "action", event.Action, "error", err)
		return
	}
	w.log.Debug("signal forwarded", "action", event.Action)
}
