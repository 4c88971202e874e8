// Package signal implements the filesystem mailbox that cooperating
// profile processes use to reach each other: one shared directory, one
// single-slot file per profile directory name. Writers overwrite, the
// owning watcher takes, and a writer can wait a bounded time for its slot
// to be consumed before falling back to launching the target.
package signal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/profswitch/host/internal/config"
	"github.com/profswitch/host/internal/logger"
	"github.com/profswitch/host/pkg/types"
)

// Mailbox addresses the shared signal directory. Distinct profile
// identifiers map to distinct files, so operations on different
// identifiers never contend.
type Mailbox struct {
	dir  string
	poll time.Duration
	log  *logger.Logger
}

// NewMailbox creates a mailbox over the configured signal directory
func NewMailbox(cfg config.SignalConfig, log *logger.Logger) *Mailbox {
	if log == nil {
		log = logger.Global()
	}
	return &Mailbox{
		dir:  cfg.Dir,
		poll: cfg.PollInterval,
		log:  log.With("component", "mailbox"),
	}
}

// slotPath returns the slot file for a profile identifier
func (m *Mailbox) slotPath(profileDir string) string {
	return filepath.Join(m.dir, profileDir)
}

// Write stores a payload in the target's slot, unconditionally replacing
// any pending one. A nil payload is a plain activation signal. The signal
// directory is created on first use; MkdirAll is race-safe under
// concurrent writers.
func (m *Mailbox) Write(profileDir string, payload *types.SignalPayload) error {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return types.WrapError(types.ErrCodeInternal, "failed to create signal dir", err)
	}

	if payload == nil {
		payload = &types.SignalPayload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return types.WrapError(types.ErrCodeInternal, "failed to encode signal payload", err)
	}

	// Write-then-rename so a concurrent Take never sees a half-written slot.
	tmp, err := os.CreateTemp(m.dir, "."+filepath.Base(profileDir)+".*")
	if err != nil {
		return types.WrapError(types.ErrCodeInternal, "failed to create signal file", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return types.WrapError(types.ErrCodeInternal, "failed to write signal file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return types.WrapError(types.ErrCodeInternal, "failed to write signal file", err)
	}
	if err := os.Rename(tmp.Name(), m.slotPath(profileDir)); err != nil {
		os.Remove(tmp.Name())
		return types.WrapError(types.ErrCodeInternal, "failed to store signal file", err)
	}

	m.log.Debug("signal written", "profile", profileDir, "url", payload.URL)
	return nil
}

// Take reads and removes the slot for a profile identifier. The same call
// that retrieves the payload deletes it, so a signal is consumed exactly
// once. Corrupt content is removed and reported as absent so a bad write
// can never wedge future delivery.
func (m *Mailbox) Take(profileDir string) (*types.SignalPayload, bool) {
	path := m.slotPath(profileDir)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		m.log.Warn("failed to remove consumed signal", "profile", profileDir, "error", err)
	}

	var payload types.SignalPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		m.log.Warn("discarding corrupt signal", "profile", profileDir, "error", err)
		return nil, false
	}
	return &payload, true
}

// WaitForConsumption polls the slot until it disappears (the target's
// watcher took it) or the timeout elapses. On timeout the stale slot is
// removed before returning, so a later watcher cycle cannot mistake it
// for a fresh signal.
func (m *Mailbox) WaitForConsumption(profileDir string, timeout time.Duration) bool {
	path := m.slotPath(profileDir)
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(m.poll)
	defer tick.Stop()

	for {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return true
		}
		select {
		case <-deadline.C:
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				m.log.Warn("failed to clear unconsumed signal", "profile", profileDir, "error", err)
			}
			return false
		case <-tick.C:
		}
	}
}
