package host

import "sync"

// RegistrationGuard holds the per-process watcher registration state: at
// most one watcher starts per process lifetime, bound to the first
// profile directory that registers. Constructed once at process start and
// owned by the Host rather than living as package state.
type RegistrationGuard struct {
	mu         sync.Mutex
	started    bool
	profileDir string
}

// NewRegistrationGuard creates an unarmed guard
func NewRegistrationGuard() *RegistrationGuard {
	return &RegistrationGuard{}
}

// Begin records a registration attempt. It returns true exactly once, for
// the first non-empty profile directory; the caller then owns starting
// the watcher. Later attempts, same directory or not, return false.
func (g *RegistrationGuard) Begin(profileDir string) bool {
	if profileDir == "" {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started {
		return false
	}
	g.started = true
	g.profileDir = profileDir
	return true
}

// ProfileDir returns the directory the watcher was bound to, or empty if
// no registration has succeeded yet
func (g *RegistrationGuard) ProfileDir() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.profileDir
}

// Started reports whether a watcher has been started this process
func (g *RegistrationGuard) Started() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.started
}
