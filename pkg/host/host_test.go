package host

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/profswitch/host/internal/config"
	"github.com/profswitch/host/internal/logger"
	"github.com/profswitch/host/pkg/transport"
	"github.com/profswitch/host/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLauncher records launch calls instead of spawning anything
type fakeLauncher struct {
	mu    sync.Mutex
	calls []launchCall
	err   error
}

type launchCall struct {
	profileDir string
	url        string
}

func (f *fakeLauncher) Launch(profileDir, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, launchCall{profileDir: profileDir, url: url})
	return nil
}

func (f *fakeLauncher) launches() []launchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]launchCall(nil), f.calls...)
}

// fakeActivator counts foreground calls
type fakeActivator struct {
	mu    sync.Mutex
	count int
}

func (f *fakeActivator) Activate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
}

func (f *fakeActivator) activations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

// harness runs a Host over in-memory pipes and exposes the extension side
type harness struct {
	h        *Host
	ext      *transport.Conn
	launcher *fakeLauncher
	act      *fakeActivator
	toHost   *io.PipeWriter
	done     chan error
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()

	cfg := config.Default()
	cfg.Browser.UserDataDir = t.TempDir()
	cfg.Signal.Dir = filepath.Join(t.TempDir(), "signals")
	cfg.Signal.PollInterval = 10 * time.Millisecond
	cfg.Signal.WatchInterval = 10 * time.Millisecond
	cfg.Signal.ConsumeTimeout = 150 * time.Millisecond
	if mutate != nil {
		mutate(cfg)
	}

	toHostR, toHostW := io.Pipe()
	fromHostR, fromHostW := io.Pipe()

	log, err := logger.NewDefault()
	require.NoError(t, err)

	h := New(cfg, transport.New(toHostR, fromHostW), log)
	launcher := &fakeLauncher{}
	act := &fakeActivator{}
	h.launcher = launcher
	h.activator = act

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.Run(ctx)
	}()

	t.Cleanup(func() {
		toHostW.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("host did not shut down after the peer closed")
		}
		cancel()
		fromHostW.Close()
	})

	return &harness{
		h:        h,
		ext:      transport.New(fromHostR, toHostW),
		launcher: launcher,
		act:      act,
		toHost:   toHostW,
		done:     done,
	}
}

// send writes a request from the extension side
func (hr *harness) send(t *testing.T, req map[string]any) {
	t.Helper()
	require.NoError(t, hr.ext.WriteMessage(req))
}

// recv reads the next framed message from the host with a deadline
func (hr *harness) recv(t *testing.T) map[string]any {
	t.Helper()

	type read struct {
		msg map[string]any
		err error
	}
	ch := make(chan read, 1)
	go func() {
		var msg map[string]any
		err := hr.ext.ReadMessage(&msg)
		ch <- read{msg: msg, err: err}
	}()

	select {
	case r := <-ch:
		require.NoError(t, r.err)
		return r.msg
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a message from the host")
		return nil
	}
}

// writeLocalState seeds the browser fixture the host reads profiles from
func (hr *harness) writeLocalState(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(hr.h.cfg.Browser.UserDataDir, hr.h.cfg.Browser.LocalStateFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestUnknownAction(t *testing.T) {
	hr := newHarness(t, nil)

	hr.send(t, map[string]any{"action": "explode", "id": 7})
	resp := hr.recv(t)

	assert.Equal(t, "Unknown action: explode", resp["error"])
	assert.Equal(t, float64(7), resp["id"])
}

func TestResponseWithoutCorrelationID(t *testing.T) {
	hr := newHarness(t, nil)

	hr.send(t, map[string]any{"action": "register", "profileDir": "Default"})
	resp := hr.recv(t)

	assert.Equal(t, true, resp["success"])
	_, hasID := resp["id"]
	assert.False(t, hasID)
}

func TestNullCorrelationIDNotEchoed(t *testing.T) {
	hr := newHarness(t, nil)

	hr.send(t, map[string]any{"action": "explode", "id": nil})
	resp := hr.recv(t)

	_, hasID := resp["id"]
	assert.False(t, hasID)
}

func TestStringCorrelationIDEchoed(t *testing.T) {
	hr := newHarness(t, nil)

	hr.send(t, map[string]any{"action": "explode", "id": "req-93"})
	resp := hr.recv(t)

	assert.Equal(t, "req-93", resp["id"])
}

func TestRegisterStartsExactlyOneWatcher(t *testing.T) {
	hr := newHarness(t, nil)

	hr.send(t, map[string]any{"action": "register", "profileDir": "Default", "id": 1})
	resp := hr.recv(t)
	assert.Equal(t, true, resp["success"])

	hr.send(t, map[string]any{"action": "register", "profileDir": "Profile 2", "id": 2})
	resp = hr.recv(t)
	assert.Equal(t, true, resp["success"])

	// Only the first identifier is watched for the process lifetime.
	assert.True(t, hr.h.guard.Started())
	assert.Equal(t, "Default", hr.h.guard.ProfileDir())

	// The live watcher drains Default's mailbox and pushes the event.
	require.NoError(t, hr.h.mailbox.Write("Default", nil))
	event := hr.recv(t)
	assert.Equal(t, "activate", event["action"])

	// Nothing consumes the second identifier's mailbox.
	require.NoError(t, hr.h.mailbox.Write("Profile 2", nil))
	assert.False(t, hr.h.mailbox.WaitForConsumption("Profile 2", 100*time.Millisecond))
}

func TestRegisterEmptyProfileDirStillSucceeds(t *testing.T) {
	hr := newHarness(t, nil)

	hr.send(t, map[string]any{"action": "register", "id": 5})
	resp := hr.recv(t)

	assert.Equal(t, true, resp["success"])
	assert.False(t, hr.h.guard.Started())
}

func TestWatcherForwardsURLEvent(t *testing.T) {
	hr := newHarness(t, nil)

	hr.send(t, map[string]any{"action": "register", "profileDir": "Default"})
	hr.recv(t)

	require.NoError(t, hr.h.mailbox.Write("Default", &types.SignalPayload{URL: "https://example.com/doc"}))

	event := hr.recv(t)
	assert.Equal(t, "open-url", event["action"])
	assert.Equal(t, "https://example.com/doc", event["url"])
}

func TestSwitchProfileFallsBackToLaunch(t *testing.T) {
	hr := newHarness(t, nil)

	hr.send(t, map[string]any{"action": "switch-profile", "profileDir": "Profile 9", "id": 1})
	resp := hr.recv(t)

	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "launch", resp["method"])
	assert.Equal(t, float64(1), resp["id"])

	launches := hr.launcher.launches()
	require.Len(t, launches, 1)
	assert.Equal(t, "Profile 9", launches[0].profileDir)
	assert.Empty(t, launches[0].url)

	assert.Equal(t, 1, hr.act.activations())
}

func TestSwitchProfileDeliveredViaSignal(t *testing.T) {
	hr := newHarness(t, func(cfg *config.Config) {
		cfg.Signal.ConsumeTimeout = 2 * time.Second
	})

	// Stand in for the target profile's watcher: consume the signal
	// shortly after it lands.
	go func() {
		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) {
			if _, ok := hr.h.mailbox.Take("Profile 9"); ok {
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
	}()

	hr.send(t, map[string]any{"action": "switch-profile", "profileDir": "Profile 9", "id": 1})
	resp := hr.recv(t)

	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "signal", resp["method"])
	assert.Empty(t, hr.launcher.launches())
}

func TestOpenURLInProfileCarriesURL(t *testing.T) {
	hr := newHarness(t, func(cfg *config.Config) {
		cfg.Signal.ConsumeTimeout = 2 * time.Second
	})

	got := make(chan string, 1)
	go func() {
		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) {
			if payload, ok := hr.h.mailbox.Take("Profile 3"); ok {
				got <- payload.URL
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
		got <- ""
	}()

	hr.send(t, map[string]any{
		"action":     "open-url-in-profile",
		"profileDir": "Profile 3",
		"url":        "https://example.com/page",
		"id":         1,
	})
	resp := hr.recv(t)

	assert.Equal(t, "signal", resp["method"])
	assert.Equal(t, "https://example.com/page", <-got)
}

func TestOpenURLInProfileLaunchPassesURL(t *testing.T) {
	hr := newHarness(t, nil)

	hr.send(t, map[string]any{
		"action":     "open-url-in-profile",
		"profileDir": "Profile 3",
		"url":        "https://example.com/page",
		"id":         1,
	})
	resp := hr.recv(t)

	assert.Equal(t, "launch", resp["method"])
	launches := hr.launcher.launches()
	require.Len(t, launches, 1)
	assert.Equal(t, "Profile 3", launches[0].profileDir)
	assert.Equal(t, "https://example.com/page", launches[0].url)
}

func TestLaunchFailureBecomesResultError(t *testing.T) {
	hr := newHarness(t, nil)
	hr.launcher.err = types.NewError(types.ErrCodeLaunchFailed, "no such binary")

	hr.send(t, map[string]any{"action": "switch-profile", "profileDir": "Profile 9", "id": 1})
	resp := hr.recv(t)

	assert.Contains(t, resp["error"], "Failed to launch browser")
	assert.Equal(t, float64(1), resp["id"])

	// The process keeps serving after a failed launch.
	hr.send(t, map[string]any{"action": "explode", "id": 2})
	resp = hr.recv(t)
	assert.Equal(t, float64(2), resp["id"])
}

func TestGetProfilesCurrentIndex(t *testing.T) {
	hr := newHarness(t, nil)
	hr.writeLocalState(t, `{
		"profile": {
			"info_cache": {
				"Default": {"user_name": "a@x.com", "name": "Personal"}
			}
		}
	}`)

	hr.send(t, map[string]any{"action": "get-profiles", "currentEmail": "a@x.com", "id": 1})
	resp := hr.recv(t)

	assert.Equal(t, float64(0), resp["currentIndex"])
	profiles, ok := resp["profiles"].([]any)
	require.True(t, ok)
	require.Len(t, profiles, 1)

	record := profiles[0].(map[string]any)
	assert.Equal(t, "Default", record["directory"])
	assert.Equal(t, "Personal", record["name"])
	assert.Equal(t, "a@x.com", record["email"])
	assert.Nil(t, record["highlightColor"])
	assert.Nil(t, record["avatar"])
}

func TestGetProfilesErrorKeepsServing(t *testing.T) {
	hr := newHarness(t, nil)

	hr.send(t, map[string]any{"action": "get-profiles", "id": 1})
	resp := hr.recv(t)

	assert.Contains(t, resp["error"], "Failed to read Local State")
	assert.Equal(t, float64(1), resp["id"])

	hr.send(t, map[string]any{"action": "register", "profileDir": "Default", "id": 2})
	resp = hr.recv(t)
	assert.Equal(t, true, resp["success"])
}

func TestPeerCloseShutsDownCleanly(t *testing.T) {
	hr := newHarness(t, nil)

	hr.send(t, map[string]any{"action": "register", "profileDir": "Default"})
	hr.recv(t)

	hr.toHost.Close()

	select {
	case err := <-hr.done:
		assert.NoError(t, err)
		// Cleanup waits on done as well.
		hr.done <- err
	case <-time.After(2 * time.Second):
		t.Fatal("host did not exit after the peer closed the stream")
	}
}
