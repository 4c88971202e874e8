package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Action names understood by the dispatch loop.
const (
	ActionRegister         = "register"
	ActionGetProfiles      = "get-profiles"
	ActionSwitchProfile    = "switch-profile"
	ActionOpenURLInProfile = "open-url-in-profile"

	// Actions pushed by the signal watcher, never requested by the peer.
	ActionActivate = "activate"
	ActionOpenURL  = "open-url"
)

// DeliveryMethod reports how an activation reached the target profile
type DeliveryMethod string

const (
	// MethodSignal means the running target consumed the signal in time
	MethodSignal DeliveryMethod = "signal"
	// MethodLaunch means a fresh browser process was spawned for the target
	MethodLaunch DeliveryMethod = "launch"
)

// Request is a single message read from the extension over the framed
// transport. The id is kept raw so whatever JSON value the peer sent is
// echoed back byte for byte.
type Request struct {
	Action       string          `json:"action"`
	ID           json.RawMessage `json:"id,omitempty"`
	ProfileDir   string          `json:"profileDir,omitempty"`
	URL          string          `json:"url,omitempty"`
	CurrentEmail string          `json:"currentEmail,omitempty"`
}

var jsonNull = []byte("null")

// HasID reports whether the request carried a non-null correlation id.
// A response to such a request must echo the id; a null or absent id
// still gets a response, just an unaddressed one.
func (r *Request) HasID() bool {
	return len(r.ID) > 0 && !bytes.Equal(r.ID, jsonNull)
}

// Result is the body of a response to a single request. Shapes vary per
// action, so it stays a plain JSON object.
type Result map[string]any

// Success returns the minimal success result
func Success() Result {
	return Result{"success": true}
}

// SuccessVia returns a success result annotated with the delivery method
func SuccessVia(method DeliveryMethod) Result {
	return Result{"success": true, "method": string(method)}
}

// Errorf returns a result-level error; the process keeps serving
func Errorf(format string, args ...any) Result {
	return Result{"error": fmt.Sprintf(format, args...)}
}

// Event is an unsolicited message pushed by the signal watcher. It never
// carries a correlation id.
type Event struct {
	Action string `json:"action"`
	URL    string `json:"url,omitempty"`
}

// SignalPayload is the content of one mailbox slot. An empty payload is a
// plain activation; a payload with a URL asks the target to open it.
type SignalPayload struct {
	URL string `json:"url,omitempty"`
}
