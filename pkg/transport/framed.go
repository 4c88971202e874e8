// Package transport implements the native messaging frame codec: each
// message is a 4-byte little-endian length followed by that many bytes of
// UTF-8 JSON. One Conn serves both the dispatch loop and the signal
// watcher, so the write side is mutex-guarded to keep each frame's bytes
// contiguous on the stream.
package transport

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/profswitch/host/pkg/types"
)

// ErrClosed is returned by ReadMessage when the peer has closed the stream
// (a short or empty read of the header or body). The host treats this as a
// clean shutdown request.
var ErrClosed = errors.New("transport: peer closed the stream")

// Conn is a framed message connection over a read stream and a write
// stream. Reads are single-threaded (the dispatch loop owns them); writes
// are safe for concurrent use.
type Conn struct {
	r io.Reader

	wmu sync.Mutex
	w   io.Writer
}

// New creates a framed connection over the given streams
func New(r io.Reader, w io.Writer) *Conn {
	return &Conn{r: r, w: w}
}

// ReadMessage reads one frame and unmarshals its body into v. A truncated
// header or body yields ErrClosed; a body that is not valid JSON yields
// the decode error (the peer is misbehaving, not gone).
func (c *Conn) ReadMessage(v any) error {
	var header [4]byte
	if _, err := io.ReadFull(c.r, header[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrClosed
		}
		return types.WrapError(types.ErrCodeUnavailable, "failed to read frame header", err)
	}

	length := binary.LittleEndian.Uint32(header[:])
	body := make([]byte, length)
	if _, err := io.ReadFull(c.r, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrClosed
		}
		return types.WrapError(types.ErrCodeUnavailable, "failed to read frame body", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return types.WrapError(types.ErrCodeInvalid, "failed to decode frame body", err)
	}
	return nil
}

// WriteMessage marshals v and writes it as a single frame. The header and
// body go out in one Write call under the lock, so frames from the
// dispatch loop and the watcher never interleave.
func (c *Conn) WriteMessage(v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return types.WrapError(types.ErrCodeInternal, "failed to encode frame body", err)
	}

	frame := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(frame[:4], uint32(len(body)))
	copy(frame[4:], body)

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if _, err := c.w.Write(frame); err != nil {
		return types.WrapError(types.ErrCodeUnavailable, "failed to write frame", err)
	}
	return nil
}
