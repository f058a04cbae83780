package model

import (
	"bytes"
	"io"
)

// RequestBody is the tagged Bytes/Stream variant from the data model: a
// fully-known byte sequence, or a declared length plus a restartable
// producer. Restartability is a contract the caller promises; the redirect
// driver may Open() a Stream body more than once across a 3xx chain.
type RequestBody interface {
	// Len reports the body's length and whether it is known up front.
	// A Stream body always reports ok=true with its declared length.
	Len() (n int64, ok bool)
	// Open returns a fresh reader over the body. For a Bytes body this
	// may be called any number of times and always starts at byte 0.
	// For a Stream body it invokes the underlying factory, which the
	// caller promises is safe to call repeatedly.
	Open() (io.Reader, error)
}

// EmptyBody is the zero-length body used by requests with no payload.
var EmptyBody RequestBody = BytesBody(nil)

// BytesBody is the Bytes variant of RequestBody: a finite, already
// materialized byte sequence.
type BytesBody []byte

func (b BytesBody) Len() (int64, bool) { return int64(len(b)), true }

func (b BytesBody) Open() (io.Reader, error) {
	return bytes.NewReader(b), nil
}

// StreamBody is the Stream variant of RequestBody: a declared content
// length plus a restartable byte producer. Open must be safe to call more
// than once; it is invoked again whenever the redirect driver replays the
// request.
type StreamBody struct {
	ContentLength int64
	Producer      func() (io.Reader, error)
}

func (s StreamBody) Len() (int64, bool) { return s.ContentLength, true }

func (s StreamBody) Open() (io.Reader, error) { return s.Producer() }
