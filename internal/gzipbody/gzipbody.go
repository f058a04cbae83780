// Package gzipbody wraps a streaming gzip inflater around an already
// framing-decoded response body, realizing the external Gzip Decoder
// collaborator (C5). It uses klauspost/compress/gzip rather than the
// standard library's compress/gzip: the pack's zulfikawr-warp repo already
// depends on klauspost/compress, and its gzip.Reader is API-compatible
// with the stdlib one while being the faster inflate path the ecosystem
// reaches for — see DESIGN.md.
package gzipbody

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// NewReader wraps r (which must already have chunked/length framing
// peeled off — gzip is inner to framing per spec 4.5/P10) in a streaming
// gzip inflater. Only the gzip format (RFC 1952) is decoded: zlib-wrapped
// or raw deflate input is not detected and NewReader returns an error for
// it.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return gz, nil
}

// NewWriter returns a gzip deflater over w. The engine itself never
// gzip-encodes outgoing request bodies (spec 4.9 sends bodies verbatim),
// but exercising our own Writer against our own Reader is how the decoder
// gets tested without depending on a pre-canned gzip fixture.
func NewWriter(w io.Writer) *gzip.Writer {
	return gzip.NewWriter(w)
}
