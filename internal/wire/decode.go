package wire

import (
	"bufio"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/epogrebnyak/httpclient/internal/httperr"
)

// StatusLine is the external Header Parser's output for the response's
// first line: status code, reason phrase, and the raw HTTP version token
// (unused by the driver but kept for fidelity with the collaborator's
// documented contract in spec 6).
type StatusLine struct {
	Proto      string
	StatusCode int
	Reason     string
}

// ReadHeaders consumes bytes up to and including the CRLFCRLF after
// headers from br, emitting the status line and the headers as an
// http.Header keyed by canonical name, and leaves br positioned at the
// first body byte. Values of a repeated header keep their order; the
// order of fields across different names is not kept. This realizes the external
// Header Parser collaborator (C3) with net/textproto, matching the
// teacher's own choice in internal/transport/http1.go.
func ReadHeaders(br *bufio.Reader) (StatusLine, http.Header, error) {
	tp := textproto.NewReader(br)

	line, err := tp.ReadLine()
	if err != nil {
		return StatusLine{}, nil, &httperr.ParserError{Where: "status line"}
	}
	proto, rest, ok := strings.Cut(line, " ")
	if !ok {
		return StatusLine{}, nil, &httperr.ParserError{Where: "status line"}
	}
	rest = strings.TrimLeft(rest, " ")
	codeStr, reason, _ := strings.Cut(rest, " ")
	if len(codeStr) != 3 {
		return StatusLine{}, nil, &httperr.ParserError{Where: "status line"}
	}
	code, err := strconv.Atoi(codeStr)
	if err != nil || code < 0 {
		return StatusLine{}, nil, &httperr.ParserError{Where: "status line"}
	}

	mimeHeader, err := tp.ReadMIMEHeader()
	if err != nil && len(mimeHeader) == 0 {
		return StatusLine{}, nil, &httperr.ParserError{Where: "headers"}
	}

	return StatusLine{Proto: proto, StatusCode: code, Reason: reason}, http.Header(mimeHeader), nil
}

// IsChunked reports whether headers declare chunked transfer-encoding,
// per spec 4.5: case-insensitive name match ("Transfer-Encoding"),
// exact-bytes value match ("chunked").
func IsChunked(h http.Header) bool {
	return h.Get("Transfer-Encoding") == "chunked"
}

// ContentLength reports the response's declared Content-Length, if any
// header is present and parses as a non-negative integer.
func ContentLength(h http.Header) (n int64, ok bool) {
	v := h.Get("Content-Length")
	if v == "" {
		return 0, false
	}
	parsed, err := strconv.ParseUint(v, 10, 63)
	if err != nil {
		return 0, false
	}
	return int64(parsed), true
}

// IsGzip reports whether headers declare gzip content-encoding, per spec
// 4.5: exact-bytes value match ("gzip").
func IsGzip(h http.Header) bool {
	return h.Get("Content-Encoding") == "gzip"
}
