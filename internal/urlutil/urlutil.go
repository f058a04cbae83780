// Package urlutil implements the URL parser (C9) and the RFC 3986
// percent-encoding table used for paths, query strings and
// x-www-form-urlencoded bodies, preserving the source's legacy
// space-as-"+" behavior everywhere it is used.
package urlutil

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/epogrebnyak/httpclient/internal/httperr"
	"github.com/epogrebnyak/httpclient/internal/model"
)

const (
	schemeHTTP  = "http://"
	schemeHTTPS = "https://"
)

// ParseURL turns an ASCII URL string into a Request with defaults applied:
// method GET, empty headers, empty body, a CheckCerts that accepts any
// chain. It fails with *httperr.InvalidURLError on an unrecognized scheme
// or an unparseable port, matching spec 4.7 exactly (including the
// promotion of the source's non-total port-parse branch to a proper
// error, per DESIGN NOTES bullet 4).
func ParseURL(raw string) (*model.Request, error) {
	secure, rest, ok := splitScheme(raw)
	if !ok {
		return nil, &httperr.InvalidURLError{URL: raw, Reason: "Invalid scheme"}
	}

	// UTF-8-encode the rest before structural split, so IRIs survive as
	// raw bytes reinterpreted as their UTF-8 encoding.
	rest = reencodeUTF8(rest)

	authority, pathAndQuery, _ := cut(rest, "/")
	pathAndQuery = "/" + pathAndQuery

	host, portStr, hasPort := strings.Cut(authority, ":")
	if host == "" {
		return nil, &httperr.InvalidURLError{URL: raw, Reason: "Invalid scheme"}
	}

	port := 80
	if secure {
		port = 443
	}
	if hasPort {
		p, err := strconv.Atoi(portStr)
		if err != nil || p < 1 || p > 65535 {
			return nil, &httperr.InvalidURLError{URL: raw, Reason: "Invalid port"}
		}
		port = p
	}

	rawPath, rawQuery := splitFragmentAndQuery(pathAndQuery)

	path := "/"
	if rawPath != "" && rawPath != "/" {
		path = EncodePath(rawPath)
	}

	return &model.Request{
		Method:         http.MethodGet,
		Secure:         secure,
		Host:           host,
		Port:           port,
		Path:           path,
		QueryString:    parseQuery(rawQuery),
		RequestHeaders: nil,
		CheckCerts:     model.AcceptAllCerts,
		Body:           model.EmptyBody,
	}, nil
}

func splitScheme(raw string) (secure bool, rest string, ok bool) {
	switch {
	case strings.HasPrefix(raw, schemeHTTPS):
		return true, raw[len(schemeHTTPS):], true
	case strings.HasPrefix(raw, schemeHTTP):
		return false, raw[len(schemeHTTP):], true
	default:
		return false, "", false
	}
}

// reencodeUTF8 is a no-op for already-valid UTF-8 input; for input that
// isn't valid UTF-8 (an IRI given as raw bytes), it reinterprets each byte
// as its own Latin-1 code point re-encoded as UTF-8, the byte-reinterpret
// step spec 4.7 calls for.
func reencodeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) * 2)
	for i := 0; i < len(s); i++ {
		b.WriteRune(rune(s[i]))
	}
	return b.String()
}

func cut(s, sep string) (before, after string, found bool) {
	if i := strings.Index(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}

func splitFragmentAndQuery(pathAndQuery string) (path, query string) {
	if i := strings.IndexByte(pathAndQuery, '#'); i >= 0 {
		pathAndQuery = pathAndQuery[:i]
	}
	path, query, _ = strings.Cut(pathAndQuery, "?")
	return path, query
}

func parseQuery(raw string) []model.KV {
	if raw == "" {
		return nil
	}
	var kvs []model.KV
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		name, value, hasValue := strings.Cut(part, "=")
		kvs = append(kvs, model.KV{Name: name, Value: value, HasValue: hasValue})
	}
	return kvs
}

// isUnreserved reports whether b is in the RFC 3986 unreserved set:
// A-Z a-z 0-9 - _ . ~
func isUnreserved(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '-' || b == '_' || b == '.' || b == '~':
		return true
	}
	return false
}

const hexDigits = "0123456789ABCDEF"

// encode percent-encodes s per the source's legacy table: unreserved
// characters pass through untouched, space becomes "+", everything else
// becomes %HH with uppercase hex. keep, when non-nil, additionally passes
// through any byte for which it returns true (used to leave "/" untouched
// in paths).
func encode(s string, keep func(byte) bool) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isUnreserved(c) || (keep != nil && keep(c)):
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0xf])
		}
	}
	return b.String()
}

// EncodePath percent-encodes a path, leaving "/" unescaped.
func EncodePath(path string) string {
	return encode(path, func(b byte) bool { return b == '/' })
}

// EncodeComponent percent-encodes a single query or form component,
// escaping every non-unreserved byte including "/".
func EncodeComponent(s string) string {
	return encode(s, nil)
}

// EncodeQuery renders an ordered KV sequence as a query string in
// insertion order: "name=value" pairs joined by "&", bare "name" for
// entries with no value.
func EncodeQuery(kvs []model.KV) string {
	if len(kvs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(kvs))
	for _, kv := range kvs {
		name := EncodeComponent(kv.Name)
		if !kv.HasValue {
			parts = append(parts, name)
			continue
		}
		parts = append(parts, name+"="+EncodeComponent(kv.Value))
	}
	return strings.Join(parts, "&")
}

// EncodeForm renders an ordered KV sequence as an
// application/x-www-form-urlencoded body: "k1=v1&k2=v2...", with a key
// whose value is empty emitted as "k" alone (mirrors spec 4.9).
func EncodeForm(kvs []model.KV) []byte {
	parts := make([]string, 0, len(kvs))
	for _, kv := range kvs {
		name := EncodeComponent(kv.Name)
		if kv.Value == "" {
			parts = append(parts, name)
			continue
		}
		parts = append(parts, name+"="+EncodeComponent(kv.Value))
	}
	return []byte(strings.Join(parts, "&"))
}
