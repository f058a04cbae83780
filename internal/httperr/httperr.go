// Package httperr defines the HttpException taxonomy: the handful of
// errors this engine raises itself, as opposed to transport errors
// which propagate from the underlying socket/TLS layer unwrapped.
package httperr

import "fmt"

// InvalidURLError is raised by urlutil.ParseURL when a string isn't a
// well-formed http(s) URL: an unrecognized scheme, or a port that doesn't
// parse as a decimal integer.
type InvalidURLError struct {
	URL    string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid url %q: %s", e.URL, e.Reason)
}

// ParserError wraps a malformed status line, header, chunk header or
// chunk trailer. Where names the stage that failed, matching the source's
// HttpParserException(where) tag.
type ParserError struct {
	Where string
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("http parse error: %s", e.Where)
}

// ErrTooManyRedirects is returned when the redirect driver's budget is
// exhausted: 10 redirects followed the original request and a further
// 3xx/Location response was received.
var ErrTooManyRedirects = fmt.Errorf("too many redirects")

// StatusCodeError is only ever surfaced by the simpleHttp-style facade
// (httpclient.Get) when the final response status falls outside [200,300).
type StatusCodeError struct {
	Code int
	Body []byte
}

func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.Code)
}
