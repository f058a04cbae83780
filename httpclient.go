// Package httpclient is the public façade of the engine: "download URL →
// bytes", plus the lower-level Do/DoRedirect entry points for streaming
// consumers. It wires together urlutil (C9), pool (C2/Manager), httpx
// (C7/C8) and the model types into the small surface described in spec 6.
package httpclient

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/epogrebnyak/httpclient/internal/httperr"
	"github.com/epogrebnyak/httpclient/internal/httpx"
	"github.com/epogrebnyak/httpclient/internal/model"
	"github.com/epogrebnyak/httpclient/internal/pool"
	"github.com/epogrebnyak/httpclient/internal/transport"
	"github.com/epogrebnyak/httpclient/internal/urlutil"
	"go.uber.org/zap"
)

// Re-exported types so callers never need to import the internal
// packages directly.
type (
	Request   = model.Request
	Response  = model.Response
	KV        = model.KV
	CertCheck = model.CertCheck
	Consumer  = httpx.Consumer
	Manager   = pool.Manager
)

// Re-exported error types (HttpException taxonomy, spec 3/7).
type (
	InvalidURLError = httperr.InvalidURLError
	ParserError     = httperr.ParserError
	StatusCodeError = httperr.StatusCodeError
)

// ErrTooManyRedirects is returned once the redirect budget (10 by default,
// or Config.RedirectBudget when positive) is exhausted by a chain of
// 3xx-with-Location responses.
var ErrTooManyRedirects = httperr.ErrTooManyRedirects

// Config carries the ambient knobs a caller may want to override:
// logging, the redirect budget, and the connect-time dial behavior. The
// zero Config is a legal default (silent logging, 10 redirects, no
// connect timeout, default TLS config).
type Config struct {
	// Logger receives structured diagnostics from the request driver
	// (connections dropped after a write error or an unclean response
	// boundary). Defaults to a no-op logger.
	Logger *zap.Logger
	// RedirectBudget overrides httpx.DefaultRedirectBudget (10) when
	// positive.
	RedirectBudget int
	// DialTimeout bounds the TCP connect on a pool cache miss. Zero
	// means no explicit timeout, deferring entirely to ctx.
	DialTimeout time.Duration
	// TLSConfig is the base TLS config cloned and overlaid with the
	// per-connection ServerName and VerifyPeerCertificate callback for
	// secure requests. Nil means transport builds a default config.
	TLSConfig *tls.Config
}

func (c Config) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func (c Config) dialOptions() transport.DialOptions {
	return transport.DialOptions{Timeout: c.DialTimeout, TLSConfig: c.TLSConfig}
}

// NewManager returns a Manager with no idle connections. Callers that
// issue many requests to the same hosts should share one Manager to get
// keep-alive reuse (spec 3, P1/scenario 6).
func NewManager() *Manager { return pool.New() }

// WithManager performs scoped acquisition of a Manager: it is guaranteed
// to be closed (all idle connections closed) on every exit path from f,
// including a panic or an error return.
func WithManager(f func(*Manager) error) error { return pool.WithManager(f) }

// ParseURL turns an ASCII URL string into a Request with defaults
// applied (method GET, empty headers, empty body). It fails with
// *InvalidURLError on an unrecognized scheme or an unparseable port.
func ParseURL(s string) (*Request, error) { return urlutil.ParseURL(s) }

// WithForm returns a clone of req configured to POST an
// application/x-www-form-urlencoded body built from pairs, in insertion
// order, per spec 4.9. Content-Type is placed first in the header sequence
// so the wire encoding is deterministic (spec P2).
func WithForm(req *Request, pairs []KV) *Request {
	clone := req.Clone()
	clone.Method = http.MethodPost
	clone.Body = model.BytesBody(urlutil.EncodeForm(pairs))
	clone.RequestHeaders.Del("Content-Type")
	newHeaders := model.Header{{Name: "Content-Type", Value: "application/x-www-form-urlencoded"}}
	newHeaders = append(newHeaders, clone.RequestHeaders...)
	clone.RequestHeaders = newHeaders
	return clone
}

// Do implements the http() entry point: drive consumer over req's
// response, without following redirects.
func Do(ctx context.Context, req *Request, consumer Consumer, mgr *Manager, cfg Config) (any, error) {
	return httpx.Do(ctx, req, httpx.Consumer(consumer), mgr, cfg.logger(), cfg.dialOptions())
}

// DoRedirect implements the httpRedirect() entry point: like Do, but
// follows 3xx-with-Location responses up to cfg.RedirectBudget (default
// 10), coercing method to GET on 303 (spec 4.6/P7).
func DoRedirect(ctx context.Context, req *Request, consumer Consumer, mgr *Manager, cfg Config) (any, error) {
	return httpx.DoRedirectBudget(ctx, req, httpx.Consumer(consumer), mgr, cfg.logger(), cfg.RedirectBudget, cfg.dialOptions())
}

// DoCollect implements httpLbs(): perform req and materialize the full
// response body into a *Response. Does not follow redirects.
func DoCollect(ctx context.Context, req *Request, mgr *Manager, cfg Config) (*Response, error) {
	v, err := Do(ctx, req, httpx.CollectResponse, mgr, cfg)
	if err != nil {
		return nil, err
	}
	return v.(*Response), nil
}

// DoCollectRedirect implements httpLbsRedirect(): like DoCollect, but
// follows redirects.
func DoCollectRedirect(ctx context.Context, req *Request, mgr *Manager, cfg Config) (*Response, error) {
	v, err := DoRedirect(ctx, req, httpx.CollectResponse, mgr, cfg)
	if err != nil {
		return nil, err
	}
	return v.(*Response), nil
}

// Get implements simpleHttp(): parse url, follow redirects, and return
// the body bytes of the final response. It fails with *StatusCodeError
// if the final status falls outside [200, 300).
func Get(ctx context.Context, url string) ([]byte, error) {
	req, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	return get(ctx, req)
}

func get(ctx context.Context, req *Request) ([]byte, error) {
	var result []byte
	err := WithManager(func(mgr *Manager) error {
		resp, err := DoCollectRedirect(ctx, req, mgr, Config{})
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &StatusCodeError{Code: resp.StatusCode, Body: resp.ResponseBody}
		}
		result = resp.ResponseBody
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
