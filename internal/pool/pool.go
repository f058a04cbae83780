// Package pool implements the Connection Pool / Manager (C2): a
// keep-alive cache of idle connections keyed by (host, port, secure),
// with at most one idle connection retained per key. Rebuilt from the
// teacher's two ticket-channel pool generations
// (utils/netpool/{pool,group,connection}.go, netpool/pool.go), which
// bound concurrent connections per key with buffered channels; SPEC_FULL
// instead needs a plain map with newer-evicts-older semantics on
// release, so this package keeps the teacher's borrow/release vocabulary
// but swaps the ticket channels for a mutex-guarded map (the "equivalent lock held only for the rebalance"
// spec 4.2/9 explicitly allows in place of a literal whole-map CAS).
package pool

import (
	"context"
	"sync"

	"github.com/epogrebnyak/httpclient/internal/model"
	"github.com/epogrebnyak/httpclient/internal/transport"
)

// Manager owns a mapping of idle connections, one per ConnKey. It has no
// background eviction: an idle connection is only closed when displaced
// by a newer one for the same key, or when the Manager itself is closed.
type Manager struct {
	mu   sync.Mutex
	idle map[model.ConnKey]transport.Connection
}

// New returns a usable Manager with no idle connections.
func New() *Manager {
	return &Manager{idle: make(map[model.ConnKey]transport.Connection)}
}

// Dial opens a fresh connection for a cache miss. httpx supplies a
// closure calling httpx.Dial (transport.OpenWithOptions by default) with
// the request's (host, port, secure, checkCerts);
// tests supply a stub, grounded on the teacher's own
// PoolGroup.Connect(ctx, key, dial) shape in utils/netpool/group.go,
// which threads the dial function through per-call rather than baking it
// into the pool.
type Dial func(ctx context.Context) (transport.Connection, error)

// Borrow atomically removes any idle connection cached for key; if none
// is cached, it calls dial to open a fresh one. At most one borrower can
// hold the connection for key at a time, since a borrowed connection is
// no longer present in the idle map.
func (m *Manager) Borrow(ctx context.Context, key model.ConnKey, dial Dial) (transport.Connection, error) {
	m.mu.Lock()
	conn, ok := m.idle[key]
	if ok {
		delete(m.idle, key)
	}
	m.mu.Unlock()

	if ok {
		return conn, nil
	}
	return dial(ctx)
}

// Release atomically inserts conn as the idle connection for key. If
// another idle connection was already cached for key, the newer one
// (conn) is kept and the displaced one is closed — insertion of a second
// connection for a key evicts the prior one, per spec 3.
func (m *Manager) Release(key model.ConnKey, conn transport.Connection) {
	m.mu.Lock()
	prev, hadPrev := m.idle[key]
	m.idle[key] = conn
	m.mu.Unlock()

	if hadPrev {
		prev.Close()
	}
}

// CloseAll atomically swaps the idle map to empty and closes every
// connection that was in it. The Manager remains usable afterwards,
// equivalent to a freshly constructed one.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	idle := m.idle
	m.idle = make(map[model.ConnKey]transport.Connection)
	m.mu.Unlock()

	for _, conn := range idle {
		conn.Close()
	}
}

// Drop closes conn without returning it to the pool. Called by the
// request driver on any read/write/parser error, and whenever the body
// decoder did not reach a clean response boundary.
func Drop(conn transport.Connection) {
	conn.Close()
}

// WithManager performs scoped acquisition: it creates a Manager, runs f
// with it, and guarantees CloseAll on every exit path including a panic
// or an error returned from f.
func WithManager(f func(*Manager) error) error {
	m := New()
	defer m.CloseAll()
	return f(m)
}
