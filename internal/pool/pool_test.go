package pool_test

import (
	"context"
	"errors"
	"testing"

	"github.com/epogrebnyak/httpclient/internal/model"
	"github.com/epogrebnyak/httpclient/internal/pool"
	"github.com/epogrebnyak/httpclient/internal/transport"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	closed bool
}

func (c *fakeConn) Read([]byte) (int, error)  { return 0, errors.New("not implemented") }
func (c *fakeConn) Write([]byte) (int, error) { return 0, errors.New("not implemented") }
func (c *fakeConn) Close() error              { c.closed = true; return nil }

func TestReleaseThenBorrowReusesConnection(t *testing.T) {
	// P1 + scenario 6: a released connection is handed back out on the
	// next Borrow for the same key, without a fresh dial.
	m := pool.New()
	key := model.ConnKey{Host: "h", Port: 80, Secure: false}
	c1 := &fakeConn{}

	m.Release(key, c1)

	got, err := m.Borrow(context.Background(), key, nil)
	require.NoError(t, err)
	require.Same(t, c1, got)
}

func TestReleaseEvictsPriorIdleConnection(t *testing.T) {
	// spec 3: insertion of a second connection for a key evicts the prior one
	m := pool.New()
	key := model.ConnKey{Host: "h", Port: 80, Secure: false}
	c1 := &fakeConn{}
	c2 := &fakeConn{}

	m.Release(key, c1)
	m.Release(key, c2)

	require.True(t, c1.closed, "prior idle connection must be closed on eviction")
	require.False(t, c2.closed)
}

func TestCloseAllClosesEveryIdleConnection(t *testing.T) {
	m := pool.New()
	c1 := &fakeConn{}
	c2 := &fakeConn{}
	m.Release(model.ConnKey{Host: "a", Port: 80}, c1)
	m.Release(model.ConnKey{Host: "b", Port: 80}, c2)

	m.CloseAll()

	require.True(t, c1.closed)
	require.True(t, c2.closed)
}

func TestWithManagerClosesOnError(t *testing.T) {
	c1 := &fakeConn{}
	key := model.ConnKey{Host: "h", Port: 80}
	sentinel := errors.New("boom")

	err := pool.WithManager(func(m *pool.Manager) error {
		m.Release(key, c1)
		return sentinel
	})

	require.ErrorIs(t, err, sentinel)
	require.True(t, c1.closed)
}

func TestDropClosesConnection(t *testing.T) {
	c := &fakeConn{}
	pool.Drop(c)
	require.True(t, c.closed)
}

func TestBorrowDialsOnCacheMiss(t *testing.T) {
	m := pool.New()
	key := model.ConnKey{Host: "h", Port: 80}
	dialed := &fakeConn{}

	got, err := m.Borrow(context.Background(), key, func(context.Context) (transport.Connection, error) {
		return dialed, nil
	})
	require.NoError(t, err)
	require.Same(t, dialed, got)
}
