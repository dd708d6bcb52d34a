package db

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Conn is the subset of *pgx.Conn the query layer depends on. Tests
// substitute fakes; production code always holds a real pgx connection.
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Dialer opens one new database connection.
type Dialer func(ctx context.Context) (Conn, error)

// PoolConfig configures a connection pool.
type PoolConfig struct {
	// URI is the PostgreSQL connection string.
	URI string
	// Size is the maximum number of concurrently leased connections.
	Size int
	// AcquireTimeout bounds how long Acquire blocks waiting for a free
	// slot before failing with NoConnectionError.
	AcquireTimeout time.Duration
	// Dial overrides the connection factory; nil means dial with pgx.
	Dial Dialer
}

// ErrPoolClosed is the cause carried by leases requested after Close.
var ErrPoolClosed = errors.New("pool is closed")

const defaultAcquireTimeout = 5 * time.Second

// Pool is a fixed-capacity set of database connections handed out as
// scoped leases. The number of live leases never exceeds Size; an Acquire
// beyond capacity blocks until a lease is released or the timeout fires.
// Connections are opened lazily and reused across leases.
type Pool struct {
	dial    Dialer
	uri     string // redacted, safe for error messages and logs
	timeout time.Duration

	slots chan struct{} // capacity tokens, one per allowed lease
	idle  chan Conn     // connections parked between leases
	done  chan struct{}

	closeOnce sync.Once

	acquires atomic.Uint64
	timeouts atomic.Uint64
	inUse    atomic.Int64
}

// NewPool creates a pool. No connection is opened until the first Acquire.
func NewPool(cfg PoolConfig) (*Pool, error) {
	if cfg.Size <= 0 {
		return nil, errors.New("pool size must be positive")
	}
	timeout := cfg.AcquireTimeout
	if timeout <= 0 {
		timeout = defaultAcquireTimeout
	}
	dial := cfg.Dial
	if dial == nil {
		uri := cfg.URI
		dial = func(ctx context.Context) (Conn, error) {
			return pgx.Connect(ctx, uri)
		}
	}

	p := &Pool{
		dial:    dial,
		uri:     redactURI(cfg.URI),
		timeout: timeout,
		slots:   make(chan struct{}, cfg.Size),
		idle:    make(chan Conn, cfg.Size),
		done:    make(chan struct{}),
	}
	for i := 0; i < cfg.Size; i++ {
		p.slots <- struct{}{}
	}
	return p, nil
}

// Acquire leases a connection, blocking up to the configured timeout when
// the pool is at capacity. Cancelling ctx aborts the wait early. The caller
// must Release the lease on every exit path.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	if p.closed() {
		return nil, &NoConnectionError{Err: ErrPoolClosed}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	select {
	case <-p.slots:
	case <-p.done:
		return nil, &NoConnectionError{Err: ErrPoolClosed}
	case <-ctx.Done():
		p.timeouts.Add(1)
		return nil, &NoConnectionError{Err: ctx.Err()}
	}

	var conn Conn
	select {
	case conn = <-p.idle:
	default:
	}
	if conn == nil {
		c, err := p.dial(ctx)
		if err != nil {
			p.slots <- struct{}{}
			return nil, &ConnectionError{URI: p.uri, Err: err}
		}
		conn = c
	}

	p.acquires.Add(1)
	p.inUse.Add(1)
	return &Lease{pool: p, conn: conn}, nil
}

// Close shuts the pool down. Blocked acquirers fail immediately; idle
// connections are closed. Leased connections are closed as their leases
// are released.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		for {
			select {
			case conn := <-p.idle:
				closeConn(conn)
			default:
				return
			}
		}
	})
}

func (p *Pool) closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Stats is a snapshot of pool accounting.
type Stats struct {
	// Acquires counts successful leases over the pool's lifetime.
	Acquires uint64
	// Timeouts counts acquisitions that failed waiting for a slot.
	Timeouts uint64
	// InUse is the number of currently leased connections.
	InUse int64
	// Capacity is the configured maximum.
	Capacity int
}

// Stats returns current pool accounting.
func (p *Pool) Stats() Stats {
	return Stats{
		Acquires: p.acquires.Load(),
		Timeouts: p.timeouts.Load(),
		InUse:    p.inUse.Load(),
		Capacity: cap(p.slots),
	}
}

// Lease is the exclusive right to use one pooled connection. It is owned
// by a single request and must never be retained across requests.
type Lease struct {
	pool   *Pool
	conn   Conn
	broken bool
	once   sync.Once
}

// Conn returns the leased connection.
func (l *Lease) Conn() Conn { return l.conn }

// MarkBroken flags the connection so Release discards it instead of
// returning it to the pool. Call after driver-level failures that leave
// the connection state uncertain.
func (l *Lease) MarkBroken() { l.broken = true }

// Release returns the connection to the pool and frees its capacity slot.
// Safe to call more than once; only the first call has effect, which makes
// it suitable for defer alongside explicit release on error paths.
func (l *Lease) Release() {
	l.once.Do(func() {
		p := l.pool
		p.inUse.Add(-1)
		if l.broken || p.closed() {
			closeConn(l.conn)
		} else {
			select {
			case p.idle <- l.conn:
			default:
				closeConn(l.conn)
			}
		}
		p.slots <- struct{}{}
	})
}

func closeConn(conn Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = conn.Close(ctx)
}

// redactURI strips the password from a connection URI so the value can be
// embedded in errors and logs.
func redactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "(unparseable database uri)"
	}
	return u.Redacted()
}
