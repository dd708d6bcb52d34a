// Package db owns database access for the application: a bounded
// connection pool, the storage-error taxonomy, schema migrations, and the
// parameterized queries for users and tickets. Every statement runs as
// acquire -> execute -> map failure -> release, so no caller ever touches
// a raw connection outside a lease.
package db

import (
	"context"
	"log/slog"
	"time"
)

const (
	// TableUsers and TableTickets are the table labels used in errors and
	// query metrics.
	TableUsers   = "users"
	TableTickets = "tickets"
)

// User is a stored user row. The password hash never leaves the database:
// no query in this package selects it.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Firstname string    `json:"firstname"`
	Lastname  string    `json:"lastname"`
	Created   time.Time `json:"created"`
}

// Ticket is a stored ticket row.
type Ticket struct {
	ID          int       `json:"id"`
	AuthorID    int       `json:"author_id"`
	Description string    `json:"description"`
	Severity    int16     `json:"severity"`
	Status      int16     `json:"status"`
	Created     time.Time `json:"created"`
}

// Store executes queries through the pool.
type Store struct {
	pool *Pool
	log  *slog.Logger

	// OnQuery, when set, observes the duration of each executed statement,
	// labeled by table and operation. Wired to the metrics registry at
	// startup.
	OnQuery func(table, operation string, elapsed time.Duration)
}

// NewStore creates a Store over pool.
func NewStore(pool *Pool, log *slog.Logger) *Store {
	return &Store{pool: pool, log: log}
}

// Pool exposes the underlying pool for lifecycle management and stats.
func (s *Store) Pool() *Pool { return s.pool }

// observe returns a func to defer around one statement.
func (s *Store) observe(table, operation string) func() {
	if s.OnQuery == nil {
		return func() {}
	}
	start := time.Now()
	return func() { s.OnQuery(table, operation, time.Since(start)) }
}

// discardOnCancel marks the lease broken when the request was cancelled
// mid-statement, since the connection may still be streaming a result.
// The lease is released either way.
func discardOnCancel(ctx context.Context, lease *Lease) {
	if ctx.Err() != nil {
		lease.MarkBroken()
	}
}
