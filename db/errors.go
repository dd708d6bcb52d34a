package db

// Every failure this package can produce is one of the typed errors
// below, carrying enough context (operation, table, query, cause) to log
// a useful message without re-deriving it from the driver error. Callers
// branch on the type, never on message text.

import (
	"errors"
	"fmt"
)

// ConnectionError means a new database connection could not be established.
// URI is stored in redacted form so it is safe to log.
type ConnectionError struct {
	URI string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.URI, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// MigrationError means applying schema migrations failed.
type MigrationError struct {
	Err error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("failed to run migrations: %v", e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// NoConnectionError means the pool could not hand out a connection before
// the lease timeout elapsed.
type NoConnectionError struct {
	Err error
}

func (e *NoConnectionError) Error() string {
	return fmt.Sprintf("no database connection available: %v", e.Err)
}

func (e *NoConnectionError) Unwrap() error { return e.Err }

// QueryError means a select statement failed to execute or scan.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("failed to execute query %q: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// InsertError means an insert into Table failed.
type InsertError struct {
	Table string
	Err   error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("failed to insert into %s: %v", e.Table, e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }

// UpdateError means an update or delete against Target failed.
type UpdateError struct {
	Target string
	Err    error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("failed to update %s: %v", e.Target, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }

// NotFoundError means the statement keyed by an identifier matched no rows.
// A zero-rows-affected update or delete is reported this way rather than as
// a silent success.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("requested data not found: %s", e.What)
}

// ErrInvalidResult means a query produced an outcome the schema invariants
// rule out, such as two rows matching a unique credential pair. It is a
// server-side defect, never a caller error.
var ErrInvalidResult = errors.New("query produced an ambiguous or contradictory result")

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsNoConnection reports whether err is a NoConnectionError.
func IsNoConnection(err error) bool {
	var nc *NoConnectionError
	return errors.As(err, &nc)
}
