package apperror

import (
	"errors"

	"github.com/user/ticx-go/db"
)

// FromDB maps a storage-layer error into the request taxonomy. Storage
// errors are never exposed verbatim: the client sees a short summary while
// the full cause stays wrapped for logging. Ambiguous results and
// connection-level failures map to UnknownError, since neither is
// something a caller can correct.
func FromDB(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := FromError(err); ok {
		return appErr
	}

	var notFound *db.NotFoundError
	if errors.As(err, &notFound) {
		return NewNotFound(notFound.What, err)
	}
	if errors.Is(err, db.ErrInvalidResult) {
		return NewUnknown(err)
	}

	var insert *db.InsertError
	if errors.As(err, &insert) {
		return NewDBFail("insert into "+insert.Table, err)
	}
	var update *db.UpdateError
	if errors.As(err, &update) {
		return NewDBFail("update of "+update.Target, err)
	}
	var query *db.QueryError
	if errors.As(err, &query) {
		return NewDBFail("select", err)
	}

	// NoConnectionError, ConnectionError, MigrationError and anything
	// unforeseen: a server-side condition the caller cannot act on.
	return NewUnknown(err)
}
