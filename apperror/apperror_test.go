package apperror

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/ticx-go/db"
)

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"missing auth header", NewMissingAuthHeader(), http.StatusBadRequest},
		{"invalid header", NewInvalidHeader("Authorization", "bad scheme", nil), http.StatusBadRequest},
		{"bad request", NewBadRequest("no body", nil), http.StatusBadRequest},
		{"invalid token", NewInvalidToken(nil), http.StatusUnauthorized},
		{"invalid credentials", NewInvalidCredentials(), http.StatusUnauthorized},
		{"not found", NewNotFound("user 9", nil), http.StatusNotFound},
		{"conflict", NewConflict("username already exists", nil), http.StatusConflict},
		{"db fail", NewDBFail("select", nil), http.StatusInternalServerError},
		{"generic", NewGeneric("encode token", nil), http.StatusInternalServerError},
		{"unknown", NewUnknown(nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestResponseNeverCarriesTheCause(t *testing.T) {
	cause := errors.New("pq: connection refused on 10.0.0.5:5432")
	appErr := NewDBFail("select", cause)

	// The cause is visible to logging through Error and Unwrap...
	assert.Contains(t, appErr.Error(), "connection refused")
	assert.ErrorIs(t, appErr, cause)

	// ...but absent from the serialized client response.
	body, err := json.Marshal(appErr.ToResponse())
	require.NoError(t, err)
	assert.NotContains(t, string(body), "connection refused")
	assert.NotContains(t, string(body), "10.0.0.5")
	assert.Contains(t, string(body), "failed to execute query")
}

func TestFromError(t *testing.T) {
	appErr, ok := FromError(NewConflict("dup", nil))
	require.True(t, ok)
	assert.Equal(t, ConflictError, appErr.Type)

	// Wrapped AppErrors are still recognized.
	wrapped := errors.Join(errors.New("outer"), NewNotFound("ticket 3", nil))
	appErr, ok = FromError(wrapped)
	require.True(t, ok)
	assert.Equal(t, NotFoundError, appErr.Type)

	_, ok = FromError(errors.New("plain"))
	assert.False(t, ok)
	_, ok = FromError(nil)
	assert.False(t, ok)
}

func TestFromDBMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
	}{
		{"not found", &db.NotFoundError{What: "user 9"}, NotFoundError},
		{"ambiguous result", db.ErrInvalidResult, UnknownError},
		{"insert failure", &db.InsertError{Table: db.TableUsers, Err: errors.New("boom")}, DBFailError},
		{"update failure", &db.UpdateError{Target: "ticket 4", Err: errors.New("boom")}, DBFailError},
		{"query failure", &db.QueryError{Query: "SELECT 1", Err: errors.New("boom")}, DBFailError},
		{"no connection", &db.NoConnectionError{Err: errors.New("timed out")}, UnknownError},
		{"connection failure", &db.ConnectionError{URI: "postgres://host/db", Err: errors.New("refused")}, UnknownError},
		{"unclassified", errors.New("surprise"), UnknownError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDB(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.ErrorIs(t, appErr, tt.err, "the storage cause must stay in the chain")
		})
	}
}

func TestFromDBPassesThroughExistingAppError(t *testing.T) {
	orig := NewInvalidCredentials()
	assert.Same(t, orig, FromDB(orig))
	assert.Nil(t, FromDB(nil))
}

func TestNotFoundMessageNamesTheEntity(t *testing.T) {
	appErr := FromDB(&db.NotFoundError{What: "ticket 12"})
	assert.Contains(t, appErr.ToResponse().Error, "ticket 12")
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("x", nil)))
	assert.False(t, IsNotFound(NewConflict("x", nil)))
	assert.True(t, IsInvalidCredentials(NewInvalidCredentials()))
	assert.True(t, IsConflict(NewConflict("x", nil)))
	assert.False(t, IsConflict(errors.New("plain")))
}
