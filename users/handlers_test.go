package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/ticx-go/db"
)

type fakeStore struct {
	user      *db.User
	getErr    error
	insertErr error
	updateErr error
	deleteErr error

	gotInsert db.NewUser
	gotUpdate db.UserUpdate
	gotID     int
}

func (f *fakeStore) InsertUser(ctx context.Context, nu db.NewUser) (*db.User, error) {
	f.gotInsert = nu
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return &db.User{
		ID:        3,
		Username:  nu.Username,
		Firstname: nu.Firstname,
		Lastname:  nu.Lastname,
		Created:   time.Now(),
	}, nil
}

func (f *fakeStore) GetUser(ctx context.Context, id int) (*db.User, error) {
	f.gotID = id
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.user, nil
}

func (f *fakeStore) UpdateUser(ctx context.Context, id int, up db.UserUpdate) error {
	f.gotID, f.gotUpdate = id, up
	return f.updateErr
}

func (f *fakeStore) DeleteUser(ctx context.Context, id int) error {
	f.gotID = id
	return f.deleteErr
}

func newRouter(store *fakeStore) chi.Router {
	r := chi.NewRouter()
	NewHandlers(NewService(store)).RegisterRoutes(r)
	return r
}

func doJSON(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestGetUser(t *testing.T) {
	store := &fakeStore{user: &db.User{ID: 7, Username: "alice", Firstname: "Alice"}}
	rec := doJSON(newRouter(store), http.MethodGet, "/7", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, store.gotID)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestGetUserNotFound(t *testing.T) {
	store := &fakeStore{getErr: &db.NotFoundError{What: "user 99"}}
	rec := doJSON(newRouter(store), http.MethodGet, "/99", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetUserRejectsNonNumericID(t *testing.T) {
	store := &fakeStore{}
	rec := doJSON(newRouter(store), http.MethodGet, "/abc", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, store.gotID)
}

func TestCreateUser(t *testing.T) {
	store := &fakeStore{}
	rec := doJSON(newRouter(store), http.MethodPost, "/",
		`{"username":"bob","password":"hunter2","firstname":"Bob"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "bob", store.gotInsert.Username)
	assert.Equal(t, "hunter2", store.gotInsert.Password)
	// The stored password never round-trips into a response.
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestCreateUserRequiresUsernameAndPassword(t *testing.T) {
	store := &fakeStore{}
	rec := doJSON(newRouter(store), http.MethodPost, "/", `{"firstname":"Bob"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateUser(t *testing.T) {
	store := &fakeStore{}
	rec := doJSON(newRouter(store), http.MethodPut, "/7",
		`{"firstname":"Alicia","lastname":"K"}`)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 7, store.gotID)
	require.Equal(t, "Alicia", store.gotUpdate.Firstname)
}

func TestUpdateMissingUser(t *testing.T) {
	store := &fakeStore{updateErr: &db.NotFoundError{What: "user 7"}}
	rec := doJSON(newRouter(store), http.MethodPut, "/7", `{"firstname":"Alicia"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	store := &fakeStore{}
	rec := doJSON(newRouter(store), http.MethodDelete, "/7", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 7, store.gotID)
}

func TestDeleteMissingUser(t *testing.T) {
	store := &fakeStore{deleteErr: &db.NotFoundError{What: "user 7"}}
	rec := doJSON(newRouter(store), http.MethodDelete, "/7", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
