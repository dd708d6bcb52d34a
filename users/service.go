// Package users provides the thin CRUD surface over stored users. All
// request mediation (token validation, counting, logging) happens in the
// pipeline before these handlers run; this package only shapes requests
// and responses around the storage calls.
package users

import (
	"context"

	"github.com/user/ticx-go/apperror"
	"github.com/user/ticx-go/db"
)

// Store is the subset of the storage layer the user service needs.
type Store interface {
	InsertUser(ctx context.Context, nu db.NewUser) (*db.User, error)
	GetUser(ctx context.Context, id int) (*db.User, error)
	UpdateUser(ctx context.Context, id int, up db.UserUpdate) error
	DeleteUser(ctx context.Context, id int) error
}

// Service passes user CRUD through to the store, mapping storage errors
// into the request taxonomy.
type Service struct {
	store Store
}

// NewService creates a user service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id int) (*db.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	return user, nil
}

// Create inserts a new user.
func (s *Service) Create(ctx context.Context, nu db.NewUser) (*db.User, error) {
	if nu.Username == "" || nu.Password == "" {
		return nil, apperror.NewBadRequest("username and password are required", nil)
	}
	user, err := s.store.InsertUser(ctx, nu)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	return user, nil
}

// Update changes a user's mutable fields. A missing id maps to 404.
func (s *Service) Update(ctx context.Context, id int, up db.UserUpdate) error {
	if err := s.store.UpdateUser(ctx, id, up); err != nil {
		return apperror.FromDB(err)
	}
	return nil
}

// Delete removes a user. A missing id maps to 404.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return apperror.FromDB(err)
	}
	return nil
}
