// Package tickets provides CRUD over stored tickets. Business rules for
// severity and status are pass-through: values are stored and returned as
// supplied.
package tickets

import (
	"context"

	"github.com/user/ticx-go/apperror"
	"github.com/user/ticx-go/db"
)

// Store is the subset of the storage layer the ticket service needs.
type Store interface {
	InsertTicket(ctx context.Context, nt db.NewTicket) (*db.Ticket, error)
	GetTicket(ctx context.Context, id int) (*db.Ticket, error)
	UpdateTicket(ctx context.Context, id int, up db.TicketUpdate) error
	DeleteTicket(ctx context.Context, id int) error
}

// Service passes ticket CRUD through to the store.
type Service struct {
	store Store
}

// NewService creates a ticket service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get fetches a ticket by id.
func (s *Service) Get(ctx context.Context, id int) (*db.Ticket, error) {
	ticket, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	return ticket, nil
}

// Create inserts a new ticket.
func (s *Service) Create(ctx context.Context, nt db.NewTicket) (*db.Ticket, error) {
	if nt.Description == "" {
		return nil, apperror.NewBadRequest("description is required", nil)
	}
	ticket, err := s.store.InsertTicket(ctx, nt)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	return ticket, nil
}

// Update changes a ticket's mutable fields. A missing id maps to 404.
func (s *Service) Update(ctx context.Context, id int, up db.TicketUpdate) error {
	if err := s.store.UpdateTicket(ctx, id, up); err != nil {
		return apperror.FromDB(err)
	}
	return nil
}

// Delete removes a ticket. A missing id maps to 404.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.store.DeleteTicket(ctx, id); err != nil {
		return apperror.FromDB(err)
	}
	return nil
}
