package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const insertTicketQuery = `INSERT INTO tickets (author_id, description, severity, status)
VALUES ($1, $2, $3, $4)
RETURNING id, author_id, description, severity, status, created`

const getTicketQuery = `SELECT id, author_id, description, severity, status, created
FROM tickets
WHERE id = $1`

const updateTicketQuery = `UPDATE tickets SET description = $2, severity = $3, status = $4
WHERE id = $1`

const deleteTicketQuery = `DELETE FROM tickets WHERE id = $1`

// NewTicket carries the fields for a ticket insert.
type NewTicket struct {
	AuthorID    int
	Description string
	Severity    int16
	Status      int16
}

// TicketUpdate carries the mutable ticket fields.
type TicketUpdate struct {
	Description string
	Severity    int16
	Status      int16
}

// InsertTicket creates a ticket.
func (s *Store) InsertTicket(ctx context.Context, nt NewTicket) (*Ticket, error) {
	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Release()
	defer s.observe(TableTickets, "insert")()

	var t Ticket
	err = lease.Conn().QueryRow(ctx, insertTicketQuery,
		nt.AuthorID, nt.Description, nt.Severity, nt.Status).
		Scan(&t.ID, &t.AuthorID, &t.Description, &t.Severity, &t.Status, &t.Created)
	if err != nil {
		discardOnCancel(ctx, lease)
		return nil, &InsertError{Table: TableTickets, Err: err}
	}
	return &t, nil
}

// GetTicket fetches a ticket by id.
func (s *Store) GetTicket(ctx context.Context, id int) (*Ticket, error) {
	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Release()
	defer s.observe(TableTickets, "select")()

	var t Ticket
	err = lease.Conn().QueryRow(ctx, getTicketQuery, id).
		Scan(&t.ID, &t.AuthorID, &t.Description, &t.Severity, &t.Status, &t.Created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{What: fmt.Sprintf("ticket %d", id)}
		}
		discardOnCancel(ctx, lease)
		return nil, &QueryError{Query: getTicketQuery, Err: err}
	}
	return &t, nil
}

// UpdateTicket updates the mutable fields of a ticket. An id matching no
// row is a NotFoundError, not a silent success.
func (s *Store) UpdateTicket(ctx context.Context, id int, up TicketUpdate) error {
	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()
	defer s.observe(TableTickets, "update")()

	tag, err := lease.Conn().Exec(ctx, updateTicketQuery, id, up.Description, up.Severity, up.Status)
	if err != nil {
		discardOnCancel(ctx, lease)
		return &UpdateError{Target: fmt.Sprintf("ticket %d", id), Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{What: fmt.Sprintf("ticket %d", id)}
	}
	return nil
}

// DeleteTicket removes a ticket by id, reporting NotFoundError when no
// row was affected.
func (s *Store) DeleteTicket(ctx context.Context, id int) error {
	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()
	defer s.observe(TableTickets, "delete")()

	tag, err := lease.Conn().Exec(ctx, deleteTicketQuery, id)
	if err != nil {
		discardOnCancel(ctx, lease)
		return &UpdateError{Target: fmt.Sprintf("ticket %d", id), Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{What: fmt.Sprintf("ticket %d", id)}
	}
	return nil
}
