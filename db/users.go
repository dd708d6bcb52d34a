package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// The password comparison happens inside the database: the plaintext is
// passed as a parameter and hashed by pgcrypto's crypt() against the
// stored salt. No hash or plaintext comparison ever runs in-process.
const checkCredentialsQuery = `SELECT id, username, firstname, lastname, created
FROM users
WHERE username = $1 AND password = crypt($2, password)`

const insertUserQuery = `INSERT INTO users (username, password, firstname, lastname)
VALUES ($1, crypt($2, gen_salt('bf')), $3, $4)
RETURNING id, username, firstname, lastname, created`

const getUserQuery = `SELECT id, username, firstname, lastname, created
FROM users
WHERE id = $1`

const updateUserQuery = `UPDATE users SET firstname = $2, lastname = $3
WHERE id = $1`

const deleteUserQuery = `DELETE FROM users WHERE id = $1`

// NewUser carries the fields for a user insert. Password is plaintext and
// is hashed by the insert statement itself; it must never be logged.
type NewUser struct {
	Username  string
	Password  string
	Firstname string
	Lastname  string
}

// UserUpdate carries the mutable user fields.
type UserUpdate struct {
	Firstname string
	Lastname  string
}

// CheckCredentials matches a username and plaintext password against the
// stored rows. Exactly one match returns the user; zero matches is a
// NotFoundError; more than one match violates the uniqueness invariant
// and is reported as ErrInvalidResult, never resolved by picking a row.
func (s *Store) CheckCredentials(ctx context.Context, username, password string) (*User, error) {
	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Release()
	defer s.observe(TableUsers, "check_credentials")()

	rows, err := lease.Conn().Query(ctx, checkCredentialsQuery, username, password)
	if err != nil {
		discardOnCancel(ctx, lease)
		return nil, &QueryError{Query: checkCredentialsQuery, Err: err}
	}
	defer rows.Close()

	var matches []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Firstname, &u.Lastname, &u.Created); err != nil {
			return nil, &QueryError{Query: checkCredentialsQuery, Err: err}
		}
		matches = append(matches, u)
	}
	if err := rows.Err(); err != nil {
		discardOnCancel(ctx, lease)
		return nil, &QueryError{Query: checkCredentialsQuery, Err: err}
	}

	switch len(matches) {
	case 0:
		return nil, &NotFoundError{What: "user matching supplied credentials"}
	case 1:
		return &matches[0], nil
	default:
		s.log.Error("credential check matched multiple rows",
			"table", TableUsers, "matches", len(matches))
		return nil, ErrInvalidResult
	}
}

// InsertUser creates a user. The password is salted and hashed by the
// statement via crypt(gen_salt('bf')).
func (s *Store) InsertUser(ctx context.Context, nu NewUser) (*User, error) {
	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Release()
	defer s.observe(TableUsers, "insert")()

	var u User
	err = lease.Conn().QueryRow(ctx, insertUserQuery,
		nu.Username, nu.Password, nu.Firstname, nu.Lastname).
		Scan(&u.ID, &u.Username, &u.Firstname, &u.Lastname, &u.Created)
	if err != nil {
		discardOnCancel(ctx, lease)
		return nil, &InsertError{Table: TableUsers, Err: err}
	}
	return &u, nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id int) (*User, error) {
	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Release()
	defer s.observe(TableUsers, "select")()

	var u User
	err = lease.Conn().QueryRow(ctx, getUserQuery, id).
		Scan(&u.ID, &u.Username, &u.Firstname, &u.Lastname, &u.Created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{What: fmt.Sprintf("user %d", id)}
		}
		discardOnCancel(ctx, lease)
		return nil, &QueryError{Query: getUserQuery, Err: err}
	}
	return &u, nil
}

// UpdateUser updates the mutable fields of a user. Updating an id that
// matches no row is a NotFoundError, not a silent success.
func (s *Store) UpdateUser(ctx context.Context, id int, up UserUpdate) error {
	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()
	defer s.observe(TableUsers, "update")()

	tag, err := lease.Conn().Exec(ctx, updateUserQuery, id, up.Firstname, up.Lastname)
	if err != nil {
		discardOnCancel(ctx, lease)
		return &UpdateError{Target: fmt.Sprintf("user %d", id), Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{What: fmt.Sprintf("user %d", id)}
	}
	return nil
}

// DeleteUser removes a user by id, reporting NotFoundError when no row
// was affected.
func (s *Store) DeleteUser(ctx context.Context, id int) error {
	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()
	defer s.observe(TableUsers, "delete")()

	tag, err := lease.Conn().Exec(ctx, deleteUserQuery, id)
	if err != nil {
		discardOnCancel(ctx, lease)
		return &UpdateError{Target: fmt.Sprintf("user %d", id), Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{What: fmt.Sprintf("user %d", id)}
	}
	return nil
}
