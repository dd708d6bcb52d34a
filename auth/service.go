package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/ticx-go/apperror"
	"github.com/user/ticx-go/db"
)

const (
	// Issuer and Audience are fixed claims stamped into every issued token
	// and enforced on validation.
	Issuer   = "ticx-server"
	Audience = "ticx-user"

	// Leeway absorbs clock skew between issuer and validator when the
	// time-window claims are checked.
	Leeway = 10 * time.Second

	// DefaultTokenTTL is the validity window of an issued token.
	DefaultTokenTTL = 7 * 24 * time.Hour

	// pgUniqueViolation is the PostgreSQL error code for unique
	// constraint violations.
	pgUniqueViolation = "23505"
)

// Claims is the payload of a signed session token.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the subject claim parsed back into a user id.
func (c *Claims) UserID() (int, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil {
		return 0, apperror.NewInvalidToken(err)
	}
	return id, nil
}

// UserStore is the subset of the storage layer the auth service needs.
type UserStore interface {
	CheckCredentials(ctx context.Context, username, password string) (*db.User, error)
	InsertUser(ctx context.Context, nu db.NewUser) (*db.User, error)
}

// Service verifies credentials and issues and validates signed tokens.
// The signing secret is loaded once at startup and shared read-only with
// every validation; there is no rotation.
type Service struct {
	store  UserStore
	secret []byte
	ttl    time.Duration
	log    *slog.Logger
}

// NewService creates an auth service. A non-positive ttl falls back to
// DefaultTokenTTL.
func NewService(store UserStore, secret string, ttl time.Duration, log *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{store: store, secret: []byte(secret), ttl: ttl, log: log}
}

// VerifyCredentials confirms a username/password pair against the store.
// Zero matches collapse to the invalid-credentials outcome; an ambiguous
// match is surfaced as a server-side defect, never treated as a login.
func (s *Service) VerifyCredentials(ctx context.Context, creds Credentials) (*db.User, error) {
	user, err := s.store.CheckCredentials(ctx, creds.Username(), creds.Password())
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperror.NewInvalidCredentials()
		}
		if errors.Is(err, db.ErrInvalidResult) {
			s.log.Error("credential check hit an invalid state",
				"username", creds.Username(), "error", err)
		} else {
			s.log.Error("credential check failed",
				"username", creds.Username(), "error", err)
		}
		return nil, apperror.FromDB(err)
	}
	return user, nil
}

// Register creates a new user. The plaintext password travels to the
// store, which salts and hashes it; it is never hashed or retained here.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*db.User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, apperror.NewBadRequest("username and password are required", nil)
	}

	user, err := s.store.InsertUser(ctx, db.NewUser{
		Username:  req.Username,
		Password:  req.Password,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation &&
			strings.Contains(pgErr.ConstraintName, "username") {
			return nil, apperror.NewConflict("username already exists", nil)
		}
		s.log.Error("user insert failed", "table", db.TableUsers, "error", err)
		return nil, apperror.FromDB(err)
	}
	return user, nil
}

// IssueToken builds and signs the claims for an authenticated user:
// subject is the user id, the validity window opens now and closes after
// the configured ttl, and every token carries a fresh random id.
func (s *Service) IssueToken(user *db.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperror.NewGeneric("encode token", err)
	}
	return signed, nil
}

// ValidateToken verifies a token's signature, issuer, audience and time
// window. Every failure mode comes back as a single invalid-token error;
// the caller decides how much of the cause to expose.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithLeeway(Leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, apperror.NewInvalidToken(err)
	}
	return claims, nil
}
