package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/user/ticx-go/apperror"
)

// Handlers exposes the auth HTTP endpoints over the Service.
type Handlers struct {
	service *Service
	log     *slog.Logger
}

// NewHandlers creates the auth handlers.
func NewHandlers(service *Service, log *slog.Logger) *Handlers {
	return &Handlers{service: service, log: log}
}

// HandleLogin godoc
// @Summary Login
// @Description Exchanges verified Basic credentials for a signed session token.
// @Tags Auth
// @Produce plain
// @Success 200 {string} string "signed token"
// @Failure 400 {object} apperror.ErrorResponse "Missing or malformed Authorization header"
// @Failure 401 {object} apperror.ErrorResponse "Invalid credentials"
// @Router /auth/login [get]
// @Security BasicAuth
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The Basic-auth stage stores the verified identity in the request
		// context. Its absence means the route was wired without the
		// middleware; report it instead of assuming it cannot happen.
		user, ok := UserFromContext(r.Context())
		if !ok {
			h.log.Error("login handler reached without verified identity",
				"path", r.URL.Path)
			WriteError(w, r, apperror.NewUnknown(nil))
			return
		}

		token, err := h.service.IssueToken(user)
		if err != nil {
			h.log.Error("token issue failed", "user_id", user.ID, "error", err)
			WriteError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(token))
	}
}

// HandleRegister godoc
// @Summary Register
// @Description Creates a new user. The password is salted and hashed inside the database.
// @Tags Auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "New user details"
// @Success 201 {object} db.User
// @Failure 400 {object} apperror.ErrorResponse "Invalid body or missing fields"
// @Failure 409 {object} apperror.ErrorResponse "Username already exists"
// @Router /auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequest("invalid request body", err))
			return
		}
		defer r.Body.Close()

		user, err := h.service.Register(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusCreated, user)
	}
}

// WriteJSON serializes data with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// WriteError converts any error into its standardized JSON response.
// Errors outside the taxonomy are wrapped as unknown server errors, so a
// raw cause never reaches the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewUnknown(err)
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
