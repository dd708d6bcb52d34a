package users

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/ticx-go/apperror"
	"github.com/user/ticx-go/auth"
	"github.com/user/ticx-go/db"
)

// CreateUserRequest is the payload for creating a user through the API.
type CreateUserRequest struct {
	Username  string `json:"username" example:"bob"`
	Password  string `json:"password" example:"strongpassword123"`
	Firstname string `json:"firstname" example:"Bob"`
	Lastname  string `json:"lastname" example:"B"`
}

// UpdateUserRequest is the payload for updating a user.
type UpdateUserRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// Handlers exposes user CRUD endpoints.
type Handlers struct {
	service *Service
}

// NewHandlers creates the user handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the user endpoints on r. The router group is
// expected to already be wrapped in the token-validation stage.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/{id}", h.handleGet)
	r.Post("/", h.handleCreate)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

func idParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, apperror.NewBadRequest("id must be an integer", err)
	}
	return id, nil
}

// handleGet godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Success 200 {object} db.User
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/user/{id} [get]
// @Security BearerAuth
func (h *Handlers) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, user)
}

// handleCreate godoc
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Success 201 {object} db.User
// @Router /api/user [post]
// @Security BearerAuth
func (h *Handlers) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequest("invalid request body", err))
		return
	}
	defer r.Body.Close()

	user, err := h.service.Create(r.Context(), db.NewUser{
		Username:  req.Username,
		Password:  req.Password,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
	})
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusCreated, user)
}

// handleUpdate godoc
// @Summary Update user
// @Tags Users
// @Accept json
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/user/{id} [put]
// @Security BearerAuth
func (h *Handlers) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequest("invalid request body", err))
		return
	}
	defer r.Body.Close()

	if err := h.service.Update(r.Context(), id, db.UserUpdate{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
	}); err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusNoContent, nil)
}

// handleDelete godoc
// @Summary Delete user
// @Tags Users
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/user/{id} [delete]
// @Security BearerAuth
func (h *Handlers) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusNoContent, nil)
}
