package tickets

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/ticx-go/apperror"
	"github.com/user/ticx-go/auth"
	"github.com/user/ticx-go/db"
)

// CreateTicketRequest is the payload for opening a ticket. AuthorID may be
// omitted, in which case the ticket is attributed to the authenticated
// token's subject.
type CreateTicketRequest struct {
	AuthorID    int    `json:"author_id,omitempty"`
	Description string `json:"description" example:"login page renders blank"`
	Severity    int16  `json:"severity" example:"2"`
	Status      int16  `json:"status" example:"0"`
}

// UpdateTicketRequest is the payload for updating a ticket.
type UpdateTicketRequest struct {
	Description string `json:"description"`
	Severity    int16  `json:"severity"`
	Status      int16  `json:"status"`
}

// Handlers exposes ticket CRUD endpoints.
type Handlers struct {
	service *Service
}

// NewHandlers creates the ticket handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the ticket endpoints on r. The router group is
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
// @Summary Get ticket
// @Tags Tickets
// @Produce json
// @Success 200 {object} db.Ticket
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/ticket/{id} [get]
// @Security BearerAuth
func (h *Handlers) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	ticket, err := h.service.Get(r.Context(), id)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, ticket)
}

// handleCreate godoc
// @Summary Create ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Success 201 {object} db.Ticket
// @Router /api/ticket [post]
// @Security BearerAuth
func (h *Handlers) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequest("invalid request body", err))
		return
	}
	defer r.Body.Close()

	authorID := req.AuthorID
	if authorID == 0 {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewBadRequest("author_id is required", nil))
			return
		}
		id, err := claims.UserID()
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		authorID = id
	}

	ticket, err := h.service.Create(r.Context(), db.NewTicket{
		AuthorID:    authorID,
		Description: req.Description,
		Severity:    req.Severity,
		Status:      req.Status,
	})
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusCreated, ticket)
}

// handleUpdate godoc
// @Summary Update ticket
// @Tags Tickets
// @Accept json
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/ticket/{id} [put]
// @Security BearerAuth
func (h *Handlers) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	var req UpdateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequest("invalid request body", err))
		return
	}
	defer r.Body.Close()

	if err := h.service.Update(r.Context(), id, db.TicketUpdate{
		Description: req.Description,
		Severity:    req.Severity,
		Status:      req.Status,
	}); err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusNoContent, nil)
}

// handleDelete godoc
// @Summary Delete ticket
// @Tags Tickets
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/ticket/{id} [delete]
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
