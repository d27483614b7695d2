package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"finbank/internal/platform/middleware"
	"finbank/internal/users/models"
	"finbank/internal/users/service"
	"finbank/pkg/domain"
	dErrors "finbank/pkg/domain-errors"
	"finbank/pkg/platform/httputil"
	"finbank/pkg/requestcontext"
)

// Service defines the user operations the handler depends on.
type Service interface {
	Register(ctx context.Context, params service.RegisterParams) (*models.User, error)
	Get(ctx context.Context, principal, target domain.UserID) (*models.User, error)
	Update(ctx context.Context, principal, target domain.UserID, update models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, principal, target domain.UserID) error
}

// Handler wires user endpoints to the user service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated registration endpoint.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/users", h.HandleCreate)
}

// Register mounts the authenticated user endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/users/{userId}", h.HandleGet)
	r.Patch("/users/{userId}", h.HandleUpdate)
	r.Delete("/users/{userId}", h.HandleDelete)
}

func principal(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	userID, ok := middleware.Principal(r.Context())
	if !ok || userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return domain.UserID{}, false
	}
	return userID, true
}

func targetUser(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	target, err := domain.ParseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.UserID{}, false
	}
	return target, true
}

// HandleCreate handles POST /v1/users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[CreateUserRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.Register(ctx, req.ToParams())
	if err != nil {
		h.logger.ErrorContext(ctx, "user registration failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromUser(user))
}

// HandleGet handles GET /v1/users/{userId}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	target, ok := targetUser(w, r)
	if !ok {
		return
	}

	user, err := h.service.Get(ctx, userID, target)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromUser(user))
}

// HandleUpdate handles PATCH /v1/users/{userId}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	target, ok := targetUser(w, r)
	if !ok {
		return
	}

	req, ok := httputil.Decode[UpdateUserRequest](w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.service.Update(ctx, userID, target, req.ToUpdate())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromUser(user))
}

// HandleDelete handles DELETE /v1/users/{userId}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	target, ok := targetUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, userID, target); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
