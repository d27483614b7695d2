package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"finbank/internal/accounts/models"
	"finbank/internal/platform/middleware"
	"finbank/pkg/domain"
	dErrors "finbank/pkg/domain-errors"
	"finbank/pkg/platform/httputil"
	"finbank/pkg/requestcontext"
)

// Service defines the account operations the handler depends on.
type Service interface {
	Create(ctx context.Context, principal domain.UserID, name string, accountType models.Type) (*models.Account, error)
	Get(ctx context.Context, principal domain.UserID, number string) (*models.Account, error)
	List(ctx context.Context, principal domain.UserID) ([]*models.Account, error)
	Update(ctx context.Context, principal domain.UserID, number string, update models.AccountUpdate) (*models.Account, error)
	Delete(ctx context.Context, principal domain.UserID, number string) error
}

// Handler wires account endpoints to the account service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts account endpoints on the router. All routes require an
// authenticated principal.
func (h *Handler) Register(r chi.Router) {
	r.Post("/accounts", h.HandleCreate)
	r.Get("/accounts", h.HandleList)
	r.Get("/accounts/{accountNumber}", h.HandleGet)
	r.Patch("/accounts/{accountNumber}", h.HandleUpdate)
	r.Delete("/accounts/{accountNumber}", h.HandleDelete)
}

func principal(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	userID, ok := middleware.Principal(r.Context())
	if !ok || userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return domain.UserID{}, false
	}
	return userID, true
}

// HandleCreate handles POST /v1/accounts.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	req, ok := httputil.Decode[CreateAccountRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	account, err := h.service.Create(ctx, userID, req.Name, req.ParsedType())
	if err != nil {
		h.logger.ErrorContext(ctx, "account creation failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromAccount(account))
}

// HandleList handles GET /v1/accounts.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	accounts, err := h.service.List(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAccounts(accounts))
}

// HandleGet handles GET /v1/accounts/{accountNumber}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	account, err := h.service.Get(ctx, userID, chi.URLParam(r, "accountNumber"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAccount(account))
}

// HandleUpdate handles PATCH /v1/accounts/{accountNumber}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	req, ok := httputil.Decode[UpdateAccountRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	account, err := h.service.Update(ctx, userID, chi.URLParam(r, "accountNumber"), req.ToUpdate())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAccount(account))
}

// HandleDelete handles DELETE /v1/accounts/{accountNumber}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, userID, chi.URLParam(r, "accountNumber")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
