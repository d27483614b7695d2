package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"finbank/internal/ledger/models"
	"finbank/internal/ledger/service"
	"finbank/internal/platform/middleware"
	"finbank/pkg/domain"
	dErrors "finbank/pkg/domain-errors"
	"finbank/pkg/platform/httputil"
	"finbank/pkg/requestcontext"
)

// Service defines the ledger operations the handler depends on.
type Service interface {
	Apply(ctx context.Context, principal domain.UserID, accountNumber string, params service.ApplyParams) (*models.Transaction, error)
	List(ctx context.Context, principal domain.UserID, accountNumber string) ([]*models.Transaction, error)
	Get(ctx context.Context, principal domain.UserID, accountNumber string, id domain.TransactionID) (*models.Transaction, error)
}

// Handler wires transaction endpoints to the ledger service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts transaction endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/accounts/{accountNumber}/transactions", h.HandleApply)
	r.Get("/accounts/{accountNumber}/transactions", h.HandleList)
	r.Get("/accounts/{accountNumber}/transactions/{transactionId}", h.HandleGet)
}

func principal(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	userID, ok := middleware.Principal(r.Context())
	if !ok || userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return domain.UserID{}, false
	}
	return userID, true
}

// HandleApply handles POST /v1/accounts/{accountNumber}/transactions.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	req, ok := httputil.Decode[CreateTransactionRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	accountNumber := chi.URLParam(r, "accountNumber")
	txn, err := h.service.Apply(ctx, userID, accountNumber, req.ToParams())
	if err != nil {
		h.logger.ErrorContext(ctx, "transaction failed",
			"request_id", requestcontext.RequestID(ctx),
			"account_number", accountNumber,
			"type", req.Type,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromTransaction(txn))
}

// HandleList handles GET /v1/accounts/{accountNumber}/transactions.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	txns, err := h.service.List(ctx, userID, chi.URLParam(r, "accountNumber"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTransactions(txns))
}

// HandleGet handles GET /v1/accounts/{accountNumber}/transactions/{transactionId}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := principal(w, r)
	if !ok {
		return
	}

	id, err := domain.ParseTransactionID(chi.URLParam(r, "transactionId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	txn, err := h.service.Get(ctx, userID, chi.URLParam(r, "accountNumber"), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTransaction(txn))
}
