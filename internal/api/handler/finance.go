package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bizdesk/bizdesk/internal/api/middleware"
	"github.com/bizdesk/bizdesk/internal/api/response"
	"github.com/bizdesk/bizdesk/internal/finance"
)

// FinanceHandler handles finance-tracker endpoints.
type FinanceHandler struct {
	finance *finance.Service
}

// NewFinanceHandler creates a new FinanceHandler.
func NewFinanceHandler(fin *finance.Service) *FinanceHandler {
	return &FinanceHandler{finance: fin}
}

type transactionRequest struct {
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
}

// List handles GET /transactions with an optional type query parameter.
func (h *FinanceHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	typ := r.URL.Query().Get("type")
	if typ != "" && !finance.ValidType(typ) {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "type must be income or expense", requestID)
		return
	}

	txs, err := h.finance.List(r.Context(), identity.UserID, typ)
	if err != nil {
		slog.Error("failed to list transactions", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list transactions", requestID)
		return
	}

	response.SuccessList(w, http.StatusOK, txs, len(txs), requestID)
}

// Create handles POST /transactions.
func (h *FinanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "date must be RFC 3339", requestID)
			return
		}
		date = parsed
	}

	t, err := h.finance.Add(r.Context(), identity.UserID, finance.Input{
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
		Date:        date,
	})
	if err != nil {
		switch {
		case errors.Is(err, finance.ErrInvalidType), errors.Is(err, finance.ErrInvalidAmount):
			response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), requestID)
		default:
			slog.Error("failed to create transaction", "error", err, "requestId", requestID)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create transaction", requestID)
		}
		return
	}

	response.Success(w, http.StatusCreated, t, requestID)
}

// Delete handles DELETE /transactions/{id}.
func (h *FinanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	err := h.finance.Delete(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, finance.ErrTransactionNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Transaction not found", requestID)
			return
		}
		slog.Error("failed to delete transaction", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete transaction", requestID)
		return
	}

	response.NoContent(w)
}

// Summary handles GET /transactions/summary.
func (h *FinanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	sum, err := h.finance.Summarize(r.Context(), identity.UserID)
	if err != nil {
		slog.Error("failed to summarize transactions", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to summarize transactions", requestID)
		return
	}

	response.Success(w, http.StatusOK, sum, requestID)
}
