package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bizdesk/bizdesk/internal/api/middleware"
	"github.com/bizdesk/bizdesk/internal/api/response"
	"github.com/bizdesk/bizdesk/internal/api/validation"
	"github.com/bizdesk/bizdesk/internal/contact"
)

// ContactHandler handles CRM contact endpoints.
type ContactHandler struct {
	contacts *contact.Service
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contacts *contact.Service) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Status  string `json:"status"`
	Notes   string `json:"notes"`
}

func (req *contactRequest) input() contact.Input {
	return contact.Input{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Status:  req.Status,
		Notes:   req.Notes,
	}
}

// contactPatchRequest distinguishes omitted fields from fields set to the
// empty string: omitted ones keep their stored value.
type contactPatchRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
	Status  *string `json:"status"`
	Notes   *string `json:"notes"`
}

func (req *contactPatchRequest) input() contact.UpdateInput {
	return contact.UpdateInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Status:  req.Status,
		Notes:   req.Notes,
	}
}

// List handles GET /contacts with optional status and q query parameters.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	status := r.URL.Query().Get("status")
	if status != "" && !contact.ValidStatus(status) {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown contact status", requestID)
		return
	}

	contacts, err := h.contacts.List(r.Context(), identity.UserID, status, r.URL.Query().Get("q"))
	if err != nil {
		slog.Error("failed to list contacts", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list contacts", requestID)
		return
	}

	response.SuccessList(w, http.StatusOK, contacts, len(contacts), requestID)
}

// Create handles POST /contacts.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "name", Message: "name is required"}}, requestID)
		return
	}

	c, err := h.contacts.Create(r.Context(), identity.UserID, req.input())
	if err != nil {
		if errors.Is(err, contact.ErrInvalidStatus) {
			response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown contact status", requestID)
			return
		}
		slog.Error("failed to create contact", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create contact", requestID)
		return
	}

	response.Success(w, http.StatusCreated, c, requestID)
}

// GetByID handles GET /contacts/{id}.
func (h *ContactHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	c, err := h.contacts.Get(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, contact.ErrContactNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Contact not found", requestID)
			return
		}
		slog.Error("failed to get contact", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get contact", requestID)
		return
	}

	response.Success(w, http.StatusOK, c, requestID)
}

// Update handles PATCH /contacts/{id}.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req contactPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	c, err := h.contacts.Update(r.Context(), identity.UserID, chi.URLParam(r, "id"), req.input())
	if err != nil {
		switch {
		case errors.Is(err, contact.ErrContactNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Contact not found", requestID)
		case errors.Is(err, contact.ErrInvalidStatus):
			response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown contact status", requestID)
		case errors.Is(err, contact.ErrEmptyName):
			response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
				[]validation.FieldError{{Field: "name", Message: "name is required"}}, requestID)
		default:
			slog.Error("failed to update contact", "error", err, "requestId", requestID)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update contact", requestID)
		}
		return
	}

	response.Success(w, http.StatusOK, c, requestID)
}

// Delete handles DELETE /contacts/{id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	err := h.contacts.Delete(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, contact.ErrContactNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Contact not found", requestID)
			return
		}
		slog.Error("failed to delete contact", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete contact", requestID)
		return
	}

	response.NoContent(w)
}
