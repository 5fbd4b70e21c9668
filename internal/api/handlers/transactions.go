package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/paysentinel/sentinel/internal/domain"
	"github.com/paysentinel/sentinel/internal/service"
)

type TransactionHandler struct {
	svc *service.DisputeService
}

func NewTransactionHandler(svc *service.DisputeService) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

type listResponse struct {
	Count        int                        `json:"count"`
	Transactions []domain.TransactionRecord `json:"transactions"`
}

// List is GET /transactions?decision=&limit=: most recent first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.RecordFilter{}

	if d := r.URL.Query().Get("decision"); d != "" {
		if !domain.ValidDecision(d) {
			writeError(w, http.StatusBadRequest, "invalid decision filter")
			return
		}
		filter.Decision = domain.Decision(d)
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	records, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Count: len(records), Transactions: records})
}

// GetByID is GET /transactions/{id}: one record with its full vote trail.
func (h *TransactionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load transaction")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type overrideRequest struct {
	Decision string `json:"decision"`
}

// Override is POST /transactions/{id}/override: the human desk resolving an
// escalated record.
func (h *TransactionHandler) Override(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.svc.Override(r.Context(), id, domain.Decision(req.Decision))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDecision):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrTransactionNotFound):
			writeError(w, http.StatusNotFound, "transaction not found")
		case errors.Is(err, service.ErrInvalidTransition):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to override verdict")
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type clearResponse struct {
	Removed int `json:"removed"`
}

// Clear is DELETE /transactions: wipe the store.
func (h *TransactionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.Clear(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear transactions")
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{Removed: removed})
}
