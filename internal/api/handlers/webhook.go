package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/paysentinel/sentinel/internal/domain"
	"github.com/paysentinel/sentinel/internal/facts"
	"github.com/paysentinel/sentinel/internal/service"
	"github.com/shopspring/decimal"
)

type WebhookHandler struct {
	svc *service.DisputeService
}

func NewWebhookHandler(svc *service.DisputeService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

type webhookRequest struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	UserID        string          `json:"user_id"`
	UserTrust     float64         `json:"user_trust"`
	Status        string          `json:"status"`
}

type verdictResponse struct {
	TransactionID    string            `json:"transaction_id"`
	Decision         domain.Decision   `json:"decision"`
	ConsensusScore   float64           `json:"consensus_score"`
	EscalationReason string            `json:"escalation_reason,omitempty"`
	ResolvedBy       domain.ResolvedBy `json:"resolved_by"`
	Votes            []domain.Vote     `json:"votes"`
}

// Process is POST /webhook: run the tribunal on one transaction event. The
// caller always gets a well-formed verdict or a validation error, never a raw
// internal failure.
func (h *WebhookHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	rec, err := h.svc.Process(r.Context(), facts.RawSignal{
		TransactionID: req.TransactionID,
		UserID:        req.UserID,
		Amount:        req.Amount,
		UserTrust:     req.UserTrust,
		Status:        req.Status,
	})
	if err != nil {
		switch {
		case facts.ValidationError(err), errors.Is(err, service.ErrDuplicateTransaction):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to process transaction")
		}
		return
	}

	writeJSON(w, http.StatusOK, verdictResponse{
		TransactionID:    rec.Facts.TransactionID,
		Decision:         rec.Verdict.Decision,
		ConsensusScore:   rec.Verdict.ConsensusScore,
		EscalationReason: rec.Verdict.EscalationReason,
		ResolvedBy:       rec.Verdict.ResolvedBy,
		Votes:            rec.Votes,
	})
}
