package facts

import (
	"errors"

	"github.com/paysentinel/sentinel/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrTransactionIDMissing = errors.New("transaction_id is required")
	ErrAmountNotPositive    = errors.New("amount must be greater than zero")
	ErrTrustOutOfRange      = errors.New("user_trust must be between 0 and 1")
	ErrUnknownStatus        = errors.New("unknown network status")
)

// ValidationError reports whether err is an input validation failure that the
// caller should surface as a bad request.
func ValidationError(err error) bool {
	return errors.Is(err, ErrTransactionIDMissing) ||
		errors.Is(err, ErrAmountNotPositive) ||
		errors.Is(err, ErrTrustOutOfRange) ||
		errors.Is(err, ErrUnknownStatus)
}

// RawSignal is the unvalidated webhook input.
type RawSignal struct {
	TransactionID string
	UserID        string
	Amount        decimal.Decimal
	UserTrust     float64
	Status        string
}

// Extractor normalizes a raw signal into a FactRecord. Pure: no side effects,
// same signal in, same facts out.
type Extractor struct {
	source EvidenceSource
}

func NewExtractor(source EvidenceSource) *Extractor {
	return &Extractor{source: source}
}

// Extract validates the signal, cross-checks the evidence, and derives data
// consistency.
func (e *Extractor) Extract(sig RawSignal) (domain.FactRecord, error) {
	if sig.TransactionID == "" {
		return domain.FactRecord{}, ErrTransactionIDMissing
	}
	if !sig.Amount.IsPositive() {
		return domain.FactRecord{}, ErrAmountNotPositive
	}
	if sig.UserTrust < 0 || sig.UserTrust > 1 {
		return domain.FactRecord{}, ErrTrustOutOfRange
	}
	if !domain.ValidNetworkStatus(sig.Status) {
		return domain.FactRecord{}, ErrUnknownStatus
	}

	status := domain.NetworkStatus(sig.Status)
	ev := e.source.CrossCheck(sig.TransactionID, status, sig.UserTrust)

	return domain.FactRecord{
		TransactionID:    sig.TransactionID,
		UserID:           sig.UserID,
		Amount:           sig.Amount,
		CounterpartTrust: sig.UserTrust,
		NetworkStatus:    status,
		BankState:        ev.Bank,
		LedgerState:      ev.Ledger,
		DataConsistency:  Consistency(ev),
	}, nil
}
