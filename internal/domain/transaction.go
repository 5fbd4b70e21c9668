package domain

import (
	"github.com/shopspring/decimal"
)

// NetworkStatus is the raw status code carried by the payment webhook.
type NetworkStatus string

const (
	NetworkStatusSuccess  NetworkStatus = "SUCCESS_200"
	NetworkStatusFailed   NetworkStatus = "FAILED_402"
	NetworkStatusNotFound NetworkStatus = "NOT_FOUND_404"
	NetworkStatusTimeout  NetworkStatus = "TIMEOUT_504"
)

func ValidNetworkStatus(s string) bool {
	switch NetworkStatus(s) {
	case NetworkStatusSuccess, NetworkStatusFailed, NetworkStatusNotFound, NetworkStatusTimeout:
		return true
	}
	return false
}

// BankState is the cross-checked state reported by the bank.
type BankState string

const (
	BankStateSuccess BankState = "SUCCESS"
	BankStateFailed  BankState = "FAILED"
	BankStateTimeout BankState = "TIMEOUT"
)

// LedgerState is the cross-checked state of the internal ledger entry.
type LedgerState string

const (
	LedgerStateFound   LedgerState = "FOUND"
	LedgerStateMissing LedgerState = "MISSING"
)

// DataConsistency says whether bank and ledger evidence corroborate each other.
type DataConsistency string

const (
	DataConsistent   DataConsistency = "CONSISTENT"
	DataInconsistent DataConsistency = "INCONSISTENT"
)

// FactRecord is the canonical, validated view of a disputed transaction.
// Immutable once built by the fact extractor.
type FactRecord struct {
	TransactionID    string          `json:"transaction_id"`
	UserID           string          `json:"user_id"`
	Amount           decimal.Decimal `json:"amount"`
	CounterpartTrust float64         `json:"counterpart_trust"`
	NetworkStatus    NetworkStatus   `json:"network_status"`
	BankState        BankState       `json:"bank_state"`
	LedgerState      LedgerState     `json:"ledger_state"`
	DataConsistency  DataConsistency `json:"data_consistency"`
}

// Consistent reports whether the evidence corroborates itself.
func (f FactRecord) Consistent() bool {
	return f.DataConsistency == DataConsistent
}
