package facts

import (
	"github.com/paysentinel/sentinel/internal/domain"
)

// Evidence is the cross-checked bank and ledger state for one transaction.
type Evidence struct {
	Bank   domain.BankState
	Ledger domain.LedgerState
}

// EvidenceSource looks up what the bank and the internal ledger actually say
// about a transaction, independent of what the webhook claims.
type EvidenceSource interface {
	CrossCheck(transactionID string, status domain.NetworkStatus, trust float64) Evidence
}

// Trust bands for the deterministic cross-check. A claimed failure from a
// low-trust counterpart is the classic fraud pattern: the bank settled the
// payment and the ledger holds the entry.
const (
	fraudTrustCeiling     = 0.30
	ambiguousTrustCeiling = 0.60
)

// DeterministicSource derives evidence from the webhook signal alone, so the
// same input always yields the same tribunal run. A real bank integration
// would replace this behind the same interface.
type DeterministicSource struct{}

func NewDeterministicSource() DeterministicSource { return DeterministicSource{} }

func (DeterministicSource) CrossCheck(_ string, status domain.NetworkStatus, trust float64) Evidence {
	switch status {
	case domain.NetworkStatusSuccess:
		return Evidence{Bank: domain.BankStateSuccess, Ledger: domain.LedgerStateFound}

	case domain.NetworkStatusFailed:
		switch {
		case trust < fraudTrustCeiling:
			// Claim contradicts the records: settlement went through.
			return Evidence{Bank: domain.BankStateSuccess, Ledger: domain.LedgerStateFound}
		case trust < ambiguousTrustCeiling:
			// Bank says failed but a ledger entry exists.
			return Evidence{Bank: domain.BankStateFailed, Ledger: domain.LedgerStateFound}
		default:
			return Evidence{Bank: domain.BankStateFailed, Ledger: domain.LedgerStateMissing}
		}

	case domain.NetworkStatusNotFound:
		return Evidence{Bank: domain.BankStateFailed, Ledger: domain.LedgerStateMissing}

	default: // TIMEOUT_504: bank state unknown
		return Evidence{Bank: domain.BankStateTimeout, Ledger: domain.LedgerStateMissing}
	}
}

// Consistency applies the fixed corroboration rule: bank and ledger agree when
// both report a completed payment or both report a failed one. A timed-out
// bank can corroborate nothing.
func Consistency(e Evidence) domain.DataConsistency {
	switch {
	case e.Bank == domain.BankStateSuccess && e.Ledger == domain.LedgerStateFound:
		return domain.DataConsistent
	case e.Bank == domain.BankStateFailed && e.Ledger == domain.LedgerStateMissing:
		return domain.DataConsistent
	}
	return domain.DataInconsistent
}
