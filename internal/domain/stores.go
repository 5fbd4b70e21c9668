package domain

import "context"

// TransactionStore is the durable, size-bounded log of processed disputes.
// Implementations must serialize writes: concurrent appends never interleave
// partial records, and eviction happens atomically with the insert that
// triggers it.
type TransactionStore interface {
	// Append persists a completed record and returns its record ID.
	// Fails with ErrDuplicateTransaction if the transaction ID was seen before.
	Append(ctx context.Context, rec *TransactionRecord) (string, error)

	// Get returns the record for a transaction ID, or ErrNotFound.
	Get(ctx context.Context, transactionID string) (*TransactionRecord, error)

	// List returns records most-recent-first, honoring the filter.
	List(ctx context.Context, filter RecordFilter) ([]TransactionRecord, error)

	// Override moves an ESCALATE verdict to REFUND or DENY exactly once.
	// Fails with ErrInvalidTransition if the current decision is not ESCALATE.
	Override(ctx context.Context, transactionID string, decision Decision) (*TransactionRecord, error)

	// Clear wipes the store and returns the number of records removed.
	Clear(ctx context.Context) (int, error)
}

// LLMClient produces free-text deliberation for a participant persona. The
// tribunal never depends on it for positions or confidences; it only enriches
// vote rationales, and any failure falls back to the deterministic text.
type LLMClient interface {
	Deliberate(ctx context.Context, persona, prompt string) (string, error)
}
