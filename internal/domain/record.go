package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionRecord is the unit of persistence: the fact record, the ordered
// vote trail, and the current verdict. The orchestrator builds it; the store
// owns it after append.
type TransactionRecord struct {
	RecordID  uuid.UUID  `json:"record_id"`
	Facts     FactRecord `json:"facts"`
	Votes     []Vote     `json:"votes"`
	Verdict   Verdict    `json:"verdict"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RecordFilter narrows a store listing. Zero value lists everything.
type RecordFilter struct {
	Decision Decision
	Limit    int
}
