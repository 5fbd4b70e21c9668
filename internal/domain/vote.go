package domain

import "time"

// Participant identifies a tribunal member.
type Participant string

const (
	ParticipantAdvocate    Participant = "ADVOCATE"
	ParticipantRiskOfficer Participant = "RISK_OFFICER"
	ParticipantJudge       Participant = "JUDGE"
)

// Position is the stance a participant takes on the dispute.
type Position string

const (
	// PositionRefund favors the customer (approve the refund / honor the payment).
	PositionRefund Position = "REFUND"
	// PositionDeny opposes the customer's claim.
	PositionDeny Position = "DENY"
	// PositionObject is a Risk Officer objection; counts against the customer.
	PositionObject Position = "OBJECT"
	// PositionWait abstains from either side.
	PositionWait Position = "WAIT"
)

// Alignment buckets positions by which side of the dispute they support.
type Alignment int

const (
	AlignNeutral Alignment = iota
	AlignCustomer
	AlignMerchant
)

// Align maps a position onto a side. WAIT agrees with nobody.
func (p Position) Align() Alignment {
	switch p {
	case PositionRefund:
		return AlignCustomer
	case PositionDeny, PositionObject:
		return AlignMerchant
	default:
		return AlignNeutral
	}
}

// Vote is one participant's stance in one round. Votes are append-only within
// a transaction's processing and never mutated.
type Vote struct {
	Participant Participant `json:"participant"`
	Round       int         `json:"round"`
	Position    Position    `json:"position"`
	Confidence  float64     `json:"confidence"`
	Rationale   string      `json:"rationale"`
	IsVeto      bool        `json:"is_veto"`
	CastAt      time.Time   `json:"cast_at"`
}
