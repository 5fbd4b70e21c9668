package domain

// Decision is the terminal outcome for a disputed transaction.
type Decision string

const (
	DecisionRefund   Decision = "REFUND"
	DecisionDeny     Decision = "DENY"
	DecisionEscalate Decision = "ESCALATE"
)

func ValidDecision(d string) bool {
	switch Decision(d) {
	case DecisionRefund, DecisionDeny, DecisionEscalate:
		return true
	}
	return false
}

// ResolvedBy records whether the decision came from the tribunal or a human.
type ResolvedBy string

const (
	ResolvedAutomated     ResolvedBy = "AUTOMATED"
	ResolvedHumanOverride ResolvedBy = "HUMAN_OVERRIDE"
)

// Escalation reasons. The circuit breaker picks exactly one, by priority.
const (
	ReasonVeto                   = "Risk Officer veto"
	ReasonParticipantUnavailable = "Participant unavailable"
	ReasonNetworkTimeout         = "Network timeout"
	ReasonLowConsensus           = "Consensus below threshold"
	ReasonLowConfidence          = "Low confidence"
)

// Verdict is the tribunal's terminal decision. Immutable after creation,
// except that a human override may move ESCALATE to REFUND or DENY once.
type Verdict struct {
	Decision         Decision   `json:"decision"`
	ConsensusScore   float64    `json:"consensus_score"`
	EscalationReason string     `json:"escalation_reason,omitempty"`
	ResolvedBy       ResolvedBy `json:"resolved_by"`
}

// Terminal reports whether the verdict can no longer be overridden.
func (v Verdict) Terminal() bool {
	return v.Decision == DecisionRefund || v.Decision == DecisionDeny
}
