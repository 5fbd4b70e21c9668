package tribunal

import (
	"github.com/paysentinel/sentinel/internal/domain"
)

// EvaluateBreaker applies the strategic-refusal triggers to a completed round.
// Triggers fire in priority order and the first match supplies the escalation
// reason; an empty reason means the Judge may issue the majority verdict.
// Participant failure (the second trigger in the priority order) never reaches
// this function: the orchestrator escalates on it before a round completes.
func EvaluateBreaker(cfg Config, fact domain.FactRecord, votes []domain.Vote, tally RoundTally) string {
	for _, v := range votes {
		if v.IsVeto {
			return domain.ReasonVeto
		}
	}
	if fact.NetworkStatus == domain.NetworkStatusTimeout {
		return domain.ReasonNetworkTimeout
	}
	if tally.Consensus < cfg.ConsensusThreshold {
		return domain.ReasonLowConsensus
	}
	if tally.MinConfidence < cfg.MinConfidence {
		return domain.ReasonLowConfidence
	}
	return ""
}
