package tribunal

import (
	"math"

	"github.com/paysentinel/sentinel/internal/domain"
)

// RoundTally is the Judge's arithmetic for one debate round: the
// confidence-weighted agreement between the two debaters.
type RoundTally struct {
	Consensus     float64
	MinConfidence float64
	Majority      domain.Alignment
}

// tallyRound computes consensus over the Advocate and Risk Officer votes.
// The majority alignment is the side holding more confidence weight; consensus
// is the share of total confidence behind that side, on a 0-100 scale. A WAIT
// vote contributes weight to the denominator but agrees with neither side.
func tallyRound(advocate, risk domain.Vote) RoundTally {
	var customer, merchant float64
	for _, v := range []domain.Vote{advocate, risk} {
		switch v.Position.Align() {
		case domain.AlignCustomer:
			customer += v.Confidence
		case domain.AlignMerchant:
			merchant += v.Confidence
		}
	}

	total := advocate.Confidence + risk.Confidence

	tally := RoundTally{
		MinConfidence: math.Min(advocate.Confidence, risk.Confidence),
		Majority:      domain.AlignMerchant,
	}
	if customer > merchant {
		tally.Majority = domain.AlignCustomer
	}
	if total > 0 {
		tally.Consensus = 100 * math.Max(customer, merchant) / total
	}
	return tally
}

// majorityDecision maps the winning side to the terminal decision.
func (t RoundTally) majorityDecision() domain.Decision {
	if t.Majority == domain.AlignCustomer {
		return domain.DecisionRefund
	}
	return domain.DecisionDeny
}
