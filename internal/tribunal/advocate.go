package tribunal

import (
	"context"
	"fmt"
	"time"

	"github.com/paysentinel/sentinel/internal/domain"
)

// Advocate argues the customer's side. It leans toward the customer but is
// bound by the evidence: it concedes rather than argue against a consistent
// record, which is what keeps honest cases out of escalation.
type Advocate struct {
	cfg Config
	llm domain.LLMClient
}

func NewAdvocate(cfg Config, llm domain.LLMClient) *Advocate {
	return &Advocate{cfg: cfg, llm: llm}
}

func (a *Advocate) Decide(ctx context.Context, fact domain.FactRecord, prior []domain.Vote) (domain.Vote, error) {
	round := roundOf(prior)

	vote := domain.Vote{
		Participant: domain.ParticipantAdvocate,
		Round:       round,
		CastAt:      time.Now().UTC(),
	}

	if round == 1 {
		a.openingPosition(fact, &vote)
	} else {
		riskVote, _ := lastVoteBy(prior, domain.ParticipantRiskOfficer)
		a.reconsider(fact, riskVote, &vote)
	}

	prompt := fmt.Sprintf(
		"Round %d. Facts: bank=%s ledger=%s consistency=%s status=%s trust=%.2f amount=%s. Your position is %s at %.0f%% confidence. State your argument in two sentences.",
		round, fact.BankState, fact.LedgerState, fact.DataConsistency, fact.NetworkStatus,
		fact.CounterpartTrust, fact.Amount, vote.Position, vote.Confidence,
	)
	enrichRationale(ctx, a.llm, string(domain.ParticipantAdvocate), prompt, &vote)

	return vote, nil
}

func (a *Advocate) openingPosition(fact domain.FactRecord, vote *domain.Vote) {
	switch {
	case fact.NetworkStatus == domain.NetworkStatusTimeout:
		vote.Position = domain.PositionWait
		vote.Confidence = 50
		vote.Rationale = "The bank timed out, so nobody knows where the money is. I want the customer helped, but I cannot claim the payment failed."

	case fact.Consistent() && fact.LedgerState == domain.LedgerStateFound &&
		fact.NetworkStatus == domain.NetworkStatusFailed:
		// Claimed failure, but every record says the payment settled.
		vote.Position = domain.PositionDeny
		vote.Confidence = 80
		vote.Rationale = "The bank confirms settlement and the ledger holds the entry. I cannot advocate a refund that contradicts every record."

	case fact.Consistent() && fact.LedgerState == domain.LedgerStateFound:
		vote.Position = domain.PositionRefund
		vote.Confidence = 70 + 20*fact.CounterpartTrust
		vote.Rationale = "Settlement is confirmed and the records agree. Honor the customer's payment."

	case fact.Consistent() && fact.LedgerState == domain.LedgerStateMissing:
		vote.Position = domain.PositionRefund
		vote.Confidence = 85
		vote.Rationale = "The bank confirms failure and the ledger has no entry. The customer paid for nothing and deserves an immediate refund."

	default:
		vote.Position = domain.PositionWait
		vote.Confidence = 45
		vote.Rationale = "Bank and ledger disagree. A system error should not punish the customer, but I need the records reconciled first."
	}
}

// reconsider is the round-2 stance after reading the Risk Officer's argument.
// Consistent evidence with a ledger entry forces a concession at a fixed
// confidence; anything else restates the round-1 case.
func (a *Advocate) reconsider(fact domain.FactRecord, riskVote domain.Vote, vote *domain.Vote) {
	switch {
	case fact.Consistent() && fact.LedgerState == domain.LedgerStateFound &&
		fact.NetworkStatus != domain.NetworkStatusSuccess:
		vote.Position = domain.PositionDeny
		vote.Confidence = a.cfg.ConcessionConfidence
		vote.Rationale = "I concede. The bank settled the payment and the ledger corroborates it; the claim does not survive the evidence."

	case fact.Consistent() && fact.LedgerState == domain.LedgerStateMissing:
		vote.Position = domain.PositionRefund
		vote.Confidence = a.cfg.ConcessionConfidence
		vote.Rationale = "The Risk Officer's caution does not change the record: confirmed failure, empty ledger. A delayed refund only damages trust."

	case fact.Consistent():
		vote.Position = domain.PositionRefund
		vote.Confidence = 80
		vote.Rationale = "The records still agree and still favor the customer. I restate my case."

	default:
		vote.Position = domain.PositionWait
		vote.Confidence = 45
		if riskVote.Rationale != "" {
			vote.Rationale = "The Risk Officer has a point and the records still disagree. I will not guess with the customer's money."
		} else {
			vote.Rationale = "The records still disagree. I will not guess with the customer's money."
		}
	}
}
