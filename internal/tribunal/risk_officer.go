package tribunal

import (
	"context"
	"fmt"
	"time"

	"github.com/paysentinel/sentinel/internal/domain"
)

// RiskOfficer guards the money. It is the only participant allowed to veto,
// and it does so unconditionally on an unknown bank state: refunding a
// transaction that may still settle is a double spend.
type RiskOfficer struct {
	cfg Config
	llm domain.LLMClient
}

func NewRiskOfficer(cfg Config, llm domain.LLMClient) *RiskOfficer {
	return &RiskOfficer{cfg: cfg, llm: llm}
}

func (r *RiskOfficer) Decide(ctx context.Context, fact domain.FactRecord, prior []domain.Vote) (domain.Vote, error) {
	vote := domain.Vote{
		Participant: domain.ParticipantRiskOfficer,
		Round:       roundOf(prior),
		CastAt:      time.Now().UTC(),
	}

	advVote, _ := lastVoteBy(prior, domain.ParticipantAdvocate)
	r.assess(fact, advVote, &vote)

	prompt := fmt.Sprintf(
		"Round %d. Facts: bank=%s ledger=%s consistency=%s status=%s amount=%s. The Advocate argues %s at %.0f%% confidence. Your position is %s at %.0f%% confidence. State your risk assessment in two sentences.",
		vote.Round, fact.BankState, fact.LedgerState, fact.DataConsistency, fact.NetworkStatus,
		fact.Amount, advVote.Position, advVote.Confidence, vote.Position, vote.Confidence,
	)
	enrichRationale(ctx, r.llm, string(domain.ParticipantRiskOfficer), prompt, &vote)

	return vote, nil
}

func (r *RiskOfficer) assess(fact domain.FactRecord, advVote domain.Vote, vote *domain.Vote) {
	switch {
	case fact.NetworkStatus == domain.NetworkStatusTimeout:
		// The 504 rule. A timeout is an unknown state, not a failed one.
		vote.Position = domain.PositionObject
		vote.Confidence = 95
		vote.IsVeto = true
		vote.Rationale = "The bank returned a gateway timeout: the transaction may yet settle. Refunding now risks a double spend. I am blocking any automated outcome until the bank state is confirmed."

	case fact.Consistent() && fact.LedgerState == domain.LedgerStateFound &&
		fact.NetworkStatus == domain.NetworkStatusFailed:
		// Settlement is proven but the claim says otherwise.
		if advVote.Position.Align() == domain.AlignCustomer {
			vote.Position = domain.PositionObject
			vote.Confidence = 90
			vote.IsVeto = true
			vote.Rationale = "The records prove settlement, yet the Advocate argues for a refund against the evidence. No loss occurred. I veto: this pattern is how double spends happen."
		} else {
			vote.Position = domain.PositionDeny
			vote.Confidence = 90
			vote.Rationale = "Settlement confirmed by bank and ledger. The claim is invalid; deny it."
		}

	case fact.Consistent() && fact.LedgerState == domain.LedgerStateMissing:
		vote.Position = domain.PositionRefund
		vote.Confidence = 80
		vote.Rationale = "Bank confirms the failure and the ledger is empty. There is no double-spend exposure; the refund is safe."

	case fact.Consistent() && fact.LedgerState == domain.LedgerStateFound:
		vote.Position = domain.PositionRefund
		vote.Confidence = 80
		vote.Rationale = "Clean settlement, corroborated records, no dispute signal. No exposure in honoring the payment."

	default:
		vote.Position = domain.PositionObject
		vote.Confidence = 65
		vote.Rationale = "Bank and ledger tell different stories. Until the records reconcile, I object to moving any money."
	}
}
