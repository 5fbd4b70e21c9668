package tribunal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paysentinel/sentinel/internal/domain"
	"github.com/paysentinel/sentinel/internal/facts"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// stubStrategy is a scripted participant for exercising orchestrator paths
// the rule-based participants never take.
type stubStrategy struct {
	vote  domain.Vote
	err   error
	sleep time.Duration // plain sleep, deliberately ignoring ctx
}

func (s stubStrategy) Decide(_ context.Context, _ domain.FactRecord, _ []domain.Vote) (domain.Vote, error) {
	if s.sleep > 0 {
		time.Sleep(s.sleep)
	}
	return s.vote, s.err
}

func newTestOrchestrator() *Orchestrator {
	cfg := DefaultConfig()
	return NewOrchestrator(NewAdvocate(cfg, nil), NewRiskOfficer(cfg, nil), cfg, zap.NewNop())
}

func testFact(status domain.NetworkStatus, trust float64, amount int64) domain.FactRecord {
	ev := facts.NewDeterministicSource().CrossCheck("TX-TEST", status, trust)
	return domain.FactRecord{
		TransactionID:    "TX-TEST",
		UserID:           "cust_1",
		Amount:           decimal.NewFromInt(amount),
		CounterpartTrust: trust,
		NetworkStatus:    status,
		BankState:        ev.Bank,
		LedgerState:      ev.Ledger,
		DataConsistency:  facts.Consistency(ev),
	}
}

func TestAdjudicate_CleanSettlementRefunds(t *testing.T) {
	o := newTestOrchestrator()

	rec := o.Adjudicate(context.Background(), testFact(domain.NetworkStatusSuccess, 0.9, 4999))

	if rec.Verdict.Decision != domain.DecisionRefund {
		t.Fatalf("expected REFUND, got %s (%s)", rec.Verdict.Decision, rec.Verdict.EscalationReason)
	}
	if rec.Verdict.ConsensusScore < 60 {
		t.Fatalf("expected consensus >= 60, got %.1f", rec.Verdict.ConsensusScore)
	}
	if len(rec.Votes) != 3 {
		t.Fatalf("expected 3 votes after a round-1 terminal verdict, got %d", len(rec.Votes))
	}
	if rec.Verdict.EscalationReason != "" {
		t.Fatalf("expected no escalation reason, got %q", rec.Verdict.EscalationReason)
	}
}

func TestAdjudicate_FraudPatternDenied(t *testing.T) {
	o := newTestOrchestrator()

	rec := o.Adjudicate(context.Background(), testFact(domain.NetworkStatusFailed, 0.1, 4999))

	if rec.Verdict.Decision != domain.DecisionDeny {
		t.Fatalf("expected DENY, got %s (%s)", rec.Verdict.Decision, rec.Verdict.EscalationReason)
	}
	if rec.Verdict.ConsensusScore < 60 {
		t.Fatalf("expected consensus >= 60, got %.1f", rec.Verdict.ConsensusScore)
	}
	for _, v := range rec.Votes {
		if v.Participant == domain.ParticipantJudge {
			continue
		}
		if v.Confidence < 77 || v.Confidence > 90 {
			t.Fatalf("expected debater confidence in the high band, got %.1f from %s", v.Confidence, v.Participant)
		}
	}
}

func TestAdjudicate_TimeoutEscalates(t *testing.T) {
	o := newTestOrchestrator()

	rec := o.Adjudicate(context.Background(), testFact(domain.NetworkStatusTimeout, 0.85, 5000))

	if rec.Verdict.Decision != domain.DecisionEscalate {
		t.Fatalf("expected ESCALATE, got %s", rec.Verdict.Decision)
	}
	reason := rec.Verdict.EscalationReason
	if reason != domain.ReasonVeto && reason != domain.ReasonNetworkTimeout {
		t.Fatalf("expected a veto or timeout reason, got %q", reason)
	}

	var vetoed bool
	for _, v := range rec.Votes {
		if v.IsVeto {
			if v.Participant != domain.ParticipantRiskOfficer {
				t.Fatalf("only the Risk Officer may veto, got veto from %s", v.Participant)
			}
			vetoed = true
		}
	}
	if !vetoed {
		t.Fatal("expected the Risk Officer to veto on a bank timeout")
	}
}

func TestAdjudicate_HonestFailureRefunds(t *testing.T) {
	o := newTestOrchestrator()

	rec := o.Adjudicate(context.Background(), testFact(domain.NetworkStatusFailed, 0.8, 200))

	if rec.Verdict.Decision != domain.DecisionRefund {
		t.Fatalf("expected REFUND for a confirmed failure, got %s (%s)", rec.Verdict.Decision, rec.Verdict.EscalationReason)
	}
}

func TestAdjudicate_AmbiguousRecordsRunRoundTwoThenEscalate(t *testing.T) {
	o := newTestOrchestrator()

	rec := o.Adjudicate(context.Background(), testFact(domain.NetworkStatusFailed, 0.45, 750))

	if rec.Verdict.Decision != domain.DecisionEscalate {
		t.Fatalf("expected ESCALATE, got %s", rec.Verdict.Decision)
	}
	if rec.Verdict.EscalationReason != domain.ReasonLowConsensus {
		t.Fatalf("expected %q, got %q", domain.ReasonLowConsensus, rec.Verdict.EscalationReason)
	}
	if len(rec.Votes) != 5 {
		t.Fatalf("expected 5 votes after a full second round, got %d", len(rec.Votes))
	}

	var rounds []int
	for _, v := range rec.Votes {
		rounds = append(rounds, v.Round)
	}
	if rounds[2] != 2 || rounds[3] != 2 {
		t.Fatalf("expected round-2 debater votes, got rounds %v", rounds)
	}
}

func TestAdjudicate_VetoBeatsAnyAdvocateConfidence(t *testing.T) {
	cfg := DefaultConfig()
	// An advocate arguing refund at full confidence against settled evidence.
	advocate := stubStrategy{vote: domain.Vote{
		Participant: domain.ParticipantAdvocate,
		Round:       1,
		Position:    domain.PositionRefund,
		Confidence:  99,
		Rationale:   "the customer is always right",
	}}
	o := NewOrchestrator(advocate, NewRiskOfficer(cfg, nil), cfg, zap.NewNop())

	rec := o.Adjudicate(context.Background(), testFact(domain.NetworkStatusFailed, 0.1, 4999))

	if rec.Verdict.Decision != domain.DecisionEscalate {
		t.Fatalf("expected ESCALATE, got %s", rec.Verdict.Decision)
	}
	if rec.Verdict.EscalationReason != domain.ReasonVeto {
		t.Fatalf("expected %q, got %q", domain.ReasonVeto, rec.Verdict.EscalationReason)
	}
}

func TestAdjudicate_ParticipantErrorEscalates(t *testing.T) {
	cfg := DefaultConfig()
	advocate := stubStrategy{err: errors.New("model backend down")}
	o := NewOrchestrator(advocate, NewRiskOfficer(cfg, nil), cfg, zap.NewNop())

	rec := o.Adjudicate(context.Background(), testFact(domain.NetworkStatusSuccess, 0.9, 100))

	if rec.Verdict.Decision != domain.DecisionEscalate {
		t.Fatalf("expected ESCALATE on participant failure, got %s", rec.Verdict.Decision)
	}
	if rec.Verdict.EscalationReason != domain.ReasonParticipantUnavailable {
		t.Fatalf("expected %q, got %q", domain.ReasonParticipantUnavailable, rec.Verdict.EscalationReason)
	}
}

func TestAdjudicate_HungParticipantIsAbandoned(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticipantTimeout = 20 * time.Millisecond
	advocate := stubStrategy{
		sleep: 500 * time.Millisecond,
		vote:  domain.Vote{Position: domain.PositionRefund, Confidence: 90},
	}
	o := NewOrchestrator(advocate, NewRiskOfficer(cfg, nil), cfg, zap.NewNop())

	start := time.Now()
	rec := o.Adjudicate(context.Background(), testFact(domain.NetworkStatusSuccess, 0.9, 100))
	elapsed := time.Since(start)

	if rec.Verdict.Decision != domain.DecisionEscalate {
		t.Fatalf("expected ESCALATE on participant timeout, got %s", rec.Verdict.Decision)
	}
	if rec.Verdict.EscalationReason != domain.ReasonParticipantUnavailable {
		t.Fatalf("expected %q, got %q", domain.ReasonParticipantUnavailable, rec.Verdict.EscalationReason)
	}
	if elapsed > 400*time.Millisecond {
		t.Fatalf("expected the orchestrator to abandon the hung participant, took %s", elapsed)
	}
}

func TestAdjudicate_ConsensusAlwaysInRange(t *testing.T) {
	o := newTestOrchestrator()

	statuses := []domain.NetworkStatus{
		domain.NetworkStatusSuccess,
		domain.NetworkStatusFailed,
		domain.NetworkStatusNotFound,
		domain.NetworkStatusTimeout,
	}
	trusts := []float64{0, 0.15, 0.45, 0.6, 0.85, 1}

	for _, status := range statuses {
		for _, trust := range trusts {
			rec := o.Adjudicate(context.Background(), testFact(status, trust, 500))
			score := rec.Verdict.ConsensusScore
			if score < 0 || score > 100 {
				t.Fatalf("status=%s trust=%v: consensus %.2f out of range", status, trust, score)
			}
			if rec.Verdict.Decision == domain.DecisionEscalate && rec.Verdict.EscalationReason == "" {
				t.Fatalf("status=%s trust=%v: escalation without a reason", status, trust)
			}
			if rec.Verdict.Decision != domain.DecisionEscalate && rec.Verdict.EscalationReason != "" {
				t.Fatalf("status=%s trust=%v: terminal verdict carries escalation reason %q", status, trust, rec.Verdict.EscalationReason)
			}
		}
	}
}

func TestAdvocate_ConcedesOnConsistentLedgerEvidence(t *testing.T) {
	cfg := DefaultConfig()
	advocate := NewAdvocate(cfg, nil)
	fact := testFact(domain.NetworkStatusFailed, 0.1, 4999) // settled, ledger entry exists

	prior := []domain.Vote{
		{Participant: domain.ParticipantAdvocate, Round: 1, Position: domain.PositionRefund, Confidence: 70},
		{Participant: domain.ParticipantRiskOfficer, Round: 1, Position: domain.PositionDeny, Confidence: 90},
	}

	vote, err := advocate.Decide(context.Background(), fact, prior)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if vote.Round != 2 {
		t.Fatalf("expected a round-2 vote, got round %d", vote.Round)
	}
	if vote.Position != domain.PositionDeny {
		t.Fatalf("expected the advocate to concede to DENY, got %s", vote.Position)
	}
	if vote.Confidence != cfg.ConcessionConfidence {
		t.Fatalf("expected concession confidence %.1f, got %.1f", cfg.ConcessionConfidence, vote.Confidence)
	}
}

func TestRiskOfficer_VetoOnlyOnTimeoutOrContradiction(t *testing.T) {
	cfg := DefaultConfig()
	risk := NewRiskOfficer(cfg, nil)

	// Clean settlement: no veto.
	vote, err := risk.Decide(context.Background(), testFact(domain.NetworkStatusSuccess, 0.9, 100), []domain.Vote{
		{Participant: domain.ParticipantAdvocate, Round: 1, Position: domain.PositionRefund, Confidence: 88},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if vote.IsVeto {
		t.Fatal("expected no veto on a clean settlement")
	}

	// Timeout: unconditional veto.
	vote, err = risk.Decide(context.Background(), testFact(domain.NetworkStatusTimeout, 0.9, 100), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !vote.IsVeto {
		t.Fatal("expected a veto on a bank timeout")
	}
}
