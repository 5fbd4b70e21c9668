package tribunal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paysentinel/sentinel/internal/domain"
	"go.uber.org/zap"
)

// Orchestrator runs the fixed two-round tribunal sequence and issues the
// verdict. It never returns an error: every internal failure resolves to
// ESCALATE, and a REFUND or DENY is only ever issued with a full vote trail.
type Orchestrator struct {
	advocate Strategy
	risk     Strategy
	cfg      Config
	logger   *zap.Logger
}

func NewOrchestrator(advocate, risk Strategy, cfg Config, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		advocate: advocate,
		risk:     risk,
		cfg:      cfg,
		logger:   logger,
	}
}

// Adjudicate runs the tribunal state machine:
//
//	ROUND1_ADVOCATE -> ROUND1_RISK -> ROUND1_JUDGE_CHECK
//	  -> terminal verdict, or
//	  -> ROUND2_ADVOCATE -> ROUND2_RISK -> FINAL_JUDGE -> verdict
//
// A veto, a network timeout, or a participant failure short-circuits to
// ESCALATE at the point it is detected.
func (o *Orchestrator) Adjudicate(ctx context.Context, fact domain.FactRecord) *domain.TransactionRecord {
	var votes []domain.Vote

	advVote, err := callBounded(ctx, o.cfg, o.advocate, fact, nil)
	if err != nil {
		o.logParticipantFailure(fact, domain.ParticipantAdvocate, 1, err)
		return o.escalate(fact, votes, RoundTally{}, 1, domain.ReasonParticipantUnavailable)
	}
	votes = append(votes, advVote)

	riskVote, err := callBounded(ctx, o.cfg, o.risk, fact, votes)
	if err != nil {
		o.logParticipantFailure(fact, domain.ParticipantRiskOfficer, 1, err)
		return o.escalate(fact, votes, RoundTally{}, 1, domain.ReasonParticipantUnavailable)
	}
	votes = append(votes, riskVote)

	tally := tallyRound(advVote, riskVote)
	switch breach := EvaluateBreaker(o.cfg, fact, votes, tally); breach {
	case "":
		return o.issue(fact, votes, tally, 1)
	case domain.ReasonVeto, domain.ReasonNetworkTimeout:
		// Not recoverable by more debate.
		return o.escalate(fact, votes, tally, 1, breach)
	}

	// Round 2: both debaters reconsider with the full round-1 trail in view.
	advVote2, err := callBounded(ctx, o.cfg, o.advocate, fact, votes)
	if err != nil {
		o.logParticipantFailure(fact, domain.ParticipantAdvocate, 2, err)
		return o.escalate(fact, votes, tally, 2, domain.ReasonParticipantUnavailable)
	}
	votes = append(votes, advVote2)

	riskVote2, err := callBounded(ctx, o.cfg, o.risk, fact, votes)
	if err != nil {
		o.logParticipantFailure(fact, domain.ParticipantRiskOfficer, 2, err)
		return o.escalate(fact, votes, tally, 2, domain.ReasonParticipantUnavailable)
	}
	votes = append(votes, riskVote2)

	// The final Judge scores round-2 votes only.
	tally = tallyRound(advVote2, riskVote2)
	if breach := EvaluateBreaker(o.cfg, fact, votes, tally); breach != "" {
		return o.escalate(fact, votes, tally, 2, breach)
	}
	return o.issue(fact, votes, tally, 2)
}

// issue renders the majority-backed terminal verdict.
func (o *Orchestrator) issue(fact domain.FactRecord, votes []domain.Vote, tally RoundTally, round int) *domain.TransactionRecord {
	decision := tally.majorityDecision()

	votes = append(votes, domain.Vote{
		Participant: domain.ParticipantJudge,
		Round:       round,
		Position:    domain.Position(decision),
		Confidence:  tally.Consensus,
		Rationale: fmt.Sprintf("Consensus reached at %.1f%% with minimum confidence %.1f%%. The majority backs %s.",
			tally.Consensus, tally.MinConfidence, decision),
		CastAt: time.Now().UTC(),
	})

	rec := o.record(fact, votes, domain.Verdict{
		Decision:       decision,
		ConsensusScore: tally.Consensus,
		ResolvedBy:     domain.ResolvedAutomated,
	})

	o.logger.Info("verdict issued",
		zap.String("transaction_id", fact.TransactionID),
		zap.String("decision", string(decision)),
		zap.Float64("consensus", tally.Consensus),
		zap.Int("round", round),
	)
	return rec
}

// escalate renders the strategic refusal.
func (o *Orchestrator) escalate(fact domain.FactRecord, votes []domain.Vote, tally RoundTally, round int, reason string) *domain.TransactionRecord {
	votes = append(votes, domain.Vote{
		Participant: domain.ParticipantJudge,
		Round:       round,
		Position:    domain.PositionWait,
		Confidence:  100 - tally.Consensus,
		Rationale:   "Circuit breaker engaged: " + reason + ". Holding for human review rather than guessing.",
		CastAt:      time.Now().UTC(),
	})

	rec := o.record(fact, votes, domain.Verdict{
		Decision:         domain.DecisionEscalate,
		ConsensusScore:   tally.Consensus,
		EscalationReason: reason,
		ResolvedBy:       domain.ResolvedAutomated,
	})

	o.logger.Info("verdict escalated",
		zap.String("transaction_id", fact.TransactionID),
		zap.String("reason", reason),
		zap.Float64("consensus", tally.Consensus),
		zap.Int("round", round),
	)
	return rec
}

func (o *Orchestrator) record(fact domain.FactRecord, votes []domain.Vote, verdict domain.Verdict) *domain.TransactionRecord {
	now := time.Now().UTC()
	return &domain.TransactionRecord{
		RecordID:  uuid.New(),
		Facts:     fact,
		Votes:     votes,
		Verdict:   verdict,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (o *Orchestrator) logParticipantFailure(fact domain.FactRecord, p domain.Participant, round int, err error) {
	o.logger.Warn("participant unavailable",
		zap.String("transaction_id", fact.TransactionID),
		zap.String("participant", string(p)),
		zap.Int("round", round),
		zap.Error(err),
	)
}
