package tribunal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paysentinel/sentinel/internal/domain"
)

var ErrParticipantUnavailable = errors.New("participant unavailable")

// Strategy produces one participant's vote from the fact record and the votes
// cast so far. How a strategy reasons is its own business; the orchestrator
// only consumes its structured output.
type Strategy interface {
	Decide(ctx context.Context, fact domain.FactRecord, prior []domain.Vote) (domain.Vote, error)
}

// Config holds the circuit-breaker thresholds and the participant time budget.
// These are policy knobs, not invariants: tune them per deployment.
type Config struct {
	ConsensusThreshold   float64
	MinConfidence        float64
	ConcessionConfidence float64
	ParticipantTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		ConsensusThreshold:   60,
		MinConfidence:        40,
		ConcessionConfidence: 85,
		ParticipantTimeout:   20 * time.Second,
	}
}

// callBounded runs a strategy under the configured time budget. A strategy
// that overruns is abandoned, not awaited: the caller proceeds straight to
// the fail-safe path and never retries.
func callBounded(ctx context.Context, cfg Config, s Strategy, fact domain.FactRecord, prior []domain.Vote) (domain.Vote, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ParticipantTimeout)
	defer cancel()

	type outcome struct {
		vote domain.Vote
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		v, err := s.Decide(ctx, fact, prior)
		done <- outcome{vote: v, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return domain.Vote{}, fmt.Errorf("%w: %v", ErrParticipantUnavailable, out.err)
		}
		return out.vote, nil
	case <-ctx.Done():
		return domain.Vote{}, fmt.Errorf("%w: %v", ErrParticipantUnavailable, ctx.Err())
	}
}

// roundOf infers which debate round a strategy is being asked to join: prior
// votes from both debaters mean the first round already happened.
func roundOf(prior []domain.Vote) int {
	var sawAdvocate, sawRisk bool
	for _, v := range prior {
		switch v.Participant {
		case domain.ParticipantAdvocate:
			sawAdvocate = true
		case domain.ParticipantRiskOfficer:
			sawRisk = true
		}
	}
	if sawAdvocate && sawRisk {
		return 2
	}
	return 1
}

// lastVoteBy returns the most recent vote by the given participant, if any.
func lastVoteBy(prior []domain.Vote, p domain.Participant) (domain.Vote, bool) {
	for i := len(prior) - 1; i >= 0; i-- {
		if prior[i].Participant == p {
			return prior[i], true
		}
	}
	return domain.Vote{}, false
}

// enrichRationale asks the optional LLM for persona-flavored deliberation
// text. The vote's position and confidence are already fixed; on any failure
// the deterministic rationale stands.
func enrichRationale(ctx context.Context, client domain.LLMClient, persona string, prompt string, vote *domain.Vote) {
	if client == nil {
		return
	}
	text, err := client.Deliberate(ctx, persona, prompt)
	if err != nil || text == "" {
		return
	}
	vote.Rationale = text
}
