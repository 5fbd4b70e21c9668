package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paysentinel/sentinel/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T, capacity int) *TransactionStore {
	t.Helper()
	s, err := Open(t.TempDir(), capacity, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRecord(txID string, decision domain.Decision) *domain.TransactionRecord {
	now := time.Now().UTC()
	return &domain.TransactionRecord{
		RecordID: uuid.New(),
		Facts: domain.FactRecord{
			TransactionID:    txID,
			UserID:           "cust_1",
			Amount:           decimal.NewFromInt(4999),
			CounterpartTrust: 0.9,
			NetworkStatus:    domain.NetworkStatusSuccess,
			BankState:        domain.BankStateSuccess,
			LedgerState:      domain.LedgerStateFound,
			DataConsistency:  domain.DataConsistent,
		},
		Votes: []domain.Vote{
			{Participant: domain.ParticipantAdvocate, Round: 1, Position: domain.PositionRefund, Confidence: 88, CastAt: now},
		},
		Verdict: domain.Verdict{
			Decision:       decision,
			ConsensusScore: 100,
			ResolvedBy:     domain.ResolvedAutomated,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestAppendAndGet(t *testing.T) {
	s := openTestStore(t, 10)
	ctx := context.Background()

	rec := testRecord("TX-001", domain.DecisionRefund)
	id, err := s.Append(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, rec.RecordID.String(), id)

	got, err := s.Get(ctx, "TX-001")
	require.NoError(t, err)
	assert.Equal(t, rec.RecordID, got.RecordID)
	assert.Equal(t, domain.DecisionRefund, got.Verdict.Decision)
	assert.True(t, rec.Facts.Amount.Equal(got.Facts.Amount))
	assert.Len(t, got.Votes, 1)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t, 10)

	_, err := s.Get(context.Background(), "TX-MISSING")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendDuplicateRejected(t *testing.T) {
	s := openTestStore(t, 10)
	ctx := context.Background()

	_, err := s.Append(ctx, testRecord("TX-001", domain.DecisionRefund))
	require.NoError(t, err)

	_, err = s.Append(ctx, testRecord("TX-001", domain.DecisionDeny))
	assert.ErrorIs(t, err, ErrDuplicateTransaction)

	// The original verdict is untouched.
	got, err := s.Get(ctx, "TX-001")
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionRefund, got.Verdict.Decision)
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t, 10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Append(ctx, testRecord(fmt.Sprintf("TX-%03d", i), domain.DecisionRefund))
		require.NoError(t, err)
	}

	records, err := s.List(ctx, domain.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "TX-002", records[0].Facts.TransactionID)
	assert.Equal(t, "TX-000", records[2].Facts.TransactionID)
}

func TestListFilterAndLimit(t *testing.T) {
	s := openTestStore(t, 10)
	ctx := context.Background()

	decisions := []domain.Decision{
		domain.DecisionRefund,
		domain.DecisionDeny,
		domain.DecisionEscalate,
		domain.DecisionRefund,
	}
	for i, d := range decisions {
		_, err := s.Append(ctx, testRecord(fmt.Sprintf("TX-%03d", i), d))
		require.NoError(t, err)
	}

	refunds, err := s.List(ctx, domain.RecordFilter{Decision: domain.DecisionRefund})
	require.NoError(t, err)
	require.Len(t, refunds, 2)
	assert.Equal(t, "TX-003", refunds[0].Facts.TransactionID)

	limited, err := s.List(ctx, domain.RecordFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestCapacityEvictsOldest(t *testing.T) {
	s := openTestStore(t, 3)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := s.Append(ctx, testRecord(fmt.Sprintf("TX-%03d", i), domain.DecisionRefund))
		require.NoError(t, err)
	}

	// Exactly the oldest record is gone.
	_, err := s.Get(ctx, "TX-000")
	assert.ErrorIs(t, err, ErrNotFound)

	records, err := s.List(ctx, domain.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "TX-003", records[0].Facts.TransactionID)
	assert.Equal(t, "TX-001", records[2].Facts.TransactionID)

	// The evicted transaction ID is free for reuse.
	_, err = s.Append(ctx, testRecord("TX-000", domain.DecisionDeny))
	require.NoError(t, err)
}

func TestOverride(t *testing.T) {
	s := openTestStore(t, 10)
	ctx := context.Background()

	rec := testRecord("TX-001", domain.DecisionEscalate)
	rec.Verdict.EscalationReason = domain.ReasonLowConsensus
	_, err := s.Append(ctx, rec)
	require.NoError(t, err)

	got, err := s.Override(ctx, "TX-001", domain.DecisionRefund)
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionRefund, got.Verdict.Decision)
	assert.Equal(t, domain.ResolvedHumanOverride, got.Verdict.ResolvedBy)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	// A second override hits a verdict that is no longer ESCALATE.
	_, err = s.Override(ctx, "TX-001", domain.DecisionDeny)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOverrideRejectsBadTargets(t *testing.T) {
	s := openTestStore(t, 10)
	ctx := context.Background()

	_, err := s.Append(ctx, testRecord("TX-001", domain.DecisionRefund))
	require.NoError(t, err)

	// Terminal verdicts are immutable.
	_, err = s.Override(ctx, "TX-001", domain.DecisionDeny)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// ESCALATE is not a valid override decision.
	_, err = s.Override(ctx, "TX-001", domain.DecisionEscalate)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = s.Override(ctx, "TX-MISSING", domain.DecisionRefund)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClear(t *testing.T) {
	s := openTestStore(t, 10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Append(ctx, testRecord(fmt.Sprintf("TX-%03d", i), domain.DecisionRefund))
		require.NoError(t, err)
	}

	removed, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	records, err := s.List(ctx, domain.RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)

	// Cleared IDs can be appended again.
	_, err = s.Append(ctx, testRecord("TX-000", domain.DecisionRefund))
	require.NoError(t, err)
}

func TestDurabilityAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir, 10, zap.NewNop())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := s.Append(ctx, testRecord(fmt.Sprintf("TX-%03d", i), domain.DecisionEscalate))
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())

	s, err = Open(dir, 10, zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	records, err := s.List(ctx, domain.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "TX-002", records[0].Facts.TransactionID)

	// Duplicate detection survives the restart.
	_, err = s.Append(ctx, testRecord("TX-001", domain.DecisionRefund))
	assert.ErrorIs(t, err, ErrDuplicateTransaction)

	// New appends continue the sequence instead of colliding with old keys.
	_, err = s.Append(ctx, testRecord("TX-NEW", domain.DecisionRefund))
	require.NoError(t, err)
	records, err = s.List(ctx, domain.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "TX-NEW", records[0].Facts.TransactionID)
}

func TestConcurrentAppends(t *testing.T) {
	s := openTestStore(t, 100)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Append(ctx, testRecord(fmt.Sprintf("TX-%03d", i), domain.DecisionRefund))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "append %d", i)
	}

	records, err := s.List(ctx, domain.RecordFilter{})
	require.NoError(t, err)
	assert.Len(t, records, n)
}
