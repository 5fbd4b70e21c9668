package service

import (
	"context"
	"errors"

	"github.com/paysentinel/sentinel/internal/domain"
	"github.com/paysentinel/sentinel/internal/facts"
	"github.com/paysentinel/sentinel/internal/store"
	"github.com/paysentinel/sentinel/internal/tribunal"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrDuplicateTransaction = errors.New("transaction already processed")
	ErrInvalidTransition    = errors.New("only escalated verdicts can be overridden")
	ErrInvalidDecision      = errors.New("override decision must be REFUND or DENY")
)

// DisputeService runs the full pipeline: validate and extract facts, hold the
// tribunal, persist the record. The webhook handler does nothing but call it.
type DisputeService struct {
	extractor *facts.Extractor
	orch      *tribunal.Orchestrator
	txStore   domain.TransactionStore
	logger    *zap.Logger
}

func NewDisputeService(extractor *facts.Extractor, orch *tribunal.Orchestrator, txStore domain.TransactionStore, logger *zap.Logger) *DisputeService {
	return &DisputeService{
		extractor: extractor,
		orch:      orch,
		txStore:   txStore,
		logger:    logger,
	}
}

// Process resolves one webhook signal to a persisted verdict. Validation
// failures return before any tribunal work; everything past extraction is
// fail-safe and always yields a record.
func (s *DisputeService) Process(ctx context.Context, sig facts.RawSignal) (*domain.TransactionRecord, error) {
	fact, err := s.extractor.Extract(sig)
	if err != nil {
		return nil, err
	}

	// Cheap pre-check; the append below re-checks inside the store's lock.
	if _, err := s.txStore.Get(ctx, fact.TransactionID); err == nil {
		return nil, ErrDuplicateTransaction
	}

	rec := s.orch.Adjudicate(ctx, fact)

	if _, err := s.txStore.Append(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicateTransaction) {
			return nil, ErrDuplicateTransaction
		}
		return nil, err
	}

	s.logger.Info("dispute processed",
		zap.String("transaction_id", fact.TransactionID),
		zap.String("decision", string(rec.Verdict.Decision)),
		zap.Int("votes", len(rec.Votes)),
	)
	return rec, nil
}

func (s *DisputeService) Get(ctx context.Context, transactionID string) (*domain.TransactionRecord, error) {
	rec, err := s.txStore.Get(ctx, transactionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *DisputeService) List(ctx context.Context, filter domain.RecordFilter) ([]domain.TransactionRecord, error) {
	return s.txStore.List(ctx, filter)
}

// Override applies a human decision to an escalated record, exactly once.
func (s *DisputeService) Override(ctx context.Context, transactionID string, decision domain.Decision) (*domain.TransactionRecord, error) {
	if decision != domain.DecisionRefund && decision != domain.DecisionDeny {
		return nil, ErrInvalidDecision
	}
	rec, err := s.txStore.Override(ctx, transactionID, decision)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrTransactionNotFound
		case errors.Is(err, store.ErrInvalidTransition):
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	return rec, nil
}

func (s *DisputeService) Clear(ctx context.Context) (int, error) {
	return s.txStore.Clear(ctx)
}

// Stats are the simple counts the monitoring console shows, plus the money
// held back from uncertain or denied outcomes.
type Stats struct {
	Total       int             `json:"total"`
	Refunded    int             `json:"refunded"`
	Denied      int             `json:"denied"`
	Escalated   int             `json:"escalated"`
	MoneyAtRisk decimal.Decimal `json:"money_at_risk"`
}

func (s *DisputeService) Stats(ctx context.Context) (*Stats, error) {
	records, err := s.txStore.List(ctx, domain.RecordFilter{})
	if err != nil {
		return nil, err
	}

	stats := &Stats{Total: len(records), MoneyAtRisk: decimal.Zero}
	for _, rec := range records {
		switch rec.Verdict.Decision {
		case domain.DecisionRefund:
			stats.Refunded++
		case domain.DecisionDeny:
			stats.Denied++
			stats.MoneyAtRisk = stats.MoneyAtRisk.Add(rec.Facts.Amount)
		case domain.DecisionEscalate:
			stats.Escalated++
			stats.MoneyAtRisk = stats.MoneyAtRisk.Add(rec.Facts.Amount)
		}
	}
	return stats, nil
}
