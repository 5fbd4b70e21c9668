package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/paysentinel/sentinel/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateTransaction = errors.New("duplicate transaction_id")
	ErrInvalidTransition    = errors.New("invalid verdict transition")
)

const DefaultCapacity = 1000

var (
	recPrefix = []byte("rec/")
	idPrefix  = []byte("tx/")
)

// TransactionStore is the durable, size-bounded dispute log, backed by an
// embedded Badger database. Records are keyed by a monotonic sequence so
// iteration order is append order; a secondary index maps transaction IDs to
// sequences. All mutations run under one exclusive lock, and eviction happens
// in the same Badger transaction as the insert that triggered it, so readers
// see either the pre- or post-write state but never a torn one.
type TransactionStore struct {
	db       *badger.DB
	logger   *zap.Logger
	capacity int

	mu      sync.Mutex
	nextSeq uint64
	order   []uint64          // live sequences, oldest first
	idBySeq map[uint64]string // for index cleanup on eviction
	seqByID map[string]uint64
}

// Open opens (or creates) the store at dir and rebuilds the in-memory index
// from whatever survived the last run.
func Open(dir string, capacity int, logger *zap.Logger) (*TransactionStore, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}

	s := &TransactionStore{
		db:       db,
		logger:   logger,
		capacity: capacity,
		idBySeq:  make(map[uint64]string),
		seqByID:  make(map[string]uint64),
	}

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(recPrefix); it.ValidForPrefix(recPrefix); it.Next() {
			item := it.Item()
			seq := seqFromKey(item.Key())
			var rec domain.TransactionRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode record %d: %w", seq, err)
			}
			s.order = append(s.order, seq)
			s.idBySeq[seq] = rec.Facts.TransactionID
			s.seqByID[rec.Facts.TransactionID] = seq
			if seq >= s.nextSeq {
				s.nextSeq = seq + 1
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("transaction store opened",
		zap.String("dir", dir),
		zap.Int("records", len(s.order)),
		zap.Int("capacity", capacity),
	)
	return s, nil
}

func (s *TransactionStore) Close() error {
	return s.db.Close()
}

// Append persists a completed record, evicting the oldest records in the same
// write transaction when the capacity bound would be exceeded.
func (s *TransactionStore) Append(_ context.Context, rec *domain.TransactionRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txID := rec.Facts.TransactionID
	if _, exists := s.seqByID[txID]; exists {
		return "", ErrDuplicateTransaction
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}

	seq := s.nextSeq
	evict := 0
	if len(s.order)+1 > s.capacity {
		evict = len(s.order) + 1 - s.capacity
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(recKey(seq), data); err != nil {
			return err
		}
		if err := txn.Set(idKey(txID), seqBytes(seq)); err != nil {
			return err
		}
		for i := 0; i < evict; i++ {
			old := s.order[i]
			if err := txn.Delete(recKey(old)); err != nil {
				return err
			}
			if err := txn.Delete(idKey(s.idBySeq[old])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("append record: %w", err)
	}

	for i := 0; i < evict; i++ {
		old := s.order[i]
		delete(s.seqByID, s.idBySeq[old])
		delete(s.idBySeq, old)
	}
	s.order = append(s.order[evict:], seq)
	s.idBySeq[seq] = txID
	s.seqByID[txID] = seq
	s.nextSeq = seq + 1

	if evict > 0 {
		// Rotation is informational, not an error.
		s.logger.Info("store rotated", zap.Int("evicted", evict), zap.Int("capacity", s.capacity))
	}
	return rec.RecordID.String(), nil
}

func (s *TransactionStore) Get(_ context.Context, transactionID string) (*domain.TransactionRecord, error) {
	var rec domain.TransactionRecord
	err := s.db.View(func(txn *badger.Txn) error {
		seq, err := lookupSeq(txn, transactionID)
		if err != nil {
			return err
		}
		return loadRecord(txn, seq, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns records most-recent-first.
func (s *TransactionStore) List(_ context.Context, filter domain.RecordFilter) ([]domain.TransactionRecord, error) {
	records := []domain.TransactionRecord{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek past the last possible record key, then walk backwards.
		seekKey := append(bytes.Clone(recPrefix), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		for it.Seek(seekKey); it.ValidForPrefix(recPrefix); it.Next() {
			var rec domain.TransactionRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			if filter.Decision != "" && rec.Verdict.Decision != filter.Decision {
				continue
			}
			records = append(records, rec)
			if filter.Limit > 0 && len(records) >= filter.Limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Override moves an ESCALATE verdict to the given terminal decision, once.
func (s *TransactionStore) Override(_ context.Context, transactionID string, decision domain.Decision) (*domain.TransactionRecord, error) {
	if decision != domain.DecisionRefund && decision != domain.DecisionDeny {
		return nil, ErrInvalidTransition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var rec domain.TransactionRecord
	err := s.db.Update(func(txn *badger.Txn) error {
		seq, err := lookupSeq(txn, transactionID)
		if err != nil {
			return err
		}
		if err := loadRecord(txn, seq, &rec); err != nil {
			return err
		}
		if rec.Verdict.Decision != domain.DecisionEscalate {
			return ErrInvalidTransition
		}

		rec.Verdict.Decision = decision
		rec.Verdict.ResolvedBy = domain.ResolvedHumanOverride
		rec.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(&rec)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		return txn.Set(recKey(seq), data)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("verdict overridden",
		zap.String("transaction_id", transactionID),
		zap.String("decision", string(decision)),
	)
	return &rec, nil
}

// Clear wipes every record and returns how many were removed.
func (s *TransactionStore) Clear(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.order)
	if err := s.db.DropAll(); err != nil {
		return 0, fmt.Errorf("clear store: %w", err)
	}

	s.order = nil
	s.idBySeq = make(map[uint64]string)
	s.seqByID = make(map[string]uint64)
	return removed, nil
}

func recKey(seq uint64) []byte {
	return append(bytes.Clone(recPrefix), seqBytes(seq)...)
}

func idKey(transactionID string) []byte {
	return append(bytes.Clone(idPrefix), transactionID...)
}

func seqBytes(seq uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return b[:]
}

func seqFromKey(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(recPrefix):])
}

func lookupSeq(txn *badger.Txn, transactionID string) (uint64, error) {
	item, err := txn.Get(idKey(transactionID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var seq uint64
	err = item.Value(func(val []byte) error {
		seq = binary.BigEndian.Uint64(val)
		return nil
	})
	return seq, err
}

func loadRecord(txn *badger.Txn, seq uint64, rec *domain.TransactionRecord) error {
	item, err := txn.Get(recKey(seq))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, rec)
	})
}
