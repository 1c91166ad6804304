package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"wey/internal/core"
)

type TransactionStore struct {
	mu  sync.Mutex
	txs []core.Transaction
}

func NewTransactionStore() *TransactionStore {
	return &TransactionStore{}
}

func (s *TransactionStore) Insert(_ context.Context, tx *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, *tx)
	return nil
}

// Delete filters out the matching entry. A missing id/user pair leaves the
// store untouched and still succeeds.
func (s *TransactionStore) Delete(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.txs[:0]
	for _, tx := range s.txs {
		if tx.ID == id && tx.UserID == userID {
			continue
		}
		kept = append(kept, tx)
	}
	s.txs = kept
	return nil
}

func (s *TransactionStore) ListByUser(_ context.Context, userID string, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.collect(func(tx core.Transaction) bool {
		return tx.UserID == userID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *TransactionStore) ListByRange(_ context.Context, userID string, start, end time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.collect(func(tx core.Transaction) bool {
		if tx.UserID != userID {
			return false
		}
		// Inclusive bounds on both ends.
		return !tx.Date.Before(start) && !tx.Date.After(end)
	})
	return out, nil
}

// collect copies matching entries sorted by occurrence date descending.
// Callers must hold the lock.
func (s *TransactionStore) collect(match func(core.Transaction) bool) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, tx := range s.txs {
		if match(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
