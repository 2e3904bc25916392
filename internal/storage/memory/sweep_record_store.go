package memory

import (
	"context"
	"sort"
	"sync"

	"solana-wallet-sweep/internal/domain"
	"solana-wallet-sweep/internal/storage"
)

type sweepRecordKey struct {
	runID string
	seq   int
}

// SweepRecordStore is an in-memory implementation of storage.SweepRecordStore.
type SweepRecordStore struct {
	mu   sync.RWMutex
	data map[sweepRecordKey]*domain.SweepRecord
}

// NewSweepRecordStore creates a new in-memory sweep record store.
func NewSweepRecordStore() *SweepRecordStore {
	return &SweepRecordStore{
		data: make(map[sweepRecordKey]*domain.SweepRecord),
	}
}

// Compile-time interface check.
var _ storage.SweepRecordStore = (*SweepRecordStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if (run_id, seq) exists.
func (s *SweepRecordStore) Insert(_ context.Context, r *domain.SweepRecord) error {
	if err := storage.ValidateSweepRecord(r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := sweepRecordKey{runID: r.RunID, seq: r.Seq}
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[key] = copyRecord(r)
	return nil
}

// GetByRunID retrieves all records of a run, ordered by seq ASC.
func (s *SweepRecordStore) GetByRunID(_ context.Context, runID string) ([]*domain.SweepRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SweepRecord
	for key, r := range s.data {
		if key.runID == runID {
			result = append(result, copyRecord(r))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Seq < result[j].Seq
	})
	return result, nil
}

// GetByOwner retrieves all records for a wallet, ordered by started_at ASC.
func (s *SweepRecordStore) GetByOwner(_ context.Context, owner string) ([]*domain.SweepRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SweepRecord
	for _, r := range s.data {
		if r.Owner == owner {
			result = append(result, copyRecord(r))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartedAt != result[j].StartedAt {
			return result[i].StartedAt < result[j].StartedAt
		}
		if result[i].RunID != result[j].RunID {
			return result[i].RunID < result[j].RunID
		}
		return result[i].Seq < result[j].Seq
	})
	return result, nil
}

// copyRecord deep-copies r so callers cannot mutate stored state.
func copyRecord(r *domain.SweepRecord) *domain.SweepRecord {
	c := *r
	if r.Signature != nil {
		sig := *r.Signature
		c.Signature = &sig
	}
	if r.Error != nil {
		msg := *r.Error
		c.Error = &msg
	}
	return &c
}
