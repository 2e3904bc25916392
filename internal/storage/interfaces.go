package storage

import (
	"context"

	"solana-wallet-sweep/internal/domain"
)

// SweepRecordStore provides access to sweep_records storage.
// Records are append-only; the sweeper never reads them back to decide
// which wallets to process.
type SweepRecordStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if (run_id, seq) exists.
	// A wallet listed twice in one run gets one record per position.
	Insert(ctx context.Context, r *domain.SweepRecord) error

	// GetByRunID retrieves all records of a run, ordered by seq ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.SweepRecord, error)

	// GetByOwner retrieves all records for a wallet across runs, ordered by started_at ASC.
	GetByOwner(ctx context.Context, owner string) ([]*domain.SweepRecord, error)
}
