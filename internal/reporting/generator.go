// Package reporting renders batch sweep reports and rebuilds them from the
// audit store.
package reporting

import (
	"context"
	"fmt"
	"time"

	"solana-wallet-sweep/internal/batch"
	"solana-wallet-sweep/internal/domain"
	"solana-wallet-sweep/internal/storage"
)

// Generator produces reports from stored sweep records.
type Generator struct {
	store storage.SweepRecordStore
}

// NewGenerator creates a new report generator.
func NewGenerator(store storage.SweepRecordStore) *Generator {
	return &Generator{store: store}
}

// Generate rebuilds the report of a past run. The wallet count is the number
// of stored records, so wallets a run never attempted do not appear.
func (g *Generator) Generate(ctx context.Context, runID string) (*batch.Report, error) {
	records, err := g.store.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("run %s: %w", runID, storage.ErrNotFound)
	}

	report := &batch.Report{
		RunID:       runID,
		Destination: records[0].Destination,
		Records:     records,
		Wallets:     len(records),
	}

	var started, finished int64
	for i, rec := range records {
		if i == 0 || rec.StartedAt < started {
			started = rec.StartedAt
		}
		if rec.FinishedAt > finished {
			finished = rec.FinishedAt
		}
		if rec.Status == domain.SweepStatusDryRun {
			report.DryRun = true
		}
	}
	report.StartedAt = time.UnixMilli(started).UTC()
	report.FinishedAt = time.UnixMilli(finished).UTC()

	return report, nil
}

// OwnerHistory returns every stored sweep of owner across runs, oldest first.
func (g *Generator) OwnerHistory(ctx context.Context, owner string) ([]*domain.SweepRecord, error) {
	records, err := g.store.GetByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("load history of %s: %w", owner, err)
	}
	return records, nil
}
