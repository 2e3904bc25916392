package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-wallet-sweep/internal/domain"
	"solana-wallet-sweep/internal/storage"
)

// SweepRecordStore implements storage.SweepRecordStore using PostgreSQL.
type SweepRecordStore struct {
	pool *Pool
}

// NewSweepRecordStore creates a new SweepRecordStore.
func NewSweepRecordStore(pool *Pool) *SweepRecordStore {
	return &SweepRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SweepRecordStore = (*SweepRecordStore)(nil)

const sweepRecordColumns = `
	run_id, seq, owner, destination, status, signature,
	lamports, token_accounts, token_transfers, accounts_created, instruction_count,
	error, started_at, finished_at
`

// Insert adds a new record. Returns ErrDuplicateKey if (run_id, seq) exists.
func (s *SweepRecordStore) Insert(ctx context.Context, r *domain.SweepRecord) error {
	if err := storage.ValidateSweepRecord(r); err != nil {
		return err
	}

	query := `
		INSERT INTO sweep_records (` + sweepRecordColumns + `) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14
		)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.Seq, r.Owner, r.Destination, string(r.Status), r.Signature,
		int64(r.Lamports), r.TokenAccounts, r.TokenTransfers, r.AccountsCreated, r.InstructionCount,
		r.Error, r.StartedAt, r.FinishedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert sweep record: %w", err)
	}
	return nil
}

// GetByRunID retrieves all records of a run, ordered by seq ASC.
func (s *SweepRecordStore) GetByRunID(ctx context.Context, runID string) ([]*domain.SweepRecord, error) {
	query := `SELECT ` + sweepRecordColumns + ` FROM sweep_records WHERE run_id = $1 ORDER BY seq ASC`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query sweep records by run: %w", err)
	}
	defer rows.Close()

	return scanSweepRecords(rows)
}

// GetByOwner retrieves all records for a wallet, ordered by started_at ASC.
func (s *SweepRecordStore) GetByOwner(ctx context.Context, owner string) ([]*domain.SweepRecord, error) {
	query := `SELECT ` + sweepRecordColumns + ` FROM sweep_records WHERE owner = $1 ORDER BY started_at ASC, run_id ASC, seq ASC`

	rows, err := s.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("query sweep records by owner: %w", err)
	}
	defer rows.Close()

	return scanSweepRecords(rows)
}

func scanSweepRecords(rows pgx.Rows) ([]*domain.SweepRecord, error) {
	var result []*domain.SweepRecord
	for rows.Next() {
		var r domain.SweepRecord
		var status string
		var lamports int64

		err := rows.Scan(
			&r.RunID, &r.Seq, &r.Owner, &r.Destination, &status, &r.Signature,
			&lamports, &r.TokenAccounts, &r.TokenTransfers, &r.AccountsCreated, &r.InstructionCount,
			&r.Error, &r.StartedAt, &r.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sweep record: %w", err)
		}
		r.Status = domain.SweepStatus(status)
		r.Lamports = uint64(lamports)
		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sweep records: %w", err)
	}
	return result, nil
}
