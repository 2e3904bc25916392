package batch

import (
	"time"

	"github.com/shopspring/decimal"

	"solana-wallet-sweep/internal/domain"
	"solana-wallet-sweep/internal/solana"
)

// Report is the outcome of one batch run.
type Report struct {
	RunID       string
	Destination string
	DryRun      bool
	StartedAt   time.Time
	FinishedAt  time.Time

	// Records holds one entry per attempted wallet, in input order.
	Records []*domain.SweepRecord

	// Wallets is the number of wallets given to the run.
	Wallets int

	// Aborted is set when a failure stopped the batch before every wallet
	// was attempted.
	Aborted bool
}

// Summary aggregates a report.
type Summary struct {
	Wallets         int
	Attempted       int
	NotAttempted    int
	Submitted       int
	Empty           int
	DryRun          int
	Skipped         int
	Failed          int
	Lamports        uint64 // moved by submitted sweeps only
	TokenTransfers  int
	AccountsCreated int
	AccountsClosed  int
}

// SOL returns Lamports in SOL.
func (s Summary) SOL() decimal.Decimal {
	return solana.LamportsToSOL(s.Lamports)
}

// Summary computes totals over the records.
func (r *Report) Summary() Summary {
	s := Summary{
		Wallets:   r.Wallets,
		Attempted: len(r.Records),
	}
	s.NotAttempted = s.Wallets - s.Attempted

	for _, rec := range r.Records {
		switch rec.Status {
		case domain.SweepStatusSubmitted:
			s.Submitted++
			s.Lamports += rec.Lamports
			s.TokenTransfers += rec.TokenTransfers
			s.AccountsCreated += rec.AccountsCreated
			s.AccountsClosed += rec.TokenAccounts
		case domain.SweepStatusEmpty:
			s.Empty++
		case domain.SweepStatusDryRun:
			s.DryRun++
		case domain.SweepStatusSkipped:
			s.Skipped++
		case domain.SweepStatusFailed:
			s.Failed++
		}
	}
	return s
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failures returns the failed records in input order.
func (r *Report) Failures() []*domain.SweepRecord {
	var out []*domain.SweepRecord
	for _, rec := range r.Records {
		if rec.Status.IsFailure() {
			out = append(out, rec)
		}
	}
	return out
}
