// Package batch drives the sweep of a list of wallets and collects the
// per-wallet outcomes into a report.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"solana-wallet-sweep/internal/domain"
	"solana-wallet-sweep/internal/observability"
	"solana-wallet-sweep/internal/solana"
	"solana-wallet-sweep/internal/storage"
	"solana-wallet-sweep/internal/sweep"
)

// ErrAborted is returned when a failed wallet stopped the batch. A failure
// on the last wallet still returns it, with Report.Aborted unset.
var ErrAborted = errors.New("batch aborted")

// WalletSweeper sweeps a single wallet into a fixed destination.
type WalletSweeper interface {
	Sweep(ctx context.Context, owner *solana.Keypair, blockhash string) (*sweep.Result, error)
	Destination() solana.PublicKey
}

// Compile-time interface check.
var _ WalletSweeper = (*sweep.Sweeper)(nil)

// Options for creating Runner.
type Options struct {
	// Required
	Sweeper WalletSweeper

	// Policy
	ContinueOnError bool          // keep going after a failed wallet
	Concurrency     int           // wallets in flight, default 1
	WalletTimeout   time.Duration // per-wallet bound, 0 = none
	DryRun          bool          // recorded in the report only

	// Optional sinks
	Store   storage.SweepRecordStore
	Metrics *observability.Metrics
	Logger  logrus.FieldLogger

	// RunID identifies the run in records and reports. Generated if empty.
	RunID string
}

// Runner sweeps wallets one after another, or through a bounded pool.
type Runner struct {
	sweeper         WalletSweeper
	continueOnError bool
	concurrency     int
	walletTimeout   time.Duration
	dryRun          bool
	store           storage.SweepRecordStore
	metrics         *observability.Metrics
	logger          logrus.FieldLogger
	runID           string
	now             func() time.Time
}

// New creates a new Runner.
func New(opts Options) (*Runner, error) {
	if opts.Sweeper == nil {
		return nil, errors.New("batch: sweeper is required")
	}
	if opts.Concurrency < 0 {
		return nil, fmt.Errorf("batch: invalid concurrency %d", opts.Concurrency)
	}

	r := &Runner{
		sweeper:         opts.Sweeper,
		continueOnError: opts.ContinueOnError,
		concurrency:     opts.Concurrency,
		walletTimeout:   opts.WalletTimeout,
		dryRun:          opts.DryRun,
		store:           opts.Store,
		metrics:         opts.Metrics,
		logger:          opts.Logger,
		runID:           opts.RunID,
		now:             time.Now,
	}
	if r.concurrency == 0 {
		r.concurrency = 1
	}
	if r.logger == nil {
		r.logger = logrus.StandardLogger()
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	return r, nil
}

// RunID returns the identifier of the runs made by this Runner.
func (r *Runner) RunID() string {
	return r.runID
}

// Run sweeps every wallet and returns the report.
//
// Unless ContinueOnError is set, the first failed wallet stops the batch:
// wallets not yet started are left out of the report and ErrAborted is
// returned alongside it. Report.Aborted is set only if some wallet was left
// out. Cancelling ctx stops the batch the same way.
func (r *Runner) Run(ctx context.Context, wallets []*solana.Keypair) (*Report, error) {
	destination := r.sweeper.Destination().String()
	log := r.logger.WithField("run_id", r.runID)

	report := &Report{
		RunID:       r.runID,
		Destination: destination,
		DryRun:      r.dryRun,
		StartedAt:   r.now(),
		Wallets:     len(wallets),
	}

	log.WithFields(logrus.Fields{
		"wallets":     len(wallets),
		"destination": destination,
		"concurrency": r.concurrency,
		"dry_run":     r.dryRun,
	}).Info("Starting sweep")

	records := make([]*domain.SweepRecord, len(wallets))

	var stopped atomic.Bool
	var mu sync.Mutex
	firstFailure := -1

	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)

	for i, wallet := range wallets {
		if stopped.Load() || ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// Re-checked here: with a full pool Go blocks until a slot
			// frees, possibly after a failure.
			if stopped.Load() || ctx.Err() != nil {
				return nil
			}

			rec := r.sweepOne(ctx, log, i, destination, wallet)
			records[i] = rec

			if rec.Status.IsFailure() && !r.continueOnError {
				stopped.Store(true)
				mu.Lock()
				if firstFailure < 0 || i < firstFailure {
					firstFailure = i
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, rec := range records {
		if rec != nil {
			report.Records = append(report.Records, rec)
		}
	}
	report.FinishedAt = r.now()
	report.Aborted = len(report.Records) < len(wallets)

	r.logSummary(log, report)
	if r.metrics != nil {
		r.metrics.RecordBatch(report.Duration(), report.FinishedAt)
	}

	if firstFailure >= 0 {
		rec := records[firstFailure]
		return report, fmt.Errorf("%w: wallet %d (%s): %s", ErrAborted, firstFailure+1, rec.Owner, derefString(rec.Error))
	}
	if err := ctx.Err(); err != nil && report.Aborted {
		return report, fmt.Errorf("%w: %w", ErrAborted, err)
	}
	return report, nil
}

func (r *Runner) sweepOne(ctx context.Context, log logrus.FieldLogger, seq int, destination string, wallet *solana.Keypair) *domain.SweepRecord {
	owner := wallet.PublicKey().String()
	log = log.WithField("owner", owner)
	log.Info("Cashing out owner")

	start := r.now()
	rec := &domain.SweepRecord{
		RunID:       r.runID,
		Seq:         seq,
		Owner:       owner,
		Destination: destination,
		StartedAt:   start.UnixMilli(),
	}

	sweepCtx := ctx
	if r.walletTimeout > 0 {
		var cancel context.CancelFunc
		sweepCtx, cancel = context.WithTimeout(ctx, r.walletTimeout)
		defer cancel()
	}

	result, err := r.sweeper.Sweep(sweepCtx, wallet, "")
	finished := r.now()
	rec.FinishedAt = finished.UnixMilli()

	if err != nil {
		msg := err.Error()
		rec.Status = domain.SweepStatusFailed
		rec.Error = &msg
		log.WithError(err).Error("Sweep failed")
	} else {
		rec.Status = result.Status
		if result.Signature != "" {
			sig := result.Signature
			rec.Signature = &sig
		}
		if p := result.Plan; p != nil {
			rec.Lamports = p.Lamports
			rec.TokenAccounts = len(p.Holdings)
			rec.TokenTransfers = p.TokenTransfers
			rec.AccountsCreated = p.AccountsCreated
			rec.InstructionCount = len(p.Instructions)
		}

		switch rec.Status {
		case domain.SweepStatusSubmitted:
			log.WithField("signature", result.Signature).Info("Transaction signature")
		case domain.SweepStatusDryRun:
			log.WithField("signature", result.Signature).Info("Transaction signature (dry run)")
		case domain.SweepStatusEmpty:
			log.Info("Nothing to sweep")
		}
	}

	r.persist(ctx, log, rec)
	if r.metrics != nil {
		r.metrics.RecordSweep(observability.SweepOutcome{
			Status:          rec.Status.String(),
			Lamports:        rec.Lamports,
			TokenTransfers:  rec.TokenTransfers,
			AccountsCreated: rec.AccountsCreated,
			AccountsClosed:  rec.TokenAccounts,
			Duration:        finished.Sub(start),
		}, rec.Status == domain.SweepStatusSubmitted)
	}
	return rec
}

// persist appends rec to the audit store. Failures are logged only; the
// sweep outcome stands either way.
func (r *Runner) persist(ctx context.Context, log logrus.FieldLogger, rec *domain.SweepRecord) {
	if r.store == nil {
		return
	}
	if err := r.store.Insert(context.WithoutCancel(ctx), rec); err != nil {
		log.WithError(err).Warn("Failed to write sweep record")
	}
}

func (r *Runner) logSummary(log logrus.FieldLogger, report *Report) {
	s := report.Summary()
	entry := log.WithFields(logrus.Fields{
		"submitted":     s.Submitted,
		"empty":         s.Empty,
		"dry_run":       s.DryRun,
		"skipped":       s.Skipped,
		"failed":        s.Failed,
		"not_attempted": s.NotAttempted,
		"sol":           s.SOL().String(),
		"duration":      report.Duration().Round(time.Millisecond).String(),
	})
	if report.Aborted {
		entry.Warn("Sweep aborted")
		return
	}
	entry.Info("Sweep finished")
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
