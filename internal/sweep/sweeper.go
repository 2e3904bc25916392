// Package sweep moves every asset held by a wallet into a destination wallet
// in a single transaction whose fees are paid by a separate fee payer.
package sweep

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"solana-wallet-sweep/internal/domain"
	"solana-wallet-sweep/internal/solana"
)

// ErrAmountOverflow is returned when a token balance does not fit the u64
// amount field of a transfer instruction.
var ErrAmountOverflow = errors.New("token amount exceeds u64")

// Options configures a Sweeper.
type Options struct {
	RPC         solana.RPCClient
	FeePayer    *solana.Keypair
	Destination solana.PublicKey
	// DryRun builds and signs transactions without submitting them.
	DryRun bool
	// SendOptions overrides the default preflight settings.
	SendOptions *solana.SendOptions
	Logger      logrus.FieldLogger
}

// Sweeper sweeps wallets into one destination. Safe for concurrent use:
// it holds only read-only configuration.
type Sweeper struct {
	rpc         solana.RPCClient
	feePayer    *solana.Keypair
	destination solana.PublicKey
	dryRun      bool
	sendOpts    solana.SendOptions
	logger      logrus.FieldLogger
}

// New creates a Sweeper.
func New(opts Options) (*Sweeper, error) {
	if opts.RPC == nil {
		return nil, errors.New("sweep: rpc client is required")
	}
	if opts.FeePayer == nil {
		return nil, errors.New("sweep: fee payer is required")
	}
	if opts.Destination.IsZero() {
		return nil, errors.New("sweep: destination is required")
	}

	s := &Sweeper{
		rpc:         opts.RPC,
		feePayer:    opts.FeePayer,
		destination: opts.Destination,
		dryRun:      opts.DryRun,
		sendOpts:    solana.DefaultSendOptions(),
		logger:      opts.Logger,
	}
	if opts.SendOptions != nil {
		s.sendOpts = *opts.SendOptions
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	return s, nil
}

// Destination returns the address receiving swept funds.
func (s *Sweeper) Destination() solana.PublicKey {
	return s.destination
}

// Result is the outcome of sweeping one wallet.
type Result struct {
	Status    domain.SweepStatus
	Signature string // empty unless Status is SUBMITTED or DRY_RUN
	Plan      *Plan  // nil when the wallet was skipped
}

// Sweep moves every token balance and the native balance of owner to the
// destination. blockhash is used when non-empty, otherwise a fresh one is
// fetched. A wallet with nothing to move yields an EMPTY result without any
// network write.
func (s *Sweeper) Sweep(ctx context.Context, owner *solana.Keypair, blockhash string) (*Result, error) {
	ownerKey := owner.PublicKey()
	log := s.logger.WithField("owner", ownerKey.String())

	if ownerKey.Equals(s.destination) {
		log.Warn("Owner is the destination wallet, skipping")
		return &Result{Status: domain.SweepStatusSkipped}, nil
	}

	plan, err := s.BuildPlan(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	if plan.IsEmpty() {
		log.Debug("Nothing to sweep")
		return &Result{Status: domain.SweepStatusEmpty, Plan: plan}, nil
	}

	if blockhash == "" {
		latest, err := s.rpc.GetLatestBlockhash(ctx)
		if err != nil {
			return nil, fmt.Errorf("get latest blockhash: %w", err)
		}
		blockhash = latest.Blockhash
	}

	tx := &solana.Transaction{
		FeePayer:        s.feePayer.PublicKey(),
		RecentBlockhash: blockhash,
	}
	tx.Add(plan.Instructions...)

	if err := tx.Sign(owner, s.feePayer); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	// Catches oversized transactions before they reach the node.
	if _, err := tx.Serialize(); err != nil {
		return nil, fmt.Errorf("serialize transaction: %w", err)
	}

	if s.dryRun {
		sig, _ := tx.Signature()
		log.WithField("instructions", len(plan.Instructions)).Info("Dry run, transaction not submitted")
		return &Result{Status: domain.SweepStatusDryRun, Signature: sig.String(), Plan: plan}, nil
	}

	signature, err := s.rpc.SendTransaction(ctx, tx, s.sendOpts)
	if err != nil {
		var rpcErr *solana.RPCError
		if errors.As(err, &rpcErr) {
			for _, line := range rpcErr.Logs() {
				log.Debug(line)
			}
		}
		return nil, fmt.Errorf("send transaction: %w", err)
	}

	return &Result{Status: domain.SweepStatusSubmitted, Signature: signature, Plan: plan}, nil
}
