package sweep

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"solana-wallet-sweep/internal/solana"
)

// Plan is the ordered instruction list that empties one wallet.
type Plan struct {
	Owner           solana.PublicKey
	Lamports        uint64 // native balance moved by the final transfer
	Holdings        []solana.TokenAccount
	Instructions    []solana.Instruction
	TokenTransfers  int
	AccountsCreated int
}

// IsEmpty reports whether there is nothing to submit.
func (p *Plan) IsEmpty() bool {
	return len(p.Instructions) == 0
}

// BuildPlan queries the owner's balances and assembles the sweep
// instructions:
//
//   - for each non-empty token account, create the destination associated
//     account if missing, then transfer the full amount;
//   - close every token account, empty or not, returning rent to the
//     destination;
//   - transfer the whole native balance last.
//
// The fee payer funds account creation and the transaction fee, so nothing
// is held back from the native transfer.
func (s *Sweeper) BuildPlan(ctx context.Context, owner solana.PublicKey) (*Plan, error) {
	balance, err := s.rpc.GetBalance(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}

	holdings, err := s.rpc.GetTokenAccountsByOwner(ctx, owner, solana.TokenProgramID)
	if err != nil {
		return nil, fmt.Errorf("get token accounts: %w", err)
	}

	plan := &Plan{Owner: owner, Holdings: holdings}
	log := s.logger.WithField("owner", owner.String())

	// Destination accounts known to exist, either on chain or created
	// earlier in this plan.
	ready := make(map[solana.PublicKey]bool)

	for _, holding := range holdings {
		if !holding.IsEmpty() {
			if !holding.Amount.IsUint64() {
				return nil, fmt.Errorf("%w: account %s holds %s", ErrAmountOverflow, holding.Address, holding.Amount)
			}

			toAccount, err := solana.FindAssociatedTokenAddress(s.destination, holding.Mint)
			if err != nil {
				return nil, fmt.Errorf("mint %s: %w", holding.Mint, err)
			}

			if !ready[toAccount] {
				info, err := s.rpc.GetAccountInfo(ctx, toAccount)
				if err != nil {
					return nil, fmt.Errorf("get account info %s: %w", toAccount, err)
				}
				if info == nil {
					plan.Instructions = append(plan.Instructions, solana.CreateAssociatedTokenAccount(
						s.feePayer.PublicKey(), toAccount, s.destination, holding.Mint,
					))
					plan.AccountsCreated++
				}
				ready[toAccount] = true
			}

			plan.Instructions = append(plan.Instructions, solana.TokenTransfer(
				holding.Address, toAccount, owner, holding.Amount.Uint64(),
			))
			plan.TokenTransfers++

			log.WithFields(logrus.Fields{
				"mint":   holding.Mint.String(),
				"amount": holding.UIAmount().String(),
			}).Debug("Transferring tokens")
		}

		plan.Instructions = append(plan.Instructions, solana.TokenCloseAccount(
			holding.Address, s.destination, owner,
		))
	}

	if balance > 0 {
		plan.Instructions = append(plan.Instructions, solana.SystemTransfer(owner, s.destination, balance))
		plan.Lamports = balance
	}

	return plan, nil
}
