package solana

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Commitment levels.
const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// TokenAccount is a token holding parsed from getTokenAccountsByOwner.
type TokenAccount struct {
	Address  PublicKey // token account address
	Mint     PublicKey
	Owner    PublicKey
	Amount   *big.Int // raw amount in base units
	Decimals uint8
}

// IsEmpty reports whether the account holds nothing.
func (a TokenAccount) IsEmpty() bool {
	return a.Amount == nil || a.Amount.Sign() == 0
}

// UIAmount returns the amount scaled by the mint decimals.
func (a TokenAccount) UIAmount() decimal.Decimal {
	if a.Amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.Amount, -int32(a.Decimals))
}

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// LamportsToSOL converts lamports to SOL.
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -9)
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}

// Blockhash is a recent blockhash with its validity bound.
type Blockhash struct {
	Blockhash            string
	LastValidBlockHeight uint64
}

// SendOptions controls sendTransaction preflight behaviour.
type SendOptions struct {
	SkipPreflight       bool
	PreflightCommitment string
	MaxRetries          *uint
}

// DefaultSendOptions runs full preflight simulation at confirmed commitment.
func DefaultSendOptions() SendOptions {
	return SendOptions{
		SkipPreflight:       false,
		PreflightCommitment: CommitmentConfirmed,
	}
}
