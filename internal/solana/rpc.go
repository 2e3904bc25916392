package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface used by the sweeper.
type RPCClient interface {
	// GetBalance returns the lamport balance of an account.
	GetBalance(ctx context.Context, account PublicKey) (uint64, error)

	// GetTokenAccountsByOwner returns every token account owned by owner
	// under the given token program.
	GetTokenAccountsByOwner(ctx context.Context, owner, programID PublicKey) ([]TokenAccount, error)

	// GetAccountInfo retrieves account info. Returns nil if the account does not exist.
	GetAccountInfo(ctx context.Context, account PublicKey) (*AccountInfo, error)

	// GetLatestBlockhash returns a recent blockhash for signing.
	GetLatestBlockhash(ctx context.Context) (*Blockhash, error)

	// SendTransaction submits a signed transaction and returns its signature.
	SendTransaction(ctx context.Context, tx *Transaction, opts SendOptions) (string, error)
}
