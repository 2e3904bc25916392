package stub

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/mr-tron/base58"

	"solana-wallet-sweep/internal/solana"
)

// DefaultBlockhash is returned by GetLatestBlockhash unless overridden.
var DefaultBlockhash = base58.Encode(bytes.Repeat([]byte{7}, 32))

// RPCClient implements solana.RPCClient for testing.
// Sent transactions are decoded from their wire form so tests observe exactly
// what would reach the network.
type RPCClient struct {
	mu sync.Mutex

	Balances      map[solana.PublicKey]uint64
	TokenAccounts map[solana.PublicKey][]solana.TokenAccount
	Accounts      map[solana.PublicKey]*solana.AccountInfo
	Blockhash     string

	// Errors keyed by RPC method name are returned instead of a result.
	Errors map[string]error
	// OwnerErrors fail every call for a given owner.
	OwnerErrors map[solana.PublicKey]error

	Sent     []*solana.Transaction
	SentOpts []solana.SendOptions
	Calls    []string
}

// Compile-time interface check.
var _ solana.RPCClient = (*RPCClient)(nil)

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Balances:      make(map[solana.PublicKey]uint64),
		TokenAccounts: make(map[solana.PublicKey][]solana.TokenAccount),
		Accounts:      make(map[solana.PublicKey]*solana.AccountInfo),
		Blockhash:     DefaultBlockhash,
		Errors:        make(map[string]error),
		OwnerErrors:   make(map[solana.PublicKey]error),
	}
}

func (c *RPCClient) record(method string, key solana.PublicKey) error {
	c.Calls = append(c.Calls, method)
	if err, ok := c.Errors[method]; ok {
		return err
	}
	if err, ok := c.OwnerErrors[key]; ok {
		return err
	}
	return nil
}

// GetBalance returns the stored balance, zero if unknown.
func (c *RPCClient) GetBalance(_ context.Context, account solana.PublicKey) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.record("getBalance", account); err != nil {
		return 0, err
	}
	return c.Balances[account], nil
}

// GetTokenAccountsByOwner returns the stored token accounts for owner.
func (c *RPCClient) GetTokenAccountsByOwner(_ context.Context, owner, programID solana.PublicKey) ([]solana.TokenAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.record("getTokenAccountsByOwner", owner); err != nil {
		return nil, err
	}
	if !programID.Equals(solana.TokenProgramID) {
		return nil, nil
	}
	accounts := c.TokenAccounts[owner]
	out := make([]solana.TokenAccount, len(accounts))
	copy(out, accounts)
	return out, nil
}

// GetAccountInfo returns the stored account, nil if absent.
func (c *RPCClient) GetAccountInfo(_ context.Context, account solana.PublicKey) (*solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.record("getAccountInfo", account); err != nil {
		return nil, err
	}
	info, ok := c.Accounts[account]
	if !ok {
		return nil, nil
	}
	infoCopy := *info
	return &infoCopy, nil
}

// GetLatestBlockhash returns the configured blockhash.
func (c *RPCClient) GetLatestBlockhash(_ context.Context) (*solana.Blockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.record("getLatestBlockhash", solana.PublicKey{}); err != nil {
		return nil, err
	}
	return &solana.Blockhash{Blockhash: c.Blockhash, LastValidBlockHeight: 1000}, nil
}

// SendTransaction serializes tx, decodes it back and records it.
func (c *RPCClient) SendTransaction(_ context.Context, tx *solana.Transaction, opts solana.SendOptions) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.record("sendTransaction", tx.FeePayer); err != nil {
		return "", err
	}

	raw, err := tx.Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize transaction: %w", err)
	}
	decoded, err := solana.DecodeTransaction(raw)
	if err != nil {
		return "", fmt.Errorf("decode transaction: %w", err)
	}

	c.Sent = append(c.Sent, decoded)
	c.SentOpts = append(c.SentOpts, opts)

	sig, _ := decoded.Signature()
	return sig.String(), nil
}

// AddTokenAccount registers a token account for its owner.
func (c *RPCClient) AddTokenAccount(acc solana.TokenAccount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TokenAccounts[acc.Owner] = append(c.TokenAccounts[acc.Owner], acc)
}

// SetBalance sets the lamport balance of an account.
func (c *RPCClient) SetBalance(account solana.PublicKey, lamports uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Balances[account] = lamports
}

// CreateAccount marks an account as existing on chain.
func (c *RPCClient) CreateAccount(account solana.PublicKey, info solana.AccountInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[account] = &info
}

// CallCount returns how many times method was called.
func (c *RPCClient) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, m := range c.Calls {
		if m == method {
			n++
		}
	}
	return n
}

// SentTransactions returns a snapshot of the submitted transactions.
func (c *RPCClient) SentTransactions() []*solana.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*solana.Transaction, len(c.Sent))
	copy(out, c.Sent)
	return out
}
