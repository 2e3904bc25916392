package domain

// SweepRecord is the outcome of one wallet sweep within a batch run.
// Corresponds to sweep_records table in PostgreSQL.
type SweepRecord struct {
	RunID            string      // batch run identifier
	Seq              int         // position of the wallet in the input list
	Owner            string      // swept wallet address
	Destination      string      // destination wallet address
	Status           SweepStatus // SUBMITTED | EMPTY | DRY_RUN | SKIPPED | FAILED
	Signature        *string     // transaction signature (nullable)
	Lamports         uint64      // native balance moved
	TokenAccounts    int         // token accounts enumerated and closed
	TokenTransfers   int         // non-zero holdings transferred
	AccountsCreated  int         // destination associated accounts created
	InstructionCount int         // instructions in the transaction
	Error            *string     // failure reason (nullable)
	StartedAt        int64       // Unix timestamp in milliseconds
	FinishedAt       int64       // Unix timestamp in milliseconds
}

// DurationMs returns the wall time spent on the sweep.
func (r *SweepRecord) DurationMs() int64 {
	return r.FinishedAt - r.StartedAt
}
