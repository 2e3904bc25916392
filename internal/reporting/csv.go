package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"

	"solana-wallet-sweep/internal/batch"
)

var csvHeader = []string{
	"run_id", "seq", "owner", "destination", "status", "signature",
	"lamports", "token_accounts", "token_transfers", "accounts_created", "instruction_count",
	"error", "started_at", "finished_at", "duration_ms",
}

// RenderCSV renders one row per attempted wallet as CSV string.
func RenderCSV(r *batch.Report) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}

	for _, rec := range r.Records {
		row := []string{
			rec.RunID,
			strconv.Itoa(rec.Seq + 1),
			rec.Owner,
			rec.Destination,
			rec.Status.String(),
			deref(rec.Signature),
			strconv.FormatUint(rec.Lamports, 10),
			strconv.Itoa(rec.TokenAccounts),
			strconv.Itoa(rec.TokenTransfers),
			strconv.Itoa(rec.AccountsCreated),
			strconv.Itoa(rec.InstructionCount),
			deref(rec.Error),
			strconv.FormatInt(rec.StartedAt, 10),
			strconv.FormatInt(rec.FinishedAt, 10),
			strconv.FormatInt(rec.DurationMs(), 10),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
