package reporting

import (
	"fmt"
	"strings"
	"time"

	"solana-wallet-sweep/internal/batch"
	"solana-wallet-sweep/internal/domain"
	"solana-wallet-sweep/internal/solana"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *batch.Report) string {
	var sb strings.Builder
	s := r.Summary()

	// Header
	sb.WriteString("# Sweep Report\n\n")
	sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", r.RunID))
	sb.WriteString(fmt.Sprintf("Destination: `%s`\n\n", r.Destination))
	sb.WriteString(fmt.Sprintf("Started: %s | Finished: %s\n\n",
		r.StartedAt.UTC().Format(time.RFC3339), r.FinishedAt.UTC().Format(time.RFC3339)))
	if r.DryRun {
		sb.WriteString("**Dry run.** Transactions were built and signed but not submitted.\n\n")
	}
	if r.Aborted {
		sb.WriteString(fmt.Sprintf("**Aborted.** %d of %d wallets were not attempted.\n\n", s.NotAttempted, s.Wallets))
	}

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Wallets | %d |\n", s.Wallets))
	sb.WriteString(fmt.Sprintf("| Submitted | %d |\n", s.Submitted))
	sb.WriteString(fmt.Sprintf("| Empty | %d |\n", s.Empty))
	if s.DryRun > 0 {
		sb.WriteString(fmt.Sprintf("| Dry run | %d |\n", s.DryRun))
	}
	sb.WriteString(fmt.Sprintf("| Skipped | %d |\n", s.Skipped))
	sb.WriteString(fmt.Sprintf("| Failed | %d |\n", s.Failed))
	sb.WriteString(fmt.Sprintf("| Not attempted | %d |\n", s.NotAttempted))
	sb.WriteString(fmt.Sprintf("| SOL swept | %s |\n", s.SOL().String()))
	sb.WriteString(fmt.Sprintf("| Token transfers | %d |\n", s.TokenTransfers))
	sb.WriteString(fmt.Sprintf("| Accounts created | %d |\n", s.AccountsCreated))
	sb.WriteString(fmt.Sprintf("| Accounts closed | %d |\n", s.AccountsClosed))
	sb.WriteString("\n")

	// Wallets
	sb.WriteString("## Wallets\n\n")
	if len(r.Records) > 0 {
		writeRecordTable(&sb, r.Records)
	} else {
		sb.WriteString("No wallets attempted.\n")
	}
	sb.WriteString("\n")

	// Failures
	if failures := r.Failures(); len(failures) > 0 {
		sb.WriteString("## Failures\n\n")
		for _, rec := range failures {
			sb.WriteString(fmt.Sprintf("- #%d `%s`: %s\n", rec.Seq+1, rec.Owner, escapeCell(deref(rec.Error))))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderOwnerHistory renders the sweeps of one wallet across runs.
func RenderOwnerHistory(owner string, records []*domain.SweepRecord) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Sweep History `%s`\n\n", owner))
	if len(records) == 0 {
		sb.WriteString("No sweeps recorded.\n")
		return sb.String()
	}

	sb.WriteString("| Run | Started | Status | SOL | Transfers | Signature |\n")
	sb.WriteString("|-----|---------|--------|-----|-----------|-----------|\n")
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d | %s |\n",
			rec.RunID,
			time.UnixMilli(rec.StartedAt).UTC().Format(time.RFC3339),
			rec.Status,
			solana.LamportsToSOL(rec.Lamports).String(),
			rec.TokenTransfers,
			deref(rec.Signature)))
	}
	return sb.String()
}

func writeRecordTable(sb *strings.Builder, records []*domain.SweepRecord) {
	sb.WriteString("| # | Owner | Status | SOL | Token Accounts | Transfers | Created | Signature / Error |\n")
	sb.WriteString("|---|-------|--------|-----|----------------|-----------|---------|-------------------|\n")
	for _, rec := range records {
		detail := deref(rec.Signature)
		if rec.Error != nil {
			detail = *rec.Error
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %d | %d | %d | %s |\n",
			rec.Seq+1,
			rec.Owner,
			rec.Status,
			solana.LamportsToSOL(rec.Lamports).String(),
			rec.TokenAccounts,
			rec.TokenTransfers,
			rec.AccountsCreated,
			escapeCell(detail)))
	}
}

// escapeCell keeps free text from breaking a table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
