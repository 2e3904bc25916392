package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"solana-wallet-sweep/internal/config"
	"solana-wallet-sweep/internal/reporting"
	"solana-wallet-sweep/internal/storage"
	pgstore "solana-wallet-sweep/internal/storage/postgres"
)

func main() {
	// Parse flags
	envFile := flag.String("env-file", ".env", "Optional KEY=VALUE file loaded before reading the environment")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (default $POSTGRES_DSN)")
	runID := flag.String("run-id", "", "Render the report of this run")
	owner := flag.String("owner", "", "Render the sweep history of this wallet address")
	format := flag.String("format", "md", "Output format for -run-id: md or csv")
	output := flag.String("output", "", "Output file (default stdout)")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *postgresDSN == "" {
		*postgresDSN = config.Optional(os.Getenv, config.EnvPostgresDSN, "")
	}

	// Validate flags
	if *postgresDSN == "" {
		fmt.Fprintf(os.Stderr, "Error: --postgres-dsn or %s is required\n", config.EnvPostgresDSN)
		os.Exit(1)
	}
	if (*runID == "") == (*owner == "") {
		fmt.Fprintln(os.Stderr, "Error: exactly one of --run-id and --owner is required")
		os.Exit(1)
	}
	if *format != "md" && *format != "csv" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (md or csv)\n", *format)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	gen := reporting.NewGenerator(pgstore.NewSweepRecordStore(pool))

	var out string
	if *runID != "" {
		out, err = renderRun(ctx, gen, *runID, *format)
	} else {
		out, err = renderOwner(ctx, gen, *owner)
	}
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		pool.Close()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		pool.Close()
		os.Exit(1)
	}

	if err := write(*output, out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		pool.Close()
		os.Exit(1)
	}
}

func renderRun(ctx context.Context, gen *reporting.Generator, runID, format string) (string, error) {
	report, err := gen.Generate(ctx, runID)
	if err != nil {
		return "", err
	}
	if format == "csv" {
		return reporting.RenderCSV(report)
	}
	return reporting.RenderMarkdown(report), nil
}

func renderOwner(ctx context.Context, gen *reporting.Generator, owner string) (string, error) {
	records, err := gen.OwnerHistory(ctx, owner)
	if err != nil {
		return "", err
	}
	return reporting.RenderOwnerHistory(owner, records), nil
}

func write(path, content string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	_, err := io.WriteString(w, content)
	return err
}
