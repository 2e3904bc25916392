package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"solana-wallet-sweep/internal/batch"
	"solana-wallet-sweep/internal/config"
	"solana-wallet-sweep/internal/logging"
	"solana-wallet-sweep/internal/observability"
	"solana-wallet-sweep/internal/reporting"
	"solana-wallet-sweep/internal/solana"
	"solana-wallet-sweep/internal/storage"
	"solana-wallet-sweep/internal/storage/migrations"
	pgstore "solana-wallet-sweep/internal/storage/postgres"
	"solana-wallet-sweep/internal/sweep"
)

type options struct {
	walletsFile     string
	dryRun          bool
	continueOnError bool
	concurrency     int
	walletTimeout   time.Duration
	reportMD        string
	reportCSV       string
	metricsFile     string
	postgresDSN     string
}

func main() {
	// Parse flags
	envFile := flag.String("env-file", ".env", "Optional KEY=VALUE file loaded before reading the environment")
	walletsFile := flag.String("wallets", "", "File with one source wallet secret key per line (default $WALLETS_FILE or wallets.txt)")
	dryRun := flag.Bool("dry-run", false, "Build and sign transactions without submitting them")
	continueOnError := flag.Bool("continue-on-error", false, "Keep sweeping after a wallet fails")
	concurrency := flag.Int("concurrency", 1, "Wallets swept in parallel")
	walletTimeout := flag.Duration("wallet-timeout", 0, "Upper bound for one wallet sweep (0 = none)")
	reportMD := flag.String("report-md", "", "Write a Markdown report to this path")
	reportCSV := flag.String("report-csv", "", "Write a CSV report to this path")
	metricsFile := flag.String("metrics-file", "", "Write Prometheus metrics in textfile format to this path")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for the audit log (default $POSTGRES_DSN)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (default $LOG_LEVEL or info)")
	logFormat := flag.String("log-format", "", "Log format: text or json (default $LOG_FORMAT or text)")
	flag.Parse()

	// Configuration comes first: nothing else is read or dialed without it.
	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	settings, err := config.Load(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *logLevel == "" {
		*logLevel = settings.LogLevel
	}
	if *logFormat == "" {
		*logFormat = settings.LogFormat
	}
	logger, err := logging.New(os.Stdout, *logLevel, *logFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := options{
		walletsFile:     *walletsFile,
		dryRun:          *dryRun,
		continueOnError: *continueOnError,
		concurrency:     *concurrency,
		walletTimeout:   *walletTimeout,
		reportMD:        *reportMD,
		reportCSV:       *reportCSV,
		metricsFile:     *metricsFile,
		postgresDSN:     *postgresDSN,
	}
	if opts.walletsFile == "" {
		opts.walletsFile = settings.WalletsFile
	}
	if opts.postgresDSN == "" {
		opts.postgresDSN = settings.PostgresDSN
	}

	// Cancel on SIGINT/SIGTERM. Wallets already submitted stay submitted.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, settings, opts); err != nil {
		logger.WithError(err).Error("Sweep failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *logrus.Logger, settings config.Settings, opts options) error {
	mainWallet, err := solana.ParseKeypair(settings.MainWalletSecret)
	if err != nil {
		return fmt.Errorf("%s: %w", config.EnvMainWalletSecret, err)
	}
	logger.WithField("address", mainWallet.PublicKey().String()).Info("Main wallet")

	wallets, err := config.LoadWallets(opts.walletsFile)
	if err != nil {
		return err
	}
	if len(wallets) == 0 {
		logger.WithField("file", opts.walletsFile).Warn("No wallets to sweep")
	}

	metrics := observability.DefaultMetrics

	rpc := solana.NewHTTPClient(settings.RPCURL,
		solana.WithMaxRetries(settings.RPCMaxRetries),
		solana.WithRateLimit(settings.RPCRateLimit),
		solana.WithCommitment(solana.CommitmentConfirmed),
		solana.WithObserver(metrics.RecordRPCCall),
	)

	sweeper, err := sweep.New(sweep.Options{
		RPC:         rpc,
		FeePayer:    mainWallet,
		Destination: mainWallet.PublicKey(),
		DryRun:      opts.dryRun,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	var store storage.SweepRecordStore
	if opts.postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, opts.postgresDSN)
		if err != nil {
			return fmt.Errorf("audit log: %w", err)
		}
		defer pool.Close()

		applied, err := migrations.RunPostgresMigrations(ctx, pool)
		if err != nil {
			return fmt.Errorf("audit log: %w", err)
		}
		for _, name := range applied {
			logger.WithField("migration", name).Info("Applied migration")
		}
		store = pgstore.NewSweepRecordStore(pool)
	}

	runner, err := batch.New(batch.Options{
		Sweeper:         sweeper,
		ContinueOnError: opts.continueOnError,
		Concurrency:     opts.concurrency,
		WalletTimeout:   opts.walletTimeout,
		DryRun:          opts.dryRun,
		Store:           store,
		Metrics:         metrics,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	report, runErr := runner.Run(ctx, wallets)

	if err := writeOutputs(report, metrics, opts); err != nil {
		logger.WithError(err).Error("Failed to write outputs")
		if runErr == nil {
			runErr = err
		}
	}

	if runErr != nil {
		return runErr
	}
	if failed := report.Summary().Failed; failed > 0 {
		return fmt.Errorf("%d wallet(s) failed", failed)
	}
	return nil
}

// writeOutputs writes every requested report file. All are attempted even if
// one fails.
func writeOutputs(report *batch.Report, metrics *observability.Metrics, opts options) error {
	var errs []error

	if opts.reportMD != "" {
		if err := os.WriteFile(opts.reportMD, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
			errs = append(errs, fmt.Errorf("write markdown report: %w", err))
		}
	}

	if opts.reportCSV != "" {
		out, err := reporting.RenderCSV(report)
		if err == nil {
			err = os.WriteFile(opts.reportCSV, []byte(out), 0o644)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("write csv report: %w", err))
		}
	}

	if opts.metricsFile != "" {
		if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
