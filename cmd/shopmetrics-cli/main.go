package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"shopmetrics/internal/config"
	"shopmetrics/internal/dashboard"
	"shopmetrics/internal/engine"
	"shopmetrics/internal/store"
	"shopmetrics/internal/util"
	"shopmetrics/pkg/shopmetrics"
)

const version = "0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: shopmetrics-cli <command> [options] [date]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  version            Print the CLI version\n")
	fmt.Fprintf(os.Stderr, "  dates              List loaded dates\n")
	fmt.Fprintf(os.Stderr, "  report [date]      KPI, provider and payment summary report\n")
	fmt.Fprintf(os.Stderr, "  agencies [date]    Agency performance\n")
	fmt.Fprintf(os.Stderr, "  archive            Write the data directory to the parquet archive\n")
	fmt.Fprintf(os.Stderr, "  history            Period history recorded in SQLite\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	fmt.Fprintf(os.Stderr, "  -config path       Config file (default $SHOPMETRICS_CONFIG or config/shopmetrics.yaml)\n")
	fmt.Fprintf(os.Stderr, "  -server url        Query a running shopmetrics-server instead of the data directory\n")
	fmt.Fprintf(os.Stderr, "\n")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if cmd == "version" {
		fmt.Printf("shopmetrics-cli %s\n", version)
		return
	}

	defaultCfg := "config/shopmetrics.yaml"
	if p := os.Getenv("SHOPMETRICS_CONFIG"); p != "" {
		defaultCfg = p
	}
	flags := flag.NewFlagSet(cmd, flag.ExitOnError)
	flags.Usage = usage
	cfgPath := flags.String("config", defaultCfg, "config file")
	serverURL := flags.String("server", "", "shopmetrics-server base URL")
	flags.Parse(os.Args[2:])
	date := flags.Arg(0)

	cfg, err := config.Load(*cfgPath)
	if errors.Is(err, fs.ErrNotExist) && *cfgPath == defaultCfg {
		cfg, err = config.Load("")
	}
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	// Reports go to stdout; keep diagnostics on stderr.
	logger := util.NewLoggerTo(os.Stderr, cfg.Logging.Level, "text")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case "dates", "report", "agencies":
		b, err := openBackend(ctx, cfg, *serverURL, logger)
		if err != nil {
			log.Fatalf("%s: %v", cmd, err)
		}
		if err := runQuery(ctx, b, cmd, date); err != nil {
			log.Fatalf("%s: %v", cmd, err)
		}

	case "archive":
		if err := runArchive(ctx, cfg, logger); err != nil {
			log.Fatalf("archive: %v", err)
		}

	case "history":
		if err := runHistory(ctx, cfg); err != nil {
			log.Fatalf("history: %v", err)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func openBackend(ctx context.Context, cfg *config.Config, serverURL string, log *slog.Logger) (backend, error) {
	if serverURL != "" {
		return &remoteBackend{client: shopmetrics.NewClient(serverURL)}, nil
	}
	return newLocalBackend(ctx, cfg, log)
}

func runQuery(ctx context.Context, b backend, cmd, date string) error {
	switch cmd {
	case "dates":
		dates, latest, err := b.Dates(ctx)
		if err != nil {
			return err
		}
		for _, d := range dates {
			marker := ""
			if d == latest {
				marker = "  (latest)"
			}
			fmt.Printf("%s%s\n", dashboard.FormatDate(d), marker)
		}
		if len(dates) == 0 {
			fmt.Println("no dates loaded")
		}

	case "report":
		kpi, err := b.KPI(ctx, date)
		if err != nil {
			return err
		}
		stats, err := b.ProviderStats(ctx, kpi.Date)
		if err != nil {
			return err
		}
		summary, err := b.PaymentSummary(ctx, kpi.Date)
		if err != nil {
			return err
		}
		fmt.Println(dashboard.KPIReport(kpi))
		fmt.Println(dashboard.ProviderReport(stats))
		fmt.Println(dashboard.PaymentSummaryReport(summary))

	case "agencies":
		d, list, err := b.Agencies(ctx, date)
		if err != nil {
			return err
		}
		fmt.Println(dashboard.AgencyReport(d, list))
	}
	return nil
}

func runArchive(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if cfg.Storage.ArchiveDir == "" {
		return fmt.Errorf("storage.archive_dir is not set")
	}
	snap, err := loadSnapshot(ctx, cfg, log)
	if err != nil {
		return err
	}
	archive := store.NewParquetArchive(cfg.Storage.ArchiveDir)
	n, err := archive.WriteSnapshot(ctx, snap)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %d files to %s\n", n, cfg.Storage.ArchiveDir)
	for _, ds := range store.Datasets {
		dates, err := archive.ListDates(ctx, ds)
		if err != nil {
			return err
		}
		fmt.Printf("  %-12s %d dates\n", ds, len(dates))
	}
	return nil
}

func runHistory(ctx context.Context, cfg *config.Config) error {
	if cfg.Storage.SQLitePath == "" {
		return fmt.Errorf("storage.sqlite_path is not set")
	}
	history, err := store.NewSQLiteHistory(cfg.Storage.SQLitePath)
	if err != nil {
		return err
	}
	defer history.Close()

	periods, err := history.Periods(ctx)
	if err != nil && !errors.Is(err, store.ErrNoData) {
		return err
	}
	fmt.Println(dashboard.HistoryReport(periods, engine.ChangeRates(periods)))
	return nil
}
