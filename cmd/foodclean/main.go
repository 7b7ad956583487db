package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"foodclean/internal/config"
	"foodclean/internal/logging"
	"foodclean/internal/pipeline"
	"foodclean/internal/storage"
	"foodclean/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logging.Configure(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})

	cmd := os.Args[1]
	switch cmd {
	case "run":
		must(runClean(cfg, cmd, os.Args[2:]))
	case "runs":
		must(listRuns(cfg, cmd, os.Args[2:]))
	case "profile:show":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		profilePath := fs.String("profile", cfg.ProfilePath, "cleaning profile yaml")
		_ = fs.Parse(os.Args[2:])
		profile, err := config.LoadProfile(*profilePath)
		must(err)
		out, err := yaml.Marshal(profile)
		must(err)

		var names []string
		for _, step := range pipeline.BuildSteps(profile) {
			names = append(names, step.Name)
		}
		fmt.Printf("# steps: %s\n", strings.Join(names, " -> "))
		fmt.Print(string(out))
	default:
		usage()
		os.Exit(1)
	}
}

func runClean(cfg config.Config, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	input := fs.String("input", cfg.InputPath, "input csv/tsv/xlsx path")
	output := fs.String("output", cfg.OutputPath, "cleaned output path")
	summaryPath := fs.String("summary", cfg.SummaryPath, "summary log path")
	profilePath := fs.String("profile", cfg.ProfilePath, "cleaning profile yaml")
	ledgerPath := fs.String("ledger", cfg.LedgerPath, "sqlite run ledger path (optional)")
	metricsPath := fs.String("metrics", cfg.MetricsTextfile, "prometheus textfile path (optional)")
	_ = fs.Parse(args)
	if strings.TrimSpace(*input) == "" || strings.TrimSpace(*output) == "" {
		return fmt.Errorf("--input and --output are required")
	}

	profile, err := config.LoadProfile(*profilePath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.NewMetrics()
	opts := []pipeline.Option{pipeline.WithObserver(metrics)}
	if strings.TrimSpace(*ledgerPath) != "" {
		db, err := storage.Open(*ledgerPath)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, pipeline.WithLedger(db))
	}

	runner := pipeline.NewRunner(profile, opts...)
	summary, runErr := runner.Run(ctx, *input, *output)

	if strings.TrimSpace(*metricsPath) != "" {
		if err := metrics.WriteTextfile(*metricsPath); err != nil {
			logging.L().Warn("failed to write metrics textfile", "path", *metricsPath, "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	if err := pipeline.EmitSummary(os.Stdout, summary); err != nil {
		return err
	}
	if err := pipeline.WriteSummaryFile(*summaryPath, summary); err != nil {
		return err
	}
	fmt.Printf("cleaned %d rows into %s (dropped %d)\n", summary.RowsOut, *output, summary.RowsDropped)
	return nil
}

func listRuns(cfg config.Config, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	ledgerPath := fs.String("ledger", cfg.LedgerPath, "sqlite run ledger path")
	limit := fs.Int("limit", cfg.RunsLimit, "max runs to list")
	runID := fs.String("run", "", "show log entries of one run")
	_ = fs.Parse(args)
	if err := cfg.Require("--ledger / FOODCLEAN_LEDGER_PATH", *ledgerPath); err != nil {
		return err
	}

	db, err := storage.Open(*ledgerPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if strings.TrimSpace(*runID) != "" {
		entries, err := db.GetRunEntries(*runID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("no log entries for run=%s", *runID)
		}
		for _, e := range entries {
			fmt.Println(pipeline.FormatEntry(e))
		}
		return nil
	}

	last, err := db.LastSuccessfulRun()
	if err != nil {
		return err
	}
	if last != nil {
		fmt.Printf("last successful run: %s\n", *last)
	}

	runs, err := db.ListRuns(*limit)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"run", "status", "rows in", "rows out", "dropped", "started", "input"})
	for _, r := range runs {
		table.Append([]string{
			r.RunID, r.Status,
			fmt.Sprint(r.RowsIn), fmt.Sprint(r.RowsOut), fmt.Sprint(r.RowsDropped),
			r.StartedAt, r.InputPath,
		})
	}
	table.Render()
	return nil
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func usage() {
	fmt.Println(`Usage:
  foodclean run [--input data/openfood.csv] [--output out/cleaned_openfood.csv] [--summary out/cleaning_summary.log] [--profile profile.yaml] [--ledger runs.db] [--metrics foodclean.prom]
  foodclean runs [--ledger runs.db] [--limit 20] [--run <run-id>]
  foodclean profile:show [--profile profile.yaml]`)
}
