package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"foodclean/internal"
	"foodclean/internal/config"
	"foodclean/internal/logging"
)

// Ledger persists finished runs.
type Ledger interface {
	RecordRun(s internal.RunSummary, status string) error
}

// Observer receives the summary of every finished run.
type Observer interface {
	Observe(s internal.RunSummary, status string)
}

type Runner struct {
	profile  config.Profile
	steps    []Step
	now      func() time.Time
	logger   *slog.Logger
	ledger   Ledger
	observer Observer
}

type Option func(*Runner)

func WithClock(now func() time.Time) Option { return func(r *Runner) { r.now = now } }

func WithLogger(l *slog.Logger) Option { return func(r *Runner) { r.logger = l } }

func WithLedger(l Ledger) Option { return func(r *Runner) { r.ledger = l } }

func WithObserver(o Observer) Option { return func(r *Runner) { r.observer = o } }

func NewRunner(profile config.Profile, opts ...Option) *Runner {
	r := &Runner{
		profile: profile,
		steps:   BuildSteps(profile),
		now:     time.Now,
		logger:  logging.L(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Clean runs every step over a private copy of t and returns the cleaned
// table with the timestamped log entries, in execution order.
func (r *Runner) Clean(ctx context.Context, t internal.Table) (internal.Table, []internal.LogEntry, error) {
	cur := t.Clone()
	var entries []internal.LogEntry
	for _, step := range r.steps {
		if err := ctx.Err(); err != nil {
			return internal.Table{}, entries, err
		}
		var produced []internal.LogEntry
		cur, produced = step.Apply(cur)
		for _, e := range produced {
			if e.Step == "" {
				e.Step = step.Name
			}
			e.At = r.now()
			entries = append(entries, e)
			r.logger.Info(e.Message,
				slog.String("step", e.Step),
				slog.String("column", e.Column),
				slog.Int("rows_affected", e.RowsAffected),
				slog.Int("rows_dropped", e.RowsDropped))
		}
	}
	return cur, entries, nil
}

// Run loads inputPath, cleans it and writes outputPath. Any load or write
// failure aborts the run; the partial summary is still returned.
func (r *Runner) Run(ctx context.Context, inputPath, outputPath string) (internal.RunSummary, error) {
	summary := internal.RunSummary{
		RunID:      uuid.NewString(),
		InputPath:  inputPath,
		OutputPath: outputPath,
		StartedAt:  r.now(),
	}
	logger := r.logger.With(slog.String("run_id", summary.RunID))
	logger.Info("loading input", slog.String("path", inputPath))

	table, delim, err := LoadTable(inputPath, r.profile)
	if err != nil {
		return r.finish(summary, err)
	}
	summary.RowsIn = table.Len()
	logger.Info("input loaded", slog.Int("rows", table.Len()), slog.Int("columns", len(table.Columns)))

	cleaned, entries, err := r.Clean(ctx, table)
	summary.Entries = entries
	if err != nil {
		return r.finish(summary, err)
	}
	summary.RowsOut = cleaned.Len()
	summary.RowsDropped = summary.RowsIn - summary.RowsOut
	for _, e := range entries {
		if e.Column == "" {
			continue
		}
		cs := summary.Column(e.Column)
		cs.Changed += e.ValuesChanged
		cs.Nulled += e.ValuesNulled
		cs.Imputed += e.ValuesImputed
	}

	if d := firstRune(r.profile.OutputDelimiter, 0); d != 0 {
		delim = d
	}
	if err := WriteTable(cleaned, outputPath, delim); err != nil {
		return r.finish(summary, err)
	}
	logger.Info("output written", slog.String("path", outputPath), slog.Int("rows", cleaned.Len()))
	return r.finish(summary, nil)
}

func (r *Runner) finish(summary internal.RunSummary, runErr error) (internal.RunSummary, error) {
	summary.FinishedAt = r.now()
	status := internal.StatusSucceeded
	if runErr != nil {
		status = internal.StatusFailed
		r.logger.Error("run failed", slog.String("run_id", summary.RunID), slog.String("error", runErr.Error()))
	}
	if r.ledger != nil {
		if err := r.ledger.RecordRun(summary, status); err != nil {
			r.logger.Warn("failed to record run", slog.String("run_id", summary.RunID), slog.String("error", err.Error()))
		}
	}
	if r.observer != nil {
		r.observer.Observe(summary, status)
	}
	return summary, runErr
}
