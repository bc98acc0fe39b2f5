package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"mdprep/internal/config"
	"mdprep/internal/history"
	"mdprep/internal/logging"
	"mdprep/internal/pipeline"
	"mdprep/internal/report"
	"mdprep/internal/worktable"
)

// ErrNoSamples indicates the work table yielded no usable rows.
var ErrNoSamples = errors.New("work table contains no valid samples")

// ErrWorkspaceLocked indicates another run holds the workspace lock.
var ErrWorkspaceLocked = errors.New("workspace is locked by another run")

// lockFileName lives in the workspace so concurrent runs against the same
// sample tree exclude each other.
const lockFileName = ".mdprep.lock"

// Processor prepares one sample end to end.
type Processor interface {
	Process(ctx context.Context, item worktable.WorkItem) pipeline.Outcome
}

// Ledger records run history. *history.Store satisfies it; a nil ledger
// disables recording.
type Ledger interface {
	BeginRun(ctx context.Context, runID, tablePath string, startedAt time.Time) error
	RecordOutcome(ctx context.Context, runID string, outcome pipeline.Outcome) error
	FinishRun(ctx context.Context, runID string, summary history.Summary, finishedAt time.Time) error
}

// Stats counts the dispositions of a run. Total is always the sum of the
// other three.
type Stats struct {
	Total     int
	Completed int
	Failed    int
	Skipped   int
}

// Result describes one finished batch run.
type Result struct {
	RunID      string
	Stats      Stats
	Outcomes   []pipeline.Outcome
	SkippedIDs []int64
	ReportPath string
}

// Runner drives a full batch: load the table, skip complete samples, run
// the pipeline over the rest, then write the history rows and report.
type Runner struct {
	cfg       *config.Config
	processor Processor
	ledger    Ledger
	logger    *slog.Logger
	logPath   string
	progress  bool
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLedger enables run history recording.
func WithLedger(ledger Ledger) Option {
	return func(r *Runner) { r.ledger = ledger }
}

// WithProgress enables the terminal progress bar.
func WithProgress(enabled bool) Option {
	return func(r *Runner) { r.progress = enabled }
}

// WithLogPath records the run log location in the report.
func WithLogPath(path string) Option {
	return func(r *Runner) { r.logPath = path }
}

func New(cfg *config.Config, processor Processor, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	runner := &Runner{
		cfg:       cfg,
		processor: processor,
		logger:    logging.NewComponentLogger(logger, "batch"),
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Run executes the batch described by the work table at tablePath.
//
// Samples whose key artifacts already exist are skipped without dispatch.
// A per-sample failure aborts only that sample; the run continues. Run
// returns an error only for run-level problems (unusable table, lock
// contention, cancellation); per-sample failures are reported in the
// result's Stats.
//
// On cancellation the result is still returned alongside the error and
// holds the outcomes dispatched before the interrupt; the report and
// ledger rows for those samples have already been written. Errors raised
// before dispatch return a nil result.
func (r *Runner) Run(ctx context.Context, tablePath string) (*Result, error) {
	unlock, err := r.lockWorkspace()
	if err != nil {
		return nil, err
	}
	defer unlock()

	items, err := worktable.Load(tablePath, r.logger)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSamples, tablePath)
	}

	pending, skippedIDs := r.partition(items)

	runID := uuid.NewString()
	startedAt := time.Now()
	r.logger.Info("batch started",
		"run_id", runID,
		"table", tablePath,
		"total", len(items),
		"pending", len(pending),
		"skipped", len(skippedIDs))

	if r.ledger != nil {
		if err := r.ledger.BeginRun(ctx, runID, tablePath, startedAt); err != nil {
			return nil, fmt.Errorf("record run start: %w", err)
		}
	}

	outcomes, err := r.dispatch(ctx, runID, pending)

	stats := Stats{
		Total:   len(items),
		Skipped: len(skippedIDs),
	}
	for _, outcome := range outcomes {
		if outcome.Success {
			stats.Completed++
		} else {
			stats.Failed++
		}
	}

	finishedAt := time.Now()
	if r.ledger != nil {
		summary := history.Summary{
			Total:     stats.Total,
			Completed: stats.Completed,
			Failed:    stats.Failed,
			Skipped:   stats.Skipped,
		}
		if ledgerErr := r.ledger.FinishRun(ctx, runID, summary, finishedAt); ledgerErr != nil {
			r.logger.Warn("run history not finalized", logging.Error(ledgerErr))
		}
	}

	result := &Result{
		RunID:      runID,
		Stats:      stats,
		Outcomes:   outcomes,
		SkippedIDs: skippedIDs,
	}

	reportPath, reportErr := report.Write(r.cfg.Paths.LogDir, report.Summary{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		TablePath:  tablePath,
		LogPath:    r.logPath,
		Total:      stats.Total,
		Completed:  stats.Completed,
		Failed:     stats.Failed,
		Skipped:    stats.Skipped,
		Outcomes:   outcomes,
		SkippedIDs: skippedIDs,
	})
	if reportErr != nil {
		r.logger.Warn("report not written", logging.Error(reportErr))
	} else {
		result.ReportPath = reportPath
	}

	r.logger.Info("batch finished",
		"run_id", runID,
		"completed", stats.Completed,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
		"elapsed", finishedAt.Sub(startedAt).Round(time.Second))

	return result, err
}

// partition separates items already complete on disk from those still to run.
func (r *Runner) partition(items []worktable.WorkItem) (pending []worktable.WorkItem, skippedIDs []int64) {
	for _, item := range items {
		sampleDir := r.cfg.SampleDir(item.SampleID)
		if pipeline.IsComplete(sampleDir) {
			r.logger.Info("sample already complete, skipping", "sample", item.SampleID)
			skippedIDs = append(skippedIDs, item.SampleID)
			continue
		}
		pending = append(pending, item)
	}
	return pending, skippedIDs
}

func (r *Runner) dispatch(ctx context.Context, runID string, pending []worktable.WorkItem) ([]pipeline.Outcome, error) {
	bar := r.newProgressBar(len(pending))

	outcomes := make([]pipeline.Outcome, 0, len(pending))
	ok, failed := 0, 0
	for _, item := range pending {
		if err := ctx.Err(); err != nil {
			if bar != nil {
				_ = bar.Exit()
			}
			return outcomes, fmt.Errorf("batch interrupted: %w", err)
		}

		outcome := r.processor.Process(ctx, item)
		outcomes = append(outcomes, outcome)
		if outcome.Success {
			ok++
		} else {
			failed++
		}

		if r.ledger != nil {
			if err := r.ledger.RecordOutcome(ctx, runID, outcome); err != nil {
				r.logger.Warn("outcome not recorded", "sample", outcome.SampleID, logging.Error(err))
			}
		}
		if bar != nil {
			bar.Describe(fmt.Sprintf("samples (ok %d, failed %d)", ok, failed))
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return outcomes, nil
}

func (r *Runner) newProgressBar(total int) *progressbar.ProgressBar {
	if !r.progress || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("samples"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *Runner) lockWorkspace() (func(), error) {
	if err := os.MkdirAll(r.cfg.Paths.WorkspaceDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure workspace: %w", err)
	}
	lock := flock.New(filepath.Join(r.cfg.Paths.WorkspaceDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire workspace lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceLocked, lock.Path())
	}
	return func() { _ = lock.Unlock() }, nil
}
