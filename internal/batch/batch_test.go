package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"mdprep/internal/config"
	"mdprep/internal/history"
	"mdprep/internal/pipeline"
	"mdprep/internal/worktable"
)

type fakeProcessor struct {
	failIDs map[int64]bool
	calls   []int64
}

func (f *fakeProcessor) Process(_ context.Context, item worktable.WorkItem) pipeline.Outcome {
	f.calls = append(f.calls, item.SampleID)
	if f.failIDs[item.SampleID] {
		return pipeline.Outcome{SampleID: item.SampleID, ErrorMessage: "boom", Elapsed: time.Millisecond}
	}
	return pipeline.Outcome{SampleID: item.SampleID, Success: true, Elapsed: time.Millisecond}
}

type fakeLedger struct {
	began    []string
	recorded []pipeline.Outcome
	finished map[string]history.Summary
}

func (f *fakeLedger) BeginRun(_ context.Context, runID, _ string, _ time.Time) error {
	f.began = append(f.began, runID)
	return nil
}

func (f *fakeLedger) RecordOutcome(_ context.Context, _ string, outcome pipeline.Outcome) error {
	f.recorded = append(f.recorded, outcome)
	return nil
}

func (f *fakeLedger) FinishRun(_ context.Context, runID string, summary history.Summary, _ time.Time) error {
	if f.finished == nil {
		f.finished = make(map[string]history.Summary)
	}
	f.finished[runID] = summary
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkspaceDir = filepath.Join(root, "workspace")
	cfg.Paths.TemplateDir = filepath.Join(root, "templates")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	return &cfg
}

func writeTable(t *testing.T, dir string, rows string) string {
	t.Helper()
	path := filepath.Join(dir, "samples.csv")
	content := "sample,CID_A,CID_B\n" + rows
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}
	return path
}

func markComplete(t *testing.T, cfg *config.Config, sampleID int64) {
	t.Helper()
	dir := cfg.SampleDir(sampleID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir sample dir: %v", err)
	}
	for _, artifact := range pipeline.KeyArtifacts(dir) {
		if err := os.WriteFile(artifact, []byte("x\n"), 0o644); err != nil {
			t.Fatalf("write artifact: %v", err)
		}
	}
}

func TestRunCountsAndLedger(t *testing.T) {
	cfg := testConfig(t)
	table := writeTable(t, t.TempDir(), "1,100,200\n2,101,201\n3,102,202\n")
	markComplete(t, cfg, 2)

	processor := &fakeProcessor{failIDs: map[int64]bool{3: true}}
	ledger := &fakeLedger{}
	runner := New(cfg, processor, nil, WithLedger(ledger))

	result, err := runner.Run(context.Background(), table)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := Stats{Total: 3, Completed: 1, Failed: 1, Skipped: 1}
	if result.Stats != want {
		t.Errorf("Stats = %+v, want %+v", result.Stats, want)
	}
	if got := result.Stats.Completed + result.Stats.Failed + result.Stats.Skipped; got != result.Stats.Total {
		t.Errorf("counters sum to %d, want total %d", got, result.Stats.Total)
	}
	if len(processor.calls) != 2 {
		t.Errorf("processor dispatched %v, want samples 1 and 3 only", processor.calls)
	}
	for _, id := range processor.calls {
		if id == 2 {
			t.Error("complete sample 2 should not be dispatched")
		}
	}

	if len(ledger.began) != 1 || ledger.began[0] != result.RunID {
		t.Errorf("ledger began runs %v, want [%s]", ledger.began, result.RunID)
	}
	if len(ledger.recorded) != 2 {
		t.Errorf("ledger recorded %d outcomes, want 2", len(ledger.recorded))
	}
	summary, ok := ledger.finished[result.RunID]
	if !ok {
		t.Fatal("run was not finalized in ledger")
	}
	if summary.Total != 3 || summary.Completed != 1 || summary.Failed != 1 || summary.Skipped != 1 {
		t.Errorf("ledger summary = %+v", summary)
	}

	if result.ReportPath == "" {
		t.Fatal("report path should be set")
	}
	if _, err := os.Stat(result.ReportPath); err != nil {
		t.Errorf("report file missing: %v", err)
	}
}

func TestRunRerunSkipsCompleted(t *testing.T) {
	cfg := testConfig(t)
	table := writeTable(t, t.TempDir(), "1,100,200\n2,101,201\n")

	processor := &fakeProcessor{}
	runner := New(cfg, processor, nil)

	if _, err := runner.Run(context.Background(), table); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	// The fake processor writes nothing, so nothing is complete yet and a
	// re-run must dispatch everything again.
	if _, err := runner.Run(context.Background(), table); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if len(processor.calls) != 4 {
		t.Fatalf("dispatched %v, want both samples both runs", processor.calls)
	}

	markComplete(t, cfg, 1)
	markComplete(t, cfg, 2)
	result, err := runner.Run(context.Background(), table)
	if err != nil {
		t.Fatalf("third Run() error = %v", err)
	}
	if len(processor.calls) != 4 {
		t.Errorf("complete samples were re-dispatched: %v", processor.calls)
	}
	if result.Stats.Skipped != 2 || result.Stats.Total != 2 {
		t.Errorf("Stats = %+v, want all skipped", result.Stats)
	}
}

func TestRunNoValidSamples(t *testing.T) {
	cfg := testConfig(t)
	table := writeTable(t, t.TempDir(), "abc,100,200\n")

	runner := New(cfg, &fakeProcessor{}, nil)
	_, err := runner.Run(context.Background(), table)
	if !errors.Is(err, ErrNoSamples) {
		t.Fatalf("Run() error = %v, want ErrNoSamples", err)
	}
}

func TestRunUnusableTableAborts(t *testing.T) {
	cfg := testConfig(t)
	runner := New(cfg, &fakeProcessor{}, nil)

	_, err := runner.Run(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, worktable.ErrTable) {
		t.Fatalf("Run() error = %v, want ErrTable", err)
	}
}

func TestRunWorkspaceLocked(t *testing.T) {
	cfg := testConfig(t)
	table := writeTable(t, t.TempDir(), "1,100,200\n")
	if err := os.MkdirAll(cfg.Paths.WorkspaceDir, 0o755); err != nil {
		t.Fatal(err)
	}

	held := flock.New(filepath.Join(cfg.Paths.WorkspaceDir, lockFileName))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("pre-acquire lock: locked=%v err=%v", locked, err)
	}
	defer held.Unlock()

	runner := New(cfg, &fakeProcessor{}, nil)
	_, err = runner.Run(context.Background(), table)
	if !errors.Is(err, ErrWorkspaceLocked) {
		t.Fatalf("Run() error = %v, want ErrWorkspaceLocked", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	cfg := testConfig(t)
	table := writeTable(t, t.TempDir(), "1,100,200\n2,101,201\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := New(cfg, &fakeProcessor{}, nil)
	result, err := runner.Run(ctx, table)
	if err == nil {
		t.Fatal("Run() with cancelled context should fail")
	}
	// Interrupted runs still return the partial result so callers can see
	// what was dispatched before the cancellation.
	if result == nil {
		t.Fatal("interrupted Run() should return the partial result")
	}
	if len(result.Outcomes) != 0 {
		t.Errorf("cancelled run dispatched %d samples", len(result.Outcomes))
	}
	if result.ReportPath == "" {
		t.Error("interrupted run should still write its report")
	}
}

type cancellingProcessor struct {
	cancel context.CancelFunc
	inner  fakeProcessor
}

func (c *cancellingProcessor) Process(ctx context.Context, item worktable.WorkItem) pipeline.Outcome {
	outcome := c.inner.Process(ctx, item)
	c.cancel() // interrupt arrives after the first sample
	return outcome
}

func TestRunInterruptKeepsPartialOutcomes(t *testing.T) {
	cfg := testConfig(t)
	table := writeTable(t, t.TempDir(), "1,100,200\n2,101,201\n3,102,202\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	processor := &cancellingProcessor{cancel: cancel}

	runner := New(cfg, processor, nil)
	result, err := runner.Run(ctx, table)
	if err == nil {
		t.Fatal("interrupted Run() should return an error")
	}
	if result == nil {
		t.Fatal("interrupted Run() should return the partial result")
	}
	if len(result.Outcomes) != 1 {
		t.Fatalf("partial result holds %d outcomes, want the 1 dispatched before the interrupt", len(result.Outcomes))
	}
	if result.Outcomes[0].SampleID != 1 {
		t.Errorf("partial outcome sample = %d, want 1", result.Outcomes[0].SampleID)
	}
	if result.Stats.Completed != 1 || result.Stats.Failed != 0 {
		t.Errorf("Stats = %+v, want the dispatched sample counted", result.Stats)
	}
}
