package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mdprep/internal/pipeline"
)

// Summary is everything the report needs about one finished batch run.
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	TablePath  string
	LogPath    string

	Total     int
	Completed int
	Failed    int
	Skipped   int

	// Outcomes holds the samples processed this run, in dispatch order.
	Outcomes []pipeline.Outcome
	// SkippedIDs holds the samples found already complete before dispatch.
	SkippedIDs []int64
	// LogFiles lists the run logs present in the log directory.
	LogFiles []string
}

// Write renders the run summary to a timestamped text file in dir and
// returns the file path.
func Write(dir string, summary Summary) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure report directory: %w", err)
	}
	if summary.LogFiles == nil {
		summary.LogFiles = runLogs(dir)
	}
	path := filepath.Join(dir, fmt.Sprintf("processing_report_%s.txt", summary.FinishedAt.Format("20060102_150405")))
	if err := os.WriteFile(path, []byte(Render(summary)), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Render produces the report text.
func Render(summary Summary) string {
	var b strings.Builder

	b.WriteString("mdprep processing report\n")
	b.WriteString("========================\n\n")
	fmt.Fprintf(&b, "Run:        %s\n", summary.RunID)
	fmt.Fprintf(&b, "Started:    %s\n", summary.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Finished:   %s\n", summary.FinishedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Duration:   %s\n", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Second))
	fmt.Fprintf(&b, "Work table: %s\n", summary.TablePath)
	if summary.LogPath != "" {
		fmt.Fprintf(&b, "Log file:   %s\n", summary.LogPath)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Samples:      %d\n", summary.Total)
	fmt.Fprintf(&b, "Completed:    %d\n", summary.Completed)
	fmt.Fprintf(&b, "Failed:       %d\n", summary.Failed)
	fmt.Fprintf(&b, "Skipped:      %d\n", summary.Skipped)
	fmt.Fprintf(&b, "Success rate: %s\n", SuccessRate(summary.Completed, summary.Total))

	completed := make([]pipeline.Outcome, 0, len(summary.Outcomes))
	failed := make([]pipeline.Outcome, 0, len(summary.Outcomes))
	for _, outcome := range summary.Outcomes {
		if outcome.Success {
			completed = append(completed, outcome)
		} else {
			failed = append(failed, outcome)
		}
	}

	if len(completed) > 0 {
		b.WriteString("\nCompleted samples:\n")
		for _, outcome := range completed {
			fmt.Fprintf(&b, "  %d (%s)\n", outcome.SampleID, outcome.Elapsed.Round(time.Second))
		}
	}
	if len(failed) > 0 {
		b.WriteString("\nFailed samples:\n")
		for _, outcome := range failed {
			fmt.Fprintf(&b, "  %d: %s\n", outcome.SampleID, outcome.ErrorMessage)
		}
	}
	if len(summary.SkippedIDs) > 0 {
		skipped := append([]int64(nil), summary.SkippedIDs...)
		sort.Slice(skipped, func(i, j int) bool { return skipped[i] < skipped[j] })
		b.WriteString("\nSkipped samples (already complete):\n")
		for _, id := range skipped {
			fmt.Fprintf(&b, "  %d\n", id)
		}
	}

	if len(summary.LogFiles) > 0 {
		b.WriteString("\nRun logs:\n")
		for _, logFile := range summary.LogFiles {
			fmt.Fprintf(&b, "  %s\n", logFile)
		}
	}

	return b.String()
}

// runLogs lists the run log files in dir, newest name last.
func runLogs(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "mdprep_*.log"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

// SuccessRate formats completed/total as a percentage with one decimal.
// Skipped samples do not count toward the rate: only samples completed this
// run do. A total of zero renders as "n/a" rather than dividing by zero.
func SuccessRate(completed, total int) string {
	if total == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(completed)/float64(total)*100)
}
