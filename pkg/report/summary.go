package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"digital.vasic.verify/pkg/assertion"
	"digital.vasic.verify/pkg/testcase"
)

// MarkdownReporter writes the Markdown summary of a run when
// the run ends.
type MarkdownReporter struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

// NewMarkdownReporter creates a Markdown reporter writing to w.
func NewMarkdownReporter(w io.Writer) *MarkdownReporter {
	return &MarkdownReporter{w: w}
}

func (r *MarkdownReporter) RunStarted(RunInfo)                             {}
func (r *MarkdownReporter) TestStarted(testcase.Info)                      {}
func (r *MarkdownReporter) AssertionEnded(testcase.Info, assertion.Result) {}
func (r *MarkdownReporter) TestEnded(testcase.Info, *testcase.Result)      {}

// RunEnded writes the summary.
func (r *MarkdownReporter) RunEnded(s *testcase.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := io.WriteString(r.w, GenerateMarkdown(s)); err != nil {
		r.err = fmt.Errorf("write markdown report: %w", err)
	}
}

// Err returns the error of the last write, if any.
func (r *MarkdownReporter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// GenerateMarkdown renders a run summary as Markdown: an
// overview table of every test, the failed assertions of each
// unsuccessful test, and run statistics.
func GenerateMarkdown(s *testcase.Summary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s - Test Summary\n\n", s.Name)
	fmt.Fprintf(&sb, "**Run ID:** %s\n\n", s.RunID)
	fmt.Fprintf(&sb, "**Started:** %s\n\n",
		s.StartTime.Format(time.RFC3339))

	sb.WriteString("## Overview\n\n")
	sb.WriteString("| Test | Status | Duration | Assertions |\n")
	sb.WriteString("|------|--------|----------|------------|\n")
	for _, r := range s.Results {
		fmt.Fprintf(&sb, "| %s | %s | %v | %d/%d |\n",
			escapeCell(r.Name),
			StatusLabel(r.Status),
			r.Duration.Round(time.Microsecond),
			r.AssertionsPassed,
			r.AssertionsPassed+r.AssertionsFailed,
		)
	}

	writeFailures(&sb, s)

	sb.WriteString("\n## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Total Tests | %d |\n", s.Total)
	fmt.Fprintf(&sb, "| Passed | %d |\n", s.Passed)
	fmt.Fprintf(&sb, "| Failed | %d |\n", s.Failed)
	fmt.Fprintf(&sb, "| Excepted | %d |\n", s.Excepted)
	fmt.Fprintf(&sb, "| Crashed | %d |\n", s.Crashed)
	fmt.Fprintf(&sb, "| Timed Out | %d |\n", s.TimedOut)
	if s.Skipped > 0 {
		fmt.Fprintf(&sb, "| Skipped | %d |\n", s.Skipped)
	}
	fmt.Fprintf(&sb, "| Assertions | %d/%d |\n",
		s.AssertionsPassed, s.AssertionsPassed+s.AssertionsFailed)
	fmt.Fprintf(&sb, "| Pass Rate | %.0f%% |\n", passRate(s)*100)
	fmt.Fprintf(&sb, "| Total Duration | %v |\n",
		s.Duration.Round(time.Millisecond))

	sb.WriteString("\n---\n\n")
	sb.WriteString("*Generated by verify*\n")

	return sb.String()
}

func writeFailures(sb *strings.Builder, s *testcase.Summary) {
	if s.Succeeded() {
		return
	}
	sb.WriteString("\n## Failures\n")
	for _, r := range s.Results {
		if r.Passed() || r.Status == testcase.StatusSkipped {
			continue
		}
		fmt.Fprintf(sb, "\n### %s\n\n", r.Name)
		fmt.Fprintf(sb, "`%s:%d` - **%s**",
			filepath.Base(r.File), r.Line, StatusLabel(r.Status))
		if r.Signal != "" {
			fmt.Fprintf(sb, " (%s)", r.Signal)
		}
		sb.WriteString("\n")
		if r.Error != "" {
			fmt.Fprintf(sb, "\n> %s\n", r.Error)
		}
		if len(r.Failures) > 0 {
			sb.WriteString("\n")
		}
		for _, f := range r.Failures {
			fmt.Fprintf(sb, "- `%s` at `%s:%d`",
				f.Original(), filepath.Base(f.File), f.Line)
			if f.HasExpansion() {
				fmt.Fprintf(sb, ", expanded `%s`", f.Expanded)
			}
			if f.Message != "" {
				fmt.Fprintf(sb, ": %s", f.Message)
			}
			sb.WriteString("\n")
		}
	}
}

func passRate(s *testcase.Summary) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total)
}

// escapeCell keeps pipes in names from breaking a table row.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
