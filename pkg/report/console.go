package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"digital.vasic.verify/pkg/assertion"
	"digital.vasic.verify/pkg/testcase"
)

const defaultWidth = 79

// ConsoleReporter prints failures as they happen and a totals
// line at the end. A test's header is printed only before its
// first reported assertion or outcome.
type ConsoleReporter struct {
	mu        sync.Mutex
	w         io.Writer
	opts      options
	width     int
	red       *color.Color
	green     *color.Color
	yellow    *color.Color
	bold      *color.Color
	dim       *color.Color
	current   testcase.Info
	headerOut bool
}

// NewConsoleReporter creates a console reporter writing to w.
// Colors are used when w is a terminal unless WithColor
// decides otherwise.
func NewConsoleReporter(w io.Writer, opts ...Option) *ConsoleReporter {
	o := newOptions(opts)

	enabled := false
	if o.color != nil {
		enabled = *o.color
	} else if f, ok := w.(*os.File); ok {
		enabled = !color.NoColor && isatty.IsTerminal(f.Fd())
	}

	width := o.width
	if width <= 0 {
		width = terminalWidth(w)
	}

	r := &ConsoleReporter{
		w:      w,
		opts:   o,
		width:  width,
		red:    color.New(color.FgRed),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		bold:   color.New(color.Bold),
		dim:    color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{
		r.red, r.green, r.yellow, r.bold, r.dim,
	} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// terminalWidth returns the width of w when it is a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 1 {
		return defaultWidth
	}
	return cols - 1
}

// RunStarted prints nothing.
func (r *ConsoleReporter) RunStarted(RunInfo) {}

// TestStarted remembers the test for its lazy header.
func (r *ConsoleReporter) TestStarted(info testcase.Info) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = info
	r.headerOut = false
}

// AssertionEnded prints failed assertions, and passing ones
// when successes are included.
func (r *ConsoleReporter) AssertionEnded(
	_ testcase.Info,
	res assertion.Result,
) {
	if res.Passed && !r.opts.successes {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.header()

	status := r.green.Sprint("PASSED")
	if !res.Passed {
		status = r.red.Sprint("FAILED")
	}
	fmt.Fprintf(r.w, "%s: %s:\n", res.Location(), status)

	if res.Expression != "" {
		fmt.Fprintf(r.w, "  %s\n", r.bold.Sprint(res.Original()))
	}
	if res.HasExpansion() {
		fmt.Fprintf(r.w, "with expansion:\n  %s\n", res.Expanded)
	}
	if res.Message != "" {
		label := "with message"
		if res.Expression == "" {
			label = "explicitly with message"
		}
		fmt.Fprintf(r.w, "%s:\n  %s\n", label, res.Message)
	}
	if res.Note != "" {
		fmt.Fprintf(r.w, "%s %s\n", r.yellow.Sprint("note:"), res.Note)
	}
	fmt.Fprintln(r.w)
}

// TestEnded prints the outcome of tests that did not end
// through their assertions.
func (r *ConsoleReporter) TestEnded(
	info testcase.Info,
	res *testcase.Result,
) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var reason string
	switch res.Status {
	case testcase.StatusExcepted:
		reason = "due to unexpected panic with message"
	case testcase.StatusCrashed:
		reason = "due to a fatal error condition"
	case testcase.StatusTimedOut:
		reason = "due to a timeout"
	default:
		return
	}

	r.header()
	fmt.Fprintf(r.w, "%s: %s:\n%s:\n  %s\n\n",
		info.Location(), r.red.Sprint("FAILED"), reason,
		outcomeText(res))
}

// RunEnded prints the totals.
func (r *ConsoleReporter) RunEnded(s *testcase.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.w, r.dim.Sprint(strings.Repeat("=", r.width)))

	if s.Total == 0 {
		fmt.Fprintln(r.w, r.yellow.Sprint("No tests ran"))
		return
	}

	if s.Succeeded() {
		fmt.Fprintln(r.w, r.green.Sprintf(
			"All tests passed (%s in %s)",
			plural(s.AssertionsPassed, "assertion"),
			plural(s.Total, "test case"),
		))
		return
	}

	fmt.Fprintln(r.w, r.totalsLine("test cases", s.Total, s.Passed,
		r.caseCounts(s)))
	fmt.Fprintln(r.w, r.totalsLine("assertions",
		s.AssertionsPassed+s.AssertionsFailed, s.AssertionsPassed,
		[]count{{"failed", s.AssertionsFailed}}))

	switch {
	case s.Interrupted:
		fmt.Fprintln(r.w, r.yellow.Sprint("Run interrupted"))
	case s.Aborted:
		fmt.Fprintln(r.w, r.yellow.Sprint("Run aborted"))
	}
}

type count struct {
	label string
	n     int
}

// caseCounts lists the non-zero unsuccessful outcomes.
func (r *ConsoleReporter) caseCounts(s *testcase.Summary) []count {
	all := []count{
		{r.label(testcase.StatusFailed), s.Failed},
		{r.label(testcase.StatusExcepted), s.Excepted},
		{r.label(testcase.StatusCrashed), s.Crashed},
		{r.label(testcase.StatusTimedOut), s.TimedOut},
		{r.label(testcase.StatusSkipped), s.Skipped},
	}
	out := all[:0]
	for _, c := range all {
		if c.n > 0 {
			out = append(out, c)
		}
	}
	return out
}

func (r *ConsoleReporter) totalsLine(
	name string,
	total, passed int,
	rest []count,
) string {
	parts := []string{
		fmt.Sprintf("%-10s: %d", name, total),
		r.green.Sprintf("%d passed", passed),
	}
	for _, c := range rest {
		if c.n == 0 {
			continue
		}
		parts = append(parts, r.red.Sprintf("%d %s", c.n, c.label))
	}
	return strings.Join(parts, " | ")
}

// label renders a status for humans, e.g. "timed out".
func (r *ConsoleReporter) label(s testcase.Status) string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// StatusLabel renders a status as a title, e.g. "Timed Out".
func StatusLabel(s testcase.Status) string {
	return cases.Title(language.English).String(
		strings.ReplaceAll(string(s), "_", " "),
	)
}

// header prints the current test's banner once.
func (r *ConsoleReporter) header() {
	if r.headerOut {
		return
	}
	r.headerOut = true

	rule := r.dim.Sprint(strings.Repeat("-", r.width))
	fmt.Fprintln(r.w, rule)
	fmt.Fprintln(r.w, r.bold.Sprint(r.current.Name))
	if r.current.Description != "" {
		fmt.Fprintf(r.w, "  %s\n", r.current.Description)
	}
	fmt.Fprintln(r.w, rule)
	fmt.Fprintln(r.w, r.current.Location())
	fmt.Fprintln(r.w, r.dim.Sprint(strings.Repeat(".", r.width)))
	fmt.Fprintln(r.w)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
