package report

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"digital.vasic.verify/pkg/assertion"
	"digital.vasic.verify/pkg/testcase"
)

// XMLReporter writes the run as a Catch style XML document:
//
//	<Catch name>
//	  <Group name>
//	    <TestCase name description filename line>
//	      <Expression success type filename line>
//	        <Original>..</Original>
//	        <Expanded>..</Expanded>
//	      </Expression>
//	      <OverallResult success status/>
//	    </TestCase>
//	    <OverallResults successes failures/>
//	  </Group>
//	  <OverallResults successes failures/>
//	</Catch>
//
// The document is complete once RunEnded returns.
type XMLReporter struct {
	mu   sync.Mutex
	x    *XMLWriter
	opts options
}

// NewXMLReporter creates an XML reporter writing to w.
func NewXMLReporter(w io.Writer, opts ...Option) *XMLReporter {
	return &XMLReporter{
		x:    NewXMLWriter(w),
		opts: newOptions(opts),
	}
}

// RunStarted opens the document.
func (r *XMLReporter) RunStarted(run RunInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.x.WriteDeclaration()
	r.x.StartElement("Catch").WriteAttribute("name", run.Name)
	r.x.StartElement("Group").WriteAttribute("name", run.Name)
}

// TestStarted opens a TestCase element.
func (r *XMLReporter) TestStarted(info testcase.Info) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.x.StartElement("TestCase").
		WriteAttribute("name", info.Name).
		WriteAttribute("description", info.Description).
		WriteAttribute("filename", info.File).
		WriteAttribute("line", info.Line)
}

// AssertionEnded writes failed assertions, and passing ones
// when successes are included.
func (r *XMLReporter) AssertionEnded(
	_ testcase.Info,
	res assertion.Result,
) {
	if res.Passed && !r.opts.successes {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if res.Expression == "" {
		r.writeExplicit(res)
		return
	}

	end := r.x.Scoped("Expression")
	r.x.WriteAttribute("success", res.Passed).
		WriteAttribute("type", res.Macro).
		WriteAttribute("filename", res.File).
		WriteAttribute("line", res.Line)

	r.element("Original", res.Expression)
	r.element("Expanded", res.Expanded)
	r.element("Info", res.Message)
	r.element("Warning", res.Note)
	end()
}

// writeExplicit writes FAIL and SUCCEED results, which carry
// only a message.
func (r *XMLReporter) writeExplicit(res assertion.Result) {
	name := "Success"
	if !res.Passed {
		name = "Failure"
	}
	r.x.StartElement(name).
		WriteAttribute("filename", res.File).
		WriteAttribute("line", res.Line).
		WriteText(res.Message).
		EndElement()
}

// TestEnded writes the outcome and closes the TestCase.
func (r *XMLReporter) TestEnded(
	info testcase.Info,
	res *testcase.Result,
) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch res.Status {
	case testcase.StatusExcepted:
		r.x.StartElement("Exception").
			WriteAttribute("filename", info.File).
			WriteAttribute("line", info.Line).
			WriteText(res.Error).
			EndElement()
	case testcase.StatusCrashed:
		r.x.StartElement("FatalErrorCondition").
			WriteAttribute("signal", res.Signal).
			WriteText(outcomeText(res)).
			EndElement()
	case testcase.StatusTimedOut:
		r.x.StartElement("Timeout").
			WriteText(res.Error).
			EndElement()
	}

	r.x.StartElement("OverallResult").
		WriteAttribute("success", res.Passed()).
		WriteAttribute("status", string(res.Status))
	if r.opts.durations {
		r.x.WriteAttribute("durationInSeconds",
			strconv.FormatFloat(res.Duration.Seconds(), 'f', 6, 64))
	}
	r.x.EndElement()

	r.x.EndElement() // TestCase
}

// RunEnded writes the totals and closes the document.
func (r *XMLReporter) RunEnded(s *testcase.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	failures := s.AssertionsFailed + s.Excepted + s.Crashed +
		s.TimedOut

	for r.x.Depth() > 2 {
		r.x.EndElement()
	}
	r.totals(s, failures)
	r.x.EndElement() // Group
	r.totals(s, failures)
	r.x.StartElement("OverallResultsCases").
		WriteAttribute("successes", s.Passed).
		WriteAttribute("failures", s.Unsuccessful()-s.Skipped)
	if s.Skipped > 0 {
		r.x.WriteAttribute("skipped", s.Skipped)
	}
	r.x.EndElement()
	_ = r.x.Close()
}

// Err returns the first error writing the document.
func (r *XMLReporter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.x.Err(); err != nil {
		return fmt.Errorf("xml report: %w", err)
	}
	return nil
}

func (r *XMLReporter) totals(s *testcase.Summary, failures int) {
	r.x.StartElement("OverallResults").
		WriteAttribute("successes", s.AssertionsPassed).
		WriteAttribute("failures", failures).
		EndElement()
}

// element writes <name>text</name>, skipping empty text.
func (r *XMLReporter) element(name, text string) {
	if text == "" {
		return
	}
	r.x.StartElement(name).WriteText(text).EndElement()
}
