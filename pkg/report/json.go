package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"digital.vasic.verify/pkg/assertion"
	"digital.vasic.verify/pkg/testcase"
)

// JSONReporter writes the run summary as one JSON document
// when the run ends.
type JSONReporter struct {
	mu   sync.Mutex
	w    io.Writer
	opts options
	err  error
}

// NewJSONReporter creates a JSON reporter writing to w.
// Output is indented unless WithPretty(false) or
// WithCanonical(true) is given.
func NewJSONReporter(w io.Writer, opts ...Option) *JSONReporter {
	return &JSONReporter{w: w, opts: newOptions(opts)}
}

func (r *JSONReporter) RunStarted(RunInfo)                             {}
func (r *JSONReporter) TestStarted(testcase.Info)                      {}
func (r *JSONReporter) AssertionEnded(testcase.Info, assertion.Result) {}
func (r *JSONReporter) TestEnded(testcase.Info, *testcase.Result)      {}

// RunEnded writes the summary.
func (r *JSONReporter) RunEnded(s *testcase.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := MarshalSummary(s, r.opts.pretty, r.opts.canonical)
	if err != nil {
		r.err = err
		return
	}
	if _, err := r.w.Write(append(data, '\n')); err != nil {
		r.err = fmt.Errorf("write json report: %w", err)
	}
}

// Err returns the error of the last write, if any.
func (r *JSONReporter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// MarshalSummary encodes s. Canonical output follows RFC 8785
// and ignores pretty.
func MarshalSummary(
	s *testcase.Summary,
	pretty, canonical bool,
) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}

	switch {
	case canonical:
		data, err = jsoncanonicalizer.Transform(data)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to canonicalize summary: %w", err,
			)
		}
	case pretty:
		data, err = json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf(
				"failed to marshal summary: %w", err,
			)
		}
	}
	return data, nil
}
