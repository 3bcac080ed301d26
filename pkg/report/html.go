package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"digital.vasic.verify/pkg/assertion"
	"digital.vasic.verify/pkg/testcase"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

// HTMLReporter renders the Markdown summary of a run into a
// standalone HTML page when the run ends.
type HTMLReporter struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

// NewHTMLReporter creates an HTML reporter writing to w.
func NewHTMLReporter(w io.Writer) *HTMLReporter {
	return &HTMLReporter{w: w}
}

func (r *HTMLReporter) RunStarted(RunInfo)                             {}
func (r *HTMLReporter) TestStarted(testcase.Info)                      {}
func (r *HTMLReporter) AssertionEnded(testcase.Info, assertion.Result) {}
func (r *HTMLReporter) TestEnded(testcase.Info, *testcase.Result)      {}

// RunEnded writes the page.
func (r *HTMLReporter) RunEnded(s *testcase.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	page, err := GenerateHTML(s)
	if err != nil {
		r.err = err
		return
	}
	if _, err := r.w.Write(page); err != nil {
		r.err = fmt.Errorf("write html report: %w", err)
	}
}

// Err returns the error of the last write, if any.
func (r *HTMLReporter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// GenerateHTML renders s as an HTML page.
func GenerateHTML(s *testcase.Summary) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert(
		[]byte(GenerateMarkdown(s)), &body,
	); err != nil {
		return nil, fmt.Errorf("failed to render summary: %w", err)
	}

	var buf bytes.Buffer
	writeHTMLHeader(&buf, s.Name+" - Test Summary", s.Succeeded())
	buf.Write(body.Bytes())
	writeHTMLFooter(&buf)
	return buf.Bytes(), nil
}

func writeHTMLHeader(w io.Writer, title string, passed bool) {
	accent := "#27ae60"
	if !passed {
		accent = "#e74c3c"
	}
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>
body {
  font-family: -apple-system, BlinkMacSystemFont,
    "Segoe UI", Roboto, sans-serif;
  max-width: 960px;
  margin: 0 auto;
  padding: 20px;
  color: #333;
  background: #f9f9f9;
}
h1 { color: #2c3e50; border-bottom: 2px solid %s; padding-bottom: 10px; }
h2 { color: #2c3e50; margin-top: 30px; }
h3 { color: #34495e; }
table {
  border-collapse: collapse;
  width: 100%%;
  margin: 10px 0;
  background: #fff;
}
th, td {
  border: 1px solid #ddd;
  padding: 8px 12px;
  text-align: left;
}
th { background: #3498db; color: #fff; }
tr:nth-child(even) { background: #f2f2f2; }
blockquote { color: #e74c3c; margin-left: 0; }
code {
  background: #ecf0f1;
  padding: 2px 6px;
  border-radius: 3px;
  font-size: 0.9em;
}
</style>
</head>
<body>
`, html.EscapeString(title), accent)
}

func writeHTMLFooter(w io.Writer) {
	fmt.Fprintln(w, "</body>")
	fmt.Fprintln(w, "</html>")
}
