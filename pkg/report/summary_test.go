package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.verify/pkg/testcase"
)

func TestGenerateMarkdown_AllPassed(t *testing.T) {
	summary := testcase.NewSummary("suite")
	res := testcase.NewResult(testcase.Info{Name: "only"})
	res.Status = testcase.StatusPassed
	res.AssertionsPassed = 3
	res.Finish()
	summary.Add(res)
	summary.Finish()

	md := GenerateMarkdown(summary)

	assert.Contains(t, md, "# suite - Test Summary")
	assert.Contains(t, md, "| only | Passed |")
	assert.Contains(t, md, "| Pass Rate | 100% |")
	assert.NotContains(t, md, "## Failures")
	assert.NotContains(t, md, "| Skipped |")
}

func TestGenerateMarkdown_Empty(t *testing.T) {
	summary := testcase.NewSummary("empty")
	summary.Finish()

	md := GenerateMarkdown(summary)

	assert.Contains(t, md, "| Total Tests | 0 |")
	assert.Contains(t, md, "| Pass Rate | 0% |")
}

func TestGenerateMarkdown_EscapesPipes(t *testing.T) {
	summary := testcase.NewSummary("suite")
	res := testcase.NewResult(testcase.Info{Name: "a|b"})
	res.Status = testcase.StatusSkipped
	summary.Add(res)

	md := GenerateMarkdown(summary)

	assert.Contains(t, md, `| a\|b | Skipped |`)
	assert.Contains(t, md, "| Skipped | 1 |")
	assert.NotContains(t, md, "### a|b")
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status testcase.Status
		want   string
	}{
		{testcase.StatusPassed, "Passed"},
		{testcase.StatusTimedOut, "Timed Out"},
		{testcase.StatusExcepted, "Excepted"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, StatusLabel(tc.status))
	}
}

func TestSaveSummary(t *testing.T) {
	dir := t.TempDir()
	_, _, summary := fixtureRun()

	saved, err := SaveSummary(summary, dir)
	require.NoError(t, err)

	assert.Equal(t,
		filepath.Join(dir, "summary_20260101_000000.json"), saved.JSON)
	for _, p := range []string{saved.JSON, saved.Markdown, saved.HTML} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}

	md, err := os.ReadFile(filepath.Join(dir, "latest_summary.md"))
	require.NoError(t, err)
	assert.Equal(t, GenerateMarkdown(summary), string(md))

	target, err := os.Readlink(filepath.Join(dir, "latest_summary.json"))
	require.NoError(t, err)
	assert.Equal(t, "summary_20260101_000000.json", target)
}

func TestSaveSummary_DirIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := SaveSummary(testcase.NewSummary("x"), filepath.Join(file, "sub"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output directory")
}

func TestMarkdownReporter(t *testing.T) {
	var buf bytes.Buffer
	rep := NewMarkdownReporter(&buf)

	summary := replay(rep)

	assert.Equal(t, GenerateMarkdown(summary), buf.String())
	assert.NoError(t, rep.Err())
}

func TestMarkdownReporter_WriteError(t *testing.T) {
	rep := NewMarkdownReporter(failingWriter{})
	replay(rep)

	err := rep.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write markdown report")
}
