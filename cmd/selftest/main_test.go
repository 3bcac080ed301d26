package main

import (
	"bytes"
	"context"
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.verify/pkg/cli"
	"digital.vasic.verify/pkg/registry"
	"digital.vasic.verify/pkg/verr"
)

func selftest(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := cli.Execute(context.Background(), registry.Default(),
		args, &stdout, &stderr)
	return code, stdout.String()
}

type overallResults struct {
	Successes int `xml:"successes,attr"`
	Failures  int `xml:"failures,attr"`
}

type catchDoc struct {
	Group struct {
		TestCases []struct {
			Name   string `xml:"name,attr"`
			Result struct {
				Success bool   `xml:"success,attr"`
				Status  string `xml:"status,attr"`
			} `xml:"OverallResult"`
		} `xml:"TestCase"`
	} `xml:"Group"`
	Totals overallResults `xml:"OverallResults"`
}

func TestSelftest_SucceedingConditionsPass(t *testing.T) {
	code, out := selftest(t, "run", "succeeding/*", "--color", "never")
	assert.Equal(t, verr.ExitSuccess, code, out)
	assert.Contains(t, out, "All tests passed")
}

func TestSelftest_SpecWithoutSubcommand(t *testing.T) {
	code, out := selftest(t, "succeeding/conditions/*", "--color", "never")
	assert.Equal(t, verr.ExitSuccess, code, out)
	assert.Contains(t, out, "All tests passed")
}

func TestSelftest_FailingConditionsFail(t *testing.T) {
	code, out := selftest(t, "run", "failing/conditions/*",
		"-r", "xml")
	require.Equal(t, verr.ExitFailures, code)

	var doc catchDoc
	require.NoError(t, xml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Group.TestCases, 4)
	for _, tc := range doc.Group.TestCases {
		assert.False(t, tc.Result.Success, tc.Name)
		assert.Equal(t, "failed", tc.Result.Status, tc.Name)
	}
	// 13 equality, 5 inequality, 19 ordered and 6 not checks.
	assert.Equal(t, 43, doc.Totals.Failures)
	assert.Equal(t, 0, doc.Totals.Successes)
}

func TestSelftest_FaultsAreContained(t *testing.T) {
	code, out := selftest(t, "run",
		"failing/faults/nil*", "failing/faults/divide*",
		"failing/faults/panic", "succeeding/conditions/not",
		"--color", "never")
	require.Equal(t, verr.ExitFailures, code)

	assert.Contains(t, out, "SIGSEGV")
	assert.Contains(t, out, "SIGFPE")
	assert.Contains(t, out, "unexpected state")
	assert.Contains(t, out, "test cases: 4 | 1 passed")
}

func TestSelftest_ListsEveryTest(t *testing.T) {
	code, out := selftest(t, "list", "--names-only")
	require.Equal(t, verr.ExitSuccess, code)

	for _, name := range []string{
		"succeeding/conditions/equality",
		"failing/conditions/ordered",
		"succeeding/conditions/negative ints",
		"failing/faults/abort",
	} {
		assert.Contains(t, out, name)
	}
}
