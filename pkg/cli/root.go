// Package cli implements the command line of test binaries:
// running, listing and the run history.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"digital.vasic.verify/pkg/registry"
	"digital.vasic.verify/pkg/verr"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

// NewRootCommand creates the root command for a test binary
// running the tests of reg. Without a subcommand it runs.
func NewRootCommand(reg registry.Registry) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   filepath.Base(os.Args[0]) + " [test-spec]...",
		Short: "Run the registered test cases",
		Long: `Runs the test cases registered in this binary, each in
isolation: a failing assertion, panic or memory fault ends
only the test that caused it.

Test specs select tests by name. '*' matches any run of
characters and '?' exactly one. With no specs every test
runs.

Configuration is read from verify.yaml and .env if present,
then VERIFY_* environment variables. Flags override both.`,
		Args:          cobra.ArbitraryArgs,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, reg, opts, args)
		},
	}
	addRunFlags(cmd, opts)

	cmd.AddCommand(NewRunCommand(reg))
	cmd.AddCommand(NewListCommand(reg))
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}

// Main runs the command line against reg and returns the
// process exit code.
func Main(reg registry.Registry) int {
	return Execute(context.Background(), reg, os.Args[1:],
		os.Stdout, os.Stderr)
}

// Execute runs the command line with args and returns the exit
// code: 0 when every selected test passed, 1 for failures and
// 2 for usage or configuration errors.
func Execute(
	ctx context.Context,
	reg registry.Registry,
	args []string,
	stdout, stderr io.Writer,
) int {
	cmd := NewRootCommand(reg)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return verr.ExitSuccess
	}

	// Failed tests are already reported.
	if !verr.Is(err, verr.TestFailures) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	if verr.KindOf(err) == "" {
		// cobra's own argument and flag errors.
		return verr.ExitUsage
	}
	return verr.ExitCode(err)
}
