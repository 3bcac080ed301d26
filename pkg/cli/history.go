package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"digital.vasic.verify/pkg/config"
	"digital.vasic.verify/pkg/history"
	"digital.vasic.verify/pkg/testcase"
	"digital.vasic.verify/pkg/verr"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var (
		path       string
		configPath string
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "history [test-name]",
		Short: "Show recorded runs or the trend of one test case",
		Long: `Show the most recent runs recorded with --history, or,
given a test name, that test case's recent outcomes and pass
rate.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return verr.Newf(verr.Usage,
					"--limit must be positive, got %d", limit)
			}
			if !cmd.Flags().Changed("path") {
				cfgPath, optional := configPath, configPath == ""
				if optional {
					cfgPath = config.DefaultFile
				}
				cfg, err := config.Load(cfgPath, optional)
				if err != nil {
					return err
				}
				path = cfg.History.Path
			}

			w := cmd.OutOrStdout()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintf(w, "No run history found\n")
				fmt.Fprintf(w, "Database path: %s\n", path)
				return nil
			}

			store, err := history.NewStore(path)
			if err != nil {
				return verr.Wrap(verr.IO, "failed to open history", err)
			}
			defer store.Close()

			if len(args) == 1 {
				return showTrend(cmd, store, args[0], limit)
			}
			return showRuns(cmd, store, limit)
		},
	}
	cmd.Flags().StringVar(&path, "path", "",
		"History database path (default: from config)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: verify.yaml if present)")
	cmd.Flags().IntVar(&limit, "limit", 10,
		"Maximum number of entries to show")
	return cmd
}

func showRuns(cmd *cobra.Command, store *history.Store, limit int) error {
	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return verr.Wrap(verr.IO, "failed to read history", err)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}

	cyan := color.New(color.FgCyan)
	cyan.Fprintf(w, "Recent runs:\n")
	for _, r := range runs {
		fmt.Fprintf(w, "  %s  %s  ",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Name)
		writeRate(w, r.Passed, r.Total)
		fmt.Fprintf(w, "  %s  %s\n",
			r.Duration.Round(time.Millisecond), r.RunID)
	}
	return nil
}

func showTrend(
	cmd *cobra.Command,
	store *history.Store,
	name string,
	limit int,
) error {
	ctx := cmd.Context()
	trend, err := store.TestTrend(ctx, name, limit)
	if err != nil {
		return verr.Wrap(verr.IO, "failed to read history", err)
	}

	w := cmd.OutOrStdout()
	if len(trend) == 0 {
		fmt.Fprintf(w, "No outcomes recorded for %s\n", name)
		return nil
	}

	rate, total, err := store.PassRate(ctx, name)
	if err != nil {
		return verr.Wrap(verr.IO, "failed to read history", err)
	}

	cyan := color.New(color.FgCyan)
	cyan.Fprintf(w, "%s\n", name)
	fmt.Fprintf(w, "  Pass rate: %.1f%% of %d runs\n", rate*100, total)
	for _, r := range trend {
		fmt.Fprintf(w, "  %s  ",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"))
		statusColor(r.Status).Fprintf(w, "%-9s", r.Status)
		fmt.Fprintf(w, "  %s", r.Duration.Round(time.Microsecond))
		if r.Signal != "" {
			fmt.Fprintf(w, "  %s", r.Signal)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func writeRate(w io.Writer, passed, total int) {
	c := color.New(color.FgGreen)
	if passed < total {
		c = color.New(color.FgRed)
	}
	c.Fprintf(w, "%d/%d passed", passed, total)
}

func statusColor(s testcase.Status) *color.Color {
	switch s {
	case testcase.StatusPassed:
		return color.New(color.FgGreen)
	case testcase.StatusSkipped:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
