package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"digital.vasic.verify/pkg/config"
	"digital.vasic.verify/pkg/history"
	"digital.vasic.verify/pkg/logging"
	"digital.vasic.verify/pkg/metrics"
	"digital.vasic.verify/pkg/monitor"
	"digital.vasic.verify/pkg/registry"
	"digital.vasic.verify/pkg/report"
	"digital.vasic.verify/pkg/runner"
	"digital.vasic.verify/pkg/testcase"
	"digital.vasic.verify/pkg/verr"
)

// runOptions holds the run flags. Only flags set on the
// command line override the configuration.
type runOptions struct {
	configPath      string
	envFile         string
	success         bool
	abort           bool
	abortAfter      int
	inputFile       string
	allowEmpty      bool
	stopOnInterrupt bool
	reporters       []string
	timeout         time.Duration
	staleThreshold  time.Duration
	durations       bool
	color           string
	name            string
	verbose         bool
	logFile         string
	logLevel        string
	history         bool
	historyPath     string
	monitorAddr     string
	outputDir       string
}

// NewRunCommand creates the run command.
func NewRunCommand(reg registry.Registry) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [test-spec]...",
		Short: "Run the registered test cases",
		Long: `Run the test cases matching the given specs, or every
registered test case when none are given.

Examples:
  selftest run                         # run everything
  selftest run 'equality/*' 'ordering/*'
  selftest run -s -r xml:out/report.xml
  selftest run -f specs.txt --abortx 3
  selftest run --timeout 5s --monitor :8089`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, reg, opts, args)
		},
	}
	addRunFlags(cmd, opts)
	return cmd
}

func addRunFlags(cmd *cobra.Command, o *runOptions) {
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "",
		"Path to config file (default: verify.yaml if present)")
	f.StringVar(&o.envFile, "env-file", "",
		"Path to .env file (default: .env if present)")
	f.BoolVarP(&o.success, "success", "s", false,
		"Report passing assertions too")
	f.BoolVarP(&o.abort, "abort", "a", false,
		"Stop after the first failed test case")
	f.IntVarP(&o.abortAfter, "abortx", "x", 0,
		"Stop after N failed test cases")
	f.StringVarP(&o.inputFile, "input-file", "f", "",
		"Read test specs from a file")
	f.BoolVar(&o.allowEmpty, "allow-empty", false,
		"Succeed when no test case matches")
	f.BoolVar(&o.stopOnInterrupt, "stop-on-interrupt", true,
		"Stop the run when a test case is interrupted")
	f.StringArrayVarP(&o.reporters, "reporter", "r", nil,
		"Reporter as format[:path], repeatable "+
			"(console, xml, json, html, markdown)")
	f.DurationVar(&o.timeout, "timeout", 0,
		"Per-test timeout (0 = none)")
	f.DurationVar(&o.staleThreshold, "stale-threshold", 0,
		"Fail test cases that report no progress for this long")
	f.BoolVarP(&o.durations, "durations", "d", false,
		"Report test case durations")
	f.StringVar(&o.color, "color", "",
		"Color output: auto, always or never")
	f.StringVarP(&o.name, "name", "n", "",
		"Run name used in reports")
	f.BoolVarP(&o.verbose, "verbose", "v", false,
		"Log run events to stderr")
	f.StringVar(&o.logFile, "log-file", "",
		"Write JSON run logs to a file")
	f.StringVar(&o.logLevel, "log-level", "",
		"Log level: debug, info, warn or error")
	f.BoolVar(&o.history, "history", false,
		"Record the run in the history database")
	f.StringVar(&o.historyPath, "history-path", "",
		"History database path")
	f.StringVar(&o.monitorAddr, "monitor", "",
		"Serve a live monitor on this address")
	f.StringVar(&o.outputDir, "output-dir", "",
		"Save JSON, Markdown and HTML summaries to this directory")
}

// resolveConfig layers verify.yaml, .env, VERIFY_* variables
// and the command line flags.
func resolveConfig(flags *pflag.FlagSet, o *runOptions) (*config.Config, error) {
	path, optional := o.configPath, o.configPath == ""
	if optional {
		path = config.DefaultFile
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return nil, err
	}

	env := config.NewEnvLoader()
	envPath := o.envFile
	if envPath == "" {
		if _, err := os.Stat(".env"); err == nil {
			envPath = ".env"
		}
	}
	if envPath != "" {
		if err := env.Load(envPath); err != nil {
			return nil, verr.Wrap(verr.Config, "failed to load env file", err)
		}
	}
	if err := config.ApplyEnv(cfg, env); err != nil {
		return nil, err
	}

	if err := applyFlags(flags, o, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(flags *pflag.FlagSet, o *runOptions, cfg *config.Config) error {
	set := flags.Changed

	if set("success") {
		cfg.Success = o.success
	}
	if set("abort") && o.abort {
		cfg.AbortAfter = 1
	}
	if set("abortx") {
		if o.abortAfter < 0 {
			return verr.Newf(verr.Usage,
				"--abortx must not be negative, got %d", o.abortAfter)
		}
		cfg.AbortAfter = o.abortAfter
	}
	if set("allow-empty") {
		cfg.AllowEmpty = o.allowEmpty
	}
	if set("stop-on-interrupt") {
		cfg.StopOnInterrupt = o.stopOnInterrupt
	}
	if set("reporter") {
		cfg.Reporters = cfg.Reporters[:0:0]
		for _, r := range o.reporters {
			rc, err := config.ParseReporter(r)
			if err != nil {
				return verr.Wrap(verr.Usage, "invalid --reporter", err)
			}
			cfg.Reporters = append(cfg.Reporters, rc)
		}
	}
	if set("timeout") {
		cfg.Timeout = config.Duration(o.timeout)
	}
	if set("stale-threshold") {
		cfg.StaleThreshold = config.Duration(o.staleThreshold)
	}
	if set("durations") {
		cfg.Durations = o.durations
	}
	if set("color") {
		switch o.color {
		case config.ColorAuto, config.ColorAlways, config.ColorNever:
			cfg.Color = o.color
		default:
			return verr.Newf(verr.Usage,
				"--color must be auto, always or never, got %q", o.color)
		}
	}
	if set("name") {
		cfg.Name = o.name
	}
	if set("verbose") {
		cfg.Log.Verbose = o.verbose
	}
	if set("log-file") {
		cfg.Log.File = o.logFile
	}
	if set("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if set("history") {
		cfg.History.Enabled = o.history
	}
	if set("history-path") {
		cfg.History.Path = o.historyPath
		cfg.History.Enabled = true
	}
	if set("monitor") {
		cfg.Monitor.Addr = o.monitorAddr
		cfg.Monitor.Enabled = o.monitorAddr != ""
	}
	if set("output-dir") {
		cfg.OutputDir = o.outputDir
	}
	return nil
}

// selectTests resolves the positional and file specs against
// reg.
func selectTests(
	reg registry.Registry,
	args []string,
	inputFile string,
) ([]testcase.Info, []string, error) {
	specs := append([]string(nil), args...)
	if inputFile != "" {
		fromFile, err := registry.LoadSpecsFromFile(inputFile)
		if err != nil {
			return nil, nil, verr.Wrap(verr.Usage,
				"failed to read input file", err)
		}
		specs = append(specs, fromFile...)
	}
	return reg.Select(specs...), specs, nil
}

func runCommand(
	cmd *cobra.Command,
	reg registry.Registry,
	o *runOptions,
	args []string,
) error {
	cfg, err := resolveConfig(cmd.Flags(), o)
	if err != nil {
		return err
	}
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	tests, specs, err := selectTests(reg, args, o.inputFile)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	defer logger.Close()

	if v, ok := reg.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			logger.Warn("registry_warning", logging.ErrorField(err))
		}
	}

	if len(tests) == 0 {
		if cfg.AllowEmpty {
			fmt.Fprintln(stdout, "No test cases matched")
			return nil
		}
		if len(specs) == 0 {
			return verr.New(verr.NoMatchingTests, "no test cases registered")
		}
		return verr.Newf(verr.NoMatchingTests,
			"no test cases matched %s", strings.Join(specs, " "))
	}

	sinks, err := newSinks(cfg, stdout)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	prom := metrics.NewPrometheusMetrics()
	if cfg.Monitor.Enabled {
		stop := startMonitor(ctx, cfg, sinks, prom, logger)
		defer stop()
	}

	r := runner.NewRunner(
		runner.WithName(cfg.Name),
		runner.WithLogger(logger),
		runner.WithReporter(sinks.reporters),
		runner.WithMetrics(prom),
		runner.WithTimeout(time.Duration(cfg.Timeout)),
		runner.WithStaleThreshold(time.Duration(cfg.StaleThreshold)),
		runner.WithAbortAfter(cfg.AbortAfter),
		runner.WithStopOnInterrupt(cfg.StopOnInterrupt),
	)
	summary := r.Run(ctx, tests)

	errs := sinks.close()
	if cfg.History.Enabled {
		if err := recordHistory(ctx, cfg.History.Path, summary); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.OutputDir != "" {
		saved, err := report.SaveSummary(summary, cfg.OutputDir)
		if err != nil {
			errs = append(errs, err)
		} else {
			logger.Info("summary_saved",
				logging.StringField("json", saved.JSON),
				logging.StringField("markdown", saved.Markdown),
				logging.StringField("html", saved.HTML))
		}
	}
	if len(errs) > 0 {
		return verr.Wrap(verr.IO, "failed to write run output",
			errors.Join(errs...))
	}

	if !summary.Succeeded() {
		return verr.Newf(verr.TestFailures,
			"%d of %d test cases did not pass",
			summary.Unsuccessful(), summary.Total)
	}
	return nil
}

// newLogger builds the run logger: a console logger on stderr
// when verbose and a JSON logger when a log file is set.
func newLogger(cfg *config.Config, stderr io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, verr.Wrap(verr.Config, "invalid log level", err)
	}

	var loggers []logging.Logger
	if cfg.Log.Verbose {
		loggers = append(loggers,
			logging.NewConsoleLoggerTo(stderr, level == logging.LevelDebug))
	}
	if cfg.Log.File != "" {
		jl, err := logging.NewJSONLogger(logging.LoggerConfig{
			OutputPath: cfg.Log.File,
			Level:      level,
			Fields:     map[string]any{"run": cfg.Name},
		})
		if err != nil {
			return nil, verr.Wrap(verr.IO, "failed to open log file", err)
		}
		loggers = append(loggers, jl)
	}

	switch len(loggers) {
	case 0:
		return logging.NullLogger{}, nil
	case 1:
		return loggers[0], nil
	}
	return logging.NewMultiLogger(loggers...), nil
}

// sinks are the reporters of one run and the files behind
// them.
type sinks struct {
	reporters report.Multi
	files     []*report.FileOutput
	checks    []interface{ Err() error }
}

func newSinks(cfg *config.Config, stdout io.Writer) (*sinks, error) {
	s := &sinks{}
	for _, rc := range cfg.Reporters {
		var w io.Writer = stdout
		if rc.Output != "" {
			f := report.NewFileOutput(rc.Output)
			s.files = append(s.files, f)
			w = f
		}

		opts := []report.Option{
			report.WithSuccesses(cfg.Success),
			report.WithDurations(cfg.Durations),
		}

		var rep report.Reporter
		switch rc.Format {
		case config.FormatConsole:
			if c := cfg.ColorSetting(); c != nil {
				opts = append(opts, report.WithColor(*c))
			}
			rep = report.NewConsoleReporter(w, opts...)
		case config.FormatXML:
			rep = report.NewXMLReporter(w, opts...)
		case config.FormatJSON:
			opts = append(opts, report.WithCanonical(rc.Canonical))
			rep = report.NewJSONReporter(w, opts...)
		case config.FormatHTML:
			rep = report.NewHTMLReporter(w)
		case config.FormatMarkdown:
			rep = report.NewMarkdownReporter(w)
		default:
			return nil, verr.Newf(verr.Config,
				"unknown reporter format %q", rc.Format)
		}

		if c, ok := rep.(interface{ Err() error }); ok {
			s.checks = append(s.checks, c)
		}
		s.reporters = append(s.reporters, rep)
	}
	return s, nil
}

// close flushes report files and collects reporter errors.
func (s *sinks) close() []error {
	var errs []error
	for _, c := range s.checks {
		if err := c.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, f := range s.files {
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("report %s: %w", f.Path(), err))
		}
	}
	return errs
}

// startMonitor serves the live monitor for the duration of the
// run and returns its stop function.
func startMonitor(
	ctx context.Context,
	cfg *config.Config,
	s *sinks,
	prom *metrics.PrometheusMetrics,
	logger logging.Logger,
) func() {
	collector := monitor.NewEventCollector()
	server := monitor.NewWebSocketServer(
		cfg.Monitor.Addr,
		collector,
		monitor.NewDashboardData(""),
		monitor.WithServerMetrics(prom),
		monitor.WithServerLogger(logger),
	)
	s.reporters = append(s.reporters, collector)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Start(ctx); err != nil {
			logger.Warn("monitor_failed", logging.ErrorField(err))
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func recordHistory(ctx context.Context, path string, s *testcase.Summary) error {
	store, err := history.NewStore(path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	if err := store.RecordRun(ctx, s); err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}
