package report

// Option configures a reporter.
type Option func(*options)

type options struct {
	successes bool
	durations bool
	pretty    bool
	canonical bool
	color     *bool
	width     int
}

func newOptions(opts []Option) options {
	o := options{pretty: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithSuccesses includes passing assertions in the report.
// By default only failures are written.
func WithSuccesses(include bool) Option {
	return func(o *options) {
		o.successes = include
	}
}

// WithDurations writes per-test durations.
func WithDurations(show bool) Option {
	return func(o *options) {
		o.durations = show
	}
}

// WithPretty controls indentation of JSON output. The default
// is indented.
func WithPretty(pretty bool) Option {
	return func(o *options) {
		o.pretty = pretty
	}
}

// WithCanonical writes JSON in RFC 8785 canonical form, which
// makes reports byte-for-byte comparable. It overrides
// WithPretty.
func WithCanonical(canonical bool) Option {
	return func(o *options) {
		o.canonical = canonical
	}
}

// WithColor forces colored console output on or off instead
// of detecting a terminal.
func WithColor(enabled bool) Option {
	return func(o *options) {
		o.color = &enabled
	}
}

// WithWidth sets the console width used for separators
// instead of querying the terminal.
func WithWidth(width int) Option {
	return func(o *options) {
		o.width = width
	}
}
