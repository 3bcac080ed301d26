package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// ConsoleLogger provides colored console output. Colors are
// dropped automatically when the output is not a terminal or
// NO_COLOR is set.
type ConsoleLogger struct {
	mu      *sync.Mutex
	output  io.Writer
	verbose bool
	fields  map[string]any
	colors  map[LogLevel]*color.Color
	gray    *color.Color
}

// NewConsoleLogger creates a console logger writing to stderr.
// When verbose is true, debug messages are emitted.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewConsoleLoggerTo(os.Stderr, verbose)
}

// NewConsoleLoggerTo creates a console logger writing to w.
func NewConsoleLoggerTo(w io.Writer, verbose bool) *ConsoleLogger {
	return &ConsoleLogger{
		mu:      &sync.Mutex{},
		output:  w,
		verbose: verbose,
		fields:  make(map[string]any),
		colors: map[LogLevel]*color.Color{
			LevelDebug: color.New(color.FgHiBlack),
			LevelInfo:  color.New(color.FgBlue),
			LevelWarn:  color.New(color.FgYellow),
			LevelError: color.New(color.FgRed, color.Bold),
		},
		gray: color.New(color.FgHiBlack),
	}
}

func (c *ConsoleLogger) log(
	level LogLevel, msg string, fields ...Field,
) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := time.Now().Format("15:04:05")

	merged := make(map[string]any, len(c.fields)+len(fields))
	for k, v := range c.fields {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}

	var fieldStr string
	if len(merged) > 0 {
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(
				parts,
				fmt.Sprintf("%s=%v", k, merged[k]),
			)
		}
		fieldStr = " " + c.gray.Sprintf(
			"{%s}", strings.Join(parts, ", "),
		)
	}

	fmt.Fprintf(
		c.output, "%s [%s] %s%s\n",
		c.gray.Sprint(ts),
		c.colors[level].Sprintf("%-5s", level.String()),
		msg, fieldStr,
	)
}

// Info logs an informational message.
func (c *ConsoleLogger) Info(msg string, fields ...Field) {
	c.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (c *ConsoleLogger) Warn(msg string, fields ...Field) {
	c.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (c *ConsoleLogger) Error(msg string, fields ...Field) {
	c.log(LevelError, msg, fields...)
}

// Debug logs a debug message only if verbose is enabled.
func (c *ConsoleLogger) Debug(msg string, fields ...Field) {
	if c.verbose {
		c.log(LevelDebug, msg, fields...)
	}
}

// WithFields returns a new Logger with additional default
// fields. The new logger shares the output and its lock.
func (c *ConsoleLogger) WithFields(
	fields ...Field,
) Logger {
	newFields := make(map[string]any)
	for k, v := range c.fields {
		newFields[k] = v
	}
	for _, f := range fields {
		newFields[f.Key] = f.Value
	}
	return &ConsoleLogger{
		mu:      c.mu,
		output:  c.output,
		verbose: c.verbose,
		fields:  newFields,
		colors:  c.colors,
		gray:    c.gray,
	}
}

// Close is a no-op for ConsoleLogger.
func (c *ConsoleLogger) Close() error {
	return nil
}
