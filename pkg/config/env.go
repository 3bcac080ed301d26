package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"digital.vasic.verify/pkg/verr"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VERIFY_"

// EnvLoader reads variables from a .env file. Variables set
// in the process environment take precedence.
type EnvLoader struct {
	mu     sync.RWMutex
	vars   map[string]string
	loaded bool
}

// NewEnvLoader creates an empty EnvLoader.
func NewEnvLoader() *EnvLoader {
	return &EnvLoader{vars: make(map[string]string)}
}

// Load reads KEY=VALUE lines from path. Blank lines and lines
// starting with # are skipped; surrounding quotes are removed.
func (l *EnvLoader) Load(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open env file %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		l.vars[strings.TrimSpace(key)] = strings.Trim(
			strings.TrimSpace(value), `"'`)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}

	l.loaded = true
	return nil
}

// Loaded reports whether a file was read.
func (l *EnvLoader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Get retrieves a variable.
func (l *EnvLoader) Get(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vars[key]
}

// Lookup retrieves a variable and whether it is set.
func (l *EnvLoader) Lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.vars[key]
	return v, ok
}

// ApplyEnv overrides cfg with the VERIFY_* variables visible
// through l.
func ApplyEnv(cfg *Config, l *EnvLoader) error {
	var errs []string
	str := func(name string, dst *string) {
		if v, ok := l.Lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) {
		v, ok := l.Lookup(EnvPrefix + name)
		if !ok || v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
			return
		}
		*dst = b
	}
	integer := func(name string, dst *int) {
		v, ok := l.Lookup(EnvPrefix + name)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Sprintf(
				"%s%s: not a non-negative integer: %q", EnvPrefix, name, v))
			return
		}
		*dst = n
	}
	duration := func(name string, dst *Duration) {
		v, ok := l.Lookup(EnvPrefix + name)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
			return
		}
		*dst = Duration(d)
	}

	str("NAME", &cfg.Name)
	boolean("SUCCESS", &cfg.Success)
	boolean("DURATIONS", &cfg.Durations)
	integer("ABORT_AFTER", &cfg.AbortAfter)
	boolean("ALLOW_EMPTY", &cfg.AllowEmpty)
	boolean("STOP_ON_INTERRUPT", &cfg.StopOnInterrupt)
	duration("TIMEOUT", &cfg.Timeout)
	duration("STALE_THRESHOLD", &cfg.StaleThreshold)
	str("COLOR", &cfg.Color)
	str("OUTPUT_DIR", &cfg.OutputDir)
	str("LOG_LEVEL", &cfg.Log.Level)
	boolean("VERBOSE", &cfg.Log.Verbose)
	str("LOG_FILE", &cfg.Log.File)
	boolean("HISTORY", &cfg.History.Enabled)
	str("HISTORY_PATH", &cfg.History.Path)
	boolean("MONITOR", &cfg.Monitor.Enabled)
	str("MONITOR_ADDR", &cfg.Monitor.Addr)

	if v, ok := l.Lookup(EnvPrefix + "REPORTER"); ok && v != "" {
		r, err := ParseReporter(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sREPORTER: %v", EnvPrefix, err))
		} else {
			cfg.Reporters = []ReporterConfig{r}
		}
	}

	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Sprintf(
			"%sCOLOR: must be auto, always or never, got %q",
			EnvPrefix, cfg.Color))
	}

	if len(errs) > 0 {
		return verr.New(verr.Config,
			"invalid environment: "+strings.Join(errs, "; "))
	}
	return nil
}

// ParseReporter parses "format" or "format:path".
func ParseReporter(s string) (ReporterConfig, error) {
	format, output, _ := strings.Cut(s, ":")
	switch format {
	case FormatConsole, FormatXML, FormatJSON, FormatHTML,
		FormatMarkdown:
		return ReporterConfig{Format: format, Output: output}, nil
	}
	return ReporterConfig{}, fmt.Errorf("unknown reporter %q", format)
}
