package logging

import "errors"

// MultiLogger fans every entry out to several loggers, e.g.
// the console for the user and a JSON file for later
// analysis of a run.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger. Nil loggers are
// dropped.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

func (m *MultiLogger) Info(msg string, fields ...Field) {
	m.each(func(l Logger) { l.Info(msg, fields...) })
}

func (m *MultiLogger) Warn(msg string, fields ...Field) {
	m.each(func(l Logger) { l.Warn(msg, fields...) })
}

func (m *MultiLogger) Error(msg string, fields ...Field) {
	m.each(func(l Logger) { l.Error(msg, fields...) })
}

func (m *MultiLogger) Debug(msg string, fields ...Field) {
	m.each(func(l Logger) { l.Debug(msg, fields...) })
}

// WithFields applies fields to every inner logger.
func (m *MultiLogger) WithFields(fields ...Field) Logger {
	child := &MultiLogger{loggers: make([]Logger, len(m.loggers))}
	for i, l := range m.loggers {
		child.loggers[i] = l.WithFields(fields...)
	}
	return child
}

// Close closes every inner logger and joins their errors.
func (m *MultiLogger) Close() error {
	var errs []error
	m.each(func(l Logger) { errs = append(errs, l.Close()) })
	return errors.Join(errs...)
}

func (m *MultiLogger) each(fn func(Logger)) {
	for _, l := range m.loggers {
		fn(l)
	}
}
