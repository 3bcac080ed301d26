package logging

// NullLogger discards everything. Runners and servers use it
// until a caller supplies a real logger.
type NullLogger struct{}

func (NullLogger) Info(string, ...Field)      {}
func (NullLogger) Warn(string, ...Field)      {}
func (NullLogger) Error(string, ...Field)     {}
func (NullLogger) Debug(string, ...Field)     {}
func (NullLogger) WithFields(...Field) Logger { return NullLogger{} }
func (NullLogger) Close() error               { return nil }
