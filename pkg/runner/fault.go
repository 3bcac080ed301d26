package runner

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"
)

// Signal names reported for synchronous faults and
// interrupts.
const (
	SignalSegv      = "SIGSEGV"
	SignalFpe       = "SIGFPE"
	SignalInterrupt = "SIGINT"
)

// faultBoundary routes fault signals to the runner while one
// test body executes. Uninstall is idempotent so both the
// normal path and an abandoned worker can release it.
type faultBoundary struct {
	signals chan os.Signal
	once    sync.Once
}

func installBoundary() *faultBoundary {
	b := &faultBoundary{signals: make(chan os.Signal, 1)}
	signal.Notify(b.signals, faultSignals...)
	return b
}

// Signals delivers the first fault signal received.
func (b *faultBoundary) Signals() <-chan os.Signal {
	return b.signals
}

// Uninstall stops delivery. Signals no other channel is
// registered for revert to their default behaviour.
func (b *faultBoundary) Uninstall() {
	b.once.Do(func() { signal.Stop(b.signals) })
}

// outcomeKind classifies how a test body ended.
type outcomeKind int

const (
	outcomeCompleted outcomeKind = iota
	outcomeAborted
	outcomePanic
	outcomeFault
	outcomeSignal
	outcomeTimeout
	outcomeStuck
	outcomeCancelled
)

type outcome struct {
	kind   outcomeKind
	signal string
	detail string
	stack  string
}

// addrError is implemented by runtime errors raised for
// faults at a specific address under SetPanicOnFault.
type addrError interface {
	Addr() uintptr
}

// classifyPanic maps a recovered value to a fault when it is a
// runtime memory or arithmetic error, and to an uncaught panic
// otherwise.
func classifyPanic(v any, stack []byte) outcome {
	out := outcome{
		kind:   outcomePanic,
		detail: fmt.Sprint(v),
		stack:  string(stack),
	}

	re, ok := v.(runtime.Error)
	if !ok {
		return out
	}

	msg := re.Error()
	_, isAddr := v.(addrError)
	switch {
	case strings.Contains(msg, "integer divide by zero"):
		out.kind, out.signal = outcomeFault, SignalFpe
	case isAddr,
		strings.Contains(msg, "invalid memory address"),
		strings.Contains(msg, "nil pointer dereference"):
		out.kind, out.signal = outcomeFault, SignalSegv
	}
	return out
}

// Raise delivers sig to the current process and parks the
// calling goroutine forever. Inside a test body the runner
// receives the signal, classifies the test as crashed and
// abandons the body. Outside the runner the signal's default
// action applies.
func Raise(sig syscall.Signal) {
	if err := raise(sig); err != nil {
		panic(fmt.Sprintf("raise %v: %v", sig, err))
	}
	select {}
}
