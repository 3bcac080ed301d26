//go:build unix

package runner

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// faultSignals are the signals a test body may trigger or
// receive that would otherwise end the process.
var faultSignals = []os.Signal{
	unix.SIGSEGV,
	unix.SIGFPE,
	unix.SIGILL,
	unix.SIGABRT,
	unix.SIGBUS,
	unix.SIGINT,
}

// signalName returns the conventional name of sig, e.g.
// "SIGSEGV".
func signalName(sig os.Signal) string {
	if s, ok := sig.(syscall.Signal); ok {
		if name := unix.SignalName(s); name != "" {
			return name
		}
	}
	return sig.String()
}

func raise(sig syscall.Signal) error {
	return unix.Kill(unix.Getpid(), sig)
}
