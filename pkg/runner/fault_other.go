//go:build !unix

package runner

import (
	"errors"
	"os"
	"syscall"
)

var faultSignals = []os.Signal{os.Interrupt}

func signalName(sig os.Signal) string {
	if sig == os.Interrupt {
		return SignalInterrupt
	}
	return sig.String()
}

func raise(sig syscall.Signal) error {
	return errors.New("raising signals is not supported on this platform")
}
