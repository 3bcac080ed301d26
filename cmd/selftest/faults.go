package main

import (
	"errors"
	"syscall"

	"digital.vasic.verify/pkg/runner"
	"digital.vasic.verify/pkg/verify"
)

// Each fault ends its test as crashed or excepted; the run
// carries on with the next test.

func divide(a, b int) int { return a / b }

var _ = verify.TestCase("failing/faults/nil dereference",
	"Reading through a nil pointer",
	func(t *verify.T) {
		var p *pointee
		t.Check(verify.That(p.value).Eq(0))
	})

var _ = verify.TestCase("failing/faults/divide by zero",
	"Integer division by zero",
	func(t *verify.T) {
		t.Check(verify.That(divide(1, 0)).Eq(0))
	})

var _ = verify.TestCase("failing/faults/panic",
	"A panic escaping the test body",
	func(t *verify.T) {
		t.Succeed("about to panic")
		panic(errors.New("unexpected state"))
	})

var _ = verify.TestCase("failing/faults/abort",
	"SIGABRT raised by the test body",
	func(t *verify.T) {
		runner.Raise(syscall.SIGABRT)
	})

var _ = verify.TestCase("failing/explicit",
	"An explicit failure",
	func(t *verify.T) {
		t.Fail("this test always fails")
	})
