// Command selftest runs the framework's own condition tests.
// Tests under succeeding/ pass; tests under failing/ fail on
// purpose so every reporter path has output to show:
//
//	selftest run 'succeeding/*'
//	selftest run -r xml:selftest.xml
package main

import "digital.vasic.verify/pkg/verify"

func main() {
	verify.Main()
}
