package verr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_ExitCode(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{Assertion, ExitFailures},
		{FatalAssertion, ExitFailures},
		{Uncaught, ExitFailures},
		{Fault, ExitFailures},
		{RegistryCollision, ExitFailures},
		{TestFailures, ExitFailures},
		{IO, ExitFailures},
		{Config, ExitUsage},
		{Usage, ExitUsage},
		{NoMatchingTests, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.ExitCode())
			assert.Equal(t, tt.want, New(tt.kind, "x").ExitCode())
		})
	}
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "boom", New(Fault, "boom").Error())
	assert.Equal(t,
		"[math/div] crashed",
		ForTest(Fault, "math/div", "crashed").Error(),
	)
	assert.Equal(t,
		"read config: missing",
		Wrap(Config, "read config", errors.New("missing")).Error(),
	)
	assert.Equal(t, "3 tests", Newf(TestFailures, "%d tests", 3).Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("write report: %w", Wrap(IO, "flush", cause))

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, IO, KindOf(err))
	assert.True(t, Is(err, IO))
	assert.False(t, Is(err, Config))
	assert.False(t, Is(nil, IO))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitUsage, ExitCode(New(Usage, "bad flag")))
	assert.Equal(t, ExitUsage,
		ExitCode(fmt.Errorf("load: %w", New(Config, "bad"))))
	assert.Equal(t, ExitFailures, ExitCode(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}
