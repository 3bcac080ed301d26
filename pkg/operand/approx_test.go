package operand

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApprox_Equals(t *testing.T) {
	nine := float32(9.1)
	x := 1.1 + 0.1 + 0.1

	tests := []struct {
		name   string
		value  float64
		approx Approximation
		want   bool
	}{
		{"same float32", float64(nine), Approx(nine), true},
		{"float32 vs 9.11", float64(nine), Approx(float32(9.11)), false},
		{"float32 vs 9.0", float64(nine), Approx(float32(9.0)), false},
		{"float32 vs 1", float64(nine), Approx(1), false},
		{"float32 vs 0", float64(nine), Approx(0), false},
		{"pi", 3.1415926535, Approx(3.1415926535), true},
		{"pi truncated", 3.1415926535, Approx(3.1415), false},
		{"accumulated", x, Approx(1.3), true},
		{"accumulated off", x, Approx(1.301), false},
		{"zero", 0, Approx(0), true},
		{"nan", math.NaN(), Approx(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.approx.Equals(tt.value))
		})
	}
}

func TestApprox_Symmetric(t *testing.T) {
	values := []float64{0, 1, 9.1, 9.11, 3.1415, 1e6, -2.5}
	for _, x := range values {
		for _, y := range values {
			assert.Equal(t,
				Approx(y).Equals(x),
				Approx(x).Equals(y),
				"x=%v y=%v", x, y,
			)
		}
	}
}

func TestApprox_Options(t *testing.T) {
	a := Approx(100).WithEpsilon(0.01)
	assert.True(t, a.Equals(100.5))
	assert.False(t, a.Equals(103))

	wide := Approx(0).WithScale(1000)
	assert.True(t, wide.Equals(0.01))
	assert.Equal(t, 1.0, Approx(0).Scale)
}

func TestApprox_String(t *testing.T) {
	assert.Equal(t, "Approx( 1.3 )", Approx(1.3).String())
	assert.Equal(t, "Approx( 7 )", Approx(7).String())
}

type celsius float32

func TestApprox_StringKeepsFloat32Precision(t *testing.T) {
	assert.Equal(t, "Approx( 9.1 )", Approx(float32(9.1)).String())
	assert.Equal(t, "Approx( 9.11 )",
		Approx(float32(9.11)).WithEpsilon(0.1).String())
	assert.Equal(t, "Approx( 36.6 )", Approx(celsius(36.6)).String())
	assert.Equal(t, "Approx( 9.1 )", Approximation{Value: 9.1}.String())

	// The float32 value itself is compared, not its decimal form.
	assert.True(t, Approx(float32(9.1)).Equals(float64(float32(9.1))))
}
