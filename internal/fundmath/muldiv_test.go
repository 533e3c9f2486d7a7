package fundmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMulDivBasic(t *testing.T) {
	require.Equal(t, uint64(50), MulDiv(100, 150, 300))
	require.Equal(t, uint64(0), MulDiv(0, 150, 300))
}

func TestMulDivFloors(t *testing.T) {
	// 10*10/3 = 33.33.. -> floors to 33
	require.Equal(t, uint64(33), MulDiv(10, 10, 3))
}

func TestMulDivZeroDivisorSaturatesToZero(t *testing.T) {
	require.Equal(t, uint64(0), MulDiv(1, 1, 0))
	require.Equal(t, uint64(0), MulDiv(math.MaxUint64, math.MaxUint64, 0))
}

func TestMulDivOverflowSaturatesToZero(t *testing.T) {
	// max*max / 1 vastly exceeds uint64 and must saturate, never wrap.
	require.Equal(t, uint64(0), MulDiv(math.MaxUint64, math.MaxUint64, 1))
}

func TestMulDivWideIntermediateDoesNotOverflowPrematurely(t *testing.T) {
	// a*b alone overflows uint64, but the true quotient fits; MulDiv must
	// use a wide intermediate product rather than truncating a*b first.
	a := uint64(math.MaxUint64)
	b := uint64(math.MaxUint64)
	c := uint64(math.MaxUint64)
	require.Equal(t, a, MulDiv(a, b, c))
}
