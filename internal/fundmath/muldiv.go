// Package fundmath provides the saturating fixed-width arithmetic primitive
// every pricing routine in this module is built on.
package fundmath

import "github.com/holiman/uint256"

// MulDiv returns floor(a*b/c) using a wide intermediate product. It never
// panics and never errors: a zero divisor or an overflow of the final
// truncation to uint64 both saturate to zero. Callers that must distinguish
// a legitimate zero result from a degenerate one are expected to validate
// their inputs before calling, per the on-chain program this mirrors.
func MulDiv(a, b, c uint64) uint64 {
	if c == 0 {
		return 0
	}

	x := uint256.NewInt(a)
	y := uint256.NewInt(b)
	d := uint256.NewInt(c)

	product, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow || !product.IsUint64() {
		return 0
	}
	return product.Uint64()
}
