// Package curve implements the two piecewise-linear pricing routines that
// walk a token's curve table while selling into or buying out of a fund.
package curve

import "github.com/symmetryfi/fund-quoter/internal/fundmath"

// pow10 table covers every decimals value a SPL token can plausibly use;
// decimals beyond this range fold back to the teacher's total, saturating
// mul_div rather than overflowing.
var pow10Table = [...]uint64{
	1, 10, 100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000, 100_000_000,
	1_000_000_000, 10_000_000_000, 100_000_000_000, 1_000_000_000_000,
	10_000_000_000_000, 100_000_000_000_000, 1_000_000_000_000_000,
	10_000_000_000_000_000, 100_000_000_000_000_000, 1_000_000_000_000_000_000,
}

func pow10(decimals uint8) uint64 {
	if int(decimals) < len(pow10Table) {
		return pow10Table[decimals]
	}
	return 0
}

// AmountToUSD converts a token-smallest-unit amount to USD value (ONE_USD
// units) at the given price.
func AmountToUSD(amount uint64, decimals uint8, price uint64) uint64 {
	return fundmath.MulDiv(amount, price, pow10(decimals))
}

// USDToAmount converts a USD value (ONE_USD units) to a token-smallest-unit
// amount at the given price.
func USDToAmount(value uint64, decimals uint8, price uint64) uint64 {
	return fundmath.MulDiv(value, pow10(decimals), price)
}

func mulDivBps(value uint64, bps uint64) uint64 {
	return fundmath.MulDiv(value, bps, 10_000)
}
