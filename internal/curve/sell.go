package curve

import (
	"github.com/symmetryfi/fund-quoter/internal/fundaccounts"
	"github.com/symmetryfi/fund-quoter/internal/oracleprice"
)

// ValueOfSold returns the USD value (ONE_USD units) obtained by selling
// amount units of a token into the fund, walking the token's sell-side
// curve and splitting every slice into before/after-target-weight portions
// for fee purposes. See §4.D.
func ValueOfSold(
	amount uint64,
	settings fundaccounts.TokenSettings,
	price oracleprice.OraclePrice,
	startAmount uint64,
	targetAmount uint64,
	curveSell fundaccounts.TokenPriceData,
) uint64 {
	currentAmount := startAmount
	var curveOffset uint64
	if startAmount > targetAmount {
		curveOffset = startAmount - targetAmount
	}

	amountLeft := amount
	currentPrice := price.SellPrice
	var output uint64

	for step := 0; step <= fundaccounts.NPoint; step++ {
		var stepAmount uint64
		if step < fundaccounts.NPoint {
			stepAmount = curveSell.Amount[step]
		} else {
			stepAmount = amountLeft
		}

		if step < fundaccounts.NPoint && curveSell.Price[step] < currentPrice && settings.UseCurveData == fundaccounts.UseCurveData {
			currentPrice = curveSell.Price[step]
		}

		if step == fundaccounts.NPoint {
			curveOffset = 0
		}

		if stepAmount <= curveOffset {
			curveOffset -= stepAmount
			continue
		}

		slice := stepAmount - curveOffset
		curveOffset = 0
		if slice > amountLeft {
			slice = amountLeft
		}

		var beforeTW uint64
		switch {
		case currentAmount >= targetAmount:
			beforeTW = 0
		case currentAmount+slice >= targetAmount:
			beforeTW = slice - (currentAmount + slice - targetAmount)
		default:
			beforeTW = slice
		}
		afterTW := slice - beforeTW

		valueBefore := AmountToUSD(beforeTW, settings.Decimals, currentPrice)
		valueAfter := AmountToUSD(afterTW, settings.Decimals, currentPrice)

		fees := mulDivBps(valueBefore, uint64(settings.FeeBeforeTWBps)) + mulDivBps(valueAfter, uint64(settings.FeeAfterTWBps))

		output += valueBefore + valueAfter - fees
		amountLeft -= slice
		currentAmount += slice

		if amountLeft == 0 {
			break
		}
	}

	return output
}
