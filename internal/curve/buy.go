package curve

import (
	"github.com/symmetryfi/fund-quoter/internal/fundaccounts"
	"github.com/symmetryfi/fund-quoter/internal/oracleprice"
)

// AmountOfBought returns the destination-token units purchasable with the
// given USD value (ONE_USD units), walking the token's buy-side curve. See
// §4.E.
func AmountOfBought(
	value uint64,
	settings fundaccounts.TokenSettings,
	price oracleprice.OraclePrice,
	startAmount uint64,
	targetAmount uint64,
	curveBuy fundaccounts.TokenPriceData,
) uint64 {
	currentAmount := startAmount
	var curveOffset uint64
	if startAmount < targetAmount {
		curveOffset = targetAmount - startAmount
	}

	valueLeft := value
	currentPrice := price.BuyPrice
	var output uint64

	for step := 0; step <= fundaccounts.NPoint; step++ {
		var stepAmount uint64
		if step < fundaccounts.NPoint {
			stepAmount = curveBuy.Amount[step]
		} else {
			stepAmount = USDToAmount(valueLeft*2, settings.Decimals, currentPrice)
		}

		if step < fundaccounts.NPoint && curveBuy.Price[step] > currentPrice && settings.UseCurveData == fundaccounts.UseCurveData {
			currentPrice = curveBuy.Price[step]
		}

		if step == fundaccounts.NPoint {
			curveOffset = 0
		}

		if stepAmount <= curveOffset {
			curveOffset -= stepAmount
			continue
		}

		sliceAmount := stepAmount - curveOffset
		curveOffset = 0

		sliceValue := AmountToUSD(sliceAmount, settings.Decimals, currentPrice)
		if sliceValue > valueLeft {
			sliceValue = valueLeft
			sliceAmount = USDToAmount(sliceValue, settings.Decimals, currentPrice)
		}

		var beforeTWValue uint64
		switch {
		case currentAmount <= targetAmount:
			beforeTWValue = 0
		case currentAmount <= targetAmount+sliceAmount:
			beforeTWValue = sliceValue - AmountToUSD(targetAmount+sliceAmount-currentAmount, settings.Decimals, currentPrice)
		default:
			beforeTWValue = sliceValue
		}
		afterTWValue := sliceValue - beforeTWValue

		fees := mulDivBps(beforeTWValue, uint64(settings.FeeBeforeTWBps)) + mulDivBps(afterTWValue, uint64(settings.FeeAfterTWBps))

		bought := USDToAmount(sliceValue-fees, settings.Decimals, currentPrice)

		output += bought
		valueLeft -= sliceValue
		if bought > currentAmount {
			currentAmount = 0
		} else {
			currentAmount -= bought
		}

		if valueLeft == 0 {
			break
		}
	}

	return output
}
