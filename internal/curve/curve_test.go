package curve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/symmetryfi/fund-quoter/internal/fundaccounts"
	"github.com/symmetryfi/fund-quoter/internal/oracleprice"
)

func flatCurve() fundaccounts.TokenPriceData { return fundaccounts.TokenPriceData{} }

func TestValueOfSoldAtTargetIsAllAfterTargetWeight(t *testing.T) {
	settings := fundaccounts.TokenSettings{Decimals: 0, FeeBeforeTWBps: 100, FeeAfterTWBps: 50, UseCurveData: 0}
	price := oracleprice.OraclePrice{SellPrice: 1}

	// currentAmount == targetAmount is treated as already at-or-above
	// target, so the whole slice lands in the after-target-weight tier.
	got := ValueOfSold(1000, settings, price, 100_000, 100_000, flatCurve())
	require.Equal(t, uint64(995), got) // 1000 - mulDivBps(1000, 50bps) = 1000 - 5
}

func TestValueOfSoldMixedBeforeAndAfterTargetWeight(t *testing.T) {
	settings := fundaccounts.TokenSettings{Decimals: 0, FeeBeforeTWBps: 100, FeeAfterTWBps: 50, UseCurveData: 0}
	price := oracleprice.OraclePrice{SellPrice: 1}

	got := ValueOfSold(500, settings, price, 800, 1000, flatCurve())
	require.Equal(t, uint64(497), got)
}

func TestValueOfSoldUsesLowerCurveTierPrice(t *testing.T) {
	settings := fundaccounts.TokenSettings{Decimals: 0, FeeBeforeTWBps: 200, FeeAfterTWBps: 0, UseCurveData: fundaccounts.UseCurveData}
	price := oracleprice.OraclePrice{SellPrice: 10}
	curveSell := fundaccounts.TokenPriceData{Amount: [fundaccounts.NPoint]uint64{500}, Price: [fundaccounts.NPoint]uint64{5}}

	got := ValueOfSold(300, settings, price, 0, 1000, curveSell)
	// price drops to the tier's 5 instead of the oracle's 10: 300*5=1500, fee 2% -> 30
	require.Equal(t, uint64(1470), got)
}

func TestValueOfSoldIgnoresHigherCurveTierPrice(t *testing.T) {
	settings := fundaccounts.TokenSettings{Decimals: 0, FeeBeforeTWBps: 200, FeeAfterTWBps: 0, UseCurveData: fundaccounts.UseCurveData}
	price := oracleprice.OraclePrice{SellPrice: 10}
	curveSell := fundaccounts.TokenPriceData{Amount: [fundaccounts.NPoint]uint64{500}, Price: [fundaccounts.NPoint]uint64{15}}

	got := ValueOfSold(300, settings, price, 0, 1000, curveSell)
	// the tier price (15) is higher than the oracle sell price, so it never
	// overrides: stays at 10. 300*10=3000, fee 2% -> 60
	require.Equal(t, uint64(2940), got)
}

func TestValueOfSoldZeroAmountIsZero(t *testing.T) {
	settings := fundaccounts.TokenSettings{Decimals: 0, FeeBeforeTWBps: 100, FeeAfterTWBps: 50}
	price := oracleprice.OraclePrice{SellPrice: 1}
	require.Equal(t, uint64(0), ValueOfSold(0, settings, price, 0, 1000, flatCurve()))
}

func TestAmountOfBoughtSplitAcrossTargetWeight(t *testing.T) {
	settings := fundaccounts.TokenSettings{Decimals: 0, FeeBeforeTWBps: 100, FeeAfterTWBps: 50, UseCurveData: 0}
	price := oracleprice.OraclePrice{BuyPrice: 1}

	got := AmountOfBought(300, settings, price, 1100, 1000, flatCurve())
	require.Equal(t, uint64(298), got)
}

func TestAmountOfBoughtAboveTargetWeightDefaultsToBeforeTier(t *testing.T) {
	settings := fundaccounts.TokenSettings{Decimals: 0, FeeBeforeTWBps: 100, FeeAfterTWBps: 50, UseCurveData: 0}
	price := oracleprice.OraclePrice{BuyPrice: 1}

	got := AmountOfBought(300, settings, price, 2000, 1000, flatCurve())
	require.Equal(t, uint64(297), got)
}

func TestAmountOfBoughtUsesHigherCurveTierPrice(t *testing.T) {
	settings := fundaccounts.TokenSettings{Decimals: 0, FeeBeforeTWBps: 0, FeeAfterTWBps: 0, UseCurveData: fundaccounts.UseCurveData}
	price := oracleprice.OraclePrice{BuyPrice: 10}
	curveBuy := fundaccounts.TokenPriceData{Amount: [fundaccounts.NPoint]uint64{500}, Price: [fundaccounts.NPoint]uint64{15}}

	got := AmountOfBought(300, settings, price, 2000, 1000, curveBuy)
	// price rises to the tier's 15: 300 USD buys 20 units at 15/unit
	require.Equal(t, uint64(20), got)
}

func TestAmountOfBoughtZeroValueIsZero(t *testing.T) {
	settings := fundaccounts.TokenSettings{Decimals: 0, FeeBeforeTWBps: 100, FeeAfterTWBps: 50}
	price := oracleprice.OraclePrice{BuyPrice: 1}
	require.Equal(t, uint64(0), AmountOfBought(0, settings, price, 1000, 1000, flatCurve()))
}

func TestAmountToUSDAndUSDToAmountRoundTripAtUnitPrice(t *testing.T) {
	require.Equal(t, uint64(1_000), AmountToUSD(1_000, 0, 1))
	require.Equal(t, uint64(1_000), USDToAmount(1_000, 0, 1))
	// 6-decimal token, price denominated in OneUSD units per whole token.
	require.Equal(t, uint64(2)*fundaccounts.OneUSD, AmountToUSD(2_000_000, 6, fundaccounts.OneUSD))
}
