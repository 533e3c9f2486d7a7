// Package quote assembles the final swap quote from the curve walkers,
// oracle prices, and the fund's current composition, enforcing the
// weight-band admission control that protects the fund from drifting too
// far from its target weights. See spec §4.F.
package quote

import (
	"github.com/gagliardetto/solana-go"

	"github.com/symmetryfi/fund-quoter/internal/curve"
	"github.com/symmetryfi/fund-quoter/internal/fundaccounts"
	"github.com/symmetryfi/fund-quoter/internal/fundmath"
)

const bpsSquared = uint64(fundaccounts.BPSDivider) * uint64(fundaccounts.BPSDivider)

// Price computes a swap quote for selling inAmount of inputMint into
// outputMint against snap.
func Price(snap Snapshot, inputMint, outputMint solana.PublicKey, inAmount uint64) (Quote, error) {
	fromID := snap.Tokens.IndexOfMint(inputMint)
	if fromID < 0 {
		return Quote{}, &TokenNotFoundError{Which: SideFrom}
	}
	toID := snap.Tokens.IndexOfMint(outputMint)
	if toID < 0 {
		return Quote{}, &TokenNotFoundError{Which: SideTo}
	}

	fromSettings := snap.Tokens.List[fromID]
	toSettings := snap.Tokens.List[toID]
	if fromSettings.LPOn == fundaccounts.LPDisabled || toSettings.LPOn == fundaccounts.LPDisabled {
		return Quote{}, ErrLPDisabled
	}

	fromPos := snap.Fund.PositionOfToken(uint64(fromID))
	if fromPos < 0 {
		return Quote{}, &TokenNotHeldError{Which: SideFrom}
	}
	toPos := snap.Fund.PositionOfToken(uint64(toID))
	if toPos < 0 {
		return Quote{}, &TokenNotHeldError{Which: SideTo}
	}

	if snap.Fund.LpDisabled == fundaccounts.FundLPDisabled {
		return Quote{}, ErrLPDisabled
	}
	if !fromSettings.OraclePrice.IsLive() {
		return Quote{}, &OracleOfflineError{TokenID: fromID}
	}
	if !toSettings.OraclePrice.IsLive() {
		return Quote{}, &OracleOfflineError{TokenID: toID}
	}

	currentFromAmount := snap.Fund.CurrentCompAmount[fromPos]
	currentToAmount := snap.Fund.CurrentCompAmount[toPos]

	fromTargetValue := fundmath.MulDiv(snap.Fund.TargetWeight[fromPos], snap.FundWorth, snap.Fund.WeightSum)
	fromTargetAmount := curve.USDToAmount(fromTargetValue, fromSettings.Decimals, fromSettings.OraclePrice.AvgPrice)
	toTargetValue := fundmath.MulDiv(snap.Fund.TargetWeight[toPos], snap.FundWorth, snap.Fund.WeightSum)
	toTargetAmount := curve.USDToAmount(toTargetValue, toSettings.Decimals, toSettings.OraclePrice.AvgPrice)

	value := curve.ValueOfSold(inAmount, fromSettings, fromSettings.OraclePrice, currentFromAmount, fromTargetAmount, snap.Curve.Sell[fromID])
	toAmount := curve.AmountOfBought(value, toSettings, toSettings.OraclePrice, currentToAmount, toTargetAmount, snap.Curve.Buy[toID])

	feeFreeAmount := curve.USDToAmount(
		curve.AmountToUSD(inAmount, fromSettings.Decimals, fromSettings.OraclePrice.SellPrice),
		toSettings.Decimals, toSettings.OraclePrice.BuyPrice,
	)
	fairAmount := curve.USDToAmount(
		curve.AmountToUSD(inAmount, fromSettings.Decimals, fromSettings.OraclePrice.AvgPrice),
		toSettings.Decimals, toSettings.OraclePrice.AvgPrice,
	)

	if feeFreeAmount > currentToAmount {
		feeFreeAmount = currentToAmount
	}
	if toAmount > feeFreeAmount {
		toAmount = feeFreeAmount
	}

	totalFees := feeFreeAmount - toAmount
	split := ComputeFeeSplit(totalFees, snap.Tokens.List[0])

	if fairAmount == 0 {
		return Quote{}, ErrArithmeticDegenerate
	}
	feePct := fundmath.MulDiv(totalFees, fundaccounts.BPSDivider*100, fairAmount)

	if err := checkWeightBand(snap, fromID, toID, fromPos, toPos, fromSettings, toSettings, inAmount, feeFreeAmount, split.Fund, currentFromAmount, currentToAmount); err != nil {
		return Quote{}, err
	}

	return Quote{
		InAmount:  inAmount,
		OutAmount: toAmount,
		FeeAmount: totalFees,
		FeeMint:   outputMint,
		FeePctE4:  feePct,
	}, nil
}

// ComputeFeeSplit divides totalFees into the symmetry/host/manager/fund
// buckets using the fee-split bps carried in feeToken0.AdditionalData[60:63]
// (always token 0's settings, per §4.F step 10 and §9 design notes).
func ComputeFeeSplit(totalFees uint64, feeToken0 fundaccounts.TokenSettings) FeeSplit {
	symmetryFee := fundmath.MulDiv(totalFees, feeToken0.SymmetryBps(), 100)
	hostFee := fundmath.MulDiv(totalFees, feeToken0.HostBps(), 100)
	managerFee := fundmath.MulDiv(totalFees, feeToken0.ManagerBps(), 100)
	fundFee := totalFees - symmetryFee - hostFee - managerFee
	return FeeSplit{Symmetry: symmetryFee, Host: hostFee, Manager: managerFee, Fund: fundFee}
}

func checkWeightBand(
	snap Snapshot,
	fromID, toID, fromPos, toPos int,
	fromSettings, toSettings fundaccounts.TokenSettings,
	inAmount, feeFreeAmount, fundFee, currentFromAmount, currentToAmount uint64,
) error {
	fromWorthBefore := curve.AmountToUSD(currentFromAmount, fromSettings.Decimals, fromSettings.OraclePrice.AvgPrice)
	toWorthBefore := curve.AmountToUSD(currentToAmount, toSettings.Decimals, toSettings.OraclePrice.AvgPrice)

	safeFromAmount := inAmount * 101 / 100
	fromWorthAfter := curve.AmountToUSD(currentFromAmount+safeFromAmount, fromSettings.Decimals, fromSettings.OraclePrice.AvgPrice)

	safeToAmount := (feeFreeAmount - fundFee) * 101 / 100
	if safeToAmount > currentToAmount {
		safeToAmount = currentToAmount
	}
	toWorthAfter := curve.AmountToUSD(currentToAmount-safeToAmount, toSettings.Decimals, toSettings.OraclePrice.AvgPrice)

	fundWorthPrime := snap.FundWorth + fromWorthAfter + toWorthAfter
	fundWorthPrime = subClamp(fundWorthPrime, fromWorthBefore)
	fundWorthPrime = subClamp(fundWorthPrime, toWorthBefore)

	if fundWorthPrime == 0 {
		return ErrArithmeticDegenerate
	}

	fromNewWeight := fundmath.MulDiv(fromWorthAfter, fundaccounts.WeightMultiplier, fundWorthPrime)
	toNewWeight := fundmath.MulDiv(toWorthAfter, fundaccounts.WeightMultiplier, fundWorthPrime)

	allowedOffset := snap.Fund.RebalanceThreshold * snap.Fund.LpOffsetThreshold

	allowedFromTargetWeight := fundmath.MulDiv(snap.Fund.TargetWeight[fromPos], bpsSquared+allowedOffset, bpsSquared)
	if allowedFromTargetWeight > fundaccounts.WeightMultiplier {
		allowedFromTargetWeight = fundaccounts.WeightMultiplier
	}
	allowedToTargetWeight := fundmath.MulDiv(snap.Fund.TargetWeight[toPos], bpsSquared-allowedOffset, bpsSquared)

	removingDust := fromID == 0 && snap.Fund.TargetWeight[toPos] == 0

	if fromNewWeight > allowedFromTargetWeight && !removingDust {
		return &WeightOutOfBandError{Side: SideFrom}
	}
	if toNewWeight < allowedToTargetWeight {
		return &WeightOutOfBandError{Side: SideTo}
	}
	return nil
}

func subClamp(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
