package quote

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/symmetryfi/fund-quoter/internal/fundaccounts"
	"github.com/symmetryfi/fund-quoter/internal/oracleprice"
)

func testMint(seed byte) solana.PublicKey {
	var pk solana.PublicKey
	pk[0] = seed
	return pk
}

func liveFlatPrice() oracleprice.OraclePrice {
	return oracleprice.OraclePrice{SellPrice: 1, AvgPrice: 1, BuyPrice: 1, Live: 1}
}

// baseSnapshot builds a two-token, 50/50 target-weight fund with flat
// unit prices and no curve tiers, so ValueOfSold/AmountOfBought reduce to
// plain before/after-target-weight fee splitting. rebalanceThreshold and
// lpOffsetThreshold are left for each test to set, since they are the only
// inputs that change whether checkWeightBand accepts a given trade.
func baseSnapshot(rebalanceThreshold, lpOffsetThreshold uint64) Snapshot {
	tokenA := fundaccounts.TokenSettings{
		TokenMint:      testMint(1),
		Decimals:       0,
		LPOn:           1,
		UseCurveData:   0,
		FeeBeforeTWBps: 100,
		FeeAfterTWBps:  50,
		OraclePrice:    liveFlatPrice(),
	}
	tokenA.AdditionalData[60] = 10
	tokenA.AdditionalData[61] = 20
	tokenA.AdditionalData[62] = 30

	tokenB := fundaccounts.TokenSettings{
		TokenMint:      testMint(2),
		Decimals:       0,
		LPOn:           1,
		UseCurveData:   0,
		FeeBeforeTWBps: 100,
		FeeAfterTWBps:  50,
		OraclePrice:    liveFlatPrice(),
	}

	tokens := &fundaccounts.TokenList{NumTokens: 2}
	tokens.List[0] = tokenA
	tokens.List[1] = tokenB

	fund := &fundaccounts.FundState{
		NumOfTokens:        2,
		WeightSum:          10_000,
		RebalanceThreshold: rebalanceThreshold,
		LpOffsetThreshold:  lpOffsetThreshold,
	}
	fund.CurrentCompToken[0] = 0
	fund.CurrentCompToken[1] = 1
	fund.CurrentCompAmount[0] = 100_000
	fund.CurrentCompAmount[1] = 100_000
	fund.TargetWeight[0] = 5_000
	fund.TargetWeight[1] = 5_000

	return Snapshot{
		Fund:      fund,
		Tokens:    tokens,
		Curve:     &fundaccounts.CurveData{},
		FundWorth: 200_000,
	}
}

func TestPriceAcceptedSwapWithinWeightBand(t *testing.T) {
	// Wide rebalance allowance: the 1000-unit swap keeps both sides inside
	// the permitted weight band.
	snap := baseSnapshot(2000, 2000)

	q, err := Price(snap, testMint(1), testMint(2), 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), q.InAmount)
	require.Equal(t, uint64(991), q.OutAmount)
	require.Equal(t, uint64(9), q.FeeAmount)
	require.Equal(t, testMint(2), q.FeeMint)
	require.Equal(t, uint64(9000), q.FeePctE4)
}

func TestPriceRejectsSwapOutsideWeightBand(t *testing.T) {
	// Narrow rebalance allowance: the same 1000-unit swap now pushes the
	// sold token's post-trade weight past what's allowed.
	snap := baseSnapshot(100, 100)

	_, err := Price(snap, testMint(1), testMint(2), 1000)
	require.Error(t, err)
	var weightErr *WeightOutOfBandError
	require.ErrorAs(t, err, &weightErr)
	require.Equal(t, SideFrom, weightErr.Side)
}

func TestPriceFeeSplitUsesToken0Shares(t *testing.T) {
	snap := baseSnapshot(2000, 2000)
	q, err := Price(snap, testMint(1), testMint(2), 1000)
	require.NoError(t, err)

	split := ComputeFeeSplit(q.FeeAmount, snap.Tokens.List[0])
	require.Equal(t, uint64(0), split.Symmetry)
	require.Equal(t, uint64(1), split.Host)
	require.Equal(t, uint64(2), split.Manager)
	require.Equal(t, uint64(6), split.Fund)
	require.Equal(t, q.FeeAmount, split.Symmetry+split.Host+split.Manager+split.Fund)
}

func TestPriceTokenNotFound(t *testing.T) {
	snap := baseSnapshot(2000, 2000)
	_, err := Price(snap, testMint(9), testMint(2), 1000)
	require.Error(t, err)
	var notFound *TokenNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, SideFrom, notFound.Which)

	_, err = Price(snap, testMint(1), testMint(9), 1000)
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, SideTo, notFound.Which)
}

func TestPriceTokenNotHeld(t *testing.T) {
	snap := baseSnapshot(2000, 2000)
	snap.Fund.NumOfTokens = 1 // token B registered but no longer part of the fund

	_, err := Price(snap, testMint(1), testMint(2), 1000)
	require.Error(t, err)
	var notHeld *TokenNotHeldError
	require.ErrorAs(t, err, &notHeld)
	require.Equal(t, SideTo, notHeld.Which)
}

func TestPriceLPDisabledOnToken(t *testing.T) {
	snap := baseSnapshot(2000, 2000)
	tokenB := snap.Tokens.List[1]
	tokenB.LPOn = fundaccounts.LPDisabled
	snap.Tokens.List[1] = tokenB

	_, err := Price(snap, testMint(1), testMint(2), 1000)
	require.ErrorIs(t, err, ErrLPDisabled)
}

func TestPriceLPDisabledOnFund(t *testing.T) {
	snap := baseSnapshot(2000, 2000)
	snap.Fund.LpDisabled = fundaccounts.FundLPDisabled

	_, err := Price(snap, testMint(1), testMint(2), 1000)
	require.ErrorIs(t, err, ErrLPDisabled)
}

func TestPriceOracleOffline(t *testing.T) {
	snap := baseSnapshot(2000, 2000)
	tokenA := snap.Tokens.List[0]
	tokenA.OraclePrice.Live = 0
	snap.Tokens.List[0] = tokenA

	_, err := Price(snap, testMint(1), testMint(2), 1000)
	require.Error(t, err)
	var offline *OracleOfflineError
	require.ErrorAs(t, err, &offline)
	require.Equal(t, 0, offline.TokenID)
}

func TestComputeFeeSplitAllocatesRemainderToFund(t *testing.T) {
	feeToken := fundaccounts.TokenSettings{}
	feeToken.AdditionalData[60] = 33
	feeToken.AdditionalData[61] = 33
	feeToken.AdditionalData[62] = 33

	split := ComputeFeeSplit(10, feeToken)
	require.Equal(t, uint64(10), split.Symmetry+split.Host+split.Manager+split.Fund)
}
