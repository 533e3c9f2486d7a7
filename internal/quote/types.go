package quote

import (
	"github.com/gagliardetto/solana-go"

	"github.com/symmetryfi/fund-quoter/internal/fundaccounts"
)

// Snapshot is the immutable, point-in-time bundle of decoded on-chain state
// a Quote call prices against. It is rebuilt wholesale by Update and
// swapped in atomically; callers hold one by value for the duration of a
// Quote call (§5).
type Snapshot struct {
	Fund      *fundaccounts.FundState
	Tokens    *fundaccounts.TokenList
	Curve     *fundaccounts.CurveData
	FundWorth uint64
}

// Quote is the result of pricing a swap: the amount received, the fee
// charged (denominated in the output token), and a reporting-only fee
// percent with four implied decimal places (FeeAmount*BPS_DIVIDER*100 over
// the fair amount, so 1_000_000 is 100%).
type Quote struct {
	InAmount  uint64
	OutAmount uint64
	FeeAmount uint64
	FeeMint   solana.PublicKey
	FeePctE4  uint64
}

// FeeSplit is the four-way split of total fees charged on a swap, per §4.F
// step 10.
type FeeSplit struct {
	Symmetry uint64
	Host     uint64
	Manager  uint64
	Fund     uint64
}
