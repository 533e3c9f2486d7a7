// Package fundaccounts decodes the fixed-layout on-chain accounts that back
// a fund: FundState, TokenList, and CurveData.
package fundaccounts

// Compiled-in sizes and limits, mirroring the on-chain program's layout.
const (
	NFund  = 20  // max tokens a fund can hold at once
	NPool  = 100 // max tokens in the supported-token registry
	NPoint = 10  // piecewise-linear curve points per token/side

	OneUSD            = 1_000_000_000_000 // $1 in the USD numeraire
	BPSDivider        = 10_000
	WeightMultiplier  = 10_000
	UseCurveData      = 1
	LPDisabled        = 0
	FundLPDisabled    = 1
	FundStateSize     = 10208
	TokenListSize     = 39816
	CurveDataSize     = 64008
	OracleTypeV0Size  = 3312
	OracleTypeV1Size  = 809
	tokenSettingsSize = 199
)
