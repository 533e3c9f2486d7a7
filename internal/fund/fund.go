// Package fund implements the transport-agnostic aggregator contract: a
// fund's reserve mints, the accounts it needs refreshed, how to fold a fresh
// account map into a new snapshot, and how to quote against the snapshot
// currently installed. It never issues an RPC call itself — chain.Client is
// the concrete adapter that fetches accounts and drives Update.
package fund

import (
	"fmt"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"

	"github.com/symmetryfi/fund-quoter/internal/curve"
	"github.com/symmetryfi/fund-quoter/internal/fundaccounts"
	"github.com/symmetryfi/fund-quoter/internal/oracle"
	"github.com/symmetryfi/fund-quoter/internal/quote"
)

// ClockSysvarAddress is Solana's well-known clock sysvar account, read on
// every update cycle alongside the fund's own accounts.
var ClockSysvarAddress = solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")

// Addresses is the fixed set of well-known accounts backing one fund
// deployment.
type Addresses struct {
	FundState solana.PublicKey
	TokenList solana.PublicKey
	CurveData solana.PublicKey
}

// Fund tracks one on-chain fund's pricing state as an atomically-swapped
// Snapshot. All reads happen against a snapshot captured at read time; no
// lock is held across a Quote call.
type Fund struct {
	addrs Addresses
	snap  atomic.Pointer[quote.Snapshot]
}

// New returns a Fund with no snapshot installed yet; until the first Update,
// ReserveMints returns nil and AccountsToUpdate returns only the bootstrap set.
func New(addrs Addresses) *Fund {
	return &Fund{addrs: addrs}
}

// ReserveMints returns the mints of every currently-held, swap-enabled
// token, per §6.
func (f *Fund) ReserveMints() []solana.PublicKey {
	snap := f.snap.Load()
	if snap == nil {
		return nil
	}
	mints := make([]solana.PublicKey, 0, snap.Fund.NumOfTokens)
	for i := uint64(0); i < snap.Fund.NumOfTokens && i < fundaccounts.NFund; i++ {
		settings := snap.Tokens.List[snap.Fund.CurrentCompToken[i]]
		if settings.LPOn == fundaccounts.LPDisabled {
			continue
		}
		mints = append(mints, settings.TokenMint)
	}
	return mints
}

// AccountsToUpdate returns the fund state, token list, curve data, clock
// sysvar, and every currently-held token's oracle account — the exact set
// Update needs in its account map. Before the first Update it returns only
// the four bootstrap accounts, since the held-token set isn't known yet.
func (f *Fund) AccountsToUpdate() []solana.PublicKey {
	accounts := []solana.PublicKey{f.addrs.FundState, f.addrs.TokenList, f.addrs.CurveData, ClockSysvarAddress}
	snap := f.snap.Load()
	if snap == nil {
		return accounts
	}
	for i := uint64(0); i < snap.Fund.NumOfTokens && i < fundaccounts.NFund; i++ {
		settings := snap.Tokens.List[snap.Fund.CurrentCompToken[i]]
		accounts = append(accounts, settings.OracleAccount)
	}
	return accounts
}

// Update decodes fundState/tokenList/curveData/clock out of accountData,
// normalizes every currently-held token's oracle reading, recomputes fund
// worth, and atomically installs the result as the new snapshot. It fails
// without touching the installed snapshot if any required account is
// missing, malformed, or (for a held token) reports a dead oracle — mirroring
// the Rust original's refusal to update on a stale/offline oracle.
func (f *Fund) Update(accountData map[solana.PublicKey][]byte) error {
	clockData, ok := accountData[ClockSysvarAddress]
	if !ok {
		return fmt.Errorf("fund: missing clock sysvar account")
	}
	clock, err := oracle.DecodeClockSysvar(clockData)
	if err != nil {
		return fmt.Errorf("decode clock sysvar: %w", err)
	}

	tokenListData, ok := accountData[f.addrs.TokenList]
	if !ok {
		return fmt.Errorf("fund: missing token list account %s", f.addrs.TokenList)
	}
	tokenList, err := fundaccounts.LoadTokenList(tokenListData)
	if err != nil {
		return fmt.Errorf("decode token list: %w", err)
	}

	curveDataBytes, ok := accountData[f.addrs.CurveData]
	if !ok {
		return fmt.Errorf("fund: missing curve data account %s", f.addrs.CurveData)
	}
	curveData, err := fundaccounts.LoadCurveData(curveDataBytes)
	if err != nil {
		return fmt.Errorf("decode curve data: %w", err)
	}

	fundStateData, ok := accountData[f.addrs.FundState]
	if !ok {
		return fmt.Errorf("fund: missing fund state account %s", f.addrs.FundState)
	}
	fundState, err := fundaccounts.LoadFundState(fundStateData)
	if err != nil {
		return fmt.Errorf("decode fund state: %w", err)
	}

	var fundWorth uint64
	for i := uint64(0); i < fundState.NumOfTokens && i < fundaccounts.NFund; i++ {
		tokenID := fundState.CurrentCompToken[i]
		settings := &tokenList.List[tokenID]

		oracleData, ok := accountData[settings.OracleAccount]
		if !ok {
			return fmt.Errorf("fund: missing oracle account %s for token %d", settings.OracleAccount, tokenID)
		}
		price, err := oracle.Normalize(oracleData, *settings, clock)
		if err != nil {
			return fmt.Errorf("normalize oracle for token %d: %w", tokenID, err)
		}
		if !price.IsLive() {
			return fmt.Errorf("fund: oracle for held token %d is offline", tokenID)
		}
		settings.OraclePrice = price

		fundWorth += curve.AmountToUSD(fundState.CurrentCompAmount[i], settings.Decimals, price.AvgPrice)
	}

	f.snap.Store(&quote.Snapshot{
		Fund:      fundState,
		Tokens:    tokenList,
		Curve:     curveData,
		FundWorth: fundWorth,
	})
	return nil
}

// Quote prices a swap against the most recently installed snapshot.
func (f *Fund) Quote(input, output solana.PublicKey, inAmount uint64) (quote.Quote, error) {
	snap := f.snap.Load()
	if snap == nil {
		return quote.Quote{}, fmt.Errorf("fund: no snapshot installed yet")
	}
	return quote.Price(*snap, input, output, inAmount)
}
