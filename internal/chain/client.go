// Package chain is the RPC-facing adapter around the transport-agnostic
// fund package: it polls Solana for the accounts fund.Fund asks for, retries
// transient RPC failures with exponential backoff, and drives Update on a
// ticker, mirroring the teacher's indexer.Service poll loop.
package chain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/symmetryfi/fund-quoter/internal/config"
	"github.com/symmetryfi/fund-quoter/internal/fund"
	"github.com/symmetryfi/fund-quoter/internal/fundaccounts"
	"github.com/symmetryfi/fund-quoter/internal/quote"
)

// Client owns the RPC connection and the Fund it keeps in sync.
type Client struct {
	cfg    config.Config
	rpc    *rpc.Client
	fund   *fund.Fund
	logger *slog.Logger
}

// New constructs a Client for the fund addressed by cfg.
func New(cfg config.Config, logger *slog.Logger) *Client {
	return &Client{
		cfg: cfg,
		rpc: rpc.New(cfg.RPCURL),
		fund: fund.New(fund.Addresses{
			FundState: cfg.FundStateAddress,
			TokenList: cfg.TokenListAddress,
			CurveData: cfg.CurveDataAddress,
		}),
		logger: logger,
	}
}

// Quote prices a swap against the most recently fetched snapshot.
func (c *Client) Quote(input, output solana.PublicKey, inAmount uint64) (quote.Quote, error) {
	return c.fund.Quote(input, output, inAmount)
}

// ReserveMints returns the fund's currently tradable mints.
func (c *Client) ReserveMints() []solana.PublicKey {
	return c.fund.ReserveMints()
}

// Run fetches the fund once, then polls on cfg.PollInterval until ctx is
// cancelled, logging (never panicking on) update failures so a single bad
// poll never takes the quote server down.
func (c *Client) Run(ctx context.Context) error {
	if err := c.updateWithRetry(ctx); err != nil {
		c.logger.Error("initial fund sync failed", "err", err)
	}

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("chain client stopped")
			return nil
		case <-ticker.C:
			if err := c.updateWithRetry(ctx); err != nil {
				c.logger.Error("fund sync failed", "err", err)
			}
		}
	}
}

func (c *Client) updateWithRetry(ctx context.Context) error {
	delay := c.cfg.RPCRetryBaseDelay
	var lastErr error
	for attempt := 0; attempt <= c.cfg.RPCMaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			delay *= 2
			if delay > c.cfg.RPCRetryMaxDelay {
				delay = c.cfg.RPCRetryMaxDelay
			}
		}

		if err := c.updateOnce(ctx); err != nil {
			lastErr = err
			c.logger.Warn("fund sync attempt failed", "attempt", attempt, "err", err)
			continue
		}
		return nil
	}
	return fmt.Errorf("fund sync: all %d attempts failed: %w", c.cfg.RPCMaxRetries+1, lastErr)
}

// updateOnce fetches the fund in two rounds: the fund state, token list,
// curve data and clock first (the bootstrap set fund.AccountsToUpdate
// returns before any snapshot exists), then the held tokens' oracle accounts
// that bootstrap round reveals. A held token's oracle account is never known
// in advance of reading the fund state, so it can't be folded into a single
// round.
func (c *Client) updateOnce(ctx context.Context) error {
	bootstrap := []solana.PublicKey{c.cfg.FundStateAddress, c.cfg.TokenListAddress, c.cfg.CurveDataAddress, fund.ClockSysvarAddress}

	accountData, err := c.fetchAccounts(ctx, bootstrap)
	if err != nil {
		return err
	}

	tokenList, err := fundaccounts.LoadTokenList(accountData[c.cfg.TokenListAddress])
	if err != nil {
		return fmt.Errorf("decode token list: %w", err)
	}
	fundState, err := fundaccounts.LoadFundState(accountData[c.cfg.FundStateAddress])
	if err != nil {
		return fmt.Errorf("decode fund state: %w", err)
	}

	oracleAccounts := make([]solana.PublicKey, 0, fundState.NumOfTokens)
	for i := uint64(0); i < fundState.NumOfTokens && i < fundaccounts.NFund; i++ {
		oracleAccounts = append(oracleAccounts, tokenList.List[fundState.CurrentCompToken[i]].OracleAccount)
	}

	if len(oracleAccounts) > 0 {
		oracleData, err := c.fetchAccounts(ctx, oracleAccounts)
		if err != nil {
			return err
		}
		for k, v := range oracleData {
			accountData[k] = v
		}
	}

	if err := c.fund.Update(accountData); err != nil {
		return fmt.Errorf("update fund: %w", err)
	}
	return nil
}

func (c *Client) fetchAccounts(ctx context.Context, accounts []solana.PublicKey) (map[solana.PublicKey][]byte, error) {
	resp, err := c.rpc.GetMultipleAccountsWithOpts(ctx, accounts, &rpc.GetMultipleAccountsOpts{
		Commitment: c.cfg.Commitment,
	})
	if err != nil {
		return nil, fmt.Errorf("getMultipleAccounts: %w", err)
	}
	if len(resp.Value) != len(accounts) {
		return nil, fmt.Errorf("getMultipleAccounts: expected %d accounts, got %d", len(accounts), len(resp.Value))
	}

	out := make(map[solana.PublicKey][]byte, len(accounts))
	for i, account := range resp.Value {
		if account == nil {
			return nil, fmt.Errorf("account %s not found", accounts[i])
		}
		out[accounts[i]] = account.Data.GetBinary()
	}
	return out, nil
}
