package rewards

import (
	"fmt"
	"time"

	"tiffy-rewards-go/internal/store"

	"github.com/shopspring/decimal"
)

// TradeEngineConfig contains configuration for TradeEngine
type TradeEngineConfig struct {
	Fee          decimal.Decimal
	MaxTrades    int
	ProfitMin    decimal.Decimal
	ProfitSpread decimal.Decimal
	RewardScale  decimal.Decimal
	Yield        YieldSource
}

// TradeEngine runs simulated trades: it debits a per-trade fee from the
// wallet's fee balance and credits a randomized yield in reward tokens.
type TradeEngine struct {
	fee          decimal.Decimal
	maxTrades    int
	profitMin    decimal.Decimal
	profitSpread decimal.Decimal
	rewardScale  decimal.Decimal
	yield        YieldSource
}

func NewTradeEngine(cfg TradeEngineConfig) *TradeEngine {
	yield := cfg.Yield
	if yield == nil {
		yield = DefaultYieldSource()
	}
	return &TradeEngine{
		fee:          cfg.Fee,
		maxTrades:    cfg.MaxTrades,
		profitMin:    cfg.ProfitMin,
		profitSpread: cfg.ProfitSpread,
		rewardScale:  cfg.RewardScale,
		yield:        yield,
	}
}

func (e *TradeEngine) MaxTrades() int { return e.maxTrades }

// TradeResult reports what a batch actually did
type TradeResult struct {
	Trades        int
	Fee           decimal.Decimal
	Profit        decimal.Decimal // fee-currency units
	Credited      decimal.Decimal // reward-token units
	FeeBalance    decimal.Decimal
	RewardBalance decimal.Decimal
}

// InsufficientFundsError carries the fee the batch would have needed
type InsufficientFundsError struct {
	Required decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("need %s fee currency", e.Required.String())
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// Run executes up to requested trades for the user against the wallet.
// The batch is clamped to the user's remaining session allowance and is
// rejected as a whole when the wallet cannot cover every fee.
func (e *TradeEngine) Run(tx *store.Tx, userId, wallet string, requested int, now time.Time) (*TradeResult, error) {
	user := tx.User(userId)
	w := tx.Wallet(wallet)

	if requested < 1 {
		requested = 1
	}
	remaining := e.maxTrades - user.Trades
	tradesToRun := min(requested, remaining)
	if tradesToRun <= 0 {
		return nil, ErrSessionLimit
	}

	count := decimal.NewFromInt(int64(tradesToRun))
	totalFee := e.fee.Mul(count)
	if w.Bnb.LessThan(totalFee) {
		return nil, &InsufficientFundsError{Required: totalFee}
	}

	perTrade := e.profitMin.Add(e.profitSpread.Mul(decimal.NewFromFloat(e.yield.Float64())))
	profit := perTrade.Mul(count)
	credited := profit.Mul(e.rewardScale)

	w.Bnb = w.Bnb.Sub(totalFee)
	w.Tiffy = w.Tiffy.Add(credited)
	w.LastSync = now.UnixMilli()
	user.Trades += tradesToRun

	return &TradeResult{
		Trades:        tradesToRun,
		Fee:           totalFee,
		Profit:        profit,
		Credited:      credited,
		FeeBalance:    w.Bnb,
		RewardBalance: w.Tiffy,
	}, nil
}

// ClaimAll zeroes the wallet's reward balance and returns the prior amount.
func ClaimAll(tx *store.Tx, wallet string, now time.Time) (decimal.Decimal, error) {
	w := tx.Wallet(wallet)
	if !w.Tiffy.IsPositive() {
		return decimal.Zero, ErrNothingToClaim
	}
	pending := w.Tiffy
	w.Tiffy = decimal.Zero
	w.LastSync = now.UnixMilli()
	return pending, nil
}
