package rewards

import (
	"math/rand"
	"testing"
	"time"

	"tiffy-rewards-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTradeEngine(yield YieldSource) *TradeEngine {
	return NewTradeEngine(TradeEngineConfig{
		Fee:          decimal.RequireFromString("0.003"),
		MaxTrades:    2,
		ProfitMin:    decimal.RequireFromString("0.00015"),
		ProfitSpread: decimal.RequireFromString("0.0003"),
		RewardScale:  decimal.NewFromInt(1000),
		Yield:        yield,
	})
}

func fundedLedger(t *testing.T, bnb string) *store.Ledger {
	t.Helper()
	ledger := store.NewLedger(nil, "", "Honey")
	require.NoError(t, update(t, ledger, func(tx *store.Tx) error {
		tx.Wallet("0xA").Bnb = decimal.RequireFromString(bnb)
		return nil
	}))
	return ledger
}

func TestTradeEngine_TwoTradesThenSessionLimit(t *testing.T) {
	engine := newTradeEngine(rand.New(rand.NewSource(1)))
	ledger := fundedLedger(t, "0.01")

	var result *TradeResult
	require.NoError(t, update(t, ledger, func(tx *store.Tx) error {
		var err error
		result, err = engine.Run(tx, "u1", "0xA", 2, epoch)
		return err
	}))

	assert.Equal(t, 2, result.Trades)
	assert.True(t, result.Fee.Equal(decimal.RequireFromString("0.006")))
	lower := decimal.RequireFromString("0.3") // 0.00015 * 2 * 1000
	upper := decimal.RequireFromString("0.9") // 0.00045 * 2 * 1000
	assert.True(t, result.Credited.GreaterThanOrEqual(lower), "credited %s below range", result.Credited)
	assert.True(t, result.Credited.LessThan(upper), "credited %s above range", result.Credited)

	snap := ledger.Snapshot()
	assert.True(t, snap.Wallets["0xA"].Bnb.Equal(decimal.RequireFromString("0.004")), "bnb=%s", snap.Wallets["0xA"].Bnb)
	assert.True(t, snap.Wallets["0xA"].Tiffy.Equal(result.Credited))
	assert.Equal(t, 2, snap.Users["u1"].Trades)
	assert.Equal(t, epoch.UnixMilli(), snap.Wallets["0xA"].LastSync)

	err := update(t, ledger, func(tx *store.Tx) error {
		_, err := engine.Run(tx, "u1", "0xA", 1, epoch)
		return err
	})
	assert.ErrorIs(t, err, ErrSessionLimit)
}

func TestTradeEngine_ClampsToRemainingAllowance(t *testing.T) {
	engine := newTradeEngine(FixedYield(0))
	ledger := fundedLedger(t, "1")

	var first, second *TradeResult
	require.NoError(t, update(t, ledger, func(tx *store.Tx) error {
		var err error
		if first, err = engine.Run(tx, "u1", "0xA", 1, epoch); err != nil {
			return err
		}
		second, err = engine.Run(tx, "u1", "0xA", 10, epoch)
		return err
	}))

	assert.Equal(t, 1, first.Trades)
	assert.Equal(t, 1, second.Trades, "request above the allowance is clamped")
	assert.True(t, second.Credited.Equal(decimal.RequireFromString("0.15")))
	assert.Equal(t, 2, ledger.Snapshot().Users["u1"].Trades)
}

func TestTradeEngine_NonPositiveCountRunsOne(t *testing.T) {
	engine := newTradeEngine(FixedYield(0.5))
	ledger := fundedLedger(t, "1")

	require.NoError(t, update(t, ledger, func(tx *store.Tx) error {
		result, err := engine.Run(tx, "u1", "0xA", 0, epoch)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Trades)
		// 0.00015 + 0.5*0.0003 = 0.0003 per trade
		assert.True(t, result.Profit.Equal(decimal.RequireFromString("0.0003")), "profit=%s", result.Profit)
		assert.True(t, result.Credited.Equal(decimal.RequireFromString("0.3")), "credited=%s", result.Credited)

		result, err = engine.Run(tx, "u2", "0xA", -5, epoch)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Trades)
		return nil
	}))
}

func TestTradeEngine_InsufficientFundsRejectsWholeBatch(t *testing.T) {
	engine := newTradeEngine(FixedYield(0))
	ledger := fundedLedger(t, "0.005")

	err := update(t, ledger, func(tx *store.Tx) error {
		_, err := engine.Run(tx, "u1", "0xA", 2, epoch)
		return err
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	var fundsErr *InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)
	assert.True(t, fundsErr.Required.Equal(decimal.RequireFromString("0.006")))

	snap := ledger.Snapshot()
	assert.True(t, snap.Wallets["0xA"].Bnb.Equal(decimal.RequireFromString("0.005")), "no partial debit")
	assert.True(t, snap.Wallets["0xA"].Tiffy.IsZero())
	assert.Equal(t, 0, snap.Users["u1"].Trades, "counter must not move")
}

func TestTradeEngine_ExactFeeBalanceIsEnough(t *testing.T) {
	engine := newTradeEngine(FixedYield(0))
	ledger := fundedLedger(t, "0.006")

	require.NoError(t, update(t, ledger, func(tx *store.Tx) error {
		_, err := engine.Run(tx, "u1", "0xA", 2, epoch)
		return err
	}))
	assert.True(t, ledger.Snapshot().Wallets["0xA"].Bnb.IsZero())
}

func TestTradeEngine_ZeroCap(t *testing.T) {
	engine := NewTradeEngine(TradeEngineConfig{Fee: decimal.Zero, MaxTrades: 0})
	ledger := fundedLedger(t, "1")

	err := update(t, ledger, func(tx *store.Tx) error {
		_, err := engine.Run(tx, "u1", "0xA", 1, epoch)
		return err
	})
	assert.ErrorIs(t, err, ErrSessionLimit)
}

func TestClaimAll(t *testing.T) {
	ledger := store.NewLedger(nil, "", "Honey")
	later := epoch.Add(time.Hour)

	err := update(t, ledger, func(tx *store.Tx) error {
		_, err := ClaimAll(tx, "0xA", epoch)
		return err
	})
	assert.ErrorIs(t, err, ErrNothingToClaim)

	require.NoError(t, update(t, ledger, func(tx *store.Tx) error {
		tx.Wallet("0xA").Tiffy = decimal.RequireFromString("512.34")
		return nil
	}))

	var cleared decimal.Decimal
	require.NoError(t, update(t, ledger, func(tx *store.Tx) error {
		var err error
		cleared, err = ClaimAll(tx, "0xA", later)
		return err
	}))

	assert.True(t, cleared.Equal(decimal.RequireFromString("512.34")))
	w := ledger.Snapshot().Wallets["0xA"]
	assert.True(t, w.Tiffy.IsZero())
	assert.Equal(t, later.UnixMilli(), w.LastSync)
}
