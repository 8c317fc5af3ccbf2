package common

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tiffy-rewards-go/internal/api"
	"tiffy-rewards-go/internal/models"
	"tiffy-rewards-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, journal bool) *models.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &models.Config{
		Server: models.ServerConfig{AdminKey: "s3cret"},
		Ledger: models.LedgerConfig{
			DataFile:           filepath.Join(dir, "data.json"),
			FlushInterval:      time.Hour,
			DefaultDisplayName: "Honey",
		},
		Rewards: models.RewardsConfig{
			ShareReward:      decimal.NewFromInt(500),
			ShareCooldown:    5 * time.Minute,
			ShareDwell:       time.Minute,
			TradeFee:         decimal.RequireFromString("0.003"),
			MaxTradesPerUser: 2,
			ProfitMin:        decimal.RequireFromString("0.00015"),
			ProfitSpread:     decimal.RequireFromString("0.0003"),
			RewardScale:      decimal.NewFromInt(1000),
			RewardSymbol:     "TIFFYAI",
			FeeSymbol:        "BNB",
		},
	}
	if journal {
		cfg.Database = models.DatabaseConfig{
			Path:         filepath.Join(dir, "journal.db"),
			MaxOpenConns: 1,
			MaxIdleConns: 1,
			PingTimeout:  5 * time.Second,
		}
	}
	return cfg
}

func TestInitializeServices_WithJournal(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, true)

	services, err := InitializeServices(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, services.DbService)
	services.Persister.Start(ctx)

	_, err = services.Rewards.FundWallet(ctx, models.AdminFundRequest{
		Key: "s3cret", Wallet: "0xA", Amount: decimal.RequireFromString("0.01"),
	})
	require.NoError(t, err)

	entries, err := services.Rewards.GetWalletHistory(ctx, "0xA", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.EntryAdminFund, entries[0].EntryType)

	services.Close()

	snap, err := store.LoadSnapshot(cfg.Ledger.DataFile)
	require.NoError(t, err)
	require.Contains(t, snap.Wallets, "0xA")
	assert.True(t, snap.Wallets["0xA"].Bnb.Equal(decimal.RequireFromString("0.01")))
}

func TestInitializeServices_JournalDisabled(t *testing.T) {
	ctx := context.Background()
	services, err := InitializeServices(ctx, testConfig(t, false))
	require.NoError(t, err)
	defer services.Close()

	assert.Nil(t, services.DbService)
	require.NoError(t, services.Rewards.HealthCheck(ctx))

	_, err = services.Rewards.GetWalletHistory(ctx, "0xA", 10, 0)
	assert.ErrorIs(t, err, api.ErrUnavailable)
}

func TestIsIgnorableSyncError(t *testing.T) {
	assert.True(t, isIgnorableSyncError(errSync("sync /dev/stderr: inappropriate ioctl for device")))
	assert.False(t, isIgnorableSyncError(errSync("sync /var/log/app.log: no space left on device")))
}

type errSync string

func (e errSync) Error() string { return string(e) }
