package common

import (
	"context"
	"log"
	"strings"

	"tiffy-rewards-go/internal/api"
	"tiffy-rewards-go/internal/database"
	"tiffy-rewards-go/internal/models"
	"tiffy-rewards-go/internal/persister"
	"tiffy-rewards-go/internal/rewards"
	"tiffy-rewards-go/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// A missing .env is fine; variables may come from the shell or the container
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	} else {
		log.Println("Loaded environment variables from .env file")
	}
}

type Services struct {
	Ledger    *store.Ledger
	DbService *database.Service // nil when the journal is disabled
	Rewards   *api.RewardService
	Persister *persister.Persister
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices loads the ledger snapshot, opens the journal when one is
// configured and wires the reward service and its flusher. The flusher is
// returned stopped.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	ledger := store.OpenLedger(cfg.Ledger.DataFile, cfg.Ledger.DefaultDisplayName)

	var dbService *database.Service
	var journal api.Journal
	if cfg.Database.Path != "" {
		var err error
		dbService, err = InitializeDatabaseOnly(ctx, cfg)
		if err != nil {
			return nil, err
		}
		journal = dbService
	} else {
		zap.L().Warn("Journal disabled, balance history will not be recorded")
	}

	rc := cfg.Rewards
	rewardService := api.NewRewardService(api.RewardServiceConfig{
		Ledger:  ledger,
		Journal: journal,
		Shares:  rewards.NewShareMachine(rc.ShareReward, rc.ShareCooldown, rc.ShareDwell),
		Trades: rewards.NewTradeEngine(rewards.TradeEngineConfig{
			Fee:          rc.TradeFee,
			MaxTrades:    rc.MaxTradesPerUser,
			ProfitMin:    rc.ProfitMin,
			ProfitSpread: rc.ProfitSpread,
			RewardScale:  rc.RewardScale,
		}),
		AdminKey: cfg.Server.AdminKey,
		Symbols:  api.Symbols{Reward: rc.RewardSymbol, Fee: rc.FeeSymbol},
	})

	if cfg.Server.AdminKey == "" {
		zap.L().Warn("ADMIN_KEY not set, admin endpoints are disabled")
	}

	zap.L().Info("Reward service initialized",
		zap.String("share_reward", rc.ShareReward.String()),
		zap.Duration("share_cooldown", rc.ShareCooldown),
		zap.Duration("share_dwell", rc.ShareDwell),
		zap.String("trade_fee", rc.TradeFee.String()),
		zap.Int("max_trades_per_user", rc.MaxTradesPerUser))

	return &Services{
		Ledger:    ledger,
		DbService: dbService,
		Rewards:   rewardService,
		Persister: persister.New(persister.Config{Store: ledger, Interval: cfg.Ledger.FlushInterval}),
	}, nil
}

// InitializeDatabaseOnly opens just the journal.
// Useful for read-only operations like reconciling balances
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

// Close stops the flusher, which writes a final snapshot, then closes the journal.
func (cs *Services) Close() {
	if cs.Persister != nil {
		cs.Persister.Stop()
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
