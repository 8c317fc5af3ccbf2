package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig
	Ledger   LedgerConfig
	Rewards  RewardsConfig
	Database DatabaseConfig
}

// ServerConfig holds HTTP transport settings
type ServerConfig struct {
	Port            int
	AdminKey        string
	CorsOrigin      string
	RateLimitRPS    float64
	RateLimitBurst  int
	ShutdownTimeout time.Duration
}

// LedgerConfig holds snapshot persistence settings
type LedgerConfig struct {
	DataFile           string
	FlushInterval      time.Duration
	DefaultDisplayName string
}

// RewardsConfig holds the share and trade economics
type RewardsConfig struct {
	ShareReward      decimal.Decimal
	ShareCooldown    time.Duration
	ShareDwell       time.Duration
	TradeFee         decimal.Decimal
	MaxTradesPerUser int
	ProfitMin        decimal.Decimal
	ProfitSpread     decimal.Decimal
	RewardScale      decimal.Decimal
	RewardSymbol     string
	FeeSymbol        string
	RewardsFile      string
}

// DatabaseConfig holds journal database connection settings.
// An empty Path disables the journal.
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}
