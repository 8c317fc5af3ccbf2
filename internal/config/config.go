/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"tiffy-rewards-go/internal/models"

	"github.com/shopspring/decimal"
)

func Load() (*models.Config, error) {
	flushInterval, err := getEnvDuration("FLUSH_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	rewards, err := loadRewards()
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &models.Config{
		Server: models.ServerConfig{
			Port:            getEnvInt("PORT", 3000),
			AdminKey:        getEnvString("ADMIN_KEY", ""),
			CorsOrigin:      getEnvString("CORS_ORIGIN", "*"),
			RateLimitRPS:    getEnvFloat("RATE_LIMIT_RPS", 5),
			RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 10),
			ShutdownTimeout: shutdownTimeout,
		},
		Ledger: models.LedgerConfig{
			DataFile:           getEnvString("DATA_FILE", "data.json"),
			FlushInterval:      flushInterval,
			DefaultDisplayName: getEnvString("DEFAULT_DISPLAY_NAME", "Honey"),
		},
		Rewards: rewards,
		Database: models.DatabaseConfig{
			Path:            lookupEnvString("JOURNAL_PATH", "journal.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 1),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 1),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
		},
	}

	if cfg.Ledger.FlushInterval <= 0 {
		return nil, fmt.Errorf("FLUSH_INTERVAL must be positive, got %v", cfg.Ledger.FlushInterval)
	}

	return cfg, nil
}

func loadRewards() (models.RewardsConfig, error) {
	var rewards models.RewardsConfig
	var err error

	if rewards.ShareReward, err = getEnvDecimal("SHARE_REWARD", decimal.NewFromInt(500)); err != nil {
		return rewards, err
	}
	if rewards.ShareCooldown, err = getEnvDuration("SHARE_COOLDOWN", 5*time.Minute); err != nil {
		return rewards, err
	}
	if rewards.ShareDwell, err = getEnvDuration("SHARE_DWELL", 60*time.Second); err != nil {
		return rewards, err
	}
	if rewards.TradeFee, err = getEnvDecimal("TRADE_FEE", decimal.RequireFromString("0.003")); err != nil {
		return rewards, err
	}
	if rewards.ProfitMin, err = getEnvDecimal("PROFIT_MIN", decimal.RequireFromString("0.00015")); err != nil {
		return rewards, err
	}
	if rewards.ProfitSpread, err = getEnvDecimal("PROFIT_SPREAD", decimal.RequireFromString("0.0003")); err != nil {
		return rewards, err
	}
	if rewards.RewardScale, err = getEnvDecimal("REWARD_SCALE", decimal.NewFromInt(1000)); err != nil {
		return rewards, err
	}
	rewards.MaxTradesPerUser = getEnvInt("MAX_TRADES_PER_USER", 2)
	rewards.RewardSymbol = getEnvString("REWARD_SYMBOL", "TIFFYAI")
	rewards.FeeSymbol = getEnvString("FEE_SYMBOL", "BNB")
	rewards.RewardsFile = getEnvString("REWARDS_FILE", "")

	if rewards.RewardsFile != "" {
		if rewards, err = ApplyRewardsFile(rewards.RewardsFile, rewards); err != nil {
			return rewards, err
		}
	}

	return rewards, validateRewards(rewards)
}

func validateRewards(r models.RewardsConfig) error {
	if r.ShareReward.IsNegative() {
		return fmt.Errorf("share reward cannot be negative, got %s", r.ShareReward)
	}
	if r.TradeFee.IsNegative() {
		return fmt.Errorf("trade fee cannot be negative, got %s", r.TradeFee)
	}
	if r.ProfitMin.IsNegative() || r.ProfitSpread.IsNegative() {
		return fmt.Errorf("profit range cannot be negative, got min=%s spread=%s", r.ProfitMin, r.ProfitSpread)
	}
	if r.MaxTradesPerUser < 0 {
		return fmt.Errorf("max trades per user cannot be negative, got %d", r.MaxTradesPerUser)
	}
	if r.RewardScale.IsNegative() {
		return fmt.Errorf("reward scale cannot be negative, got %s", r.RewardScale)
	}
	if r.ShareCooldown < 0 || r.ShareDwell < 0 {
		return fmt.Errorf("share cooldown and dwell cannot be negative")
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// lookupEnvString is getEnvString for keys where an explicit empty value
// means "off" rather than "use the default".
func lookupEnvString(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	if value := os.Getenv(key); value != "" {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid decimal for %s: %q (%w)", key, value, err)
		}
		return d, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
