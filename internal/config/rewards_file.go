package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tiffy-rewards-go/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// RewardsFile is the optional YAML override for reward economics.
// Empty fields keep the value already loaded from the environment.
type RewardsFile struct {
	Share struct {
		Reward   string `yaml:"reward"`
		Cooldown string `yaml:"cooldown"`
		Dwell    string `yaml:"dwell"`
	} `yaml:"share"`
	Trade struct {
		Fee          string `yaml:"fee"`
		MaxPerUser   *int   `yaml:"max_per_user"`
		ProfitMin    string `yaml:"profit_min"`
		ProfitSpread string `yaml:"profit_spread"`
		Scale        string `yaml:"scale"`
	} `yaml:"trade"`
	Symbols struct {
		Reward string `yaml:"reward"`
		Fee    string `yaml:"fee"`
	} `yaml:"symbols"`
}

func ApplyRewardsFile(rewardsFile string, base models.RewardsConfig) (models.RewardsConfig, error) {
	var rewardsPath string
	if filepath.IsAbs(rewardsFile) {
		rewardsPath = rewardsFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return base, fmt.Errorf("failed to get working directory: %w", err)
		}
		rewardsPath = filepath.Join(wd, rewardsFile)
	}

	data, err := os.ReadFile(rewardsPath)
	if err != nil {
		return base, fmt.Errorf("unable to read %s: %w", rewardsFile, err)
	}

	var file RewardsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return base, fmt.Errorf("unable to parse %s: %w", rewardsFile, err)
	}

	out := base
	decimals := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"share.reward", file.Share.Reward, &out.ShareReward},
		{"trade.fee", file.Trade.Fee, &out.TradeFee},
		{"trade.profit_min", file.Trade.ProfitMin, &out.ProfitMin},
		{"trade.profit_spread", file.Trade.ProfitSpread, &out.ProfitSpread},
		{"trade.scale", file.Trade.Scale, &out.RewardScale},
	}
	for _, d := range decimals {
		if d.value == "" {
			continue
		}
		v, err := decimal.NewFromString(d.value)
		if err != nil {
			return base, fmt.Errorf("%s: invalid %s %q: %w", rewardsFile, d.name, d.value, err)
		}
		*d.dst = v
	}

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"share.cooldown", file.Share.Cooldown, &out.ShareCooldown},
		{"share.dwell", file.Share.Dwell, &out.ShareDwell},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return base, fmt.Errorf("%s: invalid %s %q: %w", rewardsFile, d.name, d.value, err)
		}
		*d.dst = v
	}

	if file.Trade.MaxPerUser != nil {
		out.MaxTradesPerUser = *file.Trade.MaxPerUser
	}
	if file.Symbols.Reward != "" {
		out.RewardSymbol = file.Symbols.Reward
	}
	if file.Symbols.Fee != "" {
		out.FeeSymbol = file.Symbols.Fee
	}

	if err := validateRewards(out); err != nil {
		return base, fmt.Errorf("%s: %w", rewardsFile, err)
	}
	return out, nil
}
