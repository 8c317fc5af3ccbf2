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

package main

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"tiffy-rewards-go/internal/common"
	"tiffy-rewards-go/internal/config"
	"tiffy-rewards-go/internal/database"
	"tiffy-rewards-go/internal/models"
	"tiffy-rewards-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type reportStats struct {
	users      int
	wallets    int
	shares     int
	mismatches int
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func printUsers(snap *models.Snapshot, symbol string) {
	ids := sortedKeys(snap.Users)
	fmt.Printf("\n┌─ Users: %d\n", len(ids))
	common.PrintBoxSeparator(78)
	for i, id := range ids {
		u := snap.Users[id]
		isLast := i == len(ids)-1
		fmt.Printf("%s %-20s: %s (trades: %d, name: %s, last share: %s)\n",
			common.BoxPrefix(isLast), id, common.FormatAmount(u.Tiffy, symbol),
			u.Trades, u.Name, common.FormatMillis(u.LastShare))
	}
}

func printWallets(snap *models.Snapshot, rewardSymbol, feeSymbol string) {
	addrs := sortedKeys(snap.Wallets)
	fmt.Printf("\n┌─ Wallets: %d\n", len(addrs))
	common.PrintBoxSeparator(78)
	for i, addr := range addrs {
		w := snap.Wallets[addr]
		isLast := i == len(addrs)-1
		fmt.Printf("%s %s\n", common.BoxPrefix(isLast), addr)
		fmt.Printf("%s   %s | %s | synced: %s\n",
			common.BoxDetailPrefix(isLast),
			common.FormatAmount(w.Tiffy, rewardSymbol),
			common.FormatAmount(w.Bnb, feeSymbol),
			common.FormatMillis(w.LastSync))
	}
}

func printShares(snap *models.Snapshot) {
	if len(snap.Shares) == 0 {
		return
	}
	keys := sortedKeys(snap.Shares)
	fmt.Printf("\n┌─ Share sessions: %d\n", len(keys))
	common.PrintBoxSeparator(78)
	for i, key := range keys {
		s := snap.Shares[key]
		fmt.Printf("%s %-20s: %-8s started %s\n",
			common.BoxPrefix(i == len(keys)-1), key, s.Status, common.FormatMillis(s.Start))
	}
}

// reconcile checks every ledger balance against the sum of its journal rows
func reconcile(ctx context.Context, snap *models.Snapshot, dbService *database.Service, rc models.RewardsConfig) int {
	mismatches := 0
	check := func(account, asset string, current decimal.Decimal, err error) {
		if err != nil {
			mismatches++
			fmt.Printf("   ✗ %-30s %-8s %s\n", account, asset, err)
			return
		}
		fmt.Printf("   ✓ %-30s %-8s %s\n", account, asset, current.String())
	}

	common.PrintHeader("JOURNAL RECONCILIATION", common.DefaultWidth)
	for _, id := range sortedKeys(snap.Users) {
		u := snap.Users[id]
		account := models.UserAccount(id)
		check(account, rc.RewardSymbol, u.Tiffy, dbService.ReconcileBalance(ctx, account, rc.RewardSymbol, u.Tiffy))
	}
	for _, addr := range sortedKeys(snap.Wallets) {
		w := snap.Wallets[addr]
		account := models.WalletAccount(addr)
		check(account, rc.RewardSymbol, w.Tiffy, dbService.ReconcileBalance(ctx, account, rc.RewardSymbol, w.Tiffy))
		check(account, rc.FeeSymbol, w.Bnb, dbService.ReconcileBalance(ctx, account, rc.FeeSymbol, w.Bnb))
	}
	return mismatches
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse command line flags
	fileFlag := flag.String("file", "", "Snapshot file to read (defaults to DATA_FILE)")
	reconcileFlag := flag.Bool("reconcile", false, "Compare balances against the journal (requires JOURNAL_PATH)")
	flag.Parse()

	logger.Info("Starting balance report")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	path := cfg.Ledger.DataFile
	if *fileFlag != "" {
		path = *fileFlag
	}

	snap, err := store.LoadSnapshot(path)
	if err != nil {
		logger.Fatal("Failed to read snapshot", zap.String("path", path), zap.Error(err))
	}

	common.PrintHeader(fmt.Sprintf("LEDGER SNAPSHOT REPORT (%s)", path), common.DefaultWidth)
	printUsers(snap, cfg.Rewards.RewardSymbol)
	printWallets(snap, cfg.Rewards.RewardSymbol, cfg.Rewards.FeeSymbol)
	printShares(snap)

	stats := reportStats{users: len(snap.Users), wallets: len(snap.Wallets), shares: len(snap.Shares)}

	if *reconcileFlag {
		logger.Info("Connecting to journal", zap.String("path", cfg.Database.Path))
		dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to initialize journal", zap.Error(err))
		}
		defer dbService.Close()

		stats.mismatches = reconcile(ctx, snap, dbService, cfg.Rewards)
	}

	summary := fmt.Sprintf("SUMMARY: %d users, %d wallets, %d open share sessions", stats.users, stats.wallets, stats.shares)
	if *reconcileFlag {
		summary += fmt.Sprintf(", %d reconciliation mismatches", stats.mismatches)
	}
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Balance report completed",
		zap.Int("users", stats.users),
		zap.Int("wallets", stats.wallets),
		zap.Int("shares", stats.shares),
		zap.Int("mismatches", stats.mismatches))
}
