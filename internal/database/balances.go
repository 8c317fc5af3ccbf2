package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountSummary is one journal account with its activity
type AccountSummary struct {
	Account    string
	EntryCount int
	LastEntry  time.Time
}

// SumAccount adds up every journaled movement for an account and asset
func (s *Service) SumAccount(ctx context.Context, account, asset string) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, queryGetAccountAmounts, account, asset)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query account amounts: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	total := decimal.Zero
	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating amount rows: %w", err)
	}

	return total, nil
}

// ReconcileBalance verifies that a ledger balance matches the sum of its journal
func (s *Service) ReconcileBalance(ctx context.Context, account, asset string, current decimal.Decimal) error {
	zap.L().Info("Reconciling balance", zap.String("account", account), zap.String("asset", asset))

	calculated, err := s.SumAccount(ctx, account, asset)
	if err != nil {
		return fmt.Errorf("failed to calculate balance from journal: %w", err)
	}

	// Check if balances match (exact decimal comparison)
	if !current.Equal(calculated) {
		zap.L().Error("Balance reconciliation failed",
			zap.String("account", account),
			zap.String("asset", asset),
			zap.String("current_balance", current.String()),
			zap.String("calculated_balance", calculated.String()),
			zap.String("difference", current.Sub(calculated).String()))
		return fmt.Errorf("balance mismatch: current=%s, calculated=%s", current.String(), calculated.String())
	}

	zap.L().Info("Balance reconciliation successful",
		zap.String("account", account),
		zap.String("asset", asset),
		zap.String("balance", current.String()))
	return nil
}

// ListAccounts returns every account that has journal activity
func (s *Service) ListAccounts(ctx context.Context) ([]AccountSummary, error) {
	rows, err := s.db.QueryContext(ctx, queryListAccounts)
	if err != nil {
		return nil, fmt.Errorf("unable to query accounts: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var accounts []AccountSummary
	for rows.Next() {
		var summary AccountSummary
		var lastStr sql.NullString
		if err := rows.Scan(&summary.Account, &summary.EntryCount, &lastStr); err != nil {
			return nil, fmt.Errorf("unable to scan account row: %w", err)
		}
		if lastStr.Valid && lastStr.String != "" {
			summary.LastEntry, err = parseSQLiteTime(lastStr.String)
			if err != nil {
				return nil, err
			}
		}
		accounts = append(accounts, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// parseSQLiteTime handles the formats SQLite hands back for aggregated TIMESTAMP columns
func parseSQLiteTime(value string) (time.Time, error) {
	layouts := []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05-07:00",
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
		time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse timestamp %q", value)
}
