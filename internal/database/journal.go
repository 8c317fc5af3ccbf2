package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tiffy-rewards-go/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordEntries appends entries atomically. Missing ids and timestamps are filled in.
func (s *Service) RecordEntries(ctx context.Context, entries []models.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := range entries {
		entry := &entries[i]
		if entry.Account == "" || entry.Asset == "" {
			return fmt.Errorf("%w: type=%s", ErrEmptyEntry, entry.EntryType)
		}
		if entry.Id == "" {
			entry.Id = uuid.New().String()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}

		_, err := tx.ExecContext(ctx, queryInsertEntry,
			entry.Id, entry.Account, entry.Asset, entry.EntryType,
			entry.Amount.String(), entry.BalanceAfter.String(),
			entry.UserId, entry.Reference, entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert journal entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Debug("Journal entries recorded", zap.Int("count", len(entries)))
	return nil
}

// GetEntries returns paginated journal history for an account, newest first
func (s *Service) GetEntries(ctx context.Context, account string, limit, offset int) ([]models.JournalEntry, error) {
	zap.L().Debug("Getting journal entries",
		zap.String("account", account),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	rows, err := s.db.QueryContext(ctx, queryGetEntries, account, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entries: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var entries []models.JournalEntry
	for rows.Next() {
		var entry models.JournalEntry
		var amountStr, balanceAfterStr string
		err := rows.Scan(&entry.Id, &entry.Account, &entry.Asset, &entry.EntryType,
			&amountStr, &balanceAfterStr, &entry.UserId, &entry.Reference, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}

		entry.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}

		entry.BalanceAfter, err = decimal.NewFromString(balanceAfterStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse balance after '%s': %w", balanceAfterStr, err)
		}

		entries = append(entries, entry)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during journal row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating journal rows: %w", err)
	}

	return entries, nil
}
