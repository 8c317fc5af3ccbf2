package api

import (
	"context"
	"fmt"

	"tiffy-rewards-go/internal/models"
	"tiffy-rewards-go/internal/store"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// GetWallet returns the wallet's balances, creating the record on first query.
func (s *RewardService) GetWallet(ctx context.Context, address string) (*models.WalletBalance, error) {
	if address == "" {
		return nil, invalidRequest("Address required")
	}

	var balance models.WalletBalance
	err := s.ledger.Update(ctx, func(tx *store.Tx) error {
		w := tx.Wallet(address)
		balance = models.WalletBalance{Tiffy: w.Tiffy, Bnb: w.Bnb, LastSync: w.LastSync}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet: %w", err)
	}
	return &balance, nil
}

// GetWalletHistory pages through the journal rows recorded for a wallet,
// newest first.
func (s *RewardService) GetWalletHistory(ctx context.Context, address string, limit, offset int) ([]models.JournalEntry, error) {
	if address == "" {
		return nil, invalidRequest("Address required")
	}
	if s.journal == nil {
		return nil, &RequestError{Kind: ErrUnavailable, Message: "Journal disabled"}
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.journal.GetEntries(ctx, models.WalletAccount(address), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet history: %w", err)
	}
	return entries, nil
}
