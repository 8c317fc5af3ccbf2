package api

import (
	"context"
	"fmt"

	"tiffy-rewards-go/internal/models"
	"tiffy-rewards-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var errForbidden = &RequestError{Kind: ErrForbidden, Message: "Forbidden"}

// ResetUser deletes a user record and journals the cleared balance. Wallets
// and share sessions are untouched.
func (s *RewardService) ResetUser(ctx context.Context, req models.AdminResetRequest) (*models.ActionResult, error) {
	if !s.authorized(req.Key) {
		zap.L().Warn("Rejected admin reset", zap.String("user_id", req.UserId))
		return nil, errForbidden
	}
	if req.UserId == "" {
		return nil, invalidRequest("Invalid request")
	}

	now := s.now()
	var removed *models.User
	var existed bool
	err := s.ledger.Update(ctx, func(tx *store.Tx) error {
		removed, existed = tx.DeleteUser(req.UserId)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset user: %w", err)
	}

	if !existed {
		return rejected("User not found"), nil
	}

	// Net the journaled balance to zero so the id can be reused.
	if !removed.Tiffy.IsZero() {
		s.record(ctx, models.JournalEntry{
			Account:      models.UserAccount(req.UserId),
			Asset:        s.symbols.Reward,
			EntryType:    models.EntryUserReset,
			Amount:       removed.Tiffy.Neg(),
			BalanceAfter: decimal.Zero,
			UserId:       req.UserId,
			Reference:    "admin",
			CreatedAt:    now,
		})
	}

	zap.L().Info("User reset",
		zap.String("user_id", req.UserId),
		zap.String("cleared", removed.Tiffy.String()))
	return &models.ActionResult{Success: true, Message: "User reset"}, nil
}

// FundWallet credits fee currency to a wallet.
func (s *RewardService) FundWallet(ctx context.Context, req models.AdminFundRequest) (*models.ActionResult, error) {
	if !s.authorized(req.Key) {
		zap.L().Warn("Rejected admin fund", zap.String("wallet", req.Wallet))
		return nil, errForbidden
	}
	if req.Wallet == "" {
		return nil, invalidRequest("Wallet required")
	}
	if !req.Amount.IsPositive() {
		return nil, invalidRequest("Amount must be positive")
	}

	now := s.now()
	var w models.Wallet
	err := s.ledger.Update(ctx, func(tx *store.Tx) error {
		wallet := tx.Wallet(req.Wallet)
		wallet.Bnb = wallet.Bnb.Add(req.Amount)
		wallet.LastSync = now.UnixMilli()
		w = *wallet
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fund wallet: %w", err)
	}

	s.record(ctx, models.JournalEntry{
		Account:      models.WalletAccount(req.Wallet),
		Asset:        s.symbols.Fee,
		EntryType:    models.EntryAdminFund,
		Amount:       req.Amount,
		BalanceAfter: w.Bnb,
		Reference:    "admin",
		CreatedAt:    now,
	})

	zap.L().Info("Wallet funded",
		zap.String("wallet", req.Wallet),
		zap.String("amount", req.Amount.String()),
		zap.String("balance", w.Bnb.String()))

	amount := req.Amount
	return &models.ActionResult{
		Success: true,
		Message: fmt.Sprintf("Funded %s %s", amount.String(), s.symbols.Fee),
		Amount:  &amount,
	}, nil
}
