package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tiffy-rewards-go/internal/metrics"
	"tiffy-rewards-go/internal/models"
	"tiffy-rewards-go/internal/rewards"
	"tiffy-rewards-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SubmitAction validates and routes a client action. Request-level problems
// come back as a *RequestError; business rejections as Success=false.
func (s *RewardService) SubmitAction(ctx context.Context, req models.ActionRequest) (*models.ActionResult, error) {
	if req.UserId == "" || req.Action == "" {
		return nil, invalidRequest("Invalid request")
	}

	zap.L().Info("Processing action",
		zap.String("action", req.Action),
		zap.String("user_id", req.UserId),
		zap.String("wallet", req.Wallet),
		zap.Int("count", req.Count),
		zap.Int64("client_timestamp", req.Timestamp))

	var result *models.ActionResult
	var err error
	switch req.Action {
	case models.ActionClaimShareReward:
		result, err = s.claimShareReward(ctx, req)
	case models.ActionStartTrades:
		result, err = s.startTrades(ctx, req)
	case models.ActionClaimAll:
		result, err = s.claimAll(ctx, req)
	default:
		metrics.RecordAction("unknown", metrics.OutcomeInvalid)
		return nil, &RequestError{Kind: ErrUnknownAction, Message: "Unknown action"}
	}

	switch {
	case errors.Is(err, ErrInvalidRequest):
		metrics.RecordAction(req.Action, metrics.OutcomeInvalid)
		return nil, err
	case err != nil:
		metrics.RecordAction(req.Action, metrics.OutcomeError)
		zap.L().Error("Action failed",
			zap.String("action", req.Action),
			zap.String("user_id", req.UserId),
			zap.Error(err))
		return nil, err
	case result.Success:
		metrics.RecordAction(req.Action, metrics.OutcomeSuccess)
	default:
		metrics.RecordAction(req.Action, metrics.OutcomeRejected)
	}
	return result, nil
}

func (s *RewardService) claimShareReward(ctx context.Context, req models.ActionRequest) (*models.ActionResult, error) {
	now := s.now()

	var claim *rewards.ShareClaim
	err := s.ledger.Update(ctx, func(tx *store.Tx) error {
		var err error
		claim, err = s.shares.Claim(tx, req.UserId, req.Wallet, now)
		return err
	})
	switch {
	case errors.Is(err, rewards.ErrCooldown):
		return rejected(fmt.Sprintf("Wait %s between shares", formatWait(s.shares.Cooldown()))), nil
	case errors.Is(err, rewards.ErrShareInvalid):
		return rejected("Share canceled or invalid"), nil
	case err != nil:
		return nil, fmt.Errorf("failed to claim share reward: %w", err)
	}

	entries := []models.JournalEntry{{
		Account:      models.UserAccount(req.UserId),
		Asset:        s.symbols.Reward,
		EntryType:    models.EntryShareReward,
		Amount:       claim.Amount,
		BalanceAfter: claim.UserBalance,
		UserId:       req.UserId,
		CreatedAt:    now,
	}}
	if req.Wallet != "" {
		entries = append(entries, models.JournalEntry{
			Account:      models.WalletAccount(req.Wallet),
			Asset:        s.symbols.Reward,
			EntryType:    models.EntryShareReward,
			Amount:       claim.Amount,
			BalanceAfter: claim.WalletBalance,
			UserId:       req.UserId,
			CreatedAt:    now,
		})
	}
	s.record(ctx, entries...)

	zap.L().Info("Share reward claimed",
		zap.String("user_id", req.UserId),
		zap.String("wallet", req.Wallet),
		zap.String("amount", claim.Amount.String()),
		zap.String("user_balance", claim.UserBalance.String()))

	amount := claim.Amount
	return &models.ActionResult{
		Success: true,
		Amount:  &amount,
		Message: "Share reward claimed!",
	}, nil
}

func (s *RewardService) startTrades(ctx context.Context, req models.ActionRequest) (*models.ActionResult, error) {
	if req.Wallet == "" {
		return nil, invalidRequest("Wallet required")
	}
	now := s.now()

	var trade *rewards.TradeResult
	err := s.ledger.Update(ctx, func(tx *store.Tx) error {
		var err error
		trade, err = s.trades.Run(tx, req.UserId, req.Wallet, req.Count, now)
		return err
	})

	var fundsErr *rewards.InsufficientFundsError
	switch {
	case errors.Is(err, rewards.ErrSessionLimit):
		return rejected(fmt.Sprintf("Max %d trades per session", s.trades.MaxTrades())), nil
	case errors.As(err, &fundsErr):
		return rejected(fmt.Sprintf("Need %s %s", fundsErr.Required.String(), s.symbols.Fee)), nil
	case err != nil:
		return nil, fmt.Errorf("failed to run trades: %w", err)
	}

	s.record(ctx,
		models.JournalEntry{
			Account:      models.WalletAccount(req.Wallet),
			Asset:        s.symbols.Fee,
			EntryType:    models.EntryTradeFee,
			Amount:       trade.Fee.Neg(),
			BalanceAfter: trade.FeeBalance,
			UserId:       req.UserId,
			Reference:    fmt.Sprintf("%d trade(s)", trade.Trades),
			CreatedAt:    now,
		},
		models.JournalEntry{
			Account:      models.WalletAccount(req.Wallet),
			Asset:        s.symbols.Reward,
			EntryType:    models.EntryTradeProfit,
			Amount:       trade.Credited,
			BalanceAfter: trade.RewardBalance,
			UserId:       req.UserId,
			Reference:    fmt.Sprintf("profit %s %s", trade.Profit.String(), s.symbols.Fee),
			CreatedAt:    now,
		})

	zap.L().Info("Trades completed",
		zap.String("user_id", req.UserId),
		zap.String("wallet", req.Wallet),
		zap.Int("trades", trade.Trades),
		zap.String("fee", trade.Fee.String()),
		zap.String("credited", trade.Credited.String()))

	profit, credited := trade.Profit, trade.Credited
	return &models.ActionResult{
		Success: true,
		Message: fmt.Sprintf("%d trade(s) completed! +%s %s", trade.Trades, credited.StringFixed(2), s.symbols.Reward),
		Amount:  &credited,
		Profit:  &profit,
		Trades:  trade.Trades,
	}, nil
}

func (s *RewardService) claimAll(ctx context.Context, req models.ActionRequest) (*models.ActionResult, error) {
	if req.Wallet == "" {
		return nil, invalidRequest("Connect wallet")
	}
	now := s.now()

	var pending decimal.Decimal
	err := s.ledger.Update(ctx, func(tx *store.Tx) error {
		var err error
		pending, err = rewards.ClaimAll(tx, req.Wallet, now)
		return err
	})
	switch {
	case errors.Is(err, rewards.ErrNothingToClaim):
		return rejected("Nothing to claim"), nil
	case err != nil:
		return nil, fmt.Errorf("failed to claim rewards: %w", err)
	}

	s.record(ctx, models.JournalEntry{
		Account:      models.WalletAccount(req.Wallet),
		Asset:        s.symbols.Reward,
		EntryType:    models.EntryClaimAll,
		Amount:       pending.Neg(),
		BalanceAfter: decimal.Zero,
		UserId:       req.UserId,
		CreatedAt:    now,
	})

	zap.L().Info("Wallet rewards claimed",
		zap.String("user_id", req.UserId),
		zap.String("wallet", req.Wallet),
		zap.String("amount", pending.String()))

	return &models.ActionResult{
		Success: true,
		Message: fmt.Sprintf("Claimed %s %s!", pending.StringFixed(2), s.symbols.Reward),
		Amount:  &pending,
	}, nil
}

func rejected(message string) *models.ActionResult {
	return &models.ActionResult{Success: false, Error: message}
}

func formatWait(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%d mins", int(d/time.Minute))
	}
	return d.String()
}
