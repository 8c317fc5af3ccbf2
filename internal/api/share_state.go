package api

import (
	"context"
	"errors"
	"fmt"

	"tiffy-rewards-go/internal/metrics"
	"tiffy-rewards-go/internal/models"
	"tiffy-rewards-go/internal/rewards"
	"tiffy-rewards-go/internal/store"

	"go.uber.org/zap"
)

// ReportShareState applies a client share status report.
func (s *RewardService) ReportShareState(ctx context.Context, req models.ShareStateRequest) (*models.ActionResult, error) {
	if req.UserId == "" || req.Status == "" {
		return nil, invalidRequest("Invalid request")
	}

	now := s.now()
	err := s.ledger.Update(ctx, func(tx *store.Tx) error {
		return s.shares.Report(tx, req.UserId, req.Status, now)
	})
	if errors.Is(err, rewards.ErrUnknownStatus) {
		return nil, invalidRequest("Unknown status")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to report share state: %w", err)
	}

	metrics.RecordShareReport(string(req.Status))
	zap.L().Debug("Share state reported",
		zap.String("user_id", req.UserId),
		zap.String("status", string(req.Status)))

	return &models.ActionResult{Success: true}, nil
}
