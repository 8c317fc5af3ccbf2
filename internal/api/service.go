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

package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"tiffy-rewards-go/internal/models"
	"tiffy-rewards-go/internal/rewards"
	"tiffy-rewards-go/internal/store"

	"go.uber.org/zap"
)

// Request-level failures. Business-rule rejections are not errors; they
// come back as an ActionResult with Success=false.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnknownAction  = errors.New("unknown action")
	ErrForbidden      = errors.New("forbidden")
	ErrUnavailable    = errors.New("unavailable")
)

// RequestError carries the message shown to the client alongside its kind
type RequestError struct {
	Kind    error
	Message string
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Unwrap() error { return e.Kind }

func invalidRequest(format string, args ...any) error {
	return &RequestError{Kind: ErrInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// Journal is the audit trail the service appends balance movements to
type Journal interface {
	RecordEntries(ctx context.Context, entries []models.JournalEntry) error
	GetEntries(ctx context.Context, account string, limit, offset int) ([]models.JournalEntry, error)
	Ping(ctx context.Context) error
}

// RewardServiceConfig contains configuration for RewardService
type RewardServiceConfig struct {
	Ledger   store.LedgerStore
	Journal  Journal // optional
	Shares   *rewards.ShareMachine
	Trades   *rewards.TradeEngine
	AdminKey string
	Symbols  Symbols
	Now      func() time.Time
}

// Symbols names the two currencies in messages and journal rows
type Symbols struct {
	Reward string
	Fee    string
}

// RewardService is the single entry point for client actions
type RewardService struct {
	ledger   store.LedgerStore
	journal  Journal
	shares   *rewards.ShareMachine
	trades   *rewards.TradeEngine
	adminKey string
	symbols  Symbols
	now      func() time.Time
}

func NewRewardService(cfg RewardServiceConfig) *RewardService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &RewardService{
		ledger:   cfg.Ledger,
		journal:  cfg.Journal,
		shares:   cfg.Shares,
		trades:   cfg.Trades,
		adminKey: cfg.AdminKey,
		symbols:  cfg.Symbols,
		now:      now,
	}
}

func (s *RewardService) HealthCheck(ctx context.Context) error {
	if err := s.ledger.Update(ctx, func(tx *store.Tx) error { return nil }); err != nil {
		return fmt.Errorf("ledger health check failed: %w", err)
	}
	if s.journal != nil {
		if err := s.journal.Ping(ctx); err != nil {
			return fmt.Errorf("journal health check failed: %w", err)
		}
	}
	return nil
}

// authorized compares the admin key in constant time. An unset key locks
// the admin surface entirely.
func (s *RewardService) authorized(key string) bool {
	if s.adminKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.adminKey)) == 1
}

// record appends journal rows outside the ledger lock. Failures are logged
// only; the ledger stays the source of truth.
func (s *RewardService) record(ctx context.Context, entries ...models.JournalEntry) {
	if s.journal == nil || len(entries) == 0 {
		return
	}
	if err := s.journal.RecordEntries(ctx, entries); err != nil {
		zap.L().Error("Failed to record journal entries",
			zap.Int("count", len(entries)),
			zap.String("type", entries[0].EntryType),
			zap.Error(err))
	}
}
