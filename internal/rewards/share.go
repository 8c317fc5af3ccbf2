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

package rewards

import (
	"fmt"
	"time"

	"tiffy-rewards-go/internal/models"
	"tiffy-rewards-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ShareMachine enforces the share-claim protocol: the client reports that a
// share started, and the claim only pays out once the session has stayed
// pending for the dwell time and the user's cooldown has passed.
type ShareMachine struct {
	reward   decimal.Decimal
	cooldown time.Duration
	dwell    time.Duration
}

func NewShareMachine(reward decimal.Decimal, cooldown, dwell time.Duration) *ShareMachine {
	return &ShareMachine{reward: reward, cooldown: cooldown, dwell: dwell}
}

func (m *ShareMachine) Cooldown() time.Duration { return m.cooldown }

// ShareClaim is the outcome of a successful claim
type ShareClaim struct {
	Amount        decimal.Decimal
	UserBalance   decimal.Decimal
	WalletBalance decimal.Decimal
}

// Report applies a client status report to the user's share session.
func (m *ShareMachine) Report(tx *store.Tx, userId string, status models.ShareStatus, now time.Time) error {
	switch status {
	case models.SharePending:
		tx.PutShare(userId, models.ShareSession{Start: now.UnixMilli(), Status: models.SharePending})
	case models.ShareCanceled:
		if s, ok := tx.Share(userId); ok {
			s.Status = models.ShareCanceled
		}
	case models.ShareClear:
		tx.DeleteShare(userId)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	return nil
}

// Claim pays the share reward if the protocol is satisfied. Nothing is
// mutated on rejection. Every reason other than the cooldown collapses into
// ErrShareInvalid so callers cannot tell them apart.
func (m *ShareMachine) Claim(tx *store.Tx, userId, wallet string, now time.Time) (*ShareClaim, error) {
	user := tx.User(userId)
	nowMs := now.UnixMilli()

	if nowMs-user.LastShare < m.cooldown.Milliseconds() {
		return nil, ErrCooldown
	}

	session, ok := tx.Share(userId)
	if !ok {
		zap.L().Debug("Share claim rejected", zap.String("user_id", userId), zap.String("reason", "no session"))
		return nil, ErrShareInvalid
	}
	if session.Status != models.SharePending {
		zap.L().Debug("Share claim rejected", zap.String("user_id", userId), zap.String("reason", "session "+string(session.Status)))
		return nil, ErrShareInvalid
	}
	if nowMs-session.Start < m.dwell.Milliseconds() {
		zap.L().Debug("Share claim rejected",
			zap.String("user_id", userId),
			zap.String("reason", "dwell not met"),
			zap.Int64("elapsed_ms", nowMs-session.Start))
		return nil, ErrShareInvalid
	}

	user.Tiffy = user.Tiffy.Add(m.reward)
	user.LastShare = nowMs

	claim := &ShareClaim{Amount: m.reward, UserBalance: user.Tiffy}
	if wallet != "" {
		w := tx.Wallet(wallet)
		w.Tiffy = w.Tiffy.Add(m.reward)
		w.LastSync = nowMs
		claim.WalletBalance = w.Tiffy
	}

	tx.DeleteShare(userId)
	return claim, nil
}
