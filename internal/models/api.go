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

package models

import "github.com/shopspring/decimal"

// Action names accepted by the dispatcher
const (
	ActionClaimShareReward = "claim_share_reward"
	ActionStartTrades      = "start_trades"
	ActionClaimAll         = "claim_all"
)

// ActionRequest is a client-submitted user action
type ActionRequest struct {
	Action    string `json:"action"`
	UserId    string `json:"userId"`
	Wallet    string `json:"wallet,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Count     int    `json:"count,omitempty"`
}

// ActionResult is the uniform outcome of every dispatched action
type ActionResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Error   string           `json:"error,omitempty"`
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	Profit  *decimal.Decimal `json:"profit,omitempty"`
	Trades  int              `json:"trades,omitempty"`
}

// WalletBalance represents a wallet balance query response
type WalletBalance struct {
	Tiffy    decimal.Decimal `json:"tiffy"`
	Bnb      decimal.Decimal `json:"bnb"`
	LastSync int64           `json:"lastSync"`
}

// ShareStateRequest is a client share-state report
type ShareStateRequest struct {
	UserId string      `json:"userId"`
	Status ShareStatus `json:"status"`
}

// AdminResetRequest deletes a user record
type AdminResetRequest struct {
	Key    string `json:"key"`
	UserId string `json:"userId"`
}

// AdminFundRequest credits fee currency to a wallet
type AdminFundRequest struct {
	Key    string          `json:"key"`
	Wallet string          `json:"wallet"`
	Amount decimal.Decimal `json:"amount"`
}
