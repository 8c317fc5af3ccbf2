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

func init() {
	// Balances go over the wire and into the snapshot as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// ShareStatus is the client-reported state of an in-flight share action
type ShareStatus string

const (
	SharePending  ShareStatus = "pending"
	ShareCanceled ShareStatus = "canceled"
	ShareClear    ShareStatus = "clear"
)

// User represents a per-user reward account
type User struct {
	Tiffy     decimal.Decimal `json:"tiffy"`
	Trades    int             `json:"trades"`
	LastShare int64           `json:"lastShare"`
	Name      string          `json:"name"`
}

// Wallet represents a per-address balance pair
type Wallet struct {
	Tiffy    decimal.Decimal `json:"tiffy"`
	Bnb      decimal.Decimal `json:"bnb"`
	LastSync int64           `json:"lastSync"`
}

// ShareSession tracks one user's in-flight share-reward attempt
type ShareSession struct {
	Start  int64       `json:"start"`
	Status ShareStatus `json:"status"`
}

// Snapshot is the persisted layout of the whole ledger.
// Trades is reserved and never populated.
type Snapshot struct {
	Users   map[string]*User         `json:"users"`
	Wallets map[string]*Wallet       `json:"wallets"`
	Shares  map[string]*ShareSession `json:"shares"`
	Trades  map[string]any           `json:"trades"`
}

// NewSnapshot returns an empty snapshot with all maps allocated
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Users:   make(map[string]*User),
		Wallets: make(map[string]*Wallet),
		Shares:  make(map[string]*ShareSession),
		Trades:  make(map[string]any),
	}
}

// ShareKey derives the share session key for a user
func ShareKey(userId string) string {
	return "share_" + userId
}
