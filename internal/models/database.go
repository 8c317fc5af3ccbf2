package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Journal entry types
const (
	EntryShareReward = "share_reward"
	EntryTradeFee    = "trade_fee"
	EntryTradeProfit = "trade_profit"
	EntryClaimAll    = "claim_all"
	EntryAdminFund   = "admin_fund"
	EntryUserReset   = "user_reset"
)

// JournalEntry is an immutable record of a single balance movement (cold data)
type JournalEntry struct {
	Id           string          `db:"id" json:"id"`
	Account      string          `db:"account" json:"account"`
	Asset        string          `db:"asset" json:"asset"`
	EntryType    string          `db:"entry_type" json:"type"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	BalanceAfter decimal.Decimal `db:"balance_after" json:"balanceAfter"`
	UserId       string          `db:"user_id" json:"userId,omitempty"`
	Reference    string          `db:"reference" json:"reference,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}

// WalletAccount and UserAccount build the journal account names
func WalletAccount(address string) string {
	return "wallet:" + address
}

func UserAccount(userId string) string {
	return "user:" + userId
}
