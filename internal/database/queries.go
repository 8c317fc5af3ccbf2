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

package database

const (
	schemaJournal = `
	-- Journal Entries Table (Audit Trail - Cold Data)
	CREATE TABLE IF NOT EXISTS journal_entries (
		id TEXT PRIMARY KEY,
		account TEXT NOT NULL,
		asset TEXT NOT NULL,
		entry_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		balance_after TEXT NOT NULL,
		user_id TEXT,
		reference TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_journal_account_asset ON journal_entries(account, asset);
	CREATE INDEX IF NOT EXISTS idx_journal_created_at ON journal_entries(created_at);
	CREATE INDEX IF NOT EXISTS idx_journal_user_id ON journal_entries(user_id);
	CREATE INDEX IF NOT EXISTS idx_journal_entry_type ON journal_entries(entry_type);
	`

	queryInsertEntry = `
		INSERT INTO journal_entries (
			id, account, asset, entry_type, amount, balance_after, user_id, reference, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetEntries = `
		SELECT id, account, asset, entry_type, amount, balance_after,
		       COALESCE(user_id, ''), COALESCE(reference, ''), created_at
		FROM journal_entries
		WHERE account = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`

	queryGetAccountAmounts = `
		SELECT amount
		FROM journal_entries
		WHERE account = ? AND asset = ?`

	queryListAccounts = `
		SELECT account, COUNT(*), MAX(created_at)
		FROM journal_entries
		GROUP BY account
		ORDER BY account`
)
