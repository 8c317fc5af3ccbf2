package store

import (
	"context"

	"tiffy-rewards-go/internal/models"
)

// LedgerStore defines the contract of the authoritative reward ledger.
// Every read-modify-write runs inside Update, serialized with all others.
type LedgerStore interface {
	// Update runs fn under the single-writer lock. Mutations made through
	// tx are visible to the next Update as soon as fn returns.
	Update(ctx context.Context, fn func(tx *Tx) error) error

	// Snapshot returns a deep copy of the full ledger state.
	Snapshot() *models.Snapshot

	// Persist writes a point-in-time snapshot to durable storage.
	Persist(ctx context.Context) error

	// Size reports the number of users, wallets and share sessions held.
	Size() (users, wallets, shares int)
}
