package store

import (
	"context"
	"fmt"
	"sync"

	"tiffy-rewards-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Compile-time check: *Ledger must satisfy LedgerStore.
var _ LedgerStore = (*Ledger)(nil)

// Ledger holds users, wallets and share sessions in memory and
// flushes them to a single snapshot file on demand.
type Ledger struct {
	mu          sync.Mutex
	snap        *models.Snapshot
	path        string
	defaultName string

	// serializes snapshot file writes without holding mu during I/O
	persistMu sync.Mutex
}

// NewLedger wraps an already-loaded snapshot. An empty path disables Persist.
func NewLedger(snap *models.Snapshot, path, defaultName string) *Ledger {
	if snap == nil {
		snap = models.NewSnapshot()
	}
	normalize(snap)
	return &Ledger{snap: snap, path: path, defaultName: defaultName}
}

// OpenLedger loads the snapshot at path. Read or parse failures are logged
// and the ledger starts empty.
func OpenLedger(path, defaultName string) *Ledger {
	snap, err := LoadSnapshot(path)
	if err != nil {
		zap.L().Error("Ledger snapshot load failed, starting with empty state",
			zap.String("path", path),
			zap.Error(err))
		snap = models.NewSnapshot()
	} else {
		zap.L().Info("Ledger snapshot loaded",
			zap.String("path", path),
			zap.Int("users", len(snap.Users)),
			zap.Int("wallets", len(snap.Wallets)),
			zap.Int("shares", len(snap.Shares)))
	}
	return NewLedger(snap, path, defaultName)
}

func (l *Ledger) Update(ctx context.Context, fn func(tx *Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return fn(&Tx{snap: l.snap, defaultName: l.defaultName})
}

func (l *Ledger) Snapshot() *models.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneSnapshot(l.snap)
}

func (l *Ledger) Size() (users, wallets, shares int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.snap.Users), len(l.snap.Wallets), len(l.snap.Shares)
}

// Persist copies the state under the lock and writes it outside of it, so
// request handling is only blocked for the duration of the copy.
func (l *Ledger) Persist(ctx context.Context) error {
	if l.path == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.persistMu.Lock()
	defer l.persistMu.Unlock()

	snap := l.Snapshot()
	if err := WriteSnapshot(l.path, snap); err != nil {
		return fmt.Errorf("failed to persist ledger: %w", err)
	}

	zap.L().Debug("Ledger persisted",
		zap.String("path", l.path),
		zap.Int("users", len(snap.Users)),
		zap.Int("wallets", len(snap.Wallets)))
	return nil
}

// Tx is the mutable view of the ledger handed to Update callbacks.
// It must not be retained after the callback returns.
type Tx struct {
	snap        *models.Snapshot
	defaultName string
}

// User returns the user record, creating it with zero defaults if absent.
func (tx *Tx) User(userId string) *models.User {
	u, ok := tx.snap.Users[userId]
	if !ok {
		u = &models.User{Tiffy: decimal.Zero, Name: tx.defaultName}
		tx.snap.Users[userId] = u
	}
	return u
}

// LookupUser returns the user record without creating it.
func (tx *Tx) LookupUser(userId string) (*models.User, bool) {
	u, ok := tx.snap.Users[userId]
	return u, ok
}

// DeleteUser removes a user record and returns it, if it existed.
func (tx *Tx) DeleteUser(userId string) (*models.User, bool) {
	u, ok := tx.snap.Users[userId]
	if !ok {
		return nil, false
	}
	delete(tx.snap.Users, userId)
	return u, true
}

// Wallet returns the wallet record, creating it with zero balances if absent.
func (tx *Tx) Wallet(address string) *models.Wallet {
	w, ok := tx.snap.Wallets[address]
	if !ok {
		w = &models.Wallet{Tiffy: decimal.Zero, Bnb: decimal.Zero}
		tx.snap.Wallets[address] = w
	}
	return w
}

// Share returns the user's share session, if any.
func (tx *Tx) Share(userId string) (*models.ShareSession, bool) {
	s, ok := tx.snap.Shares[models.ShareKey(userId)]
	return s, ok
}

// PutShare creates or overwrites the user's share session.
func (tx *Tx) PutShare(userId string, session models.ShareSession) {
	tx.snap.Shares[models.ShareKey(userId)] = &session
}

// DeleteShare removes the user's share session, if any.
func (tx *Tx) DeleteShare(userId string) {
	delete(tx.snap.Shares, models.ShareKey(userId))
}

func normalize(snap *models.Snapshot) {
	if snap.Users == nil {
		snap.Users = make(map[string]*models.User)
	}
	if snap.Wallets == nil {
		snap.Wallets = make(map[string]*models.Wallet)
	}
	if snap.Shares == nil {
		snap.Shares = make(map[string]*models.ShareSession)
	}
	if snap.Trades == nil {
		snap.Trades = make(map[string]any)
	}
	for id, u := range snap.Users {
		if u == nil {
			delete(snap.Users, id)
		}
	}
	for addr, w := range snap.Wallets {
		if w == nil {
			delete(snap.Wallets, addr)
		}
	}
	for key, s := range snap.Shares {
		if s == nil {
			delete(snap.Shares, key)
		}
	}
}

func cloneSnapshot(src *models.Snapshot) *models.Snapshot {
	dst := &models.Snapshot{
		Users:   make(map[string]*models.User, len(src.Users)),
		Wallets: make(map[string]*models.Wallet, len(src.Wallets)),
		Shares:  make(map[string]*models.ShareSession, len(src.Shares)),
		Trades:  make(map[string]any, len(src.Trades)),
	}
	for id, u := range src.Users {
		c := *u
		dst.Users[id] = &c
	}
	for addr, w := range src.Wallets {
		c := *w
		dst.Wallets[addr] = &c
	}
	for key, s := range src.Shares {
		c := *s
		dst.Shares[key] = &c
	}
	for key, v := range src.Trades {
		dst.Trades[key] = v
	}
	return dst
}
