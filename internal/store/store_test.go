package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"tiffy-rewards-go/internal/models"

	"github.com/shopspring/decimal"
)

func TestLedger_UserCreatedWithDefaults(t *testing.T) {
	ledger := NewLedger(nil, "", "Honey")
	ctx := context.Background()

	err := ledger.Update(ctx, func(tx *Tx) error {
		if _, ok := tx.LookupUser("u1"); ok {
			t.Errorf("Expected u1 to be absent before first reference")
		}
		u := tx.User("u1")
		if !u.Tiffy.IsZero() || u.Trades != 0 || u.LastShare != 0 {
			t.Errorf("Expected zero defaults, got %+v", u)
		}
		if u.Name != "Honey" {
			t.Errorf("Expected default name Honey, got %s", u.Name)
		}
		u.Trades = 1
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	err = ledger.Update(ctx, func(tx *Tx) error {
		if got := tx.User("u1").Trades; got != 1 {
			t.Errorf("Expected existing record to be returned, trades=%d", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
}

func TestLedger_ShareSessionLifecycle(t *testing.T) {
	ledger := NewLedger(nil, "", "Honey")

	_ = ledger.Update(context.Background(), func(tx *Tx) error {
		tx.PutShare("u1", models.ShareSession{Start: 1, Status: models.SharePending})
		tx.PutShare("u1", models.ShareSession{Start: 2, Status: models.SharePending})
		s, ok := tx.Share("u1")
		if !ok || s.Start != 2 {
			t.Errorf("Expected overwritten session with start 2, got %+v", s)
		}
		tx.DeleteShare("u1")
		if _, ok := tx.Share("u1"); ok {
			t.Errorf("Expected session to be deleted")
		}
		return nil
	})

	snap := ledger.Snapshot()
	if len(snap.Shares) != 0 {
		t.Errorf("Expected no shares, got %d", len(snap.Shares))
	}
}

func TestLedger_SnapshotIsDeepCopy(t *testing.T) {
	ledger := NewLedger(nil, "", "Honey")
	ctx := context.Background()

	_ = ledger.Update(ctx, func(tx *Tx) error {
		tx.Wallet("0xA").Bnb = decimal.NewFromInt(1)
		return nil
	})

	snap := ledger.Snapshot()
	snap.Wallets["0xA"].Bnb = decimal.NewFromInt(99)

	_ = ledger.Update(ctx, func(tx *Tx) error {
		if got := tx.Wallet("0xA").Bnb; !got.Equal(decimal.NewFromInt(1)) {
			t.Errorf("Snapshot mutation leaked into ledger: bnb=%s", got)
		}
		return nil
	})
}

func TestLedger_UpdatesAreSerialized(t *testing.T) {
	ledger := NewLedger(nil, "", "Honey")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ledger.Update(ctx, func(tx *Tx) error {
				u := tx.User("u1")
				u.Tiffy = u.Tiffy.Add(decimal.NewFromInt(1))
				return nil
			})
		}()
	}
	wg.Wait()

	if got := ledger.Snapshot().Users["u1"].Tiffy; !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected 100 after concurrent increments, got %s", got)
	}
}

func TestLedger_UpdateCanceledContext(t *testing.T) {
	ledger := NewLedger(nil, "", "Honey")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := ledger.Update(ctx, func(tx *Tx) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Errorf("Expected canceled context to skip the update, err=%v called=%v", err, called)
	}
}

func TestLedger_PersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	ledger := OpenLedger(path, "Honey")
	ctx := context.Background()

	_ = ledger.Update(ctx, func(tx *Tx) error {
		u := tx.User("u1")
		u.Tiffy = decimal.NewFromInt(500)
		u.LastShare = 1700000000000
		w := tx.Wallet("0xA")
		w.Bnb = decimal.RequireFromString("0.004")
		tx.PutShare("u2", models.ShareSession{Start: 42, Status: models.ShareCanceled})
		return nil
	})

	if err := ledger.Persist(ctx); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read snapshot: %v", err)
	}
	for _, key := range []string{`"users"`, `"wallets"`, `"shares"`, `"trades"`, `"share_u2"`} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("Expected snapshot to contain %s", key)
		}
	}

	reloaded := OpenLedger(path, "Honey")
	snap := reloaded.Snapshot()
	if !snap.Users["u1"].Tiffy.Equal(decimal.NewFromInt(500)) || snap.Users["u1"].LastShare != 1700000000000 {
		t.Errorf("Unexpected reloaded user: %+v", snap.Users["u1"])
	}
	if !snap.Wallets["0xA"].Bnb.Equal(decimal.RequireFromString("0.004")) {
		t.Errorf("Unexpected reloaded wallet: %+v", snap.Wallets["0xA"])
	}
	if s := snap.Shares["share_u2"]; s == nil || s.Status != models.ShareCanceled || s.Start != 42 {
		t.Errorf("Unexpected reloaded share: %+v", s)
	}
}

func TestOpenLedger_CorruptSnapshotStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("Failed to write corrupt snapshot: %v", err)
	}

	ledger := OpenLedger(path, "Honey")
	snap := ledger.Snapshot()
	if len(snap.Users) != 0 || len(snap.Wallets) != 0 || len(snap.Shares) != 0 {
		t.Errorf("Expected empty ledger, got %+v", snap)
	}
}

func TestLoadSnapshot_NumericBalances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	content := `{"users":{"u1":{"tiffy":1000,"trades":2,"lastShare":5,"name":"Honey"}},"wallets":{"0xA":{"tiffy":0.3,"bnb":0.01,"lastSync":0}}}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write snapshot: %v", err)
	}

	snap, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if snap.Shares == nil || snap.Trades == nil {
		t.Errorf("Expected missing maps to be allocated")
	}
	if !snap.Wallets["0xA"].Bnb.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("Expected bnb 0.01, got %s", snap.Wallets["0xA"].Bnb)
	}
	if snap.Users["u1"].Trades != 2 {
		t.Errorf("Expected trades 2, got %d", snap.Users["u1"].Trades)
	}
}

func TestLedger_Size(t *testing.T) {
	ledger := NewLedger(nil, "", "Honey")
	_ = ledger.Update(context.Background(), func(tx *Tx) error {
		tx.User("u1")
		tx.User("u2")
		tx.Wallet("0xA")
		tx.PutShare("u1", models.ShareSession{Start: 1, Status: models.SharePending})
		return nil
	})

	users, wallets, shares := ledger.Size()
	if users != 2 || wallets != 1 || shares != 1 {
		t.Errorf("Expected 2/1/1, got %d/%d/%d", users, wallets, shares)
	}
}
