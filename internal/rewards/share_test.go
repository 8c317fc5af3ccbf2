package rewards

import (
	"context"
	"testing"
	"time"

	"tiffy-rewards-go/internal/models"
	"tiffy-rewards-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.UnixMilli(1_700_000_000_000)

func newShareMachine() *ShareMachine {
	return NewShareMachine(decimal.NewFromInt(500), 5*time.Minute, time.Minute)
}

func update(t *testing.T, ledger *store.Ledger, fn func(tx *store.Tx) error) error {
	t.Helper()
	return ledger.Update(context.Background(), fn)
}

func TestShareMachine_ClaimAfterDwell(t *testing.T) {
	m := newShareMachine()
	ledger := store.NewLedger(nil, "", "Honey")

	require.NoError(t, update(t, ledger, func(tx *store.Tx) error {
		return m.Report(tx, "u1", models.SharePending, epoch)
	}))

	var claim *ShareClaim
	err := update(t, ledger, func(tx *store.Tx) error {
		var err error
		claim, err = m.Claim(tx, "u1", "0xA", epoch.Add(61*time.Second))
		return err
	})
	require.NoError(t, err)
	assert.True(t, claim.Amount.Equal(decimal.NewFromInt(500)))

	snap := ledger.Snapshot()
	assert.True(t, snap.Users["u1"].Tiffy.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, epoch.Add(61*time.Second).UnixMilli(), snap.Users["u1"].LastShare)
	assert.True(t, snap.Wallets["0xA"].Tiffy.Equal(decimal.NewFromInt(500)))
	assert.Empty(t, snap.Shares, "session must be removed after a successful claim")
}

func TestShareMachine_ClaimWithoutWalletOnlyCreditsUser(t *testing.T) {
	m := newShareMachine()
	ledger := store.NewLedger(nil, "", "Honey")

	require.NoError(t, update(t, ledger, func(tx *store.Tx) error {
		if err := m.Report(tx, "u1", models.SharePending, epoch); err != nil {
			return err
		}
		_, err := m.Claim(tx, "u1", "", epoch.Add(time.Minute))
		return err
	}))

	snap := ledger.Snapshot()
	assert.True(t, snap.Users["u1"].Tiffy.Equal(decimal.NewFromInt(500)))
	assert.Empty(t, snap.Wallets)
}

func TestShareMachine_ClaimRejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(tx *store.Tx, m *ShareMachine)
		claimAt time.Time
		wantErr error
	}{
		{
			name:    "no session",
			setup:   func(tx *store.Tx, m *ShareMachine) {},
			claimAt: epoch.Add(time.Hour),
			wantErr: ErrShareInvalid,
		},
		{
			name: "dwell not met",
			setup: func(tx *store.Tx, m *ShareMachine) {
				_ = m.Report(tx, "u1", models.SharePending, epoch)
			},
			claimAt: epoch.Add(59 * time.Second),
			wantErr: ErrShareInvalid,
		},
		{
			name: "canceled then claimed",
			setup: func(tx *store.Tx, m *ShareMachine) {
				_ = m.Report(tx, "u1", models.SharePending, epoch)
				_ = m.Report(tx, "u1", models.ShareCanceled, epoch.Add(2*time.Minute))
			},
			claimAt: epoch.Add(2 * time.Minute),
			wantErr: ErrShareInvalid,
		},
		{
			name: "cleared",
			setup: func(tx *store.Tx, m *ShareMachine) {
				_ = m.Report(tx, "u1", models.SharePending, epoch)
				_ = m.Report(tx, "u1", models.ShareClear, epoch)
			},
			claimAt: epoch.Add(2 * time.Minute),
			wantErr: ErrShareInvalid,
		},
		{
			name: "cooldown",
			setup: func(tx *store.Tx, m *ShareMachine) {
				tx.User("u1").LastShare = epoch.UnixMilli()
				_ = m.Report(tx, "u1", models.SharePending, epoch)
			},
			claimAt: epoch.Add(4*time.Minute + 59*time.Second),
			wantErr: ErrCooldown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newShareMachine()
			ledger := store.NewLedger(nil, "", "Honey")
			require.NoError(t, update(t, ledger, func(tx *store.Tx) error {
				tt.setup(tx, m)
				return nil
			}))
			before := ledger.Snapshot()

			err := update(t, ledger, func(tx *store.Tx) error {
				_, err := m.Claim(tx, "u1", "0xA", tt.claimAt)
				return err
			})
			assert.ErrorIs(t, err, tt.wantErr)

			after := ledger.Snapshot()
			assert.True(t, after.Users["u1"].Tiffy.IsZero(), "balance must not change")
			var lastShare int64
			if u, ok := before.Users["u1"]; ok {
				lastShare = u.LastShare
			}
			assert.Equal(t, lastShare, after.Users["u1"].LastShare, "last share must not change")
			assert.Equal(t, len(before.Shares), len(after.Shares), "session must not change")
		})
	}
}

func TestShareMachine_CooldownBoundary(t *testing.T) {
	m := newShareMachine()
	ledger := store.NewLedger(nil, "", "Honey")
	first := epoch.Add(time.Minute)

	require.NoError(t, update(t, ledger, func(tx *store.Tx) error {
		_ = m.Report(tx, "u1", models.SharePending, epoch)
		_, err := m.Claim(tx, "u1", "", first)
		return err
	}))

	require.NoError(t, update(t, ledger, func(tx *store.Tx) error {
		_ = m.Report(tx, "u1", models.SharePending, first)
		_, err := m.Claim(tx, "u1", "", first.Add(5*time.Minute))
		return err
	}), "a claim exactly one cooldown later must succeed")

	assert.True(t, ledger.Snapshot().Users["u1"].Tiffy.Equal(decimal.NewFromInt(1000)))
}

func TestShareMachine_ReportTransitions(t *testing.T) {
	m := newShareMachine()
	ledger := store.NewLedger(nil, "", "Honey")

	require.NoError(t, update(t, ledger, func(tx *store.Tx) error {
		// canceled with no session is a no-op
		require.NoError(t, m.Report(tx, "u1", models.ShareCanceled, epoch))
		_, ok := tx.Share("u1")
		assert.False(t, ok)

		require.NoError(t, m.Report(tx, "u1", models.SharePending, epoch))
		require.NoError(t, m.Report(tx, "u1", models.ShareCanceled, epoch.Add(time.Second)))
		s, ok := tx.Share("u1")
		require.True(t, ok)
		assert.Equal(t, models.ShareCanceled, s.Status)
		assert.Equal(t, epoch.UnixMilli(), s.Start)

		// a new pending overwrites the canceled record
		require.NoError(t, m.Report(tx, "u1", models.SharePending, epoch.Add(2*time.Second)))
		s, _ = tx.Share("u1")
		assert.Equal(t, models.SharePending, s.Status)
		assert.Equal(t, epoch.Add(2*time.Second).UnixMilli(), s.Start)

		assert.ErrorIs(t, m.Report(tx, "u1", "shared", epoch), ErrUnknownStatus)
		return nil
	}))
}
