package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/infra/pgtestutil"
	"github.com/fastprodman/auctionhouse/internal/repos/accounts"
)

func TestAccounts_ReleaseHold_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		hold         string
		amount       string
		wantReleased string
		wantHold     string
	}{
		{name: "partial", hold: "50", amount: "20", wantReleased: "20", wantHold: "30"},
		{name: "exact", hold: "50", amount: "50", wantReleased: "50", wantHold: "0"},
		{name: "over_release_clamps", hold: "50", amount: "80", wantReleased: "50", wantHold: "0"},
		{name: "nothing_held", hold: "0", amount: "10", wantReleased: "0", wantHold: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			seedAccount(t, db, "p1", "100", tt.hold)
			repo := New(db)
			ctx := t.Context()

			var released decimal.Decimal
			err := inTx(t, db, func(tx *sql.Tx) error {
				var err error
				released, err = repo.ReleaseHold(ctx, tx, "p1", "RUB", dec(tt.amount))
				return err
			})
			if err != nil {
				t.Fatalf("release: %v", err)
			}

			if !released.Equal(dec(tt.wantReleased)) {
				t.Fatalf("released: want %s, got %s", tt.wantReleased, released)
			}

			acc, err := repo.Get(ctx, nil, "p1", "RUB")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !acc.Hold.Equal(dec(tt.wantHold)) {
				t.Fatalf("hold: want %s, got %s", tt.wantHold, acc.Hold)
			}
		})
	}
}

func TestAccounts_ReleaseHold_MissingAccount(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	err := inTx(t, db, func(tx *sql.Tx) error {
		_, err := repo.ReleaseHold(context.Background(), tx, "ghost", "RUB", dec("1"))
		return err
	})
	if !errors.Is(err, accounts.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}
