package bids

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/infra/pgtestutil"
	"github.com/fastprodman/auctionhouse/internal/repos/bids"
)

func seedAuction(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()

	id := uuid.New()

	_, err := db.Exec(`
		INSERT INTO auctions (id, code, title, status, currency, min_increment,
			lots_count, total_lots, lots_per_round, max_rounds,
			round_duration_sec, sniping_window_sec, extend_by_sec, max_extensions_per_round)
		VALUES ($1::uuid, $2, 'seed', 'active', 'RUB', 1, 1, 3, 1, 3, 60, 10, 10, 5)
	`, id.String(), "seed-"+id.String())
	if err != nil {
		t.Fatalf("seed auction: %v", err)
	}

	return id
}

func placeBids(t *testing.T, db *sql.DB, repo *bidsRepo, in ...bids.Bid) []bids.Bid {
	t.Helper()

	ctx := context.Background()
	out := make([]bids.Bid, 0, len(in))

	for _, b := range in {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("begin: %v", err)
		}

		inserted, err := repo.Insert(ctx, tx, &b)
		if err != nil {
			_ = tx.Rollback()
			t.Fatalf("insert bid %s: %v", b.IdempotencyKey, err)
		}
		if !inserted {
			_ = tx.Rollback()
			t.Fatalf("insert bid %s: expected a new row", b.IdempotencyKey)
		}

		if err := tx.Commit(); err != nil {
			t.Fatalf("commit: %v", err)
		}

		out = append(out, b)
	}

	return out
}

func bid(auctionID uuid.UUID, participant, amount, key string) bids.Bid {
	return bids.Bid{
		AuctionID:      auctionID,
		RoundNo:        1,
		ParticipantID:  participant,
		Amount:         decimal.RequireFromString(amount),
		IdempotencyKey: key,
	}
}

func TestBids_StandingsRankingAndTieBreak(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := New(db)
	auctionID := seedAuction(t, db)

	// x bids 50 before y bids 50; z raises twice; w is excluded later
	placeBids(t, db, repo,
		bid(auctionID, "x", "50", "k1"),
		bid(auctionID, "y", "50", "k1"),
		bid(auctionID, "z", "30", "k1"),
		bid(auctionID, "z", "45", "k2"),
		bid(auctionID, "w", "99", "k1"),
	)

	got, err := repo.Standings(ctx, nil, auctionID, []string{"w"}, 0)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}

	want := []struct {
		participant string
		amount      string
	}{
		{"x", "50"},
		{"y", "50"},
		{"z", "45"},
	}

	if len(got) != len(want) {
		t.Fatalf("want %d standings, got %d: %+v", len(want), len(got), got)
	}

	for i, w := range want {
		if got[i].ParticipantID != w.participant || !got[i].Amount.Equal(decimal.RequireFromString(w.amount)) {
			t.Fatalf("rank %d: want %s(%s), got %s(%s)", i, w.participant, w.amount, got[i].ParticipantID, got[i].Amount)
		}
	}

	top, err := repo.Standings(ctx, nil, auctionID, nil, 1)
	if err != nil {
		t.Fatalf("top standing: %v", err)
	}
	if len(top) != 1 || top[0].ParticipantID != "w" {
		t.Fatalf("unexpected leader: %+v", top)
	}

	s, ok, err := repo.StandingFor(ctx, nil, auctionID, "z")
	if err != nil || !ok {
		t.Fatalf("standing for z: ok=%v err=%v", ok, err)
	}
	if !s.Amount.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("z standing: want 45, got %s", s.Amount)
	}

	_, ok, err = repo.StandingFor(ctx, nil, auctionID, "nobody")
	if err != nil || ok {
		t.Fatalf("standing for unknown participant: ok=%v err=%v", ok, err)
	}
}

func TestBids_InsertIsIdempotentByKey(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := New(db)
	auctionID := seedAuction(t, db)

	first := placeBids(t, db, repo, bid(auctionID, "p", "10", "same"))[0]

	dup := bid(auctionID, "p", "10", "same")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted, err := repo.Insert(ctx, tx, &dup)
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if inserted || dup.ID != 0 {
		t.Fatalf("duplicate key must not insert: inserted=%v id=%d", inserted, dup.ID)
	}

	got, err := repo.GetByKey(ctx, tx, auctionID, 1, "p", "same")
	if err != nil {
		t.Fatalf("get by key: %v", err)
	}
	if got.ID != first.ID || got.Status != bids.StatusPlaced {
		t.Fatalf("unexpected bid: %+v", got)
	}
}

func TestBids_CancelPlacedDropsStanding(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := New(db)
	auctionID := seedAuction(t, db)

	placeBids(t, db, repo,
		bid(auctionID, "a", "10", "k1"),
		bid(auctionID, "a", "20", "k2"),
		bid(auctionID, "b", "15", "k1"),
	)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	n, err := repo.CancelPlaced(ctx, tx, auctionID, []string{"a"})
	if err != nil {
		_ = tx.Rollback()
		t.Fatalf("cancel: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if n != 2 {
		t.Fatalf("want 2 cancelled bids, got %d", n)
	}

	standings, err := repo.Standings(ctx, nil, auctionID, nil, 0)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if len(standings) != 1 || standings[0].ParticipantID != "b" {
		t.Fatalf("only b should stand: %+v", standings)
	}

	history, err := repo.ListByParticipant(ctx, auctionID, "a", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("bids must never be deleted, got %d", len(history))
	}
	for _, b := range history {
		if b.Status != bids.StatusCancelled {
			t.Fatalf("want cancelled, got %s", b.Status)
		}
	}
}
