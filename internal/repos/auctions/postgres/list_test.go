package auctions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/auctionhouse/internal/infra/pgtestutil"
	"github.com/fastprodman/auctionhouse/internal/repos/auctions"
)

func TestAuctions_ListByStatusPagesByID(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	ctx := context.Background()
	now := time.Now()

	want := map[uuid.UUID]bool{}
	for range 5 {
		a := activeAuction(now, time.Minute, 0, 3)
		if err := repo.Insert(ctx, a); err != nil {
			t.Fatalf("insert: %v", err)
		}
		want[a.ID] = true
	}

	seen := map[uuid.UUID]bool{}
	after := uuid.Nil
	pages := 0

	for {
		page, err := repo.ListByStatus(ctx, []auctions.Status{auctions.StatusActive}, after, 2)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		pages++

		for _, a := range page {
			if seen[a.ID] {
				t.Fatalf("auction %s listed twice", a.ID)
			}
			seen[a.ID] = true
		}

		if len(page) < 2 {
			break
		}
		after = page[len(page)-1].ID
	}

	if len(seen) != len(want) {
		t.Fatalf("listed %d auctions, want %d", len(seen), len(want))
	}
	if pages != 3 {
		t.Fatalf("pages = %d, want 3", pages)
	}

	none, err := repo.ListByStatus(ctx, []auctions.Status{auctions.StatusCancelled}, uuid.Nil, 10)
	if err != nil {
		t.Fatalf("list cancelled: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("cancelled = %d, want 0", len(none))
	}
}
