package auctions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/auctions"
)

func (r *auctionsRepo) Get(ctx context.Context, q pgutils.Querier, id uuid.UUID) (*auctions.Auction, error) {
	if q == nil {
		q = r.db
	}

	return getAuction(ctx, q, id, "")
}

func (r *auctionsRepo) GetForBid(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*auctions.Auction, error) {
	return getAuction(ctx, tx, id, "FOR KEY SHARE")
}

func (r *auctionsRepo) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*auctions.Auction, error) {
	return getAuction(ctx, tx, id, "FOR UPDATE")
}

func getAuction(ctx context.Context, q pgutils.Querier, id uuid.UUID, lock string) (*auctions.Auction, error) {
	a, err := scanAuction(q.QueryRowContext(ctx, `
		SELECT `+auctionColumns+`
		FROM auctions
		WHERE id = $1::uuid
		`+lock, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auctions.ErrNotFound
		}

		return nil, fmt.Errorf("get auction: %w", err)
	}

	return a, nil
}
