package auctions

import (
	"context"
	"fmt"

	"github.com/fastprodman/auctionhouse/internal/repos/auctions"
)

func (r *auctionsRepo) ListWins(ctx context.Context, participantID string) ([]auctions.Win, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id::text, a.code, a.title, a.currency,
		       (w ->> 'roundNo')::int, w ->> 'amount', (w ->> 'awardedAt')::timestamptz
		FROM auctions a
		CROSS JOIN LATERAL jsonb_array_elements(a.round_winners) AS w
		WHERE a.round_winners @> jsonb_build_array(jsonb_build_object('participantId', $1::text))
		  AND w ->> 'participantId' = $1::text
		ORDER BY (w ->> 'awardedAt')::timestamptz DESC
	`, participantID)
	if err != nil {
		return nil, fmt.Errorf("list wins: %w", err)
	}
	defer rows.Close()

	var out []auctions.Win
	for rows.Next() {
		var w auctions.Win

		err = rows.Scan(&w.AuctionID, &w.AuctionCode, &w.AuctionTitle, &w.Currency, &w.RoundNo, &w.Amount, &w.AwardedAt)
		if err != nil {
			return nil, fmt.Errorf("scan win: %w", err)
		}

		out = append(out, w)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate wins: %w", err)
	}

	return out, nil
}
