package auctions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExtendRound is a single conditional UPDATE. SET expressions read the row
// being updated, so a caller that waited on a concurrent extension re-checks
// the conditions and computes the new end from the committed values.
func (r *auctionsRepo) ExtendRound(ctx context.Context, tx *sql.Tx, id uuid.UUID, roundNo int, now time.Time) (time.Time, bool, error) {
	var newEnd time.Time

	err := tx.QueryRowContext(ctx, `
		UPDATE auctions
		SET current_round_ends_at = current_round_ends_at + make_interval(secs => extend_by_sec),
		    rounds = jsonb_set(
		        jsonb_set(
		            rounds,
		            ARRAY[($2::int - 1)::text, 'endsAt'],
		            to_jsonb(current_round_ends_at + make_interval(secs => extend_by_sec))
		        ),
		        ARRAY[($2::int - 1)::text, 'extensionsCount'],
		        to_jsonb(COALESCE((rounds -> ($2::int - 1) ->> 'extensionsCount')::int, 0) + 1)
		    ),
		    updated_at = now()
		WHERE id = $1::uuid
		  AND status = 'active'
		  AND current_round_no = $2::int
		  AND rounds -> ($2::int - 1) ->> 'status' = 'active'
		  AND COALESCE((rounds -> ($2::int - 1) ->> 'extensionsCount')::int, 0) < max_extensions_per_round
		  AND current_round_ends_at > $3::timestamptz
		  AND current_round_ends_at - make_interval(secs => sniping_window_sec) <= $3::timestamptz
		RETURNING current_round_ends_at
	`, id.String(), roundNo, now).Scan(&newEnd)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}

		return time.Time{}, false, fmt.Errorf("extend round: %w", err)
	}

	return newEnd, true, nil
}
