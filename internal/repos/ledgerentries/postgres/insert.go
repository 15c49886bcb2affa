package ledgerentries

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/ledgerentries"
)

func (r *entriesRepo) Insert(ctx context.Context, tx *sql.Tx, e ledgerentries.Entry) (bool, error) {
	meta := []byte("{}")
	if len(e.Metadata) > 0 {
		var err error

		meta, err = json.Marshal(e.Metadata)
		if err != nil {
			return false, fmt.Errorf("encode metadata: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (tx_id, kind, subject_id, currency, amount, applied, auction_id, metadata)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::uuid, $8::jsonb)
		ON CONFLICT (tx_id) DO NOTHING
	`, e.TxID, e.Kind, e.SubjectID, e.Currency, e.Amount, e.Applied, pgutils.NullIfEmpty(e.AuctionID), string(meta))
	if err != nil {
		return false, fmt.Errorf("insert ledger entry: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected == 1, nil
}
