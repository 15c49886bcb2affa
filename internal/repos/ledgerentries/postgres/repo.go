package ledgerentries

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fastprodman/auctionhouse/internal/repos/ledgerentries"
)

var _ ledgerentries.Entries = (*entriesRepo)(nil)

type entriesRepo struct{ db *sql.DB }

func New(db *sql.DB) *entriesRepo {
	return &entriesRepo{db: db}
}

const entryColumns = `tx_id, kind, subject_id, currency, amount::text, applied::text,
	COALESCE(auction_id::text, ''), metadata::text, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (ledgerentries.Entry, error) {
	var (
		e    ledgerentries.Entry
		meta []byte
	)

	err := s.Scan(&e.TxID, &e.Kind, &e.SubjectID, &e.Currency, &e.Amount, &e.Applied, &e.AuctionID, &meta, &e.CreatedAt)
	if err != nil {
		return e, err
	}

	if len(meta) > 0 {
		err = json.Unmarshal(meta, &e.Metadata)
		if err != nil {
			return e, fmt.Errorf("decode metadata: %w", err)
		}
	}

	return e, nil
}
