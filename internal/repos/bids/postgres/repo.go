package bids

import (
	"database/sql"

	"github.com/fastprodman/auctionhouse/internal/repos/bids"
)

var _ bids.Bids = (*bidsRepo)(nil)

type bidsRepo struct{ db *sql.DB }

func New(db *sql.DB) *bidsRepo {
	return &bidsRepo{db: db}
}

const bidColumns = `id, auction_id::text, round_no, participant_id, amount::text, status, idempotency_key, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBid(s scanner) (bids.Bid, error) {
	var b bids.Bid

	err := s.Scan(&b.ID, &b.AuctionID, &b.RoundNo, &b.ParticipantID, &b.Amount, &b.Status, &b.IdempotencyKey, &b.CreatedAt)

	return b, err
}
