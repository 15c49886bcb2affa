package accounts

import (
	"database/sql"

	"github.com/fastprodman/auctionhouse/internal/repos/accounts"
)

var _ accounts.Accounts = (*accountsRepo)(nil)

type accountsRepo struct{ db *sql.DB }

func New(db *sql.DB) *accountsRepo {
	return &accountsRepo{db: db}
}

const accountColumns = `subject_id, currency, balance::text, hold::text, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (accounts.Account, error) {
	var a accounts.Account

	err := s.Scan(&a.SubjectID, &a.Currency, &a.Balance, &a.Hold, &a.Status, &a.CreatedAt, &a.UpdatedAt)

	return a, err
}
