package accounts

import (
	"context"
	"database/sql"
	"fmt"
)

func (r *accountsRepo) Ensure(ctx context.Context, tx *sql.Tx, subjectID, currency string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (subject_id, currency)
		VALUES ($1, $2)
		ON CONFLICT (subject_id, currency) DO NOTHING
	`, subjectID, currency)
	if err != nil {
		return fmt.Errorf("ensure account: %w", err)
	}

	return nil
}
