package issues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/issues"
)

func (r *issuesRepo) MarkAutoFixAttempt(ctx context.Context, tx *sql.Tx, id uuid.UUID) (int, error) {
	var attempts int

	err := tx.QueryRowContext(ctx, `
		UPDATE reconcile_issues
		SET auto_fix_attempts = auto_fix_attempts + 1, last_auto_fix_at = now(), updated_at = now()
		WHERE id = $1::uuid
		RETURNING auto_fix_attempts
	`, id.String()).Scan(&attempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, issues.ErrIssueNotFound
		}

		return 0, fmt.Errorf("mark auto fix attempt: %w", err)
	}

	return attempts, nil
}

func (r *issuesRepo) Resolve(ctx context.Context, q pgutils.Querier, id uuid.UUID, by, resolution string) error {
	if q == nil {
		q = r.db
	}

	res, err := q.ExecContext(ctx, `
		UPDATE reconcile_issues
		SET status = 'resolved', resolved_at = now(), resolved_by = $2, resolution = $3, updated_at = now()
		WHERE id = $1::uuid
	`, id.String(), by, resolution)
	if err != nil {
		return fmt.Errorf("resolve reconcile issue: %w", err)
	}

	return expectOne(res)
}

func (r *issuesRepo) SetStatus(ctx context.Context, q pgutils.Querier, id uuid.UUID, status issues.Status) error {
	if q == nil {
		q = r.db
	}

	res, err := q.ExecContext(ctx, `
		UPDATE reconcile_issues SET status = $2, updated_at = now()
		WHERE id = $1::uuid
	`, id.String(), status)
	if err != nil {
		return fmt.Errorf("set reconcile issue status: %w", err)
	}

	return expectOne(res)
}

func expectOne(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return issues.ErrIssueNotFound
	}

	return nil
}
