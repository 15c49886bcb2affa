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

func (r *issuesRepo) Get(ctx context.Context, id uuid.UUID) (issues.Issue, error) {
	return getIssue(ctx, r.db, id, "")
}

func (r *issuesRepo) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (issues.Issue, error) {
	return getIssue(ctx, tx, id, "FOR UPDATE")
}

func getIssue(ctx context.Context, q pgutils.Querier, id uuid.UUID, lock string) (issues.Issue, error) {
	i, err := scanIssue(q.QueryRowContext(ctx, `
		SELECT `+issueColumns+`
		FROM reconcile_issues
		WHERE id = $1::uuid
		`+lock, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return issues.Issue{}, issues.ErrIssueNotFound
		}

		return issues.Issue{}, fmt.Errorf("get reconcile issue: %w", err)
	}

	return i, nil
}
