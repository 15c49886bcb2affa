package issues

import (
	"context"
	"fmt"

	"github.com/fastprodman/auctionhouse/internal/repos/issues"
)

// ListByStatus returns the oldest issues first. Empty types matches every type.
func (r *issuesRepo) ListByStatus(ctx context.Context, status issues.Status, types []issues.Type, limit int) ([]issues.Issue, error) {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+issueColumns+`
		FROM reconcile_issues
		WHERE status = $1
		  AND (cardinality($2::text[]) = 0 OR type = ANY($2::text[]))
		ORDER BY created_at, id
		LIMIT $3
	`, status, names, limit)
	if err != nil {
		return nil, fmt.Errorf("list reconcile issues: %w", err)
	}
	defer rows.Close()

	var out []issues.Issue
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reconcile issue: %w", err)
		}

		out = append(out, i)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate reconcile issues: %w", err)
	}

	return out, nil
}
