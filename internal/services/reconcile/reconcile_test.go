package reconcile

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/auctionhouse/internal/infra/pgtestutil"
	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/issues"
	"github.com/fastprodman/auctionhouse/internal/services/auction"
	"github.com/fastprodman/auctionhouse/internal/services/ledger"
)

type fixture struct {
	db     *sql.DB
	ledger *ledger.Ledger
	engine *auction.Engine
	svc    *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, cleanup := pgtestutil.NewTestDB(t)
	t.Cleanup(cleanup)

	policy := pgutils.DefaultRetryPolicy()
	led := ledger.New(db, policy, nil)

	return &fixture{
		db:     db,
		ledger: led,
		engine: auction.New(db, led, policy, nil),
		svc:    New(db, led, policy, Config{}, nil),
	}
}

func (f *fixture) op(participant, amount, txID, auctionID string) ledger.Op {
	return ledger.Op{
		SubjectID: participant,
		Currency:  "RUB",
		Amount:    decimal.RequireFromString(amount),
		TxID:      txID,
		AuctionID: auctionID,
	}
}

func (f *fixture) auctionWithBids(t *testing.T, code string, bids map[string]string) string {
	t.Helper()

	ctx := context.Background()

	created, err := f.engine.CreateAuction(ctx, auction.CreateInput{Code: code, Title: code, LotsCount: 1})
	require.NoError(t, err)

	_, err = f.engine.StartAuction(ctx, created.ID)
	require.NoError(t, err)

	for p, amount := range bids {
		_, err = f.ledger.Deposit(ctx, f.op(p, "1000", "seed:"+code+":"+p, ""))
		require.NoError(t, err)

		_, err = f.engine.PlaceBid(ctx, created.ID, auction.BidInput{ParticipantID: p, Amount: amount})
		require.NoError(t, err)
	}

	return created.ID
}

func (f *fixture) hold(t *testing.T, participant string) decimal.Decimal {
	t.Helper()

	v, err := f.ledger.GetAccount(context.Background(), participant, "RUB")
	require.NoError(t, err)

	return v.Hold
}

func (f *fixture) issuesIn(t *testing.T, status string) []IssueView {
	t.Helper()

	list, err := f.svc.ListIssues(context.Background(), status, 0)
	require.NoError(t, err)

	return list
}

func TestReconcile_CleanLedgerHasNoIssues(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	id := f.auctionWithBids(t, "clean", map[string]string{"a": "100", "b": "90"})
	f.auctionWithBids(t, "running", map[string]string{"c": "10"})

	_, err := f.engine.FinalizeAuction(ctx, id)
	require.NoError(t, err)

	res, err := f.svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.BalanceMismatches)
	assert.Zero(t, res.OrphanedHolds)
	assert.Zero(t, res.UnderHolds)
	assert.Zero(t, res.AutoFixed)
	assert.Empty(t, f.issuesIn(t, "detected"))
}

func TestReconcile_OrphanedHoldIsReleased(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	id := f.auctionWithBids(t, "orphan", map[string]string{"a": "100", "b": "90"})

	_, err := f.engine.CancelAuction(ctx, id)
	require.NoError(t, err)

	// a hold tagged with the auction that nothing will ever release
	_, err = f.ledger.PlaceHold(ctx, f.op("b", "25", "stray-hold", id))
	require.NoError(t, err)
	require.True(t, f.hold(t, "b").Equal(decimal.NewFromInt(25)))

	res, err := f.svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.OrphanedHolds)
	assert.Equal(t, 1, res.AutoFixed)
	assert.Zero(t, res.BalanceMismatches)

	assert.True(t, f.hold(t, "b").IsZero(), "orphaned hold released")

	resolved := f.issuesIn(t, "resolved")
	require.Len(t, resolved, 1)
	assert.Equal(t, issues.TypeOrphanedHold, resolved[0].Type)
	assert.Equal(t, "b", resolved[0].ParticipantID)
	assert.Equal(t, "reconcile:orphaned:"+resolved[0].ID+":1", resolved[0].ResolvedBy)
	assert.Equal(t, 1, resolved[0].AutoFixAttempts)

	again, err := f.svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.OrphanedHolds)
	assert.Zero(t, again.AutoFixed)
}

func TestReconcile_OtherIssuesGoToManualReview(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	id := f.auctionWithBids(t, "live", map[string]string{"a": "100", "b": "90"})

	// ledger-consistent release that leaves a's standing bid uncovered
	_, err := f.ledger.ReleaseHold(ctx, f.op("a", "60", "stray-release", id))
	require.NoError(t, err)

	// b's account no longer matches its entries
	_, err = f.db.Exec(`UPDATE accounts SET balance = balance + 5 WHERE subject_id = 'b'`)
	require.NoError(t, err)

	res, err := f.svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.BalanceMismatches)
	assert.Equal(t, 1, res.UnderHolds)
	assert.Equal(t, 2, res.ManualReview)
	assert.Zero(t, res.AutoFixed)

	manual := f.issuesIn(t, "manual_review")
	require.Len(t, manual, 2)

	byReason := map[any]IssueView{}
	for _, i := range manual {
		assert.Equal(t, issues.TypeBalanceMismatch, i.Type)
		byReason[i.Details["reason"]] = i
	}
	assert.Equal(t, "b", byReason["ledger_mismatch"].ParticipantID)
	assert.Equal(t, "a", byReason["insufficient_hold"].ParticipantID)
	assert.Equal(t, "100", byReason["insufficient_hold"].Details["expectedHold"])

	again, err := f.svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.BalanceMismatches, "open issues are not duplicated")
	assert.Zero(t, again.UnderHolds)
}

func TestReconcile_ResolveIssue(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Deposit(ctx, f.op("a", "10", "dep", ""))
	require.NoError(t, err)
	_, err = f.db.Exec(`UPDATE accounts SET balance = 11 WHERE subject_id = 'a'`)
	require.NoError(t, err)

	_, err = f.svc.RunOnce(ctx)
	require.NoError(t, err)

	manual := f.issuesIn(t, "manual_review")
	require.Len(t, manual, 1)

	view, err := f.svc.ResolveIssue(ctx, manual[0].ID, "ops", "balance corrected by hand")
	require.NoError(t, err)
	assert.Equal(t, issues.StatusResolved, view.Status)
	assert.Equal(t, "ops", view.ResolvedBy)

	_, err = f.svc.ResolveIssue(ctx, manual[0].ID, "ops", "twice")
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	_, err = f.svc.ResolveIssue(ctx, "not-a-uuid", "ops", "x")
	assert.ErrorIs(t, err, ErrIssueNotFound)

	_, err = f.svc.ResolveIssue(ctx, manual[0].ID, "", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.svc.ListIssues(ctx, "bogus", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// the mismatch is still there, so the next pass opens a fresh issue
	res, err := f.svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.BalanceMismatches)
}

func TestReconcile_ScansEveryAuctionPage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.svc = New(f.db, f.ledger, pgutils.DefaultRetryPolicy(), Config{AuctionPageSize: 1}, nil)

	const n = 3

	for i := range n {
		code := fmt.Sprintf("paged-%d", i)
		loser := fmt.Sprintf("l%d", i)

		id := f.auctionWithBids(t, code, map[string]string{"w" + code: "100", loser: "90"})

		_, err := f.engine.CancelAuction(ctx, id)
		require.NoError(t, err)

		_, err = f.ledger.PlaceHold(ctx, f.op(loser, "5", "stray:"+code, id))
		require.NoError(t, err)
	}

	res, err := f.svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, res.OrphanedHolds, "every auction past the first page is inspected")
	assert.Equal(t, n, res.AutoFixed)

	for i := range n {
		assert.True(t, f.hold(t, fmt.Sprintf("l%d", i)).IsZero())
	}
}

func TestReconcile_FailingReleaseStopsAtAttemptLimit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	id := f.auctionWithBids(t, "stuck", map[string]string{"a": "100", "b": "90"})

	_, err := f.engine.CancelAuction(ctx, id)
	require.NoError(t, err)

	_, err = f.ledger.PlaceHold(ctx, f.op("b", "25", "stray-hold", id))
	require.NoError(t, err)

	_, err = f.db.Exec(`
		CREATE FUNCTION block_reconcile_release() RETURNS trigger AS $$
		BEGIN
			RAISE EXCEPTION 'release blocked';
		END
		$$ LANGUAGE plpgsql`)
	require.NoError(t, err)
	_, err = f.db.Exec(`
		CREATE TRIGGER block_reconcile_release
			BEFORE INSERT ON ledger_entries
			FOR EACH ROW WHEN (NEW.tx_id LIKE 'reconcile:%')
			EXECUTE FUNCTION block_reconcile_release();`)
	require.NoError(t, err)

	for run := 1; run < MaxAutoFixAttempts; run++ {
		res, err := f.svc.RunOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, res.AutoFixed, "run %d", run)
		assert.Zero(t, res.ManualReview, "run %d", run)

		detected := f.issuesIn(t, "detected")
		require.Len(t, detected, 1, "run %d", run)
		assert.Equal(t, run, detected[0].AutoFixAttempts)
	}

	res, err := f.svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ManualReview, "last allowed attempt gives up")

	manual := f.issuesIn(t, "manual_review")
	require.Len(t, manual, 1)
	assert.Equal(t, MaxAutoFixAttempts, manual[0].AutoFixAttempts)

	res, err = f.svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.OrphanedHolds, "issue in manual review is still open")
	assert.Zero(t, res.ManualReview)
	assert.Empty(t, f.issuesIn(t, "detected"))

	// an issue pushed back past the limit goes to review without a release
	_, err = f.db.Exec(`DROP TRIGGER block_reconcile_release ON ledger_entries`)
	require.NoError(t, err)
	_, err = f.db.Exec(`UPDATE reconcile_issues SET status = 'detected' WHERE id = $1`, manual[0].ID)
	require.NoError(t, err)

	res, err = f.svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ManualReview)
	assert.Zero(t, res.AutoFixed)

	manual = f.issuesIn(t, "manual_review")
	require.Len(t, manual, 1)
	assert.Equal(t, MaxAutoFixAttempts+1, manual[0].AutoFixAttempts)
	assert.True(t, f.hold(t, "b").Equal(decimal.NewFromInt(25)), "hold is left for manual review")
}
