package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/auctionhouse/internal/infra/pgtestutil"
	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()

	db, cleanup := pgtestutil.NewTestDB(t)
	t.Cleanup(cleanup)

	return New(db, pgutils.DefaultRetryPolicy(), nil)
}

func op(subject, amount, txID string) Op {
	return Op{SubjectID: subject, Currency: "RUB", Amount: decimal.RequireFromString(amount), TxID: txID}
}

func requireView(t *testing.T, v View, balance, hold string) {
	t.Helper()

	assert.True(t, v.Balance.Equal(decimal.RequireFromString(balance)), "balance: want %s, got %s", balance, v.Balance)
	assert.True(t, v.Hold.Equal(decimal.RequireFromString(hold)), "hold: want %s, got %s", hold, v.Hold)
	assert.True(t, v.Available.Equal(v.Balance.Sub(v.Hold)), "available must be balance-hold")
}

func TestLedger_Idempotency(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	ctx := context.Background()

	ops := []struct {
		name string
		call func(context.Context, Op) (Result, error)
		op   Op
	}{
		{name: "deposit", call: l.Deposit, op: op("p1", "100", "dep-1")},
		{name: "hold", call: l.PlaceHold, op: op("p1", "60", "hold-1")},
		{name: "release", call: l.ReleaseHold, op: op("p1", "10", "rel-1")},
		{name: "capture", call: l.CaptureHold, op: op("p1", "30", "cap-1")},
	}

	for _, o := range ops {
		first, err := o.call(ctx, o.op)
		require.NoError(t, err, o.name)
		assert.False(t, first.Replayed, o.name)

		for range 3 {
			again, err := o.call(ctx, o.op)
			require.NoError(t, err, o.name)
			assert.True(t, again.Replayed, o.name)
			assert.True(t, again.Applied.Equal(first.Applied), o.name)
		}
	}

	v, err := l.GetAccount(ctx, "p1", "RUB")
	require.NoError(t, err)
	requireView(t, v, "70", "20")
}

func TestLedger_PlaceHold_InsufficientFunds(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Deposit(ctx, op("p1", "50", "dep"))
	require.NoError(t, err)

	_, err = l.PlaceHold(ctx, op("p1", "50.01", "hold-too-much"))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// the rejected txId was not consumed
	res, err := l.PlaceHold(ctx, Op{SubjectID: "p1", Currency: "RUB", Amount: decimal.RequireFromString("50"), TxID: "hold-too-much"})
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	requireView(t, res.View, "50", "50")
}

func TestLedger_ReleaseIsTolerant(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Deposit(ctx, op("p1", "100", "dep"))
	require.NoError(t, err)
	_, err = l.PlaceHold(ctx, op("p1", "30", "hold"))
	require.NoError(t, err)

	res, err := l.ReleaseHold(ctx, op("p1", "80", "rel-over"))
	require.NoError(t, err)
	assert.True(t, res.Applied.Equal(decimal.NewFromInt(30)))
	requireView(t, res.View, "100", "0")

	res, err = l.ReleaseHold(ctx, op("p1", "5", "rel-empty"))
	require.NoError(t, err)
	assert.True(t, res.Applied.IsZero())
	requireView(t, res.View, "100", "0")

	// release on an account that never existed creates it at zero
	res, err = l.ReleaseHold(ctx, op("ghost", "5", "rel-ghost"))
	require.NoError(t, err)
	requireView(t, res.View, "0", "0")
}

func TestLedger_CaptureFailsLoudly(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Deposit(ctx, op("p1", "100", "dep"))
	require.NoError(t, err)
	_, err = l.PlaceHold(ctx, op("p1", "20", "hold"))
	require.NoError(t, err)

	_, err = l.CaptureHold(ctx, op("p1", "21", "cap"))
	require.ErrorIs(t, err, ErrCaptureFailed)

	v, err := l.GetAccount(ctx, "p1", "RUB")
	require.NoError(t, err)
	requireView(t, v, "100", "20")
}

func TestLedger_TxIDReusedForOtherOperation(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Deposit(ctx, op("p1", "100", "shared"))
	require.NoError(t, err)

	_, err = l.PlaceHold(ctx, op("p1", "10", "shared"))
	require.ErrorIs(t, err, ErrTxIDConflict)
}

func TestLedger_TxIDReusedWithOtherAmount(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Deposit(ctx, op("p1", "100", "dep-1"))
	require.NoError(t, err)

	_, err = l.Deposit(ctx, op("p1", "150", "dep-1"))
	require.ErrorIs(t, err, ErrTxIDConflict)

	// same amount written with another scale is still a replay
	res, err := l.Deposit(ctx, op("p1", "100.00", "dep-1"))
	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.True(t, res.Balance.Equal(decimal.NewFromInt(100)))
}

func TestLedger_InvalidOps(t *testing.T) {
	t.Parallel()

	l := New(nil, pgutils.DefaultRetryPolicy(), nil)

	bad := []Op{
		{Currency: "RUB", Amount: decimal.NewFromInt(1), TxID: "x"},
		{SubjectID: "p", Amount: decimal.NewFromInt(1), TxID: "x"},
		{SubjectID: "p", Currency: "RUB", Amount: decimal.NewFromInt(1)},
		{SubjectID: "p", Currency: "RUB", Amount: decimal.Zero, TxID: "x"},
		{SubjectID: "p", Currency: "RUB", Amount: decimal.NewFromInt(-5), TxID: "x"},
	}

	for i, o := range bad {
		_, err := l.ApplyTx(context.Background(), nil, KindDeposit, o)
		require.ErrorIs(t, err, ErrInvalidOp, "case %d", i)
	}
}

func TestLedger_ConcurrentHoldsNeverOverdraw(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Deposit(ctx, op("p1", "100", "dep"))
	require.NoError(t, err)

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)

	for i := range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := l.PlaceHold(ctx, op("p1", "7", fmt.Sprintf("hold-%d", i)))

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, ErrInsufficientFunds):
				rejected++
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 14, ok)
	assert.Equal(t, 6, rejected)

	v, err := l.GetAccount(ctx, "p1", "RUB")
	require.NoError(t, err)
	requireView(t, v, "100", "98")
}

func TestLedger_ConcurrentReplaysApplyOnce(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := l.Deposit(ctx, op("p1", "25", "same-deposit"))
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	v, err := l.GetAccount(ctx, "p1", "RUB")
	require.NoError(t, err)
	requireView(t, v, "25", "0")

	entries, err := l.ListEntries(ctx, "p1", "RUB", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLedger_AuditAccount(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Deposit(ctx, op("p1", "100", "dep-1"))
	require.NoError(t, err)
	_, err = l.PlaceHold(ctx, op("p1", "40", "hold-1"))
	require.NoError(t, err)
	_, err = l.CaptureHold(ctx, op("p1", "15", "cap-1"))
	require.NoError(t, err)
	_, err = l.ReleaseHold(ctx, op("p1", "100", "rel-1"))
	require.NoError(t, err)

	audit, err := l.AuditAccount(ctx, nil, "p1", "RUB")
	require.NoError(t, err)
	assert.True(t, audit.Consistent(), "%+v", audit)
	requireView(t, audit.Account, "85", "0")

	_, err = l.db.Exec(`UPDATE accounts SET balance = balance + 1 WHERE subject_id = 'p1'`)
	require.NoError(t, err)

	audit, err = l.AuditAccount(ctx, nil, "p1", "RUB")
	require.NoError(t, err)
	assert.False(t, audit.Consistent())
	assert.True(t, audit.LedgerBalance.Equal(decimal.NewFromInt(85)))

	views, err := l.ListAccounts(ctx, "", "", 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "p1", views[0].SubjectID)
}
