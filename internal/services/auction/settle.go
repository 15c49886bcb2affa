package auction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/auctions"
	"github.com/fastprodman/auctionhouse/internal/repos/bids"
	"github.com/fastprodman/auctionhouse/internal/repos/issues"
	"github.com/fastprodman/auctionhouse/internal/services/ledger"
)

// settlement moves money for one auction inside the caller's transaction.
// A capture or release that fails for a non-transient reason is recorded as
// a reconcile issue and the settlement carries on with the next participant.
type settlement struct {
	e     *Engine
	tx    *sql.Tx
	a     *auctions.Auction
	phase string

	charged  []Movement
	released []Movement
	issues   int
}

func (e *Engine) newSettlement(tx *sql.Tx, a *auctions.Auction, phase string) *settlement {
	return &settlement{
		e:        e,
		tx:       tx,
		a:        a,
		phase:    phase,
		charged:  []Movement{},
		released: []Movement{},
	}
}

func (s *settlement) capture(ctx context.Context, participantID string, amount decimal.Decimal, txID string) error {
	return s.apply(ctx, ledger.KindCapture, participantID, amount, txID)
}

func (s *settlement) release(ctx context.Context, participantID string, amount decimal.Decimal, txID string) error {
	return s.apply(ctx, ledger.KindRelease, participantID, amount, txID)
}

func (s *settlement) apply(ctx context.Context, kind ledger.Kind, participantID string, amount decimal.Decimal, txID string) error {
	if !amount.IsPositive() {
		return nil
	}

	res, err := s.e.ledger.ApplyTx(ctx, s.tx, kind, ledger.Op{
		SubjectID: participantID,
		Currency:  s.a.Currency,
		Amount:    amount,
		TxID:      txID,
		AuctionID: s.a.ID.String(),
		Metadata:  map[string]any{"phase": s.phase},
	})
	if err == nil {
		m := Movement{ParticipantID: participantID, Amount: res.Applied, Account: res.View}
		if kind == ledger.KindCapture {
			s.charged = append(s.charged, m)
		} else {
			s.released = append(s.released, m)
		}

		return nil
	}

	if pgutils.IsTransient(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	issueType := issues.TypeReleaseFailed
	if kind == ledger.KindCapture {
		issueType = issues.TypeCaptureFailed
	}

	s.e.logger.ErrorContext(ctx, "settlement step failed",
		slog.String("auction_id", s.a.ID.String()),
		slog.String("participant_id", participantID),
		slog.String("kind", string(kind)),
		slog.String("amount", amount.String()),
		slog.String("tx_id", txID),
		slog.String("phase", s.phase),
		slog.String("error", err.Error()),
	)

	_, ierr := s.e.issues.Create(ctx, s.tx, &issues.Issue{
		Type:          issueType,
		ParticipantID: participantID,
		Currency:      s.a.Currency,
		AuctionID:     s.a.ID.String(),
		Fingerprint:   string(issueType) + ":" + txID,
		Details: map[string]any{
			"amount": amount.String(),
			"txId":   txID,
			"phase":  s.phase,
			"error":  err.Error(),
		},
	})
	if ierr != nil {
		return fmt.Errorf("record %s issue: %w", issueType, ierr)
	}

	s.issues++

	return nil
}

// sortedByParticipant returns a copy ordered by participant id, the order in
// which accounts are touched during settlement.
func sortedByParticipant(in []bids.Standing) []bids.Standing {
	out := slices.Clone(in)
	slices.SortFunc(out, func(a, b bids.Standing) int {
		return strings.Compare(a.ParticipantID, b.ParticipantID)
	})

	return out
}

func participantIDs(in []bids.Standing) []string {
	ids := make([]string, 0, len(in))
	for _, s := range in {
		ids = append(ids, s.ParticipantID)
	}

	return ids
}
