package reconcile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/auctions"
	"github.com/fastprodman/auctionhouse/internal/repos/issues"
	"github.com/fastprodman/auctionhouse/internal/services/ledger"
)

const resolvedByAuto = "auto"

type fixOutcome int

const (
	fixSkipped fixOutcome = iota
	fixResolved
	fixRetryLater
	fixManual
)

// autoFix releases orphaned holds and sends every other detected issue to
// manual review.
func (s *Service) autoFix(ctx context.Context) (fixed, manual int, err error) {
	detected, err := s.issues.ListByStatus(ctx, issues.StatusDetected, nil, s.cfg.AutoFixLimit)
	if err != nil {
		return 0, 0, fmt.Errorf("auto fix: %w", err)
	}

	for _, i := range detected {
		outcome, err := s.fixOne(ctx, i)
		if err != nil {
			if ctx.Err() != nil {
				return fixed, manual, ctx.Err()
			}

			s.logger.ErrorContext(ctx, "auto fix failed", "issue_id", i.ID.String(), "error", err)
			continue
		}

		switch outcome {
		case fixResolved:
			fixed++
		case fixManual:
			manual++
		}
	}

	return fixed, manual, nil
}

func (s *Service) fixOne(ctx context.Context, i issues.Issue) (fixOutcome, error) {
	var outcome fixOutcome

	err := pgutils.RunInTx(ctx, s.db, s.policy, func(tx *sql.Tx) error {
		cur, err := s.issues.GetForUpdate(ctx, tx, i.ID)
		if err != nil {
			return err
		}

		if cur.Status != issues.StatusDetected {
			outcome = fixSkipped
			return nil
		}

		if cur.Type != issues.TypeOrphanedHold || cur.AuctionID == "" {
			outcome = fixManual
			return s.issues.SetStatus(ctx, tx, cur.ID, issues.StatusManualReview)
		}

		outcome, err = s.releaseOrphan(ctx, tx, cur)

		return err
	})
	if err != nil {
		return fixSkipped, err
	}

	return outcome, nil
}

// releaseOrphan re-measures the orphaned hold and releases it. A release that
// keeps failing sends the issue to manual review after MaxAutoFixAttempts.
func (s *Service) releaseOrphan(ctx context.Context, tx *sql.Tx, i issues.Issue) (fixOutcome, error) {
	attempt, err := s.issues.MarkAutoFixAttempt(ctx, tx, i.ID)
	if err != nil {
		return fixSkipped, err
	}

	if attempt > MaxAutoFixAttempts {
		return fixManual, s.issues.SetStatus(ctx, tx, i.ID, issues.StatusManualReview)
	}

	a, err := s.auctionOf(ctx, tx, i.AuctionID)
	if err != nil {
		return fixSkipped, err
	}

	orphans, err := s.orphanedHold(ctx, tx, a)
	if err != nil {
		return fixSkipped, err
	}

	amount, ok := orphans[i.ParticipantID]
	if !ok {
		return fixResolved, s.issues.Resolve(ctx, tx, i.ID, resolvedByAuto, "no_hold_to_release")
	}

	txID := fmt.Sprintf("reconcile:orphaned:%s:%d", i.ID, attempt)

	_, err = s.ledger.ApplyTx(ctx, tx, ledger.KindRelease, ledger.Op{
		SubjectID: i.ParticipantID,
		Currency:  i.Currency,
		Amount:    amount,
		TxID:      txID,
		AuctionID: i.AuctionID,
		Metadata:  map[string]any{"issueId": i.ID.String(), "attempt": attempt},
	})
	if err != nil {
		if pgutils.IsTransient(err) {
			return fixSkipped, err
		}

		s.logger.WarnContext(ctx, "orphaned hold release failed",
			"issue_id", i.ID.String(), "attempt", attempt, "error", err)

		if attempt >= MaxAutoFixAttempts {
			return fixManual, s.issues.SetStatus(ctx, tx, i.ID, issues.StatusManualReview)
		}

		return fixRetryLater, nil
	}

	s.logger.InfoContext(ctx, "orphaned hold released",
		"issue_id", i.ID.String(), "participant_id", i.ParticipantID,
		"auction_id", i.AuctionID, "amount", amount.String())

	return fixResolved, s.issues.Resolve(ctx, tx, i.ID, txID, "auto_released_orphaned_hold")
}

func (s *Service) auctionOf(ctx context.Context, q pgutils.Querier, id string) (*auctions.Auction, error) {
	auctionID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	a, err := s.auctions.Get(ctx, q, auctionID)
	if err != nil {
		if errors.Is(err, auctions.ErrNotFound) {
			return nil, fmt.Errorf("auction %s of issue: %w", id, err)
		}

		return nil, err
	}

	return a, nil
}
