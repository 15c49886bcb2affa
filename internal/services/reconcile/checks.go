package reconcile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/infra/pgutils"
	"github.com/fastprodman/auctionhouse/internal/repos/auctions"
	"github.com/fastprodman/auctionhouse/internal/repos/bids"
	"github.com/fastprodman/auctionhouse/internal/repos/issues"
	"github.com/fastprodman/auctionhouse/internal/services/ledger"
)

// checkBalances compares every account with the totals replayed from its
// ledger entries.
func (s *Service) checkBalances(ctx context.Context) (int, error) {
	var (
		found                   int
		afterSubject, afterCurr string
	)

	for {
		page, err := s.ledger.ListAccounts(ctx, afterSubject, afterCurr, accountPage)
		if err != nil {
			return found, err
		}

		for _, acc := range page {
			var audit ledger.Audit

			err = pgutils.WithSnapshot(ctx, s.db, func(tx *sql.Tx) error {
				var err error

				audit, err = s.ledger.AuditAccount(ctx, tx, acc.SubjectID, acc.Currency)

				return err
			})
			if err != nil {
				return found, fmt.Errorf("audit %s/%s: %w", acc.SubjectID, acc.Currency, err)
			}

			if audit.Consistent() {
				continue
			}

			created, err := s.record(ctx, &issues.Issue{
				Type:          issues.TypeBalanceMismatch,
				ParticipantID: acc.SubjectID,
				Currency:      acc.Currency,
				Fingerprint:   fmt.Sprintf("balance_mismatch:%s:%s", acc.SubjectID, acc.Currency),
				Details: map[string]any{
					"reason":         "ledger_mismatch",
					"accountBalance": audit.Account.Balance.String(),
					"accountHold":    audit.Account.Hold.String(),
					"ledgerBalance":  audit.LedgerBalance.String(),
					"ledgerHold":     audit.LedgerHold.String(),
				},
			})
			if err != nil {
				return found, err
			}
			if created {
				found++
			}
		}

		if len(page) < accountPage {
			return found, nil
		}

		last := page[len(page)-1]
		afterSubject, afterCurr = last.SubjectID, last.Currency
	}
}

// orphanedHold is the part of a participant's hold still attributed to a
// closed auction, clamped to what the account actually holds.
func (s *Service) orphanedHold(ctx context.Context, q pgutils.Querier, a *auctions.Auction) (map[string]decimal.Decimal, error) {
	net, err := s.ledger.NetHeldByAuction(ctx, q, a.ID.String())
	if err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal)
	for participantID, held := range net {
		if !held.IsPositive() {
			continue
		}

		acc, err := s.ledger.GetAccountTx(ctx, q, participantID, a.Currency)
		if err != nil {
			return nil, err
		}

		if orphan := decimal.Min(held, acc.Hold); orphan.IsPositive() {
			out[participantID] = orphan
		}
	}

	return out, nil
}

// checkOrphanedHolds looks for holds that outlived their finished or
// cancelled auction.
func (s *Service) checkOrphanedHolds(ctx context.Context) (int, error) {
	found := 0

	err := s.eachAuction(ctx, []auctions.Status{auctions.StatusFinished, auctions.StatusCancelled}, func(a *auctions.Auction) error {
		orphans, err := s.orphanedHold(ctx, nil, a)
		if err != nil {
			return fmt.Errorf("orphaned holds of %s: %w", a.ID, err)
		}

		for participantID, amount := range orphans {
			_, isWinner := a.WonBy(participantID)

			created, err := s.record(ctx, &issues.Issue{
				Type:          issues.TypeOrphanedHold,
				ParticipantID: participantID,
				Currency:      a.Currency,
				AuctionID:     a.ID.String(),
				Fingerprint:   fmt.Sprintf("orphaned_hold:%s:%s", a.ID, participantID),
				Details: map[string]any{
					"auctionStatus": string(a.Status),
					"holdAmount":    amount.String(),
					"isWinner":      isWinner,
				},
			})
			if err != nil {
				return err
			}
			if created {
				found++
			}
		}

		return nil
	})
	if err != nil {
		return found, fmt.Errorf("orphaned holds: %w", err)
	}

	return found, nil
}

// checkUnderHolds verifies that every competitor of an active auction still
// has its standing bid covered by holds attributed to that auction.
func (s *Service) checkUnderHolds(ctx context.Context) (int, error) {
	found := 0

	err := s.eachAuction(ctx, []auctions.Status{auctions.StatusActive}, func(a *auctions.Auction) error {
		var (
			standings []bids.Standing
			net       map[string]decimal.Decimal
			holds     = make(map[string]decimal.Decimal)
		)

		err := pgutils.WithSnapshot(ctx, s.db, func(tx *sql.Tx) error {
			var err error

			standings, err = s.bids.Standings(ctx, tx, a.ID, a.RoundWinnerIDs(), 0)
			if err != nil {
				return err
			}

			net, err = s.ledger.NetHeldByAuction(ctx, tx, a.ID.String())
			if err != nil {
				return err
			}

			for _, st := range standings {
				acc, err := s.ledger.GetAccountTx(ctx, tx, st.ParticipantID, a.Currency)
				if err != nil {
					return err
				}
				holds[st.ParticipantID] = acc.Hold
			}

			return nil
		})
		if err != nil {
			return fmt.Errorf("under holds of %s: %w", a.ID, err)
		}

		for _, st := range standings {
			attributed := decimal.Min(net[st.ParticipantID], holds[st.ParticipantID])
			if !attributed.LessThan(st.Amount) {
				continue
			}

			created, err := s.record(ctx, &issues.Issue{
				Type:          issues.TypeBalanceMismatch,
				ParticipantID: st.ParticipantID,
				Currency:      a.Currency,
				AuctionID:     a.ID.String(),
				Fingerprint:   fmt.Sprintf("balance_mismatch:under_hold:%s:%s", a.ID, st.ParticipantID),
				Details: map[string]any{
					"reason":         "insufficient_hold",
					"expectedHold":   st.Amount.String(),
					"attributedHold": attributed.String(),
					"accountHold":    holds[st.ParticipantID].String(),
				},
			})
			if err != nil {
				return err
			}
			if created {
				found++
			}
		}

		return nil
	})
	if err != nil {
		return found, fmt.Errorf("under holds: %w", err)
	}

	return found, nil
}

// eachAuction walks every auction in the given statuses page by page.
func (s *Service) eachAuction(ctx context.Context, statuses []auctions.Status, fn func(*auctions.Auction) error) error {
	after := uuid.Nil

	for {
		page, err := s.auctions.ListByStatus(ctx, statuses, after, s.cfg.AuctionPageSize)
		if err != nil {
			return err
		}

		for _, a := range page {
			err = fn(a)
			if err != nil {
				return err
			}
		}

		if len(page) < s.cfg.AuctionPageSize {
			return nil
		}

		after = page[len(page)-1].ID
	}
}
