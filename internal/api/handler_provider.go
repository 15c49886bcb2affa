package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fastprodman/auctionhouse/internal/repos/ledgerentries"
	"github.com/fastprodman/auctionhouse/internal/services/auction"
	"github.com/fastprodman/auctionhouse/internal/services/ledger"
	"github.com/fastprodman/auctionhouse/internal/services/reconcile"
)

type AuctionService interface {
	CreateAuction(ctx context.Context, in auction.CreateInput) (auction.AuctionView, error)
	StartAuction(ctx context.Context, id string) (auction.AuctionView, error)
	GetAuctionStatus(ctx context.Context, id string, leadersLimit int) (auction.AuctionView, error)
	PlaceBid(ctx context.Context, id string, in auction.BidInput) (auction.BidResult, error)
	ListParticipantBids(ctx context.Context, id, participantID string, limit int) ([]auction.BidView, error)
	CloseCurrentRound(ctx context.Context, id string) (auction.CloseResult, error)
	SkipRoundWithRefund(ctx context.Context, id string) (auction.CloseResult, error)
	FinalizeAuction(ctx context.Context, id string) (auction.FinalizeResult, error)
	CancelAuction(ctx context.Context, id string) (auction.CancelResult, error)
	GetRoundLeaderboard(ctx context.Context, id string, roundNo, limit int) (auction.RoundLeaderboard, error)
	GetParticipantWins(ctx context.Context, participantID string) ([]auction.Win, error)
}

type LedgerService interface {
	Deposit(ctx context.Context, op ledger.Op) (ledger.Result, error)
	GetAccount(ctx context.Context, subjectID, currency string) (ledger.View, error)
	ListEntries(ctx context.Context, subjectID, currency string, limit int) ([]ledgerentries.Entry, error)
}

type ReconcileService interface {
	RunOnce(ctx context.Context) (reconcile.Result, error)
	ListIssues(ctx context.Context, status string, limit int) ([]reconcile.IssueView, error)
	ResolveIssue(ctx context.Context, id, by, resolution string) (reconcile.IssueView, error)
}

// HandlerProvider exposes the services as HTTP handlers.
type HandlerProvider struct {
	auctions  AuctionService
	ledger    LedgerService
	reconcile ReconcileService
	logger    *slog.Logger
}

func NewHandler(auctions AuctionService, led LedgerService, rec ReconcileService, logger *slog.Logger) *HandlerProvider {
	if logger == nil {
		logger = slog.Default()
	}

	return &HandlerProvider{auctions: auctions, ledger: led, reconcile: rec, logger: logger}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

type errorBody struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeServiceError maps service errors to status codes. Anything unknown is
// logged and reported as 500 without its text.
func (h *HandlerProvider) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if ae, ok := auction.AsError(err); ok {
		writeJSON(w, ae.Code, errorBody{Error: ae.Message, Details: ae.Details})
		return
	}

	switch {
	case errors.Is(err, ledger.ErrInvalidOp), errors.Is(err, reconcile.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrTxIDConflict):
		writeError(w, http.StatusConflict, "txId already used by a different operation")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, "insufficient funds")
	case errors.Is(err, reconcile.ErrIssueNotFound):
		writeError(w, http.StatusNotFound, "issue not found")
	case errors.Is(err, reconcile.ErrAlreadyResolved):
		writeError(w, http.StatusConflict, "issue already resolved")
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody reads a JSON body capped at 1 MiB and rejects unknown fields.
// An empty body leaves dst untouched when allowEmpty is set.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			if allowEmpty {
				return true
			}

			writeError(w, http.StatusBadRequest, "empty body")
			return false
		}

		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}

	return true
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}

	return v, true
}
