package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fastprodman/auctionhouse/internal/infra/logging"
)

// NewRouter registers every endpoint of h on a chi router.
func NewRouter(h *HandlerProvider, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auctions", func(r chi.Router) {
		r.Post("/", h.CreateAuctionHandler)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetAuctionHandler)
			r.Post("/start", h.StartAuctionHandler)
			r.Post("/bids", h.PlaceBidHandler)
			r.Get("/bids", h.ListBidsHandler)
			r.Post("/close-round", h.CloseRoundHandler)
			r.Post("/skip-round", h.SkipRoundHandler)
			r.Post("/finalize", h.FinalizeHandler)
			r.Post("/cancel", h.CancelHandler)
			r.Get("/rounds/{roundNo}/leaderboard", h.LeaderboardHandler)
		})
	})

	r.Get("/participants/{participantId}/wins", h.ParticipantWinsHandler)

	r.Route("/accounts/{subjectId}", func(r chi.Router) {
		r.Get("/", h.GetAccountHandler)
		r.Post("/deposit", h.DepositHandler)
		r.Get("/entries", h.ListEntriesHandler)
	})

	r.Route("/reconcile", func(r chi.Router) {
		r.Get("/issues", h.ListIssuesHandler)
		r.Post("/issues/{id}/resolve", h.ResolveIssueHandler)
		r.Post("/run", h.RunReconcileHandler)
	})

	return r
}
