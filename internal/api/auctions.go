package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fastprodman/auctionhouse/internal/services/auction"
)

// CreateAuctionHandler handles POST /auctions
func (h *HandlerProvider) CreateAuctionHandler(w http.ResponseWriter, r *http.Request) {
	var in auction.CreateInput
	if !decodeBody(w, r, &in, false) {
		return
	}

	view, err := h.auctions.CreateAuction(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// GetAuctionHandler handles GET /auctions/{id}?leaders=N
func (h *HandlerProvider) GetAuctionHandler(w http.ResponseWriter, r *http.Request) {
	leaders, ok := queryInt(r, "leaders")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid leaders")
		return
	}

	view, err := h.auctions.GetAuctionStatus(r.Context(), chi.URLParam(r, "id"), leaders)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// StartAuctionHandler handles POST /auctions/{id}/start
func (h *HandlerProvider) StartAuctionHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.auctions.StartAuction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// PlaceBidHandler handles POST /auctions/{id}/bids
func (h *HandlerProvider) PlaceBidHandler(w http.ResponseWriter, r *http.Request) {
	var in auction.BidInput
	if !decodeBody(w, r, &in, false) {
		return
	}

	if in.IdempotencyKey == "" {
		in.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	res, err := h.auctions.PlaceBid(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// ListBidsHandler handles GET /auctions/{id}/bids?participantId=
func (h *HandlerProvider) ListBidsHandler(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	list, err := h.auctions.ListParticipantBids(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("participantId"), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bids": list})
}

// CloseRoundHandler handles POST /auctions/{id}/close-round
func (h *HandlerProvider) CloseRoundHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.auctions.CloseCurrentRound(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// SkipRoundHandler handles POST /auctions/{id}/skip-round
func (h *HandlerProvider) SkipRoundHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.auctions.SkipRoundWithRefund(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// FinalizeHandler handles POST /auctions/{id}/finalize
func (h *HandlerProvider) FinalizeHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.auctions.FinalizeAuction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// CancelHandler handles POST /auctions/{id}/cancel
func (h *HandlerProvider) CancelHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.auctions.CancelAuction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// LeaderboardHandler handles GET /auctions/{id}/rounds/{roundNo}/leaderboard
func (h *HandlerProvider) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	roundNo, err := strconv.Atoi(chi.URLParam(r, "roundNo"))
	if err != nil || roundNo < 1 {
		writeError(w, http.StatusBadRequest, "invalid roundNo")
		return
	}

	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	board, err := h.auctions.GetRoundLeaderboard(r.Context(), chi.URLParam(r, "id"), roundNo, limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, board)
}

// ParticipantWinsHandler handles GET /participants/{participantId}/wins
func (h *HandlerProvider) ParticipantWinsHandler(w http.ResponseWriter, r *http.Request) {
	participantID := chi.URLParam(r, "participantId")

	wins, err := h.auctions.GetParticipantWins(r.Context(), participantID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"participantId": participantID, "wins": wins})
}
