package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/auctionhouse/internal/money"
	"github.com/fastprodman/auctionhouse/internal/services/ledger"
)

const defaultCurrency = "RUB"

type depositRequest struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	TxID     string `json:"txId"`
}

type entryView struct {
	TxID      string          `json:"txId"`
	Kind      string          `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Applied   decimal.Decimal `json:"applied"`
	AuctionID string          `json:"auctionId,omitempty"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func currencyParam(raw string) string {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if c == "" {
		return defaultCurrency
	}

	return c
}

// DepositHandler handles POST /accounts/{subjectId}/deposit
func (h *HandlerProvider) DepositHandler(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	amount, err := money.ParsePositive(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.TxID) == "" {
		writeError(w, http.StatusBadRequest, "txId required")
		return
	}

	res, err := h.ledger.Deposit(r.Context(), ledger.Op{
		SubjectID: chi.URLParam(r, "subjectId"),
		Currency:  currencyParam(req.Currency),
		Amount:    amount,
		TxID:      strings.TrimSpace(req.TxID),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// GetAccountHandler handles GET /accounts/{subjectId}?currency=
func (h *HandlerProvider) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.ledger.GetAccount(r.Context(), chi.URLParam(r, "subjectId"), currencyParam(r.URL.Query().Get("currency")))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// ListEntriesHandler handles GET /accounts/{subjectId}/entries?currency=&limit=
func (h *HandlerProvider) ListEntriesHandler(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	entries, err := h.ledger.ListEntries(r.Context(), chi.URLParam(r, "subjectId"), currencyParam(r.URL.Query().Get("currency")), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryView{
			TxID:      e.TxID,
			Kind:      string(e.Kind),
			Amount:    e.Amount,
			Applied:   e.Applied,
			AuctionID: e.AuctionID,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}
