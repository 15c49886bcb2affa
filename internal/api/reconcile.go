package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type resolveRequest struct {
	ResolvedBy string `json:"resolvedBy"`
	Resolution string `json:"resolution"`
}

// ListIssuesHandler handles GET /reconcile/issues?status=
func (h *HandlerProvider) ListIssuesHandler(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	list, err := h.reconcile.ListIssues(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"issues": list})
}

// ResolveIssueHandler handles POST /reconcile/issues/{id}/resolve
func (h *HandlerProvider) ResolveIssueHandler(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	view, err := h.reconcile.ResolveIssue(r.Context(), chi.URLParam(r, "id"), req.ResolvedBy, req.Resolution)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// RunReconcileHandler handles POST /reconcile/run
func (h *HandlerProvider) RunReconcileHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.reconcile.RunOnce(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
