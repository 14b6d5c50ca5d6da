package v1

import (
	"net/http"
	"strconv"

	"ctxpipe/internal/storage"
)

// handleReports lists recent transform-run reports, newest first.
func (h *Handler) handleReports(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		writeJSON(w, http.StatusOK, []storage.RunRecord{})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.reports.Recent(limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list reports")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, records)
}
