package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"ctxpipe/internal/message"
)

// handleTransform applies the current pipeline to the posted history and
// returns the transformed copy. The posted history itself is never stored.
func (h *Handler) handleTransform(w http.ResponseWriter, r *http.Request) {
	var req TransformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.provider.Pipeline().Apply(req.Messages)
	if err != nil {
		var fe *message.FormatError
		if errors.As(err, &fe) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("transform failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.reports != nil {
		if err := h.reports.Record(result); err != nil {
			// The report log is advisory; a write failure must not fail
			// the transform.
			h.logger.Warn().Err(err).Str("run_id", result.RunID).Msg("failed to record reports")
		}
	}

	writeJSON(w, http.StatusOK, TransformResponse{
		RunID:    result.RunID,
		Messages: result.History,
		Reports:  result.Reports,
		Summary:  result.Summary(),
	})
}
