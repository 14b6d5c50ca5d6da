// Package v1 exposes the transform pipeline over HTTP.
package v1

import (
	"encoding/json"
	"net/http"

	"ctxpipe/internal/message"
	"ctxpipe/internal/pipeline"
)

// TransformRequest is the POST /api/v1/transform body. Messages use the
// wire shape: content is a string or an array of typed parts.
type TransformRequest struct {
	Messages []message.Message `json:"messages"`
}

// TransformResponse carries the transformed copy and the per-stage reports.
type TransformResponse struct {
	RunID    string             `json:"run_id"`
	Messages []message.Message  `json:"messages"`
	Reports  []*pipeline.Report `json:"reports"`
	Summary  string             `json:"summary,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
