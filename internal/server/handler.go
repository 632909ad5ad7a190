package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"caselens/internal/analysis"
)

// errorResponse is the single error envelope every failure returns.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze runs one request through the pipeline: received, validated,
// policy-computed, instruction-built, engine-invoked, reconciled, responded.
// Any stage failure short-circuits straight to the error envelope; no partial
// result is ever returned and no stage is retried.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analysis.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Engine.EngineTimeout())
	defer cancel()

	res, err := s.pipe.Analyze(ctx, &req)
	if err != nil {
		var verr *analysis.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error()})
			return
		}
		// Engine-stage failures surface with the underlying message, still as
		// a client-error status: the caller gets the single error envelope,
		// never a partial result.
		s.log.Error("analysis failed",
			zap.Error(err),
			zap.String("request_id", requestIDFromContext(r.Context())))
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
