package server

import (
	"encoding/json"
	"io"
	"net/http"
)

// maxBodySize bounds POST bodies; the engine enforces its own input limit
const maxBodySize = 4 << 20

// evalHandler serves POST /api/v1/eval
type evalHandler struct {
	evaluator *evaluator
}

func (h *evalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, ErrorPayload{Code: "method_not_allowed", Message: "use POST"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorPayload{Code: ErrInvalidPayload, Message: err.Error()})
		return
	}

	var req EvalRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorPayload{Code: ErrInvalidPayload, Message: "body must be {\"input\": \"...\"}"})
		return
	}

	// Rejected expressions are a normal answer, not a transport failure
	writeJSON(w, http.StatusOK, h.evaluator.evaluate(r.Context(), req.Input))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
