package rest

import (
	"encoding/json"
	"net/http"
)

const msgInvalidBody = "Invalid request body"

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

func writeInvalid(w http.ResponseWriter, bad []string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Message: msgInvalidBody, Errors: bad})
}
