package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ValidationResponse is the error body for input that failed field checks
type ValidationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	WriteJSON(w, status, map[string]string{"error": message}, logger)
}

// WriteValidationError answers 400 with one message per invalid field
func WriteValidationError(w http.ResponseWriter, fields map[string]string, logger *slog.Logger) {
	WriteJSON(w, http.StatusBadRequest, ValidationResponse{Error: "Validation failed", Fields: fields}, logger)
}
