// Package respond writes the JSON bodies shared by every route.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hongminglow/auth-examples/internal/models/dto"
)

// JSON writes payload as the response body with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("respond: encode payload failed", "error", err)
	}
}

// Message writes {"message": message}.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, dto.MessageResponse{Message: message})
}

// InternalError writes the generic 500 body; the cause belongs in the log,
// not in the response.
func InternalError(w http.ResponseWriter) {
	Message(w, http.StatusInternalServerError, "Internal server error")
}
