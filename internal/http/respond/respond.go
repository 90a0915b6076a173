package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hongminglow/all-in-auth/internal/models/dto"
)

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("respond: encode payload failed", "error", err)
	}
}

// Error writes {message, error} where code is an opaque, client-safe identifier.
func Error(w http.ResponseWriter, status int, message, code string) {
	JSON(w, status, dto.ErrorResponse{Message: message, Error: code})
}

// UserError writes {message, error, user:false} for the password routes.
func UserError(w http.ResponseWriter, status int, message, code string) {
	user := false
	JSON(w, status, dto.ErrorResponse{Message: message, Error: code, User: &user})
}
