package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/all-in-auth/internal/account"
	"github.com/hongminglow/all-in-auth/internal/http/respond"
	"github.com/hongminglow/all-in-auth/internal/middleware"
	"github.com/hongminglow/all-in-auth/internal/models/dto"
)

// UsersHandler serves the user listing.
type UsersHandler struct {
	accounts *account.Service
	logger   *slog.Logger
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(accounts *account.Service, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{accounts: accounts, logger: logger}
}

// Register attaches /getall.
func (h *UsersHandler) Register(r chi.Router) {
	r.Get("/getall", h.handleGetAll)
}

func (h *UsersHandler) handleGetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list users failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		)
		respond.Error(w, http.StatusInternalServerError, "Error getting users", account.Outcome(err))
		return
	}
	respond.JSON(w, http.StatusOK, dto.UsersResponse{Users: users})
}
