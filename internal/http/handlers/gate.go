package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/all-in-auth/internal/http/respond"
	"github.com/hongminglow/all-in-auth/internal/models/dto"
)

// GateHandler answers /auth once the access gate has admitted the request.
type GateHandler struct {
	gate func(http.Handler) http.Handler
}

// NewGateHandler wraps /auth in gate.
func NewGateHandler(gate func(http.Handler) http.Handler) *GateHandler {
	return &GateHandler{gate: gate}
}

// Register attaches /auth behind the gate.
func (h *GateHandler) Register(r chi.Router) {
	r.With(h.gate).Get("/auth", h.handleCheck)
}

func (h *GateHandler) handleCheck(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, dto.AuthResponse{Auth: true})
}
