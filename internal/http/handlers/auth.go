package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/all-in-auth/internal/account"
	"github.com/hongminglow/all-in-auth/internal/http/respond"
	"github.com/hongminglow/all-in-auth/internal/middleware"
	"github.com/hongminglow/all-in-auth/internal/models/dto"
)

const maxBodyBytes = 1 << 20

const (
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidInput       = "Username and password are required"
	msgInvalidJSON        = "Invalid JSON payload"
)

// AuthHandler owns the register, login and password routes.
type AuthHandler struct {
	accounts *account.Service
	logger   *slog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(accounts *account.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

// Register attaches auth routes to the router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/forgotpassword", h.handleForgotPassword)
	r.Post("/resetpassword", h.handleResetPassword)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decode(w, r, &req, false) {
		return
	}
	session, err := h.accounts.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrInvalidInput):
			respond.Error(w, http.StatusBadRequest, msgInvalidInput, account.OutcomeInvalidInput)
		case errors.Is(err, account.ErrUsernameTaken):
			respond.Error(w, http.StatusConflict, "User already exists", account.OutcomeConflict)
		default:
			h.internal(r, "register failed", err)
			respond.Error(w, http.StatusInternalServerError, "Error creating user", account.Outcome(err))
		}
		return
	}
	respond.JSON(w, http.StatusOK, dto.AuthResponse{
		Auth:     true,
		Token:    session.Token,
		Username: session.Username,
		Message:  "User created",
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decode(w, r, &req, false) {
		return
	}
	session, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrInvalidInput):
			respond.Error(w, http.StatusBadRequest, msgInvalidInput, account.OutcomeInvalidInput)
		case errors.Is(err, account.ErrInvalidCredentials):
			respond.JSON(w, http.StatusUnauthorized, dto.ErrorResponse{Message: msgInvalidCredentials})
		default:
			h.internal(r, "login failed", err)
			respond.Error(w, http.StatusInternalServerError, "Error logging in", account.Outcome(err))
		}
		return
	}
	respond.JSON(w, http.StatusOK, dto.AuthResponse{
		Auth:     true,
		Token:    session.Token,
		Username: session.Username,
		Message:  "User logged in",
	})
}

func (h *AuthHandler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.UsernameRequest
	if !decode(w, r, &req, true) {
		return
	}
	if err := h.accounts.ForgotPassword(r.Context(), req.Username); err != nil {
		h.userFailure(w, r, "forgot password failed", "Error looking up user", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.UserFlagResponse{Message: "Password reset link sent", User: true})
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decode(w, r, &req, true) {
		return
	}
	if err := h.accounts.ResetPassword(r.Context(), req.Username, req.Password); err != nil {
		h.userFailure(w, r, "reset password failed", "Error resetting password", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.UserFlagResponse{Message: "Password reset", User: true})
}

// userFailure writes the {user:false} failure shape shared by the password routes.
func (h *AuthHandler) userFailure(w http.ResponseWriter, r *http.Request, logMsg, message string, err error) {
	switch {
	case errors.Is(err, account.ErrInvalidInput):
		respond.UserError(w, http.StatusBadRequest, msgInvalidInput, account.OutcomeInvalidInput)
	case errors.Is(err, account.ErrInvalidCredentials):
		respond.UserError(w, http.StatusUnauthorized, msgInvalidCredentials, "")
	default:
		h.internal(r, logMsg, err)
		respond.UserError(w, http.StatusInternalServerError, message, account.Outcome(err))
	}
}

func (h *AuthHandler) internal(r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
}

// decode reads a JSON body into dst, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any, userShape bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if userShape {
			respond.UserError(w, http.StatusBadRequest, msgInvalidJSON, account.OutcomeInvalidInput)
		} else {
			respond.Error(w, http.StatusBadRequest, msgInvalidJSON, account.OutcomeInvalidInput)
		}
		return false
	}
	return true
}
