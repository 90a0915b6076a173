package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/hongminglow/all-in-auth/internal/auth"
	"github.com/hongminglow/all-in-auth/internal/http/respond"
	"github.com/hongminglow/all-in-auth/internal/metrics"
	"github.com/hongminglow/all-in-auth/internal/models/dto"
)

// Headers read by the access gate.
const (
	TokenHeader = "Authorization"
	UserHeader  = "User"
)

// TokenVerifier checks a token presented on behalf of a username.
type TokenVerifier interface {
	Verify(token, username string) auth.Result
}

var _ TokenVerifier = (*auth.UserTokens)(nil)

// GateConfig configures the access gate.
type GateConfig struct {
	// StrictStatus answers rejections with 401 instead of 200.
	StrictStatus bool
	Logger       *slog.Logger
	Metrics      metrics.Recorder
}

// Gate admits a request only when its token verifies for the user header.
// Every rejection has the same shape, {auth:false, message}.
func Gate(verifier TokenVerifier, cfg GateConfig) func(http.Handler) http.Handler {
	rec := cfg.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	status := http.StatusOK
	if cfg.StrictStatus {
		status = http.StatusUnauthorized
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get(TokenHeader))
			user := r.Header.Get(UserHeader)

			res := verifier.Verify(token, user)
			rec.RecordGateDecision(res.Valid, string(res.Reason))
			if !res.Valid {
				logger.InfoContext(r.Context(), "access denied",
					slog.String("reason", string(res.Reason)),
					slog.String("request_id", RequestIDFromContext(r.Context())),
				)
				respond.JSON(w, status, dto.AuthResponse{Auth: false, Message: res.Message})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
