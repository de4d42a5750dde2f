package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"userdir/internal/platform/middleware"
	dErrors "userdir/pkg/domain-errors"
	"userdir/pkg/platform/httputil"
	"userdir/pkg/requestcontext"
)

// AuthService is the login surface the handlers need.
type AuthService interface {
	Authenticate(ctx context.Context, identifier, secret string) (string, error)
	TokenTTL() time.Duration
	middleware.TokenVerifier
}

// AuthHandler wires the login and identity endpoints.
type AuthHandler struct {
	auth   AuthService
	users  UserService
	logger *slog.Logger
}

// NewAuthHandler constructs the authentication handler.
func NewAuthHandler(auth AuthService, users UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, logger: logger}
}

// Verifier exposes the token verifier for the middleware chain.
func (h *AuthHandler) Verifier() middleware.TokenVerifier { return h.auth }

// HandleLogin handles POST /api/v1/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[LoginRequest](w, r, h.logger)
	if !ok {
		return
	}
	if req.Username == "" || req.Password == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "username and password are required"))
		return
	}

	signed, err := h.auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		// The generic message is deliberate; login failures never say
		// which factor failed.
		h.logger.InfoContext(ctx, "login rejected",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, LoginResponse{
		Token:     signed,
		ExpiresIn: ttlSeconds(h.auth.TokenTTL()),
	})
}

// HandleMe handles GET /api/v1/me: resolves the token subject back to its
// account.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subject := middleware.Subject(ctx)
	idNumber, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject"))
		return
	}

	u, err := h.users.GetByIdentification(ctx, idNumber)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBasicResponse(u))
}
