package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	apiContext "webhooksandbox/internal/api/context"
	"webhooksandbox/internal/pkg/errors"
	"webhooksandbox/internal/platform/auth"
)

// ClaimsFrom returns the claims stored by AuthMiddleware, if any.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(apiContext.Claims).(*auth.Claims)
	return claims, ok
}

// AuthMiddleware accepts bearer tokens minted by this sandbox for its own
// gateway environment. A development token is refused by a sandbox running
// against production keys.
type AuthMiddleware struct {
	tokenSvc    *auth.TokenService
	environment string
}

func NewAuthMiddleware(tokenSvc *auth.TokenService, environment string) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, environment: environment}
}

func bearerToken(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "Missing authorization header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", "Invalid authorization header format"
	}
	return token, ""
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, problem := bearerToken(r)
		if problem != "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, problem, nil)
			return
		}

		claims, err := m.tokenSvc.ValidateToken(token)
		if err != nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired token", nil)
			return
		}

		if m.environment != "" && claims.Environment != m.environment {
			log.Warn().Str("merchant_id", claims.MerchantID).Str("token_env", claims.Environment).
				Str("sandbox_env", m.environment).Msg("token environment mismatch")
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeEnvironmentMismatch,
				"Token was issued for the "+claims.Environment+" environment", nil)
			return
		}

		log.Debug().Str("merchant_id", claims.MerchantID).Str("path", r.URL.Path).Msg("authenticated request")

		ctx := context.WithValue(r.Context(), apiContext.Claims, claims)
		next(w, r.WithContext(ctx))
	}
}
