package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"webhooksandbox/internal/pkg/errors"
	"webhooksandbox/internal/platform/auth"
	"webhooksandbox/internal/platform/config"
)

type AuthHandler struct {
	tokenSvc     *auth.TokenService
	passwordHash string
	gateway      config.GatewayConfig
}

func NewAuthHandler(tokenSvc *auth.TokenService, authCfg config.AuthConfig, gatewayCfg config.GatewayConfig) *AuthHandler {
	return &AuthHandler{
		tokenSvc:     tokenSvc,
		passwordHash: authCfg.AdminPasswordHash,
		gateway:      gatewayCfg,
	}
}

// Token exchanges the sandbox admin password for a bearer token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "password is required", nil)
		return
	}

	if err := auth.CheckPassword(h.passwordHash, req.Password); err != nil {
		log.Warn().Str("remote_addr", r.RemoteAddr).Msg("rejected token request")
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid credentials", nil)
		return
	}

	token, err := h.tokenSvc.GenerateAccessToken(h.gateway.MerchantID, h.gateway.Environment)
	if err != nil {
		log.Error().Err(err).Msg("failed to sign access token")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to issue token", nil)
		return
	}

	errors.WriteJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "Bearer",
	})
}
