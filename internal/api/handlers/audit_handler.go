package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"webhooksandbox/internal/pkg/errors"
	"webhooksandbox/internal/platform/audit"
)

type AuditHandler struct {
	audit *audit.Logger
}

func NewAuditHandler(auditLog *audit.Logger) *AuditHandler {
	return &AuditHandler{audit: auditLog}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.audit.Recent(limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to read audit log")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal error", nil)
		return
	}
	if entries == nil {
		entries = []*audit.Entry{}
	}
	errors.WriteJSON(w, http.StatusOK, entries)
}
