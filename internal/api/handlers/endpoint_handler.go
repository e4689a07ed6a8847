package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"webhooksandbox/internal/api/middleware"
	"webhooksandbox/internal/pkg/errors"
	"webhooksandbox/internal/platform/audit"
	"webhooksandbox/internal/platform/models"
	"webhooksandbox/internal/platform/repositories"
)

type EndpointHandler struct {
	endpoints  *repositories.EndpointRepository
	deliveries *repositories.DeliveryRepository
	audit      *audit.Logger
}

func NewEndpointHandler(endpoints *repositories.EndpointRepository, deliveries *repositories.DeliveryRepository, auditLog *audit.Logger) *EndpointHandler {
	return &EndpointHandler{endpoints: endpoints, deliveries: deliveries, audit: auditLog}
}

func merchantID(r *http.Request) string {
	if claims, ok := middleware.ClaimsFrom(r.Context()); ok {
		return claims.MerchantID
	}
	return ""
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func validStatus(status string) bool {
	return status == models.EndpointStatusActive || status == models.EndpointStatusPaused
}

func (h *EndpointHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL         string   `json:"url"`
		Kinds       []string `json:"kinds"`
		Description string   `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if !validURL(req.URL) {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "url must be an absolute http(s) URL", nil)
		return
	}

	endpoint := &models.Endpoint{
		URL:         req.URL,
		Kinds:       req.Kinds,
		Description: req.Description,
	}
	if err := h.endpoints.Create(endpoint); err != nil {
		log.Error().Err(err).Msg("failed to create endpoint")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create endpoint", nil)
		return
	}

	log.Info().Str("endpoint_id", endpoint.ID).Str("url", endpoint.URL).Msg("endpoint registered")
	h.audit.Log(r, merchantID(r), audit.ActionEndpointCreated, "endpoint", endpoint.ID, map[string]interface{}{
		"url":   endpoint.URL,
		"kinds": endpoint.Kinds,
	})
	errors.WriteJSON(w, http.StatusCreated, endpoint)
}

func (h *EndpointHandler) List(w http.ResponseWriter, r *http.Request) {
	endpoints, err := h.endpoints.List()
	if err != nil {
		errors.WriteStoreError(w, err, "Endpoint")
		return
	}
	if endpoints == nil {
		endpoints = []*models.Endpoint{}
	}
	errors.WriteJSON(w, http.StatusOK, endpoints)
}

func (h *EndpointHandler) Get(w http.ResponseWriter, r *http.Request) {
	endpoint, err := h.endpoints.GetByID(param(r, "endpoint_id"))
	if err != nil {
		errors.WriteStoreError(w, err, "Endpoint")
		return
	}
	errors.WriteJSON(w, http.StatusOK, endpoint)
}

func (h *EndpointHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL         *string   `json:"url"`
		Kinds       *[]string `json:"kinds"`
		Description *string   `json:"description"`
		Status      *string   `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	endpoint, err := h.endpoints.GetByID(param(r, "endpoint_id"))
	if err != nil {
		errors.WriteStoreError(w, err, "Endpoint")
		return
	}

	if req.URL != nil {
		if !validURL(*req.URL) {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "url must be an absolute http(s) URL", nil)
			return
		}
		endpoint.URL = *req.URL
	}
	if req.Kinds != nil {
		endpoint.Kinds = *req.Kinds
	}
	if req.Description != nil {
		endpoint.Description = *req.Description
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "status must be active or paused", nil)
			return
		}
		endpoint.Status = *req.Status
	}

	if err := h.endpoints.Update(endpoint); err != nil {
		errors.WriteStoreError(w, err, "Endpoint")
		return
	}
	h.audit.Log(r, merchantID(r), audit.ActionEndpointUpdated, "endpoint", endpoint.ID, map[string]interface{}{
		"status": endpoint.Status,
	})
	errors.WriteJSON(w, http.StatusOK, endpoint)
}

func (h *EndpointHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := param(r, "endpoint_id")
	if err := h.endpoints.Delete(id); err != nil {
		errors.WriteStoreError(w, err, "Endpoint")
		return
	}
	h.audit.Log(r, merchantID(r), audit.ActionEndpointDeleted, "endpoint", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *EndpointHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	id := param(r, "endpoint_id")
	if _, err := h.endpoints.GetByID(id); err != nil {
		errors.WriteStoreError(w, err, "Endpoint")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	deliveries, err := h.deliveries.ListByEndpoint(id, limit)
	if err != nil {
		errors.WriteStoreError(w, err, "Endpoint")
		return
	}
	if deliveries == nil {
		deliveries = []*models.Delivery{}
	}
	errors.WriteJSON(w, http.StatusOK, deliveries)
}
