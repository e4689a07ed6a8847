package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"webhooksandbox/internal/engine/delivery"
	"webhooksandbox/internal/engine/notifications"
	"webhooksandbox/internal/pkg/errors"
	"webhooksandbox/internal/platform/audit"
	"webhooksandbox/internal/platform/models"
)

type Sampler interface {
	Sample(kind notifications.Kind, id string) notifications.Sample
}

type SampleRecorder interface {
	SampleGenerated(kind string)
}

type SampleHandler struct {
	sampler    Sampler
	dispatcher *delivery.Dispatcher
	recorder   SampleRecorder
	audit      *audit.Logger
}

func NewSampleHandler(sampler Sampler, dispatcher *delivery.Dispatcher, recorder SampleRecorder, auditLog *audit.Logger) *SampleHandler {
	return &SampleHandler{sampler: sampler, dispatcher: dispatcher, recorder: recorder, audit: auditLog}
}

type sampleRequest struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// readSampleRequest takes kind and id from the query string, falling back to
// a JSON body on POST.
func readSampleRequest(r *http.Request) (sampleRequest, bool) {
	req := sampleRequest{
		Kind: r.URL.Query().Get("kind"),
		ID:   r.URL.Query().Get("id"),
	}
	if (req.Kind == "" || req.ID == "") && r.Method == http.MethodPost && r.Body != nil {
		var body sampleRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			if req.Kind == "" {
				req.Kind = body.Kind
			}
			if req.ID == "" {
				req.ID = body.ID
			}
		}
	}
	return req, req.Kind != "" && req.ID != ""
}

func (h *SampleHandler) Kinds(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"kinds": notifications.Kinds(),
	})
}

// Sample returns a signed bt_payload / bt_signature pair. Unknown kinds are
// accepted and render the generic subscription subject.
func (h *SampleHandler) Sample(w http.ResponseWriter, r *http.Request) {
	req, ok := readSampleRequest(r)
	if !ok {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "kind and id are required", nil)
		return
	}

	kind := notifications.Kind(req.Kind)
	if !kind.Known() {
		log.Debug().Str("kind", req.Kind).Msg("unknown kind, using generic subscription subject")
	}

	sample := h.sampler.Sample(kind, req.ID)
	if h.recorder != nil {
		h.recorder.SampleGenerated(kind.String())
	}

	errors.WriteJSON(w, http.StatusOK, sample)
}

// Dispatch sends a sample to every registered endpoint subscribed to the kind.
func (h *SampleHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	req, ok := readSampleRequest(r)
	if !ok {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "kind and id are required", nil)
		return
	}

	deliveries, err := h.dispatcher.Dispatch(r.Context(), notifications.Kind(req.Kind), req.ID)
	if err != nil {
		log.Error().Err(err).Str("kind", req.Kind).Int("sent", len(deliveries)).Msg("dispatch failed")
		if len(deliveries) == 0 {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to dispatch sample", nil)
			return
		}
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDeliveryNotRecorded,
			"Some endpoints were not sent the sample", map[string]interface{}{"deliveries": deliveries})
		return
	}
	if h.recorder != nil {
		for range deliveries {
			h.recorder.SampleGenerated(req.Kind)
		}
	}

	h.audit.Log(r, merchantID(r), audit.ActionDispatched, "notification", req.ID, map[string]interface{}{
		"kind":       req.Kind,
		"deliveries": len(deliveries),
	})

	if deliveries == nil {
		deliveries = []*models.Delivery{}
	}
	errors.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"deliveries": deliveries,
	})
}
