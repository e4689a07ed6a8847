package delivery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"webhooksandbox/internal/engine/notifications"
	"webhooksandbox/internal/platform/models"
)

const (
	HeaderKind     = "X-Sandbox-Kind"
	HeaderDelivery = "X-Sandbox-Delivery"
)

type EndpointStore interface {
	GetByID(id string) (*models.Endpoint, error)
	GetByKind(kind string) ([]*models.Endpoint, error)
	UpdateLastTriggered(id string, timestamp int64) error
	IncrementRetryCount(id string) error
	ResetRetryCount(id string) error
	UpdateLastError(id, lastError string) error
}

type DeliveryStore interface {
	Create(d *models.Delivery) error
	MarkDelivered(d *models.Delivery, responseCode int) error
	MarkFailed(d *models.Delivery, responseCode int, lastError string) error
}

type Sampler interface {
	Sample(kind notifications.Kind, id string) notifications.Sample
}

// Observer is told about every delivery attempt.
type Observer interface {
	DeliveryAttempted(status string, seconds float64)
}

type Dispatcher struct {
	endpoints  EndpointStore
	deliveries DeliveryStore
	sampler    Sampler
	client     *http.Client
	observer   Observer
}

func NewDispatcher(endpoints EndpointStore, deliveries DeliveryStore, sampler Sampler, timeout time.Duration, observer Observer) *Dispatcher {
	return &Dispatcher{
		endpoints:  endpoints,
		deliveries: deliveries,
		sampler:    sampler,
		client:     &http.Client{Timeout: timeout},
		observer:   observer,
	}
}

// Dispatch signs a fresh sample for every endpoint subscribed to kind and
// posts it. Each endpoint gets its own delivery record; a failing endpoint
// does not stop the others. If recording a delivery fails, the records
// already created are still posted and returned alongside the error.
func (d *Dispatcher) Dispatch(ctx context.Context, kind notifications.Kind, id string) ([]*models.Delivery, error) {
	endpoints, err := d.endpoints.GetByKind(kind.String())
	if err != nil {
		return nil, fmt.Errorf("load endpoints for %s: %w", kind, err)
	}

	var createErr error
	deliveries := make([]*models.Delivery, 0, len(endpoints))
	for _, endpoint := range endpoints {
		sample := d.sampler.Sample(kind, id)
		delivery := &models.Delivery{
			EndpointID: endpoint.ID,
			Kind:       kind.String(),
			SubjectID:  id,
			Payload:    sample.Payload,
			Signature:  sample.Signature,
		}
		if err := d.deliveries.Create(delivery); err != nil {
			createErr = fmt.Errorf("record delivery to %s: %w", endpoint.ID, err)
			break
		}
		deliveries = append(deliveries, delivery)
	}

	var wg sync.WaitGroup
	for i, delivery := range deliveries {
		wg.Add(1)
		go func(endpoint *models.Endpoint, delivery *models.Delivery) {
			defer wg.Done()
			d.deliver(ctx, endpoint, delivery)
		}(endpoints[i], delivery)
	}
	wg.Wait()

	return deliveries, createErr
}

// DeliverSync resends a stored delivery with its original payload and
// signature. A delivery whose endpoint is missing or paused is marked failed
// so it still uses up an attempt.
func (d *Dispatcher) DeliverSync(ctx context.Context, delivery *models.Delivery) error {
	endpoint, err := d.endpoints.GetByID(delivery.EndpointID)
	if err != nil {
		return d.skip(delivery, fmt.Errorf("load endpoint %s: %w", delivery.EndpointID, err))
	}
	if endpoint.Status != models.EndpointStatusActive {
		return d.skip(delivery, fmt.Errorf("endpoint %s is %s", endpoint.ID, endpoint.Status))
	}

	d.deliver(ctx, endpoint, delivery)
	if delivery.Status != models.DeliveryStatusDelivered {
		return fmt.Errorf("delivery %s failed: %s", delivery.ID, delivery.LastError)
	}
	return nil
}

func (d *Dispatcher) skip(delivery *models.Delivery, reason error) error {
	if err := d.deliveries.MarkFailed(delivery, 0, reason.Error()); err != nil {
		log.Error().Err(err).Str("delivery_id", delivery.ID).Msg("failed to record skipped delivery")
	}
	return reason
}

func (d *Dispatcher) deliver(ctx context.Context, endpoint *models.Endpoint, delivery *models.Delivery) {
	logger := log.With().Str("endpoint_id", endpoint.ID).Str("delivery_id", delivery.ID).Str("kind", delivery.Kind).Logger()
	start := time.Now()

	code, err := d.post(ctx, endpoint.URL, delivery)

	status := models.DeliveryStatusDelivered
	if err == nil && (code < 200 || code >= 300) {
		err = fmt.Errorf("HTTP %d", code)
	}
	if err != nil {
		status = models.DeliveryStatusFailed
	}
	if d.observer != nil {
		d.observer.DeliveryAttempted(status, time.Since(start).Seconds())
	}

	if err != nil {
		logger.Warn().Err(err).Int("status_code", code).Msg("delivery failed")
		if markErr := d.deliveries.MarkFailed(delivery, code, err.Error()); markErr != nil {
			logger.Error().Err(markErr).Msg("failed to record delivery failure")
		}
		if updErr := d.endpoints.UpdateLastError(endpoint.ID, err.Error()); updErr != nil {
			logger.Error().Err(updErr).Msg("failed to record endpoint error")
		}
		if updErr := d.endpoints.IncrementRetryCount(endpoint.ID); updErr != nil {
			logger.Error().Err(updErr).Msg("failed to increment endpoint retry count")
		}
		return
	}

	logger.Info().Int("status_code", code).Msg("delivery succeeded")
	if markErr := d.deliveries.MarkDelivered(delivery, code); markErr != nil {
		logger.Error().Err(markErr).Msg("failed to record delivery")
	}
	if updErr := d.endpoints.UpdateLastTriggered(endpoint.ID, time.Now().Unix()); updErr != nil {
		logger.Error().Err(updErr).Msg("failed to record endpoint trigger time")
	}
	if updErr := d.endpoints.ResetRetryCount(endpoint.ID); updErr != nil {
		logger.Error().Err(updErr).Msg("failed to reset endpoint retry count")
	}
}

// post sends the sample the way the gateway delivers real notifications: a
// form-encoded body with bt_signature and bt_payload.
func (d *Dispatcher) post(ctx context.Context, target string, delivery *models.Delivery) (int, error) {
	form := url.Values{}
	form.Set(notifications.SignatureField, delivery.Signature)
	form.Set(notifications.PayloadField, delivery.Payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "webhook-sandbox")
	req.Header.Set(HeaderKind, delivery.Kind)
	req.Header.Set(HeaderDelivery, delivery.ID)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return resp.StatusCode, nil
}
