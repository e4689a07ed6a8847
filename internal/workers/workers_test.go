package workers

import (
	"context"
	"errors"
	"testing"

	"webhooksandbox/internal/platform/models"
)

type fakeStore struct {
	deliveries []*models.Delivery
	err        error
	gotMax     int
}

func (s *fakeStore) ListRetryable(maxAttempts int) ([]*models.Delivery, error) {
	s.gotMax = maxAttempts
	return s.deliveries, s.err
}

type fakeRedeliverer struct {
	fail map[string]bool
	sent []string
}

func (r *fakeRedeliverer) DeliverSync(_ context.Context, d *models.Delivery) error {
	r.sent = append(r.sent, d.ID)
	if r.fail[d.ID] {
		return errors.New("HTTP 500")
	}
	return nil
}

func TestRetryFailedDeliveries(t *testing.T) {
	store := &fakeStore{deliveries: []*models.Delivery{{ID: "dlv_1"}, {ID: "dlv_2"}, {ID: "dlv_3"}}}
	redeliverer := &fakeRedeliverer{fail: map[string]bool{"dlv_2": true}}

	n, err := RetryFailedDeliveries(context.Background(), store, redeliverer, 5)
	if err != nil {
		t.Fatalf("RetryFailedDeliveries() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 successful retries, got %d", n)
	}
	if len(redeliverer.sent) != 3 {
		t.Errorf("Expected every delivery to be retried, got %v", redeliverer.sent)
	}
	if store.gotMax != 5 {
		t.Errorf("Expected max attempts 5 to be passed through, got %d", store.gotMax)
	}
}

func TestRetryFailedDeliveries_StoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("database is locked")}

	if _, err := RetryFailedDeliveries(context.Background(), store, &fakeRedeliverer{}, 5); err == nil {
		t.Error("Expected error, got nil")
	}
}

func TestRetryFailedDeliveries_Cancelled(t *testing.T) {
	store := &fakeStore{deliveries: []*models.Delivery{{ID: "dlv_1"}}}
	redeliverer := &fakeRedeliverer{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RetryFailedDeliveries(ctx, store, redeliverer, 5); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(redeliverer.sent) != 0 {
		t.Errorf("Expected no deliveries after cancellation, got %v", redeliverer.sent)
	}
}
