package delivery

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"webhooksandbox/internal/engine/notifications"
	"webhooksandbox/internal/engine/webhooks"
	"webhooksandbox/internal/platform/config"
	"webhooksandbox/internal/platform/database"
	"webhooksandbox/internal/platform/models"
	"webhooksandbox/internal/platform/repositories"
)

type testKeys struct{}

func (testKeys) GetPublicKey() string  { return "pub" }
func (testKeys) GetPrivateKey() string { return "priv" }

type received struct {
	payload, signature, kind, deliveryID string
}

type recorder struct {
	mu       sync.Mutex
	requests []received
	status   int
}

func (r *recorder) handler(w http.ResponseWriter, req *http.Request) {
	req.ParseForm()
	r.mu.Lock()
	r.requests = append(r.requests, received{
		payload:    req.PostForm.Get("bt_payload"),
		signature:  req.PostForm.Get("bt_signature"),
		kind:       req.Header.Get(HeaderKind),
		deliveryID: req.Header.Get(HeaderDelivery),
	})
	status := r.status
	r.mu.Unlock()
	w.WriteHeader(status)
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) DeliveryAttempted(status string, _ float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.counts[status]++
}

type fixture struct {
	db         *sql.DB
	endpoints  *repositories.EndpointRepository
	deliveries *repositories.DeliveryRepository
	observer   *countingObserver
	dispatcher *Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{URL: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:         db,
		endpoints:  repositories.NewEndpointRepository(db),
		deliveries: repositories.NewDeliveryRepository(db),
		observer:   &countingObserver{counts: map[string]int{}},
	}
	gateway := notifications.NewTestingGateway(testKeys{})
	f.dispatcher = NewDispatcher(f.endpoints, f.deliveries, gateway, 5*time.Second, f.observer)
	return f
}

func (f *fixture) addEndpoint(t *testing.T, url string, kinds ...string) *models.Endpoint {
	t.Helper()
	e := &models.Endpoint{URL: url, Kinds: kinds}
	if err := f.endpoints.Create(e); err != nil {
		t.Fatalf("Failed to create endpoint: %v", err)
	}
	return e
}

func TestDispatcher_Dispatch(t *testing.T) {
	f := newFixture(t)

	ok := &recorder{status: http.StatusOK}
	okServer := httptest.NewServer(http.HandlerFunc(ok.handler))
	defer okServer.Close()

	broken := &recorder{status: http.StatusInternalServerError}
	brokenServer := httptest.NewServer(http.HandlerFunc(broken.handler))
	defer brokenServer.Close()

	good := f.addEndpoint(t, okServer.URL, "dispute_opened")
	bad := f.addEndpoint(t, brokenServer.URL)
	f.addEndpoint(t, okServer.URL+"/checks", "check")

	deliveries, err := f.dispatcher.Dispatch(context.Background(), notifications.KindDisputeOpened, "dispute123")
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(deliveries) != 2 {
		t.Fatalf("Expected 2 deliveries, got %d", len(deliveries))
	}

	if len(ok.requests) != 1 {
		t.Fatalf("Expected 1 request to healthy endpoint, got %d", len(ok.requests))
	}
	req := ok.requests[0]
	if req.kind != "dispute_opened" {
		t.Errorf("Expected kind header dispute_opened, got %s", req.kind)
	}
	if req.signature != "pub|"+webhooks.Sign("priv", []byte(req.payload)) {
		t.Errorf("Signature does not match payload: %s", req.signature)
	}

	for _, d := range deliveries {
		stored, err := f.deliveries.GetByID(d.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		switch d.EndpointID {
		case good.ID:
			if stored.Status != models.DeliveryStatusDelivered || stored.ResponseCode != 200 {
				t.Errorf("Expected delivered/200, got %s/%d", stored.Status, stored.ResponseCode)
			}
		case bad.ID:
			if stored.Status != models.DeliveryStatusFailed || stored.LastError != "HTTP 500" {
				t.Errorf("Expected failed with HTTP 500, got %s %q", stored.Status, stored.LastError)
			}
		}
	}

	badEndpoint, _ := f.endpoints.GetByID(bad.ID)
	if badEndpoint.RetryCount != 1 || badEndpoint.LastError != "HTTP 500" {
		t.Errorf("Expected failing endpoint bookkeeping, got %+v", badEndpoint)
	}
	goodEndpoint, _ := f.endpoints.GetByID(good.ID)
	if goodEndpoint.LastTriggeredAt == 0 {
		t.Error("Expected last_triggered_at to be set")
	}

	if f.observer.counts[models.DeliveryStatusDelivered] != 1 || f.observer.counts[models.DeliveryStatusFailed] != 1 {
		t.Errorf("Unexpected observer counts: %v", f.observer.counts)
	}
}

func TestDispatcher_Dispatch_NoEndpoints(t *testing.T) {
	f := newFixture(t)

	deliveries, err := f.dispatcher.Dispatch(context.Background(), notifications.KindCheck, "x")
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(deliveries) != 0 {
		t.Errorf("Expected no deliveries, got %d", len(deliveries))
	}
}

func TestDispatcher_DeliverSync_ResendsSameBytes(t *testing.T) {
	f := newFixture(t)

	rec := &recorder{status: http.StatusServiceUnavailable}
	server := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer server.Close()

	f.addEndpoint(t, server.URL)

	deliveries, err := f.dispatcher.Dispatch(context.Background(), notifications.KindDisbursement, "dsb_1")
	if err != nil || len(deliveries) != 1 {
		t.Fatalf("Dispatch() = %v, %v", deliveries, err)
	}
	first := deliveries[0]
	if first.Status != models.DeliveryStatusFailed {
		t.Fatalf("Expected first attempt to fail, got %s", first.Status)
	}

	rec.mu.Lock()
	rec.status = http.StatusOK
	rec.mu.Unlock()

	if err := f.dispatcher.DeliverSync(context.Background(), first); err != nil {
		t.Fatalf("DeliverSync() error = %v", err)
	}

	if len(rec.requests) != 2 {
		t.Fatalf("Expected 2 requests, got %d", len(rec.requests))
	}
	if rec.requests[0].payload != rec.requests[1].payload || rec.requests[0].signature != rec.requests[1].signature {
		t.Error("Expected retry to resend the original payload and signature")
	}
	if rec.requests[1].deliveryID != first.ID {
		t.Errorf("Expected delivery header %s, got %s", first.ID, rec.requests[1].deliveryID)
	}

	stored, _ := f.deliveries.GetByID(first.ID)
	if stored.Status != models.DeliveryStatusDelivered || stored.Attempts != 2 {
		t.Errorf("Expected delivered after 2 attempts, got %s/%d", stored.Status, stored.Attempts)
	}
}

func TestDispatcher_DeliverSync_PausedEndpoint(t *testing.T) {
	f := newFixture(t)

	e := f.addEndpoint(t, "http://127.0.0.1:1")
	e.Status = models.EndpointStatusPaused
	if err := f.endpoints.Update(e); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	d := &models.Delivery{EndpointID: e.ID, Kind: "check", SubjectID: "x", Payload: "p", Signature: "s"}
	if err := f.deliveries.Create(d); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := f.deliveries.MarkFailed(d, 500, "HTTP 500"); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}

	const maxAttempts = 5
	for i := 0; i < maxAttempts*2; i++ {
		retryable, err := f.deliveries.ListRetryable(maxAttempts)
		if err != nil {
			t.Fatalf("ListRetryable() error = %v", err)
		}
		for _, r := range retryable {
			if err := f.dispatcher.DeliverSync(context.Background(), r); err == nil {
				t.Fatal("Expected error delivering to paused endpoint")
			}
		}
	}

	stored, _ := f.deliveries.GetByID(d.ID)
	if stored.Status != models.DeliveryStatusFailed || stored.Attempts != maxAttempts {
		t.Errorf("Expected failed after %d attempts, got %s/%d", maxAttempts, stored.Status, stored.Attempts)
	}
	if retryable, _ := f.deliveries.ListRetryable(maxAttempts); len(retryable) != 0 {
		t.Errorf("Expected paused delivery to exhaust its attempts, got %d retryable", len(retryable))
	}
}

// failingDeliveries fails the nth Create and passes everything else through.
type failingDeliveries struct {
	*repositories.DeliveryRepository
	failOn int
	calls  int
}

func (s *failingDeliveries) Create(d *models.Delivery) error {
	s.calls++
	if s.calls == s.failOn {
		return errors.New("disk full")
	}
	return s.DeliveryRepository.Create(d)
}

func TestDispatcher_Dispatch_RecordErrorStillDelivers(t *testing.T) {
	f := newFixture(t)

	rec := &recorder{status: http.StatusOK}
	server := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer server.Close()

	f.addEndpoint(t, server.URL+"/a")
	f.addEndpoint(t, server.URL+"/b")

	store := &failingDeliveries{DeliveryRepository: f.deliveries, failOn: 2}
	dispatcher := NewDispatcher(f.endpoints, store, notifications.NewTestingGateway(testKeys{}), 5*time.Second, nil)

	deliveries, err := dispatcher.Dispatch(context.Background(), notifications.KindCheck, "x")
	if err == nil {
		t.Fatal("Expected record error from Dispatch")
	}
	if len(deliveries) != 1 {
		t.Fatalf("Expected the recorded delivery to be returned, got %d", len(deliveries))
	}
	if len(rec.requests) != 1 {
		t.Errorf("Expected the recorded delivery to be posted, got %d requests", len(rec.requests))
	}

	stored, _ := f.deliveries.GetByID(deliveries[0].ID)
	if stored.Status != models.DeliveryStatusDelivered {
		t.Errorf("Expected no delivery left pending, got %s", stored.Status)
	}
}

func TestDispatcher_TransportError(t *testing.T) {
	f := newFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	e := f.addEndpoint(t, url)

	deliveries, err := f.dispatcher.Dispatch(context.Background(), notifications.KindCheck, "x")
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	stored, _ := f.deliveries.GetByID(deliveries[0].ID)
	if stored.Status != models.DeliveryStatusFailed || stored.ResponseCode != 0 || stored.LastError == "" {
		t.Errorf("Expected transport failure to be recorded, got %+v", stored)
	}
	endpoint, _ := f.endpoints.GetByID(e.ID)
	if endpoint.RetryCount != 1 {
		t.Errorf("Expected retry count 1, got %d", endpoint.RetryCount)
	}
}

// brokenBookkeeping fails every endpoint bookkeeping update.
type brokenBookkeeping struct {
	*repositories.EndpointRepository
}

func (brokenBookkeeping) UpdateLastTriggered(string, int64) error {
	return errors.New("database is locked")
}
func (brokenBookkeeping) ResetRetryCount(string) error { return errors.New("database is locked") }

func TestDispatcher_BookkeepingErrorsAreLogged(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = previous }()

	rec := &recorder{status: http.StatusOK}
	server := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer server.Close()
	f.addEndpoint(t, server.URL)

	dispatcher := NewDispatcher(brokenBookkeeping{f.endpoints}, f.deliveries, notifications.NewTestingGateway(testKeys{}), 5*time.Second, nil)
	if _, err := dispatcher.Dispatch(context.Background(), notifications.KindCheck, "x"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"failed to record endpoint trigger time", "failed to reset endpoint retry count"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log line %q, got:\n%s", want, out)
		}
	}
}
