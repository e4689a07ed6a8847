package notifications

import (
	"time"

	"webhooksandbox/internal/engine/webhooks"
)

const (
	PayloadField   = "bt_payload"
	SignatureField = "bt_signature"
)

// Credentials supplies the key pair used to sign samples. Values are opaque
// and are never validated here.
type Credentials interface {
	GetPublicKey() string
	GetPrivateKey() string
}

// Sample is a signed notification ready to be fed into webhook parsing code.
type Sample struct {
	Payload   string `json:"bt_payload"`
	Signature string `json:"bt_signature"`
}

// Fields returns the sample keyed by its form field names.
func (s Sample) Fields() map[string]string {
	return map[string]string{
		PayloadField:   s.Payload,
		SignatureField: s.Signature,
	}
}

// TestingGateway fabricates signed sample notifications.
type TestingGateway struct {
	credentials Credentials
	builder     *PayloadBuilder
}

type Option func(*TestingGateway)

// WithClock overrides the clock used for the <timestamp> element.
func WithClock(now func() time.Time) Option {
	return func(g *TestingGateway) {
		g.builder.now = now
	}
}

func NewTestingGateway(credentials Credentials, opts ...Option) *TestingGateway {
	g := &TestingGateway{
		credentials: credentials,
		builder:     NewPayloadBuilder(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Sample builds and signs a notification of kind about id.
func (g *TestingGateway) Sample(kind Kind, id string) Sample {
	payload := g.builder.BuildPayload(kind, id)
	return Sample{
		Payload:   payload,
		Signature: g.sign(payload),
	}
}

// SampleNotification returns the bt_payload / bt_signature pair.
func (g *TestingGateway) SampleNotification(kind Kind, id string) map[string]string {
	return g.Sample(kind, id).Fields()
}

func (g *TestingGateway) sign(payload string) string {
	return webhooks.PublicKeySignaturePair(g.credentials.GetPublicKey(), g.credentials.GetPrivateKey(), payload)
}
