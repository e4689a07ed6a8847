package webhooks

import (
	"regexp"
	"testing"
)

func TestSign(t *testing.T) {
	secret := "secret"
	payload := []byte("payload")

	// Calculated using:
	// echo -n "payload" | openssl dgst -sha1 -mac HMAC -macopt hexkey:$(echo -n "secret" | sha1sum | cut -d' ' -f1)
	expected := "275bbfd19311468a4abe044f3ba7df5111d1f415"

	got := Sign(secret, payload)

	if got != expected {
		t.Errorf("Sign() = %v, want %v", got, expected)
	}
}

func TestSign_KnownVectors(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		payload string
		want    string
	}{
		{name: "Gateway Private Key", secret: "integration_private_key", payload: "PG5vdGlmaWNhdGlvbj4=", want: "86d21207127ae37bddedf3cdd48caf60a4bdea53"},
		{name: "Empty Secret", secret: "", payload: "abc", want: "65474448ae4bd36e3f7bfc8648ff62812defd5de"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sign(tt.secret, []byte(tt.payload)); got != tt.want {
				t.Errorf("Sign() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSign_KeyIsDigestOfSecret(t *testing.T) {
	// Keying with the raw secret gives the plain HMAC, which receivers reject.
	rawKeyed := "f75efc0f29bf50c23f99b30b86f7c78fdaf5f11d"

	if got := Sign("secret", []byte("payload")); got == rawKeyed {
		t.Errorf("Sign() keyed HMAC with the raw secret")
	}
}

func TestPublicKeySignaturePair(t *testing.T) {
	pattern := regexp.MustCompile(`^[^|]+\|[0-9a-f]{40}$`)

	tests := []struct {
		name       string
		publicKey  string
		privateKey string
		payload    string
	}{
		{name: "Typical Keys", publicKey: "integration_public_key", privateKey: "integration_private_key", payload: "PG5vdGlmaWNhdGlvbj4="},
		{name: "Empty Private Key", publicKey: "pub", privateKey: "", payload: "abc"},
		{name: "Empty Payload", publicKey: "pub", privateKey: "priv", payload: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PublicKeySignaturePair(tt.publicKey, tt.privateKey, tt.payload)
			if !pattern.MatchString(got) {
				t.Errorf("PublicKeySignaturePair() = %q, does not match %s", got, pattern)
			}
			want := tt.publicKey + "|" + Sign(tt.privateKey, []byte(tt.payload))
			if got != want {
				t.Errorf("PublicKeySignaturePair() = %q, want %q", got, want)
			}
		})
	}
}

func TestPublicKeySignaturePair_EmptyPublicKey(t *testing.T) {
	got := PublicKeySignaturePair("", "priv", "payload")
	if got[0] != '|' || len(got) != 41 {
		t.Errorf("PublicKeySignaturePair() = %q, want \"|<40 hex>\"", got)
	}
}
