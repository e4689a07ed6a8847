package credentials

import (
	"testing"

	"github.com/zalando/go-keyring"

	"webhooksandbox/internal/platform/config"
)

func TestResolve(t *testing.T) {
	keyring.MockInit()

	if err := Store("sandbox", "keychain_private_key"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	tests := []struct {
		name        string
		cfg         config.GatewayConfig
		wantPrivate string
	}{
		{
			name:        "Config Private Key Wins",
			cfg:         config.GatewayConfig{PublicKey: "pub", PrivateKey: "config_private_key", KeychainAccount: "sandbox"},
			wantPrivate: "config_private_key",
		},
		{
			name:        "Keychain Fallback",
			cfg:         config.GatewayConfig{PublicKey: "pub", KeychainAccount: "sandbox"},
			wantPrivate: "keychain_private_key",
		},
		{
			name:        "Missing Keychain Entry",
			cfg:         config.GatewayConfig{PublicKey: "pub", KeychainAccount: "other"},
			wantPrivate: "",
		},
		{
			name:        "No Keychain Account",
			cfg:         config.GatewayConfig{PublicKey: "pub"},
			wantPrivate: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, err := Resolve(tt.cfg)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if keys.GetPublicKey() != "pub" {
				t.Errorf("Expected public key pub, got %s", keys.GetPublicKey())
			}
			if keys.GetPrivateKey() != tt.wantPrivate {
				t.Errorf("Expected private key %q, got %q", tt.wantPrivate, keys.GetPrivateKey())
			}
		})
	}
}
