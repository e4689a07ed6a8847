package credentials

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"webhooksandbox/internal/platform/config"
)

const serviceName = "webhook-sandbox"

// Keys is the merchant key pair samples are signed with.
type Keys struct {
	PublicKey  string
	PrivateKey string
}

func (k *Keys) GetPublicKey() string {
	return k.PublicKey
}

func (k *Keys) GetPrivateKey() string {
	return k.PrivateKey
}

// Resolve builds the key pair from config. When no private key is configured
// and a keychain account is set, the private key is read from the system
// keychain instead. Empty keys are not an error.
func Resolve(cfg config.GatewayConfig) (*Keys, error) {
	keys := &Keys{
		PublicKey:  cfg.PublicKey,
		PrivateKey: cfg.PrivateKey,
	}

	if keys.PrivateKey != "" || cfg.KeychainAccount == "" {
		return keys, nil
	}

	secret, err := keyring.Get(serviceName, cfg.KeychainAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return keys, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read private key from keychain: %w", err)
	}

	keys.PrivateKey = secret
	return keys, nil
}

// Store saves a private key in the system keychain under account.
func Store(account, privateKey string) error {
	return keyring.Set(serviceName, account, privateKey)
}
