package webhooks

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
)

// Sign returns the lowercase hex HMAC-SHA1 of payload. The MAC key is the
// SHA1 digest of secret, not secret itself, matching the digest the gateway
// puts after the "|" in a real webhook signature.
func Sign(secret string, payload []byte) string {
	key := sha1.Sum([]byte(secret))
	h := hmac.New(sha1.New, key[:])
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// PublicKeySignaturePair builds the "publicKey|hexDigest" value sent alongside
// a payload. Keys are not validated; empty keys still yield a well-formed pair.
func PublicKeySignaturePair(publicKey, privateKey, payload string) string {
	return publicKey + "|" + Sign(privateKey, []byte(payload))
}
