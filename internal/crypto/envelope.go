package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformedEnvelope means the envelope failed to decrypt or did not
	// contain a token record.
	ErrMalformedEnvelope = errors.New("malformed token envelope")
	// ErrAppNameMismatch means the envelope was minted for a different app.
	ErrAppNameMismatch = errors.New("envelope appname mismatch")
)

type envelopeRecord struct {
	Token   string `json:"token"`
	AppName string `json:"appname,omitempty"`
}

// Seal binds a push token to an application identity inside an
// RSA-OAEP-encrypted, base64-encoded envelope. The envelope is safe to hand
// to untrusted intermediaries: only the holder of the private key can ever
// recover the token.
func (c *Context) Seal(token, appName string) (string, error) {
	plaintext, err := json.Marshal(envelopeRecord{Token: token, AppName: appName})
	if err != nil {
		return "", fmt.Errorf("marshal envelope record: %w", err)
	}

	ciphertext, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, c.public, plaintext, nil)
	if err != nil {
		return "", fmt.Errorf("encrypt envelope: %w", err)
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open decrypts an envelope and returns the embedded push token.
//
// When the record embeds an appname and expectedAppName is non-empty, the
// two must match. A record without an appname skips the check entirely:
// envelopes minted by older deployments carried only the token, and they
// still have to open. That makes the check a binding of identity, not an
// authenticator.
func (c *Context) Open(envelope, expectedAppName string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	plaintext, err := rsa.DecryptOAEP(sha1.New(), rand.Reader, c.private, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	var record envelopeRecord
	if err := json.Unmarshal(plaintext, &record); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if record.Token == "" {
		return "", fmt.Errorf("%w: no token entry", ErrMalformedEnvelope)
	}

	if record.AppName != "" && expectedAppName != "" && record.AppName != expectedAppName {
		return "", fmt.Errorf("%w: %q vs %q", ErrAppNameMismatch, expectedAppName, record.AppName)
	}

	return record.Token, nil
}
