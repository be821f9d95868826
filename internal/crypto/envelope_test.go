package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) *Context {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewContext(&key.PublicKey, key)
}

// sealRaw encrypts an arbitrary payload the way Seal does, for crafting
// envelopes with missing fields.
func sealRaw(t *testing.T, c *Context, payload any) string {
	t.Helper()
	plaintext, err := json.Marshal(payload)
	require.NoError(t, err)
	ciphertext, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, c.public, plaintext, nil)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(ciphertext)
}

func TestSealOpen(t *testing.T) {
	c := testContext(t)

	t.Run("round trip returns the original token", func(t *testing.T) {
		envelope, err := c.Seal("push123", "demo")
		require.NoError(t, err)

		token, err := c.Open(envelope, "demo")
		require.NoError(t, err)
		assert.Equal(t, "push123", token)
	})

	t.Run("envelope is base64 and opaque", func(t *testing.T) {
		envelope, err := c.Seal("push123", "demo")
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(envelope)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "push123")
	})

	t.Run("sealing the same token twice yields distinct envelopes", func(t *testing.T) {
		a, err := c.Seal("push123", "demo")
		require.NoError(t, err)
		b, err := c.Seal("push123", "demo")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("decrypted record carries token and appname", func(t *testing.T) {
		key := testContext(t)
		envelope, err := key.Seal("push123", "demo")
		require.NoError(t, err)

		ciphertext, err := base64.StdEncoding.DecodeString(envelope)
		require.NoError(t, err)
		plaintext, err := rsa.DecryptOAEP(sha1.New(), rand.Reader, key.private, ciphertext, nil)
		require.NoError(t, err)

		var record map[string]string
		require.NoError(t, json.Unmarshal(plaintext, &record))
		assert.Equal(t, "push123", record["token"])
		assert.Equal(t, "demo", record["appname"])
	})
}

func TestOpenFailures(t *testing.T) {
	c := testContext(t)

	t.Run("rejects mismatched appname", func(t *testing.T) {
		envelope, err := c.Seal("push123", "demo")
		require.NoError(t, err)

		_, err = c.Open(envelope, "other-app")
		assert.ErrorIs(t, err, ErrAppNameMismatch)
	})

	t.Run("rejects garbage base64", func(t *testing.T) {
		_, err := c.Open("no sirree", "demo")
		assert.ErrorIs(t, err, ErrMalformedEnvelope)
	})

	t.Run("rejects ciphertext from a different keypair", func(t *testing.T) {
		other := testContext(t)
		envelope, err := other.Seal("push123", "demo")
		require.NoError(t, err)

		_, err = c.Open(envelope, "demo")
		assert.ErrorIs(t, err, ErrMalformedEnvelope)
	})

	t.Run("rejects record without a token entry", func(t *testing.T) {
		envelope := sealRaw(t, c, map[string]string{"appname": "demo"})

		_, err := c.Open(envelope, "demo")
		assert.ErrorIs(t, err, ErrMalformedEnvelope)
	})

	t.Run("rejects non-record plaintext", func(t *testing.T) {
		envelope := sealRaw(t, c, "just a string")

		_, err := c.Open(envelope, "demo")
		assert.ErrorIs(t, err, ErrMalformedEnvelope)
	})
}

func TestOpenLegacyRecords(t *testing.T) {
	c := testContext(t)

	t.Run("record without appname skips the mismatch check", func(t *testing.T) {
		envelope := sealRaw(t, c, map[string]string{"token": "push123"})

		token, err := c.Open(envelope, "demo")
		require.NoError(t, err)
		assert.Equal(t, "push123", token)
	})

	t.Run("no expected appname skips the mismatch check", func(t *testing.T) {
		envelope, err := c.Seal("push123", "demo")
		require.NoError(t, err)

		token, err := c.Open(envelope, "")
		require.NoError(t, err)
		assert.Equal(t, "push123", token)
	})
}
