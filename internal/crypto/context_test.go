package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeyPair(t *testing.T, dir string) (pubPath, privPath string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPath = filepath.Join(dir, "private.key")
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))

	pubPath = filepath.Join(dir, "public.key")
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o600))

	return pubPath, privPath
}

func TestLoadContext(t *testing.T) {
	t.Run("loads a PEM keypair and round-trips", func(t *testing.T) {
		pubPath, privPath := writeKeyPair(t, t.TempDir())

		c, err := LoadContext(pubPath, privPath)
		require.NoError(t, err)

		envelope, err := c.Seal("push123", "demo")
		require.NoError(t, err)
		token, err := c.Open(envelope, "demo")
		require.NoError(t, err)
		assert.Equal(t, "push123", token)
	})

	t.Run("fails on missing public key file", func(t *testing.T) {
		dir := t.TempDir()
		_, privPath := writeKeyPair(t, dir)

		_, err := LoadContext(filepath.Join(dir, "nope.key"), privPath)
		assert.Error(t, err)
	})

	t.Run("fails on missing private key file", func(t *testing.T) {
		dir := t.TempDir()
		pubPath, _ := writeKeyPair(t, dir)

		_, err := LoadContext(pubPath, filepath.Join(dir, "nope.key"))
		assert.Error(t, err)
	})

	t.Run("fails on non-PEM content", func(t *testing.T) {
		dir := t.TempDir()
		_, privPath := writeKeyPair(t, dir)
		badPath := filepath.Join(dir, "bad.key")
		require.NoError(t, os.WriteFile(badPath, []byte("not a key"), 0o600))

		_, err := LoadContext(badPath, privPath)
		assert.Error(t, err)
	})
}
