package keynet

import (
	"crypto/rsa"
	"crypto/sha1"
	"encoding/asn1"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"keynet/pkg/brand"
)

func TestFindMatchingRSAKey(t *testing.T) {
	match, err := FindMatchingRSAKey(0xAB, RSAMaxAttempts)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xAB), match.Fingerprint[0])
	assert.Equal(t, 20, len(match.Fingerprint))
	assert.True(t, match.Attempts >= 1)
	assert.Equal(t, RSAKeyBits, match.Key.N.BitLen())

	// Re-derive the fingerprint independently: marshal the public key,
	// parse the DER back and hash it again.
	der, err := asn1.Marshal(match.Key.PublicKey)
	assert.NoError(t, err)
	var parsed rsa.PublicKey
	_, err = asn1.Unmarshal(der, &parsed)
	assert.NoError(t, err)
	reDer, err := asn1.Marshal(parsed)
	assert.NoError(t, err)
	sum := sha1.Sum(reDer)
	assert.Equal(t, match.Fingerprint, sum[:])
}

func TestFindMatchingRSAKeyCeiling(t *testing.T) {
	_, err := FindMatchingRSAKey(0x42, 0)
	assert.True(t, errors.Is(err, ErrMatchNotFound))
}

func TestRSAKeyFileRoundTrip(t *testing.T) {
	key, err := rsa.GenerateKey(brand.Reader(), RSAKeyBits)
	assert.NoError(t, err)
	want, err := RSAFingerprint(&key.PublicKey)
	assert.NoError(t, err)

	path := filepath.Join(t.TempDir(), "secret_id_key")
	assert.NoError(t, WriteRSAKeyFile(path, key))

	info, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, fingerprint, err := LoadRSAKeyFile(path)
	assert.NoError(t, err)
	assert.Equal(t, want, fingerprint)
	assert.Equal(t, 0, key.N.Cmp(loaded.N))
}

func TestLoadRSAKeyFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret_id_key")
	assert.NoError(t, os.WriteFile(path, []byte("not a pem"), 0600))
	_, _, err := LoadRSAKeyFile(path)
	assert.True(t, errors.Is(err, ErrCorruptKeyFile))
}
