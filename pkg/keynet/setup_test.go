package keynet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func setupParams(dir string) SetupParams {
	return SetupParams{
		KeyDir:     filepath.Join(dir, "keys"),
		PemPath:    filepath.Join(dir, "tls.pem"),
		RSAKeyPath: filepath.Join(dir, "secret_id_key"),
	}
}

func TestSetupEndToEnd(t *testing.T) {
	p := setupParams(t.TempDir())

	label, err := Setup(p)
	assert.NoError(t, err)
	assert.Equal(t, LabelSize, len(label))

	// The label is the encoding of the persisted public key.
	storedPub, err := ReadPublicKeyFile(filepath.Join(p.KeyDir, PublicKeyFileName))
	assert.NoError(t, err)
	decoded, err := DecodeLabel(label)
	assert.NoError(t, err)
	assert.Equal(t, storedPub, decoded)

	// The RSA identity shares its fingerprint prefix with the public key.
	_, fingerprint, err := LoadRSAKeyFile(p.RSAKeyPath)
	assert.NoError(t, err)
	assert.Equal(t, storedPub[0], fingerprint[0])

	// TLS key exists and wraps the stored expanded secret.
	_, err = os.Stat(p.PemPath)
	assert.NoError(t, err)

	assert.Nil(t, Check(p.KeyDir))

	refreshed, err := RefreshLabel(p.KeyDir)
	assert.NoError(t, err)
	assert.Equal(t, label, refreshed)
}

func TestSetupIsStableAcrossRuns(t *testing.T) {
	p := setupParams(t.TempDir())

	first, err := Setup(p)
	assert.NoError(t, err)
	secretBefore, err := os.ReadFile(filepath.Join(p.KeyDir, SecretKeyFileName))
	assert.NoError(t, err)

	second, err := Setup(p)
	assert.NoError(t, err)
	assert.Equal(t, first, second)

	secretAfter, err := os.ReadFile(filepath.Join(p.KeyDir, SecretKeyFileName))
	assert.NoError(t, err)
	assert.Equal(t, secretBefore, secretAfter)
}

func TestSetupForceRegenerates(t *testing.T) {
	p := setupParams(t.TempDir())

	first, err := Setup(p)
	assert.NoError(t, err)

	p.ForceRegenerate = true
	second, err := Setup(p)
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)

	// The regenerated RSA identity must track the new public key.
	storedPub, err := ReadPublicKeyFile(filepath.Join(p.KeyDir, PublicKeyFileName))
	assert.NoError(t, err)
	_, fingerprint, err := LoadRSAKeyFile(p.RSAKeyPath)
	assert.NoError(t, err)
	assert.Equal(t, storedPub[0], fingerprint[0])
}

func TestSetupRejectsHalfIdentity(t *testing.T) {
	p := setupParams(t.TempDir())

	_, err := Setup(p)
	assert.NoError(t, err)
	assert.NoError(t, os.Remove(filepath.Join(p.KeyDir, PublicKeyFileName)))

	_, err = Setup(p)
	assert.True(t, errors.Is(err, ErrCorruptKeyFile))
}

func TestExportPEM(t *testing.T) {
	p := setupParams(t.TempDir())
	_, err := Setup(p)
	assert.NoError(t, err)

	exported := p.PemPath + ".copy"
	assert.NoError(t, ExportPEM(p.KeyDir, exported))

	want, err := os.ReadFile(p.PemPath)
	assert.NoError(t, err)
	got, err := os.ReadFile(exported)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCheckFailsOnTamperedPublicKey(t *testing.T) {
	p := setupParams(t.TempDir())
	_, err := Setup(p)
	assert.NoError(t, err)

	publicPath := filepath.Join(p.KeyDir, PublicKeyFileName)
	raw, err := os.ReadFile(publicPath)
	assert.NoError(t, err)
	raw[40] ^= 0x01
	assert.NoError(t, os.WriteFile(publicPath, raw, 0600))

	assert.NotNil(t, Check(p.KeyDir))
}
