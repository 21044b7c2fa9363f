package keynet

import (
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"fmt"
	"os"

	"keynet/pkg/brand"
)

// The relay's legacy RSA identity. Relays are indexed by the SHA-1
// fingerprint of this key, so a keypair whose fingerprint starts with the
// same byte as the ed25519 public key makes the relay cheap to locate in a
// large relay set. The keypair is found by rejection sampling: around 256
// generations on average for a one-byte prefix.

// RSAMatch is the outcome of a fingerprint search.
type RSAMatch struct {
	Key         *rsa.PrivateKey
	Fingerprint []byte
	Attempts    int
}

// RSAFingerprint is the SHA-1 digest of the PKCS#1 DER encoding of pub,
// which is how the relay directory identifies RSA keys.
func RSAFingerprint(pub *rsa.PublicKey) ([]byte, error) {
	der, err := asn1.Marshal(*pub)
	if err != nil {
		return nil, err
	}
	sum := sha1.Sum(der)
	return sum[:], nil
}

// FindMatchingRSAKey generates 1024-bit RSA keypairs until one's fingerprint
// starts with targetFirstByte, up to maxAttempts. The attempt count is part
// of the result so callers can log how long the search ran.
func FindMatchingRSAKey(targetFirstByte byte, maxAttempts int) (*RSAMatch, error) {
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		key, err := rsa.GenerateKey(brand.Reader(), RSAKeyBits)
		if err != nil {
			return nil, fmt.Errorf("generate rsa key: %w", err)
		}
		fingerprint, err := RSAFingerprint(&key.PublicKey)
		if err != nil {
			return nil, err
		}
		if fingerprint[0] == targetFirstByte {
			return &RSAMatch{Key: key, Fingerprint: fingerprint, Attempts: attempts}, nil
		}
	}
	return nil, fmt.Errorf("%w: target %#02x after %d attempts", ErrMatchNotFound, targetFirstByte, maxAttempts)
}

// WriteRSAKeyFile persists the private key as PKCS#1 PEM, owner-only. The
// public key and fingerprint are always re-derivable, so nothing else is
// stored.
func WriteRSAKeyFile(path string, key *rsa.PrivateKey) error {
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	return os.WriteFile(path, pem.EncodeToMemory(block), 0600)
}

// LoadRSAKeyFile reads a previously persisted key and recomputes its
// fingerprint.
func LoadRSAKeyFile(path string) (*rsa.PrivateKey, []byte, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != "RSA PRIVATE KEY" {
		return nil, nil, fmt.Errorf("%w: %s is not a PKCS#1 RSA private key", ErrCorruptKeyFile, path)
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrCorruptKeyFile, path, err)
	}
	fingerprint, err := RSAFingerprint(&key.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	return key, fingerprint, nil
}
