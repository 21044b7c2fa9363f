package keynet

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// MarshalPKCS8PEM wraps the 32-byte expanded secret in a PKCS#8 PrivateKeyInfo
// envelope so a generic TLS terminator can load it. The scalar rides in the
// seed position of the ed25519 key; the envelope is the minimal 48-byte DER.
func MarshalPKCS8PEM(expandedSecret []byte) ([]byte, error) {
	if len(expandedSecret) != KeySize {
		return nil, fmt.Errorf("%w: expanded secret is %d bytes, want %d", ErrInvalidKeyLength, len(expandedSecret), KeySize)
	}
	der, err := x509.MarshalPKCS8PrivateKey(ed25519.NewKeyFromSeed(expandedSecret))
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// WritePKCS8PEM writes the PEM export of expandedSecret to path, owner-only.
func WritePKCS8PEM(path string, expandedSecret []byte) error {
	pemBytes, err := MarshalPKCS8PEM(expandedSecret)
	if err != nil {
		return err
	}
	return os.WriteFile(path, pemBytes, 0600)
}
