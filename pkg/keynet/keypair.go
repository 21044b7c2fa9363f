package keynet

import (
	"bytes"
	"crypto/sha512"
	"fmt"

	"keynet/pkg/brand"
	"keynet/pkg/keynet/ext"
)

// KeyPair is a relay identity in the daemon's own representation: the stored
// "private key" is the expanded (hashed and clamped) scalar, not the seed.
type KeyPair struct {
	ExpandedSecret []byte
	PublicKey      []byte
}

// Generate draws a fresh seed, expands it the way little-t-tor does (sha512,
// then cofactor/high-bit clamping) and derives the matching public key. The
// original seed is discarded: only the expanded scalar is ever persisted.
func Generate() (*KeyPair, error) {
	seed := make([]byte, KeySize)
	if _, err := brand.Read(seed); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	h := sha512.Sum512(seed)
	expanded := make([]byte, KeySize)
	copy(expanded, h[:KeySize])
	expanded[0] &= 248
	expanded[31] &= 127
	expanded[31] |= 64

	pub, err := DerivePublicKey(expanded)
	if err != nil {
		return nil, err
	}
	return &KeyPair{ExpandedSecret: expanded, PublicKey: pub}, nil
}

// DerivePublicKey recomputes the public key from a stored expanded secret:
// little-endian scalar, reduced modulo the group order, times the base
// point. This must stay bit-for-bit equal to what the daemon computes when
// it regenerates its own public key file, otherwise the label we advertise
// diverges from the one the daemon serves.
func DerivePublicKey(expandedSecret []byte) ([]byte, error) {
	if len(expandedSecret) != KeySize {
		return nil, fmt.Errorf("%w: expanded secret is %d bytes, want %d", ErrInvalidKeyLength, len(expandedSecret), KeySize)
	}
	return ext.PublicKeyFromScalar(expandedSecret), nil
}

// CheckKeyPair reports whether publicKey is the derivation of
// expandedSecret. Used as a post-write sanity check and by the check
// command.
func CheckKeyPair(expandedSecret, publicKey []byte) (bool, error) {
	if len(publicKey) != KeySize {
		return false, fmt.Errorf("%w: public key is %d bytes, want %d", ErrInvalidKeyLength, len(publicKey), KeySize)
	}
	derived, err := DerivePublicKey(expandedSecret)
	if err != nil {
		return false, err
	}
	return bytes.Equal(derived, publicKey), nil
}
