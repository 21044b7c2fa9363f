package keynet

import "errors"

var (
	// ErrInvalidKeyLength reports key material of the wrong size passed to a
	// pure function. Callers must treat it as a programming error.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrCorruptKeyFile reports an on-disk key file with a wrong size or
	// header. Never auto-repaired: regenerating would silently rotate the
	// service identity.
	ErrCorruptKeyFile = errors.New("corrupt key file")

	// ErrCorruptLabel reports a label that fails structural or checksum
	// validation.
	ErrCorruptLabel = errors.New("corrupt label")

	// ErrMatchNotFound reports an exhausted RSA fingerprint search.
	ErrMatchNotFound = errors.New("rsa fingerprint match not found")
)
