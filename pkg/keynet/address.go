package keynet

import (
	"bytes"
	"encoding/base32"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// EncodeLabel turns a public key into the service's address label: base32 of
// key || checksum || version, lower case, 56 characters, no suffix. The
// label is a pure function of the key and is recomputed wherever needed.
func EncodeLabel(publicKey []byte) (string, error) {
	if len(publicKey) != KeySize {
		return "", fmt.Errorf("%w: public key is %d bytes, want %d", ErrInvalidKeyLength, len(publicKey), KeySize)
	}
	var checksumBytes bytes.Buffer
	checksumBytes.Write([]byte(checksumPrefix))
	checksumBytes.Write(publicKey)
	checksumBytes.Write([]byte{labelVersion})
	checksum := sha3.Sum256(checksumBytes.Bytes())

	var labelBytes bytes.Buffer
	labelBytes.Write(publicKey)
	labelBytes.Write(checksum[:2])
	labelBytes.Write([]byte{labelVersion})
	return strings.ToLower(base32.StdEncoding.EncodeToString(labelBytes.Bytes())), nil
}

// DecodeLabel converts a label back into its public key, verifying the
// version byte and checksum on the way.
func DecodeLabel(label string) ([]byte, error) {
	if len(label) != LabelSize {
		return nil, fmt.Errorf("%w: label is %d characters, want %d", ErrCorruptLabel, len(label), LabelSize)
	}
	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(label))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLabel, err)
	}
	publicKey := decoded[:32]
	expectedChecksum := decoded[32:34]
	version := decoded[34]
	if version != labelVersion {
		return nil, fmt.Errorf("%w: version byte %#x, want %#x", ErrCorruptLabel, version, labelVersion)
	}
	var checksumBytes bytes.Buffer
	checksumBytes.Write([]byte(checksumPrefix))
	checksumBytes.Write(publicKey)
	checksumBytes.Write([]byte{version})
	checksum := sha3.Sum256(checksumBytes.Bytes())
	if !bytes.Equal(expectedChecksum, checksum[:2]) {
		return nil, fmt.Errorf("%w: bad checksum (expected %x but was %x)", ErrCorruptLabel, expectedChecksum, checksum[:2])
	}
	return publicKey, nil
}
