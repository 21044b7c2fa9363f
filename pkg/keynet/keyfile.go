package keynet

import (
	"bytes"
	"crypto/sha512"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// On-disk framing of the daemon's two identity key files. The formats are
// externally dictated and parsed with strict lengths on the daemon side, so
// reads validate the full header and exact file size up front and writes
// reproduce every byte, including the hash trailer the derivation itself
// never looks at.

// WriteSecretKeyFile writes the 96-byte secret key file: header, expanded
// secret, then the upper half of sha512 over the expanded secret.
func WriteSecretKeyFile(path string, expandedSecret []byte) error {
	if len(expandedSecret) != KeySize {
		return fmt.Errorf("%w: expanded secret is %d bytes, want %d", ErrInvalidKeyLength, len(expandedSecret), KeySize)
	}
	trailer := sha512.Sum512(expandedSecret)
	buf := make([]byte, 0, SecretKeyFileSize)
	buf = append(buf, secretKeyHeader...)
	buf = append(buf, expandedSecret...)
	buf = append(buf, trailer[32:]...)
	return os.WriteFile(path, buf, 0600)
}

// WritePublicKeyFile writes the 64-byte public key file.
func WritePublicKeyFile(path string, publicKey []byte) error {
	if len(publicKey) != KeySize {
		return fmt.Errorf("%w: public key is %d bytes, want %d", ErrInvalidKeyLength, len(publicKey), KeySize)
	}
	buf := make([]byte, 0, PublicKeyFileSize)
	buf = append(buf, publicKeyHeader...)
	buf = append(buf, publicKey...)
	return os.WriteFile(path, buf, 0600)
}

// ReadSecretKeyFile validates the file and returns the 32-byte expanded
// secret. The trailer is not checked: the daemon recomputes it itself.
func ReadSecretKeyFile(path string) ([]byte, error) {
	return readKeyFile(path, secretKeyHeader, SecretKeyFileSize)
}

// ReadPublicKeyFile validates the file and returns the 32-byte public key.
func ReadPublicKeyFile(path string) ([]byte, error) {
	return readKeyFile(path, publicKeyHeader, PublicKeyFileSize)
}

func readKeyFile(path, header string, size int) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw) != size {
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrCorruptKeyFile, path, len(raw), size)
	}
	if !bytes.Equal(raw[:32], []byte(header)) {
		return nil, fmt.Errorf("%w: %s has a wrong header", ErrCorruptKeyFile, path)
	}
	key := make([]byte, KeySize)
	copy(key, raw[32:64])
	return key, nil
}

// WriteKeyPairFiles persists both halves of kp into keyDir. The secret file
// goes first; if the public file cannot be written the secret file is
// removed again so a failed generation never leaves a half identity behind.
func WriteKeyPairFiles(keyDir string, kp *KeyPair) error {
	secretPath := filepath.Join(keyDir, SecretKeyFileName)
	publicPath := filepath.Join(keyDir, PublicKeyFileName)
	if err := WriteSecretKeyFile(secretPath, kp.ExpandedSecret); err != nil {
		return err
	}
	if err := WritePublicKeyFile(publicPath, kp.PublicKey); err != nil {
		_ = os.Remove(secretPath)
		return err
	}
	return nil
}

// ReadKeyPairFiles loads both key files from keyDir. A directory holding
// only one of the two files is corrupt state, never silently repaired.
func ReadKeyPairFiles(keyDir string) (*KeyPair, error) {
	secret, secretErr := ReadSecretKeyFile(filepath.Join(keyDir, SecretKeyFileName))
	public, publicErr := ReadPublicKeyFile(filepath.Join(keyDir, PublicKeyFileName))
	if secretErr == nil && publicErr == nil {
		return &KeyPair{ExpandedSecret: secret, PublicKey: public}, nil
	}
	if errors.Is(secretErr, os.ErrNotExist) && errors.Is(publicErr, os.ErrNotExist) {
		return nil, secretErr
	}
	if secretErr != nil && publicErr != nil {
		if !errors.Is(secretErr, os.ErrNotExist) {
			return nil, secretErr
		}
		return nil, publicErr
	}
	if secretErr != nil {
		return nil, fmt.Errorf("%w: public key file present without %s (%v)", ErrCorruptKeyFile, SecretKeyFileName, secretErr)
	}
	return nil, fmt.Errorf("%w: secret key file present without %s (%v)", ErrCorruptKeyFile, PublicKeyFileName, publicErr)
}
