package keynet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// SetupParams configures one run of the identity setup. The subsystem is
// single-owner: callers must guarantee no second process generates keys into
// the same directory.
type SetupParams struct {
	KeyDir          string
	PemPath         string
	RSAKeyPath      string
	ForceRegenerate bool
	RSAMaxAttempts  int
}

// Setup establishes the full relay identity and returns the address label:
// load or generate the ed25519 pair, export the PKCS#8 PEM for the TLS
// terminator, then load or search for the fingerprint-matched RSA key.
// Every failure is surfaced; nothing is retried or repaired silently.
func Setup(p SetupParams) (string, error) {
	if p.RSAMaxAttempts <= 0 {
		p.RSAMaxAttempts = RSAMaxAttempts
	}
	if err := os.MkdirAll(p.KeyDir, 0700); err != nil {
		return "", err
	}

	kp, created, err := loadOrGenerateKeyPair(p.KeyDir, p.ForceRegenerate)
	if err != nil {
		return "", err
	}
	if created {
		logrus.Warnf("Generated new identity key pair in %s", p.KeyDir)
		logrus.Warn("The daemon re-derives its public key file on first start; re-run the refresh command afterwards to confirm the advertised label")
	}

	if err := WritePKCS8PEM(p.PemPath, kp.ExpandedSecret); err != nil {
		return "", fmt.Errorf("write tls key: %w", err)
	}
	logrus.Infof("Wrote TLS signing key to %s", p.PemPath)

	if err := ensureRSAIdentity(p, kp.PublicKey[0], created); err != nil {
		return "", err
	}

	label, err := EncodeLabel(kp.PublicKey)
	if err != nil {
		return "", err
	}
	logrus.Warnf("Service label is %s", label)
	return label, nil
}

func loadOrGenerateKeyPair(keyDir string, force bool) (*KeyPair, bool, error) {
	if !force {
		kp, err := ReadKeyPairFiles(keyDir)
		if err == nil {
			ok, checkErr := CheckKeyPair(kp.ExpandedSecret, kp.PublicKey)
			if checkErr != nil {
				return nil, false, checkErr
			}
			if !ok {
				// The daemon derives with its own code and rewrites the
				// public key file on first start. The stored public key is
				// the identity the network actually sees, so it wins.
				logrus.Warnf("Stored public key in %s differs from our derivation; trusting the stored key", keyDir)
			}
			return kp, false, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, false, err
		}
	}

	kp, err := Generate()
	if err != nil {
		return nil, false, err
	}
	if err := WriteKeyPairFiles(keyDir, kp); err != nil {
		return nil, false, err
	}
	// Post-write sanity check on what actually landed on disk.
	stored, err := ReadKeyPairFiles(keyDir)
	if err != nil {
		return nil, false, err
	}
	ok, err := CheckKeyPair(stored.ExpandedSecret, stored.PublicKey)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, errors.New("freshly written key pair failed the derivation check")
	}
	return stored, true, nil
}

func ensureRSAIdentity(p SetupParams, targetFirstByte byte, identityCreated bool) error {
	if !p.ForceRegenerate && !identityCreated {
		if _, err := os.Stat(p.RSAKeyPath); err == nil {
			_, fingerprint, err := LoadRSAKeyFile(p.RSAKeyPath)
			if err != nil {
				return err
			}
			if fingerprint[0] == targetFirstByte {
				logrus.Infof("Loaded RSA identity key %s (fingerprint %x)", p.RSAKeyPath, fingerprint)
				return nil
			}
			logrus.Warnf("RSA fingerprint %x no longer matches the identity key, searching for a new one", fingerprint)
		}
	}

	match, err := FindMatchingRSAKey(targetFirstByte, p.RSAMaxAttempts)
	if err != nil {
		return err
	}
	if err := WriteRSAKeyFile(p.RSAKeyPath, match.Key); err != nil {
		return err
	}
	logrus.Infof("Found matching RSA identity key after %d attempts (fingerprint %x)", match.Attempts, match.Fingerprint)
	return nil
}

// RefreshLabel recomputes the label from the public key file alone. Run it
// after the daemon's first start, once the daemon has had the chance to
// rewrite the file with its own derivation.
func RefreshLabel(keyDir string) (string, error) {
	publicKey, err := ReadPublicKeyFile(filepath.Join(keyDir, PublicKeyFileName))
	if err != nil {
		return "", err
	}
	return EncodeLabel(publicKey)
}

// Check validates that the persisted key pair is mutually consistent.
func Check(keyDir string) error {
	kp, err := ReadKeyPairFiles(keyDir)
	if err != nil {
		return err
	}
	ok, err := CheckKeyPair(kp.ExpandedSecret, kp.PublicKey)
	if err != nil {
		return err
	}
	if !ok {
		derived, _ := DerivePublicKey(kp.ExpandedSecret)
		return fmt.Errorf("stored public key %x does not match derived key %x", kp.PublicKey, derived)
	}
	return nil
}

// ExportPEM re-exports the TLS signing key from an existing key directory.
func ExportPEM(keyDir, pemPath string) error {
	expanded, err := ReadSecretKeyFile(filepath.Join(keyDir, SecretKeyFileName))
	if err != nil {
		return err
	}
	return WritePKCS8PEM(pemPath, expanded)
}
