package keynet

const (
	// secretKeyHeader is the fixed 32-byte prefix little-t-tor writes in
	// front of the expanded secret (29 header bytes + 3 NULs).
	secretKeyHeader = "== ed25519v1-secret: type0 ==\x00\x00\x00"
	// publicKeyHeader is the matching prefix of the public key file.
	publicKeyHeader = "== ed25519v1-public: type0 ==\x00\x00\x00"

	// SecretKeyFileSize is the exact size of a well-formed secret key file:
	// header + expanded secret + hash trailer.
	SecretKeyFileSize = 32 + 32 + 32
	// PublicKeyFileSize is the exact size of a well-formed public key file.
	PublicKeyFileSize = 32 + 32

	// SecretKeyFileName and PublicKeyFileName are the file names the daemon
	// expects inside its key directory.
	SecretKeyFileName = "ed25519_master_id_secret_key"
	PublicKeyFileName = "ed25519_master_id_public_key"

	// KeySize is the size of both the expanded secret and the public key.
	KeySize = 32

	// LabelSize is the length of the base32 label derived from a public key
	// (35 bytes of key+checksum+version encode to 56 characters).
	LabelSize = 56
	// labelVersion is the version byte appended to the label payload.
	labelVersion = 0x03
	// checksumPrefix is the domain separation string of the label checksum.
	// The daemon reuses the onion v3 constant verbatim, so we must too.
	checksumPrefix = ".onion checksum"

	// RSAKeyBits matches the legacy relay identity key sizing.
	RSAKeyBits = 1024
	// RSAMaxAttempts bounds the fingerprint search. A match on the first
	// byte takes 256 attempts on average, so hitting this ceiling signals a
	// logic bug rather than bad luck.
	RSAMaxAttempts = 10000
)
