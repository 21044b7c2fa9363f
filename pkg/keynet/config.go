package keynet

import (
	"encoding/json"

	"github.com/BurntSushi/toml"
)

// ConfigData mirrors the optional keynet.toml file. Command-line flags win
// over file values; file values win over the built-in defaults.
type ConfigData struct {
	KeyDirectory   string
	PemPath        string
	RSAKeyPath     string
	RSAMaxAttempts int
}

func (c ConfigData) String() string {
	by, _ := json.Marshal(c)
	return string(by)
}

// DefaultConfig is what generate-config writes.
func DefaultConfig() ConfigData {
	return ConfigData{
		KeyDirectory:   "keys",
		PemPath:        "keynet_tls.pem",
		RSAKeyPath:     "secret_id_key",
		RSAMaxAttempts: RSAMaxAttempts,
	}
}

// LoadConfigFile decodes a keynet.toml.
func LoadConfigFile(path string) (ConfigData, error) {
	var c ConfigData
	_, err := toml.DecodeFile(path, &c)
	return c, err
}
