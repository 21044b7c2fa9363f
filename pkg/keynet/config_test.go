package keynet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
)

func TestConfigFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keynet.toml")
	f, err := os.Create(path)
	assert.NoError(t, err)
	assert.NoError(t, toml.NewEncoder(f).Encode(DefaultConfig()))
	assert.NoError(t, f.Close())

	cfg, err := LoadConfigFile(path)
	assert.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFilePartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keynet.toml")
	assert.NoError(t, os.WriteFile(path, []byte("KeyDirectory = \"/var/lib/keynet\"\n"), 0600))

	cfg, err := LoadConfigFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "/var/lib/keynet", cfg.KeyDirectory)
	assert.Equal(t, "", cfg.PemPath)
}
