package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, 4500, cfg.BatchSize)
}

func TestLoadParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farscan.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
batch_size = 2500
timeout = 1000
tries = 1
scan_order = "random"
addresses = ["127.0.0.1"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2500, cfg.BatchSize)
	assert.Equal(t, "random", cfg.ScanOrder)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.Addresses)
}

func TestValidateRejectsRangeAndPortsTogether(t *testing.T) {
	cfg := Default()
	cfg.Range = "1-100"
	cfg.Ports = []int{80}
	assert.Error(t, cfg.Validate())
}
