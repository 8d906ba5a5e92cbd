package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Cookie  string `json:"cookie"`
	DataDir string `json:"data_dir"`
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// session cookie
		cookie: "a=b",
		data_dir: "data",
	}`), 0o644))

	config, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, "a=b", config.Cookie)
	require.Equal(t, "data", config.DataDir)
}

func TestLocalOverrideWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "config.json5"),
		[]byte(`{cookie: "a=b", data_dir: "data"}`), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "config.local.json5"),
		[]byte(`{cookie: "c=d"}`), 0o644))

	config, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "c=d", config.Cookie)
	require.Equal(t, "data", config.DataDir)
}

func TestMissingConfig(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
