package rdconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dekarrin/ddreduce/internal/rdconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_ParsesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ddreduce.toml")
	contents := `
[build]
command = "cargo"
args = ["--offline"]
timeout_seconds = 120

[history]
enabled = true
db_path = "history.db"

[server]
addr = ":8080"
trigger_secret_hash = "$2a$abc"

[report]
sign = true
jwt_secret = "topsecret"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := rdconfig.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "cargo", cfg.Build.Command)
	assert.Equal(t, []string{"--offline"}, cfg.Build.Args)
	assert.Equal(t, 120, cfg.Build.TimeoutSeconds)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "history.db", cfg.History.DBPath)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.True(t, cfg.Report.Sign)
	assert.Equal(t, "topsecret", cfg.Report.JWTSecret)
}

func Test_Load_MissingFile(t *testing.T) {
	_, err := rdconfig.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func Test_Load_EmptyBuildCommandRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ddreduce.toml")
	require.NoError(t, os.WriteFile(path, []byte("[build]\ncommand = \"\"\n"), 0644))

	_, err := rdconfig.Load(path)
	require.Error(t, err)
}

func Test_Default_HasCargoCommand(t *testing.T) {
	cfg := rdconfig.Default()
	assert.Equal(t, "cargo", cfg.Build.Command)
}
