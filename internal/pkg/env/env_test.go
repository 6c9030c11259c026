package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	prev := Env
	t.Cleanup(func() { Env = prev })

	Env = map[string]string{"GIFTSCOUT_FROM_FILE": "file"}
	t.Setenv("GIFTSCOUT_FROM_FILE", "process")
	t.Setenv("GIFTSCOUT_ONLY_PROCESS", "process")

	assert.Equal(t, "file", GetEnv("GIFTSCOUT_FROM_FILE", "def"))
	assert.Equal(t, "process", GetEnv("GIFTSCOUT_ONLY_PROCESS", "def"))
	assert.Equal(t, "def", GetEnv("GIFTSCOUT_MISSING", "def"))
}

func TestSetupEnvFile(t *testing.T) {
	prev := Env
	t.Cleanup(func() { Env = prev })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_ENV=dev\n"), 0o600))
	chdir(t, dir)

	SetupEnvFile()
	assert.Equal(t, "dev", Env["APP_ENV"])
	assert.True(t, IsDev())
}

func TestSetupEnvFile_Missing(t *testing.T) {
	prev := Env
	t.Cleanup(func() { Env = prev })

	chdir(t, t.TempDir())

	SetupEnvFile()
	assert.NotNil(t, Env)
	assert.Empty(t, Env)
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
