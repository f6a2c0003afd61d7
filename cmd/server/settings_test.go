package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("tanggap", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestLoadSettings_Version(t *testing.T) {
	s, err := loadSettings(newFlagSet(), []string{"-V"}, io.Discard)
	require.NoError(t, err)
	assert.True(t, s.showVersion)
}

func TestLoadSettings_Defaults(t *testing.T) {
	t.Setenv("TANGGAP_ENV_FILE", "")

	s, err := loadSettings(newFlagSet(), nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 8080, s.app.APIPort)
	assert.Equal(t, "nbayes", s.app.Classifier)
	assert.Equal(t, "Asia/Jakarta", s.app.TimeZone)
}

func TestLoadSettings_InvalidClassifier(t *testing.T) {
	_, err := loadSettings(newFlagSet(), []string{"-classifier=bert"}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLASSIFIER")
}

func TestLoadSettings_UnknownFlag(t *testing.T) {
	_, err := loadSettings(newFlagSet(), []string{"-no-such-flag"}, io.Discard)
	assert.Error(t, err)
}

func TestLoadSettings_Precedence(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "tanggap.env")
	require.NoError(t, os.WriteFile(envFile, []byte("TANGGAP_TIME_ZONE=Asia/Jayapura\nTANGGAP_COUNTRY_CODE=65\n"), 0o600))
	t.Setenv("TANGGAP_ENV_FILE", envFile)
	t.Setenv("TANGGAP_TIME_ZONE", "Asia/Makassar")
	t.Setenv("TANGGAP_COUNTRY_CODE", "")
	require.NoError(t, os.Unsetenv("TANGGAP_COUNTRY_CODE"))

	s, err := loadSettings(newFlagSet(), nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Makassar", s.app.TimeZone, "environment beats dotenv")
	assert.Equal(t, "65", s.app.CountryCode, "dotenv fills unset values")

	s, err = loadSettings(newFlagSet(), []string{"-time-zone=UTC"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "UTC", s.app.TimeZone, "flags beat environment")
}

func TestLoadSettings_MissingEnvFile(t *testing.T) {
	t.Setenv("TANGGAP_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	_, err := loadSettings(newFlagSet(), nil, io.Discard)
	assert.ErrorContains(t, err, "load env file")
}
