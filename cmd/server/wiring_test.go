package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/linnemanlabs/go-core/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vc "github.com/linnemanlabs/tanggap/internal/cfg"
	"github.com/linnemanlabs/tanggap/internal/complaint/memstore"
	"github.com/linnemanlabs/tanggap/internal/llm/claude"
	"github.com/linnemanlabs/tanggap/internal/notify"
	"github.com/linnemanlabs/tanggap/internal/sentiment/nbayes"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tanggap.env")
	require.NoError(t, os.WriteFile(path, []byte("TANGGAP_TEST_FROM_FILE=file\nTANGGAP_TEST_PRESET=file\n"), 0o600))

	t.Setenv("TANGGAP_TEST_PRESET", "env")
	t.Setenv("TANGGAP_TEST_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("TANGGAP_TEST_FROM_FILE"))

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "file", os.Getenv("TANGGAP_TEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("TANGGAP_TEST_PRESET"), "environment must win over the file")
}

func TestLoadEnvFile_Missing(t *testing.T) {
	t.Chdir(t.TempDir())

	// default file may be absent
	assert.NoError(t, loadEnvFile(""))
	// an explicit file must exist
	assert.Error(t, loadEnvFile(filepath.Join(t.TempDir(), "nope.env")))
}

func TestBuildStore_Memory(t *testing.T) {
	t.Parallel()

	s, closeFn, err := buildStore(context.Background(), &vc.Config{})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &memstore.Store{}, s)
}

func TestBuildClassifier(t *testing.T) {
	t.Parallel()

	model := filepath.Join(t.TempDir(), "m.yaml")
	require.NoError(t, os.WriteFile(model, []byte(`
classes:
  - label: negatif
    documents: 1
    tokens: {banjir: 1}
  - label: positif
    documents: 1
    tokens: {bagus: 1}
`), 0o600))

	c, err := buildClassifier(&vc.Config{Classifier: vc.ClassifierNBayes, ModelPath: model}, log.Nop())
	require.NoError(t, err)
	assert.IsType(t, &nbayes.Model{}, c)

	c, err = buildClassifier(&vc.Config{Classifier: vc.ClassifierClaude, ClaudeAPIKey: "k"}, log.Nop())
	require.NoError(t, err)
	assert.IsType(t, &claude.Classifier{}, c)

	c, err = buildClassifier(&vc.Config{Classifier: vc.ClassifierNone}, log.Nop())
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = buildClassifier(&vc.Config{Classifier: vc.ClassifierNBayes, ModelPath: filepath.Join(t.TempDir(), "x")}, log.Nop())
	assert.Error(t, err)

	_, err = buildClassifier(&vc.Config{Classifier: "bert"}, log.Nop())
	assert.Error(t, err)
}

func TestBuildNotifier(t *testing.T) {
	t.Parallel()

	m := notify.NewMetrics(prometheus.NewRegistry())

	n := buildNotifier(&vc.Config{CountryCode: "62"}, log.Nop(), m)
	assert.IsType(t, &notify.Dispatcher{}, n)

	n = buildNotifier(&vc.Config{CountryCode: "62", SlackWebhookURL: "http://127.0.0.1:1/hook"}, log.Nop(), m)
	fan, ok := n.(notify.Fanout)
	require.True(t, ok)
	assert.Len(t, fan, 2)
}
