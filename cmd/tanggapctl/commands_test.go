package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linnemanlabs/tanggap/internal/complaint"
)

func modelPath(t *testing.T) string {
	t.Helper()
	return filepath.Join("..", "..", "models", "sentiment.yaml")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	outputFmt = "table"
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestAnalyzeCmd(t *testing.T) {
	cmd := analyzeCmd()
	require.NotNil(t, cmd)

	assert.Equal(t, "analyze [text]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	modelFlag := cmd.Flags().Lookup("model")
	require.NotNil(t, modelFlag)
	assert.Equal(t, "m", modelFlag.Shorthand)
}

func TestAnalyze_Table(t *testing.T) {
	out, err := run(t, "analyze", "-m", modelPath(t), "ada", "kebakaran", "di", "pasar", "tolong", "segera")
	require.NoError(t, err)

	assert.Contains(t, out, "Sentiment:")
	assert.Contains(t, out, "negatif")
	assert.Contains(t, out, "Sangat Mendesak")
}

func TestAnalyze_JSON(t *testing.T) {
	out, err := run(t, "analyze", "-m", modelPath(t), "-o", "json", "terima kasih pelayanan petugas cepat dan ramah")
	require.NoError(t, err)

	var a complaint.Analysis
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, "positif", a.Sentiment)
	assert.Equal(t, complaint.PriorityLow, a.Priority)
	assert.Greater(t, a.Confidence, 0.0)
}

func TestAnalyze_Errors(t *testing.T) {
	_, err := run(t, "analyze")
	assert.Error(t, err, "text is required")

	_, err = run(t, "analyze", "-m", filepath.Join(t.TempDir(), "none.yaml"), "banjir")
	assert.ErrorContains(t, err, "failed to load model")

	_, err = run(t, "analyze", "-m", modelPath(t), "-o", "xml", "banjir besar")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestStatusCmd(t *testing.T) {
	cmd := statusCmd()
	require.NotNil(t, cmd)

	assert.Equal(t, "status [tracking-id]", cmd.Use)
	require.NotNil(t, cmd.Flags().Lookup("server"))
	require.NotNil(t, cmd.Flags().Lookup("timeout"))
}

func TestStatus(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/complaints/TG-2026-0042":
			_ = json.NewEncoder(w).Encode(complaint.Complaint{
				TrackingID: "TG-2026-0042",
				Category:   "infrastruktur",
				Location:   "Jl. Merdeka",
				Sentiment:  "negatif",
				Priority:   complaint.PriorityHigh,
				Status:     complaint.StatusInProgress,
				AdminNotes: "tim sudah dikirim",
				CreatedAt:  created,
				UpdatedAt:  created.Add(time.Hour),
			})
		case "/api/v1/complaints/TG-2026-0500":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"internal error"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	out, err := run(t, "status", "--server", srv.URL+"/", "TG-2026-0042")
	require.NoError(t, err)
	assert.Contains(t, out, "TG-2026-0042")
	assert.Contains(t, out, complaint.StatusInProgress.Label())
	assert.Contains(t, out, "tim sudah dikirim")

	out, err = run(t, "status", "--server", srv.URL, "-o", "json", "TG-2026-0042")
	require.NoError(t, err)
	var c complaint.Complaint
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, complaint.StatusInProgress, c.Status)

	_, err = run(t, "status", "--server", srv.URL, "TG-2026-9999")
	assert.ErrorContains(t, err, "not found")

	_, err = run(t, "status", "--server", srv.URL, "TG-2026-0500")
	assert.ErrorContains(t, err, "internal error")
}
