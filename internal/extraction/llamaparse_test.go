package extraction

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmarankit/Money-Stories-Final/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeParseAPI struct {
	pendingPolls int32
	finalStatus  string
	uploadStatus int

	polls      int32
	gotFile    string
	gotBody    string
	gotAuth    string
	gotPremium string
}

func (f *fakeParseAPI) router() http.Handler {
	r := chi.NewRouter()
	r.Post("/api/parsing/upload", func(w http.ResponseWriter, r *http.Request) {
		if f.uploadStatus != 0 {
			http.Error(w, "quota exceeded", f.uploadStatus)
			return
		}
		f.gotAuth = r.Header.Get("Authorization")
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		body, _ := io.ReadAll(file)
		f.gotFile = header.Filename
		f.gotBody = string(body)
		f.gotPremium = r.FormValue("premium_mode")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": JobPending})
	})
	r.Get("/api/parsing/job/{id}", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&f.polls, 1)
		status := JobPending
		if n > f.pendingPolls {
			status = f.finalStatus
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": chi.URLParam(r, "id"), "status": status})
	})
	r.Get("/api/parsing/job/{id}/result/markdown", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"markdown": "| Particulars | FY25 |\n| Revenue | 10 |"})
	})
	return r
}

func writeTempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644))
	return path
}

func testExtractionConfig(baseURL string) config.ExtractionConfig {
	cfg := config.Default().Extraction
	cfg.LlamaCloudAPIKey = "llx-test"
	cfg.LlamaParseBaseURL = baseURL
	cfg.PollInterval = 5 * time.Millisecond
	cfg.ParseTimeout = 5 * time.Second
	return cfg
}

func TestLlamaParseDocument(t *testing.T) {
	api := &fakeParseAPI{pendingPolls: 2, finalStatus: JobSuccess}
	srv := httptest.NewServer(api.router())
	defer srv.Close()

	client := NewLlamaParseClient(testExtractionConfig(srv.URL+"/"), discardLogger())
	markdown, err := client.ParseDocument(context.Background(), writeTempPDF(t))
	require.NoError(t, err)

	assert.Equal(t, "| Particulars | FY25 |\n| Revenue | 10 |", markdown)
	assert.Equal(t, "Bearer llx-test", api.gotAuth)
	assert.Equal(t, "report.pdf", api.gotFile)
	assert.Equal(t, "%PDF-1.4 test", api.gotBody)
	assert.Equal(t, "true", api.gotPremium)
	assert.Equal(t, int32(3), atomic.LoadInt32(&api.polls))
}

func TestLlamaParseFailures(t *testing.T) {
	tests := []struct {
		name    string
		api     *fakeParseAPI
		wantErr error
	}{
		{"job error", &fakeParseAPI{finalStatus: JobError}, ErrExtractionFailed},
		{"job canceled", &fakeParseAPI{pendingPolls: 1, finalStatus: JobCanceled}, ErrExtractionFailed},
		{"upload rejected", &fakeParseAPI{uploadStatus: http.StatusPaymentRequired}, ErrExtractionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.api.router())
			defer srv.Close()

			client := NewLlamaParseClient(testExtractionConfig(srv.URL), discardLogger())
			_, err := client.ParseDocument(context.Background(), writeTempPDF(t))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLlamaParseTimeout(t *testing.T) {
	api := &fakeParseAPI{pendingPolls: 1 << 20, finalStatus: JobSuccess}
	srv := httptest.NewServer(api.router())
	defer srv.Close()

	cfg := testExtractionConfig(srv.URL)
	cfg.ParseTimeout = 50 * time.Millisecond
	client := NewLlamaParseClient(cfg, discardLogger())

	_, err := client.ParseDocument(context.Background(), writeTempPDF(t))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLlamaParseNotConfigured(t *testing.T) {
	client := NewLlamaParseClient(config.Default().Extraction, discardLogger())
	assert.False(t, client.Configured())

	_, err := client.ParseDocument(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "LLAMA_CLOUD_API_KEY not set")
}

func TestLlamaParseMissingFile(t *testing.T) {
	client := NewLlamaParseClient(testExtractionConfig("http://127.0.0.1:1"), discardLogger())
	_, err := client.ParseDocument(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
