package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmarankit/Money-Stories-Final/internal/config"
	"github.com/kmarankit/Money-Stories-Final/internal/infrastructure"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/events"
)

const statement = `Statement of Profit and Loss for the year ended 31 March 2024

| Particulars | FY24 | FY23 |
| Revenue from operations | 1,200 | 1,000 |
| Other expenses | (35) | (30) |`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.Upload.Dir = t.TempDir()
	cfg.Extraction.Mode = string(domain.ExtractionModeHeuristic)
	cfg.Extraction.LlamaCloudAPIKey = ""
	cfg.Extraction.GeminiAPIKey = ""
	return cfg
}

func newTestApplication(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = a.Stop(context.Background())
		infrastructure.ResetLoggerForTesting()
	})
	return a
}

func serve(a *Application, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func TestNew(t *testing.T) {
	a := newTestApplication(t, testConfig(t))

	require.NotNil(t, a.Router)
	require.NotNil(t, a.Server)
	require.NotNil(t, a.Services)
	assert.NotNil(t, a.Services.Report)
	assert.NotNil(t, a.WebSocketHub)
	assert.Equal(t, ":8000", a.Server.Addr)
	assert.Equal(t, domain.ExtractionModeHeuristic, a.Services.Report.Mode())
	assert.False(t, a.Services.Parser.Configured())
	assert.DirExists(t, a.Config.Upload.Dir)
}

func TestHealthRoutes(t *testing.T) {
	a := newTestApplication(t, testConfig(t))

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "backend", body["service"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	// LlamaParse is required for uploads and has no key here.
	rec = serve(a, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConvertEndToEnd(t *testing.T) {
	a := newTestApplication(t, testConfig(t))

	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(
		`{"text":`+jsonString(statement)+`,"filename":"fy24.md"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "e2e-1")
	rec := serve(a, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp domain.ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "e2e-1", resp.RequestID)
	require.NotNil(t, resp.ExcelBuffer)
	assert.NotEmpty(t, *resp.ExcelBuffer)
	require.Len(t, resp.FinancialData.PnL, 1)
}

func TestUploadWithoutParserKey(t *testing.T) {
	a := newTestApplication(t, testConfig(t))

	body := strings.NewReader("--b\r\nContent-Disposition: form-data; name=\"file\"; filename=\"a.pdf\"\r\n" +
		"Content-Type: application/pdf\r\n\r\n%PDF-1.7\r\n--b--\r\n")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	rec := serve(a, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "LLAMA_CLOUD_API_KEY")
}

func TestUnknownRouteIsProblem(t *testing.T) {
	a := newTestApplication(t, testConfig(t))

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestCORSPreflight(t *testing.T) {
	a := newTestApplication(t, testConfig(t))

	req := httptest.NewRequest(http.MethodOptions, "/api/upload", nil)
	req.Header.Set("Origin", "http://127.0.0.1:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(a, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://127.0.0.1:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.example")
	rec = serve(a, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	a := newTestApplication(t, testConfig(t))

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestWebSocketReceivesProgress(t *testing.T) {
	a := newTestApplication(t, testConfig(t))
	srv := httptest.NewServer(a.Router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?request_id=ws-1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() events.WebSocketMessage {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg events.WebSocketMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}
	assert.Equal(t, events.MessageTypeConnect, read().Type)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/convert",
		strings.NewReader(`{"text":`+jsonString(statement)+`}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "ws-1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stages []string
	for {
		msg := read()
		data, ok := msg.Data.(map[string]interface{})
		require.True(t, ok)
		stage, _ := data["stage"].(string)
		stages = append(stages, stage)
		if events.Stage(stage).Terminal() {
			break
		}
	}
	assert.Equal(t, string(events.StageReceived), stages[0])
	assert.Equal(t, string(events.StageCompleted), stages[len(stages)-1])
}

func TestWebSocketDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.WebSocket.Enabled = false
	a := newTestApplication(t, cfg)

	assert.Nil(t, a.WebSocketHub)
	rec := serve(a, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStopWithoutStart(t *testing.T) {
	a, err := New(testConfig(t))
	require.NoError(t, err)
	defer infrastructure.ResetLoggerForTesting()

	assert.NoError(t, a.Stop(context.Background()))
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
