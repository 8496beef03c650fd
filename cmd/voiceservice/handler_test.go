package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/chengwenxing-cmd/VoiceService/internal/action"
	"github.com/chengwenxing-cmd/VoiceService/internal/dialogue"
	"github.com/chengwenxing-cmd/VoiceService/internal/service"
	"github.com/chengwenxing-cmd/VoiceService/internal/store"
	"github.com/chengwenxing-cmd/VoiceService/internal/strategy"
	"github.com/chengwenxing-cmd/VoiceService/internal/weather"
)

func init() { gin.SetMode(gin.TestMode) }

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	log := zaptest.NewLogger(t)
	intents := store.NewMemory()
	svc := service.New(
		dialogue.NewStore(dialogue.Config{}, log),
		strategy.NewDefaultChain(intents, nil, log),
		action.NewRegistry(action.Deps{Weather: weather.NewClient(weather.Config{}, log)}, log),
		intents,
		log,
	)
	cfg := defaultConfig()
	cfg.RateLimit = RateLimitConfig{RPS: 1000, Burst: 1000}
	return newEngine(NewIntentHandler(svc, log), cfg, log)
}

type body struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, e *gin.Engine, method, path, payload string) (int, body) {
	t.Helper()
	var req *http.Request
	if payload != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	var b body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b), w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	return w.Code, b
}

func TestRecognizeEndpoint(t *testing.T) {
	e := newTestEngine(t)

	status, b := do(t, e, http.MethodPost, "/api/intent/recognize", `{"text":"开始录音","session_id":"dev-1"}`)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, b.Success)
	assert.Equal(t, "Success", b.Message)

	var data struct {
		Intent     string         `json:"intent"`
		Confidence string         `json:"confidence"`
		Query      string         `json:"query"`
		Result     map[string]any `json:"result"`
	}
	require.NoError(t, json.Unmarshal(b.Data, &data))
	assert.Equal(t, "STARTRECORDING", data.Intent)
	assert.Equal(t, "0.95", data.Confidence)
	assert.Equal(t, "开始录音", data.Query)
	assert.Equal(t, "started", data.Result["status"])
	assert.Equal(t, "录音已开始", data.Result["message"])

	status, b = do(t, e, http.MethodGet, "/api/intent/history?session_id=dev-1", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"session_id":"dev-1","history":[
		{"role":"user","content":"开始录音"},
		{"role":"assistant","content":"录音已开始"}]}`, string(b.Data))

	status, b = do(t, e, http.MethodGet, "/api/intent/recent?limit=5", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(b.Data), `"STARTRECORDING"`)
}

func TestRecognizeValidationError(t *testing.T) {
	e := newTestEngine(t)

	status, b := do(t, e, http.MethodPost, "/api/intent/recognize", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, b.Success)
	assert.Equal(t, 4000, b.Code)

	var data map[string]any
	require.NoError(t, json.Unmarshal(b.Data, &data))
	assert.Equal(t, "ERROR", data["intent"])
	assert.Equal(t, "0.0", data["confidence"])
	result := data["result"].(map[string]any)
	assert.Equal(t, "error", result["status"])
	assert.EqualValues(t, 4000, result["code"])

	status, b = do(t, e, http.MethodPost, "/api/intent/recognize", `{not json`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 4000, b.Code)
}

func TestLocationEndpoints(t *testing.T) {
	e := newTestEngine(t)

	status, b := do(t, e, http.MethodGet, "/api/intent/location?session_id=s1", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 4040, b.Code)

	status, _ = do(t, e, http.MethodPost, "/api/intent/location?session_id=s1", `{"province":"浙江"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, e, http.MethodPost, "/api/intent/location?session_id=s1",
		`{"city":"杭州","province":"浙江","latitude":30.27,"longitude":120.15}`)
	require.Equal(t, http.StatusOK, status)

	status, b = do(t, e, http.MethodGet, "/api/intent/location?session_id=s1", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"session_id":"s1","location":{"city":"杭州","province":"浙江","latitude":30.27,"longitude":120.15}}`, string(b.Data))
}

func TestSessionEndpoints(t *testing.T) {
	e := newTestEngine(t)

	status, b := do(t, e, http.MethodPost, "/api/intent/session/ghost/clear", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 4040, b.Code)

	_, _ = do(t, e, http.MethodPost, "/api/intent/recognize", `{"text":"停止录音","session_id":"s9"}`)

	status, _ = do(t, e, http.MethodPost, "/api/intent/session/s9/clear", "")
	require.Equal(t, http.StatusOK, status)
	_, b = do(t, e, http.MethodGet, "/api/intent/history?session_id=s9", "")
	assert.JSONEq(t, `{"session_id":"s9","history":[]}`, string(b.Data))

	status, _ = do(t, e, http.MethodDelete, "/api/intent/session/s9", "")
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, e, http.MethodDelete, "/api/intent/session/s9", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealthAndNoRoute(t *testing.T) {
	e := newTestEngine(t)

	status, b := do(t, e, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, status)
	var data struct {
		Status string `json:"status"`
		Build  struct {
			Version string `json:"version"`
		} `json:"build"`
		Sessions dialogue.Stats `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(b.Data, &data))
	assert.Equal(t, "ok", data.Status)
	assert.Equal(t, "dev", data.Build.Version)
	assert.Equal(t, dialogue.DefaultMaxContexts, data.Sessions.MaxContexts)

	status, b = do(t, e, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, b.Success)
}

func TestRecentRejectsBadLimit(t *testing.T) {
	status, b := do(t, newTestEngine(t), http.MethodGet, "/api/intent/recent?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 4000, b.Code)
}
