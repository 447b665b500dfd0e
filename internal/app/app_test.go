package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/staya/staya-chatbot-go/internal/config"
	"github.com/staya/staya-chatbot-go/internal/messenger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAppSecret   = "app-secret"
	testVerifyToken = "verify-token"
)

// graphAPI records the text of every Send API call.
type graphAPI struct {
	*httptest.Server
	mu    sync.Mutex
	texts []string
}

func newGraphAPI(t *testing.T) *graphAPI {
	t.Helper()
	g := &graphAPI{}
	g.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Message struct {
				Text string `json:"text"`
			} `json:"message"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		g.mu.Lock()
		g.texts = append(g.texts, body.Message.Text)
		g.mu.Unlock()
		_, _ = io.WriteString(w, `{"recipient_id":"U1","message_id":"m"}`)
	}))
	t.Cleanup(g.Close)
	return g
}

func (g *graphAPI) sent() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.texts...)
}

type nopLineAPI struct{}

func (nopLineAPI) ReplyMessage(*messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error) {
	return &messaging_api.ReplyMessageResponse{}, nil
}

func (nopLineAPI) PushMessage(*messaging_api.PushMessageRequest, string) (*messaging_api.PushMessageResponse, error) {
	return &messaging_api.PushMessageResponse{}, nil
}

func testConfig(graphURL string) *config.Config {
	return &config.Config{
		FBAccessToken:     "page-token",
		FBVerifyToken:     testVerifyToken,
		FBAppSecret:       testAppSecret,
		FBGraphAPIURL:     graphURL,
		FBGraphAPIVersion: "v21.0",
		ListingsBaseURL:   config.DefaultListingsBaseURL,
		Port:              "0",
		LogLevel:          "error",
		ShutdownTimeout:   5 * time.Second,
		MetricsUsername:   "prometheus",
		Bot: config.BotConfig{
			WebhookTimeout:      5 * time.Second,
			GlobalRateRPS:       1000,
			MaxEventsPerWebhook: 100,
		},
	}
}

func setupTestApp(t *testing.T, cfg *config.Config, opts ...Option) *Application {
	t.Helper()
	opts = append([]Option{WithLogWriter(io.Discard)}, opts...)
	app, err := Initialize(cfg, opts...)
	require.NoError(t, err)
	return app
}

func serve(app *Application, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, req)
	return w
}

func signedWebhook(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(messenger.HeaderSignature256, messenger.Sign(testAppSecret, []byte(body)))
	return req
}

const helloCallback = `{"object":"page","entry":[{"id":"P1","time":1,"messaging":[` +
	`{"sender":{"id":"U1"},"recipient":{"id":"P1"},"timestamp":1,"message":{"mid":"m1","text":"hello"}}]}]}`

func TestLivenessCheck(t *testing.T) {
	app := setupTestApp(t, testConfig("http://127.0.0.1:1"))

	for _, method := range []string{http.MethodGet, http.MethodHead} {
		w := serve(app, httptest.NewRequest(method, "/livez", nil))
		assert.Equal(t, http.StatusOK, w.Code, method)
	}
}

func TestReadinessCheck(t *testing.T) {
	app := setupTestApp(t, testConfig("http://127.0.0.1:1"))

	w := serve(app, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status    string          `json:"status"`
		Platforms map[string]bool `json:"platforms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, map[string]bool{"messenger": true, "line": false}, body.Platforms)
}

func TestRootRedirects(t *testing.T) {
	app := setupTestApp(t, testConfig("http://127.0.0.1:1"))

	w := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, homepageURL, w.Header().Get("Location"))
}

func TestRequestIDHeader(t *testing.T) {
	app := setupTestApp(t, testConfig("http://127.0.0.1:1"))

	w := serve(app, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.NotEmpty(t, w.Header().Get(requestIDHead), "a request ID is generated when absent")

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set(requestIDHead, "req-42")
	w = serve(app, req)
	assert.Equal(t, "req-42", w.Header().Get(requestIDHead))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestMessengerVerification(t *testing.T) {
	app := setupTestApp(t, testConfig("http://127.0.0.1:1"))

	w := serve(app, httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token="+testVerifyToken+"&hub.challenge=1158201444", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1158201444", w.Body.String())

	w = serve(app, httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=1", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMessengerGreetingEndToEnd(t *testing.T) {
	graph := newGraphAPI(t)
	app := setupTestApp(t, testConfig(graph.URL))

	w := serve(app, signedWebhook(t, helloCallback))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "EVENT_RECEIVED", w.Body.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	app.Shutdown(ctx)

	assert.Equal(t, []string{"Hello from Staya Chat Bot!"}, graph.sent())
}

func TestMessengerRejectsBadSignature(t *testing.T) {
	app := setupTestApp(t, testConfig("http://127.0.0.1:1"))

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(helloCallback))
	req.Header.Set(messenger.HeaderSignature256, "sha256=00")
	w := serve(app, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShutdownRejectsWebhooks(t *testing.T) {
	app := setupTestApp(t, testConfig("http://127.0.0.1:1"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	app.Shutdown(ctx)

	w := serve(app, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = serve(app, signedWebhook(t, helloCallback))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))

	w = serve(app, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, w.Code, "liveness is unaffected by shutdown")
}

func TestLineRouteOnlyWhenConfigured(t *testing.T) {
	app := setupTestApp(t, testConfig("http://127.0.0.1:1"))
	w := serve(app, httptest.NewRequest(http.MethodPost, "/line/webhook", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)

	cfg := testConfig("http://127.0.0.1:1")
	cfg.LineChannelToken = "line-token"
	cfg.LineChannelSecret = "line-secret"
	app = setupTestApp(t, cfg, WithLineAPI(nopLineAPI{}))

	req := httptest.NewRequest(http.MethodPost, "/line/webhook", strings.NewReader(`{"events":[]}`))
	req.Header.Set("X-Line-Signature", base64.StdEncoding.EncodeToString([]byte("bogus")))
	w = serve(app, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(app, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Contains(t, w.Body.String(), `"line":true`)
}

func TestMetricsEndpoint(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.MetricsPassword = "secret123"
	app := setupTestApp(t, cfg)

	w := serve(app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("prometheus", "secret123")
	w = serve(app, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.Contains(w.Body.Bytes(), []byte("go_goroutines")))
}
