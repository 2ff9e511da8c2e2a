package relay

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weechat-relay/internal/config"
	"weechat-relay/internal/host"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.New()
	config.RegisterRelayDefaults(cfg)
	require.NoError(t, cfg.Set("relay.network.password", "secret"))

	h := host.NewMemory()
	h.CreateBuffer("core.weechat", "weechat", host.BufferFormatted)

	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewServer(h, cfg, log.WithField("component", "test"))

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func basicAuth(password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte("plain:"+password))
}

func TestVersionReportsWireVersion(t *testing.T) {
	_, srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/version", nil)
	req.Header.Set("Authorization", basicAuth("secret"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "0.1.0", body["relay_api_version"])
	assert.Equal(t, float64(65792), body["relay_api_version_number"])
}

func TestUnknownBufferReturnsExactMessage(t *testing.T) {
	_, srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/buffers/invalid", nil)
	req.Header.Set("Authorization", basicAuth("secret"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, `Buffer "invalid" not found`, body["error"])
}

func TestMissingAuthorizationHeaderReportsMissingPassword(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/version")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Missing password", body["error"])
}

func TestWrongPasswordReportsInvalidPassword(t *testing.T) {
	_, srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/version", nil)
	req.Header.Set("Authorization", basicAuth("wrong"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Invalid password", body["error"])
}

func TestWebSocketSyncToggleRespondsWithEnvelope(t *testing.T) {
	_, srv := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/version"
	headers := http.Header{}
	headers.Set("Authorization", basicAuth("secret"))
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, headers)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"request":"POST /api/sync","body":{"sync":false}}`)))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, float64(204), env["code"])
	assert.Equal(t, "No Content", env["message"])
	assert.Equal(t, "POST /api/sync", env["request"])
	assert.Equal(t, map[string]any{"sync": false}, env["request_body"])
	assert.Nil(t, env["request_id"])
	assert.Nil(t, env["body_type"])
	assert.Nil(t, env["body"])
}
