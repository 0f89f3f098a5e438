package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evdash/api/push"
	"github.com/kilianp07/evdash/config"
	"github.com/kilianp07/evdash/core/telemetry"
)

func newHub() *telemetry.Hub {
	return telemetry.NewHub(telemetry.NewStore(telemetry.Initial()), 8)
}

func TestServerRoutes(t *testing.T) {
	hub := newHub()
	s := NewServer(config.ServerConfig{PollIntervalMs: 10}, hub, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/telemetry/latest")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp2, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	resp3, err := http.Get(srv.URL + "/index.html")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp3.StatusCode)
}

func TestPushAndPollAgree(t *testing.T) {
	hub := newHub()
	s := NewServer(config.ServerConfig{PollIntervalMs: 10}, hub, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 5*time.Millisecond)

	snap := telemetry.Snapshot{Timestamp: 1016.7, Speed: 33.3, Temperature: 27.1, Voltage: 82.35, SoC: 95.4, Wh: 3434.4,
		TripDistance: 2.71, TripEfficiency: 140.2, TripTime: 330}
	hub.Publish(snap)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, push.EventTelemetry, env.Event)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/data", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	polled := strings.TrimSuffix(strings.TrimPrefix(line, "data: "), "\n")

	assert.JSONEq(t, string(env.Data), polled)
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>dash</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	s := NewServer(config.ServerConfig{StaticDir: dir}, newHub(), nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	get := func(p string) (int, string) {
		resp, err := http.Get(srv.URL + p)
		require.NoError(t, err)
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(b)
	}
	code, body := get("/app.js")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "console.log(1)", body)

	code, body = get("/trips/42")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "dash")

	code, body = get("/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "dash")
}

func TestServerStartAndShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewServer(config.ServerConfig{Address: "127.0.0.1:0"}, newHub(), nil)
	require.NoError(t, s.Start(ctx))

	resp, err := http.Get("http://" + s.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	cancel()

	require.Eventually(t, func() bool {
		_, err := http.Get("http://" + s.Addr().String() + "/healthz")
		return err != nil
	}, 2*time.Second, 20*time.Millisecond)
}

func TestCORSPreflight(t *testing.T) {
	s := NewServer(config.ServerConfig{}, newHub(), nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/data", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
