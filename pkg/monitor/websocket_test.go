package monitor

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.verify/pkg/metrics"
)

func newTestServer(
	t *testing.T,
	opts ...ServerOption,
) (*WebSocketServer, *EventCollector, *httptest.Server) {
	t.Helper()
	c := NewEventCollector()
	s := NewWebSocketServer("127.0.0.1:0", c, NewDashboardData(""), opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, c, ts
}

// waitForClients polls until n stream clients are subscribed.
func waitForClients(t *testing.T, s *WebSocketServer, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.ClientCount() == n
	}, 2*time.Second, 5*time.Millisecond)
}

func TestWebSocketServer_Health(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestWebSocketServer_Dashboard(t *testing.T) {
	_, c, ts := newTestServer(t)
	feedRun(c)

	resp, err := http.Get(ts.URL + "/dashboard")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var snap DashboardData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, "run-1", snap.RunID)
	assert.Equal(t, RunFailed, snap.Status)
	assert.Equal(t, 2, snap.Summary.Total)
}

func TestWebSocketServer_Metrics(t *testing.T) {
	m := metrics.NewPrometheusMetrics()
	m.RecordTest("ok", "passed", time.Millisecond)
	_, _, ts := newTestServer(t, WithServerMetrics(m))

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body),
		`verify_tests_total{test="ok",status="passed"} 1`)
}

func TestWebSocketServer_MetricsDisabled(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketServer_WebSocketStream(t *testing.T) {
	s, c, ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var first struct {
		Kind string        `json:"kind"`
		Data DashboardData `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "dashboard", first.Kind)

	waitForClients(t, s, 1)
	c.TestStarted(testInfo("streamed"))

	var msg struct {
		Kind string    `json:"kind"`
		Data TestEvent `json:"data"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "event", msg.Kind)
	assert.Equal(t, EventTestStarted, msg.Data.Type)
	assert.Equal(t, "streamed", msg.Data.Test)

	require.NoError(t, conn.Close())
	waitForClients(t, s, 0)
}

func TestWebSocketServer_SSEStream(t *testing.T) {
	s, c, ts := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		ts.URL+"/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: dashboard\n", line)

	waitForClients(t, s, 1)
	c.TestStarted(testInfo("sse"))

	var sawEvent bool
	for i := 0; i < 6; i++ {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if line == "event: test\n" {
			sawEvent = true
			data, err := reader.ReadString('\n')
			require.NoError(t, err)
			assert.Contains(t, data, `"test":"sse"`)
			break
		}
	}
	assert.True(t, sawEvent)
}

func TestWebSocketServer_SlowClientSkipped(t *testing.T) {
	s, c, _ := newTestServer(t)
	ch := s.subscribe()
	defer s.unsubscribe(ch)

	for i := 0; i < clientBuffer+10; i++ {
		c.Emit(TestEvent{Type: EventAssertion})
	}
	assert.Len(t, ch, clientBuffer)
}

func TestWebSocketServer_StartStop(t *testing.T) {
	c := NewEventCollector()
	s := NewWebSocketServer("127.0.0.1:0", c, NewDashboardData(""))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return s.Addr() != "" },
		2*time.Second, 5*time.Millisecond)

	resp, err := http.Get("http://" + s.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, s.Stop(context.Background()))
	assert.NoError(t, <-errCh)
}

func TestWebSocketServer_StartListenError(t *testing.T) {
	s := NewWebSocketServer("invalid:99999:format",
		NewEventCollector(), NewDashboardData(""))

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monitor server")
	assert.Empty(t, s.Addr())
}

func TestWebSocketServer_StopBeforeStart(t *testing.T) {
	s := NewWebSocketServer("", NewEventCollector(), NewDashboardData(""))
	assert.NoError(t, s.Stop(context.Background()))
}
