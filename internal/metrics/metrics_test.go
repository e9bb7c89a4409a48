package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/comigor/homey-mcp/internal/homey"
	"github.com/comigor/homey-mcp/internal/session"
	"github.com/comigor/homey-mcp/pkg/tools"
)

func TestRecorder_ObserveCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveCall(context.Background(), tools.CallRecord{Tool: "list_devices", Duration: 20 * time.Millisecond})
	r.ObserveCall(context.Background(), tools.CallRecord{Tool: "list_devices", Duration: 30 * time.Millisecond})
	r.ObserveCall(context.Background(), tools.CallRecord{Tool: "get_device", IsError: true})

	require.Equal(t, 2.0, testutil.ToFloat64(r.toolCalls.WithLabelValues("list_devices", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.toolCalls.WithLabelValues("get_device", "error")))
	require.Equal(t, 0.0, testutil.ToFloat64(r.toolCalls.WithLabelValues("get_device", "success")))
	require.Equal(t, 2, testutil.CollectAndCount(r.toolDuration))
}

func TestRecorder_ObserveConnect(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.ObserveConnect(errors.New("refused"))
	r.ObserveConnect(nil)
	r.ObserveConnect(nil)

	require.Equal(t, 1.0, testutil.ToFloat64(r.connectAttempts.WithLabelValues("error")))
	require.Equal(t, 2.0, testutil.ToFloat64(r.connectAttempts.WithLabelValues("success")))
}

func TestRecorder_ObserveSessionState(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.ObserveSessionState("Disconnected")
	r.ObserveSessionState("Connecting")
	r.ObserveSessionState("Connected")

	require.Equal(t, 1, testutil.CollectAndCount(r.sessionState))
	require.Equal(t, 1.0, testutil.ToFloat64(r.sessionState.WithLabelValues("Connected")))
}

func TestRecorder_SessionStateFollowsManager(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())
	m := session.NewManager(
		session.Credentials{Address: "http://192.168.1.50", Token: "tok"},
		session.WithDialer(func(context.Context, string, string) (homey.Session, error) {
			return nil, errors.New("refused")
		}),
		session.WithConnectObserver(r.ObserveConnect),
		session.WithStateObserver(func(s session.State) { r.ObserveSessionState(string(s)) }),
	)

	_, err := m.EnsureConnected(context.Background())
	require.Error(t, err)

	require.Equal(t, 1, testutil.CollectAndCount(r.sessionState))
	require.Equal(t, 1.0, testutil.ToFloat64(r.sessionState.WithLabelValues("Disconnected")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.connectAttempts.WithLabelValues("error")))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	r.ObserveCall(context.Background(), tools.CallRecord{Tool: "list_flows"})

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `homey_mcp_tool_calls_total{outcome="success",tool="list_flows"} 1`), string(body))
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", prometheus.NewRegistry()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
