// Package metrics instruments tool calls and Homey handshakes with Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/comigor/homey-mcp/internal/logger"
	"github.com/comigor/homey-mcp/pkg/tools"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Recorder holds the tool-call and connect collectors.
type Recorder struct {
	toolCalls       *prometheus.CounterVec
	toolDuration    *prometheus.HistogramVec
	connectAttempts *prometheus.CounterVec
	sessionState    *prometheus.GaugeVec
}

// NewRecorder creates a Recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "homey_mcp_tool_calls_total",
			Help: "Tool calls handled, by tool and outcome.",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "homey_mcp_tool_call_duration_seconds",
			Help:    "Wall time of tool calls, including the Homey round trips.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		connectAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "homey_mcp_connect_attempts_total",
			Help: "Homey authentication handshakes, by outcome.",
		}, []string{"outcome"}),
		sessionState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "homey_mcp_session_state",
			Help: "1 for the current Homey session state, absent otherwise.",
		}, []string{"state"}),
	}
	reg.MustRegister(r.toolCalls, r.toolDuration, r.connectAttempts, r.sessionState)
	return r
}

// ObserveCall is a tools.Observer.
func (r *Recorder) ObserveCall(_ context.Context, rec tools.CallRecord) {
	outcome := outcomeSuccess
	if rec.IsError {
		outcome = outcomeError
	}
	r.toolCalls.WithLabelValues(rec.Tool, outcome).Inc()
	r.toolDuration.WithLabelValues(rec.Tool).Observe(rec.Duration.Seconds())
}

// ObserveConnect counts one handshake attempt.
func (r *Recorder) ObserveConnect(err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}
	r.connectAttempts.WithLabelValues(outcome).Inc()
}

// ObserveSessionState records state as the only current session state.
func (r *Recorder) ObserveSessionState(state string) {
	r.sessionState.Reset()
	r.sessionState.WithLabelValues(state).Set(1)
}

// Handler exposes the gatherer in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.L.Warn("metrics server shutdown error", "error", err)
		}
	}()

	logger.L.Info("serving metrics", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
