// Package telemetry exposes prometheus metrics for the HTTP surface and
// the messaging core. Scrape endpoint wiring lives in internal/app.
package telemetry

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cruise_http_requests_total",
		Help: "HTTP requests by method, path prefix and status.",
	}, []string{"method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cruise_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// MessagesSent counts successful appends by message kind.
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cruise_messages_sent_total",
		Help: "Messages appended to room logs.",
	}, []string{"kind"})

	// HeartbeatsTotal counts presence beats written.
	HeartbeatsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cruise_heartbeats_total",
		Help: "Presence heartbeat writes.",
	})

	// SessionsActive gauges currently mounted live subscriptions.
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cruise_sessions_active",
		Help: "Mounted realtime sessions.",
	})

	// MembersOnline is refreshed by the census job from the staleness rule.
	MembersOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cruise_members_online",
		Help: "Members whose last heartbeat is within the staleness window.",
	})

	// MembersTotal is refreshed by the census job.
	MembersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cruise_members_total",
		Help: "Registered member profiles.",
	})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes through so websocket upgrades still work behind the
// middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := r.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, errors.New("response writer does not support hijacking")
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records request counts and latency. Paths are bucketed to
// their first two segments to bound cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		p := pathBucket(r.URL.Path)
		requestsTotal.WithLabelValues(r.Method, p, strconv.Itoa(rec.status)).Inc()
		requestDuration.WithLabelValues(r.Method, p).Observe(time.Since(start).Seconds())
	})
}

func pathBucket(p string) string {
	segs := 0
	for i := 1; i < len(p); i++ {
		if p[i] == '/' {
			segs++
			if segs == 2 {
				return p[:i]
			}
		}
	}
	return p
}
