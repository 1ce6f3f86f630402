package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimCollector bundles Prometheus metrics for the simulation engine and
// its API surface and provides helpers to wire them into HTTP handlers.
type SimCollector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	WanderSteps     prometheus.Counter
	RoomTransitions *prometheus.CounterVec
	PulsesEmitted   prometheus.Counter
	ActivePulses    prometheus.Gauge
	LogEntries      prometheus.Gauge
	FrameDuration   prometheus.Histogram
	WSClients       prometheus.Gauge
}

// NewSimCollector registers the simulation Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when
// nil. Re-registration of an identical collector is tolerated so repeated
// construction in tests does not fail.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simapi_requests_total",
		Help: "Total number of handled simulation API requests, labeled by route, method, and status code.",
	}, []string{"route", "method", "code"})
	requests, err := registerCounterVec(reg, requests, "simapi_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "simapi_request_duration_seconds",
		Help:    "Simulation API request latency in seconds.",
		Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"route", "method"})
	durations, err = registerHistogramVec(reg, durations, "simapi_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	wanderSteps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_wander_steps_total",
		Help: "Total number of wander jitter steps applied to the tag.",
	}), "sim_wander_steps_total")
	if err != nil {
		return nil, err
	}

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_room_transitions_total",
		Help: "Total number of completed room traversals, labeled by destination room.",
	}, []string{"room"})
	transitions, err = registerCounterVec(reg, transitions, "sim_room_transitions_total")
	if err != nil {
		return nil, err
	}

	pulsesEmitted, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_pulses_emitted_total",
		Help: "Total number of ranging pulses emitted.",
	}), "sim_pulses_emitted_total")
	if err != nil {
		return nil, err
	}

	activePulses, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_pulses_active",
		Help: "Current number of live ranging pulses.",
	}), "sim_pulses_active")
	if err != nil {
		return nil, err
	}

	logEntries, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_log_entries",
		Help: "Current number of room-entry event log entries.",
	}), "sim_log_entries")
	if err != nil {
		return nil, err
	}

	frameDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_frame_duration_seconds",
		Help:    "Time spent advancing one simulation frame.",
		Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
	})
	frameDuration, err = registerHistogram(reg, frameDuration, "sim_frame_duration_seconds")
	if err != nil {
		return nil, err
	}

	wsClients, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simapi_ws_clients",
		Help: "Current number of connected WebSocket frame-stream clients.",
	}), "simapi_ws_clients")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:        gatherer,
		HTTPRequests:    requests,
		HTTPDurations:   durations,
		WanderSteps:     wanderSteps,
		RoomTransitions: transitions,
		PulsesEmitted:   pulsesEmitted,
		ActivePulses:    activePulses,
		LogEntries:      logEntries,
		FrameDuration:   frameDuration,
		WSClients:       wsClients,
	}, nil
}

// IncWanderStep implements core.SchedulerMetricsRecorder.
func (c *SimCollector) IncWanderStep() {
	if c == nil || c.WanderSteps == nil {
		return
	}
	c.WanderSteps.Inc()
}

// IncRoomTransition implements core.SchedulerMetricsRecorder.
func (c *SimCollector) IncRoomTransition(room string) {
	if c == nil || c.RoomTransitions == nil {
		return
	}
	c.RoomTransitions.WithLabelValues(room).Inc()
}

// AddPulsesEmitted implements core.EmitterMetricsRecorder.
func (c *SimCollector) AddPulsesEmitted(n int) {
	if c == nil || c.PulsesEmitted == nil {
		return
	}
	c.PulsesEmitted.Add(float64(n))
}

// SetActivePulses implements core.EmitterMetricsRecorder.
func (c *SimCollector) SetActivePulses(n int) {
	if c == nil || c.ActivePulses == nil {
		return
	}
	c.ActivePulses.Set(float64(n))
}

// SetLogEntries records the current event log size.
func (c *SimCollector) SetLogEntries(n int) {
	if c == nil || c.LogEntries == nil {
		return
	}
	c.LogEntries.Set(float64(n))
}

// ObserveFrameDuration records how long one engine frame took.
func (c *SimCollector) ObserveFrameDuration(seconds float64) {
	if c == nil || c.FrameDuration == nil {
		return
	}
	c.FrameDuration.Observe(seconds)
}

// AddWSClient / RemoveWSClient track connected frame-stream consumers.
func (c *SimCollector) AddWSClient() {
	if c == nil || c.WSClients == nil {
		return
	}
	c.WSClients.Inc()
}

func (c *SimCollector) RemoveWSClient() {
	if c == nil || c.WSClients == nil {
		return
	}
	c.WSClients.Dec()
}

// Middleware records request counts and durations for HTTP handlers,
// labeled by the route pattern passed at wrap time.
func (c *SimCollector) Middleware(route string) func(http.Handler) http.Handler {
	return c.RouteMiddleware(func(*http.Request) string { return route })
}

// RouteMiddleware is Middleware with the route label resolved per request.
// The resolver runs after the wrapped handler, so a router that fills in
// its matched pattern during dispatch (chi does) reports the real pattern
// rather than the mount point.
func (c *SimCollector) RouteMiddleware(route func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(sw, r)

			label := route(r)
			if c.HTTPRequests != nil {
				c.HTTPRequests.WithLabelValues(label, r.Method, strconv.Itoa(sw.code)).Inc()
			}
			if c.HTTPDurations != nil {
				c.HTTPDurations.WithLabelValues(label, r.Method).Observe(time.Since(start).Seconds())
			}
		})
	}
}

// statusWriter captures the response code for request metrics.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
