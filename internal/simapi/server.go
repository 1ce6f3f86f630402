package simapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/uwb-floorsim/core"
	"github.com/signalsfoundry/uwb-floorsim/internal/logging"
	"github.com/signalsfoundry/uwb-floorsim/internal/observability"
)

// SimApiServer exposes the simulation engine to rendering clients: JSON
// snapshot endpoints, a WebSocket frame stream, the layout-push/resize
// surface, and Prometheus metrics.
type SimApiServer struct {
	cfg       Config
	engine    *core.SimulationEngine
	surface   *core.StaticSurface
	collector *observability.SimCollector
	log       logging.Logger
	tracer    trace.Tracer
	upgrader  websocket.Upgrader
}

// New constructs the API server. collector may be nil when metrics are not
// wired (tests).
func New(cfg Config, engine *core.SimulationEngine, surface *core.StaticSurface, collector *observability.SimCollector, log logging.Logger) (*SimApiServer, error) {
	if engine == nil {
		return nil, errors.New("simapi: engine is nil")
	}
	if surface == nil {
		return nil, errors.New("simapi: surface is nil")
	}
	if log == nil {
		log = logging.NewFromEnv()
	}
	return &SimApiServer{
		cfg:       cfg,
		engine:    engine,
		surface:   surface,
		collector: collector,
		log:       log,
		tracer:    otel.Tracer("simapi"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The renderer is expected to be served from anywhere during
			// development; this surface carries no credentials.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

// Router assembles the chi router with all routes and middleware.
func (s *SimApiServer) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if s.cfg.Http.Debug {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogMiddleware)
	r.Use(s.traceMiddleware)

	r.Get("/healthz", s.apiHealthGet)
	if s.collector != nil {
		r.Method(http.MethodGet, "/metrics", s.collector.Handler())
	}
	r.Get("/ws", s.apiFrameStream)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.metricsMiddleware)
		r.Get("/snapshot", s.apiSnapshotGet)
		r.Get("/rooms", s.apiRoomsGet)
		r.Get("/anchors", s.apiAnchorsGet)
		r.Get("/tag", s.apiTagGet)
		r.Get("/pulses", s.apiPulsesGet)
		r.Get("/rays", s.apiRaysGet)
		r.Get("/events", s.apiEventsGet)
		r.Post("/layout", s.apiLayoutPost)
		r.Post("/resize", s.apiResizePost)
	})

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *SimApiServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Http.Listen,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info(ctx, "simulation API listening", logging.String("addr", s.cfg.Http.Listen))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *SimApiServer) apiHealthGet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// requestLogMiddleware derives a request-scoped logger annotated with the
// request id and stores it on the context for handlers to pick up. The id
// from chi's RequestID middleware is reused when present so log lines and
// the X-Request-Id response header agree.
func (s *SimApiServer) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := middleware.GetReqID(ctx); id != "" {
			ctx = logging.ContextWithRequestID(ctx, id)
		}
		ctx, reqLog := logging.WithRequestLogger(ctx, s.log)
		ctx = logging.ContextWithLogger(ctx, reqLog)
		w.Header().Set("X-Request-Id", logging.RequestIDFromContext(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger returns the request-scoped logger installed by
// requestLogMiddleware, falling back to the server logger.
func (s *SimApiServer) requestLogger(r *http.Request) logging.Logger {
	if l := logging.LoggerFromContext(r.Context()); l != nil {
		return l
	}
	return s.log
}

// traceMiddleware starts one span per request.
func (s *SimApiServer) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			),
		)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// metricsMiddleware records counts and latency labeled by the matched chi
// route pattern, e.g. "/api/v1/snapshot".
func (s *SimApiServer) metricsMiddleware(next http.Handler) http.Handler {
	if s.collector == nil {
		return next
	}
	return s.collector.RouteMiddleware(func(r *http.Request) string {
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				return pattern
			}
		}
		return r.URL.Path
	})(next)
}
