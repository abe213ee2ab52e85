package server

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"iuris/internal/config"
	"iuris/pkg/logger"
	"iuris/pkg/metrics"
	"iuris/pkg/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const PrimaryRoute = "/transcribe"

// RouterOptions selects the routes and CORS policy of the HTTP surface
type RouterOptions struct {
	RouteAliases   []string
	AllowedOrigins []string
}

// NewRouter builds the chi router serving health, transcription and metrics
func NewRouter(transcribe http.HandlerFunc, m *metrics.Metrics, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(m))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(corsOptions(opts.AllowedOrigins)))

	r.Get("/", handleHealth)

	r.Post(PrimaryRoute, transcribe)
	for _, alias := range opts.RouteAliases {
		if alias == "" || alias == PrimaryRoute {
			continue
		}
		r.Post(alias, transcribe)
	}

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	return r
}

// corsOptions echoes the request Origin when any origin is allowed, since
// browsers reject "*" on credentialed requests.
func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
		return opts
	}

	opts.AllowedOrigins = origins
	return opts
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(model.HealthResponse{
		Status:  "ok",
		Service: config.ServiceName,
	})
}

// requestLogger logs every request and records HTTP metrics under the
// matched route pattern
func requestLogger(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			elapsed := time.Since(start)
			m.RecordHTTPRequest(r.Method, route, status, elapsed)

			logger.Info("HTTP request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", elapsed))
		})
	}
}
