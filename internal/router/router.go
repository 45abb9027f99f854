package router

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-study/internal/auth"
	"github.com/ovaphlow/pitchfork/service-study/internal/config"
	"github.com/ovaphlow/pitchfork/service-study/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-study/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-study/internal/session"
	"github.com/ovaphlow/pitchfork/service-study/internal/task"
	"github.com/ovaphlow/pitchfork/service-study/internal/trivia"
	"github.com/ovaphlow/pitchfork/service-study/internal/user"
	"github.com/ovaphlow/pitchfork/service-study/pkg/utilities"
)

const requestIDHeader = "X-Request-ID"

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
				"request_id", lrw.Header().Get(requestIDHeader),
			)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			// HSTS only over TLS, 30 days
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDMiddleware echoes the caller's X-Request-ID or assigns a KSUID.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" || len(id) > 128 {
				id = utilities.NewKSUID()
				r.Header.Set(requestIDHeader, id)
			}
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware allows the browser client on the configured origins.
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	})
}

// RateLimitMiddleware limits requests per client IP. A non-positive limit
// disables it.
func RateLimitMiddleware(requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.WriteJSON(w, http.StatusTooManyRequests, httpx.ErrorResponse{Error: "Too many requests"})
		}),
	)
}

// Deps are the handlers mounted by RegisterRoutes.
type Deps struct {
	Config   *config.Config
	Tokens   *auth.TokenService
	Users    *user.Handler
	Tasks    *task.Handler
	Sessions *session.Handler
	Trivia   *trivia.Handler
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
func RegisterRoutes(logger *zap.SugaredLogger, d Deps) http.Handler {
	mux := http.NewServeMux()
	protect := d.Tokens.Middleware(logger)
	guarded := func(h http.HandlerFunc) http.Handler { return protect(h) }

	health := func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, httpx.MessageResponse{Message: "API running"})
	}
	mux.HandleFunc("GET /{$}", health)
	mux.HandleFunc("GET /health", health)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /register", d.Users.Register)
	mux.HandleFunc("POST /login", d.Users.Login)

	mux.Handle("GET /dashboard", guarded(d.Tasks.Dashboard))
	mux.Handle("POST /task", guarded(d.Tasks.Create))
	mux.Handle("GET /task/{date}", guarded(d.Tasks.ListForDate))
	mux.Handle("DELETE /task/{id}", guarded(d.Tasks.Delete))
	mux.Handle("PUT /task/{id}/complete", guarded(d.Tasks.Complete))
	mux.Handle("GET /api/tasks", guarded(d.Tasks.ListInRange))
	mux.Handle("GET /notifications", guarded(d.Tasks.Notifications))

	mux.Handle("POST /sessions", guarded(d.Sessions.Record))
	mux.Handle("GET /sessions", guarded(d.Sessions.List))

	mux.HandleFunc("GET /categories", d.Trivia.Categories)
	mux.HandleFunc("GET /quiz", d.Trivia.Quiz)

	// metrics innermost so r.Pattern is visible after routing
	var handler http.Handler = metrics.Middleware(mux)
	handler = RateLimitMiddleware(d.Config.RateLimitRequests, d.Config.RateLimitWindow)(handler)
	handler = CORSMiddleware(d.Config.CORSAllowedOrigins)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = SecurityHeadersMiddleware()(handler)
	return LoggingMiddleware(logger)(handler)
}
