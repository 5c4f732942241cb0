package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/hashicorp/go-version"
	"go.uber.org/zap"

	"github.com/ssvlabs/coa-proof/pkgs/logging"
)

type contextKey struct{}

// RegisterRoutes creates the proof service routes
func RegisterRoutes(s *Server) {
	s.Router.Use(s.requestID)
	s.Router.Use(s.metrics.middleware)
	s.Router.Use(rateLimit(s.Logger, generalLimit))

	addRoute(s.Router, "POST", "/proof", s.proofHandler, s.checkClientVersion, rateLimit(s.Logger, routeLimit))
	addRoute(s.Router, "POST", "/verify", s.verifyHandler, s.checkClientVersion, rateLimit(s.Logger, routeLimit))
	addRoute(s.Router, "POST", "/verify_batch", s.verifyBatchHandler, s.checkClientVersion, rateLimit(s.Logger, routeLimit))
	addRoute(s.Router, "GET", "/resolve", s.resolveHandler, s.checkClientVersion, rateLimit(s.Logger, routeLimit))
	addRoute(s.Router, "GET", "/health_check", s.healthHandler, rateLimit(s.Logger, routeLimit))
	s.Router.Method("GET", "/metrics", s.metrics.handler())
}

// Add route with optional middleware
func addRoute(router chi.Router, method, path string, handler http.HandlerFunc, middleware ...func(http.Handler) http.Handler) {
	if len(middleware) > 0 {
		router.With(middleware...).MethodFunc(method, path, handler)
	} else {
		router.MethodFunc(method, path, handler)
	}
}

func rateLimit(logger *zap.Logger, limit int) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		timePeriod,
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("rate limit exceeded",
				zap.String("ip", r.RemoteAddr),
				zap.String("path", r.URL.Path))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(ErrTooManyRouteRequests))
		}),
	)
}

// requestID tags every request with the caller's X-Request-ID or a fresh uuid.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, id)))
	})
}

func (s *Server) logger(r *http.Request) *zap.Logger {
	if id, ok := r.Context().Value(contextKey{}).(string); ok {
		return s.Logger.With(zap.String(logging.FieldRequestID, id))
	}
	return s.Logger
}

// checkClientVersion rejects clients older than the configured minimum. Requests without
// the header are let through.
func (s *Server) checkClientVersion(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(ClientVersionHeader)
		if s.minVersion == nil || raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		v, err := version.NewVersion(raw)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("invalid client version %q", raw), http.StatusBadRequest)
			return
		}
		if v.LessThan(s.minVersion) {
			s.writeError(w, r, fmt.Errorf("client version %s is older than required %s", v, s.minVersion), http.StatusUpgradeRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
