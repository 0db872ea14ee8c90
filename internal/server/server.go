// Package server exposes the gateway's HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/freightflow/gateway/internal/dataplane"
	"github.com/freightflow/gateway/internal/identity"
	"github.com/freightflow/gateway/internal/session"
	"github.com/freightflow/gateway/internal/telemetry"
	"github.com/freightflow/gateway/pkg/rateshop"
)

// Server is the HTTP server for the gateway.
type Server struct {
	port     int
	bridge   *session.Bridge
	registry *rateshop.Registry
	data     *dataplane.Client
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics

	recommendMaxTransit int
}

// Config holds server configuration.
type Config struct {
	Port int

	// RecommendMaxTransitDays caps transit days for the recommended-rate
	// selection. Zero uses the rateshop default.
	RecommendMaxTransitDays int
}

// New creates a new server instance.
func New(cfg Config, bridge *session.Bridge, registry *rateshop.Registry, data *dataplane.Client, logger *otelzap.Logger) *Server {
	maxTransit := cfg.RecommendMaxTransitDays
	if maxTransit == 0 {
		maxTransit = rateshop.DefaultRecommendMaxTransit
	}
	return &Server{
		port:                cfg.Port,
		bridge:              bridge,
		registry:            registry,
		data:                data,
		logger:              logger,
		metrics:             telemetry.NewMetrics(),
		recommendMaxTransit: maxTransit,
	}
}

// Router builds the HTTP routing tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/register", s.handleRegister)
			r.Post("/logout", s.handleLogout)
			r.Get("/session", s.handleSession)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/rates/shop", s.handleShopRates)

			r.Post("/bookings", s.handleCreateBooking)
			r.Get("/bookings", s.handleListBookings)

			r.Get("/shipments", s.handleListShipments)
			r.Get("/shipments/{id}", s.handleGetShipment)
			r.Get("/shipments/{id}/tracking", s.handleTrackShipment)
			r.Get("/shipments/{id}/documents", s.handleListDocuments)
			r.Post("/shipments/{id}/documents", s.handleUploadDocument)

			r.Get("/quotes", s.handleListQuotes)
			r.Post("/quotes", s.handleCreateQuote)
			r.Get("/quotes/{id}", s.handleGetQuote)

			r.Get("/containers", s.handleListContainers)
			r.Get("/containers/{id}", s.handleGetContainer)
			r.Post("/containers/{id}/refresh", s.handleRefreshContainer)

			r.Get("/agents", s.handleListAgents)
			r.Get("/agents/{id}", s.handleGetAgent)
			r.Post("/agents/{id}/run", s.handleRunAgent)

			r.Get("/conversations", s.handleListConversations)
			r.Get("/conversations/{id}/messages", s.handleListMessages)
			r.Post("/conversations/{id}/messages", s.handleSendMessage)

			r.Get("/dispatch/tasks", s.handleListDispatchTasks)
			r.Patch("/dispatch/tasks/{id}", s.handleUpdateDispatchTask)
		})
	})

	return r
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// logRequests emits one structured log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// requireAuth gates business-data routes on session presence. It is a
// presence check only; an expired token surfaces as a 401 from the platform.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.bridge.IsAuthenticated() {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeUpstreamError maps boundary errors onto HTTP responses: identity
// rejections and platform errors carry their own status, anything else is a
// bad gateway.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var authErr *identity.AuthError
	if errors.As(err, &authErr) {
		status := authErr.HTTPStatus()
		if status < 400 || status > 599 {
			status = http.StatusUnauthorized
		}
		writeError(w, status, authErr.Error())
		return
	}
	var apiErr *dataplane.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.HTTPStatus()
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeError(w, status, apiErr.Error())
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
