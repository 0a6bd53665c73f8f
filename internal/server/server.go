// Package server provides the HTTP server for the Mudra gesture recognition system.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       *app.App
	Store     *store.Store
	Version   string
}

// Server represents the HTTP server for the Mudra application.
type Server struct {
	config  Config
	mux     *http.ServeMux
	handler http.Handler
	hub     *Hub
	start   time.Time
	httpSrv *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Version == "" {
		config.Version = "dev"
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	s.handler = withCORS(s.mux)
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if a := s.config.App; a != nil {
		s.mux.Handle("/api/accessibility/detect-gesture", api.NewDetectHandler(a))

		sessions := api.NewSessionHandler(a)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)

		s.mux.Handle("/api/settings", api.NewSettingsHandler(a))

		s.hub = NewHub(a)
		s.mux.Handle("/api/live", s.hub)
		s.mux.Handle("/api/stream", NewStreamHandler(a))

		if s.config.Store != nil {
			bindings := api.NewBindingHandler(a, s.config.Store)
			s.mux.Handle("/api/bindings", bindings)
			s.mux.Handle("/api/bindings/", bindings)
		}
	}

	if s.config.Store != nil {
		recognitions := api.NewRecognitionHandler(s.config.Store)
		s.mux.Handle("/api/recognitions", recognitions)
		s.mux.Handle("/api/recognitions/", recognitions)
	}

	// Serve static files if StaticDir is configured, otherwise describe the
	// service at the root.
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	} else {
		s.mux.HandleFunc("/", s.handleRoot)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Hub returns the live event hub, or nil when no App is configured.
func (s *Server) Hub() *Hub {
	return s.hub
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	gestureSystem := "error"
	sessions := 0
	if a := s.config.App; a != nil {
		if a.Detector() != nil {
			gestureSystem = "ready"
		}
		sessions = a.Sessions().Len()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"message":        "Backend is running",
		"gesture_system": gestureSystem,
		"uptime":         time.Since(s.start).String(),
		"sessions":       sessions,
	})
}

// handleRoot describes the service when no dashboard is served.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "Mudra Gesture Recognition API",
		"version": s.config.Version,
		"status":  "running",
		"endpoints": map[string]string{
			"health":         "/api/health",
			"detect_gesture": "/api/accessibility/detect-gesture",
			"sessions":       "/api/sessions",
			"bindings":       "/api/bindings",
			"recognitions":   "/api/recognitions",
			"settings":       "/api/settings",
			"live":           "/api/live",
			"stream":         "/api/stream",
		},
	})
}

// ListenAndServe starts the HTTP server on the given address. It returns
// nil once Shutdown has been called.
func (s *Server) ListenAndServe(addr string) error {
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("Server listening on %s", addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown closes live connections and gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// withCORS allows browser clients served from localhost to call /api/*.
// Preflight requests are answered directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && isLocalOrigin(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// isLocalOrigin reports whether origin is an http(s) URL on localhost or
// 127.0.0.1, on any port.
func isLocalOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
