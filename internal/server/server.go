// Package server provides the HTTP server for the Tadasana posture
// monitoring system.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/tadasana/internal/app"
	"github.com/ayusman/tadasana/internal/server/api"
	"github.com/ayusman/tadasana/internal/store"
)

// Config names the server's collaborators. Each one is optional: routes
// that depend on a missing collaborator are simply not registered, which
// keeps tests free to construct a server with only what they exercise.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
}

// Server is the HTTP front end for the dashboard and the REST API.
type Server struct {
	config  Config
	mux     *http.ServeMux
	started time.Time
}

// New creates a Server and registers its routes.
func New(config Config) *Server {
	s := &Server{config: config, started: time.Now()}
	s.mux = s.routes()
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		actions := api.NewActionHandler(s.config.Store)
		mux.Handle("/api/actions", actions)
		mux.Handle("/api/actions/", actions)
	}

	if s.config.App != nil {
		mux.Handle("/api/posture", api.NewPostureHandler(s.config.App))
		mux.Handle("/api/calibration", api.NewCalibrationHandler(s.config.App.Engine()))
		mux.Handle("/api/stream", NewStreamHandler(s.config.App.Camera()))

		// The landmark stream is fed by the pipeline, so clients see exactly
		// the frames the engine evaluated.
		postureStream := NewPostureStream()
		s.config.App.OnFrame(postureStream.Publish)
		mux.Handle("/api/landmarks", postureStream)
	}

	if s.config.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}

	return mux
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}{
		Status: "ok",
		Uptime: time.Since(s.started).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
