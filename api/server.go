// Package api exposes the attribution pipeline over HTTP.
package api

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"imagecredit/attribution"
)

// Capabilities reports what this process can actually do, decided once at
// startup from the configured credentials.
type Capabilities struct {
	SearchEngines []string `json:"search_engines"`
	Sources       []string `json:"sources"`
	APISources    []string `json:"api_sources"`
}

type Server struct {
	orchestrator *attribution.Orchestrator
	caps         Capabilities
	logger       *zap.Logger
}

func NewServer(orc *attribution.Orchestrator, caps Capabilities, logger *zap.Logger) *Server {
	return &Server{orchestrator: orc, caps: caps, logger: logger}
}

// Routes builds the service mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/reverse-search", s.handleReverseSearch)
	mux.HandleFunc("/reverse-search/batch", s.handleBatch)
	mux.HandleFunc("/get-attribution", s.handleGetAttribution)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleRoot)
	return mux
}

// ListenAndServe blocks serving on the given port.
func (s *Server) ListenAndServe(port int) error {
	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      s.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}
	s.logger.Info("listening", zap.Int("port", port))
	return srv.ListenAndServe()
}
