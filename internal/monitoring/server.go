// internal/monitoring/server.go
package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/valpere/MediaScrapexter/internal/utils"
)

// Server exposes /health and /metrics while a run is in progress. Long
// batch runs are watched from the outside; the endpoints answer "is it
// still alive" and "how far along is it" without touching the output tree.
type Server struct {
	httpServer *http.Server
	logger     utils.Logger
	startTime  time.Time

	pagesDone  atomic.Int64
	pagesTotal atomic.Int64
}

type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	PagesDone     int64  `json:"pages_done"`
	PagesTotal    int64  `json:"pages_total"`
}

// NewServer creates the monitoring server listening on addr
func NewServer(addr string, logger utils.Logger) *Server {
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	s := &Server{
		logger:    logger,
		startTime: time.Now(),
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Start runs the server in the background. Listen errors other than a clean
// shutdown are logged, not fatal; monitoring never kills a run.
func (s *Server) Start() {
	go func() {
		s.logger.Infof("monitoring server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("monitoring server failed: %v", err)
		}
	}()
}

// SetPagesTotal records how many pages the run will process
func (s *Server) SetPagesTotal(n int) {
	s.pagesTotal.Store(int64(n))
}

// PageDone increments the processed-page counter
func (s *Server) PageDone() {
	s.pagesDone.Add(1)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		PagesDone:     s.pagesDone.Load(),
		PagesTotal:    s.pagesTotal.Load(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warnf("failed to write health response: %v", err)
	}
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
