package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// StationStatus is the read-only view of the station the server exposes.
type StationStatus interface {
	StateName() string
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr    string
	Station StationStatus
	Hub     *Hub

	sessionID string
	startedAt time.Time
	srv       *http.Server
}

// NewServer creates a new diagnostics server.
func NewServer(addr string, station StationStatus) *Server {
	return &Server{
		Addr:      addr,
		Station:   station,
		Hub:       NewHub(),
		sessionID: uuid.NewString(),
		startedAt: time.Now(),
	}
}

// Routes builds the request router.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.Hub.HandleWebSocket)
	return r
}

// Run starts the server and blocks until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	instrumentedHandler := otelhttp.NewHandler(s.Routes(), "mlme-server")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           instrumentedHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		log.Println("Web server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web server shutdown error: %v", err)
		}
	}()

	log.Printf("Web server listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

type statusResponse struct {
	Session   string  `json:"session"`
	State     string  `json:"state"`
	UptimeSec float64 `json:"uptime_sec"`
	WSClients int     `json:"ws_clients"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Session:   s.sessionID,
		State:     s.Station.StateName(),
		UptimeSec: time.Since(s.startedAt).Seconds(),
		WSClients: s.Hub.ClientCount(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding status response: %v", err)
	}
}
