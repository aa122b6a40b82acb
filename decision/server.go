// Package decision serves live trading decisions over HTTP. The
// strategy endpoint is stateless: each request carries a complete
// market snapshot and the response depends on nothing else.
package decision

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rustyeddy/quantlab/signal"
)

// Response is the strategy endpoint's reply.
type Response struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// Server wires the decision endpoint, the dashboard and the feeder
// controller into one mux router.
type Server struct {
	recorder   *Recorder
	controller *Controller
	logger     *log.Logger
}

// NewServer builds a server. controller may be nil, which disables the
// /bot/start and /bot/stop routes. logger nil means the default logger.
func NewServer(rec *Recorder, ctl *Controller, logger *log.Logger) *Server {
	if rec == nil {
		rec = NewRecorder(0)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{recorder: rec, controller: ctl, logger: logger}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.Methods("GET").Path("/").HandlerFunc(s.handleDashboard)
	router.Methods("GET").Path("/healthz").HandlerFunc(s.handleHealth)
	router.Methods("POST").Path("/bot/strategy").HandlerFunc(s.handleStrategy)
	if s.controller != nil {
		router.Methods("POST").Path("/bot/start").HandlerFunc(s.handleStart)
		router.Methods("POST").Path("/bot/stop").HandlerFunc(s.handleStop)
	}
	return router
}

// ListenAndServe runs the server on addr until it fails.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Printf("decision service listening on %s", addr)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	var snap signal.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := signal.Evaluate(snap)
	s.recorder.Append(Record{
		Time:     time.Now(),
		Snapshot: snap,
		Decision: res.Action.String(),
		Reason:   res.Reason,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{
		Decision: res.Action.String(),
		Reason:   res.Reason,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"decisions": s.recorder.Len(),
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Start(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.logger.Printf("feeder started")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "started"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Stop(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.logger.Printf("feeder stopped")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "stopped"})
}
