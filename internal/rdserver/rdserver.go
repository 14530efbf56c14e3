// Package rdserver exposes the optional status/control HTTP surface named
// in SPEC_FULL.md §6.4: a health check, the last run's report, and a
// trigger endpoint guarded by a bcrypt-hashed shared secret. Routing
// follows the teacher's go-chi/chi-based server (server/endpoints.go).
package rdserver

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/dekarrin/ddreduce/internal/report"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"
)

// TriggerFunc performs one reduction run and returns when it is finished.
// The server calls it on its own goroutine and holds the run slot until it
// returns, so POST /trigger answers without waiting for the run; the run's
// outcome is observed later through GET /report.
type TriggerFunc func() error

// Server is the status/control HTTP surface.
type Server struct {
	mu         sync.RWMutex
	lastReport *report.RunReport
	secretHash []byte // bcrypt hash; nil/empty disables POST /trigger
	trigger    TriggerFunc
	router     chi.Router

	// runSlot serializes triggered runs: a reduction started by /trigger
	// always runs alone, same as a run started from the command line.
	runSlot chan struct{}
}

// New builds a Server. secretHash is the bcrypt hash of the trigger
// secret (see HashSecret); pass nil to disable POST /trigger entirely.
func New(secretHash []byte, trigger TriggerFunc) *Server {
	s := &Server{secretHash: secretHash, trigger: trigger, runSlot: make(chan struct{}, 1)}
	s.runSlot <- struct{}{}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/report", s.handleReport)
	r.Post("/trigger", s.handleTrigger)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(w, req)
}

// SetLastReport updates the report served by GET /report.
func (s *Server) SetLastReport(r *report.RunReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastReport = r
}

func (s *Server) handleHealthz(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleReport(w http.ResponseWriter, req *http.Request) {
	s.mu.RLock()
	rpt := s.lastReport
	s.mu.RUnlock()

	if rpt == nil {
		http.Error(w, "no run has completed yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rpt)
}

func (s *Server) handleTrigger(w http.ResponseWriter, req *http.Request) {
	if len(s.secretHash) == 0 {
		http.Error(w, "trigger endpoint disabled", http.StatusForbidden)
		return
	}

	secret := req.Header.Get("X-Trigger-Secret")
	if err := bcrypt.CompareHashAndPassword(s.secretHash, []byte(secret)); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	select {
	case <-s.runSlot:
	default:
		http.Error(w, "a reduction run is already in progress", http.StatusConflict)
		return
	}

	go func() {
		defer func() { s.runSlot <- struct{}{} }()
		if err := s.trigger(); err != nil {
			log.Printf("ERROR triggered reduction run failed: %s", err.Error())
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte("reduction triggered"))
}

// HashSecret bcrypt-hashes a trigger secret for storage in the config file.
func HashSecret(secret string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
}
