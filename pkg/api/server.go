// Package api exposes the daemon's status, history, and manual refresh over
// HTTP, plus the Prometheus endpoint.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quotawatch/quotawatch/pkg/history"
	"github.com/quotawatch/quotawatch/pkg/monitor"
	"github.com/quotawatch/quotawatch/pkg/scheduler"
)

// Server encapsulates the HTTP surface over the monitor's status board.
type Server struct {
	board       *monitor.StatusBoard
	history     *history.Store
	sched       *scheduler.Scheduler
	thresholdFn func() float64

	server *http.Server
}

// NewServer wires the handlers. thresholdFn supplies the low-usage alert
// percentage; it is presentation data only and read fresh per request.
func NewServer(board *monitor.StatusBoard, hist *history.Store, sched *scheduler.Scheduler, thresholdFn func() float64, addr string) *Server {
	s := &Server{
		board:       board,
		history:     hist,
		sched:       sched,
		thresholdFn: thresholdFn,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/history", s.handleHistory)
	mux.HandleFunc("/v1/refresh", s.handleRefresh)

	s.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Start blocks serving HTTP until Stop is called.
func (s *Server) Start() error {
	log.Printf("API server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	log.Println("API server stopping")
	return s.server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type statusEntry struct {
	monitor.AccountStatus
	LowUsage bool `json:"low_usage"`
}

// handleStatus returns every account's latest fetch result and prediction.
// The low_usage flag compares the usage percentage against the configured
// alert threshold for the presentation side.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	threshold := s.thresholdFn()
	all := s.board.All()
	out := make([]statusEntry, 0, len(all))
	for _, st := range all {
		entry := statusEntry{AccountStatus: st}
		if u := st.Fetch.Usage; u != nil && u.Percentage >= 0 && u.Percentage <= threshold {
			entry.LowUsage = true
		}
		out = append(out, entry)
	}
	writeJSON(w, out)
}

// handleHistory returns the retained series for one account.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	accountID := r.URL.Query().Get("account")
	if accountID == "" {
		http.Error(w, `{"error":"missing_account"}`, http.StatusBadRequest)
		return
	}
	writeJSON(w, s.history.GetHistory(accountID))
}

// handleRefresh triggers one refresh cycle outside the timer's schedule. A
// failed cycle is a handled failure reported in the response body, not a 5xx
// crash of the daemon.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	if err := s.sched.Trigger(); err != nil {
		log.Printf("Manual refresh failed: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "failed", "error": err.Error()})
		return
	}
	writeJSON(w, map[string]string{"status": "refreshed", "at": time.Now().UTC().Format(time.RFC3339)})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
