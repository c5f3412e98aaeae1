package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/The-Vheed/AquaSense-Monitor/internal/app/detector"
	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
	"github.com/The-Vheed/AquaSense-Monitor/internal/ports"
)

// Server is the HTTP boundary in front of the detection core: it feeds
// inbound sensor reports into Ingest and serves the recent-anomaly set,
// health aggregation, and the LLM summary.
type Server struct {
	svc *detector.Service
	sum ports.Summarizer
	obs ports.Observability
}

// New builds the transport. sum may be nil, in which case /summary reports
// the summarizer as unavailable.
func New(svc *detector.Service, sum ports.Summarizer, obs ports.Observability) *Server {
	return &Server{svc: svc, sum: sum, obs: obs}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/data", s.handleData)
	mux.HandleFunc("/anomalies", s.handleAnomalies)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/summary", s.handleSummary)
	return mux
}

// handleData handles POST /data: one reading in, this reading's anomalies
// counted in the response.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var reading domain.Reading
	if err := json.NewDecoder(r.Body).Decode(&reading); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	anomalies, err := s.svc.Ingest(&reading)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidReading) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":            "Data received and processed",
		"anomalies_detected": len(anomalies),
	})
}

// handleAnomalies handles GET /anomalies: the full recent set, oldest first.
func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	anomalies := s.svc.RecentAnomalies()
	if anomalies == nil {
		anomalies = []domain.Anomaly{}
	}
	writeJSON(w, http.StatusOK, anomalies)
}

// handleStatus handles GET /status: health aggregation over the core and its
// collaborators.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	anomalies := s.svc.RecentAnomalies()
	status := map[string]any{
		"status":          "ok",
		"service":         "anomaly_detector",
		"timestamp":       time.Now().UTC(),
		"anomalies_count": len(anomalies),
	}
	if len(anomalies) > 0 {
		status["last_anomaly"] = anomalies[len(anomalies)-1].Timestamp
	}
	if s.sum != nil {
		status["summarizer_active"] = s.sum.Ping(r.Context()) == nil
	} else {
		status["summarizer_active"] = false
	}

	writeJSON(w, http.StatusOK, status)
}

// handleSummary handles GET /summary: a natural-language digest of the
// current anomaly set.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if s.sum == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "summarizer is not configured"})
		return
	}

	summary, err := s.sum.Summarize(r.Context(), s.svc.RecentAnomalies())
	if err != nil {
		s.obs.LogError("summary_failed", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "could not generate summary"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary":      summary,
		"generated_at": time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
