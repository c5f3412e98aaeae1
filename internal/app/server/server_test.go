package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/The-Vheed/AquaSense-Monitor/internal/adapters/snapshot"
	"github.com/The-Vheed/AquaSense-Monitor/internal/app/detector"
	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
	"github.com/The-Vheed/AquaSense-Monitor/internal/ports"
	"github.com/The-Vheed/AquaSense-Monitor/internal/rules"
)

type nopObs struct{}

func (nopObs) LogInfo(string, ...ports.Field)            {}
func (nopObs) LogError(string, error, ...ports.Field)    {}
func (nopObs) LogCritical(string, error, ...ports.Field) {}
func (nopObs) IncCounter(string, float64)                {}
func (nopObs) ObserveLatency(string, float64)            {}
func (nopObs) SetGauge(string, float64)                  {}

type stubSummarizer struct {
	summary string
	sumErr  error
	pingErr error
}

func (s *stubSummarizer) Summarize(_ context.Context, anomalies []domain.Anomaly) (string, error) {
	if s.sumErr != nil {
		return "", s.sumErr
	}
	return fmt.Sprintf("%s (%d anomalies)", s.summary, len(anomalies)), nil
}

func (s *stubSummarizer) Ping(context.Context) error { return s.pingErr }

func newServer(t *testing.T, sum ports.Summarizer) (*Server, *detector.Service) {
	t.Helper()
	store, err := snapshot.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	svc, err := detector.New(detector.Config{
		Thresholds: rules.Thresholds{
			Temperature:     rules.Bounds{NormalMin: 10, NormalMax: 35, SpikeLow: 10, SpikeHigh: 35, DriftLow: 10, DriftHigh: 35},
			Pressure:        rules.Bounds{NormalMin: 1, NormalMax: 3, SpikeLow: 1, SpikeHigh: 3, DriftLow: 1, DriftHigh: 3},
			Flow:            rules.Bounds{NormalMin: 20, NormalMax: 100, SpikeLow: 20, SpikeHigh: 100, DriftLow: 20, DriftHigh: 100},
			DriftWindow:     8,
			ReadingInterval: 2 * time.Second,
			DropoutAfter:    10 * time.Second,
		},
		MaxAnomalies:  100,
		Retention:     2 * time.Minute,
		SweepInterval: time.Minute,
	}, store, nopObs{})
	if err != nil {
		t.Fatalf("detector.New: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return New(svc, sum, nopObs{}), svc
}

func postData(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/data", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPostDataReportsAnomalyCount(t *testing.T) {
	srv, _ := newServer(t, nil)
	h := srv.Handler()

	body := fmt.Sprintf(`{"sensor_id":"wtf-pipe-1","timestamp":%q,"temperature":50,"pressure":2,"flow":60}`,
		time.Now().UTC().Format(time.RFC3339))
	rec := postData(t, h, body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Message   string `json:"message"`
		Anomalies int    `json:"anomalies_detected"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Data received and processed" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if resp.Anomalies != 1 {
		t.Fatalf("expected 1 anomaly detected, got %d", resp.Anomalies)
	}
}

func TestPostDataRejectsMalformedJSON(t *testing.T) {
	srv, _ := newServer(t, nil)
	rec := postData(t, srv.Handler(), "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPostDataRejectsInvalidReading(t *testing.T) {
	srv, _ := newServer(t, nil)
	body := fmt.Sprintf(`{"timestamp":%q,"temperature":22,"pressure":2,"flow":60}`,
		time.Now().UTC().Format(time.RFC3339))
	rec := postData(t, srv.Handler(), body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing sensor_id, got %d", rec.Code)
	}
}

func TestDataMethodNotAllowed(t *testing.T) {
	srv, _ := newServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestAnomaliesEmptyIsArray(t *testing.T) {
	srv, _ := newServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/anomalies", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("expected empty JSON array, got %q", got)
	}
}

func TestAnomaliesReturnsLedgerOldestFirst(t *testing.T) {
	srv, svc := newServer(t, nil)

	base := time.Now()
	svc.Ingest(&domain.Reading{SensorID: "s1", Timestamp: base, Temperature: 50, Pressure: 2, Flow: 60})
	svc.Ingest(&domain.Reading{SensorID: "s2", Timestamp: base.Add(time.Second), Temperature: 22, Pressure: 0.5, Flow: 60})

	req := httptest.NewRequest(http.MethodGet, "/anomalies", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var got []domain.Anomaly
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode anomalies: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 anomalies, got %d", len(got))
	}
	if got[0].SensorID != "s1" || got[1].SensorID != "s2" {
		t.Fatalf("expected oldest first, got %s then %s", got[0].SensorID, got[1].SensorID)
	}
}

func TestStatusAggregation(t *testing.T) {
	srv, svc := newServer(t, &stubSummarizer{pingErr: errors.New("down")})
	svc.Ingest(&domain.Reading{SensorID: "s1", Timestamp: time.Now(), Temperature: 50, Pressure: 2, Flow: 60})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status struct {
		Status           string    `json:"status"`
		Service          string    `json:"service"`
		AnomaliesCount   int       `json:"anomalies_count"`
		LastAnomaly      time.Time `json:"last_anomaly"`
		SummarizerActive bool      `json:"summarizer_active"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Status != "ok" || status.Service != "anomaly_detector" {
		t.Fatalf("unexpected identity: %+v", status)
	}
	if status.AnomaliesCount != 1 || status.LastAnomaly.IsZero() {
		t.Fatalf("expected anomaly count and last timestamp, got %+v", status)
	}
	if status.SummarizerActive {
		t.Fatal("expected summarizer reported inactive when ping fails")
	}
}

func TestStatusWithoutSummarizer(t *testing.T) {
	srv, _ := newServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if !bytes.Contains(rec.Body.Bytes(), []byte(`"summarizer_active":false`)) {
		t.Fatalf("expected summarizer_active false, got %s", rec.Body)
	}
}

func TestSummarySuccess(t *testing.T) {
	srv, svc := newServer(t, &stubSummarizer{summary: "all clear"})
	svc.Ingest(&domain.Reading{SensorID: "s1", Timestamp: time.Now(), Temperature: 50, Pressure: 2, Flow: 60})

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Summary     string    `json:"summary"`
		GeneratedAt time.Time `json:"generated_at"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if resp.Summary != "all clear (1 anomalies)" {
		t.Fatalf("unexpected summary: %q", resp.Summary)
	}
	if resp.GeneratedAt.IsZero() {
		t.Fatal("expected generated_at timestamp")
	}
}

func TestSummaryUnavailableWithoutSummarizer(t *testing.T) {
	srv, _ := newServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestSummaryUnavailableOnError(t *testing.T) {
	srv, _ := newServer(t, &stubSummarizer{sumErr: errors.New("model offline")})
	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
