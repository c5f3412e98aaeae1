package observability

import (
	"fmt"
	"log"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/The-Vheed/AquaSense-Monitor/internal/ports"
)

type PromObs struct {
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs() *PromObs {
	ingested := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aquasense_readings_ingested_total",
		Help: "Total readings accepted and classified.",
	})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aquasense_readings_rejected_total",
		Help: "Readings rejected by validation.",
	})
	spikes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aquasense_spike_anomalies_total",
		Help: "Spike anomalies detected.",
	})
	drifts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aquasense_drift_anomalies_total",
		Help: "Drift anomalies detected.",
	})
	dropouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aquasense_dropout_anomalies_total",
		Help: "Dropout anomalies detected.",
	})
	snapshotFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aquasense_snapshot_failures_total",
		Help: "Failed ledger snapshot writes.",
	})
	swept := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aquasense_sweep_evicted_total",
		Help: "Anomalies evicted by the retention sweeper.",
	})
	ledgerGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aquasense_ledger_size",
		Help: "Current number of anomalies in the ledger.",
	})
	sensorGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aquasense_known_sensors",
		Help: "Distinct sensors seen since startup.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "aquasense_detect_latency_seconds",
		Help:    "Latency of the classify-and-append critical section per reading.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 12),
	})

	prometheus.MustRegister(ingested, rejected, spikes, drifts, dropouts,
		snapshotFailures, swept, ledgerGauge, sensorGauge, latency)

	return &PromObs{
		counters: map[string]prometheus.Counter{
			"aquasense_readings_ingested_total": ingested,
			"aquasense_readings_rejected_total": rejected,
			"aquasense_spike_anomalies_total":   spikes,
			"aquasense_drift_anomalies_total":   drifts,
			"aquasense_dropout_anomalies_total": dropouts,
			"aquasense_snapshot_failures_total": snapshotFailures,
			"aquasense_sweep_evicted_total":     swept,
		},
		gauges: map[string]prometheus.Gauge{
			"aquasense_ledger_size":   ledgerGauge,
			"aquasense_known_sensors": sensorGauge,
		},
		histos: map[string]prometheus.Observer{
			"aquasense_detect_latency_seconds": latency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	log.Printf("INFO: %s%s", msg, formatFields(fields))
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("ERROR: %s: %v%s", msg, err, formatFields(fields))
	}
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("CRITICAL: %s: %v%s", msg, err, formatFields(fields))
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func formatFields(fields []ports.Field) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	return b.String()
}

var _ ports.Observability = (*PromObs)(nil)
