package main

import (
	"fmt"
	"log"
	"time"

	"github.com/The-Vheed/AquaSense-Monitor/pkg/aquasense"
)

// Embeds the detector directly: no HTTP, no collector, just in-process
// ingestion and the returned anomalies.
func main() {
	cfg := aquasense.DefaultConfig()
	cfg.Source.Kind = "http" // no background collector

	rt, err := aquasense.NewRuntime(cfg)
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}

	det := rt.Detector()

	readings := []aquasense.Reading{
		{SensorID: "pipe-7", Timestamp: time.Now().UTC(), Temperature: 22, Pressure: 2.1, Flow: 55},
		{SensorID: "pipe-7", Timestamp: time.Now().UTC().Add(2 * time.Second), Temperature: 50, Pressure: 2.1, Flow: 55},
	}

	for i := range readings {
		anomalies, err := det.Ingest(&readings[i])
		if err != nil {
			log.Fatalf("ingest: %v", err)
		}
		for _, a := range anomalies {
			fmt.Printf("%s %s sensor=%s %s\n",
				a.Timestamp.Format(time.RFC3339),
				a.Type,
				a.SensorID,
				a.Message,
			)
		}
	}

	if err := det.Close(); err != nil {
		log.Fatalf("close detector: %v", err)
	}
}
