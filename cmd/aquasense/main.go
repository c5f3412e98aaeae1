package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	aquasense "github.com/The-Vheed/AquaSense-Monitor"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "simulate":
		err = simulateCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("aquasense %s: %v", cmd, err)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	flow, err := loadFlow(*cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return flow.Run(ctx)
}

// loadFlow falls back to the reference configuration when no config file is
// present, so the monitor runs out of the box with the built-in simulator.
func loadFlow(cfgPath string) (*aquasense.Flow, error) {
	if _, err := os.Stat(cfgPath); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		log.Printf("config %s not found, using defaults", cfgPath)
		return aquasense.ConfFromConfig(aquasense.DefaultConfig())
	}
	flow, err := aquasense.Conf(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return flow, nil
}

// simulateCommand runs a standalone reading producer posting to a remote
// detector, for exercising a deployment from outside the process.
func simulateCommand(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to configuration file")
	target := fs.String("target", "http://localhost:8001/data", "Detector ingestion endpoint")
	if err := fs.Parse(args); err != nil {
		return err
	}

	flow, err := loadFlow(*cfgPath)
	if err != nil {
		return err
	}
	cfg := flow.Config()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	readings := make(chan *aquasense.Reading, 16)
	gen := aquasense.NewSimulator(cfg)
	if err := gen.Start(readings); err != nil {
		return err
	}
	defer func() { _ = gen.Stop() }()

	client := &http.Client{Timeout: 10 * time.Second}
	log.Printf("simulating sensor %s against %s", cfg.Source.Simulator.SensorID, *target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-readings:
			if err := postReading(ctx, client, *target, r); err != nil {
				log.Printf("send reading: %v", err)
			}
		}
	}
}

func postReading(ctx context.Context, client *http.Client, target string, r *aquasense.Reading) error {
	body, err := json.Marshal(r)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector returned status %d", resp.StatusCode)
	}
	return nil
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := aquasense.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good\n", *cfgPath)
	return nil
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	targets := map[string]float64{
		"aquasense_readings_ingested_total": 0,
		"aquasense_spike_anomalies_total":   0,
		"aquasense_drift_anomalies_total":   0,
		"aquasense_dropout_anomalies_total": 0,
		"aquasense_ledger_size":             0,
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range targets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %f", &value); err == nil {
					targets[key] = value
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("[%s] readings=%.0f spikes=%.0f drifts=%.0f dropouts=%.0f ledger=%.0f\n",
		time.Now().Format(time.RFC3339),
		targets["aquasense_readings_ingested_total"],
		targets["aquasense_spike_anomalies_total"],
		targets["aquasense_drift_anomalies_total"],
		targets["aquasense_dropout_anomalies_total"],
		targets["aquasense_ledger_size"],
	)
	return nil
}

func printUsage() {
	fmt.Printf(`AquaSense Monitor CLI

Usage:
  aquasense <command> [flags]

Commands:
  run        Start the monitor using the provided config (default)
  simulate   Generate readings and post them to a remote detector
  validate   Load and validate a config file without starting the monitor
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  aquasense run -config ./data/config.yaml
  aquasense simulate -target http://localhost:8001/data
  aquasense validate -config ./data/config.yaml
  aquasense stats -url http://localhost:9100/metrics -interval 1s
`)
}
