package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/The-Vheed/AquaSense-Monitor/internal/adapters/opcua"
	"github.com/The-Vheed/AquaSense-Monitor/internal/adapters/simulator"
	"github.com/The-Vheed/AquaSense-Monitor/internal/adapters/summarizer"
	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
	"github.com/The-Vheed/AquaSense-Monitor/internal/rules"
)

type Config struct {
	Server   ServerConfig      `yaml:"server"`
	Metrics  MetricsConfig     `yaml:"metrics"`
	Snapshot SnapshotConfig    `yaml:"snapshot"`
	Ledger   LedgerConfig      `yaml:"ledger"`
	Rules    RulesConfig       `yaml:"rules"`
	Source   SourceConfig      `yaml:"source"`
	Ollama   summarizer.Config `yaml:"ollama"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type SnapshotConfig struct {
	Dir string `yaml:"dir"`
}

type LedgerConfig struct {
	MaxEntries    int           `yaml:"max_entries"`
	Retention     time.Duration `yaml:"retention"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// BoundsConfig holds per-parameter thresholds. Spike and drift bounds left
// entirely unset default to the normal band, matching the reference
// deployment where a single excursion past the band already counts.
type BoundsConfig struct {
	NormalMin float64 `yaml:"normal_min"`
	NormalMax float64 `yaml:"normal_max"`
	SpikeLow  float64 `yaml:"spike_low"`
	SpikeHigh float64 `yaml:"spike_high"`
	DriftLow  float64 `yaml:"drift_low"`
	DriftHigh float64 `yaml:"drift_high"`
}

type RulesConfig struct {
	ReadingInterval time.Duration `yaml:"reading_interval"`
	DriftWindow     int           `yaml:"drift_window"`
	DropoutAfter    time.Duration `yaml:"dropout_after"`
	Temperature     BoundsConfig  `yaml:"temperature"`
	Pressure        BoundsConfig  `yaml:"pressure"`
	Flow            BoundsConfig  `yaml:"flow"`
}

// SourceConfig selects where readings come from. "http" relies on the POST
// /data endpoint alone; "simulator" and "opcua" additionally run a collector
// feeding the same ingestion path.
type SourceConfig struct {
	Kind      string           `yaml:"kind"`
	OPCUA     opcua.Config     `yaml:"opcua"`
	Simulator simulator.Config `yaml:"simulator"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the reference configuration without reading a file.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8001"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = "./data"
	}
	if c.Ledger.MaxEntries == 0 {
		c.Ledger.MaxEntries = 100
	}
	if c.Ledger.Retention == 0 {
		c.Ledger.Retention = 2 * time.Minute
	}
	if c.Ledger.SweepInterval == 0 {
		c.Ledger.SweepInterval = time.Minute
	}
	if c.Rules.ReadingInterval == 0 {
		c.Rules.ReadingInterval = 2 * time.Second
	}
	if c.Rules.DriftWindow == 0 {
		c.Rules.DriftWindow = 8
	}
	if c.Rules.DropoutAfter == 0 {
		c.Rules.DropoutAfter = 10 * time.Second
	}
	applyBoundsDefaults(&c.Rules.Temperature, 10, 35)
	applyBoundsDefaults(&c.Rules.Pressure, 1, 3)
	applyBoundsDefaults(&c.Rules.Flow, 20, 100)

	if c.Source.Kind == "" {
		c.Source.Kind = "simulator"
	}
	if c.Source.Simulator.Interval == 0 {
		c.Source.Simulator.Interval = c.Rules.ReadingInterval
	}
	c.Source.Simulator.ApplyDefaults()
	if c.Source.Kind == "opcua" {
		c.Source.OPCUA.ApplyDefaults()
	}
	c.Ollama.ApplyDefaults()
}

func applyBoundsDefaults(b *BoundsConfig, normalMin, normalMax float64) {
	if b.NormalMin == 0 && b.NormalMax == 0 {
		b.NormalMin = normalMin
		b.NormalMax = normalMax
	}
	if b.SpikeLow == 0 && b.SpikeHigh == 0 {
		b.SpikeLow = b.NormalMin
		b.SpikeHigh = b.NormalMax
	}
	if b.DriftLow == 0 && b.DriftHigh == 0 {
		b.DriftLow = b.NormalMin
		b.DriftHigh = b.NormalMax
	}
}

func (c *Config) Validate() error {
	if c.Ledger.MaxEntries <= 0 {
		return fmt.Errorf("ledger.max_entries must be > 0")
	}
	if c.Ledger.Retention <= 0 {
		return fmt.Errorf("ledger.retention must be > 0")
	}
	if c.Ledger.SweepInterval <= 0 {
		return fmt.Errorf("ledger.sweep_interval must be > 0")
	}
	if c.Rules.DriftWindow <= 0 {
		return fmt.Errorf("rules.drift_window must be > 0")
	}
	if c.Rules.ReadingInterval <= 0 {
		return fmt.Errorf("rules.reading_interval must be > 0")
	}
	if c.Rules.DropoutAfter <= 0 {
		return fmt.Errorf("rules.dropout_after must be > 0")
	}
	for _, pb := range []struct {
		name   domain.Parameter
		bounds BoundsConfig
	}{
		{domain.ParamTemperature, c.Rules.Temperature},
		{domain.ParamPressure, c.Rules.Pressure},
		{domain.ParamFlow, c.Rules.Flow},
	} {
		if pb.bounds.NormalMin >= pb.bounds.NormalMax {
			return fmt.Errorf("rules.%s: normal_min must be < normal_max", pb.name)
		}
	}

	switch c.Source.Kind {
	case "http", "simulator":
	case "opcua":
		if err := c.Source.OPCUA.Validate(); err != nil {
			return fmt.Errorf("opcua config: %w", err)
		}
	default:
		return fmt.Errorf("source.kind must be one of http, simulator, opcua")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	if c.Snapshot.Dir == "" {
		return fmt.Errorf("snapshot.dir is required")
	}
	return nil
}

// Thresholds converts the rule section into the engine's threshold set.
func (c *Config) Thresholds() rules.Thresholds {
	return rules.Thresholds{
		Temperature:     bounds(c.Rules.Temperature),
		Pressure:        bounds(c.Rules.Pressure),
		Flow:            bounds(c.Rules.Flow),
		DriftWindow:     c.Rules.DriftWindow,
		ReadingInterval: c.Rules.ReadingInterval,
		DropoutAfter:    c.Rules.DropoutAfter,
	}
}

func bounds(b BoundsConfig) rules.Bounds {
	return rules.Bounds{
		NormalMin: b.NormalMin,
		NormalMax: b.NormalMax,
		SpikeLow:  b.SpikeLow,
		SpikeHigh: b.SpikeHigh,
		DriftLow:  b.DriftLow,
		DriftHigh: b.DriftHigh,
	}
}
