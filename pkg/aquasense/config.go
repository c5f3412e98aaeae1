package aquasense

import (
	"github.com/The-Vheed/AquaSense-Monitor/internal/adapters/opcua"
	"github.com/The-Vheed/AquaSense-Monitor/internal/adapters/simulator"
	"github.com/The-Vheed/AquaSense-Monitor/internal/adapters/summarizer"
	"github.com/The-Vheed/AquaSense-Monitor/internal/app/config"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// ServerConfig configures the ingestion/query HTTP server.
	ServerConfig = config.ServerConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// SnapshotConfig configures on-disk snapshot persistence.
	SnapshotConfig = config.SnapshotConfig
	// LedgerConfig sizes the anomaly ledger and its retention sweep.
	LedgerConfig = config.LedgerConfig
	// RulesConfig holds the detection thresholds.
	RulesConfig = config.RulesConfig
	// BoundsConfig holds one parameter's thresholds.
	BoundsConfig = config.BoundsConfig
	// SourceConfig selects the reading source.
	SourceConfig = config.SourceConfig
	// OPCUAConfig holds connection + node details.
	OPCUAConfig = opcua.Config
	// OPCUANodeConfig describes a monitored tag.
	OPCUANodeConfig = opcua.NodeConfig
	// SimulatorConfig controls the synthetic reading generator.
	SimulatorConfig = simulator.Config
	// OllamaConfig points the summarizer at an Ollama server.
	OllamaConfig = summarizer.Config
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() *Config {
	return config.Default()
}
