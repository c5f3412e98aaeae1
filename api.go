package aquasense

import (
	base "github.com/The-Vheed/AquaSense-Monitor/pkg/aquasense"
)

// Re-exported errors for convenience.
var ErrInvalidReading = base.ErrInvalidReading

// Type aliases so consumers can import github.com/The-Vheed/AquaSense-Monitor directly.
type (
	Config          = base.Config
	ServerConfig    = base.ServerConfig
	MetricsConfig   = base.MetricsConfig
	SnapshotConfig  = base.SnapshotConfig
	LedgerConfig    = base.LedgerConfig
	RulesConfig     = base.RulesConfig
	BoundsConfig    = base.BoundsConfig
	SourceConfig    = base.SourceConfig
	OPCUAConfig     = base.OPCUAConfig
	OPCUANodeConfig = base.OPCUANodeConfig
	SimulatorConfig = base.SimulatorConfig
	OllamaConfig    = base.OllamaConfig
	Flow            = base.Flow
	FlowOption      = base.FlowOption
	Runtime         = base.Runtime
	RuntimeOption   = base.RuntimeOption
	Reading         = base.Reading
	Anomaly         = base.Anomaly
	AnomalyType     = base.AnomalyType
	Parameter       = base.Parameter
	Collector       = base.Collector
	SnapshotStore   = base.SnapshotStore
	Summarizer      = base.Summarizer
	Observability   = base.Observability
	Field           = base.Field
)

// Anomaly and parameter constants.
const (
	AnomalySpike   = base.AnomalySpike
	AnomalyDrift   = base.AnomalyDrift
	AnomalyDropout = base.AnomalyDropout

	ParamTemperature = base.ParamTemperature
	ParamPressure    = base.ParamPressure
	ParamFlow        = base.ParamFlow
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func DefaultConfig() *Config {
	return base.DefaultConfig()
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...RuntimeOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

// Runtime and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func NewSimulator(cfg *Config) Collector {
	return base.NewSimulator(cfg)
}

func WithCollector(col Collector) RuntimeOption {
	return base.WithCollector(col)
}

func WithSnapshotStore(s SnapshotStore) RuntimeOption {
	return base.WithSnapshotStore(s)
}

func WithSummarizer(sum Summarizer) RuntimeOption {
	return base.WithSummarizer(sum)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}
