package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
server:
  addr: ":9001"
rules:
  temperature:
    normal_min: 5
    normal_max: 40
source:
  kind: simulator
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Server.Addr != ":9001" {
		t.Fatalf("expected configured server addr :9001, got %s", cfg.Server.Addr)
	}
	if cfg.Metrics.Addr != ":9100" {
		t.Fatalf("expected default metrics addr :9100, got %s", cfg.Metrics.Addr)
	}
	if cfg.Snapshot.Dir != "./data" {
		t.Fatalf("expected default snapshot dir ./data, got %s", cfg.Snapshot.Dir)
	}
	if cfg.Ledger.MaxEntries != 100 {
		t.Fatalf("expected default ledger bound 100, got %d", cfg.Ledger.MaxEntries)
	}
	if cfg.Ledger.Retention != 2*time.Minute {
		t.Fatalf("expected default retention 2m, got %s", cfg.Ledger.Retention)
	}
	if cfg.Rules.DriftWindow != 8 {
		t.Fatalf("expected default drift window 8, got %d", cfg.Rules.DriftWindow)
	}
	if cfg.Rules.Temperature.NormalMin != 5 || cfg.Rules.Temperature.NormalMax != 40 {
		t.Fatalf("expected configured temperature band 5..40, got %v", cfg.Rules.Temperature)
	}
	// spike and drift bounds left unset collapse onto the normal band
	if cfg.Rules.Temperature.SpikeHigh != 40 || cfg.Rules.Temperature.DriftHigh != 40 {
		t.Fatalf("expected spike/drift bounds to default to the normal band, got %v", cfg.Rules.Temperature)
	}
	if cfg.Rules.Pressure.NormalMin != 1 || cfg.Rules.Pressure.NormalMax != 3 {
		t.Fatalf("expected default pressure band 1..3, got %v", cfg.Rules.Pressure)
	}
	if cfg.Source.Simulator.SensorID != "wtf-pipe-1" {
		t.Fatalf("expected default simulator sensor, got %s", cfg.Source.Simulator.SensorID)
	}
	if cfg.Ollama.Model != "mistral" {
		t.Fatalf("expected default ollama model mistral, got %s", cfg.Ollama.Model)
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Source.Kind != "simulator" {
		t.Fatalf("expected default source simulator, got %s", cfg.Source.Kind)
	}
}

func TestValidateRejectsInvertedBand(t *testing.T) {
	cfg := Default()
	cfg.Rules.Flow.NormalMin = 100
	cfg.Rules.Flow.NormalMax = 20
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for inverted normal band")
	}
}

func TestValidateRejectsUnknownSource(t *testing.T) {
	cfg := Default()
	cfg.Source.Kind = "mqtt"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown source kind")
	}
}

func TestValidateRejectsOpcuaWithoutEndpoint(t *testing.T) {
	cfg := Default()
	cfg.Source.Kind = "opcua"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for opcua source without endpoint")
	}
}

func TestThresholdsConversion(t *testing.T) {
	cfg := Default()
	th := cfg.Thresholds()

	if th.Temperature.NormalMin != 10 || th.Temperature.NormalMax != 35 {
		t.Fatalf("temperature bounds mangled: %+v", th.Temperature)
	}
	if th.DriftWindow != 8 || th.ReadingInterval != 2*time.Second || th.DropoutAfter != 10*time.Second {
		t.Fatalf("rule settings mangled: %+v", th)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("rules: [not a mapping"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
