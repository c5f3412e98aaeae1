package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
	"github.com/The-Vheed/AquaSense-Monitor/internal/ports"
)

const promptTemplate = `You are an expert system for a water treatment facility.
Analyze the following list of detected sensor anomalies and provide a concise, human-readable summary.
Focus on the most important events and their impact. If no anomalies are present, state that.

Your response must be as brief as possible, while still conveying concise analytics on the anomalies.

Anomalies:
%s

Summary:`

// Config points the summarizer at an Ollama server.
type Config struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 11434
	}
	if c.Model == "" {
		c.Model = "mistral"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.2
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 512
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
}

// Ollama generates anomaly summaries via an Ollama server's REST API.
type Ollama struct {
	cfg     Config
	baseURL string
	client  *http.Client
}

func NewOllama(cfg Config) *Ollama {
	cfg.ApplyDefaults()
	return &Ollama{
		cfg:     cfg,
		baseURL: fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Summarize renders the anomaly list into the facility prompt and asks the
// model for a short narrative.
func (o *Ollama) Summarize(ctx context.Context, anomalies []domain.Anomaly) (string, error) {
	if anomalies == nil {
		anomalies = []domain.Anomaly{}
	}
	listing, err := json.MarshalIndent(anomalies, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal anomalies: %w", err)
	}

	body, err := json.Marshal(generateRequest{
		Model:  o.cfg.Model,
		Prompt: fmt.Sprintf(promptTemplate, listing),
		Stream: false,
		Options: map[string]any{
			"temperature": o.cfg.Temperature,
			"num_predict": o.cfg.MaxTokens,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("ollama generate: status %d: %s", resp.StatusCode, msg)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return out.Response, nil
}

// Ping checks that the Ollama server is reachable.
func (o *Ollama) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama ping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama ping: status %d", resp.StatusCode)
	}
	return nil
}

var _ ports.Summarizer = (*Ollama)(nil)
