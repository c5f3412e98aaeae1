package ports

import (
	"context"

	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
)

// Summarizer turns a list of anomalies into a human-readable summary.
type Summarizer interface {
	Summarize(ctx context.Context, anomalies []domain.Anomaly) (string, error)
	Ping(ctx context.Context) error
}
