package ports

import "github.com/The-Vheed/AquaSense-Monitor/internal/domain"

// Collector produces readings from some source (OPC UA subscription,
// simulator, replay) and pushes them into the channel handed to Start.
type Collector interface {
	Start(out chan<- *domain.Reading) error
	Stop() error
}
