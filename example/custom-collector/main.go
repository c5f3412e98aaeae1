package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	aquasense "github.com/The-Vheed/AquaSense-Monitor"
)

// replayCollector is a minimal custom reading source: it emits a fixed
// sequence of readings and stops.
type replayCollector struct {
	readings []aquasense.Reading
	stopCh   chan struct{}
}

func (c *replayCollector) Start(out chan<- *aquasense.Reading) error {
	c.stopCh = make(chan struct{})
	go func() {
		for i := range c.readings {
			select {
			case <-c.stopCh:
				return
			case out <- &c.readings[i]:
			}
		}
	}()
	return nil
}

func (c *replayCollector) Stop() error {
	close(c.stopCh)
	return nil
}

func main() {
	cfg := aquasense.DefaultConfig()

	base := time.Now().UTC()
	col := &replayCollector{
		readings: []aquasense.Reading{
			{SensorID: "replay-1", Timestamp: base, Temperature: 21, Pressure: 2, Flow: 60},
			{SensorID: "replay-1", Timestamp: base.Add(2 * time.Second), Temperature: 48, Pressure: 2, Flow: 60},
			{SensorID: "replay-1", Timestamp: base.Add(20 * time.Second), Temperature: 21, Pressure: 2, Flow: 60},
		},
	}

	flow, err := aquasense.ConfFromConfig(cfg, aquasense.WithFlowOptions(aquasense.WithCollector(col)))
	if err != nil {
		log.Fatalf("configure: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := flow.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("monitor exited: %v", err)
	}
}
