package simulator

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/The-Vheed/AquaSense-Monitor/internal/domain"
	"github.com/The-Vheed/AquaSense-Monitor/internal/ports"
	"github.com/The-Vheed/AquaSense-Monitor/internal/rules"
)

// Config controls the synthetic reading generator.
type Config struct {
	SensorID string        `yaml:"sensor_id"`
	Interval time.Duration `yaml:"interval"`

	// InjectAnomalies enables the periodic fault schedule: a spike every
	// 10th reading, a silence gap every 20th, a sustained temperature
	// drift around every 40th.
	InjectAnomalies bool `yaml:"inject_anomalies"`

	// DropoutSilence is how long an injected silence gap lasts.
	DropoutSilence time.Duration `yaml:"dropout_silence"`

	// Seed fixes the random source; 0 seeds from the clock.
	Seed int64 `yaml:"seed"`
}

func (c *Config) ApplyDefaults() {
	if c.SensorID == "" {
		c.SensorID = "wtf-pipe-1"
	}
	if c.Interval <= 0 {
		c.Interval = 2 * time.Second
	}
	if c.DropoutSilence <= 0 {
		c.DropoutSilence = 11 * time.Second
	}
}

// Generator produces plausible readings for one sensor on a fixed cadence,
// optionally weaving in anomalies on the injection schedule. It implements
// ports.Collector; Next is also usable directly for one-shot generation.
type Generator struct {
	cfg        Config
	thresholds rules.Thresholds
	rng        *rand.Rand

	counter    int
	silentLeft int

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewGenerator(cfg Config, t rules.Thresholds) *Generator {
	cfg.ApplyDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		cfg:        cfg,
		thresholds: t,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

func (g *Generator) Start(out chan<- *domain.Reading) error {
	g.mu.Lock()
	if g.started {
		g.mu.Unlock()
		return fmt.Errorf("simulator already started")
	}
	g.started = true
	g.stopCh = make(chan struct{})
	g.doneCh = make(chan struct{})
	g.mu.Unlock()

	go g.run(out)
	return nil
}

func (g *Generator) Stop() error {
	g.mu.Lock()
	if !g.started {
		g.mu.Unlock()
		return nil
	}
	g.started = false
	stop := g.stopCh
	done := g.doneCh
	g.mu.Unlock()

	close(stop)
	<-done
	return nil
}

func (g *Generator) run(out chan<- *domain.Reading) {
	defer close(g.doneCh)

	ticker := time.NewTicker(g.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopCh:
			return
		case <-ticker.C:
		}

		r := g.Next(time.Now().UTC())
		if r == nil {
			continue
		}
		select {
		case <-g.stopCh:
			return
		case out <- r:
		}
	}
}

// Next produces the reading for one tick of the schedule, or nil on a tick
// swallowed by an injected silence gap.
func (g *Generator) Next(now time.Time) *domain.Reading {
	c := g.counter
	g.counter++

	if g.silentLeft > 0 {
		g.silentLeft--
		return nil
	}

	temp := g.uniform(g.thresholds.Temperature.NormalMin, g.thresholds.Temperature.NormalMax)
	pressure := g.uniform(g.thresholds.Pressure.NormalMin, g.thresholds.Pressure.NormalMax)
	flow := g.uniform(g.thresholds.Flow.NormalMin, g.thresholds.Flow.NormalMax)

	if g.cfg.InjectAnomalies {
		window := g.thresholds.DriftWindow
		switch {
		case c > window+1 && c%40 <= window:
			temp = g.uniform(g.thresholds.Temperature.DriftHigh+1, g.thresholds.Temperature.DriftHigh+5)
		case c%20 == 0 && c != 0:
			ticks := int(g.cfg.DropoutSilence / g.cfg.Interval)
			if ticks < 1 {
				ticks = 1
			}
			g.silentLeft = ticks
			return nil
		case c%10 == 0 && c != 0:
			switch g.rng.Intn(3) {
			case 0:
				temp = g.uniform(g.thresholds.Temperature.SpikeHigh+5, g.thresholds.Temperature.SpikeHigh+15)
			case 1:
				pressure = g.uniform(g.thresholds.Pressure.SpikeHigh+1, g.thresholds.Pressure.SpikeHigh+2)
			default:
				flow = g.uniform(g.thresholds.Flow.SpikeHigh+10, g.thresholds.Flow.SpikeHigh+20)
			}
		}
	}

	return &domain.Reading{
		SensorID:    g.cfg.SensorID,
		Timestamp:   now,
		Temperature: temp,
		Pressure:    pressure,
		Flow:        flow,
	}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

var _ ports.Collector = (*Generator)(nil)
