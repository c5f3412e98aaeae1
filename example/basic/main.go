package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	aquasense "github.com/The-Vheed/AquaSense-Monitor"
)

func main() {
	flow, err := aquasense.ConfFromConfig(aquasense.DefaultConfig())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := flow.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("monitor exited: %v", err)
	}
}
