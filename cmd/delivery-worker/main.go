package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BearBump/DeliveryWatch/config"
	"github.com/BearBump/DeliveryWatch/internal/logging"
	"github.com/BearBump/DeliveryWatch/internal/wiring"
	"github.com/pkg/errors"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	logging.Setup(os.Stdout, cfg.DeliveryWatch.LogLevel, "service", "delivery-worker")

	swaggerPath := os.Getenv("swaggerPath")
	if swaggerPath == "" {
		swaggerPath = "api/delivery-worker.swagger.json"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := RunDeliveryWorker(ctx, cfg, wiring.DefaultFactories(), swaggerPath); err != nil && !errors.Is(err, context.Canceled) {
		panic(err)
	}
}
