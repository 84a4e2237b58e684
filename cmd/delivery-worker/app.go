package main

import (
	"context"
	"log/slog"

	"github.com/BearBump/DeliveryWatch/config"
	"github.com/BearBump/DeliveryWatch/internal/wiring"
	"golang.org/x/sync/errgroup"
)

// RunDeliveryWorker runs the reconcile loop and the ops HTTP server until ctx is done or
// one of them fails.
func RunDeliveryWorker(ctx context.Context, cfg *config.Config, f wiring.Factories, swaggerPath string) error {
	r, closeFn, err := wiring.BuildReconciler(cfg, f)
	if err != nil {
		return err
	}
	defer closeFn()

	s := wiring.SettingsFromConfig(cfg)
	slog.Info("delivery worker starting",
		"poll_interval", s.PollInterval.String(),
		"record_delay", s.RecordDelay.String(),
		"carrier_mode", cfg.Carrier.Mode,
		"notify_mode", cfg.Notify.Mode,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.Run(gctx)
	})
	g.Go(func() error {
		return runWorkerHTTPServer(gctx, workerHTTPOpts{
			httpAddr:    s.HTTPAddr,
			swaggerPath: swaggerPath,
			reconciler:  r,
			settings:    s,
		})
	})
	return g.Wait()
}
