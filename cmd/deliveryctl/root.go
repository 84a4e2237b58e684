package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/BearBump/DeliveryWatch/config"
	"github.com/BearBump/DeliveryWatch/internal/logging"
	"github.com/BearBump/DeliveryWatch/internal/models"
	"github.com/BearBump/DeliveryWatch/internal/services/reconciler"
	"github.com/BearBump/DeliveryWatch/internal/storage/pgshipment"
	"github.com/BearBump/DeliveryWatch/internal/wiring"
	"github.com/spf13/cobra"
)

type adminStore interface {
	CreateShipment(ctx context.Context, in models.ShipmentCreateInput) (*models.ShipmentRecord, error)
	DeleteShipment(ctx context.Context, owner, trackingNumber string) error
	UpsertContact(ctx context.Context, c pgshipment.StoredContact) error
}

type cycleRunner interface {
	RunCycle(ctx context.Context) reconciler.CycleReport
}

// ctlEnv holds the side-effecting constructors so commands can run against fakes.
type ctlEnv struct {
	loadConfig     func(path string) (*config.Config, error)
	openStore      func(cfg *config.Config) (adminStore, func(), error)
	openReconciler func(cfg *config.Config) (cycleRunner, func(), error)
	logOut         io.Writer
}

func defaultEnv() ctlEnv {
	return ctlEnv{
		loadConfig: config.LoadConfig,
		openStore: func(cfg *config.Config) (adminStore, func(), error) {
			st, err := pgshipment.New(cfg.Database.ConnString())
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		openReconciler: func(cfg *config.Config) (cycleRunner, func(), error) {
			return wiring.BuildReconciler(cfg, wiring.DefaultFactories())
		},
		logOut: os.Stderr,
	}
}

type rootOptions struct {
	configPath string
	logLevel   string

	cfg *config.Config
}

func newRootCommand(env ctlEnv) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "deliveryctl",
		Short:         "Operate the DeliveryWatch reconciler",
		Long:          "Run reconcile cycles by hand and manage tracked shipments and owner contacts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.configPath == "" {
				return fmt.Errorf("config path is required (--config or configPath env var)")
			}
			cfg, err := env.loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg

			level := opts.logLevel
			if level == "" {
				level = cfg.DeliveryWatch.LogLevel
			}
			logging.Setup(env.logOut, level, "service", "deliveryctl")
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("configPath"), "path to YAML config")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug|info|warn|error)")

	cmd.AddCommand(newCycleCommand(env, opts))
	cmd.AddCommand(newTrackCommand(env, opts))
	cmd.AddCommand(newUntrackCommand(env, opts))
	cmd.AddCommand(newContactCommand(env, opts))

	return cmd
}
