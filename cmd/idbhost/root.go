package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	idb "github.com/reglet-dev/reglet-idb"
	"github.com/reglet-dev/reglet-idb/application/config"
	"github.com/reglet-dev/reglet-idb/host"
	"github.com/reglet-dev/reglet-idb/sim"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "idbhost",
		Short:        "Run modules around a shared interface directory",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "host configuration file (YAML)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(newRunCmd(opts), newInspectCmd(opts), newSchemaCmd())
	return root
}

func (o *rootOptions) load() (*config.HostConfig, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// startHost builds the runtime, installs the simulation modules and loads
// every configured WASM module. The caller closes the runtime.
func startHost(ctx context.Context, cfg *config.HostConfig, step time.Duration, logOut io.Writer) (*host.Runtime, *slog.Logger, error) {
	logger, err := cfg.Log.Logger(logOut)
	if err != nil {
		return nil, nil, err
	}

	rt, err := host.NewRuntime(ctx, host.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}

	for _, m := range sim.Modules(sim.WithStep(step)) {
		if err := rt.Install(ctx, m, nil); err != nil {
			_ = rt.Close(ctx)
			return nil, nil, err
		}
	}
	for _, m := range cfg.Modules {
		if err := rt.LoadFile(ctx, m.Manifest, m.Wasm, idb.Config(m.Config)); err != nil {
			_ = rt.Close(ctx)
			return nil, nil, err
		}
	}
	return rt, logger, nil
}
