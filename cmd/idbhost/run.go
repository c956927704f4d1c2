package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/reglet-idb/sim"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		frames int
		step   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load the configured modules and run the simulation loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("frames") {
				if frames < 0 {
					return fmt.Errorf("--frames must be >= 0, got %d", frames)
				}
				cfg.Frames = frames
			}

			ctx := cmd.Context()
			rt, logger, err := startHost(ctx, cfg, step, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			stats, runErr := sim.Run(ctx, rt.Scope(), cfg.Frames, cmd.OutOrStdout())
			closeErr := rt.Close(ctx)
			if err := errors.Join(runErr, closeErr); err != nil {
				return err
			}

			logger.InfoContext(ctx, "host stopped", "frames", cfg.Frames,
				"recent_fps", stats.RecentFPS, "smooth_fps", stats.SmoothFPS)
			return nil
		},
	}
	cmd.Flags().IntVarP(&frames, "frames", "n", 0, "frames to run (default from config)")
	cmd.Flags().DurationVar(&step, "step", 0, "fixed frame duration; 0 measures wall time")
	return cmd
}
