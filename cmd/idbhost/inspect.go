package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/reglet-idb/domain/entities"
)

type inspectReport struct {
	Modules []entities.ModuleID      `json:"modules"`
	Entries []entities.EntrySnapshot `json:"entries"`
	Stats   entities.KindStats       `json:"stats"`
}

func newInspectCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Load the configured modules and print the host directory as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			rt, _, err := startHost(ctx, cfg, 0, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			report := inspectReport{
				Modules: rt.Modules(),
				Entries: rt.Snapshot(),
				Stats:   rt.Stats(),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return errors.Join(enc.Encode(report), rt.Close(ctx))
		},
	}
}
