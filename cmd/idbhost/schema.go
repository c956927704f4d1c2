package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/reglet-idb/application/config"
	"github.com/reglet-dev/reglet-idb/application/schema"
	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/domain/ports"
)

func schemaRegistry() (ports.SchemaRegistry, error) {
	reg := schema.NewRegistry(schema.WithStrictMode(true))
	if err := reg.Register("manifest", entities.Manifest{}); err != nil {
		return nil, err
	}
	if err := reg.Register("config", config.HostConfig{}); err != nil {
		return nil, err
	}
	return reg, nil
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema manifest|config",
		Short:     "Print the JSON schema of a module manifest or the host configuration",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"manifest", "config"},
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := schemaRegistry()
			if err != nil {
				return err
			}
			s, ok := reg.GetSchema(args[0])
			if !ok {
				return fmt.Errorf("unknown schema %q, want one of %v", args[0], reg.List())
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
			return err
		},
	}
}
