package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskflow/internal/config"
)

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the client config",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective client config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			p := a.printer()
			if p.format == "table" || p.format == "" {
				p.format = "yaml"
			}
			return p.print(a.cfg, nil)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective client config to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			path := a.configPath
			if path == "" {
				path = config.ClientConfigPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists; pass --force to overwrite", path)
			}
			if err := config.WriteClient(path, a.cfg); err != nil {
				return err
			}
			_, err := fmt.Fprintf(a.out, "wrote %s\n", path)
			return err
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
