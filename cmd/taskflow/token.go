package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"taskflow/internal/auth"
	"taskflow/internal/config"
)

func tokenCmd(a *app) *cobra.Command {
	var (
		secret  string
		subject string
		ttl     time.Duration
		save    bool
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API token from AUTH_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				secret = cfg.AuthSecret
			}
			signer, err := auth.NewSigner(secret)
			if err != nil {
				return fmt.Errorf("set AUTH_SECRET or pass --secret: %w", err)
			}
			token, err := signer.Generate(subject, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}

			if save {
				if err := a.load(); err != nil {
					return err
				}
				a.cfg.Token = token
				path := a.configPath
				if path == "" {
					path = config.ClientConfigPath()
				}
				if err := config.WriteClient(path, a.cfg); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "token saved to %s\n", path)
			}
			_, err = fmt.Fprintln(a.out, token)
			return err
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (default $AUTH_SECRET)")
	cmd.Flags().StringVar(&subject, "subject", "cli", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "Lifetime; 0 never expires")
	cmd.Flags().BoolVar(&save, "save", false, "Store the token in the client config")
	return cmd
}
