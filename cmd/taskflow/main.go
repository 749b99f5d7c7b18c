package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"taskflow/internal/client"
	"taskflow/internal/config"
	"taskflow/internal/logger"
)

var Version = "dev"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries the client settings shared by every API subcommand.
type app struct {
	out        io.Writer
	configPath string
	apiURL     string
	token      string
	output     string
	timeout    time.Duration
	verbose    bool

	cfg config.ClientConfig
	log *slog.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	rootCmd := &cobra.Command{
		Use:           "taskflow",
		Short:         "TaskFlow - tasks grouped by categories",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Client config file (default ~/.taskflow/config.yaml)")
	pf.StringVar(&a.apiURL, "api-url", "", "API base URL")
	pf.StringVar(&a.token, "token", "", "Bearer token")
	pf.StringVarP(&a.output, "output", "o", "", "Output format: table, json, yaml")
	pf.DurationVar(&a.timeout, "timeout", 0, "Request timeout")
	pf.BoolVar(&a.verbose, "verbose", false, "Log requests and failures to stderr")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tasksCmd(a))
	rootCmd.AddCommand(categoriesCmd(a))
	rootCmd.AddCommand(statsCmd(a))
	rootCmd.AddCommand(watchCmd(a))
	rootCmd.AddCommand(tokenCmd(a))
	rootCmd.AddCommand(configCmd(a))
	rootCmd.AddCommand(healthCmd(a))
	rootCmd.AddCommand(versionCmd(a))

	return rootCmd
}

// load resolves the client config: file and env first, then flags.
func (a *app) load() error {
	cfg, err := config.LoadClient(a.configPath)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	if a.token != "" {
		cfg.Token = a.token
	}
	if a.output != "" {
		cfg.Output = a.output
	}
	if a.timeout > 0 {
		cfg.Timeout = a.timeout
	}
	a.cfg = cfg

	a.log = logger.Discard()
	if a.verbose {
		logger.InitWriter(os.Stderr, "debug", false)
		a.log = logger.Get()
	}
	return nil
}

func (a *app) client() (*client.Client, error) {
	if err := a.load(); err != nil {
		return nil, err
	}
	return client.New(a.cfg.APIURL, client.WithToken(a.cfg.Token), client.WithTimeout(a.cfg.Timeout)), nil
}

func (a *app) printer() printer {
	return printer{out: a.out, format: a.cfg.Output}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func healthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.Health(commandContext(cmd)); err != nil {
				return fmt.Errorf("%s is unhealthy: %w", c.BaseURL(), err)
			}
			return a.printer().message(map[string]any{"status": "ok", "url": c.BaseURL()}, "%s is healthy", c.BaseURL())
		},
	}
}

func versionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(a.out, "taskflow %s\n", Version)
			return err
		},
	}
}
