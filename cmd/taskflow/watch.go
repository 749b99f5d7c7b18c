package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskflow/internal/events"
)

func watchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream task and category changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			jsonOut := a.cfg.Output == "json"
			return c.Watch(ctx, func(e events.Event) {
				if jsonOut {
					_ = json.NewEncoder(a.out).Encode(e)
					return
				}
				fmt.Fprintf(a.out, "%s  %-8s %-8s #%d\n", e.At.Local().Format(time.TimeOnly), e.Entity, e.Action, e.ID)
			})
		},
	}
}
