package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			stats, err := c.Stats(commandContext(cmd))
			if err != nil {
				return failure("Failed to fetch statistics", err)
			}

			return a.printer().print(stats, func(w io.Writer) {
				fmt.Fprintf(w, "Tasks:\t%d\n", stats.TotalTasks)
				if stats.TotalTasks > 0 {
					fmt.Fprintf(w, "Completed:\t%d (%d%%)\n", stats.CompletedTasks, stats.CompletionRate())
				} else {
					fmt.Fprintf(w, "Completed:\t%d\n", stats.CompletedTasks)
				}
				fmt.Fprintf(w, "Categories:\t%d\n", stats.TotalCategories)
				if len(stats.TasksByCategory) > 0 {
					fmt.Fprintln(w, "\nCATEGORY\tTASKS")
					for _, c := range stats.TasksByCategory {
						fmt.Fprintf(w, "%s\t%d\n", c.Name, c.Count.Tasks)
					}
				}
				if len(stats.RecentTasks) > 0 {
					fmt.Fprintln(w, "\nRECENT\tDONE\tTITLE")
					for _, t := range stats.RecentTasks {
						fmt.Fprintf(w, "%d\t%s\t%s\n", t.ID, checkbox(t.Completed), t.Title)
					}
				}
			})
		},
	}
}
