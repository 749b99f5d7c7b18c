package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskflow/internal/datasync"
	"taskflow/internal/model"
)

func tasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "List and manage tasks",
	}
	cmd.AddCommand(tasksListCmd(a))
	cmd.AddCommand(tasksShowCmd(a))
	cmd.AddCommand(tasksAddCmd(a))
	cmd.AddCommand(tasksUpdateCmd(a))
	cmd.AddCommand(tasksDoneCmd(a))
	cmd.AddCommand(tasksRmCmd(a))
	return cmd
}

// openTasks returns a mounted task collection. Callers must Close it.
func (a *app) openTasks(cmd *cobra.Command) (*datasync.Tasks, error) {
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	tasks := datasync.NewTasks(c.Tasks(), a.log)
	if err := tasks.Mount(commandContext(cmd)); err != nil {
		tasks.Close()
		return nil, failure(tasks.Err(), err)
	}
	return tasks, nil
}

func tasksListCmd(a *app) *cobra.Command {
	var (
		category uint
		open     bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.openTasks(cmd)
			if err != nil {
				return err
			}
			defer tasks.Close()

			items := make([]model.Task, 0)
			for _, t := range tasks.Items() {
				if category != 0 && t.CategoryID != category {
					continue
				}
				if open && t.Completed {
					continue
				}
				items = append(items, t)
			}
			return a.printer().print(items, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tDONE\tTITLE\tCATEGORY\tDESCRIPTION")
				for _, t := range items {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.ID, checkbox(t.Completed), t.Title, categoryName(t), t.DescriptionText())
				}
			})
		},
	}
	cmd.Flags().UintVarP(&category, "category", "c", 0, "Only tasks of this category id")
	cmd.Flags().BoolVar(&open, "open", false, "Only incomplete tasks")
	return cmd
}

// tasksShowCmd reads one task straight from the server, bypassing the
// collection cache.
func tasksShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "show <id>",
		Aliases: []string{"get"},
		Short:   "Show a single task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			task, err := c.Tasks().Get(commandContext(cmd), id)
			if err != nil {
				return failure("Failed to load task", err)
			}
			return a.printer().print(task, func(w io.Writer) {
				fmt.Fprintf(w, "ID:\t%d\n", task.ID)
				fmt.Fprintf(w, "Title:\t%s\n", task.Title)
				fmt.Fprintf(w, "Done:\t%s\n", checkbox(task.Completed))
				fmt.Fprintf(w, "Category:\t%s\n", categoryName(task))
				if d := task.DescriptionText(); d != "" {
					fmt.Fprintf(w, "Description:\t%s\n", d)
				}
				fmt.Fprintf(w, "Created:\t%s\n", task.CreatedAt.Format(time.RFC3339))
			})
		},
	}
}

func tasksAddCmd(a *app) *cobra.Command {
	var (
		category    uint
		description string
	)
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.openTasks(cmd)
			if err != nil {
				return err
			}
			defer tasks.Close()

			input := model.TaskInput{Title: strings.Join(args, " "), CategoryID: category}
			if cmd.Flags().Changed("description") {
				input.Description = &description
			}
			task, err := tasks.Create(commandContext(cmd), input)
			if err != nil {
				return failure(tasks.Err(), err)
			}
			return a.printer().message(task, "Created task #%d %q", task.ID, task.Title)
		},
	}
	cmd.Flags().UintVarP(&category, "category", "c", 0, "Category id (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Optional description")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func tasksUpdateCmd(a *app) *cobra.Command {
	var (
		title       string
		description string
		category    uint
		completed   bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}

			var patch model.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("category") {
				patch.CategoryID = &category
			}
			if flags.Changed("completed") {
				patch.Completed = &completed
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to update: pass --title, --description, --category or --completed")
			}

			tasks, err := a.openTasks(cmd)
			if err != nil {
				return err
			}
			defer tasks.Close()

			task, err := tasks.Update(commandContext(cmd), id, patch)
			if err != nil {
				return failure(tasks.Err(), err)
			}
			return a.printer().message(task, "Updated task #%d", task.ID)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description (empty clears it)")
	cmd.Flags().UintVarP(&category, "category", "c", 0, "New category id")
	cmd.Flags().BoolVar(&completed, "completed", false, "Completion state")
	return cmd
}

func tasksDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle"},
		Short:   "Toggle the completion state of a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			tasks, err := a.openTasks(cmd)
			if err != nil {
				return err
			}
			defer tasks.Close()

			task, ok := tasks.Get(id)
			if !ok {
				return fmt.Errorf("task #%d not found", id)
			}
			updated, err := tasks.ToggleComplete(commandContext(cmd), task)
			if err != nil {
				return failure(tasks.Err(), err)
			}
			state := "open"
			if updated.Completed {
				state = "completed"
			}
			return a.printer().message(updated, "Task #%d is now %s", updated.ID, state)
		},
	}
}

func tasksRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			tasks, err := a.openTasks(cmd)
			if err != nil {
				return err
			}
			defer tasks.Close()

			if err := tasks.Delete(commandContext(cmd), id); err != nil {
				return failure(tasks.Err(), err)
			}
			return a.printer().message(map[string]any{"success": true, "id": id}, "Deleted task #%d", id)
		},
	}
}

func parseIDArg(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func categoryName(t model.Task) string {
	if t.Category == nil {
		return strconv.FormatUint(uint64(t.CategoryID), 10)
	}
	return t.Category.Name
}
