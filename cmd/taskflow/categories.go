package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"taskflow/internal/datasync"
	"taskflow/internal/model"
)

func categoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "c"},
		Short:   "List and manage categories",
	}
	cmd.AddCommand(categoriesListCmd(a))
	cmd.AddCommand(categoriesAddCmd(a))
	cmd.AddCommand(categoriesUpdateCmd(a))
	cmd.AddCommand(categoriesRmCmd(a))
	return cmd
}

func (a *app) openCategories(cmd *cobra.Command) (*datasync.Categories, error) {
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	cats := datasync.NewCategories(c.Categories(), a.log)
	if err := cats.Mount(commandContext(cmd)); err != nil {
		cats.Close()
		return nil, failure(cats.Err(), err)
	}
	return cats, nil
}

func categoriesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List categories with their task counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := a.openCategories(cmd)
			if err != nil {
				return err
			}
			defer cats.Close()

			items := cats.Items()
			return a.printer().print(items, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tCOLOR\tTASKS")
				for _, c := range items {
					fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", c.ID, c.Name, colorName(c.Color), c.Count())
				}
			})
		},
	}
}

func categoriesAddCmd(a *app) *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "add <name...>",
		Short: "Create a category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := a.openCategories(cmd)
			if err != nil {
				return err
			}
			defer cats.Close()

			input := model.CategoryInput{Name: strings.Join(args, " "), Color: resolveColor(color)}
			cat, err := cats.Create(commandContext(cmd), input)
			if err != nil {
				return failure(cats.Err(), err)
			}
			return a.printer().message(cat, "Created category #%d %q", cat.ID, cat.Name)
		},
	}
	cmd.Flags().StringVar(&color, "color", "blue", "blue, green, purple, red, yellow or a full color token")
	return cmd
}

func categoriesUpdateCmd(a *app) *cobra.Command {
	var name, color string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or recolor a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			var patch model.CategoryPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("color") {
				c := resolveColor(color)
				patch.Color = &c
			}
			if patch.Name == nil && patch.Color == nil {
				return fmt.Errorf("nothing to update: pass --name or --color")
			}

			cats, err := a.openCategories(cmd)
			if err != nil {
				return err
			}
			defer cats.Close()

			cat, err := cats.Update(commandContext(cmd), id, patch)
			if err != nil {
				return failure(cats.Err(), err)
			}
			return a.printer().message(cat, "Updated category #%d", cat.ID)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&color, "color", "", "New color")
	return cmd
}

func categoriesRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a category and all of its tasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			cats, err := a.openCategories(cmd)
			if err != nil {
				return err
			}
			defer cats.Close()

			if err := cats.Delete(commandContext(cmd), id); err != nil {
				return failure(cats.Err(), err)
			}
			return a.printer().message(map[string]any{"success": true, "id": id}, "Deleted category #%d", id)
		},
	}
}

// resolveColor accepts a short name ("green") or a full color token.
func resolveColor(s string) string {
	s = strings.TrimSpace(s)
	for _, c := range model.CategoryColors {
		if c == s || strings.HasPrefix(c, "bg-"+strings.ToLower(s)+"-") {
			return c
		}
	}
	return s
}

func colorName(token string) string {
	name, _, ok := strings.Cut(strings.TrimPrefix(token, "bg-"), "-")
	if !ok {
		return token
	}
	return name
}
