package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// printer renders command results as a table, JSON or YAML.
type printer struct {
	out    io.Writer
	format string
}

// print writes v in the structured formats, or calls table for the default one.
func (p printer) print(v any, table func(w io.Writer)) error {
	switch p.format {
	case "json":
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "", "table":
		tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", p.format)
	}
}

// message prints a confirmation line in table mode and v otherwise.
func (p printer) message(v any, format string, args ...any) error {
	return p.print(v, func(w io.Writer) {
		fmt.Fprintf(w, format+"\n", args...)
	})
}
