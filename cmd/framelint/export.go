package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/maraichr/framelint/internal/export"
	"github.com/maraichr/framelint/pkg/schema"
)

func runExport(args []string, logger *slog.Logger) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	name := fs.String("schema", "", "schema name to export")
	format := fs.String("format", "yaml", "output format: yaml or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *name == "" {
		fmt.Fprintln(os.Stderr, "export: --schema is required")
		return 2
	}
	if *format != "yaml" && *format != "json" {
		fmt.Fprintf(os.Stderr, "export: invalid format %q: want yaml or json\n", *format)
		return 2
	}

	linter, _, code := buildLinter(fs.Args(), logger)
	if linter == nil {
		return code
	}

	def, ok := linter.Schema(*name)
	if !ok {
		msg := fmt.Sprintf("export: schema '%s' not found", *name)
		if s := schema.Suggest(*name, linter.SchemaNames()); s != "" {
			msg += fmt.Sprintf(" (did you mean '%s'?)", s)
		}
		fmt.Fprintln(os.Stderr, msg)
		return 1
	}

	doc := export.Pandera(def)
	var err error
	if *format == "json" {
		err = doc.WriteJSON(os.Stdout)
	} else {
		err = doc.WriteYAML(os.Stdout)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return 0
}
