package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/maraichr/framelint/internal/config"
	"github.com/maraichr/framelint/internal/discover"
	"github.com/maraichr/framelint/internal/engine"
	"github.com/maraichr/framelint/internal/report"
)

func runCheck(args []string, logger *slog.Logger) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	strict := fs.Bool("strict", false, "treat warnings as failures")
	format := fs.String("format", "", "output format: human or json")
	jobs := fs.Int("jobs", 0, "number of parallel workers")
	noColor := fs.Bool("no-color", false, "disable ANSI colors")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	root := config.FindProjectRoot(paths[0])
	if err := cfg.ApplyProjectFile(root); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *strict {
		cfg.Strict = true
	}
	if *format != "" {
		cfg.OutputFormat = *format
	}
	if cfg.OutputFormat != "human" && cfg.OutputFormat != "json" {
		fmt.Fprintf(os.Stderr, "invalid format %q: want human or json\n", cfg.OutputFormat)
		return 2
	}
	if *jobs > 0 {
		cfg.Jobs = *jobs
	}
	if !cfg.Enabled {
		logger.Info("framelint disabled for this project", slog.String("root", root))
		return 0
	}

	files, err := discover.Files(root, paths, cfg.Exclude)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	inputs, err := engine.ReadInputs(files)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	res := engine.New(cfg, logger).Run(context.Background(), inputs)
	if res.Internal != nil {
		fmt.Fprintf(os.Stderr, "framelint: %v\n", res.Internal)
		return 2
	}

	rep := &report.Report{
		RunID:       res.RunID,
		Diagnostics: res.Diagnostics,
		Files:       res.Files,
		Elapsed:     res.Elapsed,
	}
	if cfg.OutputFormat == "json" {
		if err := rep.WriteJSON(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	} else {
		color := !*noColor && (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))
		rep.WriteHuman(os.Stdout, color)
	}

	if engine.OutcomeOf(res, cfg.Strict) != engine.OutcomeSuccess {
		return 1
	}
	return 0
}
