package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/maraichr/framelint/internal/parser"
	"github.com/maraichr/framelint/pkg/diag"
	"github.com/maraichr/framelint/pkg/schema"
)

// Linter holds one project's sources and registry for the serve and mcp
// facades, which answer repeated queries without re-reading the tree.
type Linter struct {
	eng     *Engine
	project []parser.FileInput
	base    *Result
}

// NewLinter reads the project files and performs the initial build. The
// initial run's diagnostics are available through Base.
func NewLinter(ctx context.Context, eng *Engine, paths []string) (*Linter, error) {
	inputs, err := ReadInputs(paths)
	if err != nil {
		return nil, err
	}
	l := &Linter{eng: eng, project: inputs}
	l.base = eng.Run(ctx, inputs)
	if l.base.Internal != nil {
		return nil, l.base.Internal
	}
	return l, nil
}

// Base returns the initial project-wide run.
func (l *Linter) Base() *Result { return l.base }

// Schema returns a resolved schema from the project registry.
func (l *Linter) Schema(name string) (*schema.Definition, bool) {
	return l.base.Registry.Get(name)
}

// SchemaNames lists every resolved schema in the project.
func (l *Linter) SchemaNames() []string {
	return l.base.Registry.Names()
}

// CheckFiles judges the submitted sources against the project's schemas plus
// any schemas the submissions declare themselves. Only diagnostics located
// in the submitted files are returned.
func (l *Linter) CheckFiles(ctx context.Context, files []parser.FileInput) (*Result, error) {
	submitted := make(map[string]bool, len(files))
	combined := make([]parser.FileInput, 0, len(l.project)+len(files))
	for _, f := range files {
		submitted[f.Path] = true
		combined = append(combined, f)
	}
	// Project files shadowed by a submission drop out, so an editor buffer
	// overrides its on-disk version.
	for _, f := range l.project {
		if !submitted[f.Path] {
			combined = append(combined, f)
		}
	}

	res := l.eng.Run(ctx, combined)
	if res.Internal != nil {
		return nil, res.Internal
	}
	filtered := res.Diagnostics[:0:0]
	for _, d := range res.Diagnostics {
		if submitted[d.File] {
			filtered = append(filtered, d)
		}
	}
	res.Diagnostics = filtered
	res.Files = len(files)
	return res, nil
}

// ReadInputs loads file contents for a run.
func ReadInputs(paths []string) ([]parser.FileInput, error) {
	inputs := make([]parser.FileInput, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		inputs = append(inputs, parser.FileInput{Path: p, Content: content})
	}
	return inputs, nil
}

// Outcome classifies a run result for process exit and API responses.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFindings
	OutcomeInternal
)

// OutcomeOf computes the run outcome. Warnings fail the run only in strict
// mode.
func OutcomeOf(res *Result, strict bool) Outcome {
	if res.Internal != nil {
		return OutcomeInternal
	}
	errors, warnings := diag.Counts(res.Diagnostics)
	if errors > 0 || (strict && warnings > 0) {
		return OutcomeFindings
	}
	return OutcomeSuccess
}
