// Package engine orchestrates a check run: a registry-building phase over
// every file, a hard barrier, then a parallel checking phase against the
// frozen registry.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maraichr/framelint/internal/analysis"
	"github.com/maraichr/framelint/internal/config"
	"github.com/maraichr/framelint/internal/parser"
	"github.com/maraichr/framelint/internal/registry"
	"github.com/maraichr/framelint/pkg/diag"
)

// InternalFault is a bug in the checker itself, not a finding about the
// checked code. It aborts the run and names the file being processed so the
// failure can be reported.
type InternalFault struct {
	File  string
	Value any
}

func (e *InternalFault) Error() string {
	return fmt.Sprintf("internal fault while processing %s: %v", e.File, e.Value)
}

// Result is the outcome of one run. Diagnostics are sorted into their final
// stable order; Internal is non-nil only when the run aborted on a fault.
type Result struct {
	RunID       string
	Diagnostics []diag.Diagnostic
	Registry    *registry.Registry
	Files       int
	Elapsed     time.Duration
	Internal    error
}

// Engine runs checks. One engine may serve many runs; each run builds its
// own registry.
type Engine struct {
	logger   *slog.Logger
	jobs     int
	registry registry.Options
	analysis analysis.Options
}

func New(cfg *config.Config, logger *slog.Logger) *Engine {
	jobs := cfg.Jobs
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}
	return &Engine{
		logger:   logger,
		jobs:     jobs,
		registry: registry.Options{ExtraBases: cfg.SchemaBases},
		analysis: analysis.Options{
			ExtraFrameTypes: cfg.FrameTypes,
			ExtraPreserving: cfg.PreservingMethods,
		},
	}
}

// Run checks the given sources and returns every diagnostic. File-local
// failures never abort the run; only an internal fault does.
func (e *Engine) Run(ctx context.Context, inputs []parser.FileInput) *Result {
	start := time.Now()
	res := &Result{RunID: uuid.NewString(), Files: len(inputs)}

	e.logger.Info("run started",
		slog.String("run_id", res.RunID),
		slog.Int("files", len(inputs)),
		slog.Int("jobs", e.jobs))

	if len(inputs) == 0 {
		res.Diagnostics = []diag.Diagnostic{{
			Severity: diag.SeverityWarning,
			Code:     diag.CodeNoFiles,
			Message:  "no Python files found to check",
		}}
		res.Registry = emptyRegistry()
		res.Elapsed = time.Since(start)
		return res
	}

	// Phase 1: parse every file and collect raw schema declarations. The
	// per-worker partial results are merged only after the pool drains, so
	// no file is ever checked against a half-built registry.
	parsed, decls, diags, fault := e.collectPhase(ctx, inputs)
	if fault != nil {
		res.Internal = fault
		res.Elapsed = time.Since(start)
		return res
	}

	reg, resolveDiags := registry.Resolve(decls, e.registry)
	reg.Freeze()
	diags = append(diags, resolveDiags...)

	e.logger.Info("registry built",
		slog.String("run_id", res.RunID),
		slog.Int("schemas", len(reg.Names())),
		slog.Int("parsed_files", len(parsed)))

	// Phase 2: check each file against the frozen registry.
	checkDiags, fault := e.checkPhase(ctx, parsed, reg)
	if fault != nil {
		res.Internal = fault
		res.Elapsed = time.Since(start)
		return res
	}
	diags = append(diags, checkDiags...)

	diag.Sort(diags)
	res.Diagnostics = diags
	res.Registry = reg
	res.Elapsed = time.Since(start)

	errors, warnings := diag.Counts(diags)
	e.logger.Info("run completed",
		slog.String("run_id", res.RunID),
		slog.Int("errors", errors),
		slog.Int("warnings", warnings),
		slog.Duration("elapsed", res.Elapsed))
	return res
}

// collectResult is one worker's phase 1 output.
type collectResult struct {
	parsed []*parser.File
	decls  []registry.Decl
	diags  []diag.Diagnostic
	fault  error
}

func (e *Engine) collectPhase(ctx context.Context, inputs []parser.FileInput) ([]*parser.File, []registry.Decl, []diag.Diagnostic, error) {
	chunks := chunkInputs(inputs, e.jobs)
	results := make([]collectResult, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []parser.FileInput) {
			defer wg.Done()
			results[i] = e.collectChunk(ctx, chunk)
		}(i, chunk)
	}
	wg.Wait()

	var parsed []*parser.File
	var decls []registry.Decl
	var diags []diag.Diagnostic
	for _, r := range results {
		if r.fault != nil {
			return nil, nil, nil, r.fault
		}
		parsed = append(parsed, r.parsed...)
		decls = append(decls, r.decls...)
		diags = append(diags, r.diags...)
	}
	return parsed, decls, diags, nil
}

// collectChunk parses and collects one worker's share of files. Parsers are
// not safe for concurrent use, so each worker owns one.
func (e *Engine) collectChunk(ctx context.Context, chunk []parser.FileInput) (res collectResult) {
	p := parser.New()
	current := ""
	defer func() {
		if r := recover(); r != nil {
			res.fault = &InternalFault{File: current, Value: r}
		}
	}()

	for _, input := range chunk {
		if ctx.Err() != nil {
			return res
		}
		current = input.Path
		f, err := p.Parse(input)
		if err != nil {
			res.diags = append(res.diags, parseDiagnostic(input.Path, err))
			continue
		}
		res.parsed = append(res.parsed, f)
		decls, diags := registry.Collect(f, e.registry)
		res.decls = append(res.decls, decls...)
		res.diags = append(res.diags, diags...)
	}
	return res
}

type checkResult struct {
	diags []diag.Diagnostic
	fault error
}

func (e *Engine) checkPhase(ctx context.Context, parsed []*parser.File, reg *registry.Registry) ([]diag.Diagnostic, error) {
	chunks := chunkFiles(parsed, e.jobs)
	results := make([]checkResult, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []*parser.File) {
			defer wg.Done()
			results[i] = e.checkChunk(ctx, chunk, reg)
		}(i, chunk)
	}
	wg.Wait()

	var diags []diag.Diagnostic
	for _, r := range results {
		if r.fault != nil {
			return nil, r.fault
		}
		diags = append(diags, r.diags...)
	}
	return diags, nil
}

func (e *Engine) checkChunk(ctx context.Context, chunk []*parser.File, reg *registry.Registry) (res checkResult) {
	current := ""
	defer func() {
		if r := recover(); r != nil {
			res.fault = &InternalFault{File: current, Value: r}
		}
	}()

	for _, f := range chunk {
		if ctx.Err() != nil {
			return res
		}
		current = f.Path
		res.diags = append(res.diags, analysis.Check(f, reg, e.analysis)...)
	}
	return res
}

func parseDiagnostic(path string, err error) diag.Diagnostic {
	d := diag.Diagnostic{
		File:     path,
		Line:     1,
		Severity: diag.SeverityError,
		Code:     diag.CodeParseError,
		Message:  "invalid syntax",
	}
	if se, ok := err.(*parser.SyntaxError); ok {
		d.Line = se.Line
		d.Column = se.Col
	} else {
		d.Message = err.Error()
	}
	return d
}

// chunkInputs splits inputs into at most n contiguous chunks.
func chunkInputs(inputs []parser.FileInput, n int) [][]parser.FileInput {
	if len(inputs) == 0 {
		return nil
	}
	if n > len(inputs) {
		n = len(inputs)
	}
	var chunks [][]parser.FileInput
	size := (len(inputs) + n - 1) / n
	for i := 0; i < len(inputs); i += size {
		end := i + size
		if end > len(inputs) {
			end = len(inputs)
		}
		chunks = append(chunks, inputs[i:end])
	}
	return chunks
}

// chunkFiles splits parsed files the same way. Every file can fail to parse,
// so the empty case must not reach the size arithmetic.
func chunkFiles(files []*parser.File, n int) [][]*parser.File {
	if len(files) == 0 {
		return nil
	}
	if n > len(files) {
		n = len(files)
	}
	var chunks [][]*parser.File
	size := (len(files) + n - 1) / n
	for i := 0; i < len(files); i += size {
		end := i + size
		if end > len(files) {
			end = len(files)
		}
		chunks = append(chunks, files[i:end])
	}
	return chunks
}

func emptyRegistry() *registry.Registry {
	reg, _ := registry.Resolve(nil, registry.Options{})
	reg.Freeze()
	return reg
}
