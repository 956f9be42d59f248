package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maraichr/framelint/internal/config"
	"github.com/maraichr/framelint/internal/discover"
	"github.com/maraichr/framelint/internal/engine"
	"github.com/maraichr/framelint/internal/server"
)

func runServe(args []string, logger *slog.Logger) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "listen address")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	linter, cfg, code := buildLinter(fs.Args(), logger)
	if linter == nil {
		return code
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.NewRouter(logger, linter),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", slog.String("error", err.Error()))
		}
	}()

	<-ctx.Done()
	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	return 0
}

// buildLinter discovers and loads the project, then performs the initial
// registry build shared by the serve and mcp facades.
func buildLinter(paths []string, logger *slog.Logger) (*engine.Linter, *config.Config, int) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, 2
	}
	root := config.FindProjectRoot(paths[0])
	if err := cfg.ApplyProjectFile(root); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, 2
	}

	files, err := discover.Files(root, paths, cfg.Exclude)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, 2
	}

	linter, err := engine.NewLinter(context.Background(), engine.New(cfg, logger), files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "framelint: %v\n", err)
		return nil, nil, 2
	}
	logger.Info("project loaded",
		slog.String("root", root),
		slog.Int("files", len(files)),
		slog.Int("schemas", len(linter.SchemaNames())))
	return linter, cfg, 0
}
