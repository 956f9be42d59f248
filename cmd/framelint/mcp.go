package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/maraichr/framelint/internal/mcptools"
)

func runMCP(args []string, logger *slog.Logger) int {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	addr := fs.String("addr", "", "listen address")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	linter, cfg, code := buildLinter(fs.Args(), logger)
	if linter == nil {
		return code
	}
	if *addr != "" {
		cfg.MCPAddr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sdkServer := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "framelint", Version: "1.0.0"}, nil)

	sdkmcp.AddTool(sdkServer, &sdkmcp.Tool{
		Name:        "list_schemas",
		Description: "List every dataframe schema declared in the project, with column counts and declaration sites.",
	}, mcptools.WrapHandler[mcptools.ListSchemasParams](mcptools.NewListSchemasHandler(linter, logger)))

	sdkmcp.AddTool(sdkServer, &sdkmcp.Tool{
		Name:        "get_schema",
		Description: "Get one schema's resolved columns: names, types, aliases, column sets, and groups.",
	}, mcptools.WrapHandler[mcptools.GetSchemaParams](mcptools.NewGetSchemaHandler(linter, logger)))

	sdkmcp.AddTool(sdkServer, &sdkmcp.Tool{
		Name:        "check_files",
		Description: "Check Python source buffers for unknown column accesses and undeclared column mutations against the project's schemas.",
	}, mcptools.WrapHandler[mcptools.CheckFilesParams](mcptools.NewCheckFilesHandler(linter, logger)))

	// Stateless mode so stale session IDs from server restarts are ignored
	// rather than returning 404.
	sdkHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return sdkServer },
		&sdkmcp.StreamableHTTPOptions{Stateless: true},
	)

	mux := http.NewServeMux()
	mux.Handle("/mcp", sdkHandler)
	mux.Handle("/", sdkHandler)

	httpServer := &http.Server{Addr: cfg.MCPAddr, Handler: mux}

	go func() {
		logger.Info("MCP server listening", slog.String("addr", cfg.MCPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP HTTP server error", slog.String("error", err.Error()))
		}
	}()

	<-ctx.Done()
	logger.Info("MCP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	return 0
}
