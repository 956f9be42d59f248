package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

const usage = `framelint — static column checking for typed dataframes

Usage:
  framelint check  [--strict] [--format human|json] [--jobs N] [--no-color] PATH...
  framelint serve  [--addr :8321] PATH...
  framelint mcp    [--addr :8322] PATH...
  framelint export --schema NAME [--format yaml|json] PATH...
`

func main() {
	_ = godotenv.Load(".env")

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var code int
	switch os.Args[1] {
	case "check":
		code = runCheck(os.Args[2:], logger)
	case "serve":
		code = runServe(os.Args[2:], logger)
	case "mcp":
		code = runMCP(os.Args[2:], logger)
	case "export":
		code = runExport(os.Args[2:], logger)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		code = 2
	}
	os.Exit(code)
}
