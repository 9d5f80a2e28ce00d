package main

import (
	"log/slog"
	"os"

	_ "golang.org/x/crypto/x509roots/fallback"

	"github.com/petems/github-pr-review-mcp-server/internal/cli"
	"github.com/petems/github-pr-review-mcp-server/internal/logging"
)

// main is the entry point for the prreview CLI binary.
func main() {
	logger := logging.NewLogger(os.Stderr, slog.LevelInfo)
	if err := cli.Execute(os.Args[1:], logger); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
