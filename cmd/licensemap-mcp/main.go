package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/licensemap/internal/infrastructure/bootstrap"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/config"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/mcp"
	"github.com/felixgeelhaar/licensemap/internal/log"
	"github.com/felixgeelhaar/licensemap/internal/log/zaplog"
)

// Version information set at build time
var version = "dev"

var (
	transport  string
	httpAddr   string
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "licensemap-mcp",
	Short: "licensemap MCP Server",
	Long: `licensemap MCP (Model Context Protocol) Server.

Exposes license resolution through the MCP protocol, so assistants can
answer which licenses a Maven project depends on.

Tools:
  license_resolve - Resolve the licenses of a project or SBOM
  license_lookup  - Find a license of the store by name or URL
  spdx_lookup     - Show an SPDX entry or canonicalize an expression

Resources:
  licensemap://config   - Current configuration
  licensemap://licenses - Licenses of the store
  licensemap://spdx     - Embedded SPDX license list

Examples:
  licensemap-mcp                     # Start with stdio transport
  licensemap-mcp --transport http    # Start HTTP server
  licensemap-mcp --http-addr :9090   # HTTP on custom port`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.Flags().StringVarP(&transport, "transport", "t", "stdio", "Transport type: stdio, http")
	rootCmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (when using http transport)")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "warn", "Diagnostic log level: error, warn, info, debug")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	if transport != "stdio" && transport != "http" {
		return fmt.Errorf("unsupported transport: %s", transport)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	// stdout carries the protocol on stdio, so diagnostics go to stderr.
	logger := zaplog.New(level, zaplog.WithOutput(os.Stderr), zaplog.WithJSON(true))
	defer func() { _ = logger.Sync(ctx) }()

	rt, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	server := mcp.NewServer(rt, version)

	if transport == "http" {
		fmt.Fprintf(os.Stderr, "Starting licensemap MCP server on %s\n", httpAddr)
		return server.ServeHTTP(ctx, httpAddr)
	}
	return server.ServeStdio(ctx)
}

func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()

	if configPath != "" {
		return loader.LoadFromFile(configPath)
	}
	return loader.Load()
}
