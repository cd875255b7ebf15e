package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tribunal/internal/adapters/config"
	"tribunal/internal/adapters/marketdata"
	"tribunal/internal/api"
	"tribunal/internal/api/jsonrpc"
	"tribunal/internal/metrics"
	"tribunal/internal/tools"
	"tribunal/pkg/logger"
)

const (
	serviceName    = "financial-analysis-server"
	serviceVersion = "1.0.0"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the financial analysis tool gateway",
	Run:   runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides SERVER_PORT)")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, tracker, err := bootstrap()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	metrics.Init()

	registry := buildRegistry(cfg)
	rpc := jsonrpc.NewHandler(registry)

	port := cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}

	srv := api.NewServer(api.ServerConfig{
		Port:        port,
		ServiceName: serviceName,
		Version:     serviceVersion,
	}, rpc, log)

	printServerBanner(registry, port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil {
			log.Errorf("HTTP server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Shutdown failed: %v", err)
	}

	if err := tracker.Flush(shutdownCtx); err != nil {
		log.Warnf("Failed to flush error tracker: %v", err)
	}

	log.Info("Shutdown complete")
}

// buildRegistry wires the market data providers into the gateway tool set.
func buildRegistry(cfg *config.Config) *tools.Registry {
	quotes := marketdata.NewYahooProvider()
	headlines := marketdata.NewRSSProvider(cfg.News.FeedBaseURL, cfg.News.FetchTimeout)

	return tools.NewCatalog(quotes, headlines, tools.CatalogConfig{
		HistoryDays: cfg.Market.HistoryDays,
		MaxArticles: cfg.News.MaxArticles,
	})
}

func printServerBanner(registry *tools.Registry, port int) {
	fmt.Println("Starting Financial Analysis MCP Server...")
	fmt.Println("Available tools:")
	for _, t := range registry.Tools() {
		fmt.Printf("  - %s: %s\n", t.Name(), t.Description())
	}
	fmt.Println("\nMCP endpoint: /mcp (JSON-RPC 2.0)")
	fmt.Println("Health check: /health")
	fmt.Println("Info: /info")
	fmt.Printf("\nStarting server on http://0.0.0.0:%d\n", port)
}
