package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tribunal/internal/adapters/ai"
	"tribunal/internal/adapters/mcp"
	"tribunal/internal/adapters/notify"
	"tribunal/internal/agents"
	"tribunal/internal/api/jsonrpc"
	"tribunal/internal/services/analysis"
	"tribunal/pkg/logger"
)

var (
	analyzeModel     string
	analyzeServerURL string
	analyzeTicker    string
	analyzeMaxTurns  int
	analyzeQuiet     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the multi-agent analysis for a ticker",
	Run:   runAnalyze,
}

func init() {
	flags := analyzeCmd.Flags()
	flags.StringVar(&analyzeModel, "model", "gpt-4o-mini", "chat model to use")
	flags.StringVar(&analyzeServerURL, "server-url", "http://localhost:8000", "MCP server URL")
	flags.StringVar(&analyzeTicker, "ticker", "AAPL", "stock ticker to analyze")
	flags.IntVar(&analyzeMaxTurns, "max-turns", 6, "maximum number of conversation turns")
	flags.BoolVar(&analyzeQuiet, "quiet", false, "suppress system information output")
}

func runAnalyze(cmd *cobra.Command, args []string) {
	cfg, tracker, err := bootstrap()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.Get()

	// Flags win over the environment-driven config, so MCP_SERVER_URL
	// and friends still apply when the flag is left at its default.
	if !cmd.Flags().Changed("model") {
		analyzeModel = cfg.Agents.Model
	}
	if !cmd.Flags().Changed("server-url") {
		analyzeServerURL = cfg.Agents.ServerURL
	}
	if !cmd.Flags().Changed("max-turns") {
		analyzeMaxTurns = cfg.Agents.MaxTurns
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := ai.ForModel(ctx, cfg.AI, analyzeModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	notifier, err := notify.NewFromConfig(cfg.Telegram)
	if err != nil {
		log.Warnf("Notifications disabled: %v", err)
		notifier = notify.NoopNotifier{}
	}

	svc, err := analysis.NewService(mcp.New(analyzeServerURL, log), provider, notifier)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !analyzeQuiet {
		fmt.Println("Financial Analysis Multi-Agent System")
		fmt.Println(strings.Repeat("=", 40))
		fmt.Printf("Model: %s\n", analyzeModel)
		fmt.Printf("MCP Server: %s\n", analyzeServerURL)
		fmt.Printf("Target Ticker: %s\n", analyzeTicker)
		fmt.Println(strings.Repeat("=", 40))
	}

	fmt.Printf("Starting analysis for %s...\n", analyzeTicker)

	opts := analysis.Options{
		Model:         analyzeModel,
		Temperature:   cfg.AI.Temperature,
		MaxTurns:      analyzeMaxTurns,
		MaxToolRounds: cfg.Agents.MaxToolRounds,
	}
	if !analyzeQuiet {
		opts.OnConnect = func(info jsonrpc.ServerInfo, tools []jsonrpc.ToolDescriptor) {
			fmt.Printf("Connected to %s %s (%d tools available)\n", info.Name, info.Version, len(tools))
		}
		opts.OnTurn = func(index int, turn agents.Turn) {
			fmt.Printf("\n---------- %s ----------\n%s\n", turn.Speaker, turn.Content)
		}
	}

	report, err := svc.Run(ctx, analyzeTicker, opts)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nAnalysis interrupted by user")
			return
		}
		fmt.Printf("Error during analysis: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nAnalysis completed for %s\n", analyzeTicker)
	fmt.Printf("\nFinal Result for %s:\n", analyzeTicker)
	fmt.Println(report.Result.FinalUtterance())

	if !analyzeQuiet {
		fmt.Printf("\nTurns: %d, termination: %s, tokens: %s, elapsed: %s\n",
			report.Result.Turns,
			report.Result.Reason,
			humanize.Comma(int64(report.Result.Usage.TotalTokens)),
			report.Result.Duration.Round(time.Millisecond))
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tracker.Flush(flushCtx); err != nil {
		log.Warnf("Failed to flush error tracker: %v", err)
	}
}
