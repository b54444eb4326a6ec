package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/openregulations/docketflow/config"
	"github.com/openregulations/docketflow/internal/analysis"
	"github.com/openregulations/docketflow/internal/clients"
	"github.com/openregulations/docketflow/internal/dedup"
	"github.com/openregulations/docketflow/internal/logging"
	"github.com/openregulations/docketflow/internal/orchestration"
)

func main() {
	docketID := flag.String("docket-id", "", "regulations.gov docket to analyze")
	limit := flag.Int("limit", analysis.DEFAULT_COMMENT_LIMIT, "max comments to fetch")
	output := flag.String("output", "", "write the analysis JSON to this file")
	flag.Parse()

	if *docketID == "" {
		fmt.Fprintln(os.Stderr, "usage: analyzer -docket-id DOCKET-ID [-limit N] [-output FILE]")
		os.Exit(2)
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stopChan
		slog.Warn("[Analyzer] Interrupted, cancelling run...")
		cancel()
	}()

	// Interactive runs use looser clustering than the batch worker so small
	// write-in campaigns still surface.
	pipeline := analysis.NewPipeline(
		clients.GetRegulationsClient(),
		clients.GetOpenAIClient(),
		nil,
		analysis.WithCommentLimit(*limit),
		analysis.WithDedupOptions(dedup.Options{
			MinClusterSize:  dedup.DEFAULT_MIN_CLUSTER_SIZE,
			SignatureLength: dedup.DEFAULT_SIGNATURE_LENGTH,
		}),
	)

	runner := orchestration.NewGraphRunner(pipeline.Graph(), orchestration.DEFAULT_MAX_RETRIES)
	state := runner.Run(ctx, orchestration.NewAnalysisState(*docketID))

	if state.Status != orchestration.StatusComplete {
		slog.Error("[Analyzer] Analysis failed",
			slog.String("docket_id", *docketID),
			slog.String("error_step", state.ErrorStep),
			slog.String("error", state.Error))
		os.Exit(1)
	}

	result := state.Result()

	if *output != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			slog.Error("[Analyzer] Failed to encode result", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := os.WriteFile(*output, data, 0o644); err != nil {
			slog.Error("[Analyzer] Failed to write output file",
				slog.String("path", *output),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		slog.Info("[Analyzer] Wrote analysis", slog.String("path", *output))
	}

	fmt.Printf("\n%s (%s)\n", result.DocketTitle, result.DocketID)
	fmt.Printf("Comments: %d total, %d unique, %.1f%% form letters\n",
		result.TotalComments, result.UniqueComments, result.FormLetterPercentage)
	fmt.Printf("Sentiment: %.1f%% support / %.1f%% oppose / %.1f%% neutral\n\n",
		result.Sentiment.Support, result.Sentiment.Oppose, result.Sentiment.Neutral)
	fmt.Println(result.ExecutiveSummary)
}
