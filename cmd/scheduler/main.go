package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/openregulations/docketflow/config"
	"github.com/openregulations/docketflow/internal/analysis"
	"github.com/openregulations/docketflow/internal/clients"
	"github.com/openregulations/docketflow/internal/clients/kafka_client"
	"github.com/openregulations/docketflow/internal/logging"
	"github.com/openregulations/docketflow/internal/producer"
)

func main() {
	docketIDs := flag.String("docket-ids", "", "comma separated docket ids to queue once, bypassing discovery")
	limit := flag.Int("limit", analysis.DEFAULT_COMMENT_LIMIT, "max comments per docket")
	flag.Parse()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := kafka_client.GetKafkaConfig()
	for {
		err := kafka_client.InitProducer(cfg)
		if err == nil {
			break
		}

		slog.Warn("Kafka init failed, retrying...", slog.String("error", err.Error()))
		time.Sleep(5 * time.Second)
	}
	defer kafka_client.CloseProducer()

	clients.InitValkey()
	defer clients.CloseValkey()

	// One-shot mode: queue the named dockets and exit.
	if *docketIDs != "" {
		for _, id := range strings.Split(*docketIDs, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if err := producer.EnqueueDocket(ctx, id, *limit); err != nil {
				slog.Error("Failed to queue docket",
					slog.String("docket_id", id),
					slog.String("error", err.Error()))
			}
		}
		return
	}

	searchTerm := os.Getenv("DOCKET_SEARCH_TERM")

	sweepInterval, err := strconv.Atoi(os.Getenv("DOCKET_FETCH_INTERVAL"))
	if err != nil {
		sweepInterval = 21600 // Default to 6 hours (in seconds)
	}

	maxDockets, err := strconv.Atoi(os.Getenv("DOCKET_SWEEP_MAX"))
	if err != nil {
		maxDockets = 10
	}

	sweepTicker := time.NewTicker(time.Duration(sweepInterval) * time.Second)
	defer sweepTicker.Stop()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)

	// Sweep once on startup, then on every tick.
	producer.EnqueueDocketsForSearch(ctx, searchTerm, maxDockets, *limit)

	for {
		select {
		case <-sweepTicker.C:
			producer.EnqueueDocketsForSearch(ctx, searchTerm, maxDockets, *limit)

		case <-stopChan:
			slog.Info("Shutting down scheduler gracefully...")
			return
		}
	}
}
