package producer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openregulations/docketflow/internal/clients"
	"github.com/openregulations/docketflow/internal/clients/kafka_client"
	"github.com/openregulations/docketflow/internal/models"
)

// EnqueueDocket publishes one analysis request. Dockets already analyzed
// within the Valkey TTL window are skipped so scheduled sweeps do not rerun
// fresh work.
func EnqueueDocket(ctx context.Context, docketID string, commentLimit int) error {
	if clients.GetValkeyClient().IsDocketAnalyzed(ctx, docketID) {
		slog.Info("[Enqueue] Docket analyzed recently, skipping",
			slog.String("docket_id", docketID))
		return nil
	}

	request := models.AnalysisRequest{
		DocketID:     docketID,
		CommentLimit: commentLimit,
		RequestedAt:  time.Now().UTC(),
	}

	if err := kafka_client.PublishToKafka(kafka_client.KAFKA_TOPIC_ANALYSIS_REQUESTS, docketID, request); err != nil {
		return fmt.Errorf("enqueueing docket %s: %w", docketID, err)
	}

	slog.Info("[Enqueue] Queued docket for analysis",
		slog.String("docket_id", docketID),
		slog.Int("comment_limit", commentLimit))
	return nil
}

// EnqueueDocketsForSearch discovers recently modified dockets matching a
// search term and queues each one. Discovery failures retry a few times
// before giving up on the sweep; individual publish failures skip only that
// docket.
func EnqueueDocketsForSearch(ctx context.Context, searchTerm string, maxDockets, commentLimit int) {
	slog.Info("[Enqueue] Discovering dockets...",
		slog.String("search_term", searchTerm),
		slog.Int("max_dockets", maxDockets))

	dockets, err := searchWithRetries(ctx, searchTerm, maxDockets)
	if err != nil {
		slog.Error("[Enqueue] Docket discovery failed, skipping this sweep",
			slog.String("error", err.Error()))
		return
	}
	if len(dockets) == 0 {
		slog.Warn("[Enqueue] No dockets found for search term",
			slog.String("search_term", searchTerm))
		return
	}

	queued := 0
	for _, docket := range dockets {
		select {
		case <-ctx.Done():
			slog.Warn("[Enqueue] Context cancelled during sweep")
			return
		default:
		}

		if err := EnqueueDocket(ctx, docket.ID, commentLimit); err != nil {
			slog.Warn("[Enqueue] Failed to queue docket",
				slog.String("docket_id", docket.ID),
				slog.String("error", err.Error()))
			continue
		}
		queued++
	}

	slog.Info("[Enqueue] Sweep complete",
		slog.Int("discovered", len(dockets)),
		slog.Int("queued", queued))
}

func searchWithRetries(ctx context.Context, searchTerm string, maxDockets int) ([]models.DocketInfo, error) {
	var dockets []models.DocketInfo
	var err error

	for attempt := 1; attempt <= 3; attempt++ {
		dockets, err = clients.GetRegulationsClient().SearchDockets(ctx, searchTerm, maxDockets)
		if err == nil {
			return dockets, nil
		}

		slog.Warn("[Enqueue] Retrying docket search",
			slog.String("search_term", searchTerm),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	return nil, err
}
