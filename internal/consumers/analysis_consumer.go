package consumers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/openregulations/docketflow/internal/analysis"
	"github.com/openregulations/docketflow/internal/clients"
	"github.com/openregulations/docketflow/internal/clients/kafka_client"
	"github.com/openregulations/docketflow/internal/db"
	"github.com/openregulations/docketflow/internal/dedup"
	"github.com/openregulations/docketflow/internal/models"
	"github.com/openregulations/docketflow/internal/orchestration"
	"github.com/openregulations/docketflow/internal/utils"
)

// Batch mode uses stricter clustering than the interactive CLI: campaigns
// only count when at least 5 comments share a 500-char signature.
var batchDedupOptions = dedup.Options{
	MinClusterSize:  5,
	SignatureLength: 500,
}

// StartAnalysisConsumer drains the analysis-requests topic, runs the full
// pipeline for each docket, and publishes the artifact to analysis-results.
// Offsets are committed only after a result has been published, so a crashed
// worker replays the docket instead of dropping it.
func StartAnalysisConsumer(ctx context.Context, consumer *kafka.Consumer) {
	iterator := kafka_client.NewKafkaMessageIterator(ctx, consumer)
	committer := kafka_client.NewCommitHandler(ctx, consumer)

	store := db.NewAnalysisStore()

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[AnalysisConsumer] Consumer shutting down...")
			return
		default:
			msg, err := iterator.Next()
			if err != nil {
				utils.HandleConsumerError(err)
				continue
			}

			request, err := utils.DecodeAnalysisRequest(msg.Value)
			if err != nil {
				// Malformed requests are poison pills; commit past them.
				slog.Warn("[AnalysisConsumer] Skipping malformed request",
					slog.String("error", err.Error()))
				commitMessage(committer, msg)
				continue
			}

			utils.TrackMessage(request.DocketID, msg)

			if clients.GetValkeyClient().IsDocketAnalyzed(ctx, request.DocketID) {
				slog.Info("[AnalysisConsumer] Docket already analyzed recently, skipping",
					slog.String("docket_id", request.DocketID))
				commitMessage(committer, msg)
				continue
			}

			pipeline := analysis.NewPipeline(
				clients.GetRegulationsClient(),
				clients.GetOpenAIClient(),
				store,
				analysis.WithCommentStore(store),
				analysis.WithDedupOptions(batchDedupOptions),
				analysis.WithCommentLimit(request.CommentLimit),
			)
			runner := orchestration.NewGraphRunner(pipeline.Graph(), orchestration.DEFAULT_MAX_RETRIES)

			state := orchestration.NewAnalysisState(request.DocketID)
			final := runner.Run(ctx, state)

			if final.Status != orchestration.StatusComplete {
				slog.Error("[AnalysisConsumer] Analysis failed, leaving offset uncommitted",
					slog.String("docket_id", request.DocketID),
					slog.String("error_step", final.ErrorStep),
					slog.String("error", final.Error))
				continue
			}

			err = finishRun(ctx, final.Result(), publishToResultsTopic,
				clients.GetValkeyClient().MarkDocketAnalyzed)
			if err != nil {
				slog.Error("[AnalysisConsumer] Result publishing failed, leaving offset uncommitted",
					slog.String("docket_id", request.DocketID),
					slog.String("error", err.Error()))
				continue
			}

			if tracked, found := utils.GetMessageForDocket(request.DocketID); found {
				commitMessage(committer, tracked)
			}
		}
	}
}

var resultRetryDelay = 2 * time.Second

// finishRun publishes the artifact and marks the docket analyzed. The offset
// must not be committed unless this returns nil: a swallowed publish failure
// would lose the result event for good while the TTL mark blocks a rerun.
func finishRun(ctx context.Context, result models.AnalysisResult,
	publish func(models.AnalysisResult) error,
	markAnalyzed func(context.Context, string) error,
) error {
	var err error
	for i := 0; i < 3; i++ {
		if err = publish(result); err == nil {
			break
		}
		slog.Warn("[AnalysisConsumer] Result publishing failed",
			slog.String("docket_id", result.DocketID),
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		time.Sleep(resultRetryDelay)
	}
	if err != nil {
		return fmt.Errorf("publishing result for %s after 3 attempts: %w", result.DocketID, err)
	}

	// Best effort: an unmarked docket only risks a duplicate run.
	if err := markAnalyzed(ctx, result.DocketID); err != nil {
		slog.Warn("[AnalysisConsumer] Failed to mark docket as analyzed",
			slog.String("docket_id", result.DocketID),
			slog.String("error", err.Error()))
	}
	return nil
}

func publishToResultsTopic(result models.AnalysisResult) error {
	return kafka_client.PublishToKafka(kafka_client.KAFKA_TOPIC_ANALYSIS_RESULTS, result.DocketID, result)
}

func commitMessage(committer *kafka_client.KafkaCommitHandler, msg *kafka.Message) {
	if err := committer.Commit(msg); err != nil {
		slog.Warn("[AnalysisConsumer] Failed to commit offset",
			slog.String("error", err.Error()))
	}
}
