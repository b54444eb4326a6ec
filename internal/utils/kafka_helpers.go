package utils

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/openregulations/docketflow/internal/models"
)

// DecodeAnalysisRequest parses and validates a payload from the
// analysis-requests topic. A request without a docket id is malformed and
// should be skipped, not retried.
func DecodeAnalysisRequest(data []byte) (models.AnalysisRequest, error) {
	var request models.AnalysisRequest
	if err := json.Unmarshal(data, &request); err != nil {
		slog.Warn("[KafkaUtils] Failed to decode analysis request",
			slog.String("error", err.Error()))
		return models.AnalysisRequest{}, err
	}

	if request.DocketID == "" {
		return models.AnalysisRequest{}, errors.New("[KafkaUtils] analysis request missing docket id")
	}
	if request.CommentLimit < 0 {
		slog.Warn("[KafkaUtils] Negative comment limit in request, using default",
			slog.String("docket_id", request.DocketID),
			slog.Int("comment_limit", request.CommentLimit))
		request.CommentLimit = 0
	}

	return request, nil
}

func HandleConsumerError(err error) {
	if err == nil {
		return
	}
	slog.Error("[KafkaUtils] Kafka Consumer Error",
		slog.String("error", err.Error()))
}
