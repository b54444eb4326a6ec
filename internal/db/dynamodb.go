package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/openregulations/docketflow/internal/clients"
	"github.com/openregulations/docketflow/internal/models"
)

const (
	ANALYSES_TABLE_NAME = "Analyses"
	COMMENTS_TABLE_NAME = "Comments"
)

var dbClient *dynamodb.Client

func InitDynamoDB() {
	dbClient = clients.GetDynamoDBClient()
}

// StoreBatchedComments writes fetched comments in chunks of 25, the
// BatchWriteItem ceiling, retrying unprocessed items with backoff.
func StoreBatchedComments(ctx context.Context, comments []models.Comment) error {
	if dbClient == nil {
		dbClient = clients.GetDynamoDBClient()
	}

	const maxBatchSize = 25
	for i := 0; i < len(comments); i += maxBatchSize {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:

			end := i + maxBatchSize
			if end > len(comments) {
				end = len(comments)
			}

			writeRequests := make([]types.WriteRequest, 0, maxBatchSize)
			for _, comment := range comments[i:end] {
				item, err := attributevalue.MarshalMap(comment)
				if err != nil {
					return fmt.Errorf("[DynamoDB] Failed to marshal comment %s: %w", comment.ID, err)
				}
				writeRequests = append(writeRequests, types.WriteRequest{
					PutRequest: &types.PutRequest{Item: item},
				})
			}

			out, err := dbClient.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{
					COMMENTS_TABLE_NAME: writeRequests,
				},
			})
			if err != nil {
				return fmt.Errorf("[DynamoDB] Failed to batch write comments: %w", err)
			}

			retryCount := 0
			backoffDuration := time.Millisecond * 500
			for len(out.UnprocessedItems) > 0 && retryCount < 3 {
				time.Sleep(backoffDuration)
				backoffDuration *= 2
				slog.Warn("[DynamoDB] Retrying unprocessed items...",
					slog.Int("retry_attempt", retryCount+1),
					slog.Int("remaining_items", len(out.UnprocessedItems[COMMENTS_TABLE_NAME])),
				)

				out, err = dbClient.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
					RequestItems: out.UnprocessedItems,
				})
				if err != nil {
					slog.Error("[DynamoDB] Error retrying batch write",
						slog.String("error", err.Error()))
					return fmt.Errorf("[DynamoDB] Failed to retry batch write: %w", err)
				}
				retryCount++
			}

			if len(out.UnprocessedItems) > 0 {
				slog.Error("[DynamoDB] Some comments were not written even after retries",
					slog.Int("remaining_items", len(out.UnprocessedItems[COMMENTS_TABLE_NAME])))
			}
		}
	}
	slog.Info("[DynamoDB] Successfully stored comment batch", slog.Int("count", len(comments)))
	return nil
}

// UpsertAnalysis overwrites the analysis artifact for a docket. Reruns of the
// same docket replace the previous result rather than accumulating versions.
func UpsertAnalysis(ctx context.Context, result models.AnalysisResult) error {
	if dbClient == nil {
		dbClient = clients.GetDynamoDBClient()
	}

	item, err := attributevalue.MarshalMap(result)
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to marshal analysis for %s: %w", result.DocketID, err)
	}

	_, err = dbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(ANALYSES_TABLE_NAME),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to store analysis for %s: %w", result.DocketID, err)
	}

	slog.Info("[DynamoDB] Successfully stored analysis",
		slog.String("docket_id", result.DocketID))
	return nil
}

func GetAnalysis(ctx context.Context, docketID string) (*models.AnalysisResult, error) {
	if dbClient == nil {
		dbClient = clients.GetDynamoDBClient()
	}

	out, err := dbClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(ANALYSES_TABLE_NAME),
		Key: map[string]types.AttributeValue{
			"docket_id": &types.AttributeValueMemberS{Value: docketID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] Failed to fetch analysis for %s: %w", docketID, err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var result models.AnalysisResult
	if err := attributevalue.UnmarshalMap(out.Item, &result); err != nil {
		slog.Error("[DynamoDB] Unable to unmarshal analysis item", slog.String("error", err.Error()))
		return nil, err
	}
	return &result, nil
}

// GetRecentAnalyses scans the analyses table and returns artifacts completed
// at or after the cutoff. The table stays small enough (one row per docket)
// that a filtered scan beats maintaining a secondary index.
func GetRecentAnalyses(ctx context.Context, since time.Time) ([]models.AnalysisResult, error) {
	if dbClient == nil {
		dbClient = clients.GetDynamoDBClient()
	}

	var results []models.AnalysisResult
	input := &dynamodb.ScanInput{
		TableName: aws.String(ANALYSES_TABLE_NAME),
	}

	paginator := dynamodb.NewScanPaginator(dbClient, input)

	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Scan for analyses failed: %w", err)
		}
		var page []models.AnalysisResult
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal current analyses page", slog.String("error", err.Error()))
			return nil, err
		}
		for _, a := range page {
			if !a.AnalyzedAt.Before(since) {
				results = append(results, a)
			}
		}
	}
	slog.Info("[DynamoDB] Successfully retrieved recent analyses", slog.Int("count", len(results)))
	return results, nil
}

// AnalysisStore adapts the table helpers to the pipeline's sink and comment
// store interfaces.
type AnalysisStore struct{}

func NewAnalysisStore() *AnalysisStore { return &AnalysisStore{} }

func (s *AnalysisStore) SaveAnalysis(ctx context.Context, result models.AnalysisResult) error {
	return UpsertAnalysis(ctx, result)
}

func (s *AnalysisStore) GetAnalysis(ctx context.Context, docketID string) (*models.AnalysisResult, error) {
	return GetAnalysis(ctx, docketID)
}

func (s *AnalysisStore) SaveComments(ctx context.Context, comments []models.Comment) error {
	return StoreBatchedComments(ctx, comments)
}
