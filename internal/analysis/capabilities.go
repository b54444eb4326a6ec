package analysis

import (
	"context"

	"github.com/openregulations/docketflow/internal/models"
)

// CommentSource fetches docket metadata and enriched comments. Pagination,
// rate limiting, and transient-retry behavior live behind this boundary.
type CommentSource interface {
	FetchDocketInfo(ctx context.Context, docketID string) (models.DocketInfo, error)
	FetchComments(ctx context.Context, docketID string, limit int) ([]models.Comment, error)
}

// TextCompleter is the external classification capability: one prompt in,
// raw text out. Stateless across calls.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// AnalysisSink persists completed analysis artifacts.
type AnalysisSink interface {
	SaveAnalysis(ctx context.Context, result models.AnalysisResult) error
	GetAnalysis(ctx context.Context, docketID string) (*models.AnalysisResult, error)
}

// CommentStore optionally persists enriched comments as they stream in.
type CommentStore interface {
	SaveComments(ctx context.Context, comments []models.Comment) error
}
