package orchestration

import (
	"time"

	"github.com/openregulations/docketflow/internal/models"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusFetching  Status = "fetching"
	StatusDetecting Status = "detecting"
	StatusAnalyzing Status = "analyzing"
	StatusReporting Status = "reporting"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// AnalysisState is the single mutable record that flows through every
// pipeline stage. Exactly one exists per run; it is owned by the runner and
// handed to one stage at a time, so no locking is needed.
type AnalysisState struct {
	DocketID string `json:"docket_id"`

	Status         Status   `json:"status"`
	CurrentStep    string   `json:"current_step,omitempty"`
	StepsCompleted []string `json:"steps_completed"`

	DocketTitle string    `json:"docket_title,omitempty"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty"`

	RawCommentCount int              `json:"raw_comment_count"`
	Comments        []models.Comment `json:"comments,omitempty"`

	Campaigns            []models.Campaign `json:"campaigns,omitempty"`
	UniqueComments       []models.Comment  `json:"unique_comments,omitempty"`
	FormLetterPercentage float64           `json:"form_letter_percentage"`

	Themes          []models.Theme            `json:"themes,omitempty"`
	Sentiment       models.SentimentBreakdown `json:"sentiment"`
	NotableComments []models.NotableComment   `json:"notable_comments,omitempty"`

	ExecutiveSummary string `json:"executive_summary,omitempty"`

	Error      string `json:"error,omitempty"`
	ErrorStep  string `json:"error_step,omitempty"`
	RetryCount int    `json:"retry_count"`
}

func NewAnalysisState(docketID string) *AnalysisState {
	return &AnalysisState{
		DocketID: docketID,
		Status:   StatusPending,
	}
}

// MarkStepComplete records that a stage finished.
func (s *AnalysisState) MarkStepComplete(step string) {
	s.StepsCompleted = append(s.StepsCompleted, step)
	s.CurrentStep = ""
}

// MarkError records a stage fault and moves the run into the error branch.
func (s *AnalysisState) MarkError(step, message string) {
	s.Status = StatusError
	s.Error = message
	s.ErrorStep = step
}

// Result assembles the externally visible artifact from whatever the run
// produced. Callers must treat it as partial when Status != StatusComplete.
func (s *AnalysisState) Result() models.AnalysisResult {
	highQuality := 0
	for _, n := range s.NotableComments {
		if n.QualityScore >= 4 {
			highQuality++
		}
	}

	return models.AnalysisResult{
		DocketID:             s.DocketID,
		DocketTitle:          s.DocketTitle,
		TotalComments:        len(s.Comments),
		UniqueComments:       len(s.UniqueComments),
		FormLetterCount:      len(s.Comments) - len(s.UniqueComments),
		FormLetterPercentage: s.FormLetterPercentage,
		HighQualityCount:     highQuality,
		Sentiment:            s.Sentiment,
		Themes:               s.Themes,
		Campaigns:            s.Campaigns,
		NotableComments:      s.NotableComments,
		ExecutiveSummary:     s.ExecutiveSummary,
		AnalyzedAt:           s.CompletedAt,
	}
}
