package models

import "time"

// AnalysisRequest asks the worker to analyze one docket.
type AnalysisRequest struct {
	DocketID     string    `json:"docket_id"`
	CommentLimit int       `json:"comment_limit,omitempty"`
	RequestedAt  time.Time `json:"requested_at"`
}

// AnalysisResult is the externally visible artifact of a completed run.
type AnalysisResult struct {
	DocketID             string             `json:"docket_id"`
	DocketTitle          string             `json:"docket_title"`
	TotalComments        int                `json:"total_comments"`
	UniqueComments       int                `json:"unique_comments"`
	FormLetterCount      int                `json:"form_letter_count"`
	FormLetterPercentage float64            `json:"form_letter_percentage"`
	HighQualityCount     int                `json:"high_quality_count"`
	Sentiment            SentimentBreakdown `json:"sentiment"`
	Themes               []Theme            `json:"themes"`
	Campaigns            []Campaign         `json:"campaigns"`
	NotableComments      []NotableComment   `json:"notable_comments"`
	ExecutiveSummary     string             `json:"executive_summary"`
	AnalyzedAt           time.Time          `json:"analyzed_at"`
}
