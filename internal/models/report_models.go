package models

import "time"

// DailyReport summarizes analysis activity over a reporting window.
type DailyReport struct {
	Date        string    `json:"date"`
	GeneratedAt time.Time `json:"generated_at"`

	AnalysesRun      int                `json:"analyses_run"`
	CommentsAnalyzed int                `json:"comments_analyzed"`
	FormLetterShare  float64            `json:"form_letter_share"`
	AverageSentiment SentimentBreakdown `json:"average_sentiment"`

	BusiestDockets []DocketActivity `json:"busiest_dockets,omitempty"`
}

// DocketActivity is one docket's row in the report, ranked by volume.
type DocketActivity struct {
	DocketID             string    `json:"docket_id"`
	DocketTitle          string    `json:"docket_title"`
	TotalComments        int       `json:"total_comments"`
	FormLetterPercentage float64   `json:"form_letter_percentage"`
	AnalyzedAt           time.Time `json:"analyzed_at"`
}
