package models

type Theme struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	Count                float64  `json:"count"`
	IsCampaign           bool     `json:"is_campaign"`
	RepresentativeQuotes []string `json:"representative_quotes,omitempty"`
}

// SentimentBreakdown is the estimated percentage split across the full
// comment set. Values should sum to roughly 100 but the classifier is not
// trusted to guarantee it.
type SentimentBreakdown struct {
	Support float64 `json:"support"`
	Oppose  float64 `json:"oppose"`
	Neutral float64 `json:"neutral"`
}

type NotableComment struct {
	CommentID    string `json:"comment_id"`
	Author       string `json:"author"`
	Organization string `json:"organization,omitempty"`
	QualityScore int    `json:"quality_score"`
	Excerpt      string `json:"excerpt"`
	WhyNotable   string `json:"why_notable"`
}
