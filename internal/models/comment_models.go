package models

// Comment is one public submission on a docket, enriched with full text.
type Comment struct {
	ID           string `json:"id"`
	DocketID     string `json:"docket_id"`
	Text         string `json:"text"`
	Author       string `json:"author"`
	Organization string `json:"organization,omitempty"`
	State        string `json:"state,omitempty"`
	Date         string `json:"date"`

	// Local VADER hint computed at enrichment time. Advisory only; the
	// LLM sentiment stage remains the authoritative distribution.
	VaderScore float64 `json:"vader_score,omitempty"`
	VaderLabel string  `json:"vader_label,omitempty"`
}

type DocketInfo struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Agency         string `json:"agency,omitempty"`
	DocumentType   string `json:"document_type,omitempty"`
	CommentEndDate string `json:"comment_end_date,omitempty"`
}
