package models

// Campaign is a form-letter cluster of comments sharing a normalized text
// signature. Recomputed on every run.
type Campaign struct {
	ID              string   `json:"id"`
	TemplatePreview string   `json:"template_preview"`
	Count           int      `json:"count"`
	Percentage      float64  `json:"percentage"`
	CommentIDs      []string `json:"comment_ids,omitempty"`
}
