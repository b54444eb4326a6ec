package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/openregulations/docketflow/internal/models"
)

const themeMaxTokens = 2000

type themePayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Percentage  float64 `json:"percentage"`
	Quote       string  `json:"quote"`
}

// extractThemes asks the classifier for the distinct arguments raised across
// a sample of unique comments. A reply that cannot be decoded yields an
// empty theme list, never a fault.
func (p *Pipeline) extractThemes(ctx context.Context, comments []models.Comment, docketTitle string) ([]models.Theme, error) {
	if len(comments) == 0 {
		return nil, nil
	}

	sample := comments
	if len(sample) > themeSampleSize {
		sample = sample[:themeSampleSize]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze these public comments on: %s\n\nCOMMENTS:\n", docketTitle)
	for _, c := range sample {
		region := c.State
		if region == "" {
			region = "Unknown"
		}
		fmt.Fprintf(&b, "[%s, %s]: %s\n---\n", c.Author, region, truncate(c.Text, 800))
	}
	b.WriteString(`
Extract 5-8 distinct THEMES/ARGUMENTS being made. For each:
1. Name (concise, 5-10 words)
2. Description (1 sentence)
3. Approximate percentage of comments making it
4. One representative quote

Return as JSON array:
[{"name": "...", "description": "...", "percentage": N, "quote": "..."}]

Only return the JSON, no other text.`)

	reply, err := p.llm.Complete(ctx, b.String(), themeMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("theme extraction: %w", err)
	}

	payload, ok := unmarshalArray[themePayload](reply)
	if !ok {
		return []models.Theme{}, nil
	}

	themes := make([]models.Theme, 0, len(payload))
	for _, t := range payload {
		theme := models.Theme{
			Name:        t.Name,
			Description: t.Description,
			Count:       t.Percentage,
		}
		if t.Quote != "" {
			theme.RepresentativeQuotes = []string{t.Quote}
		}
		themes = append(themes, theme)
	}
	return themes, nil
}

func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) > max {
		return string(runes[:max])
	}
	return text
}
