package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/openregulations/docketflow/internal/models"
)

const notableMaxTokens = 1500

// findNotableComments surfaces the most substantive submissions: expert
// perspective, cited evidence, unique insight. Empty list on parse failure.
func (p *Pipeline) findNotableComments(ctx context.Context, comments []models.Comment) ([]models.NotableComment, error) {
	if len(comments) == 0 {
		return nil, nil
	}

	sample := comments
	if len(sample) > notableSampleSize {
		sample = sample[:notableSampleSize]
	}

	var b strings.Builder
	b.WriteString("Review these public comments and identify the most NOTABLE ones.\n\n")
	b.WriteString("Notable = substantive, well-reasoned, cites evidence, expert perspective, or unique insight.\n\nComments:\n")
	for _, c := range sample {
		author := c.Author
		if c.Organization != "" {
			author += " (" + c.Organization + ")"
		}
		fmt.Fprintf(&b, "[%s] by %s:\n%s\n\n", c.ID, author, truncate(c.Text, 500))
	}
	b.WriteString(`Return JSON array of top 5 notable comments:
[{"comment_id": "ID from above", "author": "Name", "organization": "Org or empty", "quality_score": 1-5, "excerpt": "Key quote (50-100 words)", "why_notable": "Brief reason"}]

Return ONLY valid JSON.`)

	reply, err := p.llm.Complete(ctx, b.String(), notableMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("notable comment search: %w", err)
	}

	notable, ok := unmarshalArray[models.NotableComment](reply)
	if !ok {
		return []models.NotableComment{}, nil
	}
	return notable, nil
}
