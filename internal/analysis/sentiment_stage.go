package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/openregulations/docketflow/internal/models"
)

const sentimentMaxTokens = 500

// classifySentiment estimates the support/oppose/neutral split over the full
// comment set. The documented default on an undecodable reply is all zeros.
func (p *Pipeline) classifySentiment(ctx context.Context, comments []models.Comment, docketTitle string) (models.SentimentBreakdown, error) {
	if len(comments) == 0 {
		return models.SentimentBreakdown{}, nil
	}

	sample := comments
	if len(sample) > sentimentSampleSize {
		sample = sample[:sentimentSampleSize]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on these comments about %q, estimate the sentiment:\n\n", docketTitle)
	for _, c := range sample {
		fmt.Fprintf(&b, "- %s\n", truncate(c.Text, 200))
	}
	b.WriteString(`
What percentage support, oppose, or are neutral toward the proposed change?

Return ONLY JSON: {"support": N, "oppose": N, "neutral": N}
Numbers should sum to 100.`)

	reply, err := p.llm.Complete(ctx, b.String(), sentimentMaxTokens)
	if err != nil {
		return models.SentimentBreakdown{}, fmt.Errorf("sentiment classification: %w", err)
	}

	breakdown, ok := unmarshalObject[models.SentimentBreakdown](reply)
	if !ok {
		return models.SentimentBreakdown{}, nil
	}
	return breakdown, nil
}
