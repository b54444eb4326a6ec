package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/openregulations/docketflow/internal/orchestration"
)

const summaryMaxTokens = 1000

// generateSummary produces the executive prose. The reply is used verbatim;
// there is no structure to parse, so the only failure mode is transport.
func (p *Pipeline) generateSummary(ctx context.Context, state *orchestration.AnalysisState) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a brief executive summary of public comments on %s - %s.\n\n",
		state.DocketID, state.DocketTitle)
	fmt.Fprintf(&b, "Total comments: %d\n", len(state.Comments))
	fmt.Fprintf(&b, "Form letter percentage: %.0f%%\n", state.FormLetterPercentage)
	fmt.Fprintf(&b, "Sentiment: %.0f%% support, %.0f%% oppose, %.0f%% neutral\n\n",
		state.Sentiment.Support, state.Sentiment.Oppose, state.Sentiment.Neutral)

	if len(state.Themes) > 0 {
		b.WriteString("Main themes:\n")
		for i, t := range state.Themes {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
		}
		b.WriteString("\n")
	}

	if len(state.Campaigns) > 0 {
		b.WriteString("Form letter campaigns:\n")
		for i, c := range state.Campaigns {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "- %d comments (%.1f%%): %q\n", c.Count, c.Percentage, truncate(c.TemplatePreview, 100))
		}
		b.WriteString("\n")
	}

	b.WriteString(`Write 2-3 paragraphs summarizing:
1. Overall public sentiment
2. Key concerns/arguments
3. Notable patterns (campaigns, who's commenting)

Be factual and balanced. Write as if briefing a busy executive.`)

	reply, err := p.llm.Complete(ctx, b.String(), summaryMaxTokens)
	if err != nil {
		return "", fmt.Errorf("summary generation: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
