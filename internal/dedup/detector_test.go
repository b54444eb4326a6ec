package dedup

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openregulations/docketflow/internal/models"
)

func makeComments(texts ...string) []models.Comment {
	comments := make([]models.Comment, 0, len(texts))
	for i, text := range texts {
		comments = append(comments, models.Comment{
			ID:   fmt.Sprintf("DOCKET-0001-%04d", i+1),
			Text: text,
		})
	}
	return comments
}

func TestNormalizeStripsMarkupAndCollapsesWhitespace(t *testing.T) {
	in := "<p>Please  REJECT &nbsp; this\n\nrule.</p>"
	assert.Equal(t, "please reject this rule.", Normalize(in, 100))
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"<div>Some <b>bold</b> claim &amp; more</div>",
		"  plain   text with   gaps  ",
		"ALL CAPS SHOUTING",
		"Comments from AT&T; regarding the rule",
		"Mixed case entity &NBSP; and &Amp; here",
		"Numeric entity &#39;quoted&#39; text",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in, 100)
		assert.Equal(t, once, Normalize(once, 100), "input %q", in)
	}
}

func TestNormalizeStripsNumericEntities(t *testing.T) {
	assert.Equal(t, "don t panic", Normalize("Don&#39;t panic", 100))
}

func TestNormalizeTruncatesToPrefix(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "word "
	}
	sig := Normalize(long, 100)
	assert.LessOrEqual(t, len([]rune(sig)), 100)
}

func TestDetectPartitionProperty(t *testing.T) {
	comments := makeComments(
		"I support this rule.",
		"I support this rule.",
		"I oppose this rule strongly.",
		"Something else entirely.",
		"I support this rule.",
	)

	campaigns, unique := Detect(comments, Options{})

	seen := make(map[string]int)
	for _, c := range unique {
		seen[c.ID]++
	}
	for _, campaign := range campaigns {
		for _, id := range campaign.CommentIDs {
			seen[id]++
		}
	}

	// Every comment in exactly one of {campaign, unique}.
	require.Len(t, seen, len(comments))
	for id, n := range seen {
		assert.Equal(t, 1, n, "comment %s assigned %d times", id, n)
	}
}

func TestDetectScenarioMassCampaign(t *testing.T) {
	texts := make([]string, 0, 10)
	for i := 0; i < 6; i++ {
		texts = append(texts, "Please withdraw this proposed regulation immediately.")
	}
	texts = append(texts,
		"My own thoughts on the matter.",
		"A different unique comment.",
		"Another independent view.",
		"Final distinct perspective.",
	)
	comments := makeComments(texts...)

	campaigns, unique := Detect(comments, Options{MinClusterSize: 2})

	require.Len(t, campaigns, 1)
	assert.Equal(t, "campaign_1", campaigns[0].ID)
	assert.Equal(t, 6, campaigns[0].Count)
	assert.InDelta(t, 60.0, campaigns[0].Percentage, 0.001)
	assert.Len(t, unique, 4)
	assert.InDelta(t, 60.0, FormLetterPercentage(len(comments), len(unique)), 0.001)
}

func TestDetectSingleComment(t *testing.T) {
	comments := makeComments("Just one voice here.")

	campaigns, unique := Detect(comments, Options{})

	assert.Empty(t, campaigns)
	assert.Len(t, unique, 1)
	assert.Zero(t, FormLetterPercentage(len(comments), len(unique)))
}

func TestDetectEmptyInput(t *testing.T) {
	campaigns, unique := Detect(nil, Options{})
	assert.Empty(t, campaigns)
	assert.Empty(t, unique)
	assert.Zero(t, FormLetterPercentage(0, 0))
}

func TestDetectCampaignOrdering(t *testing.T) {
	var texts []string
	for i := 0; i < 3; i++ {
		texts = append(texts, "small campaign text")
	}
	for i := 0; i < 7; i++ {
		texts = append(texts, "large campaign text")
	}
	comments := makeComments(texts...)

	campaigns, _ := Detect(comments, Options{MinClusterSize: 2})

	require.Len(t, campaigns, 2)
	assert.Equal(t, "campaign_1", campaigns[0].ID)
	assert.Equal(t, 7, campaigns[0].Count)
	assert.Equal(t, "campaign_2", campaigns[1].ID)
	assert.Equal(t, 3, campaigns[1].Count)
	assert.Greater(t, campaigns[0].Percentage, campaigns[1].Percentage)
}

func TestDetectBatchThreshold(t *testing.T) {
	var texts []string
	for i := 0; i < 4; i++ {
		texts = append(texts, "repeated four times")
	}
	for i := 0; i < 5; i++ {
		texts = append(texts, "repeated five times")
	}
	comments := makeComments(texts...)

	campaigns, unique := Detect(comments, Options{MinClusterSize: 5})

	require.Len(t, campaigns, 1)
	assert.Equal(t, 5, campaigns[0].Count)
	// The group of four falls below the batch threshold and stays unique.
	assert.Len(t, unique, 4)
}

func TestDetectPercentageAgainstFullCount(t *testing.T) {
	var texts []string
	for i := 0; i < 2; i++ {
		texts = append(texts, "cluster body")
	}
	for i := 0; i < 8; i++ {
		texts = append(texts, fmt.Sprintf("unique body %d", i))
	}
	comments := makeComments(texts...)

	campaigns, unique := Detect(comments, Options{MinClusterSize: 2})

	require.Len(t, campaigns, 1)
	assert.InDelta(t, 20.0, campaigns[0].Percentage, 0.001)
	assert.InDelta(t, 100-100*float64(len(unique))/float64(len(comments)),
		FormLetterPercentage(len(comments), len(unique)), 0.001)
}

func TestDetectGroupsEmptyBodiesTogether(t *testing.T) {
	comments := makeComments("   ", "<br/>", "a real comment")

	campaigns, unique := Detect(comments, Options{MinClusterSize: 2})

	// Blank-after-normalization bodies share the empty signature. Callers
	// that consider this degenerate filter empties before calling.
	require.Len(t, campaigns, 1)
	assert.Equal(t, 2, campaigns[0].Count)
	assert.Len(t, unique, 1)
}
