package analysis

import (
	"testing"

	"github.com/openregulations/docketflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDelimited(t *testing.T) {
	payload, ok := extractDelimited(`Sure! Here you go: {"support": 60} Hope that helps.`, '{', '}')
	require.True(t, ok)
	assert.Equal(t, `{"support": 60}`, payload)

	_, ok = extractDelimited("no json here", '[', ']')
	assert.False(t, ok)

	// Closing delimiter before the opening one is not a match.
	_, ok = extractDelimited("] oops [", '[', ']')
	assert.False(t, ok)
}

func TestUnmarshalObject_MarkdownFenced(t *testing.T) {
	reply := "```json\n{\"support\": 55, \"oppose\": 30, \"neutral\": 15}\n```"

	breakdown, ok := unmarshalObject[models.SentimentBreakdown](reply)
	require.True(t, ok)
	assert.InDelta(t, 55.0, breakdown.Support, 0.001)
	assert.InDelta(t, 30.0, breakdown.Oppose, 0.001)
	assert.InDelta(t, 15.0, breakdown.Neutral, 0.001)
}

func TestUnmarshalObject_RefusalYieldsZeroValue(t *testing.T) {
	breakdown, ok := unmarshalObject[models.SentimentBreakdown]("I cannot comply.")
	assert.False(t, ok)
	assert.Zero(t, breakdown.Support)
	assert.Zero(t, breakdown.Oppose)
	assert.Zero(t, breakdown.Neutral)
}

func TestUnmarshalArray_ProseWrapped(t *testing.T) {
	reply := `Here are the themes you asked for:
[{"name": "Cost burden", "description": "Compliance is expensive", "percentage": 40, "quote": "too costly"}]
Let me know if you need more.`

	themes, ok := unmarshalArray[themePayload](reply)
	require.True(t, ok)
	require.Len(t, themes, 1)
	assert.Equal(t, "Cost burden", themes[0].Name)
	assert.InDelta(t, 40.0, themes[0].Percentage, 0.001)
}

func TestUnmarshalArray_GarbageInsideDelimiters(t *testing.T) {
	_, ok := unmarshalArray[themePayload]("[this is not json]")
	assert.False(t, ok)
}

func TestTruncate_RuneSafe(t *testing.T) {
	assert.Equal(t, "héllo", truncate("héllo", 10))
	assert.Equal(t, "hél", truncate("héllo", 3))
}
