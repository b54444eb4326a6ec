package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/openregulations/docketflow/internal/dedup"
	"github.com/openregulations/docketflow/internal/models"
	"github.com/openregulations/docketflow/internal/orchestration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	info     models.DocketInfo
	infoErr  error
	comments []models.Comment
	fetchErr error
}

func (f *fakeSource) FetchDocketInfo(ctx context.Context, docketID string) (models.DocketInfo, error) {
	return f.info, f.infoErr
}

func (f *fakeSource) FetchComments(ctx context.Context, docketID string, limit int) ([]models.Comment, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if limit < len(f.comments) {
		return f.comments[:limit], nil
	}
	return f.comments, nil
}

// fakeCompleter routes replies by prompt content so one fake covers all four
// classification calls regardless of ordering.
type fakeCompleter struct {
	themesReply    string
	sentimentReply string
	notableReply   string
	summaryReply   string
	err            error
	calls          int
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	switch {
	case strings.Contains(prompt, "THEMES/ARGUMENTS"):
		return f.themesReply, nil
	case strings.Contains(prompt, "support, oppose"):
		return f.sentimentReply, nil
	case strings.Contains(prompt, "NOTABLE"):
		return f.notableReply, nil
	default:
		return f.summaryReply, nil
	}
}

type memorySink struct {
	saved []models.AnalysisResult
}

func (m *memorySink) SaveAnalysis(ctx context.Context, result models.AnalysisResult) error {
	m.saved = append(m.saved, result)
	return nil
}

func (m *memorySink) GetAnalysis(ctx context.Context, docketID string) (*models.AnalysisResult, error) {
	for i := range m.saved {
		if m.saved[i].DocketID == docketID {
			return &m.saved[i], nil
		}
	}
	return nil, nil
}

func testComments(n int, text string) []models.Comment {
	comments := make([]models.Comment, n)
	for i := range comments {
		comments[i] = models.Comment{
			ID:     fmt.Sprintf("CMT-%03d", i),
			Author: fmt.Sprintf("Commenter %d", i),
			Text:   text,
		}
	}
	return comments
}

func wellFormedCompleter() *fakeCompleter {
	return &fakeCompleter{
		themesReply:    `[{"name": "Permit cost", "description": "Fees are too high", "percentage": 50, "quote": "fees hurt"}]`,
		sentimentReply: `{"support": 20, "oppose": 70, "neutral": 10}`,
		notableReply:   `[{"comment_id": "CMT-001", "author": "Commenter 1", "organization": "", "quality_score": 5, "excerpt": "detailed cost data", "why_notable": "cites evidence"}]`,
		summaryReply:   "Most commenters oppose the rule, citing permit costs.",
	}
}

func TestPipeline_FullRunCompletes(t *testing.T) {
	comments := testComments(4, "The permit fees in this proposal are far too high for small operators.")
	comments = append(comments,
		models.Comment{ID: "CMT-100", Author: "Dana Ortiz", Text: "I support this rule because it protects local waterways."},
		models.Comment{ID: "CMT-101", Author: "Lee Park", Text: "The compliance timeline is unrealistic for rural districts."},
		models.Comment{ID: "CMT-102", Author: "Sam Waters", Text: "Monitoring requirements duplicate existing state programs."},
	)
	source := &fakeSource{
		info:     models.DocketInfo{ID: "EPA-2024-0001", Title: "Water Permit Rule"},
		comments: comments,
	}
	llm := wellFormedCompleter()
	sink := &memorySink{}

	pipeline := NewPipeline(source, llm, sink,
		WithDedupOptions(dedup.Options{MinClusterSize: 2, SignatureLength: 100}))
	runner := orchestration.NewGraphRunner(pipeline.Graph(), 0)

	state := runner.Run(context.Background(), orchestration.NewAnalysisState("EPA-2024-0001"))

	require.Equal(t, orchestration.StatusComplete, state.Status)
	assert.Equal(t, "Water Permit Rule", state.DocketTitle)
	assert.Equal(t, []string{"fetch", "detect", "analyze", "report"}, state.StepsCompleted)

	// 4 identical comments collapse into one campaign; the rest stay unique.
	require.Len(t, state.Campaigns, 1)
	assert.Equal(t, 4, state.Campaigns[0].Count)
	assert.Len(t, state.UniqueComments, 3)

	assert.InDelta(t, 70.0, state.Sentiment.Oppose, 0.001)
	require.Len(t, state.Themes, 1)
	assert.Equal(t, "Permit cost", state.Themes[0].Name)
	assert.Equal(t, "Most commenters oppose the rule, citing permit costs.", state.ExecutiveSummary)

	require.Len(t, sink.saved, 1)
	saved := sink.saved[0]
	assert.Equal(t, 7, saved.TotalComments)
	assert.Equal(t, 3, saved.UniqueComments)
	assert.Equal(t, 4, saved.FormLetterCount)
	assert.Equal(t, 1, saved.HighQualityCount)

	// themes + sentiment + notable + summary
	assert.Equal(t, 4, llm.calls)
}

func TestPipeline_RefusalRepliesStillComplete(t *testing.T) {
	source := &fakeSource{
		info:     models.DocketInfo{ID: "DOT-2024-0099", Title: "Trucking Hours Rule"},
		comments: testComments(5, "Please reconsider the rest break requirements for long haul drivers."),
	}
	llm := &fakeCompleter{
		themesReply:    "I cannot comply.",
		sentimentReply: "I cannot comply.",
		notableReply:   "I cannot comply.",
		summaryReply:   "I cannot comply.",
	}

	pipeline := NewPipeline(source, llm, nil)
	runner := orchestration.NewGraphRunner(pipeline.Graph(), 0)

	state := runner.Run(context.Background(), orchestration.NewAnalysisState("DOT-2024-0099"))

	require.Equal(t, orchestration.StatusComplete, state.Status)
	assert.Empty(t, state.Themes)
	assert.Empty(t, state.NotableComments)
	assert.Zero(t, state.Sentiment.Support)
	assert.Zero(t, state.Sentiment.Oppose)
	assert.Zero(t, state.Sentiment.Neutral)
}

func TestPipeline_TransportErrorExhaustsRetries(t *testing.T) {
	source := &fakeSource{
		info:     models.DocketInfo{ID: "FAA-2024-0010", Title: "Drone Registration"},
		comments: testComments(3, "Registration requirements should apply above 250 grams only."),
	}
	llm := &fakeCompleter{err: errors.New("connection refused")}

	pipeline := NewPipeline(source, llm, nil)
	runner := orchestration.NewGraphRunner(pipeline.Graph(), 2)

	state := runner.Run(context.Background(), orchestration.NewAnalysisState("FAA-2024-0010"))

	require.Equal(t, orchestration.StatusError, state.Status)
	assert.Equal(t, "analyze", state.ErrorStep)
	assert.Equal(t, 2, state.RetryCount)
	assert.Contains(t, state.Error, "connection refused")
}

func TestPipeline_FetchDropsPlaceholders(t *testing.T) {
	comments := testComments(3, "Substantive comment about the proposed emission limits.")
	comments = append(comments,
		models.Comment{ID: "CMT-900", Author: "A", Text: "See attached file(s)"},
		models.Comment{ID: "CMT-901", Author: "B", Text: "   "},
	)
	source := &fakeSource{comments: comments}

	pipeline := NewPipeline(source, wellFormedCompleter(), nil)
	state := orchestration.NewAnalysisState("EPA-2024-0002")

	err := pipeline.Fetch(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, 5, state.RawCommentCount)
	assert.Len(t, state.Comments, 3)
	for _, c := range state.Comments {
		assert.NotEmpty(t, c.VaderLabel)
	}
}

func TestPipeline_FetchFailsWithoutAnalyzableComments(t *testing.T) {
	source := &fakeSource{comments: []models.Comment{
		{ID: "CMT-1", Text: "see attached"},
	}}

	pipeline := NewPipeline(source, wellFormedCompleter(), nil)
	state := orchestration.NewAnalysisState("EPA-2024-0003")

	err := pipeline.Fetch(context.Background(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no analyzable comments")
}

func TestPipeline_FetchTitleFallsBackToDocketID(t *testing.T) {
	source := &fakeSource{
		infoErr:  errors.New("metadata endpoint down"),
		comments: testComments(1, "A real comment."),
	}

	pipeline := NewPipeline(source, wellFormedCompleter(), nil)
	state := orchestration.NewAnalysisState("USCG-2024-0042")

	require.NoError(t, pipeline.Fetch(context.Background(), state))
	assert.Equal(t, "USCG-2024-0042", state.DocketTitle)
}

func TestPipeline_AnalyzeSkipsEmptySamples(t *testing.T) {
	llm := wellFormedCompleter()
	pipeline := NewPipeline(&fakeSource{}, llm, nil)
	state := orchestration.NewAnalysisState("EPA-2024-0004")

	require.NoError(t, pipeline.Analyze(context.Background(), state))
	assert.Empty(t, state.Themes)
	assert.Empty(t, state.NotableComments)
	// Sentiment still sees zero comments and short-circuits too.
	assert.Equal(t, 0, llm.calls)
}
