package reports

import (
	"testing"
	"time"

	"github.com/openregulations/docketflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analysisFixture(docketID string, total, formLetters int, support float64) models.AnalysisResult {
	return models.AnalysisResult{
		DocketID:        docketID,
		DocketTitle:     "Rule for " + docketID,
		TotalComments:   total,
		FormLetterCount: formLetters,
		Sentiment:       models.SentimentBreakdown{Support: support, Oppose: 100 - support},
		AnalyzedAt:      time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildDailyReportAggregates(t *testing.T) {
	now := time.Date(2026, 8, 29, 18, 30, 0, 0, time.UTC)
	analyses := []models.AnalysisResult{
		analysisFixture("EPA-2026-0001", 100, 60, 40),
		analysisFixture("DOT-2026-0002", 300, 150, 20),
	}

	report := BuildDailyReport(analyses, now)

	assert.Equal(t, "2026-08-29", report.Date)
	assert.Equal(t, 2, report.AnalysesRun)
	assert.Equal(t, 400, report.CommentsAnalyzed)
	// 210 form letters out of 400 comments.
	assert.InDelta(t, 52.5, report.FormLetterShare, 0.001)
	assert.InDelta(t, 30.0, report.AverageSentiment.Support, 0.001)
	assert.InDelta(t, 70.0, report.AverageSentiment.Oppose, 0.001)
}

func TestBuildDailyReportRanksByVolume(t *testing.T) {
	now := time.Now().UTC()
	var analyses []models.AnalysisResult
	for i, total := range []int{50, 900, 10, 300, 70, 120, 400} {
		analyses = append(analyses, analysisFixture(
			string(rune('A'+i))+"-docket", total, 0, 50))
	}

	report := BuildDailyReport(analyses, now)

	require.Len(t, report.BusiestDockets, 5)
	assert.Equal(t, "B-docket", report.BusiestDockets[0].DocketID)
	assert.Equal(t, 900, report.BusiestDockets[0].TotalComments)
	for i := 1; i < len(report.BusiestDockets); i++ {
		assert.GreaterOrEqual(t,
			report.BusiestDockets[i-1].TotalComments,
			report.BusiestDockets[i].TotalComments)
	}
}

func TestBuildDailyReportEmptyWindow(t *testing.T) {
	report := BuildDailyReport(nil, time.Now().UTC())

	assert.Zero(t, report.AnalysesRun)
	assert.Zero(t, report.CommentsAnalyzed)
	assert.Zero(t, report.FormLetterShare)
	assert.Zero(t, report.AverageSentiment.Support)
	assert.Empty(t, report.BusiestDockets)
}

func TestFormatIncludesSummaryAndDockets(t *testing.T) {
	now := time.Date(2026, 8, 29, 18, 30, 0, 0, time.UTC)
	report := BuildDailyReport([]models.AnalysisResult{
		analysisFixture("EPA-2026-0001", 100, 60, 40),
	}, now)

	out := Format(report)

	assert.Contains(t, out, "DAILY REGULATORY REPORT - 2026-08-29")
	assert.Contains(t, out, "Analyses run:      1")
	assert.Contains(t, out, "EPA-2026-0001: 100 comments")
}
