package reports

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openregulations/docketflow/internal/models"
)

const busiestLimit = 5

// BuildDailyReport aggregates the analyses completed inside a reporting
// window. Pure computation; callers load the window from storage first.
func BuildDailyReport(analyses []models.AnalysisResult, now time.Time) models.DailyReport {
	report := models.DailyReport{
		Date:        now.UTC().Format("2006-01-02"),
		GeneratedAt: now.UTC(),
		AnalysesRun: len(analyses),
	}

	formLetters := 0
	for _, a := range analyses {
		report.CommentsAnalyzed += a.TotalComments
		formLetters += a.FormLetterCount
		report.AverageSentiment.Support += a.Sentiment.Support
		report.AverageSentiment.Oppose += a.Sentiment.Oppose
		report.AverageSentiment.Neutral += a.Sentiment.Neutral
	}

	if report.CommentsAnalyzed > 0 {
		report.FormLetterShare = float64(formLetters) / float64(report.CommentsAnalyzed) * 100
	}
	if len(analyses) > 0 {
		n := float64(len(analyses))
		report.AverageSentiment.Support /= n
		report.AverageSentiment.Oppose /= n
		report.AverageSentiment.Neutral /= n
	}

	ranked := make([]models.AnalysisResult, len(analyses))
	copy(ranked, analyses)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalComments > ranked[j].TotalComments
	})
	if len(ranked) > busiestLimit {
		ranked = ranked[:busiestLimit]
	}
	for _, a := range ranked {
		report.BusiestDockets = append(report.BusiestDockets, models.DocketActivity{
			DocketID:             a.DocketID,
			DocketTitle:          a.DocketTitle,
			TotalComments:        a.TotalComments,
			FormLetterPercentage: a.FormLetterPercentage,
			AnalyzedAt:           a.AnalyzedAt,
		})
	}

	return report
}

// Format renders the report as a plain text block for terminals and logs.
func Format(report models.DailyReport) string {
	var b strings.Builder

	divider := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "%s\nDAILY REGULATORY REPORT - %s\n%s\n\n", divider, report.Date, divider)

	fmt.Fprintf(&b, "Summary\n")
	fmt.Fprintf(&b, "   Analyses run:      %d\n", report.AnalysesRun)
	fmt.Fprintf(&b, "   Comments analyzed: %d\n", report.CommentsAnalyzed)
	fmt.Fprintf(&b, "   Form letter share: %.1f%%\n", report.FormLetterShare)
	fmt.Fprintf(&b, "   Avg sentiment:     %.0f%% support / %.0f%% oppose / %.0f%% neutral\n",
		report.AverageSentiment.Support, report.AverageSentiment.Oppose, report.AverageSentiment.Neutral)

	if len(report.BusiestDockets) > 0 {
		b.WriteString("\nBusiest Dockets\n")
		for _, d := range report.BusiestDockets {
			title := d.DocketTitle
			if len([]rune(title)) > 50 {
				title = string([]rune(title)[:50]) + "..."
			}
			fmt.Fprintf(&b, "   - %s: %d comments (%.1f%% form letters)\n", d.DocketID, d.TotalComments, d.FormLetterPercentage)
			fmt.Fprintf(&b, "     %s\n", title)
		}
	}

	b.WriteString("\n" + divider + "\n")
	return b.String()
}
