package dedup

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/openregulations/docketflow/internal/models"
)

const (
	// Signature prefix used by the interactive path. The batch worker
	// passes a longer prefix to catch letters that only diverge late.
	DEFAULT_SIGNATURE_LENGTH = 100

	// Any group of two or more identical signatures counts as a campaign
	// by default. The batch worker raises this to 5.
	DEFAULT_MIN_CLUSTER_SIZE = 2

	previewLength = 200
)

var (
	tagPattern    = regexp.MustCompile(`<[^>]+>`)
	entityPattern = regexp.MustCompile(`&#?[a-z0-9]+;`)
)

// Options control how aggressively comments are clustered.
type Options struct {
	// MinClusterSize is the smallest group treated as a campaign.
	MinClusterSize int
	// SignatureLength is the normalized-text prefix compared across comments.
	SignatureLength int
}

func (o Options) withDefaults() Options {
	if o.MinClusterSize < 2 {
		o.MinClusterSize = DEFAULT_MIN_CLUSTER_SIZE
	}
	if o.SignatureLength <= 0 {
		o.SignatureLength = DEFAULT_SIGNATURE_LENGTH
	}
	return o
}

// Normalize reduces comment text to a clustering signature: lowercased,
// markup and HTML entities stripped, whitespace collapsed, truncated to
// prefixLen runes. Lowercasing happens first so entity stripping sees the
// same text on a first and second pass; normalizing an already-normalized
// string is a no-op.
func Normalize(text string, prefixLen int) string {
	text = strings.ToLower(text)
	text = tagPattern.ReplaceAllString(text, " ")
	text = entityPattern.ReplaceAllString(text, " ")
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > prefixLen {
		runes = runes[:prefixLen]
	}
	return string(runes)
}

// Detect partitions comments into form-letter campaigns and unique
// submissions. Pure computation: every comment lands in exactly one campaign
// or in the unique set, and campaign percentages are taken against the full
// comment count. Campaign ids are assigned largest-first so reports stay
// deterministic.
func Detect(comments []models.Comment, opts Options) ([]models.Campaign, []models.Comment) {
	opts = opts.withDefaults()

	if len(comments) == 0 {
		return nil, nil
	}

	groups := make(map[string][]models.Comment)
	var order []string
	for _, c := range comments {
		sig := Normalize(c.Text, opts.SignatureLength)
		if _, seen := groups[sig]; !seen {
			order = append(order, sig)
		}
		groups[sig] = append(groups[sig], c)
	}

	var clusters [][]models.Comment
	var unique []models.Comment
	for _, sig := range order {
		group := groups[sig]
		if len(group) >= opts.MinClusterSize {
			clusters = append(clusters, group)
		} else {
			unique = append(unique, group...)
		}
	}

	// Largest cluster first; ties keep discovery order.
	sort.SliceStable(clusters, func(i, j int) bool {
		return len(clusters[i]) > len(clusters[j])
	})

	campaigns := make([]models.Campaign, 0, len(clusters))
	for i, group := range clusters {
		ids := make([]string, 0, len(group))
		for _, c := range group {
			ids = append(ids, c.ID)
		}
		campaigns = append(campaigns, models.Campaign{
			ID:              fmt.Sprintf("campaign_%d", i+1),
			TemplatePreview: preview(group[0].Text),
			Count:           len(group),
			Percentage:      float64(len(group)) / float64(len(comments)) * 100,
			CommentIDs:      ids,
		})
	}

	return campaigns, unique
}

// FormLetterPercentage is the share of comments absorbed by campaigns.
func FormLetterPercentage(total, unique int) float64 {
	if total == 0 {
		return 0
	}
	return float64(total-unique) / float64(total) * 100
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return string(runes)
}
