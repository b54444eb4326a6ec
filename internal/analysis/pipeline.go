package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openregulations/docketflow/internal/dedup"
	"github.com/openregulations/docketflow/internal/models"
	"github.com/openregulations/docketflow/internal/orchestration"
	"github.com/openregulations/docketflow/internal/sentiment"
	"github.com/openregulations/docketflow/internal/utils"
)

const (
	DEFAULT_COMMENT_LIMIT = 200

	themeSampleSize     = 100
	sentimentSampleSize = 50
	notableSampleSize   = 30
)

// Placeholder bodies carry no analyzable text and are dropped during fetch.
var attachmentPlaceholders = map[string]struct{}{
	"see attached":         {},
	"see attached file(s)": {},
}

// Pipeline owns the injected capabilities and exposes the four stages the
// state graph dispatches to. The pipeline itself holds no per-run state;
// everything flows through the AnalysisState it is handed.
type Pipeline struct {
	source CommentSource
	llm    TextCompleter
	sink   AnalysisSink
	store  CommentStore

	commentLimit int
	dedupOpts    dedup.Options
}

type PipelineOption func(*Pipeline)

func WithCommentLimit(limit int) PipelineOption {
	return func(p *Pipeline) {
		if limit > 0 {
			p.commentLimit = limit
		}
	}
}

func WithDedupOptions(opts dedup.Options) PipelineOption {
	return func(p *Pipeline) { p.dedupOpts = opts }
}

// WithCommentStore persists enriched comments during fetch. Best-effort:
// storage failures are logged, never fatal to the run.
func WithCommentStore(store CommentStore) PipelineOption {
	return func(p *Pipeline) { p.store = store }
}

func NewPipeline(source CommentSource, llm TextCompleter, sink AnalysisSink, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		source:       source,
		llm:          llm,
		sink:         sink,
		commentLimit: DEFAULT_COMMENT_LIMIT,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Graph builds the standard analysis graph over this pipeline's stages.
func (p *Pipeline) Graph() *orchestration.StateGraph {
	return orchestration.BuildAnalysisGraph(p.Fetch, p.Detect, p.Analyze, p.Report)
}

// Fetch loads docket metadata and enriched comments, computes local VADER
// hints, and drops placeholder bodies. An empty comment set is a fault so
// the runner's retry path gets a chance at transient source outages.
func (p *Pipeline) Fetch(ctx context.Context, state *orchestration.AnalysisState) error {
	info, err := p.source.FetchDocketInfo(ctx, state.DocketID)
	if err != nil {
		slog.Warn("[Pipeline] Failed to fetch docket metadata, using docket id as title",
			slog.String("docket_id", state.DocketID),
			slog.String("error", err.Error()))
	}
	state.DocketTitle = info.Title
	if state.DocketTitle == "" {
		state.DocketTitle = state.DocketID
	}

	fetched, err := p.source.FetchComments(ctx, state.DocketID, p.commentLimit)
	if err != nil {
		return fmt.Errorf("fetching comments for %s: %w", state.DocketID, err)
	}
	state.RawCommentCount = len(fetched)

	buffer := utils.NewBatchBuffer[models.Comment]()
	comments := make([]models.Comment, 0, len(fetched))
	for _, c := range fetched {
		if isAttachmentPlaceholder(c.Text) {
			continue
		}
		c.VaderScore, c.VaderLabel = sentiment.AnalyzeWithVADER(c.Text)
		comments = append(comments, c)

		buffer.Add(c)
		if buffer.Size() >= utils.DYNAMODB_BATCH_SIZE {
			p.flushComments(ctx, buffer)
		}
	}
	p.flushComments(ctx, buffer)

	if len(comments) == 0 {
		return fmt.Errorf("no analyzable comments for docket %s", state.DocketID)
	}
	state.Comments = comments

	slog.Info("[Pipeline] Fetched comments",
		slog.String("docket_id", state.DocketID),
		slog.Int("raw", state.RawCommentCount),
		slog.Int("analyzable", len(comments)))
	return nil
}

// Detect partitions comments into campaigns and unique submissions.
func (p *Pipeline) Detect(ctx context.Context, state *orchestration.AnalysisState) error {
	campaigns, unique := dedup.Detect(state.Comments, p.dedupOpts)

	state.Campaigns = campaigns
	state.UniqueComments = unique
	state.FormLetterPercentage = dedup.FormLetterPercentage(len(state.Comments), len(unique))

	slog.Info("[Pipeline] Detected form letters",
		slog.String("docket_id", state.DocketID),
		slog.Int("campaigns", len(campaigns)),
		slog.Int("unique", len(unique)),
		slog.Float64("form_letter_pct", state.FormLetterPercentage))
	return nil
}

// Analyze runs the three classification stages. Parse failures inside each
// stage degrade to typed defaults; only transport faults bubble up to the
// runner's retry branch.
func (p *Pipeline) Analyze(ctx context.Context, state *orchestration.AnalysisState) error {
	themes, err := p.extractThemes(ctx, state.UniqueComments, state.DocketTitle)
	if err != nil {
		return err
	}
	state.Themes = themes

	breakdown, err := p.classifySentiment(ctx, state.Comments, state.DocketTitle)
	if err != nil {
		return err
	}
	state.Sentiment = breakdown

	notable, err := p.findNotableComments(ctx, state.UniqueComments)
	if err != nil {
		return err
	}
	state.NotableComments = notable

	slog.Info("[Pipeline] Classification done",
		slog.String("docket_id", state.DocketID),
		slog.Int("themes", len(themes)),
		slog.Int("notable", len(notable)))
	return nil
}

// Report generates the executive summary, assembles the artifact, and saves
// it to the sink when one is configured.
func (p *Pipeline) Report(ctx context.Context, state *orchestration.AnalysisState) error {
	summary, err := p.generateSummary(ctx, state)
	if err != nil {
		return err
	}
	state.ExecutiveSummary = summary

	if p.sink != nil {
		if err := p.sink.SaveAnalysis(ctx, state.Result()); err != nil {
			return fmt.Errorf("saving analysis for %s: %w", state.DocketID, err)
		}
	}
	return nil
}

func (p *Pipeline) flushComments(ctx context.Context, buffer *utils.BatchBuffer[models.Comment]) {
	if p.store == nil {
		buffer.Flush()
		return
	}
	batch := buffer.GetAndClear()
	if len(batch) == 0 {
		return
	}
	if err := p.store.SaveComments(ctx, batch); err != nil {
		slog.Warn("[Pipeline] Failed to store comment batch",
			slog.Int("batch_size", len(batch)),
			slog.String("error", err.Error()))
	}
}

func isAttachmentPlaceholder(text string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	if trimmed == "" {
		return true
	}
	_, ok := attachmentPlaceholders[trimmed]
	return ok
}
