package orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const DEFAULT_MAX_RETRIES = 2

// GraphRunner executes a state graph until a terminal status. It never
// returns an error: every stage fault is captured into the state's error
// fields, and the retry ceiling bounds the loop.
type GraphRunner struct {
	graph      *StateGraph
	maxRetries int
}

func NewGraphRunner(graph *StateGraph, maxRetries int) *GraphRunner {
	if maxRetries < 0 {
		maxRetries = DEFAULT_MAX_RETRIES
	}
	return &GraphRunner{graph: graph, maxRetries: maxRetries}
}

// Run drives the state through the graph. Terminal states: COMPLETE, or
// ERROR once retries are exhausted. On a stage fault the runner restores the
// status that was current before the failure, so a retry genuinely re-runs
// the failed stage rather than re-routing the ERROR status.
func (r *GraphRunner) Run(ctx context.Context, state *AnalysisState) *AnalysisState {
	state.StartedAt = time.Now().UTC()
	resumeStatus := state.Status

	slog.Info("[GraphRunner] Starting analysis",
		slog.String("docket_id", state.DocketID),
		slog.String("status", string(state.Status)))

	for {
		if state.Status == StatusComplete {
			state.CompletedAt = time.Now().UTC()
			slog.Info("[GraphRunner] Analysis complete",
				slog.String("docket_id", state.DocketID),
				slog.Duration("elapsed", state.CompletedAt.Sub(state.StartedAt)))
			return state
		}

		if state.Status == StatusError {
			if state.RetryCount >= r.maxRetries {
				slog.Error("[GraphRunner] Failed after max retries",
					slog.String("docket_id", state.DocketID),
					slog.String("error_step", state.ErrorStep),
					slog.String("error", state.Error),
					slog.Int("max_retries", r.maxRetries))
				return state
			}
			state.RetryCount++
			state.Status = resumeStatus
			slog.Warn("[GraphRunner] Retrying failed step",
				slog.String("docket_id", state.DocketID),
				slog.String("step", state.ErrorStep),
				slog.Int("attempt", state.RetryCount))
			continue
		}

		node, ok := r.graph.NodeFor(state.Status)
		if !ok {
			// Configuration bug, not a transient fault: terminal.
			unrouted := state.Status
			state.MarkError("router", fmt.Sprintf("no handler for status %q", unrouted))
			slog.Error("[GraphRunner] No node registered for status",
				slog.String("docket_id", state.DocketID),
				slog.String("status", string(unrouted)))
			return state
		}

		resumeStatus = state.Status
		state.CurrentStep = node.Name
		slog.Info("[GraphRunner] Running step",
			slog.String("docket_id", state.DocketID),
			slog.String("step", node.Name))

		if err := node.Run(ctx, state); err != nil {
			state.MarkError(node.Name, err.Error())
			slog.Warn("[GraphRunner] Step failed",
				slog.String("docket_id", state.DocketID),
				slog.String("step", node.Name),
				slog.String("error", err.Error()))
			continue
		}

		state.MarkStepComplete(node.Name)
		state.Status = node.NextStatus
		slog.Info("[GraphRunner] Step complete",
			slog.String("docket_id", state.DocketID),
			slog.String("step", node.Name),
			slog.String("next_status", string(state.Status)))
	}
}
