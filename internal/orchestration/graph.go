package orchestration

import "context"

// StageFunc runs one pipeline stage against the shared state. A returned
// error sends the run into the retry branch; stages that can degrade
// gracefully absorb their own faults and return nil.
type StageFunc func(ctx context.Context, state *AnalysisState) error

type Node struct {
	Name       string
	Run        StageFunc
	NextStatus Status
}

// StateGraph maps pipeline statuses to the nodes that handle them. It is
// pure configuration: the runner never cares what a node does, only which
// node owns the current status and what status follows on success.
type StateGraph struct {
	nodes        map[string]*Node
	statusToNode map[Status]string
}

func NewStateGraph() *StateGraph {
	return &StateGraph{
		nodes:        make(map[string]*Node),
		statusToNode: make(map[Status]string),
	}
}

func (g *StateGraph) AddNode(name string, run StageFunc, next Status) {
	g.nodes[name] = &Node{Name: name, Run: run, NextStatus: next}
}

// SetEntryPoint routes a status to the node that should handle it.
func (g *StateGraph) SetEntryPoint(status Status, nodeName string) {
	g.statusToNode[status] = nodeName
}

// NodeFor resolves the node responsible for the given status.
func (g *StateGraph) NodeFor(status Status) (*Node, bool) {
	name, ok := g.statusToNode[status]
	if !ok {
		return nil, false
	}
	node, ok := g.nodes[name]
	return node, ok
}

// BuildAnalysisGraph wires the standard four-stage pipeline:
// PENDING/FETCHING -> fetch -> DETECTING -> detect -> ANALYZING -> analyze
// -> REPORTING -> report -> COMPLETE.
func BuildAnalysisGraph(fetch, detect, analyze, report StageFunc) *StateGraph {
	graph := NewStateGraph()

	graph.AddNode("fetch", fetch, StatusDetecting)
	graph.AddNode("detect", detect, StatusAnalyzing)
	graph.AddNode("analyze", analyze, StatusReporting)
	graph.AddNode("report", report, StatusComplete)

	graph.SetEntryPoint(StatusPending, "fetch")
	graph.SetEntryPoint(StatusFetching, "fetch")
	graph.SetEntryPoint(StatusDetecting, "detect")
	graph.SetEntryPoint(StatusAnalyzing, "analyze")
	graph.SetEntryPoint(StatusReporting, "report")

	return graph
}
