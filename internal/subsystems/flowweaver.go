package subsystems

import (
	"context"
	"sort"

	"github.com/genomectl/repogenome/internal/genome"
)

// FlowWeaver derives advisory execution paths by BFS over `calls`
// edges starting at every entry-point node, confidence decaying one
// step per hop away from direct evidence.
//
// Grounded on the teacher's internal/graph/temporal_correlator.go BFS
// traversal shape and internal/graph/semantic_matcher.go's confidence-
// decay-per-hop scoring idiom (there applied to semantic similarity
// propagation; here applied to call-graph reachability).
type FlowWeaver struct {
	disabled  bool
	maxDepth  int
	maxFlows  int
}

// NewFlowWeaver returns FlowWeaver with its default traversal bounds.
func NewFlowWeaver(disabled bool) *FlowWeaver {
	return &FlowWeaver{disabled: disabled, maxDepth: 6, maxFlows: 200}
}

func (f *FlowWeaver) Name() string    { return "flowweaver" }
func (f *FlowWeaver) Disabled() bool  { return f.disabled }

func (f *FlowWeaver) Run(ctx context.Context, base *genome.BaseGraph, caps Capabilities) (Output, error) {
	var entries []genome.NodeId
	for id, n := range base.Nodes {
		if n.Entry {
			entries = append(entries, id)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i] < entries[j] })

	var flows []genome.Flow
	for _, entry := range entries {
		flows = append(flows, f.flowsFrom(base, entry)...)
		if len(flows) >= f.maxFlows {
			flows = flows[:f.maxFlows]
			break
		}
	}

	return Output{Flows: flows}, nil
}

func (f *FlowWeaver) flowsFrom(base *genome.BaseGraph, entry genome.NodeId) []genome.Flow {
	type frame struct {
		path       []genome.NodeId
		confidence float64
	}

	var flows []genome.Flow
	visited := map[genome.NodeId]bool{entry: true}
	queue := []frame{{path: []genome.NodeId{entry}, confidence: 1.0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		last := cur.path[len(cur.path)-1]
		callEdges := base.EdgesFrom(last, genome.EdgeCalls)
		sort.Slice(callEdges, func(i, j int) bool { return callEdges[i].To < callEdges[j].To })

		if len(callEdges) == 0 || len(cur.path) >= f.maxDepth {
			if len(cur.path) > 1 {
				flows = append(flows, genome.Flow{
					Entry: entry, Path: append([]genome.NodeId(nil), cur.path...),
					SideEffects: sideEffectsFor(base, cur.path),
					Confidence:  cur.confidence,
				})
			}
			continue
		}

		for _, e := range callEdges {
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			next := append(append([]genome.NodeId(nil), cur.path...), e.To)
			queue = append(queue, frame{path: next, confidence: cur.confidence * 0.9})
		}
	}

	return flows
}

// sideEffectsFor tags a flow with the closed side-effect set its path
// nodes' summaries hint at — a conservative textual heuristic since
// true effect tracking needs dataflow analysis out of scope here.
func sideEffectsFor(base *genome.BaseGraph, path []genome.NodeId) []genome.SideEffectTag {
	var tags []genome.SideEffectTag
	seen := make(map[genome.SideEffectTag]bool)
	add := func(t genome.SideEffectTag) {
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}

	for _, id := range path {
		n, ok := base.Nodes[id]
		if !ok {
			continue
		}
		s := n.Summary
		switch {
		case containsAny(s, "select", "query", "fetch"):
			add(genome.SideEffectDBRead)
		case containsAny(s, "insert", "update", "save", "commit"):
			add(genome.SideEffectDBWrite)
		}
		if containsAny(s, "http", "request", "fetch") {
			add(genome.SideEffectNetOut)
		}
		if containsAny(s, "open", "read") {
			add(genome.SideEffectFSRead)
		}
		if containsAny(s, "write", "close") {
			add(genome.SideEffectFSWrite)
		}
	}
	return tags
}

func containsAny(s string, subs ...string) bool {
	lower := toLower(s)
	for _, sub := range subs {
		if indexOf(lower, sub) >= 0 {
			return true
		}
	}
	return false
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func indexOf(s, sub string) int {
	if len(sub) == 0 {
		return 0
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
