// Package context implements the Context Assembler (C9): given a goal
// and a token budget, it returns a curated, relevance-ranked subset of
// the Genome.
//
// Session memory, decision traces, and feedback counters persist
// through the Store interface; BoltStore (session.go) is its one
// durable, bbolt-backed implementation.
package context

import (
	"sort"
	"strings"

	"github.com/genomectl/repogenome/internal/genome"
)

// Input is the caller-supplied request to BuildContext.
type Input struct {
	Goal         string          `json:"goal"`
	BudgetTokens int             `json:"budget_tokens"`
	MustInclude  []genome.NodeId `json:"must_include"`
	Exclude      []genome.NodeId `json:"exclude"`
	SessionID    string          `json:"session_id,omitempty"`
}

// seedWeights controls the relative contribution of each scoring
// signal. Only the monotonicity of each term is a spec requirement;
// the exact weights are an implementation choice.
const (
	lexicalWeight     = 0.35
	proximityWeight   = 0.30
	criticalityWeight = 0.20
	conceptWeight     = 0.15
)

// scoreSeeds ranks every node in g by relevance to in.Goal, before any
// graph expansion. Excluded nodes never appear.
func scoreSeeds(g *genome.Genome, in Input) map[genome.NodeId]float64 {
	excluded := toSet(in.Exclude)
	keywords := extractKeywords(in.Goal)
	distances := distanceFrom(g, in.MustInclude)
	conceptKeywords := conceptsMatching(g, keywords)

	scores := make(map[genome.NodeId]float64, len(g.Nodes))
	for id, n := range g.Nodes {
		if excluded[id] {
			continue
		}

		lexical := lexicalMatch(n, keywords)
		proximity := proximityScore(distances, id)
		criticality := n.Criticality
		concept := 0.0
		if conceptKeywords[id] {
			concept = 1.0
		}

		score := lexical*lexicalWeight + proximity*proximityWeight +
			criticality*criticalityWeight + concept*conceptWeight
		if score > 0 {
			scores[id] = score
		}
	}
	return scores
}

func toSet(ids []genome.NodeId) map[genome.NodeId]bool {
	set := make(map[genome.NodeId]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// extractKeywords lowercases and splits the goal into distinct,
// stop-word-free tokens of at least three characters.
func extractKeywords(goal string) []string {
	fields := strings.FieldsFunc(strings.ToLower(goal), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		if len(f) < 3 || stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "from": true, "into": true, "are": true, "how": true,
}

// lexicalMatch scores the fraction of keywords appearing in the node's
// summary, file path, or id; more matches ⇒ a strictly higher score.
func lexicalMatch(n *genome.Node, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	haystack := strings.ToLower(n.Summary + " " + n.File + " " + string(n.ID))
	matches := 0
	for _, k := range keywords {
		if strings.Contains(haystack, k) {
			matches++
		}
	}
	return float64(matches) / float64(len(keywords))
}

// distanceFrom BFS-computes, from every mustInclude node simultaneously,
// the shortest hop distance to every reachable node.
func distanceFrom(g *genome.Genome, mustInclude []genome.NodeId) map[genome.NodeId]int {
	if len(mustInclude) == 0 {
		return nil
	}
	adjacency := make(map[genome.NodeId][]genome.NodeId)
	for _, e := range g.Edges {
		adjacency[e.From] = append(adjacency[e.From], e.To)
		adjacency[e.To] = append(adjacency[e.To], e.From)
	}

	dist := make(map[genome.NodeId]int)
	var frontier []genome.NodeId
	for _, id := range mustInclude {
		if _, ok := dist[id]; !ok {
			dist[id] = 0
			frontier = append(frontier, id)
		}
	}

	for depth := 1; len(frontier) > 0; depth++ {
		var next []genome.NodeId
		for _, cur := range frontier {
			for _, neighbor := range adjacency[cur] {
				if _, seen := dist[neighbor]; seen {
					continue
				}
				dist[neighbor] = depth
				next = append(next, neighbor)
			}
		}
		frontier = next
	}
	return dist
}

// proximityScore maps a BFS hop distance to (0,1], strictly decreasing
// as distance grows — shorter distance always scores higher.
func proximityScore(distances map[genome.NodeId]int, id genome.NodeId) float64 {
	if distances == nil {
		return 0
	}
	d, ok := distances[id]
	if !ok {
		return 0
	}
	return 1.0 / float64(1+d)
}

// conceptsMatching returns the set of node ids belonging to a Concept
// whose description overlaps any extracted goal keyword.
func conceptsMatching(g *genome.Genome, keywords []string) map[genome.NodeId]bool {
	out := make(map[genome.NodeId]bool)
	if len(keywords) == 0 {
		return out
	}
	for _, c := range g.Concepts {
		desc := strings.ToLower(c.Description)
		matched := false
		for _, k := range keywords {
			if strings.Contains(desc, k) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, id := range c.Nodes {
			out[id] = true
		}
	}
	return out
}

// topSeeds returns the n highest-scoring node ids, ties broken by id.
func topSeeds(scores map[genome.NodeId]float64, n int) []genome.NodeId {
	ids := make([]genome.NodeId, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}
