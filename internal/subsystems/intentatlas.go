package subsystems

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/genomectl/repogenome/internal/genome"
)

// IntentAtlas derives genome.Concept groupings (and the top-level
// core_domains subset) by grouping the base graph's nodes by the
// directory of their file, by default with no LLM involved. When caps.LLM is
// configured it is used only to phrase a concept's description text —
// never to decide membership.
//
// Grounded on the teacher's
// internal/analysis/config/domain_inference.go directory-signal
// heuristics (there classifying a whole repo into one Domain; here
// generalized into per-directory concept clustering, since a single
// repo legitimately contains many concepts).
type IntentAtlas struct {
	disabled bool
}

func NewIntentAtlas(disabled bool) *IntentAtlas { return &IntentAtlas{disabled: disabled} }

func (a *IntentAtlas) Name() string   { return "intentatlas" }
func (a *IntentAtlas) Disabled() bool { return a.disabled }

func (a *IntentAtlas) Run(ctx context.Context, base *genome.BaseGraph, caps Capabilities) (Output, error) {
	groups := groupByDirectory(base.Nodes)

	var dirs []string
	for d := range groups {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	var concepts []genome.Concept
	for _, dir := range dirs {
		members := groups[dir]
		if len(members) == 0 {
			continue
		}
		slug := slugify(dir)
		id := genome.ConceptID(slug)
		desc := describeGroup(dir, members)
		if caps.LLM != nil {
			if phrased, err := caps.LLM.Summarize(ctx, llmPrompt(dir, members)); err == nil && phrased != "" {
				desc = phrased
			}
		}
		concepts = append(concepts, genome.Concept{ID: id, Nodes: members, Description: desc})
	}

	return Output{
		Concepts:    concepts,
		CoreDomains: coreDomains(concepts),
	}, nil
}

// groupByDirectory clusters file nodes by their immediate containing
// directory — a concept's membership is every node whose File sits in
// that directory, symbol nodes included via their owning file.
func groupByDirectory(nodes map[genome.NodeId]*genome.Node) map[string][]genome.NodeId {
	groups := make(map[string][]genome.NodeId)
	for id, n := range nodes {
		if n.Virtual || n.File == "" {
			continue
		}
		dir := path.Dir(n.File)
		if dir == "." {
			dir = "root"
		}
		groups[dir] = append(groups[dir], id)
	}
	for dir := range groups {
		sort.Slice(groups[dir], func(i, j int) bool { return groups[dir][i] < groups[dir][j] })
	}
	return groups
}

func slugify(dir string) string {
	s := strings.ToLower(dir)
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "_", "-")
	return s
}

func describeGroup(dir string, members []genome.NodeId) string {
	return fmt.Sprintf("%s (%d members)", dir, len(members))
}

func llmPrompt(dir string, members []genome.NodeId) string {
	return fmt.Sprintf("Describe the purpose of the %q module, which contains %d code entities.", dir, len(members))
}

// coreDomains selects the largest concepts as the headline domains a
// newcomer should read first, mirroring the teacher's domain-inference
// priority ordering but applied per-concept instead of repo-wide.
func coreDomains(concepts []genome.Concept) []genome.NodeId {
	sorted := make([]genome.Concept, len(concepts))
	copy(sorted, concepts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i].Nodes) != len(sorted[j].Nodes) {
			return len(sorted[i].Nodes) > len(sorted[j].Nodes)
		}
		return sorted[i].ID < sorted[j].ID
	})

	const maxCoreDomains = 5
	limit := maxCoreDomains
	if limit > len(sorted) {
		limit = len(sorted)
	}
	out := make([]genome.NodeId, 0, limit)
	for _, c := range sorted[:limit] {
		out = append(out, c.ID)
	}
	return out
}
