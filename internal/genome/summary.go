package genome

import "sort"

// DeriveSummary computes the summary section from the Genome itself,
// per the Merger's Summary Derivation step. entryMarkers identifies
// nodes analyzers tagged as entry points (main functions, exported
// HTTP handlers, CLI mains); legacyMatcher reports whether a file path
// matches a configured legacy/do-not-touch pattern. hotspotK bounds how
// many churn leaders populate summary.hotspots.
func DeriveSummary(g *Genome, entryMarkers map[NodeId]bool, legacyMatcher func(file string) bool, hotspotK int) Summary {
	s := Summary{}

	ids := make([]NodeId, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if entryMarkers[id] {
			s.EntryPoints = append(s.EntryPoints, id)
		}
	}

	s.CoreDomains = topConceptsByNodeCount(g.Concepts)
	s.Hotspots = topHotspots(g.History, hotspotK)
	s.DoNotTouch = doNotTouch(g, legacyMatcher, s.Hotspots)
	s.ArchitecturalStyle = inferArchitecturalStyle(g)

	return s
}

func topConceptsByNodeCount(concepts []Concept) []NodeId {
	sorted := make([]Concept, len(concepts))
	copy(sorted, concepts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i].Nodes) != len(sorted[j].Nodes) {
			return len(sorted[i].Nodes) > len(sorted[j].Nodes)
		}
		return sorted[i].ID < sorted[j].ID
	})
	out := make([]NodeId, 0, len(sorted))
	for _, c := range sorted {
		out = append(out, c.ID)
	}
	return out
}

func topHotspots(history map[NodeId]HistoryEntry, k int) []NodeId {
	type scored struct {
		id    NodeId
		churn float64
	}
	all := make([]scored, 0, len(history))
	for id, h := range history {
		all = append(all, scored{id, h.ChurnScore})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].churn != all[j].churn {
			return all[i].churn > all[j].churn
		}
		return all[i].id < all[j].id
	})
	if k > len(all) {
		k = len(all)
	}
	out := make([]NodeId, 0, k)
	for _, s := range all[:k] {
		out = append(out, s.id)
	}
	return out
}

// doNotTouch implements: files matching legacy patterns, and/or
// hotspots with criticality > 0.8.
func doNotTouch(g *Genome, legacyMatcher func(string) bool, hotspots []NodeId) []NodeId {
	seen := make(map[NodeId]bool)
	var out []NodeId

	if legacyMatcher != nil {
		ids := make([]NodeId, 0, len(g.Nodes))
		for id := range g.Nodes {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			n := g.Nodes[id]
			if n.File != "" && legacyMatcher(n.File) && !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}

	for _, id := range hotspots {
		n, ok := g.Nodes[id]
		if ok && n.Criticality > 0.8 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// inferArchitecturalStyle tags the repository from closed-set edge/node
// pattern signals. Currently recognizes "API-First" (HTTP route
// resource nodes present) and "Event-Driven" (emits edges present).
func inferArchitecturalStyle(g *Genome) []string {
	var tags []string

	hasRoute := false
	for _, n := range g.Nodes {
		if n.Type == NodeResource {
			hasRoute = true
			break
		}
	}
	if hasRoute {
		tags = append(tags, "API-First")
	}

	for _, e := range g.Edges {
		if e.Type == EdgeEmits {
			tags = append(tags, "Event-Driven")
			break
		}
	}

	sort.Strings(tags)
	return tags
}
