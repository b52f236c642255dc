package query

import (
	"fmt"
	"sort"

	"github.com/genomectl/repogenome/internal/genome"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// Options configures a Query call.
type Options struct {
	Page             int      `json:"page"`     // 1-indexed; 0 treated as 1
	PageSize         int      `json:"page_size"` // default 50, capped at 500
	Fields           []string `json:"fields"`    // explicit projection; nil means all fields
	IDsOnly          bool     `json:"ids_only"`
	MaxSummaryLength int      `json:"max_summary_length"`
}

// Page is one page of projected node results.
type Page struct {
	Items      []map[string]interface{} `json:"items"`
	PageNum    int                       `json:"page"`
	PageSize   int                       `json:"page_size"`
	TotalCount int                       `json:"total_count"`
	TotalPages int                       `json:"total_pages"`
}

// Query evaluates predicate against every node in g, sorts matches by
// NodeId for determinism, and returns one page of projections.
func Query(g *genome.Genome, predicate Predicate, opts Options) (Page, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	pageNum := opts.Page
	if pageNum <= 0 {
		pageNum = 1
	}

	var matched []genome.NodeId
	for id, n := range g.Nodes {
		ok, err := predicate.Eval(n)
		if err != nil {
			return Page{}, err
		}
		if ok {
			matched = append(matched, id)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i] < matched[j] })

	total := len(matched)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	start := (pageNum - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]map[string]interface{}, 0, end-start)
	for _, id := range matched[start:end] {
		if opts.IDsOnly {
			items = append(items, map[string]interface{}{"id": string(id)})
			continue
		}
		items = append(items, project(g.Nodes[id], opts))
	}

	return Page{
		Items:      items,
		PageNum:    pageNum,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}, nil
}

// project builds a field-projected map for n, honoring opts.Fields (long
// or short aliases) and truncating summary to MaxSummaryLength if set.
func project(n *genome.Node, opts Options) map[string]interface{} {
	full := map[string]interface{}{
		"id":          string(n.ID),
		"type":        string(n.Type),
		"file":        n.File,
		"language":    n.Language,
		"visibility":  string(n.Visibility),
		"summary":     truncateSummary(n.Summary, opts.MaxSummaryLength),
		"criticality": n.Criticality,
		"entry":       n.Entry,
		"virtual":     n.Virtual,
	}

	if len(opts.Fields) == 0 {
		return full
	}

	out := make(map[string]interface{}, len(opts.Fields)+1)
	out["id"] = full["id"]
	for _, f := range opts.Fields {
		canonical := canonicalField(f)
		if v, ok := full[canonical]; ok {
			out[canonical] = v
		}
	}
	return out
}

func truncateSummary(summary string, max int) string {
	if max <= 0 || len(summary) <= max {
		return summary
	}
	return summary[:max]
}

// NodeView is the get_node response shape: the node plus its incident
// edges, optionally BFS-expanded to max_depth.
type NodeView struct {
	Node           *genome.Node  `json:"node"`
	IncomingEdges  []genome.Edge `json:"incoming_edges,omitempty"`
	OutgoingEdges  []genome.Edge `json:"outgoing_edges,omitempty"`
	Expanded       []NodeId2Hop  `json:"expanded,omitempty"`
}

// NodeId2Hop pairs a node reached during BFS expansion with its hop depth.
type NodeId2Hop struct {
	ID    genome.NodeId `json:"id"`
	Depth int           `json:"depth"`
}

// GetNodeOptions configures GetNode.
type GetNodeOptions struct {
	MaxDepth     int               `json:"max_depth"` // 0=node only, 1=direct, >=2 BFS-expanded
	IncludeEdges bool              `json:"include_edges"`
	EdgeTypes    []genome.EdgeType `json:"edge_types"` // empty means all types
	Fields       []string          `json:"fields"`
}

// GetNode returns n plus its incident edges and, when MaxDepth>=2, the
// BFS-expanded neighborhood up to that depth.
func GetNode(g *genome.Genome, id genome.NodeId, opts GetNodeOptions) (NodeView, error) {
	n, ok := g.Nodes[id]
	if !ok {
		return NodeView{}, fmt.Errorf("query: node %q not found", id)
	}

	view := NodeView{Node: n}
	if opts.MaxDepth == 0 {
		return view, nil
	}

	typeAllowed := edgeTypeFilter(opts.EdgeTypes)
	for _, e := range g.Edges {
		if !typeAllowed(e.Type) {
			continue
		}
		if e.To == id {
			view.IncomingEdges = append(view.IncomingEdges, e)
		}
		if e.From == id {
			view.OutgoingEdges = append(view.OutgoingEdges, e)
		}
	}

	if opts.MaxDepth >= 2 {
		view.Expanded = bfsExpand(g, id, opts.MaxDepth, typeAllowed)
	}
	return view, nil
}

func edgeTypeFilter(types []genome.EdgeType) func(genome.EdgeType) bool {
	if len(types) == 0 {
		return func(genome.EdgeType) bool { return true }
	}
	allowed := make(map[genome.EdgeType]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	return func(t genome.EdgeType) bool { return allowed[t] }
}

func bfsExpand(g *genome.Genome, start genome.NodeId, maxDepth int, typeAllowed func(genome.EdgeType) bool) []NodeId2Hop {
	adjacency := adjacencyBoth(g, typeAllowed)

	visited := map[genome.NodeId]bool{start: true}
	var out []NodeId2Hop
	frontier := []genome.NodeId{start}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []genome.NodeId
		for _, id := range frontier {
			for _, neighbor := range adjacency[id] {
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				out = append(out, NodeId2Hop{ID: neighbor, Depth: depth})
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func adjacencyBoth(g *genome.Genome, typeAllowed func(genome.EdgeType) bool) map[genome.NodeId][]genome.NodeId {
	adjacency := make(map[genome.NodeId][]genome.NodeId)
	for _, e := range g.Edges {
		if !typeAllowed(e.Type) {
			continue
		}
		adjacency[e.From] = append(adjacency[e.From], e.To)
		adjacency[e.To] = append(adjacency[e.To], e.From)
	}
	return adjacency
}
