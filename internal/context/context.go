package context

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/genomectl/repogenome/internal/genome"
)

const defaultMaxHops = 3

// Selection is the full BuildContext result: every packed item plus
// the staged skeleton for a fast first response.
type Selection struct {
	ContextID string          `json:"context_id"`
	Items     []genome.NodeId `json:"items"`
	Folded    []Folded        `json:"folded"`
	Skeleton  Skeleton        `json:"skeleton"`
	TokenCost int             `json:"token_cost"`
}

// DecisionTrace records why BuildContext selected what it did, keyed
// by ContextID, returned verbatim by ExplainContext.
type DecisionTrace struct {
	ContextID    string                     `json:"context_id"`
	Goal         string                     `json:"goal"`
	BudgetTokens int                        `json:"budget_tokens"`
	SeedScores   map[genome.NodeId]float64  `json:"seed_scores"`
	Selected     []genome.NodeId            `json:"selected"`
	Folded       []Folded                   `json:"folded"`
}

// Assembler builds and persists Context selections and their decision
// traces, and tracks per-session memory and per-context feedback
// counters.
type Assembler struct {
	store Store
}

// NewAssembler wraps a Store (see session.go) for session/trace/feedback
// persistence.
func NewAssembler(store Store) *Assembler {
	return &Assembler{store: store}
}

// BuildContext runs the full seed/expand/fold/pack/stage pipeline and
// persists the decision trace. If in.SessionID is set, prior session
// state contributes additional must_include ids (pinned facts).
func (a *Assembler) BuildContext(ctx context.Context, g *genome.Genome, in Input) (Selection, error) {
	if in.SessionID != "" {
		if sess, ok, err := a.store.GetSession(ctx, in.SessionID); err == nil && ok {
			in.MustInclude = append(in.MustInclude, sess.PinnedIDs...)
		}
	}

	seedScores := scoreSeeds(g, in)
	seeds := topSeeds(seedScores, seedPoolSize(in.BudgetTokens))
	seedSubset := make(map[genome.NodeId]float64, len(seeds))
	for _, id := range seeds {
		seedSubset[id] = seedScores[id]
	}

	expanded := expand(g, seedSubset, defaultMaxHops)
	kept, folded := fold(g, sortedCandidates(expanded))
	items := buildItems(g, kept, folded)
	selected := pack(items, in.BudgetTokens)

	var ids []genome.NodeId
	tokenCost := 0
	selectedSet := make(map[genome.NodeId]bool)
	for _, it := range selected {
		ids = append(ids, it.NodeIDs...)
		tokenCost += it.TokenCost
		for _, id := range it.NodeIDs {
			selectedSet[id] = true
		}
	}

	var selectedFolded []Folded
	for _, it := range selected {
		if it.FoldKey != "" {
			selectedFolded = append(selectedFolded, Folded{Key: it.FoldKey, Nodes: it.NodeIDs, Relevance: it.Relevance})
		}
	}

	skeleton := buildSkeleton(g, selectedSet, selectedFolded)
	contextID := newContextID()

	selection := Selection{
		ContextID: contextID,
		Items:     ids,
		Folded:    selectedFolded,
		Skeleton:  skeleton,
		TokenCost: tokenCost,
	}

	trace := DecisionTrace{
		ContextID:    contextID,
		Goal:         in.Goal,
		BudgetTokens: in.BudgetTokens,
		SeedScores:   seedSubset,
		Selected:     ids,
		Folded:       selectedFolded,
	}
	if err := a.store.SaveTrace(ctx, trace); err != nil {
		return Selection{}, fmt.Errorf("context: persist decision trace: %w", err)
	}

	return selection, nil
}

// GetContextSkeleton returns only the skeleton, for a low-latency first
// response, without persisting a trace.
func (a *Assembler) GetContextSkeleton(g *genome.Genome, in Input) Skeleton {
	seedScores := scoreSeeds(g, in)
	seeds := topSeeds(seedScores, seedPoolSize(in.BudgetTokens))
	seedSubset := make(map[genome.NodeId]float64, len(seeds))
	for _, id := range seeds {
		seedSubset[id] = seedScores[id]
	}
	expanded := expand(g, seedSubset, defaultMaxHops)
	kept, folded := fold(g, sortedCandidates(expanded))

	selectedSet := make(map[genome.NodeId]bool, len(kept))
	for _, c := range kept {
		selectedSet[c.ID] = true
	}
	return buildSkeleton(g, selectedSet, folded)
}

// ExplainContext returns the persisted decision trace for contextID.
func (a *Assembler) ExplainContext(ctx context.Context, contextID string) (DecisionTrace, bool, error) {
	return a.store.GetTrace(ctx, contextID)
}

// SetContextSession pins ids to sessionID so later BuildContext calls
// against the same session keep treating them as must_include.
func (a *Assembler) SetContextSession(ctx context.Context, sessionID string, pinnedIDs []genome.NodeId) error {
	return a.store.SaveSession(ctx, Session{ID: sessionID, PinnedIDs: pinnedIDs})
}

// RecordContextFeedback is called by the serving layer whenever a
// later query references (hit) or explicitly discards (miss) a node
// id that a prior BuildContext returned under contextID.
func (a *Assembler) RecordContextFeedback(ctx context.Context, contextID string, hit bool) error {
	return a.store.RecordFeedback(ctx, contextID, hit)
}

// GetContextFeedback returns the accumulated hit/miss counters for a
// previously built context.
func (a *Assembler) GetContextFeedback(ctx context.Context, contextID string) (Feedback, error) {
	return a.store.GetFeedback(ctx, contextID)
}

func newContextID() string {
	return uuid.NewString()
}

// seedPoolSize bounds how many top-scoring nodes seed expansion,
// scaling loosely with the token budget so a tiny budget doesn't BFS
// the whole repo just to discard most of it at packing time.
func seedPoolSize(budgetTokens int) int {
	n := budgetTokens / 200
	if n < 5 {
		n = 5
	}
	if n > 200 {
		n = 200
	}
	return n
}
