package subsystems

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/genomectl/repogenome/internal/genome"
	"github.com/genomectl/repogenome/internal/history"
)

// ChronoMap derives the temporal view: a churn-normalized
// genome.HistoryEntry per file node, and the top-k churn leaders as
// summary.hotspots candidates.
//
// Grounded on the teacher's internal/temporal/git_history.go for the
// history-source shape, generalized here to depend on the
// history.Source capability interface instead of calling git directly,
// so ChronoMap stays testable without a real repository.
type ChronoMap struct {
	disabled bool
}

func NewChronoMap(disabled bool) *ChronoMap { return &ChronoMap{disabled: disabled} }

func (c *ChronoMap) Name() string   { return "chronomap" }
func (c *ChronoMap) Disabled() bool { return c.disabled }

func (c *ChronoMap) Run(ctx context.Context, base *genome.BaseGraph, caps Capabilities) (Output, error) {
	if caps.HistorySource == nil {
		return Output{}, nil
	}

	days := caps.HistoryDays
	if days <= 0 {
		days = 365
	}

	commits, err := caps.HistorySource.CommitsSince(ctx, caps.RepoRoot, days)
	if err != nil {
		return Output{}, err
	}

	churn := history.Churn(commits)
	normalized := history.NormalizeChurn(churn)
	coChange := history.CoChange(commits, 0.3, 3)

	out := Output{History: make(map[genome.NodeId]genome.HistoryEntry)}
	for _, path := range history.SortedPaths(churn) {
		id := genome.FileID(path)
		if _, ok := base.Nodes[id]; !ok {
			continue
		}
		entry := churn[path]
		out.History[id] = genome.HistoryEntry{
			FileID:          id,
			ChurnScore:      normalized[path],
			LastMajorChange: entry.LastMajorChange,
			Notes:           coChangeNote(coChange[path]),
		}
	}

	k := caps.HotspotK
	if k <= 0 {
		k = 10
	}
	out.Hotspots = topKByChurn(out.History, k)

	return out, nil
}

// coChangeNote renders a file's top co-change partners into
// HistoryEntry.Notes, a free-text field; co-change frequency has no
// dedicated slot in the closed Genome schema.
func coChangeNote(partners []history.CoChangePartner) string {
	if len(partners) == 0 {
		return ""
	}
	parts := make([]string, 0, len(partners))
	for _, p := range partners {
		parts = append(parts, fmt.Sprintf("%s (%.0f%%)", p.Path, p.Frequency*100))
	}
	return "co-changes with " + strings.Join(parts, ", ")
}

func topKByChurn(h map[genome.NodeId]genome.HistoryEntry, k int) []genome.NodeId {
	type scored struct {
		id    genome.NodeId
		churn float64
	}
	all := make([]scored, 0, len(h))
	for id, e := range h {
		all = append(all, scored{id, e.ChurnScore})
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
	out := make([]genome.NodeId, 0, k)
	for _, s := range all[:k] {
		out = append(out, s.id)
	}
	return out
}
