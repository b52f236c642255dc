package serving

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/genomectl/repogenome/internal/analyzer"
	ctxassembler "github.com/genomectl/repogenome/internal/context"
	genomeerrors "github.com/genomectl/repogenome/internal/errors"
	"github.com/genomectl/repogenome/internal/exportfmt"
	"github.com/genomectl/repogenome/internal/fsx"
	"github.com/genomectl/repogenome/internal/genome"
	"github.com/genomectl/repogenome/internal/incremental"
	"github.com/genomectl/repogenome/internal/merge"
	"github.com/genomectl/repogenome/internal/query"
	"github.com/genomectl/repogenome/internal/spider"
	"github.com/genomectl/repogenome/internal/subsystems"
	"github.com/genomectl/repogenome/internal/telemetry"
)

// Config wires everything one Engine instance needs: the repository
// it serves, the analyzer/subsystem pipeline, and where the persisted
// Genome lives on disk.
type Config struct {
	RepoRoot     string
	PersistPath  string // relative to RepoRoot; empty disables auto-persist
	Workers      int
	Registry     *analyzer.Registry
	Subsystems   []subsystems.Subsystem
	Capabilities subsystems.Capabilities
	MergeOptions merge.Options
	FS           fsx.Source
}

// ScanStats is the `scan` tool's output.
type ScanStats struct {
	NodeCount    int  `json:"node_count"`
	EdgeCount    int  `json:"edge_count"`
	Partial      bool `json:"partial"`
	Incremental  bool `json:"incremental"`
	DiagnosticsN int  `json:"diagnostics"`
}

// UpdateDelta is the `update` tool's input: a client-reported edit to
// apply atomically on top of the current Genome.
type UpdateDelta struct {
	AddNodes     []*genome.Node
	RemoveNodes  []genome.NodeId
	AddEdges     []genome.Edge
	RemoveEdges  []genome.Edge
	UpdateFields map[genome.NodeId]map[string]interface{}
	Reason       string
}

// Engine owns the live Genome snapshot and every reader/writer
// operation the tool table exposes. Readers call Snapshot and get an
// immutable pointer valid for the call's duration; scan/update acquire
// writerMu and atomically swap the snapshot on success, per spec.md
// §5's single-writer/atomic-swap model.
type Engine struct {
	cfg Config

	snapshot atomic.Pointer[genome.Genome]
	writerMu sync.Mutex

	queryCache *query.Cache
	assembler  *ctxassembler.Assembler
	genGen     atomic.Uint64 // bumped on every snapshot swap, feeds the query cache key
}

// NewEngine constructs an Engine with an empty snapshot; call Scan to
// populate it, or Load to adopt a persisted Genome.
func NewEngine(cfg Config, cache *query.Cache, assembler *ctxassembler.Assembler) *Engine {
	if cfg.FS == nil {
		cfg.FS = fsx.OSSource{}
	}
	return &Engine{cfg: cfg, queryCache: cache, assembler: assembler}
}

// Snapshot returns the current immutable Genome, or nil if no scan has
// run yet.
func (e *Engine) Snapshot() *genome.Genome {
	return e.snapshot.Load()
}

// Generation returns the snapshot generation number, used by the query
// cache to invalidate entries across a scan/update.
func (e *Engine) Generation() uint64 {
	return e.genGen.Load()
}

// Load adopts data as the current Genome without running any
// analysis — used at startup to resume from a persisted file.
func (e *Engine) Load(data []byte) error {
	g, _, err := genome.Unmarshal(data)
	if err != nil {
		return genomeerrors.IOError(err, "decode persisted genome")
	}
	e.swap(g)
	return nil
}

func (e *Engine) swap(g *genome.Genome) {
	e.snapshot.Store(g)
	e.genGen.Add(1)
	if e.queryCache != nil {
		_ = e.queryCache.Flush(context.Background())
	}
}

// RunQuery evaluates predicate against g, serving from the query
// cache when a prior call against the same generation already
// computed it. The query and filter tools share this path so both
// benefit from, and both count toward, the cache hit-rate metric.
func (e *Engine) RunQuery(ctx context.Context, g *genome.Genome, predicate query.Predicate, opts query.Options) (page query.Page, err error) {
	start := time.Now()
	outcome := "ok"
	defer func() { telemetry.ObserveQuery(time.Since(start), outcome) }()

	if e.queryCache != nil {
		key := query.Key(e.Generation(), predicate, opts)
		if cached, found := e.queryCache.Get(ctx, key); found {
			telemetry.RecordCacheHit()
			return cached, nil
		}
		telemetry.RecordCacheMiss()
		page, err = query.Query(g, predicate, opts)
		if err != nil {
			outcome = "error"
			return query.Page{}, err
		}
		_ = e.queryCache.Set(ctx, key, page)
		return page, nil
	}

	page, err = query.Query(g, predicate, opts)
	if err != nil {
		outcome = "error"
	}
	return page, err
}

// Scan runs a full or incremental analysis pass and swaps it in on
// success. On failure the existing snapshot is left untouched.
func (e *Engine) Scan(ctx context.Context, incrementalScan bool) (stats ScanStats, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		} else if stats.Partial {
			outcome = "partial"
		}
		telemetry.ObserveScan(time.Since(start), outcome)
	}()

	e.writerMu.Lock()
	defer e.writerMu.Unlock()

	existing := e.snapshot.Load()

	if incrementalScan && existing != nil {
		updated, err := incremental.Run(ctx, existing, incremental.Options{
			RepoRoot: e.cfg.RepoRoot,
			Workers:  e.cfg.Workers,
			Merge:    e.cfg.MergeOptions,
		}, e.cfg.Registry, e.cfg.Subsystems, e.cfg.Capabilities)
		if err != nil {
			return ScanStats{}, genomeerrors.Wrap(err, genomeerrors.ErrorTypeAnalysisError, genomeerrors.SeverityMedium, "incremental scan failed")
		}
		e.swap(updated)
		e.persist(updated)
		return statsOf(updated, true), nil
	}

	result, err := spider.Run(ctx, spider.Options{RepoRoot: e.cfg.RepoRoot, Workers: e.cfg.Workers}, e.cfg.Registry)
	if err != nil {
		return ScanStats{}, genomeerrors.Wrap(err, genomeerrors.ErrorTypeAnalysisError, genomeerrors.SeverityMedium, "full scan failed")
	}
	base := result.BaseGraph()
	outputs := subsystems.RunEnabled(ctx, e.cfg.Subsystems, base, e.cfg.Capabilities)
	merged := merge.Merge(base, outputs, e.cfg.MergeOptions)
	if len(merged.Violations) > 0 {
		return ScanStats{}, genomeerrors.InvariantViolation(merged.Violations[0].Invariant, string(merged.Violations[0].NodeID)).
			WithContext("violation_count", len(merged.Violations))
	}

	allPaths, err := spider.CollectPaths(spider.Options{RepoRoot: e.cfg.RepoRoot})
	if err == nil {
		if fps, ferr := incremental.Fingerprints(e.cfg.RepoRoot, allPaths); ferr == nil {
			merged.Genome.Metadata.Fingerprints = fps
		}
	}

	e.swap(merged.Genome)
	e.persist(merged.Genome)
	return statsOf(merged.Genome, false), nil
}

func statsOf(g *genome.Genome, incremental bool) ScanStats {
	return ScanStats{
		NodeCount:   len(g.Nodes),
		EdgeCount:   len(g.Edges),
		Partial:     g.Metadata.Partial,
		Incremental: incremental,
	}
}

func (e *Engine) persist(g *genome.Genome) {
	if e.cfg.PersistPath == "" {
		return
	}
	data, err := genome.Marshal(g, genome.ModeStandard, false)
	if err != nil {
		return
	}
	_ = e.cfg.FS.WriteFile(e.cfg.RepoRoot, e.cfg.PersistPath, data)
}

// Update applies a client-reported edit to a deep copy of the current
// Genome, validates the result, and swaps it in only if validation
// passes — all-or-nothing per the invariant-violation propagation
// policy.
func (e *Engine) Update(_ context.Context, delta UpdateDelta) (ScanStats, error) {
	e.writerMu.Lock()
	defer e.writerMu.Unlock()

	existing := e.snapshot.Load()
	if existing == nil {
		return ScanStats{}, genomeerrors.New(genomeerrors.ErrorTypeInvalidInput, genomeerrors.SeverityHigh, "no genome loaded; run scan first").WithCode("no-genome")
	}

	clone, err := cloneGenome(existing)
	if err != nil {
		return ScanStats{}, err
	}

	for _, n := range delta.AddNodes {
		clone.Nodes[n.ID] = n
	}
	for _, id := range delta.RemoveNodes {
		delete(clone.Nodes, id)
	}
	clone.Edges = append(clone.Edges, delta.AddEdges...)
	if len(delta.RemoveEdges) > 0 {
		clone.Edges = removeEdges(clone.Edges, delta.RemoveEdges)
	}
	for id, fields := range delta.UpdateFields {
		n, ok := clone.Nodes[id]
		if !ok {
			continue
		}
		applyFieldUpdate(n, fields)
	}

	violations := clone.Validate(nil)
	if len(violations) > 0 {
		return ScanStats{}, genomeerrors.InvariantViolation(violations[0].Invariant, string(violations[0].NodeID)).
			WithContext("violation_count", len(violations)).
			WithContext("reason", delta.Reason)
	}

	e.swap(clone)
	e.persist(clone)
	return statsOf(clone, false), nil
}

func removeEdges(edges []genome.Edge, remove []genome.Edge) []genome.Edge {
	skip := make(map[string]bool, len(remove))
	for _, e := range remove {
		skip[edgeKey(e)] = true
	}
	out := edges[:0:0]
	for _, e := range edges {
		if !skip[edgeKey(e)] {
			out = append(out, e)
		}
	}
	return out
}

func edgeKey(e genome.Edge) string {
	return fmt.Sprintf("%s|%s|%s", e.From, e.To, e.Type)
}

func applyFieldUpdate(n *genome.Node, fields map[string]interface{}) {
	if v, ok := fields["summary"].(string); ok {
		n.Summary = v
	}
	if v, ok := fields["criticality"].(float64); ok {
		n.Criticality = v
	}
	if v, ok := fields["visibility"].(string); ok {
		n.Visibility = genome.Visibility(v)
	}
}

// cloneGenome deep-copies g via a marshal/unmarshal round trip so
// Update never mutates a Genome a reader may be holding a snapshot
// handle to.
func cloneGenome(g *genome.Genome) (*genome.Genome, error) {
	data, err := genome.Marshal(g, genome.ModeStandard, false)
	if err != nil {
		return nil, genomeerrors.IOError(err, "clone genome for update")
	}
	clone, _, err := genome.Unmarshal(data)
	if err != nil {
		return nil, genomeerrors.IOError(err, "decode cloned genome")
	}
	return clone, nil
}

// Validate reports every invariant violation in the current snapshot
// without mutating anything.
func (e *Engine) Validate() (bool, []genome.InvariantViolation) {
	g := e.snapshot.Load()
	if g == nil {
		return true, nil
	}
	violations := g.Validate(nil)
	return len(violations) == 0, violations
}

// Export renders the current snapshot in format, writes it to outputPath
// when one is given, and returns outputPath and the rendered byte count.
func (e *Engine) Export(format exportfmt.Format, outputPath string) (string, int, error) {
	g := e.snapshot.Load()
	if g == nil {
		return "", 0, genomeerrors.New(genomeerrors.ErrorTypeInvalidInput, genomeerrors.SeverityHigh, "no genome loaded; run scan first").WithCode("no-genome")
	}
	fn, ok := exportfmt.Registry[format]
	if !ok {
		return "", 0, genomeerrors.InvalidInput("unknown-format", "unsupported export format: "+string(format))
	}
	data, err := fn(g)
	if err != nil {
		return "", 0, genomeerrors.IOError(err, "render export")
	}
	if outputPath != "" {
		if err := e.cfg.FS.WriteFile(e.cfg.RepoRoot, outputPath, data); err != nil {
			return "", 0, genomeerrors.IOError(err, "write export output")
		}
	}
	return outputPath, len(data), nil
}

// StatsView is the `stats` tool/resource output: repo-level counts and
// distributions derived from the current snapshot.
type StatsView struct {
	NodeCount        int            `json:"node_count"`
	EdgeCount        int            `json:"edge_count"`
	LanguageCounts   map[string]int `json:"language_counts"`
	AverageCriticality float64      `json:"average_criticality"`
	GeneratedAt      time.Time      `json:"generated_at"`
}

func (e *Engine) Stats() (StatsView, error) {
	g := e.snapshot.Load()
	if g == nil {
		return StatsView{}, genomeerrors.NotFound("no-genome", "no genome loaded; run scan first")
	}
	view := StatsView{NodeCount: len(g.Nodes), EdgeCount: len(g.Edges), LanguageCounts: map[string]int{}, GeneratedAt: g.Metadata.GeneratedAt}
	var total float64
	for _, n := range g.Nodes {
		if n.Language != "" {
			view.LanguageCounts[n.Language]++
		}
		total += n.Criticality
	}
	if len(g.Nodes) > 0 {
		view.AverageCriticality = total / float64(len(g.Nodes))
	}
	return view, nil
}

// Diff returns the node ids added or removed since the snapshot the
// persisted file on disk holds, for the `diff` resource. Since this
// engine only keeps one live snapshot in memory, "since last persisted"
// is approximated by re-reading PersistPath.
func (e *Engine) Diff(_ context.Context) (map[string][]genome.NodeId, error) {
	current := e.snapshot.Load()
	if current == nil {
		return nil, genomeerrors.NotFound("no-genome", "no genome loaded; run scan first")
	}
	if e.cfg.PersistPath == "" {
		return map[string][]genome.NodeId{"added": sortedIDs(current)}, nil
	}
	data, err := e.cfg.FS.ReadFile(e.cfg.RepoRoot, e.cfg.PersistPath)
	if err != nil {
		return map[string][]genome.NodeId{"added": sortedIDs(current)}, nil
	}
	prior, _, err := genome.Unmarshal(data)
	if err != nil {
		return nil, genomeerrors.IOError(err, "decode persisted genome for diff")
	}

	var added, removed []genome.NodeId
	for id := range current.Nodes {
		if _, ok := prior.Nodes[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range prior.Nodes {
		if _, ok := current.Nodes[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Slice(added, func(i, j int) bool { return added[i] < added[j] })
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return map[string][]genome.NodeId{"added": added, "removed": removed}, nil
}

func sortedIDs(g *genome.Genome) []genome.NodeId {
	ids := make([]genome.NodeId, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
