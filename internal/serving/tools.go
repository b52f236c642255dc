package serving

import (
	"context"
	"encoding/json"
	"time"

	ctxassembler "github.com/genomectl/repogenome/internal/context"
	genomeerrors "github.com/genomectl/repogenome/internal/errors"
	"github.com/genomectl/repogenome/internal/exportfmt"
	"github.com/genomectl/repogenome/internal/genome"
	"github.com/genomectl/repogenome/internal/query"
	"github.com/genomectl/repogenome/internal/telemetry"
)

// RegisterTools wires every entry of spec.md §6's tools table onto h,
// backed by engine.
func RegisterTools(h *Handler, e *Engine) {
	for _, t := range []Tool{
		&scanTool{e},
		&queryTool{e},
		&getNodeTool{e},
		&searchTool{e},
		&dependenciesTool{e},
		&statsTool{e},
		&exportTool{e},
		&impactTool{e},
		&updateTool{e},
		&validateTool{e},
		&buildContextTool{e},
		&explainContextTool{e},
		&getContextSkeletonTool{e},
		&getContextFeedbackTool{e},
		&setContextSessionTool{e},
		&filterTool{e},
		&compareTool{e},
		&findPathTool{e},
	} {
		h.RegisterTool(t)
	}
}

func decode(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return genomeerrors.InvalidInput("malformed-payload", "malformed payload: "+err.Error())
	}
	return nil
}

func currentGenome(e *Engine) (*genome.Genome, error) {
	g := e.Snapshot()
	if g == nil {
		return nil, genomeerrors.NotFound("no-genome", "no genome loaded; run scan first")
	}
	return g, nil
}

// scan

type scanTool struct{ e *Engine }

func (t *scanTool) Name() string  { return "scan" }
func (t *scanTool) Effect() Effect { return EffectWriter }

type scanPayload struct {
	Scope       string `json:"scope"`
	Incremental bool   `json:"incremental"`
}

func (t *scanTool) Execute(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var in scanPayload
	if err := decode(payload, &in); err != nil {
		return nil, err
	}
	stats, err := t.e.Scan(ctx, in.Incremental)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"stats": stats}, nil
}

// query

type queryTool struct{ e *Engine }

func (t *queryTool) Name() string  { return "query" }
func (t *queryTool) Effect() Effect { return EffectReader }

type queryPayload struct {
	Predicate query.Predicate `json:"predicate"`
	Options   query.Options   `json:"options"`
}

func (t *queryTool) Execute(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	g, err := currentGenome(t.e)
	if err != nil {
		return nil, err
	}
	var in queryPayload
	if err := decode(payload, &in); err != nil {
		return nil, err
	}
	page, err := t.e.RunQuery(ctx, g, in.Predicate, in.Options)
	if err != nil {
		return nil, genomeerrors.InvalidInput("bad-predicate", err.Error())
	}
	return page, nil
}

// filter — a rich-predicate entry point sharing query's engine; kept
// as a distinct tool name since spec.md §6 lists it separately from
// query, but nested and/or/not leaves reach the same Predicate tree.
type filterTool struct{ e *Engine }

func (t *filterTool) Name() string  { return "filter" }
func (t *filterTool) Effect() Effect { return EffectReader }

func (t *filterTool) Execute(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	return (&queryTool{t.e}).Execute(ctx, payload)
}

// get_node

type getNodeTool struct{ e *Engine }

func (t *getNodeTool) Name() string  { return "get_node" }
func (t *getNodeTool) Effect() Effect { return EffectReader }

type getNodePayload struct {
	ID      genome.NodeId        `json:"id"`
	Options query.GetNodeOptions `json:"options"`
}

func (t *getNodeTool) Execute(_ context.Context, payload json.RawMessage) (interface{}, error) {
	g, err := currentGenome(t.e)
	if err != nil {
		return nil, err
	}
	var in getNodePayload
	if err := decode(payload, &in); err != nil {
		return nil, err
	}
	view, err := query.GetNode(g, in.ID, in.Options)
	if err != nil {
		return nil, genomeerrors.NotFound("node-not-found", err.Error())
	}
	return view, nil
}

// search

type searchTool struct{ e *Engine }

func (t *searchTool) Name() string  { return "search" }
func (t *searchTool) Effect() Effect { return EffectReader }

type searchPayload struct {
	Query       string `json:"query"`
	NodeType    string `json:"node_type"`
	Language    string `json:"language"`
	FilePattern string `json:"file_pattern"`
	Limit       int    `json:"limit"`
}

func (t *searchTool) Execute(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	g, err := currentGenome(t.e)
	if err != nil {
		return nil, err
	}
	var in searchPayload
	if err := decode(payload, &in); err != nil {
		return nil, err
	}

	var leaves []query.Predicate
	if translated, ok := query.Translate(in.Query); ok {
		leaves = append(leaves, translated)
	}
	if in.NodeType != "" {
		leaves = append(leaves, query.Leaf("type", query.OpEq, in.NodeType))
	}
	if in.Language != "" {
		leaves = append(leaves, query.Leaf("language", query.OpEq, in.Language))
	}
	if in.FilePattern != "" {
		leaves = append(leaves, query.Leaf("file", query.OpRegex, in.FilePattern))
	}

	var predicate query.Predicate
	switch len(leaves) {
	case 0:
		predicate = query.Leaf("type", query.OpRegex, ".*")
	case 1:
		predicate = leaves[0]
	default:
		predicate = query.And(leaves...)
	}

	page, err := t.e.RunQuery(ctx, g, predicate, query.Options{PageSize: in.Limit})
	if err != nil {
		return nil, genomeerrors.InvalidInput("bad-search", err.Error())
	}
	return page.Items, nil
}

// dependencies

type dependenciesTool struct{ e *Engine }

func (t *dependenciesTool) Name() string  { return "dependencies" }
func (t *dependenciesTool) Effect() Effect { return EffectReader }

type dependenciesPayload struct {
	ID        genome.NodeId   `json:"id"`
	Direction query.Direction `json:"direction"`
	Depth     int             `json:"depth"`
}

func (t *dependenciesTool) Execute(_ context.Context, payload json.RawMessage) (interface{}, error) {
	g, err := currentGenome(t.e)
	if err != nil {
		return nil, err
	}
	var in dependenciesPayload
	if err := decode(payload, &in); err != nil {
		return nil, err
	}
	sub, err := query.Dependencies(g, in.ID, in.Direction, in.Depth)
	if err != nil {
		return nil, genomeerrors.NotFound("node-not-found", err.Error())
	}
	return sub, nil
}

// stats

type statsTool struct{ e *Engine }

func (t *statsTool) Name() string  { return "stats" }
func (t *statsTool) Effect() Effect { return EffectReader }

func (t *statsTool) Execute(context.Context, json.RawMessage) (interface{}, error) {
	return t.e.Stats()
}

// export

type exportTool struct{ e *Engine }

func (t *exportTool) Name() string  { return "export" }
func (t *exportTool) Effect() Effect { return EffectReader }

type exportPayload struct {
	Format     exportfmt.Format `json:"format"`
	OutputPath string           `json:"output_path"`
}

func (t *exportTool) Execute(_ context.Context, payload json.RawMessage) (interface{}, error) {
	var in exportPayload
	if err := decode(payload, &in); err != nil {
		return nil, err
	}
	path, n, err := t.e.Export(in.Format, in.OutputPath)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"path": path, "bytes": n}, nil
}

// impact

type impactTool struct{ e *Engine }

func (t *impactTool) Name() string  { return "impact" }
func (t *impactTool) Effect() Effect { return EffectSessionWrite }

type impactPayload struct {
	AffectedNodes []genome.NodeId `json:"affected_nodes"`
	Operation     string          `json:"operation"`
}

const highRiskApprovalThreshold = 0.7

func (t *impactTool) Execute(_ context.Context, payload json.RawMessage) (interface{}, error) {
	g, err := currentGenome(t.e)
	if err != nil {
		return nil, err
	}
	var in impactPayload
	if err := decode(payload, &in); err != nil {
		return nil, err
	}

	flowSet := map[genome.NodeId]bool{}
	var maxRisk float64
	affected := map[genome.NodeId]bool{}
	for _, id := range in.AffectedNodes {
		affected[id] = true
		if r, ok := g.Risk[id]; ok && r.RiskScore > maxRisk {
			maxRisk = r.RiskScore
		}
		sub, err := query.Dependencies(g, id, query.DirectionIn, 2)
		if err == nil {
			for _, n := range sub.Nodes {
				affected[n] = true
			}
		}
	}
	var affectedFlows []genome.Flow
	for _, f := range g.Flows {
		for _, id := range f.Path {
			if affected[id] {
				flowSet[f.Entry] = true
				affectedFlows = append(affectedFlows, f)
				break
			}
		}
	}

	return map[string]interface{}{
		"risk":              maxRisk,
		"affected_flows":    affectedFlows,
		"requires_approval": maxRisk >= highRiskApprovalThreshold || len(affectedFlows) > 0,
	}, nil
}

// update

type updateTool struct{ e *Engine }

func (t *updateTool) Name() string  { return "update" }
func (t *updateTool) Effect() Effect { return EffectWriter }

type updatePayload struct {
	Added   []*genome.Node                         `json:"added"`
	Removed []genome.NodeId                        `json:"removed"`
	Updated map[genome.NodeId]map[string]interface{} `json:"updated"`
	Reason  string                                 `json:"reason"`
}

func (t *updateTool) Execute(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var in updatePayload
	if err := decode(payload, &in); err != nil {
		return nil, err
	}
	if in.Reason == "" {
		return nil, genomeerrors.InvalidInput("missing-reason", "update requires a reason")
	}
	stats, err := t.e.Update(ctx, UpdateDelta{
		AddNodes:     in.Added,
		RemoveNodes:  in.Removed,
		UpdateFields: in.Updated,
		Reason:       in.Reason,
	})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"stats": stats}, nil
}

// validate

type validateTool struct{ e *Engine }

func (t *validateTool) Name() string  { return "validate" }
func (t *validateTool) Effect() Effect { return EffectReader }

func (t *validateTool) Execute(context.Context, json.RawMessage) (interface{}, error) {
	ok, violations := t.e.Validate()
	return map[string]interface{}{"ok": ok, "violations": violations}, nil
}

// build_context

type buildContextTool struct{ e *Engine }

func (t *buildContextTool) Name() string  { return "build_context" }
func (t *buildContextTool) Effect() Effect { return EffectReader }

func (t *buildContextTool) Execute(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	g, err := currentGenome(t.e)
	if err != nil {
		return nil, err
	}
	var in ctxassembler.Input
	if err := decode(payload, &in); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { telemetry.ObserveContext(time.Since(start)) }()
	return t.e.assembler.BuildContext(ctx, g, in)
}

// explain_context

type explainContextTool struct{ e *Engine }

func (t *explainContextTool) Name() string  { return "explain_context" }
func (t *explainContextTool) Effect() Effect { return EffectReader }

type explainContextPayload struct {
	ContextID string `json:"context_id"`
}

func (t *explainContextTool) Execute(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var in explainContextPayload
	if err := decode(payload, &in); err != nil {
		return nil, err
	}
	trace, found, err := t.e.assembler.ExplainContext(ctx, in.ContextID)
	if err != nil {
		return nil, genomeerrors.IOError(err, "load decision trace")
	}
	if !found {
		return nil, genomeerrors.NotFound("unknown-context", "no decision trace for context_id "+in.ContextID)
	}
	return trace, nil
}

// get_context_skeleton

type getContextSkeletonTool struct{ e *Engine }

func (t *getContextSkeletonTool) Name() string  { return "get_context_skeleton" }
func (t *getContextSkeletonTool) Effect() Effect { return EffectReader }

func (t *getContextSkeletonTool) Execute(_ context.Context, payload json.RawMessage) (interface{}, error) {
	g, err := currentGenome(t.e)
	if err != nil {
		return nil, err
	}
	var in ctxassembler.Input
	if err := decode(payload, &in); err != nil {
		return nil, err
	}
	return t.e.assembler.GetContextSkeleton(g, in), nil
}

// get_context_feedback

type getContextFeedbackTool struct{ e *Engine }

func (t *getContextFeedbackTool) Name() string  { return "get_context_feedback" }
func (t *getContextFeedbackTool) Effect() Effect { return EffectReader }

func (t *getContextFeedbackTool) Execute(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var in explainContextPayload
	if err := decode(payload, &in); err != nil {
		return nil, err
	}
	return t.e.assembler.GetContextFeedback(ctx, in.ContextID)
}

// set_context_session

type setContextSessionTool struct{ e *Engine }

func (t *setContextSessionTool) Name() string  { return "set_context_session" }
func (t *setContextSessionTool) Effect() Effect { return EffectWriter }

type setContextSessionPayload struct {
	SessionID string `json:"session_id"`
	State     struct {
		PinnedIDs []genome.NodeId `json:"pinned_ids"`
	} `json:"state"`
}

func (t *setContextSessionTool) Execute(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var in setContextSessionPayload
	if err := decode(payload, &in); err != nil {
		return nil, err
	}
	if err := t.e.assembler.SetContextSession(ctx, in.SessionID, in.State.PinnedIDs); err != nil {
		return nil, genomeerrors.IOError(err, "persist context session")
	}
	return map[string]interface{}{"ok": true}, nil
}

// compare

type compareTool struct{ e *Engine }

func (t *compareTool) Name() string  { return "compare" }
func (t *compareTool) Effect() Effect { return EffectReader }

type compareRefPayload struct {
	ID genome.NodeId `json:"id"`
}

type comparePayload struct {
	A compareRefPayload `json:"a"`
	B compareRefPayload `json:"b"`
}

func (t *compareTool) Execute(_ context.Context, payload json.RawMessage) (interface{}, error) {
	g, err := currentGenome(t.e)
	if err != nil {
		return nil, err
	}
	var in comparePayload
	if err := decode(payload, &in); err != nil {
		return nil, err
	}
	diff, err := query.Compare(g, query.Side{ID: in.A.ID}, query.Side{ID: in.B.ID})
	if err != nil {
		return nil, genomeerrors.NotFound("node-not-found", err.Error())
	}
	return diff, nil
}

// find_path

type findPathTool struct{ e *Engine }

func (t *findPathTool) Name() string  { return "find_path" }
func (t *findPathTool) Effect() Effect { return EffectReader }

type findPathPayload struct {
	From   genome.NodeId `json:"from"`
	To     genome.NodeId `json:"to"`
	MaxLen int           `json:"max_len"`
}

func (t *findPathTool) Execute(_ context.Context, payload json.RawMessage) (interface{}, error) {
	g, err := currentGenome(t.e)
	if err != nil {
		return nil, err
	}
	var in findPathPayload
	if err := decode(payload, &in); err != nil {
		return nil, err
	}
	path, err := query.FindPath(g, in.From, in.To, nil, in.MaxLen)
	if err != nil {
		return nil, genomeerrors.NotFound("not-reachable", err.Error())
	}
	return map[string]interface{}{"path": path}, nil
}
