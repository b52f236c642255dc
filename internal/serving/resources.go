package serving

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	genomeerrors "github.com/genomectl/repogenome/internal/errors"
	"github.com/genomectl/repogenome/internal/genome"
	"github.com/genomectl/repogenome/internal/query"
)

// RegisterResources wires every entry of spec.md §6's resources table
// onto h, backed by engine.
func RegisterResources(h *Handler, e *Engine) {
	h.RegisterResource("current", &currentResource{e, genome.ModeStandard})
	h.RegisterResource("current/brief", &currentResource{e, genome.ModeLite})
	h.RegisterResource("current/detailed", &currentDetailedResource{e})
	h.RegisterResource("summary", &summaryResource{e})
	h.RegisterResource("diff", &diffResource{e})
	h.RegisterResource("stats", &statsResource{e})
	h.RegisterResource("nodes", &nodesResource{e})
}

func parseQuery(path string) url.Values {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		if v, err := url.ParseQuery(path[i+1:]); err == nil {
			return v
		}
	}
	return url.Values{}
}

// current, current/brief

type currentResource struct {
	e    *Engine
	mode genome.Mode
}

// Read encodes the snapshot under r.mode and returns the raw bytes as
// json.RawMessage so resultMessage embeds them unchanged rather than
// re-marshaling the Go struct under the default (standard) encoding —
// current/brief's lite mode only matters if its bytes reach the wire.
func (r *currentResource) Read(_ context.Context, _ string) (interface{}, error) {
	g, err := currentGenome(r.e)
	if err != nil {
		return nil, err
	}
	data, err := genome.Marshal(g, r.mode, false)
	if err != nil {
		return nil, genomeerrors.IOError(err, "encode genome resource")
	}
	return json.RawMessage(data), nil
}

// current/detailed — standard encoding plus the derived metrics that
// accompany it (node/edge counts and the criticality average `stats`
// also exposes, so a client doesn't need a second round trip).
type currentDetailedResource struct{ e *Engine }

func (r *currentDetailedResource) Read(_ context.Context, _ string) (interface{}, error) {
	g, err := currentGenome(r.e)
	if err != nil {
		return nil, err
	}
	view, err := r.e.Stats()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"genome": g, "metrics": view}, nil
}

// summary[?mode=brief|standard|detailed]

type summaryResource struct{ e *Engine }

func (r *summaryResource) Read(_ context.Context, path string) (interface{}, error) {
	g, err := currentGenome(r.e)
	if err != nil {
		return nil, err
	}
	mode := parseQuery(path).Get("mode")
	if mode == "" {
		mode = "standard"
	}
	switch mode {
	case "brief", "standard", "detailed":
	default:
		return nil, genomeerrors.InvalidInput("bad-mode", "unknown summary mode: "+mode)
	}
	return map[string]interface{}{"mode": mode, "summary": g.Summary}, nil
}

// diff

type diffResource struct{ e *Engine }

func (r *diffResource) Read(ctx context.Context, _ string) (interface{}, error) {
	return r.e.Diff(ctx)
}

// stats

type statsResource struct{ e *Engine }

func (r *statsResource) Read(context.Context, string) (interface{}, error) {
	return r.e.Stats()
}

// nodes/{id}[?fields=...]

type nodesResource struct{ e *Engine }

func (r *nodesResource) Read(_ context.Context, path string) (interface{}, error) {
	g, err := currentGenome(r.e)
	if err != nil {
		return nil, err
	}

	rest := strings.TrimPrefix(path, "nodes/")
	base := rest
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		base = rest[:i]
	}
	id := genome.NodeId(base)
	if _, ok := g.Nodes[id]; !ok {
		return nil, genomeerrors.NotFound("node-not-found", "no such node: "+base)
	}

	var fields []string
	if raw := parseQuery(path).Get("fields"); raw != "" {
		fields = strings.Split(raw, ",")
	}

	view, err := query.GetNode(g, id, query.GetNodeOptions{Fields: fields})
	if err != nil {
		return nil, genomeerrors.NotFound("node-not-found", err.Error())
	}
	return view, nil
}
