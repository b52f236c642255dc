package serving

import (
	"context"
	"encoding/json"
	"strings"

	genomeerrors "github.com/genomectl/repogenome/internal/errors"
)

// Tool is one entry of the tools table (spec.md §6): a named, typed
// operation with a declared side-effect class.
type Tool interface {
	Name() string
	Effect() Effect
	Execute(ctx context.Context, payload json.RawMessage) (interface{}, error)
}

// Resource is one entry of the resources table: a read-only, URI-
// addressed view over the current Genome. path is the resource name
// with its "resource:" prefix already stripped, e.g. "current/brief",
// "nodes/a.py#f", "summary?mode=compact".
type Resource interface {
	Read(ctx context.Context, path string) (interface{}, error)
}

// Handler dispatches wire Messages to registered tools/resources,
// enforcing the Agent Contract around every tool call via its
// SessionState. One Handler serves one session.
type Handler struct {
	tools     map[string]Tool
	resources map[string]Resource
	session   *SessionState
}

// NewHandler returns a Handler with empty registries and a fresh
// session.
func NewHandler() *Handler {
	return &Handler{
		tools:     make(map[string]Tool),
		resources: make(map[string]Resource),
		session:   NewSessionState(),
	}
}

// RegisterTool adds t under its own Name().
func (h *Handler) RegisterTool(t Tool) {
	h.tools[t.Name()] = t
}

// RegisterResource adds r under name — a static resource name
// ("current", "stats", "diff") or a prefix a variadic resource like
// "nodes" parses itself (see ResourceNodes.Read).
func (h *Handler) RegisterResource(name string, r Resource) {
	h.resources[name] = r
}

// Handle processes one inbound Message and returns the Message to
// write back.
func (h *Handler) Handle(ctx context.Context, req Message) Message {
	if strings.HasPrefix(req.Name, resourcePrefix) {
		return h.handleResource(ctx, req)
	}
	return h.handleTool(ctx, req)
}

func (h *Handler) handleTool(ctx context.Context, req Message) Message {
	t, ok := h.tools[req.Name]
	if !ok {
		return errorMessage(req.ID, genomeerrors.InvalidInput("unknown-tool", "no such tool: "+req.Name))
	}

	if err := h.session.BeforeTool(req.Name, t.Effect()); err != nil {
		return errorMessage(req.ID, err)
	}

	result, err := t.Execute(ctx, req.Payload)
	if err != nil {
		if req.Name == "validate" {
			h.session.AfterValidate(false)
		}
		return errorMessage(req.ID, err)
	}

	switch req.Name {
	case "impact":
		h.session.AfterImpact()
	case "update":
		h.session.AfterUpdate()
	case "validate":
		clean := true
		if m, isMap := result.(map[string]interface{}); isMap {
			if v, isBool := m["ok"].(bool); isBool {
				clean = v
			}
		}
		h.session.AfterValidate(clean)
	}

	return resultMessage(req.ID, result)
}

func (h *Handler) handleResource(ctx context.Context, req Message) Message {
	path := strings.TrimPrefix(req.Name, resourcePrefix)

	r, matched := h.matchResource(path)
	if !matched {
		return errorMessage(req.ID, genomeerrors.NotFound("unknown-resource", "no such resource: "+path))
	}

	result, err := r.Read(ctx, path)
	if err != nil {
		return errorMessage(req.ID, err)
	}

	if isLoadResource(path) {
		h.session.AfterLoad()
	}

	return resultMessage(req.ID, result)
}

// matchResource finds the registered Resource whose name is path or a
// prefix of it (for parameterized resources like "nodes/{id}").
func (h *Handler) matchResource(path string) (Resource, bool) {
	base := path
	if i := strings.IndexAny(base, "?"); i >= 0 {
		base = base[:i]
	}
	if r, ok := h.resources[base]; ok {
		return r, true
	}
	if i := strings.Index(base, "/"); i >= 0 {
		if r, ok := h.resources[base[:i]]; ok {
			return r, true
		}
	}
	return nil, false
}

// isLoadResource reports whether reading path satisfies the Agent
// Contract's load-before-mutate prerequisite.
func isLoadResource(path string) bool {
	base := path
	if i := strings.IndexAny(base, "?"); i >= 0 {
		base = base[:i]
	}
	return base == "current" || base == "current/brief" || base == "current/detailed" || base == "summary"
}

func resultMessage(id string, result interface{}) Message {
	data, err := json.Marshal(result)
	if err != nil {
		return errorMessage(id, genomeerrors.InternalError("encode result: "+err.Error()))
	}
	return Message{ID: id, Kind: KindResponse, Payload: data}
}

func errorMessage(id string, err error) Message {
	payload := map[string]interface{}{
		"message": err.Error(),
	}
	if ge, ok := err.(*genomeerrors.Error); ok {
		payload["code"] = ge.Code
		payload["hint"] = ge.Hint
		payload["type"] = ge.Type
	}
	data, _ := json.Marshal(payload)
	return Message{ID: id, Kind: KindError, Payload: data}
}
