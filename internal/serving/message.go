// Package serving implements the Serving Layer (C10): a stdio-framed
// request/response protocol, stateful across a session, enforcing the
// Agent Contract and serializing writer operations through a single
// writer queue.
//
// Grounded on the teacher's internal/mcp/handler.go method-switch +
// registration-map shape and internal/mcp/stdio_transport.go's
// newline-framed JSON loop, generalized from JSON-RPC's
// {method,params} envelope to spec's {id,kind,name,payload} frame and
// from a flat tool map to the resource/tool split spec.md §6 requires.
package serving

import "encoding/json"

// Kind is the message's role in the framing protocol.
type Kind string

const (
	KindRequest  Kind = "request"
	KindResponse Kind = "response"
	KindError    Kind = "error"
)

// Message is one line of the stdio wire protocol.
//
// Name addresses either a tool (a bare identifier, e.g. "query") or a
// resource (prefixed "resource:", e.g. "resource:current",
// "resource:nodes/a.py#f?fields=summary") — this is how "Resources are
// URI-addressed; tools are named" is realized inside the four named
// wire fields spec.md §6 specifies, since a resource name is itself a
// URI string carrying its own scheme-like prefix.
type Message struct {
	ID      string          `json:"id"`
	Kind    Kind            `json:"kind"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const resourcePrefix = "resource:"
