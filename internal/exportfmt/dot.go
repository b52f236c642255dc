package exportfmt

import (
	"bytes"
	"fmt"

	"github.com/genomectl/repogenome/internal/genome"
)

// Dot renders g as a Graphviz DOT directed graph, nodes labeled by
// type and edges labeled by relation.
func Dot(g *genome.Genome) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("digraph genome {\n")
	for _, id := range sortedNodeIDs(g) {
		n := g.Nodes[id]
		buf.WriteString(fmt.Sprintf("  %q [label=%q, shape=%s];\n", id, n.Type, dotShape(n.Type)))
	}
	for _, e := range sortedEdges(g) {
		buf.WriteString(fmt.Sprintf("  %q -> %q [label=%q];\n", e.From, e.To, e.Type))
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func dotShape(t genome.NodeType) string {
	switch t {
	case genome.NodeFile:
		return "folder"
	case genome.NodeClass:
		return "box"
	case genome.NodeFunction:
		return "ellipse"
	default:
		return "plaintext"
	}
}
