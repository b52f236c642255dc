package exportfmt

import (
	"bytes"
	"fmt"

	"github.com/genomectl/repogenome/internal/genome"
)

// PlantUML renders a component listing: one component per file node,
// grouped edges between files (imports/depends_on collapsed to a
// single arrow per file pair) — a coarser, file-level view compared
// to the other projections' full node graph.
func PlantUML(g *genome.Genome) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("@startuml\n")

	for _, id := range sortedNodeIDs(g) {
		n := g.Nodes[id]
		if n.Type != genome.NodeFile {
			continue
		}
		fmt.Fprintf(&buf, "component %q as %s\n", id, plantUMLAlias(id))
	}

	seen := make(map[[2]genome.NodeId]bool)
	for _, e := range sortedEdges(g) {
		if e.Type != genome.EdgeImports && e.Type != genome.EdgeDependsOn {
			continue
		}
		fromFile, ok1 := fileOf(g, e.From)
		toFile, ok2 := fileOf(g, e.To)
		if !ok1 || !ok2 || fromFile == toFile {
			continue
		}
		key := [2]genome.NodeId{fromFile, toFile}
		if seen[key] {
			continue
		}
		seen[key] = true
		fmt.Fprintf(&buf, "%s --> %s\n", plantUMLAlias(fromFile), plantUMLAlias(toFile))
	}

	buf.WriteString("@enduml\n")
	return buf.Bytes(), nil
}

func fileOf(g *genome.Genome, id genome.NodeId) (genome.NodeId, bool) {
	n, ok := g.Nodes[id]
	if !ok {
		return "", false
	}
	if n.Type == genome.NodeFile {
		return id, true
	}
	if n.File == "" {
		return "", false
	}
	return genome.NodeId(n.File), true
}

func plantUMLAlias(id genome.NodeId) string {
	out := make([]byte, 0, len(id)+1)
	out = append(out, 'n')
	for _, r := range []byte(id) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out = append(out, r)
		} else {
			out = append(out, '_')
		}
	}
	return string(out)
}
