package exportfmt

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"

	"github.com/genomectl/repogenome/internal/genome"
)

var validLabel = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// cypherLabel maps a NodeType to a safe Cypher node label, rejecting
// anything that doesn't look like an identifier (closed NodeType set
// guarantees this never fires for real data).
func cypherLabel(t genome.NodeType) string {
	label := "Genome_" + string(t)
	if !validLabel.MatchString(label) {
		return "Genome_Unknown"
	}
	return label
}

func cypherEdgeLabel(t genome.EdgeType) string {
	label := string(t)
	if !validLabel.MatchString(label) {
		return "RELATED"
	}
	return label
}

// Cypher renders g as a standalone Cypher import script: one MERGE per
// node, one MERGE per edge, matched by an `id` property. Grounded on
// the teacher's CypherBuilder MERGE-statement shape; since this is a
// static export rather than a live driver call, literal values are
// inlined via strconv.Quote instead of query parameters.
func Cypher(g *genome.Genome) ([]byte, error) {
	var buf bytes.Buffer
	for _, id := range sortedNodeIDs(g) {
		n := g.Nodes[id]
		fmt.Fprintf(&buf, "MERGE (n:%s {id: %s}) SET n.file = %s, n.criticality = %s;\n",
			cypherLabel(n.Type),
			strconv.Quote(string(id)),
			strconv.Quote(n.File),
			strconv.FormatFloat(n.Criticality, 'f', 4, 64),
		)
	}
	for _, e := range sortedEdges(g) {
		fmt.Fprintf(&buf, "MATCH (a {id: %s}) MATCH (b {id: %s}) MERGE (a)-[:%s]->(b);\n",
			strconv.Quote(string(e.From)),
			strconv.Quote(string(e.To)),
			cypherEdgeLabel(e.Type),
		)
	}
	return buf.Bytes(), nil
}
