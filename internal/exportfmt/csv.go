package exportfmt

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/genomectl/repogenome/internal/genome"
)

// CSV renders g as two CSV tables concatenated with a blank-line
// separator: nodes (id,type,file,language,visibility,criticality)
// followed by edges (from,to,type).
func CSV(g *genome.Genome) ([]byte, error) {
	var buf bytes.Buffer

	nodeWriter := csv.NewWriter(&buf)
	if err := nodeWriter.Write([]string{"id", "type", "file", "language", "visibility", "criticality"}); err != nil {
		return nil, fmt.Errorf("exportfmt: write node header: %w", err)
	}
	for _, id := range sortedNodeIDs(g) {
		n := g.Nodes[id]
		row := []string{
			string(id), string(n.Type), n.File, n.Language, string(n.Visibility),
			fmt.Sprintf("%.4f", n.Criticality),
		}
		if err := nodeWriter.Write(row); err != nil {
			return nil, fmt.Errorf("exportfmt: write node row %s: %w", id, err)
		}
	}
	nodeWriter.Flush()
	if err := nodeWriter.Error(); err != nil {
		return nil, err
	}

	buf.WriteString("\n")

	edgeWriter := csv.NewWriter(&buf)
	if err := edgeWriter.Write([]string{"from", "to", "type"}); err != nil {
		return nil, fmt.Errorf("exportfmt: write edge header: %w", err)
	}
	for _, e := range sortedEdges(g) {
		if err := edgeWriter.Write([]string{string(e.From), string(e.To), string(e.Type)}); err != nil {
			return nil, fmt.Errorf("exportfmt: write edge row: %w", err)
		}
	}
	edgeWriter.Flush()
	if err := edgeWriter.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
