package exportfmt

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/genomectl/repogenome/internal/genome"
)

type graphmlDocument struct {
	XMLName xml.Name     `xml:"graphml"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlGraph struct {
	ID    string         `xml:"id,attr"`
	Edgef string         `xml:"edgedefault,attr"`
	Nodes []graphmlNode  `xml:"node"`
	Edges []graphmlEdge  `xml:"edge"`
}

type graphmlNode struct {
	ID   string          `xml:"id,attr"`
	Data []graphmlDatum  `xml:"data"`
}

type graphmlEdge struct {
	Source string         `xml:"source,attr"`
	Target string         `xml:"target,attr"`
	Data   []graphmlDatum `xml:"data"`
}

type graphmlDatum struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// GraphML renders g as a GraphML XML document, the standard
// interchange format consumed by yEd, Gephi, and similar
// graph-visualization tools.
func GraphML(g *genome.Genome) ([]byte, error) {
	doc := graphmlDocument{
		Graph: graphmlGraph{ID: "genome", Edgef: "directed"},
	}
	for _, id := range sortedNodeIDs(g) {
		n := g.Nodes[id]
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphmlNode{
			ID: string(id),
			Data: []graphmlDatum{
				{Key: "type", Value: string(n.Type)},
				{Key: "file", Value: n.File},
				{Key: "criticality", Value: fmt.Sprintf("%.3f", n.Criticality)},
			},
		})
	}
	for _, e := range sortedEdges(g) {
		doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{
			Source: string(e.From),
			Target: string(e.To),
			Data:   []graphmlDatum{{Key: "type", Value: string(e.Type)}},
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("exportfmt: encode graphml: %w", err)
	}
	return buf.Bytes(), nil
}
