package genome

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Mode selects a Genome serialization mode.
type Mode string

const (
	ModeStandard Mode = "standard"
	ModeCompact  Mode = "compact"
	ModeLite     Mode = "lite"
)

const gzipMagic0, gzipMagic1 = 0x1f, 0x8b

// Marshal encodes g in the given mode, optionally gzip-wrapped.
func Marshal(g *Genome, mode Mode, useGzip bool) ([]byte, error) {
	g.Metadata.Mode = string(mode)
	g.Metadata.Gzip = useGzip

	var payload interface{}
	switch mode {
	case ModeStandard:
		payload = g
	case ModeCompact:
		payload = toCompact(g)
	case ModeLite:
		payload = toLite(g)
	default:
		return nil, fmt.Errorf("genome: unknown mode %q", mode)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("genome: marshal: %w", err)
	}
	if !useGzip {
		return raw, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("genome: gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("genome: gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal auto-detects gzip framing and serialization mode (via the
// metadata.mode tag) and decodes into a Genome. Lite-decoded Genomes
// have only the §3 "lite" fields populated; everything else is zero.
func Unmarshal(data []byte) (*Genome, Mode, error) {
	raw := data
	if len(data) >= 2 && data[0] == gzipMagic0 && data[1] == gzipMagic1 {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("genome: gzip reader: %w", err)
		}
		defer zr.Close()
		decompressed, err := io.ReadAll(zr)
		if err != nil {
			return nil, "", fmt.Errorf("genome: gzip read: %w", err)
		}
		raw = decompressed
	}

	var probe struct {
		Metadata struct {
			Mode string `json:"mode"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, "", fmt.Errorf("genome: probe mode: %w", err)
	}

	mode := Mode(probe.Metadata.Mode)
	if mode == "" {
		mode = ModeStandard
	}

	switch mode {
	case ModeStandard:
		g := &Genome{}
		if err := json.Unmarshal(raw, g); err != nil {
			return nil, "", fmt.Errorf("genome: unmarshal standard: %w", err)
		}
		return g, mode, nil
	case ModeCompact:
		var c compactGenome
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, "", fmt.Errorf("genome: unmarshal compact: %w", err)
		}
		return fromCompact(&c), mode, nil
	case ModeLite:
		var l liteGenome
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, "", fmt.Errorf("genome: unmarshal lite: %w", err)
		}
		return fromLite(&l), mode, nil
	default:
		return nil, "", fmt.Errorf("genome: unknown mode %q", mode)
	}
}

// --- compact mode ---
//
// Field-name table (closed, part of the schema):
//   node:  t=type, f=file, lang=language, v=visibility, s=summary, c=criticality
//   edge:  fr=from, to=to, t=type
//   summary: ep=entry_points, cd=core_domains
//   history: cs=churn_score
//   risk:    rs=risk_score

type compactNode struct {
	ID   NodeId   `json:"id"`
	T    NodeType `json:"t"`
	F    string   `json:"f,omitempty"`
	Lang string   `json:"lang,omitempty"`
	V    string   `json:"v"`
	S    string   `json:"s,omitempty"`
	C    float64  `json:"c"`
}

type compactEdge struct {
	Fr NodeId                 `json:"fr"`
	To NodeId                 `json:"to"`
	T  EdgeType               `json:"t"`
	A  map[string]interface{} `json:"a,omitempty"`
}

type compactSummary struct {
	EP []NodeId `json:"ep"`
	CD []NodeId `json:"cd"`
	HS []NodeId `json:"hotspots,omitempty"`
	DT []NodeId `json:"do_not_touch,omitempty"`
	AS []string `json:"architectural_style,omitempty"`
}

type compactHistory struct {
	CS   float64   `json:"cs"`
	Last string    `json:"last_major_change,omitempty"`
	Note string    `json:"notes,omitempty"`
}

type compactRisk struct {
	RS      float64  `json:"rs"`
	Reasons []string `json:"reasons,omitempty"`
}

type compactGenome struct {
	Metadata  Metadata                   `json:"metadata"`
	Summary   compactSummary             `json:"summary"`
	Nodes     []compactNode              `json:"nodes"`
	Edges     []compactEdge              `json:"edges"`
	Flows     []Flow                     `json:"flows,omitempty"`
	Concepts  []Concept                  `json:"concepts,omitempty"`
	History   map[NodeId]compactHistory  `json:"history,omitempty"`
	Risk      map[NodeId]compactRisk     `json:"risk,omitempty"`
	Contracts map[string]ContractEntry   `json:"contracts,omitempty"`
}

func toCompact(g *Genome) *compactGenome {
	c := &compactGenome{
		Metadata: g.Metadata,
		Summary: compactSummary{
			EP: g.Summary.EntryPoints,
			CD: g.Summary.CoreDomains,
			HS: g.Summary.Hotspots,
			DT: g.Summary.DoNotTouch,
			AS: g.Summary.ArchitecturalStyle,
		},
		Flows:     g.Flows,
		Concepts:  g.Concepts,
		Contracts: g.Contracts,
	}
	for id, n := range g.Nodes {
		c.Nodes = append(c.Nodes, compactNode{
			ID: id, T: n.Type, F: n.File, Lang: n.Language,
			V: string(n.Visibility), S: n.Summary, C: n.Criticality,
		})
	}
	for _, e := range g.Edges {
		c.Edges = append(c.Edges, compactEdge{Fr: e.From, To: e.To, T: e.Type, A: e.Attributes})
	}
	if len(g.History) > 0 {
		c.History = make(map[NodeId]compactHistory, len(g.History))
		for id, h := range g.History {
			c.History[id] = compactHistory{CS: h.ChurnScore, Last: h.LastMajorChange.Format("2006-01-02T15:04:05Z07:00"), Note: h.Notes}
		}
	}
	if len(g.Risk) > 0 {
		c.Risk = make(map[NodeId]compactRisk, len(g.Risk))
		for id, r := range g.Risk {
			c.Risk[id] = compactRisk{RS: r.RiskScore, Reasons: r.Reasons}
		}
	}
	return c
}

func fromCompact(c *compactGenome) *Genome {
	g := New()
	g.Metadata = c.Metadata
	g.Summary = Summary{
		EntryPoints:        c.Summary.EP,
		CoreDomains:        c.Summary.CD,
		Hotspots:           c.Summary.HS,
		DoNotTouch:         c.Summary.DT,
		ArchitecturalStyle: c.Summary.AS,
	}
	g.Flows = c.Flows
	g.Concepts = c.Concepts
	g.Contracts = c.Contracts
	if g.Contracts == nil {
		g.Contracts = make(map[string]ContractEntry)
	}
	for _, n := range c.Nodes {
		g.Nodes[n.ID] = &Node{
			ID: n.ID, Type: n.T, File: n.F, Language: n.Lang,
			Visibility: Visibility(n.V), Summary: n.S, Criticality: n.C,
		}
	}
	for _, e := range c.Edges {
		g.Edges = append(g.Edges, Edge{From: e.Fr, To: e.To, Type: e.T, Attributes: e.A})
	}
	for id, h := range c.History {
		entry := HistoryEntry{FileID: id, ChurnScore: h.CS, Notes: h.Note}
		if h.Last != "" {
			if t, err := time.Parse(time.RFC3339, h.Last); err == nil {
				entry.LastMajorChange = t
			}
		}
		g.History[id] = entry
	}
	for id, r := range c.Risk {
		g.Risk[id] = RiskEntry{NodeID: id, RiskScore: r.RS, Reasons: r.Reasons}
	}
	return g
}

// --- lite mode ---
//
// spec.md §3: "lite (only required fields: metadata, summary,
// nodes.{id,type,file}, edges.{from,to,type})".

type liteNode struct {
	ID   NodeId   `json:"id"`
	Type NodeType `json:"type"`
	File string   `json:"file,omitempty"`
}

type liteEdge struct {
	From NodeId   `json:"from"`
	To   NodeId   `json:"to"`
	Type EdgeType `json:"type"`
}

type liteGenome struct {
	Metadata Metadata   `json:"metadata"`
	Summary  Summary    `json:"summary"`
	Nodes    []liteNode `json:"nodes"`
	Edges    []liteEdge `json:"edges"`
}

func toLite(g *Genome) *liteGenome {
	l := &liteGenome{Metadata: g.Metadata, Summary: g.Summary}
	for id, n := range g.Nodes {
		l.Nodes = append(l.Nodes, liteNode{ID: id, Type: n.Type, File: n.File})
	}
	for _, e := range g.Edges {
		l.Edges = append(l.Edges, liteEdge{From: e.From, To: e.To, Type: e.Type})
	}
	return l
}

func fromLite(l *liteGenome) *Genome {
	g := New()
	g.Metadata = l.Metadata
	g.Summary = l.Summary
	for _, n := range l.Nodes {
		g.Nodes[n.ID] = &Node{ID: n.ID, Type: n.Type, File: n.File}
	}
	for _, e := range l.Edges {
		g.Edges = append(g.Edges, Edge{From: e.From, To: e.To, Type: e.Type})
	}
	return g
}
