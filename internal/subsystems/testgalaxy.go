package subsystems

import (
	"context"
	"path"
	"strings"

	"github.com/genomectl/repogenome/internal/genome"
)

// TestGalaxy derives `tests` edges linking test nodes to the
// production symbols they most plausibly exercise, via naming
// convention and co-location — no coverage instrumentation is
// available at static-analysis time.
//
// Grounded on the teacher's internal/metrics/test_ratio.go
// discoverTestFiles naming-convention table (test_*.py/*_test.py,
// *.test.js/*.spec.js, *_test.go), generalized from "find the test
// file for this source file" into "find the tests edge for this
// symbol", since spec.md's TestGalaxy needs edges, not a ratio.
type TestGalaxy struct {
	disabled bool
}

func NewTestGalaxy(disabled bool) *TestGalaxy { return &TestGalaxy{disabled: disabled} }

func (t *TestGalaxy) Name() string   { return "testgalaxy" }
func (t *TestGalaxy) Disabled() bool { return t.disabled }

func (t *TestGalaxy) Run(ctx context.Context, base *genome.BaseGraph, caps Capabilities) (Output, error) {
	productionByStem := make(map[string][]genome.NodeId)
	for id, n := range base.Nodes {
		if n.Virtual || n.Type == genome.NodeTest || n.File == "" {
			continue
		}
		stem := stemOf(n.File)
		productionByStem[stem] = append(productionByStem[stem], id)
	}

	var edges []genome.Edge
	seen := make(map[genome.EdgeKey]bool)
	for id, n := range base.Nodes {
		if n.Type != genome.NodeTest || n.File == "" {
			continue
		}
		for _, target := range candidateProductionFiles(n.File, productionByStem) {
			e := genome.Edge{From: id, To: target, Type: genome.EdgeTests}
			key := genome.EdgeKey{From: e.From, To: e.To, Type: e.Type}
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, e)
		}
	}

	return Output{TestEdges: edges}, nil
}

// stemOf strips a file's extension and any leading "test_"/trailing
// "_test"/".test"/".spec" marker, so a production file and its test
// counterpart hash to the same stem.
func stemOf(file string) string {
	base := path.Base(file)
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)

	name = strings.TrimPrefix(name, "test_")
	name = strings.TrimSuffix(name, "_test")
	name = strings.TrimSuffix(name, ".test")
	name = strings.TrimSuffix(name, ".spec")

	return path.Join(path.Dir(file), name)
}

// candidateProductionFiles returns every non-test node whose stem
// matches the test file's stem, under the test file's directory or its
// parent (covering the common tests/ and __tests__/ sibling layouts).
func candidateProductionFiles(testFile string, byStem map[string][]genome.NodeId) []genome.NodeId {
	stem := stemOf(testFile)
	var out []genome.NodeId
	out = append(out, byStem[stem]...)

	dir := path.Dir(testFile)
	parent := path.Dir(dir)
	if parent != dir {
		parentStem := path.Join(parent, path.Base(stem))
		out = append(out, byStem[parentStem]...)
	}

	return out
}
