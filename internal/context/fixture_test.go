package context

import "github.com/genomectl/repogenome/internal/genome"

// sampleGenome builds a small repo-shaped graph: an entry-point main
// file that imports a helper module and calls its two functions, one
// of which is also covered by a test file, plus an unrelated file to
// exercise filtering/scoring discrimination.
func sampleGenome() *genome.Genome {
	g := genome.New()
	g.Nodes["main.py"] = &genome.Node{ID: "main.py", Type: genome.NodeFile, File: "main.py", Visibility: genome.VisibilityPublic, Summary: "command line entry point"}
	g.Nodes["main.py#main"] = &genome.Node{ID: "main.py#main", Type: genome.NodeFunction, File: "main.py", Visibility: genome.VisibilityPublic, Criticality: 0.8, Entry: true, Summary: "parses args and runs the payment flow"}
	g.Nodes["payments.py"] = &genome.Node{ID: "payments.py", Type: genome.NodeFile, File: "payments.py", Visibility: genome.VisibilityPublic, Summary: "payment processing helpers"}
	g.Nodes["payments.py#charge"] = &genome.Node{ID: "payments.py#charge", Type: genome.NodeFunction, File: "payments.py", Visibility: genome.VisibilityPublic, Criticality: 0.9, Summary: "charges a customer payment"}
	g.Nodes["payments.py#refund"] = &genome.Node{ID: "payments.py#refund", Type: genome.NodeFunction, File: "payments.py", Visibility: genome.VisibilityPublic, Criticality: 0.6, Summary: "refunds a customer payment"}
	g.Nodes["test_payments.py"] = &genome.Node{ID: "test_payments.py", Type: genome.NodeFile, File: "test_payments.py", Visibility: genome.VisibilityPublic, Summary: "tests for payment helpers"}
	g.Nodes["test_payments.py#test_charge"] = &genome.Node{ID: "test_payments.py#test_charge", Type: genome.NodeFunction, File: "test_payments.py", Visibility: genome.VisibilityPrivate, Criticality: 0.1, Summary: "exercises charge"}
	g.Nodes["unrelated.py"] = &genome.Node{ID: "unrelated.py", Type: genome.NodeFile, File: "unrelated.py", Visibility: genome.VisibilityPublic, Summary: "completely unrelated reporting script"}
	g.Nodes["unrelated.py#report"] = &genome.Node{ID: "unrelated.py#report", Type: genome.NodeFunction, File: "unrelated.py", Visibility: genome.VisibilityPublic, Criticality: 0.1, Summary: "builds a csv report"}

	g.Edges = []genome.Edge{
		{From: "main.py", To: "main.py#main", Type: genome.EdgeDefines},
		{From: "main.py", To: "payments.py", Type: genome.EdgeImports},
		{From: "main.py#main", To: "payments.py#charge", Type: genome.EdgeCalls},
		{From: "payments.py", To: "payments.py#charge", Type: genome.EdgeDefines},
		{From: "payments.py", To: "payments.py#refund", Type: genome.EdgeDefines},
		{From: "test_payments.py", To: "test_payments.py#test_charge", Type: genome.EdgeDefines},
		{From: "test_payments.py#test_charge", To: "payments.py#charge", Type: genome.EdgeTests},
		{From: "unrelated.py", To: "unrelated.py#report", Type: genome.EdgeDefines},
	}

	g.Concepts = []genome.Concept{
		{ID: "concept:payments", Description: "payment charge and refund processing", Nodes: []genome.NodeId{"payments.py#charge", "payments.py#refund"}},
	}
	return g
}
