package query

import "strings"

// keywordRule is one entry in the deterministic keyword-to-predicate
// table, grounded on the teacher's internal/risk/agents/patterns.go
// rule-table style (a flat, ordered list of static matchers — no LLM
// inference).
type keywordRule struct {
	keyword string
	field   string
	op      Op
	value   interface{}
}

var keywordTable = []keywordRule{
	{keyword: "function", field: "type", op: OpEq, value: "function"},
	{keyword: "functions", field: "type", op: OpEq, value: "function"},
	{keyword: "class", field: "type", op: OpEq, value: "class"},
	{keyword: "classes", field: "type", op: OpEq, value: "class"},
	{keyword: "test", field: "type", op: OpEq, value: "test"},
	{keyword: "tests", field: "type", op: OpEq, value: "test"},
	{keyword: "config", field: "type", op: OpEq, value: "config"},
	{keyword: "resource", field: "type", op: OpEq, value: "resource"},
	{keyword: "module", field: "type", op: OpEq, value: "module"},
	{keyword: "public", field: "visibility", op: OpEq, value: "public"},
	{keyword: "internal", field: "visibility", op: OpEq, value: "internal"},
	{keyword: "private", field: "visibility", op: OpEq, value: "private"},
	{keyword: "python", field: "language", op: OpEq, value: "python"},
	{keyword: "go", field: "language", op: OpEq, value: "go"},
	{keyword: "golang", field: "language", op: OpEq, value: "go"},
	{keyword: "javascript", field: "language", op: OpEq, value: "javascript"},
	{keyword: "typescript", field: "language", op: OpEq, value: "typescript"},
}

// Translate routes free text to an And-compound predicate over every
// keyword rule that matches a word in text, plus any file-pattern-like
// tokens (any token containing "/", or containing both "." and "*") turned into a regex
// filter on the file field. Returns ok=false when no rule or pattern
// token was recognized, signaling the caller to fall back to a plain
// type/summary scan or reject the query.
func Translate(text string) (Predicate, bool) {
	words := strings.Fields(strings.ToLower(text))
	var leaves []Predicate
	seenFields := make(map[string]bool)

	for _, w := range words {
		w = strings.Trim(w, ".,!?:;")
		for _, rule := range keywordTable {
			if w != rule.keyword {
				continue
			}
			// A field already pinned by an earlier word takes priority;
			// this keeps conflicting synonyms (e.g. "go" and "python" in
			// the same query) from overriding the first stated intent.
			if seenFields[rule.field] {
				continue
			}
			seenFields[rule.field] = true
			leaves = append(leaves, Leaf(rule.field, rule.op, rule.value))
		}
		if looksLikeFilePattern(w) {
			leaves = append(leaves, Leaf("file", OpRegex, globToRegex(w)))
		}
	}

	if len(leaves) == 0 {
		return Predicate{}, false
	}
	if len(leaves) == 1 {
		return leaves[0], true
	}
	return And(leaves...), true
}

func looksLikeFilePattern(w string) bool {
	return strings.Contains(w, "/") || (strings.Contains(w, ".") && strings.Contains(w, "*"))
}

func globToRegex(pattern string) string {
	var b strings.Builder
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '.':
			b.WriteString(`\.`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
