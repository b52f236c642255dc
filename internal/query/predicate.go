// Package query implements the Query & Filter Engine: a structured
// predicate evaluator over a Genome's nodes, paginated projection,
// dependency/path traversal, node comparison, and a result cache.
//
// Grounded on the teacher's internal/cache/manager.go (patrickmn/go-cache
// TTL store, generalized with an LRU+size cap) for the result cache, and
// internal/risk/agents/patterns.go's rule-table style for the
// deterministic natural-language query router.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/genomectl/repogenome/internal/genome"
)

// Op is the closed set of leaf comparison operators.
type Op string

const (
	OpEq      Op = "eq"
	OpRegex   Op = "regex"
	OpIn      Op = "in"
	OpBetween Op = "between"
)

// Predicate is a node over the structured predicate tree: either a Leaf
// or a compound And/Or/Not with unbounded arity.
type Predicate struct {
	// Leaf fields.
	Field string
	Op    Op
	Value interface{}

	// Compound fields. Exactly one of Leaf/And/Or/Not is populated.
	And []Predicate
	Or  []Predicate
	Not *Predicate
}

// Leaf builds a leaf predicate.
func Leaf(field string, op Op, value interface{}) Predicate {
	return Predicate{Field: field, Op: op, Value: value}
}

func And(preds ...Predicate) Predicate { return Predicate{And: preds} }
func Or(preds ...Predicate) Predicate  { return Predicate{Or: preds} }
func Not(p Predicate) Predicate        { return Predicate{Not: &p} }

func (p Predicate) isLeaf() bool {
	return p.And == nil && p.Or == nil && p.Not == nil
}

// Eval matches a node's projected field values against p.
func (p Predicate) Eval(n *genome.Node) (bool, error) {
	switch {
	case p.Not != nil:
		ok, err := p.Not.Eval(n)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case p.And != nil:
		for _, sub := range p.And {
			ok, err := sub.Eval(n)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case p.Or != nil:
		for _, sub := range p.Or {
			ok, err := sub.Eval(n)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return p.evalLeaf(n)
	}
}

func (p Predicate) evalLeaf(n *genome.Node) (bool, error) {
	actual, err := fieldValue(n, p.Field)
	if err != nil {
		return false, err
	}

	switch p.Op {
	case OpEq:
		return fmt.Sprint(actual) == fmt.Sprint(p.Value), nil
	case OpRegex:
		pattern, ok := p.Value.(string)
		if !ok {
			return false, fmt.Errorf("query: regex predicate value must be a string")
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false, fmt.Errorf("query: invalid regex %q: %w", pattern, err)
		}
		return re.MatchString(fmt.Sprint(actual)), nil
	case OpIn:
		values, ok := p.Value.([]interface{})
		if !ok {
			return false, fmt.Errorf("query: in predicate value must be a list")
		}
		actualStr := fmt.Sprint(actual)
		for _, v := range values {
			if fmt.Sprint(v) == actualStr {
				return true, nil
			}
		}
		return false, nil
	case OpBetween:
		bounds, ok := p.Value.([]interface{})
		if !ok || len(bounds) != 2 {
			return false, fmt.Errorf("query: between predicate value must be a 2-element [lo, hi]")
		}
		f, ok := toFloat(actual)
		if !ok {
			return false, fmt.Errorf("query: field %q is not numeric", p.Field)
		}
		lo, okLo := toFloat(bounds[0])
		hi, okHi := toFloat(bounds[1])
		if !okLo || !okHi {
			return false, fmt.Errorf("query: between bounds must be numeric")
		}
		return f >= lo && f <= hi, nil
	default:
		return false, fmt.Errorf("query: unknown operator %q", p.Op)
	}
}

// fieldValue resolves a field name on a node, accepting both the long
// field name and its §6 compact-mode short alias.
func fieldValue(n *genome.Node, field string) (interface{}, error) {
	switch canonicalField(field) {
	case "type":
		return string(n.Type), nil
	case "file":
		return n.File, nil
	case "language":
		return n.Language, nil
	case "visibility":
		return string(n.Visibility), nil
	case "summary":
		return n.Summary, nil
	case "criticality":
		return n.Criticality, nil
	case "id":
		return string(n.ID), nil
	case "entry":
		return n.Entry, nil
	case "virtual":
		return n.Virtual, nil
	default:
		return nil, fmt.Errorf("query: unknown field %q", field)
	}
}

// canonicalField maps a §6 compact short alias to its long field name.
func canonicalField(field string) string {
	switch field {
	case "t":
		return "type"
	case "f":
		return "file"
	case "lang":
		return "language"
	case "v":
		return "visibility"
	case "s":
		return "summary"
	case "c":
		return "criticality"
	default:
		return strings.ToLower(field)
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
