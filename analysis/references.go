// Package analysis implements the reference-extraction and dependency-graph
// utilities shared by the validator and the evaluator (section 4.4), so the
// two components agree on what a rule reference, a fact reference and a
// graph cycle are. Grounded on the teacher's single-pass tree walk in
// app/lang/eval.go's Eval switch, generalized from "evaluate node" to
// "collect references from node".
package analysis

import "github.com/decisionml/decisionml/model"

// ExtractReferences walks expr once and returns every FactReference and
// RuleReference path it contains, deduplicated by dotted path string.
func ExtractReferences(expr *model.Expression) (facts []string, rules []string) {
	factSeen := map[string]bool{}
	ruleSeen := map[string]bool{}
	var walk func(e *model.Expression)
	walk = func(e *model.Expression) {
		if e == nil {
			return
		}
		switch e.Kind {
		case model.ExprFactReference, model.ExprFactHasAnyValue:
			if !factSeen[e.RefPath] {
				factSeen[e.RefPath] = true
				facts = append(facts, e.RefPath)
			}
		case model.ExprRuleReference:
			if !ruleSeen[e.RefPath] {
				ruleSeen[e.RefPath] = true
				rules = append(rules, e.RefPath)
			}
		}
		for _, c := range e.Children() {
			walk(c)
		}
	}
	walk(expr)
	return facts, rules
}

// ExtractRuleReferences extracts references from a rule's full body: its
// main expression plus every unless clause's condition and result (section
// 4.1.4, 4.2.2 — both the validator's cycle check and the evaluator's
// planner build their graph from this same set of edges).
func ExtractRuleReferences(r *model.Rule) (facts []string, rules []string) {
	factSeen := map[string]bool{}
	ruleSeen := map[string]bool{}
	add := func(fs, rs []string) {
		for _, f := range fs {
			if !factSeen[f] {
				factSeen[f] = true
				facts = append(facts, f)
			}
		}
		for _, rr := range rs {
			if !ruleSeen[rr] {
				ruleSeen[rr] = true
				rules = append(rules, rr)
			}
		}
	}
	add(ExtractReferences(r.Main))
	for _, u := range r.Unless {
		add(ExtractReferences(u.Condition))
		add(ExtractReferences(u.Result))
	}
	return facts, rules
}
