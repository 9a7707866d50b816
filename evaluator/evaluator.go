// Package evaluator interprets a document's rules against a fact map,
// producing a traced, audited Response (section 4.2).
package evaluator

import (
	"sort"

	"github.com/decisionml/decisionml/config"
	"github.com/decisionml/decisionml/errs"
	"github.com/decisionml/decisionml/model"
)

// Evaluate runs the full evaluate() pipeline of section 4.2: build the fact
// map, plan a topological schedule over every rule reachable from docName,
// interpret each in order, then filter the results down to requestedRules
// (dependencies still run; only the reported results are trimmed).
func Evaluate(docName string, docs model.Set, overrides map[string]model.Literal, requestedRules []string, limits config.EngineLimits) (*Response, error) {
	doc, ok := docs[docName]
	if !ok {
		return nil, errs.New(errs.Engine, docName, model.Span{}, "", "no such document")
	}

	factMap := buildFactMap(doc, docs, overrides)
	plan, err := planEvaluation(doc, docs)
	if err != nil {
		return nil, err
	}

	st := newEvalState(docs, factMap, limits)
	for _, path := range plan.order {
		body := plan.docOf[path.Key()]
		rule := plan.ruleOf[path.Key()]
		if _, err := st.evalRule(path, body, rule); err != nil {
			return nil, err
		}
	}

	var requested map[string]bool
	if requestedRules != nil {
		requested = make(map[string]bool, len(requestedRules))
		for _, r := range requestedRules {
			requested[r] = true
		}
	}

	var results []RuleResult
	for _, rule := range doc.Rules {
		path := model.RulePath{RuleName: rule.Name}
		if requested != nil && !requested[rule.Name] {
			continue
		}
		cached := st.cache[path.Key()]
		results = append(results, buildRuleResult(rule.Name, cached))
	}

	return &Response{
		DocName:  docName,
		Facts:    buildFactEntries(factMap),
		Results:  results,
		Warnings: nil,
	}, nil
}

func buildRuleResult(ruleName string, cached *ruleCache) RuleResult {
	rr := RuleResult{Rule: ruleName, Operations: cached.trace.records}
	switch {
	case cached.outcome.isVeto():
		rr.VetoMessage = cached.outcome.Veto
	case cached.outcome.isMissing():
		rr.MissingFacts = cached.outcome.Missing
	default:
		v := cached.outcome.Value
		rr.Result = &v
	}
	return rr
}

func buildFactEntries(factMap map[string]model.Literal) []FactEntry {
	names := make([]string, 0, len(factMap))
	for name := range factMap {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]FactEntry, 0, len(names))
	for _, name := range names {
		v := factMap[name]
		entries = append(entries, FactEntry{Name: name, Value: &v})
	}
	return entries
}
