package evaluator

import (
	"github.com/decisionml/decisionml/analysis"
	"github.com/decisionml/decisionml/errs"
	"github.com/decisionml/decisionml/model"
)

// evaluationPlan is the topologically-ordered schedule computed once per
// evaluate() call (section 4.2.2): every RulePath reachable from the
// starting document, in an order where each rule appears after every rule
// it references.
type evaluationPlan struct {
	order []model.RulePath
	docOf map[string]*model.Document
	ruleOf map[string]*model.Rule
}

// planEvaluation discovers every rule reachable from doc and orders them
// topologically over the shared dependency graph, reusing the same
// analysis helpers the validator uses for cycle detection (section 4.2.2).
func planEvaluation(doc *model.Document, docs model.Set) (*evaluationPlan, error) {
	paths, docOf, ruleOf, err := analysis.DiscoverRulePaths(doc, docs)
	if err != nil {
		return nil, errs.Wrap(errs.Engine, doc.Name, model.Span{}, "", err)
	}
	g, keyToPath, err := analysis.BuildRuleGraph(paths, docOf, ruleOf, docs)
	if err != nil {
		return nil, errs.Wrap(errs.Engine, doc.Name, model.Span{}, "", err)
	}
	sortedKeys, err := g.TopoSort()
	if err != nil {
		return nil, errs.Wrap(errs.Engine, doc.Name, model.Span{}, "", err)
	}
	order := make([]model.RulePath, 0, len(sortedKeys))
	for _, k := range sortedKeys {
		order = append(order, keyToPath[k])
	}
	return &evaluationPlan{order: order, docOf: docOf, ruleOf: ruleOf}, nil
}
