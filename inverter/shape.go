package inverter

import (
	"github.com/decisionml/decisionml/analysis"
	"github.com/decisionml/decisionml/errs"
	"github.com/decisionml/decisionml/model"
)

// hydratedBranch is a rawBranch after substitution, simple-rule expansion
// and constant folding (section 4.3.1 step 3).
type hydratedBranch struct {
	condition *model.Expression
	isVeto    bool
	vetoMsg   *string
	result    *model.Expression // meaningful when !isVeto
}

func hydrate(raw []rawBranch, doc *model.Document, givens map[string]model.Literal) []hydratedBranch {
	out := make([]hydratedBranch, 0, len(raw))
	for _, b := range raw {
		cond := constantFold(expandSimpleRuleRefs(substitute(b.condition, givens), doc, givens, 0))
		if isBoolLiteral(cond, false) {
			continue // can never fire
		}
		if b.result.Kind == model.ExprVeto {
			out = append(out, hydratedBranch{condition: cond, isVeto: true, vetoMsg: b.result.VetoMessage})
			continue
		}
		result := constantFold(expandSimpleRuleRefs(substitute(b.result, givens), doc, givens, 0))
		out = append(out, hydratedBranch{condition: cond, result: result})
	}
	return out
}

// domainUnsatisfiable proves cond can never hold, when cond is built
// purely out of AND/OR/NOT/comparison nodes over a single fact reference
// (section 4.3.3's contradiction detection). Conditions that mix facts, or
// use unsupported node kinds, are not proven either way (returns false —
// "not proven unsatisfiable", not "satisfiable").
func domainUnsatisfiable(cond *model.Expression) bool {
	facts := map[string]bool{}
	collectFactRefs(cond, facts)
	if len(facts) != 1 {
		return false
	}
	var fact string
	for f := range facts {
		fact = f
	}
	d, ok := buildDomain(cond, fact)
	if !ok {
		return false
	}
	return isEmpty(d)
}

// buildDomain recursively interprets cond as a Domain constraint on fact,
// when every node is a comparison/boolean-combination over that single
// fact (section 4.3.3).
func buildDomain(cond *model.Expression, fact string) (Domain, bool) {
	switch cond.Kind {
	case model.ExprLiteral:
		if cond.Literal.Kind == model.KindBoolean {
			if cond.Literal.Boolean {
				return unconstrainedDomain(), true
			}
			return enumDomain(), true
		}
		return Domain{}, false
	case model.ExprComparison:
		left, right := cond.Left, cond.Right
		if left.Kind == model.ExprFactReference && left.RefPath == fact && right.Kind == model.ExprLiteral {
			return domainFromComparison(cond.CompareOp, right.Literal), true
		}
		if right.Kind == model.ExprFactReference && right.RefPath == fact && left.Kind == model.ExprLiteral {
			return domainFromComparison(flipCompare(cond.CompareOp), left.Literal), true
		}
		return Domain{}, false
	case model.ExprLogicalAnd:
		l, ok := buildDomain(cond.Left, fact)
		if !ok {
			return Domain{}, false
		}
		r, ok := buildDomain(cond.Right, fact)
		if !ok {
			return Domain{}, false
		}
		return intersect(l, r), true
	case model.ExprLogicalOr:
		l, ok := buildDomain(cond.Left, fact)
		if !ok {
			return Domain{}, false
		}
		r, ok := buildDomain(cond.Right, fact)
		if !ok {
			return Domain{}, false
		}
		return union(l, r), true
	case model.ExprLogicalNegation:
		inner, ok := buildDomain(cond.Operand, fact)
		if !ok {
			return Domain{}, false
		}
		return negate(inner), true
	default:
		return Domain{}, false
	}
}

// flipCompare rewrites `v op fact` as `fact flip(op) v` (e.g. `5 < x`
// becomes `x > 5`).
func flipCompare(op model.CompareOp) model.CompareOp {
	switch op {
	case model.Gt:
		return model.Lt
	case model.Lt:
		return model.Gt
	case model.Ge:
		return model.Le
	case model.Le:
		return model.Ge
	default:
		return op
	}
}

// filterByTarget implements section 4.3.1 step 4.
func filterByTarget(branches []hydratedBranch, target Target) []Branch {
	var out []Branch
	for _, b := range branches {
		switch target.Kind {
		case TargetAnyValue:
			if b.isVeto {
				continue
			}
			out = append(out, Branch{Condition: b.condition, Outcome: Outcome{Kind: OutcomeValue, Expr: b.result}})
		case TargetValue:
			if b.isVeto {
				continue
			}
			guard := &model.Expression{Kind: model.ExprComparison, CompareOp: target.Op, Left: b.result, Right: litExpr(target.Value)}
			cond := constantFold(andExpr(b.condition, guard))
			if isBoolLiteral(cond, false) || domainUnsatisfiable(cond) {
				continue
			}
			out = append(out, Branch{Condition: cond, Outcome: Outcome{Kind: OutcomeValue, Expr: b.result}})
		case TargetVeto:
			if !b.isVeto {
				continue
			}
			if target.VetoMessage != nil {
				if b.vetoMsg == nil || *b.vetoMsg != *target.VetoMessage {
					continue
				}
			}
			if isBoolLiteral(b.condition, false) {
				continue
			}
			out = append(out, Branch{Condition: b.condition, Outcome: Outcome{Kind: OutcomeVeto, VetoMsg: b.vetoMsg}})
		}
	}
	return out
}

// unifyByOutcome implements section 4.3.1 step 6: group branches by
// structural outcome equality, OR-ing their conditions together.
func unifyByOutcome(branches []Branch) []Branch {
	var out []Branch
	for _, b := range branches {
		merged := false
		for i := range out {
			if sameOutcome(out[i].Outcome, b.Outcome) {
				out[i].Condition = constantFold(orExpr(out[i].Condition, b.Condition))
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, b)
		}
	}
	return out
}

func sameOutcome(a, b Outcome) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == OutcomeVeto {
		if (a.VetoMsg == nil) != (b.VetoMsg == nil) {
			return false
		}
		return a.VetoMsg == nil || *a.VetoMsg == *b.VetoMsg
	}
	return equalExpr(a.Expr, b.Expr)
}

// freeVariables implements section 4.3.1 step 7: walk every surviving
// branch, collect fact references directly plus the facts of any
// (unexpanded) rule references they contain, transitively, minus givens.
func freeVariables(branches []Branch, doc *model.Document, docs model.Set, givens map[string]model.Literal, basePath model.RulePath) []string {
	facts := map[string]bool{}
	seenRules := map[string]bool{}

	var walkExpr func(e *model.Expression, bodyDoc *model.Document, path model.RulePath)
	walkExpr = func(e *model.Expression, bodyDoc *model.Document, path model.RulePath) {
		if e == nil {
			return
		}
		if e.Kind == model.ExprFactReference || e.Kind == model.ExprFactHasAnyValue {
			facts[e.RefPath] = true
		}
		if e.Kind == model.ExprRuleReference {
			p, targetDoc, rule, err := analysis.ResolveRuleRef(bodyDoc, path, e.RefPath, docs)
			if err == nil && !seenRules[p.Key()] {
				seenRules[p.Key()] = true
				walkExpr(rule.Main, targetDoc, p)
				for _, u := range rule.Unless {
					walkExpr(u.Condition, targetDoc, p)
					walkExpr(u.Result, targetDoc, p)
				}
			}
		}
		walkExpr(e.Left, bodyDoc, path)
		walkExpr(e.Right, bodyDoc, path)
		walkExpr(e.Operand, bodyDoc, path)
	}

	for _, b := range branches {
		walkExpr(b.Condition, doc, basePath)
		if b.Outcome.Kind == OutcomeValue {
			walkExpr(b.Outcome.Expr, doc, basePath)
		}
	}

	var out []string
	for f := range facts {
		if _, given := givens[f]; !given {
			out = append(out, f)
		}
	}
	return out
}

// Invert runs the full invert() pipeline of section 4.3.1 for the named
// rule of doc, reasoning symbolically rather than searching the value
// space.
func Invert(doc *model.Document, docs model.Set, ruleName string, target Target, givens map[string]model.Literal) (*Shape, error) {
	rule, ok := doc.RuleByName(ruleName)
	if !ok {
		return nil, errs.New(errs.Engine, doc.Name, model.Span{}, "", "no such rule "+ruleName)
	}

	raw := collectRawBranches(rule)
	effective := toLastWinsForm(raw)
	hydrated := hydrate(effective, doc, givens)

	// Step 5: single-branch algebraic solving, only when the rule has no
	// unless clauses, the target wants a specific equality, and exactly
	// one branch survives the target filter.
	if len(rule.Unless) == 0 && target.Kind == TargetValue && target.Op == model.Eq {
		filtered := filterByTarget(hydrated, target)
		if len(filtered) == 1 {
			eqExpr := &model.Expression{
				Kind: model.ExprComparison, CompareOp: model.Eq,
				Left: hydrated[0].result, Right: litExpr(target.Value),
			}
			if factName, rearranged, ok := tryAlgebraicSolve(eqExpr); ok {
				branch := Branch{
					Condition: &model.Expression{
						Kind: model.ExprComparison, CompareOp: model.Eq,
						Left:  &model.Expression{Kind: model.ExprFactReference, RefPath: factName},
						Right: rearranged,
					},
					Outcome: Outcome{Kind: OutcomeValue, Expr: litExpr(target.Value)},
				}
				basePath := model.RulePath{RuleName: ruleName}
				return &Shape{
					Branches:      []Branch{branch},
					FreeVariables: freeVariables([]Branch{branch}, doc, docs, givens, basePath),
				}, nil
			}
		}
	}

	filtered := filterByTarget(hydrated, target)
	unified := unifyByOutcome(filtered)

	basePath := model.RulePath{RuleName: ruleName}
	return &Shape{
		Branches:      unified,
		FreeVariables: freeVariables(unified, doc, docs, givens, basePath),
	}, nil
}
