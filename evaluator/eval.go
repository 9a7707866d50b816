package evaluator

import (
	"github.com/decisionml/decisionml/analysis"
	"github.com/decisionml/decisionml/errs"
	"github.com/decisionml/decisionml/model"
	"github.com/decisionml/decisionml/ops"
)

// evalRule evaluates the rule at path (caching by RulePath identity so a
// later reference reuses the outcome and splices the recorded trace rather
// than re-executing, section 4.2.3).
func (st *evalState) evalRule(path model.RulePath, doc *model.Document, rule *model.Rule) (outcome, error) {
	if c, ok := st.cache[path.Key()]; ok {
		return c.outcome, nil
	}
	trace := newSubTrace()
	out, err := st.evalRuleBody(trace, path, doc, rule)
	if err != nil {
		return outcome{}, err
	}
	st.cache[path.Key()] = &ruleCache{outcome: out, trace: trace}
	return out, nil
}

// evalRuleBody implements last-match-wins unless evaluation (section
// 4.2.3): walk unless clauses in source order, remembering the result
// expression of the last clause whose condition held; fall back to the
// rule's main expression when none matched.
func (st *evalState) evalRuleBody(trace *subTrace, path model.RulePath, doc *model.Document, rule *model.Rule) (outcome, error) {
	if err := st.checkTimeout(doc.Name, rule.Span); err != nil {
		return outcome{}, err
	}

	var chosen *model.Expression
	var matchedIndex = -1
	for i := range rule.Unless {
		u := &rule.Unless[i]
		condOut, err := st.evalExprNode(trace, u.Condition, doc, path)
		if err != nil {
			return outcome{}, err
		}
		if condOut.isVeto() {
			return condOut, nil
		}
		if condOut.isMissing() {
			return condOut, nil
		}
		matched := condOut.Value.Kind == model.KindBoolean && condOut.Value.Boolean
		var resultValue *model.Literal
		if matched {
			chosen = u.Result
			matchedIndex = i
			resOut, err := st.evalExprNode(trace, u.Result, doc, path)
			if err != nil {
				return outcome{}, err
			}
			if resOut.isResolved() {
				resultValue = &resOut.Value
			}
		}
		trace.add(OperationRecord{Kind: UnlessClauseEvaluated, Index: i, Matched: matched, ConditionExpr: u.Condition.SourceText, ResultExpr: u.Result.SourceText, ResultIfMatched: resultValue})
	}

	if matchedIndex == -1 {
		chosen = rule.Main
	}
	out, err := st.evalExprNode(trace, chosen, doc, path)
	if err != nil {
		return outcome{}, err
	}
	if matchedIndex == -1 && out.isResolved() {
		trace.add(OperationRecord{Kind: DefaultValue, Expr: rule.Main.SourceText, Value: &out.Value})
	}
	return out, nil
}

// evalExprNode walks one expression node within the rule at currentPath
// (section 4.2.3). Fact references are qualified by currentPath's fact
// prefix before lookup in the shared fact map.
func (st *evalState) evalExprNode(trace *subTrace, expr *model.Expression, bodyDoc *model.Document, currentPath model.RulePath) (outcome, error) {
	if err := st.checkTimeout(bodyDoc.Name, expr.Span); err != nil {
		return outcome{}, err
	}

	switch expr.Kind {
	case model.ExprLiteral:
		return valueOutcome(expr.Literal), nil

	case model.ExprFactReference:
		qualified := currentPath.FactPrefix() + expr.RefPath
		lit, ok := st.factMap[qualified]
		if !ok {
			return missingOutcome(qualified), nil
		}
		trace.add(OperationRecord{Kind: FactUsed, FactRef: qualified, Value: &lit})
		return valueOutcome(lit), nil

	case model.ExprFactHasAnyValue:
		qualified := currentPath.FactPrefix() + expr.RefPath
		_, ok := st.factMap[qualified]
		b := model.Boolean(ok)
		trace.add(OperationRecord{Kind: FactUsed, FactRef: qualified, Value: &b})
		return valueOutcome(b), nil

	case model.ExprRuleReference:
		return st.evalRuleReference(trace, expr, bodyDoc, currentPath)

	case model.ExprArithmetic:
		l, err := st.evalExprNode(trace, expr.Left, bodyDoc, currentPath)
		if err != nil {
			return outcome{}, err
		}
		r, err := st.evalExprNode(trace, expr.Right, bodyDoc, currentPath)
		if err != nil {
			return outcome{}, err
		}
		if o, stop := combine2(l, r); stop {
			return o, nil
		}
		result, opErr := ops.Arithmetic(expr.ArithOp, l.Value, r.Value)
		if opErr != nil {
			return outcome{}, errs.Wrap(errs.Runtime, bodyDoc.Name, expr.Span, "add an `unless` guard for this case, or check operand types", opErr)
		}
		trace.add(OperationRecord{Kind: Computation, CompKind: expr.ArithOp.String(), Inputs: []model.Literal{l.Value, r.Value}, Value: &result, ExprText: expr.SourceText})
		return valueOutcome(result), nil

	case model.ExprComparison:
		l, err := st.evalExprNode(trace, expr.Left, bodyDoc, currentPath)
		if err != nil {
			return outcome{}, err
		}
		r, err := st.evalExprNode(trace, expr.Right, bodyDoc, currentPath)
		if err != nil {
			return outcome{}, err
		}
		if o, stop := combine2(l, r); stop {
			return o, nil
		}
		result, opErr := ops.Compare(expr.CompareOp, l.Value, r.Value)
		if opErr != nil {
			return outcome{}, errs.Wrap(errs.Runtime, bodyDoc.Name, expr.Span, "check that both operands share a comparable type, category, or currency", opErr)
		}
		b := model.Boolean(result)
		trace.add(OperationRecord{Kind: Computation, CompKind: expr.CompareOp.String(), Inputs: []model.Literal{l.Value, r.Value}, Value: &b, ExprText: expr.SourceText})
		return valueOutcome(b), nil

	case model.ExprLogicalAnd:
		l, err := st.evalExprNode(trace, expr.Left, bodyDoc, currentPath)
		if err != nil {
			return outcome{}, err
		}
		r, err := st.evalExprNode(trace, expr.Right, bodyDoc, currentPath)
		if err != nil {
			return outcome{}, err
		}
		if o, stop := combine2(l, r); stop {
			return o, nil
		}
		result, opErr := ops.LogicalAnd(l.Value, r.Value)
		if opErr != nil {
			return outcome{}, errs.Wrap(errs.Runtime, bodyDoc.Name, expr.Span, "ensure both operands are booleans", opErr)
		}
		return valueOutcome(result), nil

	case model.ExprLogicalOr:
		l, err := st.evalExprNode(trace, expr.Left, bodyDoc, currentPath)
		if err != nil {
			return outcome{}, err
		}
		r, err := st.evalExprNode(trace, expr.Right, bodyDoc, currentPath)
		if err != nil {
			return outcome{}, err
		}
		if o, stop := combine2(l, r); stop {
			return o, nil
		}
		result, opErr := ops.LogicalOr(l.Value, r.Value)
		if opErr != nil {
			return outcome{}, errs.Wrap(errs.Runtime, bodyDoc.Name, expr.Span, "ensure both operands are booleans", opErr)
		}
		return valueOutcome(result), nil

	case model.ExprLogicalNegation:
		o, err := st.evalExprNode(trace, expr.Operand, bodyDoc, currentPath)
		if err != nil {
			return outcome{}, err
		}
		if !o.isResolved() {
			return o, nil
		}
		result, opErr := ops.LogicalNot(o.Value)
		if opErr != nil {
			return outcome{}, errs.Wrap(errs.Runtime, bodyDoc.Name, expr.Span, "ensure the negated operand is a boolean", opErr)
		}
		return valueOutcome(result), nil

	case model.ExprUnitConversion:
		o, err := st.evalExprNode(trace, expr.Operand, bodyDoc, currentPath)
		if err != nil {
			return outcome{}, err
		}
		if !o.isResolved() {
			return o, nil
		}
		result, opErr := ops.ConvertTo(o.Value, expr.Convert)
		if opErr != nil {
			return outcome{}, errs.Wrap(errs.Runtime, bodyDoc.Name, expr.Span, "check that the source and target units share a category, or that currencies match", opErr)
		}
		trace.add(OperationRecord{Kind: Computation, CompKind: "in", Inputs: []model.Literal{o.Value}, Value: &result, ExprText: expr.SourceText})
		return valueOutcome(result), nil

	case model.ExprMath:
		o, err := st.evalExprNode(trace, expr.Operand, bodyDoc, currentPath)
		if err != nil {
			return outcome{}, err
		}
		if !o.isResolved() {
			return o, nil
		}
		result, opErr := ops.Math(expr.MathOp, o.Value)
		if opErr != nil {
			return outcome{}, errs.Wrap(errs.Runtime, bodyDoc.Name, expr.Span, "check the operand is within the function's domain (e.g. sqrt of a non-negative number)", opErr)
		}
		trace.add(OperationRecord{Kind: Computation, CompKind: expr.MathOp.String(), Inputs: []model.Literal{o.Value}, Value: &result, ExprText: expr.SourceText})
		return valueOutcome(result), nil

	case model.ExprVeto:
		return vetoOutcome(expr.VetoMessage), nil

	default:
		return outcome{}, errs.New(errs.Engine, bodyDoc.Name, expr.Span, "", "unknown expression kind during evaluation")
	}
}

func (st *evalState) evalRuleReference(trace *subTrace, expr *model.Expression, bodyDoc *model.Document, currentPath model.RulePath) (outcome, error) {
	path, targetDoc, rule, err := analysis.ResolveRuleRef(bodyDoc, currentPath, expr.RefPath, st.docs)
	if err != nil {
		return outcome{}, errs.Wrap(errs.Engine, bodyDoc.Name, expr.Span, "", err)
	}

	cached, alreadyCached := st.cache[path.Key()]
	out, err := st.evalRule(path, targetDoc, rule)
	if err != nil {
		return outcome{}, err
	}
	var valPtr *model.Literal
	if out.isResolved() {
		valPtr = &out.Value
	}
	ruleUsedID := trace.add(OperationRecord{Kind: RuleUsed, RuleRef: path.String(), Value: valPtr})

	if !alreadyCached {
		cached = st.cache[path.Key()]
	}
	trace.spliceFrom(cached.trace, ruleUsedID, 1)
	return out, nil
}

// combine2 implements veto-propagates-unchanged and missing-fact
// propagation (section 4.2.3): if either operand is a veto, the enclosing
// expression produces that veto unchanged; otherwise missing facts union
// and the enclosing expression is unresolvable too.
func combine2(l, r outcome) (outcome, bool) {
	if l.isVeto() {
		return l, true
	}
	if r.isVeto() {
		return r, true
	}
	var missing []string
	missing = append(missing, l.Missing...)
	missing = append(missing, r.Missing...)
	if len(missing) > 0 {
		return missingOutcome(missing...), true
	}
	return outcome{}, false
}
