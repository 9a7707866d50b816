package inverter

import (
	"math/big"

	"github.com/decisionml/decisionml/model"
)

func addRat(a, b *big.Rat) *big.Rat { return new(big.Rat).Add(a, b) }
func subRat(a, b *big.Rat) *big.Rat { return new(big.Rat).Sub(a, b) }
func mulRat(a, b *big.Rat) *big.Rat { return new(big.Rat).Mul(a, b) }
func divRat(a, b *big.Rat) *big.Rat { return new(big.Rat).Quo(a, b) }

// substitute replaces every fact reference found in givens with its literal
// value, returning a fresh tree (section 4.3.1 step 3).
func substitute(e *model.Expression, givens map[string]model.Literal) *model.Expression {
	if e == nil {
		return nil
	}
	if e.Kind == model.ExprFactReference {
		if v, ok := givens[e.RefPath]; ok {
			return litExpr(v)
		}
	}
	c := *e
	c.Left = substitute(e.Left, givens)
	c.Right = substitute(e.Right, givens)
	c.Operand = substitute(e.Operand, givens)
	return &c
}

// expandSimpleRuleRefs inlines a rule reference when the referenced rule is
// "simple": no unless clauses, and its (givens-substituted) body contains no
// remaining unresolved fact or rule reference (section 4.3.1 step 3). Refs
// that don't qualify, or that name a rule this package cannot resolve, are
// left untouched — they become part of the shape's free variables later via
// the rule's own facts (section 4.3.1 step 7).
func expandSimpleRuleRefs(e *model.Expression, doc *model.Document, givens map[string]model.Literal, depth int) *model.Expression {
	if e == nil {
		return nil
	}
	if e.Kind == model.ExprRuleReference && depth < 32 {
		if rule, ok := doc.RuleByName(e.RefPath); ok && len(rule.Unless) == 0 {
			body := substitute(cloneExpr(rule.Main), givens)
			body = expandSimpleRuleRefs(body, doc, givens, depth+1)
			body = constantFold(body)
			if isFullyResolved(body) {
				return body
			}
		}
		return e
	}
	c := *e
	c.Left = expandSimpleRuleRefs(e.Left, doc, givens, depth)
	c.Right = expandSimpleRuleRefs(e.Right, doc, givens, depth)
	c.Operand = expandSimpleRuleRefs(e.Operand, doc, givens, depth)
	return &c
}

func isFullyResolved(e *model.Expression) bool {
	facts := map[string]bool{}
	rules := map[string]bool{}
	collectFactRefs(e, facts)
	collectRuleRefs(e, rules)
	return len(facts) == 0 && len(rules) == 0
}

// constantFold reduces literal sub-expressions and honours boolean
// short-circuit identities even when one side is not itself a literal
// (section 4.3.1 step 3: "false ∧ x = false, true ∧ x = x").
func constantFold(e *model.Expression) *model.Expression {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case model.ExprLiteral, model.ExprFactReference, model.ExprRuleReference, model.ExprFactHasAnyValue, model.ExprVeto:
		return e
	}

	left := constantFold(e.Left)
	right := constantFold(e.Right)
	operand := constantFold(e.Operand)

	switch e.Kind {
	case model.ExprLogicalAnd:
		if isBoolLiteral(left, false) || isBoolLiteral(right, false) {
			return boolExpr(false)
		}
		if isBoolLiteral(left, true) {
			return right
		}
		if isBoolLiteral(right, true) {
			return left
		}
	case model.ExprLogicalOr:
		if isBoolLiteral(left, true) || isBoolLiteral(right, true) {
			return boolExpr(true)
		}
		if isBoolLiteral(left, false) {
			return right
		}
		if isBoolLiteral(right, false) {
			return left
		}
	case model.ExprLogicalNegation:
		if isLiteral(operand) && operand.Literal.Kind == model.KindBoolean {
			return boolExpr(!operand.Literal.Boolean)
		}
		return &model.Expression{Kind: model.ExprLogicalNegation, NegKind: e.NegKind, Operand: operand}
	case model.ExprArithmetic:
		if v, ok := foldArithmetic(e.ArithOp, left, right); ok {
			return v
		}
	case model.ExprComparison:
		if v, ok := foldComparison(e.CompareOp, left, right); ok {
			return v
		}
	}

	c := *e
	c.Left = left
	c.Right = right
	c.Operand = operand
	return &c
}

func foldArithmetic(op model.ArithOp, left, right *model.Expression) (*model.Expression, bool) {
	if !isLiteral(left) || !isLiteral(right) {
		return nil, false
	}
	// A unit magnitude combined with a plain number keeps its unit, as the
	// evaluator's Unit ⊕ Number arithmetic does; Number / Unit is not folded.
	var unit *model.UnitDef
	lk, rk := left.Literal.Kind, right.Literal.Kind
	switch {
	case lk == model.KindNumber && rk == model.KindNumber:
	case lk == model.KindUnit && rk == model.KindNumber:
		unit = left.Literal.Unit
	case lk == model.KindNumber && rk == model.KindUnit && op != model.Divide:
		unit = right.Literal.Unit
	default:
		return nil, false
	}
	a, b := left.Literal.Number, right.Literal.Number
	var r *big.Rat
	switch op {
	case model.Add:
		r = addRat(a, b)
	case model.Subtract:
		r = subRat(a, b)
	case model.Multiply:
		r = mulRat(a, b)
	case model.Divide:
		if b.Sign() == 0 {
			return nil, false
		}
		r = divRat(a, b)
	default:
		return nil, false
	}
	if unit != nil {
		return litExpr(model.UnitValue(r, unit)), true
	}
	return litExpr(model.Number(r)), true
}

func foldComparison(op model.CompareOp, left, right *model.Expression) (*model.Expression, bool) {
	if !isLiteral(left) || !isLiteral(right) {
		return nil, false
	}
	if left.Literal.Kind != model.KindNumber || right.Literal.Kind != model.KindNumber {
		return nil, false
	}
	cmp := left.Literal.Number.Cmp(right.Literal.Number)
	var result bool
	switch op {
	case model.Gt:
		result = cmp > 0
	case model.Lt:
		result = cmp < 0
	case model.Ge:
		result = cmp >= 0
	case model.Le:
		result = cmp <= 0
	case model.Eq:
		result = cmp == 0
	case model.Ne:
		result = cmp != 0
	default:
		return nil, false
	}
	return boolExpr(result), true
}
