package inverter

import "github.com/decisionml/decisionml/model"

func litExpr(l model.Literal) *model.Expression {
	return &model.Expression{Kind: model.ExprLiteral, Literal: l}
}

func boolExpr(b bool) *model.Expression { return litExpr(model.Boolean(b)) }

func isLiteral(e *model.Expression) bool { return e != nil && e.Kind == model.ExprLiteral }

func isBoolLiteral(e *model.Expression, want bool) bool {
	return isLiteral(e) && e.Literal.Kind == model.KindBoolean && e.Literal.Boolean == want
}

func andExpr(l, r *model.Expression) *model.Expression {
	return &model.Expression{Kind: model.ExprLogicalAnd, Left: l, Right: r}
}

func orExpr(l, r *model.Expression) *model.Expression {
	return &model.Expression{Kind: model.ExprLogicalOr, Left: l, Right: r}
}

func notExpr(e *model.Expression) *model.Expression {
	return &model.Expression{Kind: model.ExprLogicalNegation, NegKind: model.Not, Operand: e}
}

// cloneExpr deep-copies an expression tree so branch-local rewrites (givens
// substitution, constant folding) never mutate the rule's own AST, which
// may be shared by other callers (section 4.3.1 step 3).
func cloneExpr(e *model.Expression) *model.Expression {
	if e == nil {
		return nil
	}
	c := *e
	c.Left = cloneExpr(e.Left)
	c.Right = cloneExpr(e.Right)
	c.Operand = cloneExpr(e.Operand)
	return &c
}

// equalExpr reports structural equality, used to group branches by outcome
// (section 4.3.1 step 6) and to deduplicate free variables.
func equalExpr(a, b *model.Expression) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case model.ExprLiteral:
		return equalLiteral(a.Literal, b.Literal)
	case model.ExprFactReference, model.ExprRuleReference, model.ExprFactHasAnyValue:
		return a.RefPath == b.RefPath
	case model.ExprArithmetic:
		return a.ArithOp == b.ArithOp && equalExpr(a.Left, b.Left) && equalExpr(a.Right, b.Right)
	case model.ExprComparison:
		return a.CompareOp == b.CompareOp && equalExpr(a.Left, b.Left) && equalExpr(a.Right, b.Right)
	case model.ExprLogicalAnd, model.ExprLogicalOr:
		return equalExpr(a.Left, b.Left) && equalExpr(a.Right, b.Right)
	case model.ExprLogicalNegation:
		return equalExpr(a.Operand, b.Operand)
	case model.ExprUnitConversion:
		return a.Convert == b.Convert && equalExpr(a.Operand, b.Operand)
	case model.ExprMath:
		return a.MathOp == b.MathOp && equalExpr(a.Operand, b.Operand)
	case model.ExprVeto:
		if (a.VetoMessage == nil) != (b.VetoMessage == nil) {
			return false
		}
		return a.VetoMessage == nil || *a.VetoMessage == *b.VetoMessage
	default:
		return false
	}
}

func equalLiteral(a, b model.Literal) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case model.KindNumber, model.KindPercentage:
		if a.Number == nil || b.Number == nil {
			return a.Number == b.Number
		}
		return a.Number.Cmp(b.Number) == 0
	case model.KindText:
		return a.Text == b.Text
	case model.KindBoolean:
		return a.Boolean == b.Boolean
	case model.KindUnit, model.KindDate, model.KindTime:
		c, ok := cmpLiteral(a, b)
		return ok && c == 0
	case model.KindRegex:
		if a.Regex == nil || b.Regex == nil {
			return a.Regex == b.Regex
		}
		return a.Regex.Pattern == b.Regex.Pattern
	default:
		return false
	}
}

// collectFactRefs walks e, appending every fact reference found (not
// descending into rule references — callers expand those first when they
// want transitive facts, section 4.3.1 step 7).
func collectFactRefs(e *model.Expression, out map[string]bool) {
	if e == nil {
		return
	}
	if e.Kind == model.ExprFactReference || e.Kind == model.ExprFactHasAnyValue {
		out[e.RefPath] = true
	}
	collectFactRefs(e.Left, out)
	collectFactRefs(e.Right, out)
	collectFactRefs(e.Operand, out)
}

// collectRuleRefs walks e, appending every unexpanded rule reference.
func collectRuleRefs(e *model.Expression, out map[string]bool) {
	if e == nil {
		return
	}
	if e.Kind == model.ExprRuleReference {
		out[e.RefPath] = true
	}
	collectRuleRefs(e.Left, out)
	collectRuleRefs(e.Right, out)
	collectRuleRefs(e.Operand, out)
}
