package inverter

import "github.com/decisionml/decisionml/model"

// solveForUnknown implements section 4.3.2: given `expr = target`, where
// expr contains exactly one occurrence of the fact reference unknown,
// recursively rearrange to isolate it. Returns the rearranged right-hand
// side and true on success; false means "fall back to the symbolic form"
// (unknown appears more than once, on both sides of an operator, or inside
// an unsupported operator).
func solveForUnknown(expr *model.Expression, target *model.Expression, unknown string) (*model.Expression, bool) {
	if expr.Kind == model.ExprFactReference && expr.RefPath == unknown {
		return target, true
	}

	switch expr.Kind {
	case model.ExprArithmetic:
		leftHas := countFactRef(expr.Left, unknown)
		rightHas := countFactRef(expr.Right, unknown)
		if leftHas > 0 && rightHas > 0 {
			return nil, false
		}
		if leftHas == 0 && rightHas == 0 {
			return nil, false
		}
		if leftHas > 1 || rightHas > 1 {
			return nil, false
		}
		if leftHas == 1 {
			// unknown (op) c = target  ->  unknown = target (inverse-op) c
			c := expr.Right
			newTarget, ok := invertLeftOperand(expr.ArithOp, target, c)
			if !ok {
				return nil, false
			}
			return solveForUnknown(expr.Left, newTarget, unknown)
		}
		// c (op) unknown = target
		c := expr.Left
		newTarget, ok := invertRightOperand(expr.ArithOp, target, c)
		if !ok {
			return nil, false
		}
		return solveForUnknown(expr.Right, newTarget, unknown)

	case model.ExprMath:
		switch expr.MathOp {
		case model.Exp:
			// exp(u) = t -> u = log(t)
			return solveForUnknown(expr.Operand, mathExpr(model.Log, target), unknown)
		case model.Log:
			// log(u) = t -> u = exp(t)
			return solveForUnknown(expr.Operand, mathExpr(model.Exp, target), unknown)
		default:
			return nil, false
		}

	default:
		return nil, false
	}
}

func countFactRef(e *model.Expression, name string) int {
	if e == nil {
		return 0
	}
	n := 0
	if e.Kind == model.ExprFactReference && e.RefPath == name {
		n++
	}
	n += countFactRef(e.Left, name)
	n += countFactRef(e.Right, name)
	n += countFactRef(e.Operand, name)
	return n
}

func mathExpr(op model.MathOp, operand *model.Expression) *model.Expression {
	return &model.Expression{Kind: model.ExprMath, MathOp: op, Operand: operand}
}

func arithExpr(op model.ArithOp, l, r *model.Expression) *model.Expression {
	return &model.Expression{Kind: model.ExprArithmetic, ArithOp: op, Left: l, Right: r}
}

// invertLeftOperand solves `unknown op c = target` for `unknown`, given op
// and c (section 4.3.2: "the non-unknown side becomes a constant c, which
// itself may still contain reference terms — the solver works
// structurally, not numerically").
func invertLeftOperand(op model.ArithOp, target, c *model.Expression) (*model.Expression, bool) {
	switch op {
	case model.Add:
		return arithExpr(model.Subtract, target, c), true
	case model.Subtract:
		return arithExpr(model.Add, target, c), true
	case model.Multiply:
		return arithExpr(model.Divide, target, c), true
	case model.Divide:
		return arithExpr(model.Multiply, target, c), true
	case model.Power:
		// u^c = t -> u = t^(1/c)
		one := litExpr(model.NumberFromInt(1))
		inv := arithExpr(model.Divide, one, c)
		return arithExpr(model.Power, target, inv), true
	default:
		return nil, false
	}
}

// invertRightOperand solves `c op unknown = target` for `unknown`.
func invertRightOperand(op model.ArithOp, target, c *model.Expression) (*model.Expression, bool) {
	switch op {
	case model.Add:
		return arithExpr(model.Subtract, target, c), true
	case model.Subtract:
		// c - u = t -> u = c - t
		return arithExpr(model.Subtract, c, target), true
	case model.Multiply:
		return arithExpr(model.Divide, target, c), true
	case model.Divide:
		// c / u = t -> u = c / t
		return arithExpr(model.Divide, c, target), true
	case model.Power:
		// c^u = t -> u = log(t)/log(c)
		return arithExpr(model.Divide, mathExpr(model.Log, target), mathExpr(model.Log, c)), true
	default:
		return nil, false
	}
}

// tryAlgebraicSolve implements section 4.3.1 step 5: for a hydrated
// single-branch rule of the form `value_expr = v` with exactly one free
// fact in value_expr, attempt to isolate the fact and return a single
// `fact == rearranged` branch.
func tryAlgebraicSolve(condEqualsValue *model.Expression) (factName string, rearranged *model.Expression, ok bool) {
	if condEqualsValue.Kind != model.ExprComparison || condEqualsValue.CompareOp != model.Eq {
		return "", nil, false
	}
	facts := map[string]bool{}
	collectFactRefs(condEqualsValue.Left, facts)
	if len(facts) != 1 {
		return "", nil, false
	}
	var only string
	for f := range facts {
		only = f
	}
	if countFactRef(condEqualsValue.Left, only) != 1 {
		return "", nil, false
	}
	rearranged, ok = solveForUnknown(condEqualsValue.Left, condEqualsValue.Right, only)
	if !ok {
		return "", nil, false
	}
	return only, constantFold(rearranged), true
}
