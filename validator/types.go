package validator

import (
	"fmt"

	"github.com/decisionml/decisionml/analysis"
	"github.com/decisionml/decisionml/errs"
	"github.com/decisionml/decisionml/model"
)

// checkTypes runs the static type-compatibility checks of section 4.1.5 over
// every rule in doc: logical operand booleanness, unless-condition
// booleanness, branch-type compatibility (a veto is a bottom type,
// compatible with any branch), and arithmetic/comparison operand shape.
// Facts with no literal value and no type annotation, and rule references
// into documents with ambiguous branches, resolve to KindUnknown and are
// left for the evaluator's runtime checks in the ops package — this pass
// only rejects what is provably wrong before a single fact is supplied.
func checkTypes(doc *model.Document, docs model.Set) error {
	for ri := range doc.Rules {
		r := &doc.Rules[ri]
		if err := checkExprTypes(r.Main, doc, docs); err != nil {
			return err
		}
		var branchKinds []model.Kind
		if r.Main.Kind != model.ExprVeto {
			k, err := inferKind(r.Main, doc, docs)
			if err != nil {
				return err
			}
			branchKinds = append(branchKinds, k)
		}
		for _, u := range r.Unless {
			if err := checkExprTypes(u.Condition, doc, docs); err != nil {
				return err
			}
			ck, err := inferKind(u.Condition, doc, docs)
			if err != nil {
				return err
			}
			if ck != model.KindUnknown && ck != model.KindBoolean {
				return errs.New(errs.Semantic, doc.Name, u.Condition.Span, "an unless condition must evaluate to a boolean",
					fmt.Sprintf("rule %q: unless condition has type %s", r.Name, ck))
			}
			if err := checkExprTypes(u.Result, doc, docs); err != nil {
				return err
			}
			if u.Result.Kind != model.ExprVeto {
				k, err := inferKind(u.Result, doc, docs)
				if err != nil {
					return err
				}
				branchKinds = append(branchKinds, k)
			}
		}
		if err := requireCompatibleBranches(doc, r, branchKinds); err != nil {
			return err
		}
	}
	return nil
}

func requireCompatibleBranches(doc *model.Document, r *model.Rule, kinds []model.Kind) error {
	var settled model.Kind = model.KindUnknown
	for _, k := range kinds {
		if k == model.KindUnknown {
			continue
		}
		if settled == model.KindUnknown {
			settled = k
			continue
		}
		if settled != k {
			return errs.New(errs.Semantic, doc.Name, r.Span, "make every branch of the rule return the same type, or replace the mismatched branch with a veto",
				fmt.Sprintf("rule %q has incompatible branch types: %s and %s", r.Name, settled, k))
		}
	}
	return nil
}

// checkExprTypes walks expr and rejects statically-provable shape errors:
// boolean operators applied to non-booleans, arithmetic applied to kinds
// other than number, percentage, unit, date and time, ordering comparisons
// applied to booleans or text, and the unit-literal mismatches that
// checkUnitLiteralMismatch detects.
func checkExprTypes(expr *model.Expression, doc *model.Document, docs model.Set) error {
	if expr == nil {
		return nil
	}
	for _, c := range expr.Children() {
		if err := checkExprTypes(c, doc, docs); err != nil {
			return err
		}
	}

	switch expr.Kind {
	case model.ExprLogicalAnd, model.ExprLogicalOr:
		for _, side := range []*model.Expression{expr.Left, expr.Right} {
			k, err := inferKind(side, doc, docs)
			if err != nil {
				return err
			}
			if k != model.KindUnknown && k != model.KindBoolean {
				return errs.New(errs.Semantic, doc.Name, expr.Span, "logical operators require boolean operands",
					fmt.Sprintf("expected boolean, got %s", k))
			}
		}
	case model.ExprLogicalNegation:
		k, err := inferKind(expr.Operand, doc, docs)
		if err != nil {
			return err
		}
		if k != model.KindUnknown && k != model.KindBoolean {
			return errs.New(errs.Semantic, doc.Name, expr.Span, "negation requires a boolean operand",
				fmt.Sprintf("expected boolean, got %s", k))
		}
	case model.ExprArithmetic:
		lk, err := inferKind(expr.Left, doc, docs)
		if err != nil {
			return err
		}
		rk, err := inferKind(expr.Right, doc, docs)
		if err != nil {
			return err
		}
		if err := requireNumericKind(doc, expr, lk); err != nil {
			return err
		}
		if err := requireNumericKind(doc, expr, rk); err != nil {
			return err
		}
		if err := checkUnitLiteralMismatch(doc, expr); err != nil {
			return err
		}
	case model.ExprComparison:
		lk, err := inferKind(expr.Left, doc, docs)
		if err != nil {
			return err
		}
		rk, err := inferKind(expr.Right, doc, docs)
		if err != nil {
			return err
		}
		if isOrderingOp(expr.CompareOp) {
			if err := requireOrderableKind(doc, expr, lk); err != nil {
				return err
			}
			if err := requireOrderableKind(doc, expr, rk); err != nil {
				return err
			}
		}
		if err := checkUnitLiteralMismatch(doc, expr); err != nil {
			return err
		}
	case model.ExprMath:
		k, err := inferKind(expr.Operand, doc, docs)
		if err != nil {
			return err
		}
		if k != model.KindUnknown && k != model.KindNumber && k != model.KindPercentage && k != model.KindUnit {
			return errs.New(errs.Semantic, doc.Name, expr.Span, "math functions require a numeric, percentage, or unit operand",
				fmt.Sprintf("expected a numeric type, got %s", k))
		}
	}
	return nil
}

func isOrderingOp(op model.CompareOp) bool {
	switch op {
	case model.Gt, model.Lt, model.Ge, model.Le:
		return true
	default:
		return false
	}
}

func requireNumericKind(doc *model.Document, expr *model.Expression, k model.Kind) error {
	if k == model.KindUnknown || k == model.KindNumber || k == model.KindPercentage || k == model.KindUnit ||
		k == model.KindDate || k == model.KindTime {
		return nil
	}
	return errs.New(errs.Semantic, doc.Name, expr.Span, "arithmetic operators require numeric, percentage, unit, date, or time operands",
		fmt.Sprintf("expected a numeric type, got %s", k))
}

func requireOrderableKind(doc *model.Document, expr *model.Expression, k model.Kind) error {
	switch k {
	case model.KindUnknown, model.KindNumber, model.KindPercentage, model.KindUnit, model.KindDate, model.KindTime:
		return nil
	default:
		return errs.New(errs.Semantic, doc.Name, expr.Span, "ordering comparisons require numeric, date, or time operands",
			fmt.Sprintf("cannot order a %s", k))
	}
}

// checkUnitLiteralMismatch catches the common literal-vs-literal case of a
// unit-category mismatch under + or - (e.g. 5 kg + 3 liters), or a currency
// mismatch under any operator (e.g. 10 USD == 10 EUR), written directly in
// the expression. Other operators across categories pass, as ops computes
// them on the numeric parts. Mismatches reachable only through facts are
// left to the evaluator's ops.Arithmetic/ops.Compare, which carry the full
// runtime value.
func checkUnitLiteralMismatch(doc *model.Document, expr *model.Expression) error {
	left, leftOK := literalUnit(expr.Left)
	right, rightOK := literalUnit(expr.Right)
	if !leftOK || !rightOK {
		return nil
	}
	additive := expr.Kind == model.ExprArithmetic && (expr.ArithOp == model.Add || expr.ArithOp == model.Subtract)
	if left.Category != right.Category && additive {
		return errs.New(errs.Semantic, doc.Name, expr.Span, "convert one side to the other's unit category, or use compatible units",
			fmt.Sprintf("unit category mismatch: %s and %s", left.Category, right.Category))
	}
	if left.Category == model.CategoryMoney && left.Symbol != right.Symbol {
		return errs.New(errs.Semantic, doc.Name, expr.Span, "money values must share a currency; convert explicitly if a rate is available",
			fmt.Sprintf("currency mismatch: %s and %s", left.Symbol, right.Symbol))
	}
	return nil
}

func literalUnit(expr *model.Expression) (*model.UnitDef, bool) {
	if expr == nil || expr.Kind != model.ExprLiteral || expr.Literal.Kind != model.KindUnit {
		return nil, false
	}
	return expr.Literal.Unit, true
}

// inferKind statically infers expr's Kind where possible. It returns
// KindUnknown (never an error) for anything that depends on a fact value not
// fixed at validation time; it returns an error only for already-detected
// shape violations bubbling up from a child (checkExprTypes runs first and
// would normally have caught these, but rule references can reach rules in
// other documents not yet walked by checkExprTypes).
func inferKind(expr *model.Expression, doc *model.Document, docs model.Set) (model.Kind, error) {
	if expr == nil {
		return model.KindUnknown, nil
	}
	switch expr.Kind {
	case model.ExprLiteral:
		return expr.Literal.Kind, nil
	case model.ExprFactReference:
		_, fact, err := analysis.ResolveFactRef(doc, expr.RefPath, docs)
		if err != nil {
			return model.KindUnknown, nil
		}
		switch fact.Value.Kind {
		case model.FactValueLiteral:
			return fact.Value.Literal.Kind, nil
		case model.FactValueTypeAnnotation:
			return fact.Value.AnnotationKind, nil
		default:
			return model.KindUnknown, nil
		}
	case model.ExprFactHasAnyValue:
		return model.KindBoolean, nil
	case model.ExprRuleReference:
		_, targetDoc, rule, err := analysis.ResolveRuleRef(doc, model.RulePath{}, expr.RefPath, docs)
		if err != nil {
			return model.KindUnknown, nil
		}
		return inferRuleKind(rule, targetDoc, docs)
	case model.ExprArithmetic:
		lk, err := inferKind(expr.Left, doc, docs)
		if err != nil {
			return 0, err
		}
		rk, err := inferKind(expr.Right, doc, docs)
		if err != nil {
			return 0, err
		}
		if lk == model.KindUnknown || rk == model.KindUnknown {
			return model.KindUnknown, nil
		}
		if lk == model.KindDate || lk == model.KindTime {
			if rk == lk {
				return model.KindUnit, nil
			}
			return lk, nil
		}
		if rk == model.KindDate || rk == model.KindTime {
			return rk, nil
		}
		if lk == model.KindUnit {
			return model.KindUnit, nil
		}
		if rk == model.KindUnit {
			return model.KindUnit, nil
		}
		if lk == model.KindPercentage && rk == model.KindPercentage {
			return model.KindPercentage, nil
		}
		return model.KindNumber, nil
	case model.ExprComparison:
		return model.KindBoolean, nil
	case model.ExprLogicalAnd, model.ExprLogicalOr:
		return model.KindBoolean, nil
	case model.ExprLogicalNegation:
		return model.KindBoolean, nil
	case model.ExprUnitConversion:
		if expr.Convert.ToPercentage {
			return model.KindPercentage, nil
		}
		return model.KindUnit, nil
	case model.ExprMath:
		ok, err := inferKind(expr.Operand, doc, docs)
		if err != nil {
			return 0, err
		}
		if expr.MathOp.Exact() {
			return ok, nil
		}
		return model.KindNumber, nil
	case model.ExprVeto:
		return model.KindUnknown, nil
	default:
		return model.KindUnknown, nil
	}
}

// inferRuleKind infers a rule's result type by unifying its main expression
// with every unless result, the same rule used by requireCompatibleBranches,
// so a rule reference's inferred type matches what checkTypes would compute
// for that rule directly.
func inferRuleKind(r *model.Rule, doc *model.Document, docs model.Set) (model.Kind, error) {
	settled := model.KindUnknown
	consider := func(e *model.Expression) error {
		if e.Kind == model.ExprVeto {
			return nil
		}
		k, err := inferKind(e, doc, docs)
		if err != nil {
			return err
		}
		if k == model.KindUnknown {
			return nil
		}
		if settled == model.KindUnknown {
			settled = k
		}
		return nil
	}
	if err := consider(r.Main); err != nil {
		return 0, err
	}
	for _, u := range r.Unless {
		if err := consider(u.Result); err != nil {
			return 0, err
		}
	}
	return settled, nil
}
