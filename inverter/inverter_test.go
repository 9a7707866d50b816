package inverter

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/decisionml/decisionml/model"
)

func lit(l model.Literal) *model.Expression { return litExpr(l) }
func fref(path string) *model.Expression {
	return &model.Expression{Kind: model.ExprFactReference, RefPath: path}
}
func cmpExpr(op model.CompareOp, l, r *model.Expression) *model.Expression {
	return &model.Expression{Kind: model.ExprComparison, CompareOp: op, Left: l, Right: r}
}
func arith(op model.ArithOp, l, r *model.Expression) *model.Expression {
	return &model.Expression{Kind: model.ExprArithmetic, ArithOp: op, Left: l, Right: r}
}

// ratCmp lets go-cmp compare *big.Rat by value instead of by unexported
// field, since Shape trees carry Number literals throughout.
var ratCmp = cmp.Comparer(func(a, b *big.Rat) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
})

var regexCmp = cmpopts.IgnoreFields(model.RegexValue{}, "Compiled")

func TestAlgebraicSolveSingleBranch(t *testing.T) {
	// rule final_price = base_price * 0.85 (base_price: money USD)
	doc := &model.Document{
		Name: "pricing",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("base_price"), Value: model.TypeAnnotationValue(model.KindUnit)},
		},
		Rules: []model.Rule{
			{Name: "final_price", Main: arith(model.Multiply, fref("base_price"), lit(ratLit(85, 100)))},
		},
	}
	doc.Reindex()

	usd := model.MustLookupUnit("USD")
	target := Target{Kind: TargetValue, Op: model.Eq, Value: model.UnitValue(big.NewRat(85, 1), usd)}

	shape, err := Invert(doc, model.Set{"pricing": doc}, "final_price", target, nil)
	require.NoError(t, err)
	require.Len(t, shape.Branches, 1)

	want := cmpExpr(model.Eq, fref("base_price"), lit(model.UnitValue(big.NewRat(100, 1), usd)))
	if diff := cmp.Diff(want, shape.Branches[0].Condition, ratCmp, regexCmp); diff != "" {
		t.Errorf("condition mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"base_price"}, shape.FreeVariables)
}

func TestUnlessShapeUnifiesEqualOutcomes(t *testing.T) {
	// rule bonus = 0% unless rating >= 3.5 then 10% unless rating >= 4.5 then 15%
	doc := &model.Document{
		Name: "hr",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("rating"), Value: model.TypeAnnotationValue(model.KindNumber)},
		},
		Rules: []model.Rule{
			{
				Name: "bonus",
				Main: lit(ratLit(0, 1)),
				Unless: []model.UnlessClause{
					{Condition: cmpExpr(model.Ge, fref("rating"), lit(ratLit(35, 10))), Result: lit(ratLit(10, 1))},
					{Condition: cmpExpr(model.Ge, fref("rating"), lit(ratLit(45, 10))), Result: lit(ratLit(15, 1))},
				},
			},
		},
	}
	doc.Reindex()

	target := Target{Kind: TargetValue, Op: model.Eq, Value: ratLit(15, 1)}
	shape, err := Invert(doc, model.Set{"hr": doc}, "bonus", target, nil)
	require.NoError(t, err)
	require.Len(t, shape.Branches, 1)
	require.Equal(t, []string{"rating"}, shape.FreeVariables)
}

func TestAnyVetoTargetKeepsOnlyVetoBranches(t *testing.T) {
	msg := "ineligible"
	doc := &model.Document{
		Name: "eligibility",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("age"), Value: model.TypeAnnotationValue(model.KindNumber)},
		},
		Rules: []model.Rule{
			{
				Name: "status",
				Main: &model.Expression{Kind: model.ExprVeto, VetoMessage: &msg},
				Unless: []model.UnlessClause{
					{Condition: cmpExpr(model.Ge, fref("age"), lit(ratLit(18, 1))), Result: lit(model.Text("ok"))},
				},
			},
		},
	}
	doc.Reindex()

	target := Target{Kind: TargetVeto}
	shape, err := Invert(doc, model.Set{"eligibility": doc}, "status", target, nil)
	require.NoError(t, err)
	require.Len(t, shape.Branches, 1)
	require.Equal(t, OutcomeVeto, shape.Branches[0].Outcome.Kind)
}

func TestDomainIntersectionNarrowsRange(t *testing.T) {
	a := rangeDomain(inclusive(ratLit(0, 1)), exclusive(ratLit(100, 1)))
	b := rangeDomain(inclusive(ratLit(50, 1)), unbounded())
	got := intersect(a, b)
	require.Equal(t, DomainRange, got.Kind)
	require.Equal(t, Inclusive, got.Min.Kind)
	require.True(t, got.Min.Value.Number.Cmp(big.NewRat(50, 1)) == 0)
	require.Equal(t, Exclusive, got.Max.Kind)
}

func TestDomainNegationIsInvolutive(t *testing.T) {
	r := rangeDomain(inclusive(ratLit(0, 1)), exclusive(ratLit(10, 1)))
	twice := negate(negate(r))
	require.False(t, isEmpty(intersect(twice, r)))
}

func TestDomainContradictionDetected(t *testing.T) {
	// x > 10 AND x < 5 is unsatisfiable.
	cond := andExpr(
		cmpExpr(model.Gt, fref("x"), lit(ratLit(10, 1))),
		cmpExpr(model.Lt, fref("x"), lit(ratLit(5, 1))),
	)
	require.True(t, domainUnsatisfiable(cond))
}

func ratLit(n, d int64) model.Literal { return model.Number(big.NewRat(n, d)) }
