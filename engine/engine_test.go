package engine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/decisionml/decisionml/config"
	"github.com/decisionml/decisionml/inverter"
	"github.com/decisionml/decisionml/model"
)

func lit(l model.Literal) *model.Expression {
	return &model.Expression{Kind: model.ExprLiteral, Literal: l}
}
func fref(path string) *model.Expression {
	return &model.Expression{Kind: model.ExprFactReference, RefPath: path}
}
func mul(l, r *model.Expression) *model.Expression {
	return &model.Expression{Kind: model.ExprArithmetic, ArithOp: model.Multiply, Left: l, Right: r}
}

func pricingDoc() *model.Document {
	return &model.Document{
		Name: "pricing",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("price"), Value: model.LiteralValue(model.NumberFromInt(100))},
			{Tag: model.NewLocalTag("quantity"), Value: model.LiteralValue(model.NumberFromInt(5))},
		},
		Rules: []model.Rule{
			{Name: "total", Main: mul(fref("price"), fref("quantity"))},
		},
	}
}

func TestEngineRegisterAndEvaluate(t *testing.T) {
	e := New(nil, config.Default())
	require.NoError(t, e.Register(pricingDoc()))
	require.Equal(t, []string{"pricing"}, e.List())

	resp, err := e.Evaluate("pricing", nil, nil)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	require.NotNil(t, resp.Results[0].Result)
	require.Zero(t, resp.Results[0].Result.Number.Cmp(big.NewRat(500, 1)))
}

func TestEngineRegisterReplacesExistingDocument(t *testing.T) {
	e := New(nil, config.Default())
	require.NoError(t, e.Register(pricingDoc()))

	replacement := pricingDoc()
	replacement.Facts[0].Value = model.LiteralValue(model.NumberFromInt(200))
	require.NoError(t, e.Register(replacement))

	resp, err := e.Evaluate("pricing", nil, nil)
	require.NoError(t, err)
	require.Zero(t, resp.Results[0].Result.Number.Cmp(big.NewRat(1000, 1)))
}

func TestEngineRemoveUnregistersDocument(t *testing.T) {
	e := New(nil, config.Default())
	require.NoError(t, e.Register(pricingDoc()))
	require.NoError(t, e.Remove("pricing"))
	require.Empty(t, e.List())

	_, err := e.Evaluate("pricing", nil, nil)
	require.Error(t, err)
}

func TestEngineGetDocumentFactsAndRules(t *testing.T) {
	e := New(nil, config.Default())
	require.NoError(t, e.Register(pricingDoc()))

	facts, err := e.GetDocumentFacts("pricing")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"price", "quantity"}, facts)

	rules, err := e.GetDocumentRules("pricing")
	require.NoError(t, err)
	require.Equal(t, []string{"total"}, rules)
}

func TestEngineInvert(t *testing.T) {
	e := New(nil, config.Default())
	require.NoError(t, e.Register(pricingDoc()))

	target := inverter.Target{Kind: inverter.TargetValue, Op: model.Eq, Value: model.NumberFromInt(1000)}
	shape, err := e.Invert("pricing", "total", target, map[string]model.Literal{"price": model.NumberFromInt(100)})
	require.NoError(t, err)
	require.Len(t, shape.Branches, 1)
	require.Equal(t, []string{"quantity"}, shape.FreeVariables)
}

func TestEngineAddWithoutParserFails(t *testing.T) {
	e := New(nil, config.Default())
	_, err := e.Add("doc x {}", "inline")
	require.Error(t, err)
}
