package validator

import (
	"strings"
	"testing"

	"github.com/decisionml/decisionml/errs"
	"github.com/decisionml/decisionml/model"
)

func lit(l model.Literal) *model.Expression {
	return &model.Expression{Kind: model.ExprLiteral, Literal: l}
}

func factRef(path string) *model.Expression {
	return &model.Expression{Kind: model.ExprFactReference, RefPath: path}
}

func ruleRef(path string) *model.Expression {
	return &model.Expression{Kind: model.ExprRuleReference, RefPath: path}
}

func and(l, r *model.Expression) *model.Expression {
	return &model.Expression{Kind: model.ExprLogicalAnd, Left: l, Right: r}
}

func add(l, r *model.Expression) *model.Expression {
	return &model.Expression{Kind: model.ExprArithmetic, ArithOp: model.Add, Left: l, Right: r}
}

func cmp(op model.CompareOp, l, r *model.Expression) *model.Expression {
	return &model.Expression{Kind: model.ExprComparison, CompareOp: op, Left: l, Right: r}
}

func simpleDoc(name string) *model.Document {
	return &model.Document{
		Name: name,
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("price"), Value: model.LiteralValue(model.NumberFromInt(100))},
		},
		Rules: []model.Rule{
			{Name: "total", Main: add(factRef("price"), lit(model.NumberFromInt(1)))},
		},
	}
}

func TestValidateAcceptsWellFormedDocument(t *testing.T) {
	docs := model.Set{"base": simpleDoc("base")}
	if _, err := Validate(docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsDuplicateFactNames(t *testing.T) {
	doc := &model.Document{
		Name: "d",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("x"), Value: model.LiteralValue(model.NumberFromInt(1))},
			{Tag: model.NewLocalTag("x"), Value: model.LiteralValue(model.NumberFromInt(2))},
		},
	}
	_, err := Validate(model.Set{"d": doc})
	if !errs.Is(err, errs.Semantic) {
		t.Fatalf("expected semantic error, got %v", err)
	}
}

func TestValidateRejectsMissingDocumentRef(t *testing.T) {
	doc := &model.Document{
		Name: "d",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("other"), Value: model.DocumentRefValue("nonexistent")},
		},
	}
	_, err := Validate(model.Set{"d": doc})
	if !errs.Is(err, errs.Semantic) {
		t.Fatalf("expected semantic error, got %v", err)
	}
	if !strings.Contains(err.Error(), "nonexistent") {
		t.Errorf("expected error to name the missing document: %v", err)
	}
}

func TestValidateRejectsDanglingFactReference(t *testing.T) {
	doc := &model.Document{
		Name: "d",
		Rules: []model.Rule{
			{Name: "r", Main: factRef("missing")},
		},
	}
	_, err := Validate(model.Set{"d": doc})
	if !errs.Is(err, errs.Semantic) {
		t.Fatalf("expected semantic error, got %v", err)
	}
}

func TestValidateRejectsRuleCycle(t *testing.T) {
	doc := &model.Document{
		Name: "d",
		Rules: []model.Rule{
			{Name: "a", Main: ruleRef("b")},
			{Name: "b", Main: ruleRef("a")},
		},
	}
	_, err := Validate(model.Set{"d": doc})
	if !errs.Is(err, errs.Semantic) {
		t.Fatalf("expected semantic error, got %v", err)
	}
	if !strings.Contains(err.Error(), "cyclic") {
		t.Errorf("expected cycle in error message: %v", err)
	}
}

func TestValidateRejectsArithmeticOnBoolean(t *testing.T) {
	doc := &model.Document{
		Name: "d",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("flag"), Value: model.LiteralValue(model.Boolean(true))},
		},
		Rules: []model.Rule{
			{Name: "r", Main: add(factRef("flag"), lit(model.NumberFromInt(1)))},
		},
	}
	_, err := Validate(model.Set{"d": doc})
	if !errs.Is(err, errs.Semantic) {
		t.Fatalf("expected semantic error, got %v", err)
	}
}

func TestValidateRejectsLogicalAndOnNumbers(t *testing.T) {
	doc := &model.Document{
		Name: "d",
		Rules: []model.Rule{
			{Name: "r", Main: and(lit(model.NumberFromInt(1)), lit(model.NumberFromInt(2)))},
		},
	}
	_, err := Validate(model.Set{"d": doc})
	if !errs.Is(err, errs.Semantic) {
		t.Fatalf("expected semantic error, got %v", err)
	}
}

func TestValidateRejectsNonBooleanUnlessCondition(t *testing.T) {
	doc := &model.Document{
		Name: "d",
		Rules: []model.Rule{
			{
				Name: "r",
				Main: lit(model.NumberFromInt(1)),
				Unless: []model.UnlessClause{
					{Condition: lit(model.NumberFromInt(5)), Result: lit(model.NumberFromInt(2))},
				},
			},
		},
	}
	_, err := Validate(model.Set{"d": doc})
	if !errs.Is(err, errs.Semantic) {
		t.Fatalf("expected semantic error, got %v", err)
	}
}

func TestValidateRejectsIncompatibleBranchTypes(t *testing.T) {
	doc := &model.Document{
		Name: "d",
		Rules: []model.Rule{
			{
				Name: "r",
				Main: lit(model.NumberFromInt(1)),
				Unless: []model.UnlessClause{
					{Condition: lit(model.Boolean(true)), Result: lit(model.Text("not a number"))},
				},
			},
		},
	}
	_, err := Validate(model.Set{"d": doc})
	if !errs.Is(err, errs.Semantic) {
		t.Fatalf("expected semantic error, got %v", err)
	}
}

func TestValidateAllowsVetoBranch(t *testing.T) {
	doc := &model.Document{
		Name: "d",
		Rules: []model.Rule{
			{
				Name: "r",
				Main: lit(model.NumberFromInt(1)),
				Unless: []model.UnlessClause{
					{Condition: lit(model.Boolean(true)), Result: &model.Expression{Kind: model.ExprVeto}},
				},
			},
		},
	}
	if _, err := Validate(model.Set{"d": doc}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsUnitCategoryMismatchLiterals(t *testing.T) {
	kg := model.MustLookupUnit("kg")
	liter := model.MustLookupUnit("L")
	doc := &model.Document{
		Name: "d",
		Rules: []model.Rule{
			{Name: "r", Main: add(lit(model.UnitValue(model.NumberFromInt(1).Number, kg)), lit(model.UnitValue(model.NumberFromInt(1).Number, liter)))},
		},
	}
	_, err := Validate(model.Set{"d": doc})
	if !errs.Is(err, errs.Semantic) {
		t.Fatalf("expected semantic error, got %v", err)
	}
}

func TestValidateRejectsCurrencyMismatchLiterals(t *testing.T) {
	usd := model.MustLookupUnit("USD")
	eur := model.MustLookupUnit("EUR")
	doc := &model.Document{
		Name: "d",
		Rules: []model.Rule{
			{Name: "r", Main: cmp(model.Eq, lit(model.UnitValue(model.NumberFromInt(10).Number, usd)), lit(model.UnitValue(model.NumberFromInt(10).Number, eur)))},
		},
	}
	_, err := Validate(model.Set{"d": doc})
	if !errs.Is(err, errs.Semantic) {
		t.Fatalf("expected semantic error, got %v", err)
	}
}

func TestValidateResolvesForeignRuleAcrossDocuments(t *testing.T) {
	base := simpleDoc("base")
	wrapper := &model.Document{
		Name: "wrapper",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("b"), Value: model.DocumentRefValue("base")},
		},
		Rules: []model.Rule{
			{Name: "t", Main: ruleRef("b.total")},
		},
	}
	docs := model.Set{"base": base, "wrapper": wrapper}
	if _, err := Validate(docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
