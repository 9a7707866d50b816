package evaluator

import (
	"testing"

	"github.com/decisionml/decisionml/config"
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

func add(l, r *model.Expression) *model.Expression {
	return &model.Expression{Kind: model.ExprArithmetic, ArithOp: model.Add, Left: l, Right: r}
}

func divide(l, r *model.Expression) *model.Expression {
	return &model.Expression{Kind: model.ExprArithmetic, ArithOp: model.Divide, Left: l, Right: r}
}

func cmp(op model.CompareOp, l, r *model.Expression) *model.Expression {
	return &model.Expression{Kind: model.ExprComparison, CompareOp: op, Left: l, Right: r}
}

func veto(msg string) *model.Expression {
	m := msg
	return &model.Expression{Kind: model.ExprVeto, VetoMessage: &m}
}

func unless(cond, res *model.Expression) model.UnlessClause {
	return model.UnlessClause{Condition: cond, Result: res}
}

func TestEvaluateSimpleArithmetic(t *testing.T) {
	doc := &model.Document{
		Name: "base",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("price"), Value: model.LiteralValue(model.NumberFromInt(100))},
		},
		Rules: []model.Rule{
			{Name: "total", Main: add(factRef("price"), lit(model.NumberFromInt(1)))},
		},
	}
	resp, err := Evaluate("base", model.Set{"base": doc}, nil, nil, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected one result, got %d", len(resp.Results))
	}
	r := resp.Results[0]
	if r.Result == nil || r.Result.Number.Cmp(model.NumberFromInt(101).Number) != 0 {
		t.Fatalf("expected total=101, got %+v", r.Result)
	}
}

func TestEvaluateMissingFactPropagates(t *testing.T) {
	doc := &model.Document{
		Name: "d",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("salary"), Value: model.TypeAnnotationValue(model.KindNumber)},
		},
		Rules: []model.Rule{
			{Name: "bonus", Main: add(factRef("salary"), lit(model.NumberFromInt(1)))},
		},
	}
	resp, err := Evaluate("d", model.Set{"d": doc}, nil, nil, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := resp.Results[0]
	if r.Result != nil {
		t.Fatalf("expected no resolved value, got %+v", r.Result)
	}
	if len(r.MissingFacts) != 1 || r.MissingFacts[0] != "salary" {
		t.Fatalf("expected missing fact 'salary', got %+v", r.MissingFacts)
	}
}

func TestEvaluateOverrideSuppliesMissingFact(t *testing.T) {
	doc := &model.Document{
		Name: "d",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("salary"), Value: model.TypeAnnotationValue(model.KindNumber)},
		},
		Rules: []model.Rule{
			{Name: "bonus", Main: add(factRef("salary"), lit(model.NumberFromInt(1)))},
		},
	}
	overrides := map[string]model.Literal{"salary": model.NumberFromInt(50)}
	resp, err := Evaluate("d", model.Set{"d": doc}, overrides, nil, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := resp.Results[0]
	if r.Result == nil || r.Result.Number.Cmp(model.NumberFromInt(51).Number) != 0 {
		t.Fatalf("expected bonus=51, got %+v", r.Result)
	}
}

func TestEvaluateUnlessLastMatchWins(t *testing.T) {
	doc := &model.Document{
		Name: "d",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("tier"), Value: model.LiteralValue(model.NumberFromInt(2))},
		},
		Rules: []model.Rule{
			{
				Name: "discount",
				Main: lit(model.NumberFromInt(0)),
				Unless: []model.UnlessClause{
					unless(cmp(model.Ge, factRef("tier"), lit(model.NumberFromInt(1))), lit(model.NumberFromInt(5))),
					unless(cmp(model.Ge, factRef("tier"), lit(model.NumberFromInt(2))), lit(model.NumberFromInt(10))),
				},
			},
		},
	}
	resp, err := Evaluate("d", model.Set{"d": doc}, nil, nil, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := resp.Results[0]
	if r.Result == nil || r.Result.Number.Cmp(model.NumberFromInt(10).Number) != 0 {
		t.Fatalf("expected discount=10 (last match wins), got %+v", r.Result)
	}
}

func TestEvaluateVetoPropagatesUnchanged(t *testing.T) {
	doc := &model.Document{
		Name: "d",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("age"), Value: model.LiteralValue(model.NumberFromInt(15))},
		},
		Rules: []model.Rule{
			{
				Name: "eligible",
				Main: lit(model.Boolean(true)),
				Unless: []model.UnlessClause{
					unless(cmp(model.Lt, factRef("age"), lit(model.NumberFromInt(18))), veto("too young")),
				},
			},
			{Name: "wrapped", Main: add(ruleRef("eligible"), lit(model.NumberFromInt(1)))},
		},
	}
	resp, err := Evaluate("d", model.Set{"d": doc}, nil, nil, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var eligible, wrapped *RuleResult
	for i := range resp.Results {
		switch resp.Results[i].Rule {
		case "eligible":
			eligible = &resp.Results[i]
		case "wrapped":
			wrapped = &resp.Results[i]
		}
	}
	if eligible.VetoMessage == nil || *eligible.VetoMessage != "too young" {
		t.Fatalf("expected eligible to veto, got %+v", eligible)
	}
	if wrapped.VetoMessage == nil || *wrapped.VetoMessage != "too young" {
		t.Fatalf("expected wrapped to propagate the same veto unchanged, got %+v", wrapped)
	}
}

func TestEvaluateDivideByZeroIsHardError(t *testing.T) {
	doc := &model.Document{
		Name: "d",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("denom"), Value: model.LiteralValue(model.NumberFromInt(0))},
		},
		Rules: []model.Rule{
			{Name: "ratio", Main: divide(lit(model.NumberFromInt(10)), factRef("denom"))},
		},
	}
	_, err := Evaluate("d", model.Set{"d": doc}, nil, nil, config.Default())
	if err == nil {
		t.Fatalf("expected a hard error for division by zero")
	}
}

func TestEvaluateRuleReferenceSplicesTrace(t *testing.T) {
	doc := &model.Document{
		Name: "d",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("price"), Value: model.LiteralValue(model.NumberFromInt(100))},
		},
		Rules: []model.Rule{
			{Name: "total", Main: add(factRef("price"), lit(model.NumberFromInt(1)))},
			{Name: "grand", Main: add(ruleRef("total"), lit(model.NumberFromInt(1)))},
		},
	}
	resp, err := Evaluate("d", model.Set{"d": doc}, nil, nil, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var grand *RuleResult
	for i := range resp.Results {
		if resp.Results[i].Rule == "grand" {
			grand = &resp.Results[i]
		}
	}
	if grand == nil {
		t.Fatalf("expected a 'grand' result")
	}
	if grand.Result == nil || grand.Result.Number.Cmp(model.NumberFromInt(102).Number) != 0 {
		t.Fatalf("expected grand=102, got %+v", grand.Result)
	}
	var sawRuleUsed, sawSplicedComputation bool
	for _, rec := range grand.Operations {
		if rec.Kind == RuleUsed {
			sawRuleUsed = true
		}
		if rec.Kind == Computation && rec.ParentID != 0 {
			sawSplicedComputation = true
		}
	}
	if !sawRuleUsed {
		t.Errorf("expected a RuleUsed record for the reference to 'total'")
	}
	if !sawSplicedComputation {
		t.Errorf("expected total's own computation to be spliced in under the RuleUsed record")
	}
}

func TestEvaluateRequestedRulesFiltersResponseNotScheduling(t *testing.T) {
	doc := &model.Document{
		Name: "d",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("price"), Value: model.LiteralValue(model.NumberFromInt(100))},
		},
		Rules: []model.Rule{
			{Name: "total", Main: add(factRef("price"), lit(model.NumberFromInt(1)))},
			{Name: "grand", Main: add(ruleRef("total"), lit(model.NumberFromInt(1)))},
		},
	}
	resp, err := Evaluate("d", model.Set{"d": doc}, nil, []string{"grand"}, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Rule != "grand" {
		t.Fatalf("expected only 'grand' in filtered results, got %+v", resp.Results)
	}
}

func TestEvaluateDocumentReferenceFactPrefixing(t *testing.T) {
	employee := &model.Document{
		Name: "employee",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("salary"), Value: model.LiteralValue(model.NumberFromInt(1000))},
		},
	}
	payroll := &model.Document{
		Name: "payroll",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("employee"), Value: model.DocumentRefValue("employee")},
		},
		Rules: []model.Rule{
			{Name: "net", Main: add(factRef("employee.salary"), lit(model.NumberFromInt(1)))},
		},
	}
	docs := model.Set{"employee": employee, "payroll": payroll}
	resp, err := Evaluate("payroll", docs, nil, nil, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := resp.Results[0]
	if r.Result == nil || r.Result.Number.Cmp(model.NumberFromInt(1001).Number) != 0 {
		t.Fatalf("expected net=1001, got %+v", r.Result)
	}
	found := false
	for _, f := range resp.Facts {
		if f.Name == "employee.salary" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected fact map to expose 'employee.salary'")
	}
}
