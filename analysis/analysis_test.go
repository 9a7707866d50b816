package analysis

import (
	"testing"

	"github.com/decisionml/decisionml/model"
)

func factRef(path string) *model.Expression {
	return &model.Expression{Kind: model.ExprFactReference, RefPath: path}
}

func ruleRef(path string) *model.Expression {
	return &model.Expression{Kind: model.ExprRuleReference, RefPath: path}
}

func mulExpr(l, r *model.Expression) *model.Expression {
	return &model.Expression{Kind: model.ExprArithmetic, ArithOp: model.Multiply, Left: l, Right: r}
}

func buildBaseWrapperDocs() model.Set {
	base := &model.Document{
		Name: "base",
		Facts: []model.Fact{
			{Tag: model.NewLocalTag("price"), Value: model.LiteralValue(model.NumberFromInt(100))},
		},
		Rules: []model.Rule{
			{Name: "total", Main: mulExpr(factRef("price"), &model.Expression{Kind: model.ExprLiteral, Literal: model.NumberFromInt(1)})},
		},
	}
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
	return docs
}

func TestDiscoverRulePathsAndGraph(t *testing.T) {
	docs := buildBaseWrapperDocs()
	paths, docOf, ruleOf, err := DiscoverRulePaths(docs["wrapper"], docs)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 discovered rule paths, got %d: %v", len(paths), paths)
	}

	g, keyToPath, err := BuildRuleGraph(paths, docOf, ruleOf, docs)
	if err != nil {
		t.Fatal(err)
	}
	order, err := g.TopoSort()
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 {
		t.Fatalf("expected topo order of 2, got %d", len(order))
	}
	// "t" depends on "b.total", so "b.total" must come first.
	firstPath := keyToPath[order[0]]
	if firstPath.RuleName != "total" {
		t.Errorf("expected base.total scheduled first, got %s", firstPath.RuleName)
	}
}

func TestDetectCycle(t *testing.T) {
	g := NewGraph[string]()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")
	if ce := g.DetectCycle(100); ce == nil {
		t.Fatal("expected a cycle to be detected")
	}
}

func TestExtractReferences(t *testing.T) {
	expr := mulExpr(factRef("price"), ruleRef("discount"))
	facts, rules := ExtractReferences(expr)
	if len(facts) != 1 || facts[0] != "price" {
		t.Errorf("facts = %v", facts)
	}
	if len(rules) != 1 || rules[0] != "discount" {
		t.Errorf("rules = %v", rules)
	}
}
