// Package validator implements the five ordered semantic checks of section
// 4.1: duplicates/name-conflicts, document-reference existence, reference-
// kind consistency, acyclic rule dependencies, and type compatibility.
// Grounded on the teacher's single-pass AST walk style (app/lang/eval.go),
// generalized from "evaluate" to "check", and on aretext-aretext's
// pkg/errors-wrapped diagnostics (config/ruleset.go).
package validator

import (
	"fmt"

	"github.com/decisionml/decisionml/analysis"
	"github.com/decisionml/decisionml/errs"
	"github.com/decisionml/decisionml/model"
)

// DefaultMaxDepth bounds both the parser's expression-tree depth (an
// external concern) and the validator's DFS for cycle detection (section
// 5), so a pathological document cannot exhaust the stack.
const DefaultMaxDepth = 100

// Validate runs all five checks in order over docs and returns the same
// set, now safe to freeze into an engine, or the first error found.
func Validate(docs model.Set) (model.Set, error) {
	return ValidateWithDepth(docs, DefaultMaxDepth)
}

func ValidateWithDepth(docs model.Set, maxDepth int) (model.Set, error) {
	for _, doc := range docs {
		doc.Reindex()
		if err := checkDuplicates(doc); err != nil {
			return nil, err
		}
	}
	for _, doc := range docs {
		if err := checkDocumentRefsExist(doc, docs); err != nil {
			return nil, err
		}
	}
	for _, doc := range docs {
		if err := checkReferenceKinds(doc, docs); err != nil {
			return nil, err
		}
	}
	if err := checkAcyclic(docs, maxDepth); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if err := checkTypes(doc, docs); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func checkDuplicates(doc *model.Document) error {
	seenFact := map[string]model.Span{}
	for _, f := range doc.Facts {
		name := f.Name()
		if _, ok := seenFact[name]; ok {
			return errs.New(errs.Semantic, doc.Name, f.Span, "rename one of the facts — fact names must be unique within a document",
				fmt.Sprintf("duplicate fact name %q", name))
		}
		seenFact[name] = f.Span
	}
	seenRule := map[string]model.Span{}
	for _, r := range doc.Rules {
		if _, ok := seenRule[r.Name]; ok {
			return errs.New(errs.Semantic, doc.Name, r.Span, "rename one of the rules — rule names must be unique within a document",
				fmt.Sprintf("duplicate rule name %q", r.Name))
		}
		seenRule[r.Name] = r.Span
		if _, ok := seenFact[r.Name]; ok {
			return errs.New(errs.Semantic, doc.Name, r.Span, "a name cannot be both a fact and a rule",
				fmt.Sprintf("name %q is used as both a fact and a rule", r.Name))
		}
	}
	return nil
}

func checkDocumentRefsExist(doc *model.Document, docs model.Set) error {
	for _, f := range doc.Facts {
		if f.Value.Kind != model.FactValueDocumentRef {
			continue
		}
		if _, ok := docs[f.Value.DocumentRef]; !ok {
			return errs.New(errs.Semantic, doc.Name, f.Span, "declare the referenced document, or fix the typo",
				fmt.Sprintf("fact %q references undefined document %q", f.Name(), f.Value.DocumentRef))
		}
	}
	return nil
}

func checkReferenceKinds(doc *model.Document, docs model.Set) error {
	for ri := range doc.Rules {
		r := &doc.Rules[ri]
		if err := checkExprReferenceKinds(r.Main, doc, docs); err != nil {
			return err
		}
		for _, u := range r.Unless {
			if err := checkExprReferenceKinds(u.Condition, doc, docs); err != nil {
				return err
			}
			if err := checkExprReferenceKinds(u.Result, doc, docs); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkExprReferenceKinds(expr *model.Expression, doc *model.Document, docs model.Set) error {
	if expr == nil {
		return nil
	}
	switch expr.Kind {
	case model.ExprFactReference, model.ExprFactHasAnyValue:
		if _, _, err := analysis.ResolveFactRef(doc, expr.RefPath, docs); err != nil {
			return errs.New(errs.Semantic, doc.Name, expr.Span, "check the fact path for typos or a missing document reference",
				fmt.Sprintf("fact reference %q does not resolve: %v", expr.RefPath, err))
		}
	case model.ExprRuleReference:
		basePath := model.RulePath{}
		if _, _, _, err := analysis.ResolveRuleRef(doc, basePath, expr.RefPath, docs); err != nil {
			return errs.New(errs.Semantic, doc.Name, expr.Span, "check the rule path for typos or a missing document reference",
				fmt.Sprintf("rule reference %q does not resolve: %v", expr.RefPath, err))
		}
	}
	for _, c := range expr.Children() {
		if err := checkExprReferenceKinds(c, doc, docs); err != nil {
			return err
		}
	}
	return nil
}

func checkAcyclic(docs model.Set, maxDepth int) error {
	seenGlobal := map[string]bool{}
	for _, doc := range docs {
		paths, docOf, ruleOf, err := analysis.DiscoverRulePaths(doc, docs)
		if err != nil {
			return errs.New(errs.Semantic, doc.Name, model.Span{}, "", err.Error())
		}
		var fresh []model.RulePath
		for _, p := range paths {
			if !seenGlobal[p.Key()] {
				fresh = append(fresh, p)
			}
		}
		g, keyToPath, err := analysis.BuildRuleGraph(paths, docOf, ruleOf, docs)
		if err != nil {
			return errs.New(errs.Semantic, doc.Name, model.Span{}, "", err.Error())
		}
		if ce := g.DetectCycle(maxDepth); ce != nil {
			var names []string
			for _, k := range ce.Path {
				names = append(names, keyToPath[k].String())
			}
			return errs.New(errs.Semantic, doc.Name, model.Span{}, "break the cycle by removing or restructuring one of these rule references",
				fmt.Sprintf("cyclic rule dependency: %v", names))
		}
		for _, p := range fresh {
			seenGlobal[p.Key()] = true
		}
	}
	return nil
}
