package analysis

import (
	"fmt"
	"strings"

	"github.com/decisionml/decisionml/model"
)

// ResolveRuleRef resolves a (possibly multi-segment) rule reference written
// inside the body of the rule at basePath/bodyDoc. Each leading segment
// must name a document-reference fact in the current document; the last
// segment is the rule name (section 3: "rule path... segments describing
// the chain of document-reference facts traversed"). Returns the resolved
// RulePath (relative to the same initiating document as basePath), the
// document the rule is defined in, and the rule itself.
func ResolveRuleRef(bodyDoc *model.Document, basePath model.RulePath, ref string, docs model.Set) (model.RulePath, *model.Document, *model.Rule, error) {
	parts := strings.Split(ref, ".")
	ruleName := parts[len(parts)-1]
	segs := parts[:len(parts)-1]

	curDoc := bodyDoc
	segments := append([]model.PathSegment{}, basePath.Segments...)
	for _, segName := range segs {
		fact, ok := curDoc.FactByName(segName)
		if !ok {
			return model.RulePath{}, nil, nil, fmt.Errorf("no such fact %q in document %q", segName, curDoc.Name)
		}
		if fact.Value.Kind != model.FactValueDocumentRef {
			return model.RulePath{}, nil, nil, fmt.Errorf("fact %q in document %q is not a document reference", segName, curDoc.Name)
		}
		targetDoc, ok := docs[fact.Value.DocumentRef]
		if !ok {
			return model.RulePath{}, nil, nil, fmt.Errorf("document %q referenced by fact %q does not exist", fact.Value.DocumentRef, segName)
		}
		segments = append(segments, model.PathSegment{FactName: segName, TargetDoc: fact.Value.DocumentRef})
		curDoc = targetDoc
	}

	rule, ok := curDoc.RuleByName(ruleName)
	if !ok {
		return model.RulePath{}, nil, nil, fmt.Errorf("no such rule %q in document %q", ruleName, curDoc.Name)
	}
	return model.RulePath{RuleName: ruleName, Segments: segments}, curDoc, rule, nil
}

// ResolveFactRef resolves a (possibly multi-segment) fact reference the
// same way, terminating on a Fact instead of a Rule (section 4.1.3: "Multi-
// segment references are resolved segment by segment").
func ResolveFactRef(bodyDoc *model.Document, ref string, docs model.Set) (*model.Document, *model.Fact, error) {
	parts := strings.Split(ref, ".")
	factName := parts[len(parts)-1]
	segs := parts[:len(parts)-1]

	curDoc := bodyDoc
	for _, segName := range segs {
		fact, ok := curDoc.FactByName(segName)
		if !ok {
			return nil, nil, fmt.Errorf("no such fact %q in document %q", segName, curDoc.Name)
		}
		if fact.Value.Kind != model.FactValueDocumentRef {
			return nil, nil, fmt.Errorf("fact %q in document %q is not a document reference", segName, curDoc.Name)
		}
		targetDoc, ok := docs[fact.Value.DocumentRef]
		if !ok {
			return nil, nil, fmt.Errorf("document %q referenced by fact %q does not exist", fact.Value.DocumentRef, segName)
		}
		curDoc = targetDoc
	}
	fact, ok := curDoc.FactByName(factName)
	if !ok {
		return nil, nil, fmt.Errorf("no such fact %q in document %q", factName, curDoc.Name)
	}
	return curDoc, fact, nil
}

// DiscoverRulePaths runs the BFS of section 4.2.2: starting from startDoc's
// own rules, follow rule references through document-reference facts,
// recording every visited rule as a RulePath. Returns the set of discovered
// paths in discovery order plus a lookup from path key to (document, rule).
func DiscoverRulePaths(startDoc *model.Document, docs model.Set) ([]model.RulePath, map[string]*model.Document, map[string]*model.Rule, error) {
	type queueItem struct {
		path model.RulePath
		doc  *model.Document
		rule *model.Rule
	}

	var order []model.RulePath
	seen := map[string]bool{}
	docOf := map[string]*model.Document{}
	ruleOf := map[string]*model.Rule{}

	var queue []queueItem
	for i := range startDoc.Rules {
		p := model.RulePath{RuleName: startDoc.Rules[i].Name}
		if !seen[p.Key()] {
			seen[p.Key()] = true
			order = append(order, p)
			docOf[p.Key()] = startDoc
			ruleOf[p.Key()] = &startDoc.Rules[i]
			queue = append(queue, queueItem{path: p, doc: startDoc, rule: &startDoc.Rules[i]})
		}
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		_, refs := ExtractRuleReferences(item.rule)
		for _, ref := range refs {
			p, targetDoc, rule, err := ResolveRuleRef(item.doc, item.path, ref, docs)
			if err != nil {
				return nil, nil, nil, err
			}
			if seen[p.Key()] {
				continue
			}
			seen[p.Key()] = true
			order = append(order, p)
			docOf[p.Key()] = targetDoc
			ruleOf[p.Key()] = rule
			queue = append(queue, queueItem{path: p, doc: targetDoc, rule: rule})
		}
	}

	return order, docOf, ruleOf, nil
}

// BuildRuleGraph builds the rule dependency graph over the discovered paths
// (section 4.1.4, 4.2.2). Edges run from a dependency Q to a dependent P
// (P's body references Q) so that Graph.TopoSort's Kahn's-algorithm order —
// zero-in-degree nodes first — yields a valid evaluation schedule: every
// rule appears after every rule it references.
func BuildRuleGraph(paths []model.RulePath, docOf map[string]*model.Document, ruleOf map[string]*model.Rule, docs model.Set) (*Graph[string], map[string]model.RulePath, error) {
	g := NewGraph[string]()
	keyToPath := make(map[string]model.RulePath, len(paths))
	for _, p := range paths {
		g.AddNode(p.Key())
		keyToPath[p.Key()] = p
	}
	for _, p := range paths {
		doc := docOf[p.Key()]
		rule := ruleOf[p.Key()]
		_, refs := ExtractRuleReferences(rule)
		for _, ref := range refs {
			q, _, _, err := ResolveRuleRef(doc, p, ref, docs)
			if err != nil {
				return nil, nil, err
			}
			g.AddEdge(q.Key(), p.Key())
		}
	}
	return g, keyToPath, nil
}

// TransitiveFacts follows document-reference facts to compute the full set
// of fact names reachable from doc, prefixed as they would appear in the
// fact map (section 4.4, used by engine.GetDocumentFacts for display).
func TransitiveFacts(doc *model.Document, docs model.Set) []string {
	var names []string
	seen := map[string]bool{}
	var walk func(d *model.Document, prefix string, trail map[string]bool)
	walk = func(d *model.Document, prefix string, trail map[string]bool) {
		for _, f := range d.Facts {
			name := prefix + f.Name()
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			if f.Value.Kind == model.FactValueDocumentRef && !trail[f.Value.DocumentRef] {
				if target, ok := docs[f.Value.DocumentRef]; ok {
					trail2 := make(map[string]bool, len(trail)+1)
					for k := range trail {
						trail2[k] = true
					}
					trail2[f.Value.DocumentRef] = true
					walk(target, name+".", trail2)
				}
			}
		}
	}
	walk(doc, "", map[string]bool{doc.Name: true})
	return names
}
