// Package engine owns a validated document set and exposes the two
// services built on top of it — evaluate and invert — plus the registry
// operations of section 6. Concrete textual syntax is out of scope (§1):
// callers either inject a Parser or build model.Document values directly
// and call Register.
package engine

import (
	"sort"
	"sync"

	"github.com/decisionml/decisionml/analysis"
	"github.com/decisionml/decisionml/config"
	"github.com/decisionml/decisionml/errs"
	"github.com/decisionml/decisionml/evaluator"
	"github.com/decisionml/decisionml/inverter"
	"github.com/decisionml/decisionml/model"
	"github.com/decisionml/decisionml/validator"
)

// Parser is the external collaborator that turns source text into
// documents (section 6). The core ships no concrete implementation; the
// command-line front-end, HTTP/JSON-RPC servers and disk traversal that
// build one are out of scope (§1).
type Parser interface {
	Parse(sourceText, sourceID string) ([]*model.Document, error)
}

// Engine owns a validated document set (section 2: "An Engine owns the
// validated set and exposes two services"). A sync.RWMutex serializes
// Register/Remove (writers) against Evaluate/Invert/read accessors
// (readers), matching section 5's "writer operation must be serialised
// against readers".
type Engine struct {
	mu     sync.RWMutex
	docs   model.Set
	parser Parser
	limits config.EngineLimits
}

// New builds an empty Engine. parser may be nil if the caller only ever
// registers documents built programmatically via Register.
func New(parser Parser, limits config.EngineLimits) *Engine {
	return &Engine{docs: model.Set{}, parser: parser, limits: limits}
}

// Add parses sourceText (which may contain multiple doc blocks) and
// registers every document it yields, validating the resulting set as a
// whole so cross-document references resolve (section 6: "Given a source
// text and a source identifier, produces zero or more documents"). Returns
// the names of the documents added.
func (e *Engine) Add(sourceText, sourceID string) ([]string, error) {
	if e.parser == nil {
		return nil, errs.New(errs.Engine, sourceID, model.Span{}, "inject a Parser implementation before calling Add", "engine has no parser configured")
	}
	docs, err := e.parser.Parse(sourceText, sourceID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	merged := e.cloneLocked()
	var names []string
	for _, d := range docs {
		merged[d.Name] = d
		names = append(names, d.Name)
	}
	validated, err := validator.ValidateWithDepth(merged, e.limits.MaxExpressionDepth)
	if err != nil {
		return nil, err
	}
	e.docs = validated
	return names, nil
}

// Register adds or replaces a single programmatically-built document and
// re-validates the whole set, matching the "replace" semantics of the
// Non-goals ("no mutation of documents after registration except by
// explicit replace"). Runs the same validation path as Add.
func (e *Engine) Register(doc *model.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	merged := e.cloneLocked()
	merged[doc.Name] = doc
	validated, err := validator.ValidateWithDepth(merged, e.limits.MaxExpressionDepth)
	if err != nil {
		return err
	}
	e.docs = validated
	return nil
}

// Remove unregisters a document by name. Removing a document that other
// documents still reference is not re-validated eagerly; the dangling
// reference surfaces the next time Add/Register revalidates the set, or as
// an Engine error if Evaluate/Invert reach it.
func (e *Engine) Remove(docName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.docs[docName]; !ok {
		return errs.New(errs.Engine, docName, model.Span{}, "", "no such document")
	}
	delete(e.docs, docName)
	return nil
}

// List returns every registered document name, sorted for deterministic
// output.
func (e *Engine) List() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.docs))
	for name := range e.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetDocumentFacts returns the full set of fact names reachable from
// docName, including through document references, for display (section 4.4).
func (e *Engine) GetDocumentFacts(docName string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	doc, ok := e.docs[docName]
	if !ok {
		return nil, errs.New(errs.Engine, docName, model.Span{}, "", "no such document")
	}
	return analysis.TransitiveFacts(doc, e.docs), nil
}

// GetDocumentRules returns the rule names declared directly on docName
// (not those reachable only through document references — that
// distinction belongs to the evaluator's planner, not display).
func (e *Engine) GetDocumentRules(docName string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	doc, ok := e.docs[docName]
	if !ok {
		return nil, errs.New(errs.Engine, docName, model.Span{}, "", "no such document")
	}
	names := make([]string, len(doc.Rules))
	for i, r := range doc.Rules {
		names[i] = r.Name
	}
	return names, nil
}

// Evaluate drives the Evaluator over a read-shared snapshot of the
// document set (section 6).
func (e *Engine) Evaluate(docName string, overrides map[string]model.Literal, requestedRules []string) (*evaluator.Response, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return evaluator.Evaluate(docName, e.docs, overrides, requestedRules, e.limits)
}

// Invert drives the Inverter over a read-shared snapshot of the document
// set (section 6).
func (e *Engine) Invert(docName, ruleName string, target inverter.Target, givens map[string]model.Literal) (*inverter.Shape, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	doc, ok := e.docs[docName]
	if !ok {
		return nil, errs.New(errs.Engine, docName, model.Span{}, "", "no such document")
	}
	return inverter.Invert(doc, e.docs, ruleName, target, givens)
}

func (e *Engine) cloneLocked() model.Set {
	clone := make(model.Set, len(e.docs))
	for k, v := range e.docs {
		clone[k] = v
	}
	return clone
}
