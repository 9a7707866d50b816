package model

import "strings"

// FactTagKind distinguishes a Local fact (declared directly) from a Foreign
// fact (an override reached through a chain of document-reference facts,
// e.g. "a.b.field" — section 3).
type FactTagKind int

const (
	Local FactTagKind = iota
	Foreign
)

// FactTag names a fact. For Local, Name is the declared name. For Foreign,
// Path holds the dotted segment chain and Name is its joined form, computed
// once at construction (section 4.1.1: "foreign path joined with dots").
type FactTag struct {
	Kind FactTagKind
	Name string
	Path []string // populated only for Foreign
}

// NewLocalTag builds a Local fact tag.
func NewLocalTag(name string) FactTag { return FactTag{Kind: Local, Name: name} }

// NewForeignTag builds a Foreign fact tag from its path segments.
func NewForeignTag(path []string) FactTag {
	return FactTag{Kind: Foreign, Name: strings.Join(path, "."), Path: path}
}

// FactValueKind discriminates what a Fact is bound to.
type FactValueKind int

const (
	FactValueLiteral FactValueKind = iota
	FactValueDocumentRef
	FactValueTypeAnnotation
)

// FactValue is a Fact's value: a literal, a document reference (the name of
// another document), or a type annotation declaring the expected kind
// without a value (section 3).
type FactValue struct {
	Kind           FactValueKind
	Literal        Literal
	DocumentRef    string
	AnnotationKind Kind
}

func LiteralValue(l Literal) FactValue { return FactValue{Kind: FactValueLiteral, Literal: l} }
func DocumentRefValue(docName string) FactValue {
	return FactValue{Kind: FactValueDocumentRef, DocumentRef: docName}
}
func TypeAnnotationValue(k Kind) FactValue {
	return FactValue{Kind: FactValueTypeAnnotation, AnnotationKind: k}
}

// Fact is a named input (section 3).
type Fact struct {
	Tag   FactTag
	Value FactValue
	Span  Span
}

// Name is the fact's computed name: the Local name, or the Foreign path
// joined by dots.
func (f Fact) Name() string { return f.Tag.Name }

// UnlessClause is one conditional override of a rule's value (section 3).
type UnlessClause struct {
	Condition *Expression
	Result    *Expression
	Span      Span
}

// Rule is a name, a main expression, and an ordered sequence of unless
// clauses (section 3).
type Rule struct {
	Name    string
	Main    *Expression
	Unless  []UnlessClause
	Span    Span
}

// Document is a named bundle of facts and rules (section 3).
type Document struct {
	Name      string
	SourceID  string
	StartLine int
	Facts     []Fact
	Rules     []Rule

	factByName map[string]*Fact
	ruleByName map[string]*Rule
}

// index builds (or rebuilds) the name lookup maps. The validator calls this
// once per document after construction; it is otherwise lazily built on
// first lookup so hand-built test documents need not call it explicitly.
func (d *Document) index() {
	d.factByName = make(map[string]*Fact, len(d.Facts))
	for i := range d.Facts {
		d.factByName[d.Facts[i].Name()] = &d.Facts[i]
	}
	d.ruleByName = make(map[string]*Rule, len(d.Rules))
	for i := range d.Rules {
		d.ruleByName[d.Rules[i].Name] = &d.Rules[i]
	}
}

// FactByName looks up a declared fact by its computed name.
func (d *Document) FactByName(name string) (*Fact, bool) {
	if d.factByName == nil {
		d.index()
	}
	f, ok := d.factByName[name]
	return f, ok
}

// RuleByName looks up a declared rule by name.
func (d *Document) RuleByName(name string) (*Rule, bool) {
	if d.ruleByName == nil {
		d.index()
	}
	r, ok := d.ruleByName[name]
	return r, ok
}

// Reindex forces the lookup maps to be rebuilt; call after mutating Facts
// or Rules directly (e.g. while building a document programmatically).
func (d *Document) Reindex() { d.index() }

// Set is an immutable-during-calls collection of documents, keyed by name.
type Set map[string]*Document
