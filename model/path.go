package model

import "strings"

// PathSegment is one hop of a RulePath: the document-reference fact that was
// followed and the document it led to.
type PathSegment struct {
	FactName  string
	TargetDoc string
}

// RulePath identifies a rule by name plus the chain of document-reference
// facts traversed to reach it (section 3). Two paths with the same rule
// name but different segment chains are distinct identities.
type RulePath struct {
	RuleName string
	Segments []PathSegment
}

// String renders a RulePath as "doc.b.total" style, for diagnostics and
// as a map key alternative (Key is preferred for map keys).
func (p RulePath) String() string {
	var b strings.Builder
	for _, s := range p.Segments {
		b.WriteString(s.FactName)
		b.WriteByte('.')
	}
	b.WriteString(p.RuleName)
	return b.String()
}

// Key returns a value usable as a map key that preserves full identity
// (String() alone could collide if a fact name equalled a rule name).
func (p RulePath) Key() string {
	var b strings.Builder
	for _, s := range p.Segments {
		b.WriteString(s.FactName)
		b.WriteByte('\x00')
		b.WriteString(s.TargetDoc)
		b.WriteByte('\x00')
	}
	b.WriteString(p.RuleName)
	return b.String()
}

// Equal reports structural equality.
func (p RulePath) Equal(other RulePath) bool { return p.Key() == other.Key() }

// Extend returns a new RulePath reached by following factName into
// targetDoc, keeping the same rule name.
func (p RulePath) Extend(factName, targetDoc string) RulePath {
	segs := make([]PathSegment, len(p.Segments)+1)
	copy(segs, p.Segments)
	segs[len(p.Segments)] = PathSegment{FactName: factName, TargetDoc: targetDoc}
	return RulePath{RuleName: p.RuleName, Segments: segs}
}

// FactPrefix is the concatenation of fact names forming the path from the
// initiating document to the body document (section 4.2.3), e.g. "p2.b.".
func (p RulePath) FactPrefix() string {
	if len(p.Segments) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range p.Segments {
		b.WriteString(s.FactName)
		b.WriteByte('.')
	}
	return b.String()
}
