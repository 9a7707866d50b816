// Package inverter runs a rule's expression tree symbolically backwards:
// given a desired outcome, it produces the piecewise set of fact
// conditions that would produce it, without ever searching the value space
// (section 4.3).
package inverter

import "github.com/decisionml/decisionml/model"

// TargetKind discriminates the three target shapes of section 4.3.
type TargetKind int

const (
	// TargetAnyValue keeps every non-veto branch.
	TargetAnyValue TargetKind = iota
	// TargetValue keeps branches that can realise `expr Op Value`.
	TargetValue
	// TargetVeto keeps veto branches, optionally matching VetoMessage.
	TargetVeto
)

// Target is the desired OperationResult of an invert() call (section 4.3).
type Target struct {
	Kind        TargetKind
	Op          model.CompareOp
	Value       model.Literal
	VetoMessage *string // nil means "any veto" when Kind == TargetVeto
}

// OutcomeKind discriminates a branch's realised result.
type OutcomeKind int

const (
	OutcomeValue OutcomeKind = iota
	OutcomeVeto
)

// Outcome is a branch's realised OperationResult, expressed symbolically:
// either a value expression to be evaluated, or an optional veto message.
type Outcome struct {
	Kind       OutcomeKind
	Expr       *model.Expression // meaningful when Kind == OutcomeValue
	VetoMsg    *string           // meaningful when Kind == OutcomeVeto
}

// Branch is one guarded piece of a Shape: the condition under which this
// outcome applies (section 4.3).
type Branch struct {
	Condition *model.Expression
	Outcome   Outcome
}

// Shape is the result of invert(): a set of guarded branches plus the free
// fact references that remain after givens are substituted (section 4.3).
type Shape struct {
	Branches      []Branch
	FreeVariables []string
}
