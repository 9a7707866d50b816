// Package errs defines the error taxonomy shared by the validator, evaluator,
// inverter and engine packages.
package errs

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/decisionml/decisionml/model"
)

// Kind distinguishes the error taxonomy of section 7, ordered from
// recoverable to fatal.
type Kind int

const (
	// MissingFact: a rule depended on a type-annotated fact that was not supplied.
	MissingFact Kind = iota
	// MissingDependency: a rule's transitively referenced rule failed.
	MissingDependency
	// Runtime: a typed operation could not be performed.
	Runtime
	// Semantic: a validator check failed.
	Semantic
	// ResourceLimit: depth or timeout exceeded.
	ResourceLimit
	// Engine: internal invariant violation. Fatal.
	Engine
)

func (k Kind) String() string {
	switch k {
	case MissingFact:
		return "missing_fact"
	case MissingDependency:
		return "missing_dependency"
	case Runtime:
		return "runtime"
	case Semantic:
		return "semantic"
	case ResourceLimit:
		return "resource_limit"
	case Engine:
		return "engine"
	default:
		return "unknown"
	}
}

// Error is the single error type produced by the core. Every boundary
// (validator.Validate, evaluator.Evaluate, inverter.Invert, engine.Engine)
// returns this type, or a wrapped *Error, so callers can type-switch once.
type Error struct {
	Kind       Kind
	DocName    string
	Span       model.Span
	Suggestion string
	cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.cause)
	if e.DocName != "" {
		msg = fmt.Sprintf("%s (in %q)", msg, e.DocName)
	}
	if e.Suggestion != "" {
		msg = fmt.Sprintf("%s — suggestion: %s", msg, e.Suggestion)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an *Error wrapping msg as the cause.
func New(kind Kind, docName string, span model.Span, suggestion, msg string) *Error {
	return &Error{Kind: kind, DocName: docName, Span: span, Suggestion: suggestion, cause: errors.New(msg)}
}

// Wrap builds an *Error wrapping an existing cause.
func Wrap(kind Kind, docName string, span model.Span, suggestion string, cause error) *Error {
	return &Error{Kind: kind, DocName: docName, Span: span, Suggestion: suggestion, cause: errors.Wrap(cause, kind.String())}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
