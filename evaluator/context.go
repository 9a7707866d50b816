package evaluator

import (
	"time"

	"github.com/decisionml/decisionml/config"
	"github.com/decisionml/decisionml/errs"
	"github.com/decisionml/decisionml/model"
)

// outcome is the evaluator's internal OperationResult (section 4.2.3):
// exactly one of Value, Veto, or a non-empty Missing is meaningful.
type outcome struct {
	Value   model.Literal
	Veto    *string
	Missing []string
}

func valueOutcome(l model.Literal) outcome { return outcome{Value: l} }
func vetoOutcome(msg *string) outcome      { return outcome{Veto: msg} }
func missingOutcome(refs ...string) outcome {
	return outcome{Missing: append([]string{}, refs...)}
}

func (o outcome) isVeto() bool      { return o.Veto != nil }
func (o outcome) isMissing() bool   { return len(o.Missing) > 0 }
func (o outcome) isResolved() bool  { return !o.isVeto() && !o.isMissing() }

// ruleCache records a rule's outcome and its sub-trace the first time it is
// evaluated, so later references to the same RulePath reuse the result and
// splice the recorded operations instead of re-executing (section 4.2.3).
type ruleCache struct {
	outcome outcome
	trace   *subTrace
}

// evalState carries everything shared across one evaluate() call: the
// shared fact map, the full document set (for resolving rule/fact
// references that cross a document boundary), the per-RulePath cache (which
// also holds each rule's operation log), the resource limits, and a
// deadline derived from EvaluationTimeout.
type evalState struct {
	docs     model.Set
	factMap  map[string]model.Literal
	cache    map[string]*ruleCache
	limits   config.EngineLimits
	deadline time.Time
	hasLimit bool
}

func newEvalState(docs model.Set, factMap map[string]model.Literal, limits config.EngineLimits) *evalState {
	st := &evalState{
		docs:    docs,
		factMap: factMap,
		cache:   map[string]*ruleCache{},
		limits:  limits,
	}
	if limits.EvaluationTimeout > 0 {
		st.deadline = time.Now().Add(limits.EvaluationTimeout)
		st.hasLimit = true
	}
	return st
}

// checkTimeout is polled at the start of every expression evaluation
// (section 5).
func (st *evalState) checkTimeout(docName string, span model.Span) error {
	if st.hasLimit && time.Now().After(st.deadline) {
		return errs.New(errs.ResourceLimit, docName, span, "reduce the rule's complexity or raise EngineLimits.EvaluationTimeout", "evaluation timeout exceeded")
	}
	return nil
}
