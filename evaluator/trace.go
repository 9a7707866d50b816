package evaluator

import "github.com/decisionml/decisionml/model"

// OperationID identifies one OperationRecord within a single rule's
// operation log. IDs start at 1 for each rule and are unique only within
// that rule's log.
type OperationID uint64

// RecordKind discriminates OperationRecord's five observable step shapes
// (section 4.2.3).
type RecordKind int

const (
	FactUsed RecordKind = iota
	RuleUsed
	Computation
	UnlessClauseEvaluated
	DefaultValue
)

func (k RecordKind) String() string {
	switch k {
	case FactUsed:
		return "fact_used"
	case RuleUsed:
		return "rule_used"
	case Computation:
		return "computation"
	case UnlessClauseEvaluated:
		return "unless_clause_evaluated"
	case DefaultValue:
		return "default_value"
	default:
		return "unknown"
	}
}

// OperationRecord is one entry in a rule's operation log (section 4.2.3).
// Exactly one payload shape is meaningful per Kind; ParentID is zero for a
// top-level record within its rule, non-zero when spliced underneath a
// RuleUsed record.
type OperationRecord struct {
	ID       OperationID `json:"id"`
	ParentID OperationID `json:"parent_id,omitempty"`
	Depth    int         `json:"depth"`
	Kind     RecordKind  `json:"kind"`

	// FactUsed
	FactRef string `json:"fact_ref,omitempty"`

	// RuleUsed
	RuleRef string `json:"rule_ref,omitempty"`

	// Computation
	CompKind string           `json:"comp_kind,omitempty"`
	Inputs   []model.Literal  `json:"inputs,omitempty"`
	ExprText string           `json:"expr_text,omitempty"`

	// UnlessClauseEvaluated
	Index           int              `json:"index,omitempty"`
	Matched         bool             `json:"matched,omitempty"`
	ConditionExpr   string           `json:"condition_expr,omitempty"`
	ResultExpr      string           `json:"result_expr,omitempty"`
	ResultIfMatched *model.Literal   `json:"result_if_matched,omitempty"`

	// shared by FactUsed, RuleUsed, Computation, DefaultValue
	Value *model.Literal `json:"value,omitempty"`
	Expr  string         `json:"expr,omitempty"`
}

// subTrace accumulates OperationRecords for one rule evaluation using
// locally-scoped IDs (1-based, 0 meaning "no parent / attach to splice
// point"). It is built independently of any other rule's trace so it can be
// cached and later spliced, verbatim, wherever that rule is referenced
// again (section 4.2.3: "previously-recorded operations are spliced in").
type subTrace struct {
	records []OperationRecord
	nextID  OperationID
}

func newSubTrace() *subTrace { return &subTrace{} }

func (s *subTrace) alloc() OperationID {
	s.nextID++
	return s.nextID
}

func (s *subTrace) add(rec OperationRecord) OperationID {
	rec.ID = s.alloc()
	s.records = append(s.records, rec)
	return rec.ID
}

// spliceFrom copies src's records into s, remapping every local ID to a
// fresh local ID in s, reparenting src's roots (ParentID == 0) to parentID,
// and shifting every depth by baseDepth. This is how a cached rule's
// previously-recorded operations are inlined beneath a new RuleUsed record
// without re-executing anything (section 4.2.3).
func (s *subTrace) spliceFrom(src *subTrace, parentID OperationID, baseDepth int) {
	idMap := make(map[OperationID]OperationID, len(src.records))
	for _, rec := range src.records {
		newID := s.alloc()
		idMap[rec.ID] = newID
		copyRec := rec
		copyRec.ID = newID
		if rec.ParentID == 0 {
			copyRec.ParentID = parentID
		} else {
			copyRec.ParentID = idMap[rec.ParentID]
		}
		copyRec.Depth = rec.Depth + baseDepth
		s.records = append(s.records, copyRec)
	}
}
