package evaluator

import "github.com/decisionml/decisionml/model"

// Response is the wire shape of an evaluate() call (section 6).
type Response struct {
	DocName  string       `json:"doc_name"`
	Facts    []FactEntry  `json:"facts"`
	Results  []RuleResult `json:"results"`
	Warnings []string     `json:"warnings"`
}

// FactEntry is one entry of the effective fact map, for display.
type FactEntry struct {
	Name  string        `json:"name"`
	Value *model.Literal `json:"value,omitempty"`
}

// RuleResult is one rule's outcome plus its operation trace (section 6).
type RuleResult struct {
	Rule         string            `json:"rule"`
	Result       *model.Literal    `json:"result,omitempty"`
	VetoMessage  *string           `json:"veto_message,omitempty"`
	Operations   []OperationRecord `json:"operations"`
	MissingFacts []string          `json:"missing_facts,omitempty"`
}
