package ops

import (
	"fmt"

	"github.com/decisionml/decisionml/model"
)

// LogicalAnd/LogicalOr/LogicalNot require boolean operands (section 4.1,
// 4.2.3). They are thin — validated boolean-ness is a validator concern,
// but the evaluator still checks defensively since overrides and fact
// resolution happen after validation.
func LogicalAnd(a, b model.Literal) (model.Literal, error) {
	if a.Kind != model.KindBoolean || b.Kind != model.KindBoolean {
		return model.Literal{}, fmt.Errorf("logical AND requires booleans, got %s and %s", a.Kind, b.Kind)
	}
	return model.Boolean(a.Boolean && b.Boolean), nil
}

func LogicalOr(a, b model.Literal) (model.Literal, error) {
	if a.Kind != model.KindBoolean || b.Kind != model.KindBoolean {
		return model.Literal{}, fmt.Errorf("logical OR requires booleans, got %s and %s", a.Kind, b.Kind)
	}
	return model.Boolean(a.Boolean || b.Boolean), nil
}

// LogicalNot implements Not/HaveNot/NotHave — surface-form variants that are
// semantically identical (section 3).
func LogicalNot(a model.Literal) (model.Literal, error) {
	if a.Kind != model.KindBoolean {
		return model.Literal{}, fmt.Errorf("logical negation requires a boolean, got %s", a.Kind)
	}
	return model.Boolean(!a.Boolean), nil
}
