package ops

import (
	"fmt"
	"math/big"

	"github.com/decisionml/decisionml/model"
)

// Compare dispatches a comparison node per section 4.2.3.
func Compare(op model.CompareOp, a, b model.Literal) (bool, error) {
	if a.Kind == model.KindDate && b.Kind == model.KindDate {
		return compareOrdered(op, dateInstant(a.Date), dateInstant(b.Date))
	}
	if a.Kind == model.KindTime && b.Kind == model.KindTime {
		return compareOrdered(op, timeInstant(a.Time), timeInstant(b.Time))
	}
	if a.Kind == model.KindBoolean && b.Kind == model.KindBoolean {
		return compareEquality(op, a.Boolean == b.Boolean)
	}
	if a.Kind == model.KindText && b.Kind == model.KindText {
		return compareEquality(op, a.Text == b.Text)
	}
	if a.Kind == model.KindUnit && b.Kind == model.KindUnit {
		if err := requireMoneyMatch(a.Unit, b.Unit); err != nil {
			return false, err
		}
		if model.CompatibleCategory(a.Unit, b.Unit) {
			converted, err := model.Convert(b.Number, b.Unit, a.Unit)
			if err != nil {
				return false, err
			}
			return compareOrdered(op, a.Number, converted)
		}
		return compareOrdered(op, a.Number, b.Number)
	}
	if an, aok := numeric(a); aok {
		if bn, bok := numeric(b); bok {
			return compareOrdered(op, an, bn)
		}
	}
	return false, fmt.Errorf("comparison %s not defined for %s and %s", op, a.Kind, b.Kind)
}

func compareEquality(op model.CompareOp, equal bool) (bool, error) {
	switch op {
	case model.Eq, model.Is:
		return equal, nil
	case model.Ne, model.IsNot:
		return !equal, nil
	default:
		return false, fmt.Errorf("ordering operator %s not defined for this type", op)
	}
}

func compareOrdered(op model.CompareOp, a, b *big.Rat) (bool, error) {
	c := a.Cmp(b)
	switch op {
	case model.Gt:
		return c > 0, nil
	case model.Lt:
		return c < 0, nil
	case model.Ge:
		return c >= 0, nil
	case model.Le:
		return c <= 0, nil
	case model.Eq, model.Is:
		return c == 0, nil
	case model.Ne, model.IsNot:
		return c != 0, nil
	default:
		return false, fmt.Errorf("unknown comparison operator %v", op)
	}
}

// dateInstant and timeInstant return a UTC-normalised instant in seconds
// since the same epoch, so ordering comparisons are a plain Cmp.
func dateInstant(d model.DateValue) *big.Rat {
	return big.NewRat(epochSecondsForDate(d), 1)
}

func timeInstant(t model.TimeValue) *big.Rat {
	return big.NewRat(epochSecondsForTime(t), 1)
}
