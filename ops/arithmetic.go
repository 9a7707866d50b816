// Package ops implements the typed operations of section 4.2.3: arithmetic,
// comparison, logical, mathematical, unit conversion and date/time
// arithmetic over model.Literal values. It is grounded on
// szatmary-ratcalc/app/lang/value.go's valAdd/valSub/valMul/valDiv family,
// generalized from a single numeric+compound-unit value to the full Literal
// sum type (Number, Text, Boolean, Percentage, Date, Time, Regex, Unit).
package ops

import (
	"fmt"
	"math/big"

	"github.com/decisionml/decisionml/model"
)

const hundred = 100

func hundredRat() *big.Rat { return big.NewRat(hundred, 1) }

// Arithmetic dispatches a binary arithmetic node per section 4.2.3.
func Arithmetic(op model.ArithOp, a, b model.Literal) (model.Literal, error) {
	if a.Kind == model.KindDate || b.Kind == model.KindDate {
		return dateArithmetic(op, a, b)
	}
	if a.Kind == model.KindTime || b.Kind == model.KindTime {
		return timeArithmetic(op, a, b)
	}

	switch op {
	case model.Add:
		return add(a, b)
	case model.Subtract:
		return subtract(a, b)
	case model.Multiply:
		return multiply(a, b)
	case model.Divide:
		return divide(a, b)
	case model.Modulo:
		return modulo(a, b)
	case model.Power:
		return power(a, b)
	default:
		return model.Literal{}, fmt.Errorf("unknown arithmetic operator %v", op)
	}
}

// numeric extracts the big.Rat magnitude of Number, Percentage or Unit
// literals; Percentage is in percent-units (not divided by 100) per
// section 9 — callers decide when to apply it.
func numeric(l model.Literal) (*big.Rat, bool) {
	switch l.Kind {
	case model.KindNumber, model.KindPercentage, model.KindUnit:
		return l.Number, true
	default:
		return nil, false
	}
}

func requireMoneyMatch(a, b *model.UnitDef) error {
	if a.Category == model.CategoryMoney && b.Category == model.CategoryMoney && a.Symbol != b.Symbol {
		return fmt.Errorf("money arithmetic requires matching currencies, got %s and %s", a.Symbol, b.Symbol)
	}
	return nil
}

func add(a, b model.Literal) (model.Literal, error) {
	switch {
	case a.Kind == model.KindPercentage && b.Kind == model.KindPercentage:
		return model.Percentage(new(big.Rat).Add(a.Number, b.Number)), nil
	case a.Kind == model.KindNumber && b.Kind == model.KindPercentage:
		// Number + Percentage increases the number by that percent.
		factor := new(big.Rat).Add(big.NewRat(1, 1), new(big.Rat).Quo(b.Number, hundredRat()))
		return model.Number(new(big.Rat).Mul(a.Number, factor)), nil
	case a.Kind == model.KindPercentage && b.Kind == model.KindNumber:
		factor := new(big.Rat).Add(big.NewRat(1, 1), new(big.Rat).Quo(a.Number, hundredRat()))
		return model.Number(new(big.Rat).Mul(b.Number, factor)), nil
	case a.Kind == model.KindUnit && b.Kind == model.KindPercentage:
		factor := new(big.Rat).Add(big.NewRat(1, 1), new(big.Rat).Quo(b.Number, hundredRat()))
		return model.UnitValue(new(big.Rat).Mul(a.Number, factor), a.Unit), nil
	case a.Kind == model.KindPercentage && b.Kind == model.KindUnit:
		factor := new(big.Rat).Add(big.NewRat(1, 1), new(big.Rat).Quo(a.Number, hundredRat()))
		return model.UnitValue(new(big.Rat).Mul(b.Number, factor), b.Unit), nil
	case a.Kind == model.KindUnit && b.Kind == model.KindUnit:
		return unitUnitOp(a, b, func(x, y *big.Rat) *big.Rat { return new(big.Rat).Add(x, y) })
	case a.Kind == model.KindUnit && b.Kind == model.KindNumber:
		return model.UnitValue(new(big.Rat).Add(a.Number, b.Number), a.Unit), nil
	case a.Kind == model.KindNumber && b.Kind == model.KindUnit:
		return model.UnitValue(new(big.Rat).Add(a.Number, b.Number), b.Unit), nil
	case a.Kind == model.KindNumber && b.Kind == model.KindNumber:
		return model.Number(new(big.Rat).Add(a.Number, b.Number)), nil
	case a.Kind == model.KindText && b.Kind == model.KindText:
		return model.Text(a.Text + b.Text), nil
	default:
		return model.Literal{}, typeErr("+", a, b)
	}
}

func subtract(a, b model.Literal) (model.Literal, error) {
	switch {
	case a.Kind == model.KindPercentage && b.Kind == model.KindPercentage:
		return model.Percentage(new(big.Rat).Sub(a.Number, b.Number)), nil
	case a.Kind == model.KindNumber && b.Kind == model.KindPercentage:
		factor := new(big.Rat).Sub(big.NewRat(1, 1), new(big.Rat).Quo(b.Number, hundredRat()))
		return model.Number(new(big.Rat).Mul(a.Number, factor)), nil
	case a.Kind == model.KindUnit && b.Kind == model.KindPercentage:
		factor := new(big.Rat).Sub(big.NewRat(1, 1), new(big.Rat).Quo(b.Number, hundredRat()))
		return model.UnitValue(new(big.Rat).Mul(a.Number, factor), a.Unit), nil
	case a.Kind == model.KindUnit && b.Kind == model.KindUnit:
		return unitUnitOp(a, b, func(x, y *big.Rat) *big.Rat { return new(big.Rat).Sub(x, y) })
	case a.Kind == model.KindUnit && b.Kind == model.KindNumber:
		return model.UnitValue(new(big.Rat).Sub(a.Number, b.Number), a.Unit), nil
	case a.Kind == model.KindNumber && b.Kind == model.KindUnit:
		return model.UnitValue(new(big.Rat).Sub(a.Number, b.Number), b.Unit), nil
	case a.Kind == model.KindNumber && b.Kind == model.KindNumber:
		return model.Number(new(big.Rat).Sub(a.Number, b.Number)), nil
	default:
		return model.Literal{}, typeErr("-", a, b)
	}
}

// unitUnitOp implements "Unit ⊕ Unit" for +/-: same category converts the
// right operand into the left's unit; different categories is rejected for
// +/- (only meaningful for * and /, handled separately).
func unitUnitOp(a, b model.Literal, f func(x, y *big.Rat) *big.Rat) (model.Literal, error) {
	if err := requireMoneyMatch(a.Unit, b.Unit); err != nil {
		return model.Literal{}, err
	}
	if !model.CompatibleCategory(a.Unit, b.Unit) {
		return model.Literal{}, fmt.Errorf("cannot combine incompatible units %s and %s with +/-", a.Unit.Symbol, b.Unit.Symbol)
	}
	if a.Unit.Category == model.CategoryMoney {
		return model.UnitValue(f(a.Number, b.Number), a.Unit), nil
	}
	converted, err := model.Convert(b.Number, b.Unit, a.Unit)
	if err != nil {
		return model.Literal{}, err
	}
	return model.UnitValue(f(a.Number, converted), a.Unit), nil
}

func multiply(a, b model.Literal) (model.Literal, error) {
	switch {
	case (a.Kind == model.KindNumber || a.Kind == model.KindUnit) && b.Kind == model.KindPercentage:
		r := new(big.Rat).Quo(new(big.Rat).Mul(a.Number, b.Number), hundredRat())
		if a.Kind == model.KindUnit {
			return model.UnitValue(r, a.Unit), nil
		}
		return model.Number(r), nil
	case a.Kind == model.KindPercentage && (b.Kind == model.KindNumber || b.Kind == model.KindUnit):
		r := new(big.Rat).Quo(new(big.Rat).Mul(a.Number, b.Number), hundredRat())
		if b.Kind == model.KindUnit {
			return model.UnitValue(r, b.Unit), nil
		}
		return model.Number(r), nil
	case a.Kind == model.KindUnit && b.Kind == model.KindUnit:
		if err := requireMoneyMatch(a.Unit, b.Unit); err != nil {
			return model.Literal{}, err
		}
		if model.CompatibleCategory(a.Unit, b.Unit) {
			converted, err := model.Convert(b.Number, b.Unit, a.Unit)
			if err != nil {
				return model.Literal{}, err
			}
			return model.Number(new(big.Rat).Mul(a.Number, converted)), nil
		}
		return model.Number(new(big.Rat).Mul(a.Number, b.Number)), nil
	case a.Kind == model.KindUnit && b.Kind == model.KindNumber:
		return model.UnitValue(new(big.Rat).Mul(a.Number, b.Number), a.Unit), nil
	case a.Kind == model.KindNumber && b.Kind == model.KindUnit:
		return model.UnitValue(new(big.Rat).Mul(a.Number, b.Number), b.Unit), nil
	case a.Kind == model.KindNumber && b.Kind == model.KindNumber:
		return model.Number(new(big.Rat).Mul(a.Number, b.Number)), nil
	default:
		return model.Literal{}, typeErr("*", a, b)
	}
}

func divide(a, b model.Literal) (model.Literal, error) {
	bn, ok := numeric(b)
	if ok && bn.Sign() == 0 {
		return model.Literal{}, fmt.Errorf("division by zero")
	}
	switch {
	case a.Kind == model.KindUnit && b.Kind == model.KindUnit:
		if err := requireMoneyMatch(a.Unit, b.Unit); err != nil {
			return model.Literal{}, err
		}
		if model.CompatibleCategory(a.Unit, b.Unit) {
			converted, err := model.Convert(b.Number, b.Unit, a.Unit)
			if err != nil {
				return model.Literal{}, err
			}
			return model.Number(new(big.Rat).Quo(a.Number, converted)), nil
		}
		return model.Number(new(big.Rat).Quo(a.Number, b.Number)), nil
	case a.Kind == model.KindUnit && b.Kind == model.KindNumber:
		return model.UnitValue(new(big.Rat).Quo(a.Number, b.Number), a.Unit), nil
	case a.Kind == model.KindUnit && b.Kind == model.KindPercentage:
		r := new(big.Rat).Quo(new(big.Rat).Mul(a.Number, hundredRat()), b.Number)
		return model.UnitValue(r, a.Unit), nil
	case a.Kind == model.KindNumber && b.Kind == model.KindNumber:
		return model.Number(new(big.Rat).Quo(a.Number, b.Number)), nil
	case a.Kind == model.KindNumber && b.Kind == model.KindPercentage:
		r := new(big.Rat).Quo(new(big.Rat).Mul(a.Number, hundredRat()), b.Number)
		return model.Number(r), nil
	default:
		return model.Literal{}, typeErr("/", a, b)
	}
}

func modulo(a, b model.Literal) (model.Literal, error) {
	if a.Kind != model.KindNumber || b.Kind != model.KindNumber {
		return model.Literal{}, typeErr("%", a, b)
	}
	if b.Number.Sign() == 0 {
		return model.Literal{}, fmt.Errorf("modulo by zero")
	}
	// Decimal modulo: a - b*floor(a/b), matching exact rational arithmetic.
	q := new(big.Rat).Quo(a.Number, b.Number)
	qi := new(big.Int).Quo(q.Num(), q.Denom())
	if q.Sign() < 0 && new(big.Rat).SetInt(qi).Cmp(q) != 0 {
		qi.Sub(qi, big.NewInt(1))
	}
	qr := new(big.Rat).SetInt(qi)
	result := new(big.Rat).Sub(a.Number, new(big.Rat).Mul(qr, b.Number))
	return model.Number(result), nil
}

func power(a, b model.Literal) (model.Literal, error) {
	if a.Kind != model.KindNumber || b.Kind != model.KindNumber {
		return model.Literal{}, typeErr("^", a, b)
	}
	af, _ := a.Number.Float64()
	bf, _ := b.Number.Float64()
	result := mathPow(af, bf)
	r := new(big.Rat)
	if r.SetFloat64(result) == nil {
		return model.Literal{}, fmt.Errorf("power operation produced a non-finite result")
	}
	return model.Number(r), nil
}

func typeErr(op string, a, b model.Literal) error {
	return fmt.Errorf("operator %s not defined for %s and %s", op, a.Kind, b.Kind)
}
