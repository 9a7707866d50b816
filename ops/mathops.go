package ops

import (
	"fmt"
	"math"
	"math/big"

	"github.com/decisionml/decisionml/model"
)

func mathPow(a, b float64) float64 { return math.Pow(a, b) }

// Math dispatches a MathematicalComputation node (section 4.2.3). Abs,
// Floor, Ceil, Round stay exact on the rational representation; the rest
// convert to float64, compute, then re-intern as decimal (section 9) —
// a failed conversion (NaN/Inf in or out) is a Runtime error.
func Math(op model.MathOp, a model.Literal) (model.Literal, error) {
	if a.Kind != model.KindNumber {
		return model.Literal{}, fmt.Errorf("mathematical operator %s requires a number, got %s", op, a.Kind)
	}
	if op.Exact() {
		return mathExact(op, a.Number)
	}

	f, exact := a.Number.Float64()
	_ = exact
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return model.Literal{}, fmt.Errorf("cannot convert %s to a floating-point value for %s", a.Number.RatString(), op)
	}

	var result float64
	switch op {
	case model.Sqrt:
		if f < 0 {
			return model.Literal{}, fmt.Errorf("sqrt of negative number %s", a.Number.RatString())
		}
		result = math.Sqrt(f)
	case model.Sin:
		result = math.Sin(f)
	case model.Cos:
		result = math.Cos(f)
	case model.Tan:
		result = math.Tan(f)
	case model.Asin:
		result = math.Asin(f)
	case model.Acos:
		result = math.Acos(f)
	case model.Atan:
		result = math.Atan(f)
	case model.Log:
		if f <= 0 {
			return model.Literal{}, fmt.Errorf("log of non-positive number %s", a.Number.RatString())
		}
		result = math.Log(f)
	case model.Exp:
		result = math.Exp(f)
	default:
		return model.Literal{}, fmt.Errorf("unknown mathematical operator %v", op)
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return model.Literal{}, fmt.Errorf("%s(%s) is not a finite number", op, a.Number.RatString())
	}
	r := new(big.Rat)
	if r.SetFloat64(result) == nil {
		return model.Literal{}, fmt.Errorf("%s(%s) could not be represented exactly", op, a.Number.RatString())
	}
	return model.Number(r), nil
}

func mathExact(op model.MathOp, v *big.Rat) (model.Literal, error) {
	switch op {
	case model.Abs:
		r := new(big.Rat).Abs(v)
		return model.Number(r), nil
	case model.Floor:
		return model.Number(floorRat(v)), nil
	case model.Ceil:
		f := floorRat(v)
		if f.Cmp(v) != 0 {
			f.Add(f, big.NewRat(1, 1))
		}
		return model.Number(f), nil
	case model.Round:
		return model.Number(roundRat(v)), nil
	default:
		return model.Literal{}, fmt.Errorf("unknown exact mathematical operator %v", op)
	}
}

func floorRat(v *big.Rat) *big.Rat {
	q := new(big.Int).Quo(v.Num(), v.Denom())
	r := new(big.Rat).SetInt(q)
	if v.Sign() < 0 && r.Cmp(v) != 0 {
		r.Sub(r, big.NewRat(1, 1))
	}
	return r
}

// roundRat rounds half away from zero, matching the "retain" rounding
// semantics the original source uses without pinning an exact mode
// (section 9, open question: rounding mode of float round-trips).
func roundRat(v *big.Rat) *big.Rat {
	half := big.NewRat(1, 2)
	if v.Sign() >= 0 {
		return floorRat(new(big.Rat).Add(v, half))
	}
	neg := new(big.Rat).Neg(v)
	return new(big.Rat).Neg(floorRat(new(big.Rat).Add(neg, half)))
}
