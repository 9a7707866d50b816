package ops

import (
	"fmt"
	"math/big"
	"time"

	"github.com/decisionml/decisionml/model"
)

// referenceEpochYear/Month/Day anchor Time ± Duration and Time − Time arithmetic
// (section 4.2.3: "anchored on a reference epoch date").
const referenceEpochYear, referenceEpochMonth, referenceEpochDay = 1970, 1, 1

func toGoTime(d model.DateValue) time.Time {
	loc := time.UTC
	if d.HasOffset {
		loc = time.FixedZone("", d.OffsetSeconds)
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, d.Second, 0, loc)
}

func fromGoTime(t time.Time, hasOffset bool, offsetSeconds int) model.DateValue {
	return model.DateValue{
		Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
		Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(),
		HasOffset: hasOffset, OffsetSeconds: offsetSeconds,
	}
}

func epochSecondsForDate(d model.DateValue) int64 {
	return toGoTime(d).UTC().Unix()
}

func epochSecondsForTime(t model.TimeValue) int64 {
	loc := time.UTC
	if t.HasOffset {
		loc = time.FixedZone("", t.OffsetSeconds)
	}
	goTime := time.Date(referenceEpochYear, referenceEpochMonth, referenceEpochDay, t.Hour, t.Minute, t.Second, 0, loc)
	return goTime.UTC().Unix()
}

func daysInMonth(year, month int) int {
	// Day 0 of the following month is the last day of `month`.
	return time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, time.UTC).Day()
}

// addCalendarMonths adds `months` calendar months to d, clamping an
// overflowing day to the last day of the target month (section 4.2.3:
// "clamp overflowing day to the last day of the target month; Feb 29 + 1
// year -> Feb 28 in non-leap years").
func addCalendarMonths(d model.DateValue, months int) model.DateValue {
	total := d.Month - 1 + months
	year := d.Year + total/12
	month := total % 12
	if month < 0 {
		month += 12
		year--
	}
	month++
	day := d.Day
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return model.DateValue{
		Year: year, Month: month, Day: day,
		Hour: d.Hour, Minute: d.Minute, Second: d.Second,
		HasOffset: d.HasOffset, OffsetSeconds: d.OffsetSeconds,
	}
}

// durationCalendarSteps converts a duration magnitude into an integer count
// of calendar steps (months, or years*12 months). Calendar arithmetic only
// makes sense for whole steps; a fractional amount is rounded to the
// nearest integer step.
func durationCalendarSteps(amount *big.Rat, u *model.UnitDef) int {
	f, _ := amount.Float64()
	steps := roundFloat(f)
	if u.Name == "year" {
		steps *= 12
	}
	return steps
}

func roundFloat(f float64) int {
	if f >= 0 {
		return int(f + 0.5)
	}
	return -int(-f + 0.5)
}

func dateArithmetic(op model.ArithOp, a, b model.Literal) (model.Literal, error) {
	switch op {
	case model.Add:
		if a.Kind == model.KindDate && b.Kind == model.KindUnit && b.Unit.Category == model.CategoryDuration {
			return addDateDuration(a.Date, b, false)
		}
		if b.Kind == model.KindDate && a.Kind == model.KindUnit && a.Unit.Category == model.CategoryDuration {
			return addDateDuration(b.Date, a, false)
		}
		return model.Literal{}, fmt.Errorf("cannot add %s and %s", a.Kind, b.Kind)
	case model.Subtract:
		if a.Kind == model.KindDate && b.Kind == model.KindDate {
			secs := epochSecondsForDate(a.Date) - epochSecondsForDate(b.Date)
			return model.UnitValue(big.NewRat(secs, 1), model.MustLookupUnit("s")), nil
		}
		if a.Kind == model.KindDate && b.Kind == model.KindUnit && b.Unit.Category == model.CategoryDuration {
			return addDateDuration(a.Date, b, true)
		}
		return model.Literal{}, fmt.Errorf("cannot subtract %s from %s", b.Kind, a.Kind)
	default:
		return model.Literal{}, fmt.Errorf("operator %v not defined for dates", op)
	}
}

func addDateDuration(d model.DateValue, duration model.Literal, negate bool) (model.Literal, error) {
	u := duration.Unit
	amount := duration.Number
	if negate {
		amount = new(big.Rat).Neg(amount)
	}
	if u.Calendar {
		steps := durationCalendarSteps(amount, u)
		return model.Date(addCalendarMonths(d, steps)), nil
	}
	secondsRat, err := model.Convert(amount, u, model.MustLookupUnit("s"))
	if err != nil {
		return model.Literal{}, err
	}
	seconds, _ := secondsRat.Float64()
	t := toGoTime(d).Add(time.Duration(seconds) * time.Second)
	return model.Date(fromGoTime(t, d.HasOffset, d.OffsetSeconds)), nil
}

func timeArithmetic(op model.ArithOp, a, b model.Literal) (model.Literal, error) {
	switch op {
	case model.Add:
		if a.Kind == model.KindTime && b.Kind == model.KindUnit && b.Unit.Category == model.CategoryDuration {
			return addTimeDuration(a.Time, b, false)
		}
		if b.Kind == model.KindTime && a.Kind == model.KindUnit && a.Unit.Category == model.CategoryDuration {
			return addTimeDuration(b.Time, a, false)
		}
		return model.Literal{}, fmt.Errorf("cannot add %s and %s", a.Kind, b.Kind)
	case model.Subtract:
		if a.Kind == model.KindTime && b.Kind == model.KindTime {
			secs := epochSecondsForTime(a.Time) - epochSecondsForTime(b.Time)
			return model.UnitValue(big.NewRat(secs, 1), model.MustLookupUnit("s")), nil
		}
		if a.Kind == model.KindTime && b.Kind == model.KindUnit && b.Unit.Category == model.CategoryDuration {
			return addTimeDuration(a.Time, b, true)
		}
		return model.Literal{}, fmt.Errorf("cannot subtract %s from %s", b.Kind, a.Kind)
	default:
		return model.Literal{}, fmt.Errorf("operator %v not defined for times", op)
	}
}

func addTimeDuration(t model.TimeValue, duration model.Literal, negate bool) (model.Literal, error) {
	u := duration.Unit
	if u.Calendar {
		return model.Literal{}, fmt.Errorf("calendar unit %s cannot be added to a time-of-day", u.Symbol)
	}
	amount := duration.Number
	if negate {
		amount = new(big.Rat).Neg(amount)
	}
	secondsRat, err := model.Convert(amount, u, model.MustLookupUnit("s"))
	if err != nil {
		return model.Literal{}, err
	}
	seconds, _ := secondsRat.Float64()
	loc := time.UTC
	if t.HasOffset {
		loc = time.FixedZone("", t.OffsetSeconds)
	}
	base := time.Date(referenceEpochYear, referenceEpochMonth, referenceEpochDay, t.Hour, t.Minute, t.Second, 0, loc)
	result := base.Add(time.Duration(seconds) * time.Second)
	return model.Time(model.TimeValue{
		Hour: result.Hour(), Minute: result.Minute(), Second: result.Second(),
		HasOffset: t.HasOffset, OffsetSeconds: t.OffsetSeconds,
	}), nil
}
