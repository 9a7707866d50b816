package model

import (
	"fmt"
	"math/big"
	"regexp"
)

// Kind discriminates the Literal sum type (section 3).
type Kind int

const (
	KindNumber Kind = iota
	KindText
	KindBoolean
	KindPercentage
	KindDate
	KindTime
	KindRegex
	KindUnit
	// KindUnknown is the inferred type of a rule reference before its body
	// is resolved — compatible with everything (section 4.1).
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	case KindPercentage:
		return "percentage"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindRegex:
		return "regex"
	case KindUnit:
		return "unit"
	case KindUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// DateValue is a calendar date, optionally with a fixed UTC offset.
type DateValue struct {
	Year, Month, Day          int
	Hour, Minute, Second      int
	OffsetSeconds             int
	HasOffset                 bool
}

// TimeValue is a time-of-day, optionally with a fixed UTC offset.
type TimeValue struct {
	Hour, Minute, Second int
	OffsetSeconds        int
	HasOffset            bool
}

// RegexValue pairs the source pattern with its compiled form. Compiled is
// populated once, at construction: NewRegexValue returns the compile error
// for an invalid pattern, so no RegexValue holds an uncompiled pattern.
type RegexValue struct {
	Pattern  string
	Compiled *regexp.Regexp
}

// NewRegexValue compiles pattern once and returns an error if it is invalid.
func NewRegexValue(pattern string) (*RegexValue, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &RegexValue{Pattern: pattern, Compiled: re}, nil
}

// Literal is the sum type of section 3: a fixed-point decimal Number, Text,
// Boolean, Percentage (stored in "percent units" — 20 means 20%), Date,
// Time, Regex, or a Unit (decimal + catalogue tag).
type Literal struct {
	Kind    Kind
	Number  *big.Rat // Number, Percentage, and the magnitude of Unit
	Text    string
	Boolean bool
	Date    DateValue
	Time    TimeValue
	Regex   *RegexValue
	Unit    *UnitDef
}

func Number(r *big.Rat) Literal        { return Literal{Kind: KindNumber, Number: r} }
func NumberFromInt(n int64) Literal    { return Literal{Kind: KindNumber, Number: big.NewRat(n, 1)} }
func Text(s string) Literal            { return Literal{Kind: KindText, Text: s} }
func Boolean(b bool) Literal           { return Literal{Kind: KindBoolean, Boolean: b} }
func Percentage(r *big.Rat) Literal    { return Literal{Kind: KindPercentage, Number: r} }
func Date(d DateValue) Literal         { return Literal{Kind: KindDate, Date: d} }
func Time(t TimeValue) Literal         { return Literal{Kind: KindTime, Time: t} }
func Regex(r *RegexValue) Literal      { return Literal{Kind: KindRegex, Regex: r} }

// UnitValue builds a Unit literal: amount expressed in unit u.
func UnitValue(amount *big.Rat, u *UnitDef) Literal {
	return Literal{Kind: KindUnit, Number: amount, Unit: u}
}

// String renders a literal for display (facts in the Response, trace text).
func (l Literal) String() string {
	switch l.Kind {
	case KindNumber:
		return ratString(l.Number)
	case KindText:
		return l.Text
	case KindBoolean:
		if l.Boolean {
			return "true"
		}
		return "false"
	case KindPercentage:
		return ratString(l.Number) + "%"
	case KindDate:
		return formatDate(l.Date)
	case KindTime:
		return formatTime(l.Time)
	case KindRegex:
		return "/" + l.Regex.Pattern + "/"
	case KindUnit:
		return ratString(l.Number) + " " + l.Unit.Symbol
	default:
		return "<unknown>"
	}
}

func ratString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	f, _ := r.Float64()
	return fmt.Sprintf("%g", f)
}

func formatDate(d DateValue) string {
	s := fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
	if d.HasOffset {
		s += offsetSuffix(d.OffsetSeconds)
	} else {
		s += "Z"
	}
	return s
}

func formatTime(t TimeValue) string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if t.HasOffset {
		s += offsetSuffix(t.OffsetSeconds)
	}
	return s
}

func offsetSuffix(secs int) string {
	sign := "+"
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	return fmt.Sprintf("%s%02d:%02d", sign, secs/3600, (secs%3600)/60)
}

// SameCategoryUnit reports whether two Unit literals share a category.
func (l Literal) SameCategoryUnit(other Literal) bool {
	return l.Kind == KindUnit && other.Kind == KindUnit && l.Unit.Category == other.Unit.Category
}
