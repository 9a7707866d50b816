package inverter

import (
	"time"

	"github.com/decisionml/decisionml/model"
)

// BoundKind says whether a Range endpoint is open-ended, inclusive or
// exclusive (section 4.3.3).
type BoundKind int

const (
	Unbounded BoundKind = iota
	Inclusive
	Exclusive
)

// Bound pairs a BoundKind with the literal it guards; Value is meaningless
// when Kind == Unbounded.
type Bound struct {
	Kind  BoundKind
	Value model.Literal
}

func unbounded() Bound                      { return Bound{Kind: Unbounded} }
func inclusive(v model.Literal) Bound       { return Bound{Kind: Inclusive, Value: v} }
func exclusive(v model.Literal) Bound       { return Bound{Kind: Exclusive, Value: v} }

// DomainKind discriminates the Domain sum type of section 4.3.3.
type DomainKind int

const (
	DomainUnconstrained DomainKind = iota
	DomainRange
	DomainEnumeration
	DomainUnion
	DomainComplement
)

// Domain is a symbolic representation of a set of values (section 4.3.3):
// a bounded range, an explicit enumeration, a union of sub-domains, the
// complement of a sub-domain, or the unconstrained universe.
type Domain struct {
	Kind    DomainKind
	Min     Bound
	Max     Bound
	Values  []model.Literal // DomainEnumeration
	Members []Domain        // DomainUnion
	Inner   *Domain         // DomainComplement
}

func unconstrainedDomain() Domain { return Domain{Kind: DomainUnconstrained} }

func rangeDomain(min, max Bound) Domain {
	return Domain{Kind: DomainRange, Min: min, Max: max}
}

func enumDomain(values ...model.Literal) Domain {
	return Domain{Kind: DomainEnumeration, Values: values}
}

func unionDomain(members ...Domain) Domain {
	return Domain{Kind: DomainUnion, Members: members}
}

func complementDomain(inner Domain) Domain {
	return Domain{Kind: DomainComplement, Inner: &inner}
}

// domainFromComparison builds the Bound-based Domain a single comparison
// `fact op value` implies (section 4.3.3: "comparison operators lifted
// from the evaluator drive bound construction"). Only Number/Percentage/
// Unit/Date/Time literals carry an order; Eq/Ne on any literal kind are
// expressed as an enumeration/complement instead of a Range.
func domainFromComparison(op model.CompareOp, v model.Literal) Domain {
	switch op {
	case model.Gt:
		return rangeDomain(exclusive(v), unbounded())
	case model.Ge:
		return rangeDomain(inclusive(v), unbounded())
	case model.Lt:
		return rangeDomain(unbounded(), exclusive(v))
	case model.Le:
		return rangeDomain(unbounded(), inclusive(v))
	case model.Eq, model.Is:
		return enumDomain(v)
	case model.Ne, model.IsNot:
		return complementDomain(enumDomain(v))
	default:
		return unconstrainedDomain()
	}
}

// cmpLiteral orders two literals of the comparable kinds (Number,
// Percentage, Unit magnitude, Date/Time instant); ok is false when the
// literals are not order-comparable (e.g. different unit categories).
func cmpLiteral(a, b model.Literal) (int, bool) {
	if a.Kind != b.Kind {
		return 0, false
	}
	switch a.Kind {
	case model.KindNumber, model.KindPercentage:
		if a.Number == nil || b.Number == nil {
			return 0, false
		}
		return a.Number.Cmp(b.Number), true
	case model.KindUnit:
		if a.Unit == nil || b.Unit == nil || a.Unit.Category != b.Unit.Category {
			return 0, false
		}
		converted, err := model.Convert(b.Number, b.Unit, a.Unit)
		if err != nil {
			return 0, false
		}
		return a.Number.Cmp(converted), true
	case model.KindDate:
		as, bs := dateInstantSeconds(a.Date), dateInstantSeconds(b.Date)
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		default:
			return 0, true
		}
	case model.KindTime:
		as, bs := timeInstantSeconds(a.Time), timeInstantSeconds(b.Time)
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

// dateInstantSeconds and timeInstantSeconds normalise to a UTC instant in
// epoch seconds, the same conversion ops/datetime.go's
// epochSecondsForDate/epochSecondsForTime apply before ordering, so a
// Date/Time bound compares correctly across differing HasOffset/
// OffsetSeconds.
func dateInstantSeconds(d model.DateValue) int64 {
	loc := time.UTC
	if d.HasOffset {
		loc = time.FixedZone("", d.OffsetSeconds)
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, d.Second, 0, loc).UTC().Unix()
}

const timeInstantRefYear, timeInstantRefMonth, timeInstantRefDay = 1970, 1, 1

func timeInstantSeconds(t model.TimeValue) int64 {
	loc := time.UTC
	if t.HasOffset {
		loc = time.FixedZone("", t.OffsetSeconds)
	}
	return time.Date(timeInstantRefYear, timeInstantRefMonth, timeInstantRefDay, t.Hour, t.Minute, t.Second, 0, loc).UTC().Unix()
}

// tighterLower/tighterUpper pick the tighter of two lower/upper bounds for
// intersection (section 4.3.3: "range∩range takes the tighter of each
// bound").
func tighterLower(a, b Bound) Bound {
	if a.Kind == Unbounded {
		return b
	}
	if b.Kind == Unbounded {
		return a
	}
	cmp, ok := cmpLiteral(a.Value, b.Value)
	if !ok {
		return a
	}
	switch {
	case cmp > 0:
		return a
	case cmp < 0:
		return b
	default:
		if a.Kind == Exclusive || b.Kind == Exclusive {
			return exclusive(a.Value)
		}
		return a
	}
}

func tighterUpper(a, b Bound) Bound {
	if a.Kind == Unbounded {
		return b
	}
	if b.Kind == Unbounded {
		return a
	}
	cmp, ok := cmpLiteral(a.Value, b.Value)
	if !ok {
		return a
	}
	switch {
	case cmp < 0:
		return a
	case cmp > 0:
		return b
	default:
		if a.Kind == Exclusive || b.Kind == Exclusive {
			return exclusive(a.Value)
		}
		return a
	}
}

// rangeContradicts reports whether a range's bounds are unsatisfiable
// (section 4.3.3: "Inclusive(a) vs Inclusive(b) contradicts iff a > b;
// mixed inclusive/exclusive tighten the inequality appropriately").
func rangeContradicts(min, max Bound) bool {
	if min.Kind == Unbounded || max.Kind == Unbounded {
		return false
	}
	cmp, ok := cmpLiteral(min.Value, max.Value)
	if !ok {
		return false
	}
	if cmp > 0 {
		return true
	}
	if cmp == 0 && (min.Kind == Exclusive || max.Kind == Exclusive) {
		return true
	}
	return false
}

// intersect implements section 4.3.3's pairwise intersection rules.
func intersect(a, b Domain) Domain {
	if a.Kind == DomainUnconstrained {
		return b
	}
	if b.Kind == DomainUnconstrained {
		return a
	}
	if a.Kind == DomainUnion {
		members := make([]Domain, len(a.Members))
		for i, m := range a.Members {
			members[i] = intersect(m, b)
		}
		return normalize(unionDomain(members...))
	}
	if b.Kind == DomainUnion {
		return intersect(b, a)
	}
	if a.Kind == DomainRange && b.Kind == DomainRange {
		min := tighterLower(a.Min, b.Min)
		max := tighterUpper(a.Max, b.Max)
		if rangeContradicts(min, max) {
			return enumDomain()
		}
		return rangeDomain(min, max)
	}
	if a.Kind == DomainEnumeration && b.Kind == DomainRange {
		return enumDomain(filterInRange(a.Values, b)...)
	}
	if a.Kind == DomainRange && b.Kind == DomainEnumeration {
		return intersect(b, a)
	}
	if a.Kind == DomainEnumeration && b.Kind == DomainEnumeration {
		var out []model.Literal
		for _, v := range a.Values {
			if containsLiteral(b.Values, v) {
				out = append(out, v)
			}
		}
		return enumDomain(out...)
	}
	if a.Kind == DomainComplement && b.Kind == DomainComplement {
		return complementDomain(union(*a.Inner, *b.Inner))
	}
	if a.Kind == DomainComplement {
		return complementMinus(b, *a.Inner)
	}
	if b.Kind == DomainComplement {
		return complementMinus(a, *b.Inner)
	}
	return unconstrainedDomain()
}

// complementMinus approximates d ∩ complement(inner) as "d with inner's
// enumerated/range members removed" when both sides are simple ranges or
// enumerations. For any other pair of shapes it returns complement(inner)
// alone, dropping d, so the result can be larger than the exact
// intersection.
func complementMinus(d, inner Domain) Domain {
	if d.Kind == DomainEnumeration && inner.Kind == DomainEnumeration {
		var out []model.Literal
		for _, v := range d.Values {
			if !containsLiteral(inner.Values, v) {
				out = append(out, v)
			}
		}
		return enumDomain(out...)
	}
	if d.Kind == DomainRange && inner.Kind == DomainRange {
		// d minus inner = d ∩ complement(inner) = d ∩ (below ∪ above).
		return intersect(d, negate(inner))
	}
	if d.Kind == DomainEnumeration && inner.Kind == DomainRange {
		var out []model.Literal
		for _, v := range d.Values {
			if !inRange(v, inner) {
				out = append(out, v)
			}
		}
		return enumDomain(out...)
	}
	if d.Kind == DomainRange && inner.Kind == DomainEnumeration {
		// Punch holes: split d at every enumerated point that falls
		// strictly inside it.
		result := []Domain{d}
		for _, v := range inner.Values {
			var next []Domain
			for _, piece := range result {
				if piece.Kind == DomainRange && inRange(v, piece) {
					next = append(next,
						rangeDomain(piece.Min, exclusive(v)),
						rangeDomain(exclusive(v), piece.Max))
					continue
				}
				next = append(next, piece)
			}
			result = next
		}
		var kept []Domain
		for _, piece := range result {
			if !isEmpty(piece) {
				kept = append(kept, piece)
			}
		}
		return normalize(unionDomain(kept...))
	}
	return complementDomain(inner)
}

func filterInRange(values []model.Literal, r Domain) []model.Literal {
	var out []model.Literal
	for _, v := range values {
		if inRange(v, r) {
			out = append(out, v)
		}
	}
	return out
}

func inRange(v model.Literal, r Domain) bool {
	if r.Min.Kind != Unbounded {
		cmp, ok := cmpLiteral(v, r.Min.Value)
		if !ok {
			return false
		}
		if r.Min.Kind == Inclusive && cmp < 0 {
			return false
		}
		if r.Min.Kind == Exclusive && cmp <= 0 {
			return false
		}
	}
	if r.Max.Kind != Unbounded {
		cmp, ok := cmpLiteral(v, r.Max.Value)
		if !ok {
			return false
		}
		if r.Max.Kind == Inclusive && cmp > 0 {
			return false
		}
		if r.Max.Kind == Exclusive && cmp >= 0 {
			return false
		}
	}
	return true
}

func containsLiteral(set []model.Literal, v model.Literal) bool {
	for _, s := range set {
		if equalLiteral(s, v) {
			return true
		}
	}
	return false
}

// union implements section 4.3.3's union: "concatenates, then
// normalisation merges adjacent/overlapping ranges and deduplicates
// enumerations".
func union(a, b Domain) Domain {
	return normalize(unionDomain(a, b))
}

// normalize flattens nested unions, merges overlapping ranges, and
// deduplicates enumeration values.
func normalize(d Domain) Domain {
	if d.Kind != DomainUnion {
		return d
	}
	var flat []Domain
	var flatten func(Domain)
	flatten = func(m Domain) {
		if m.Kind == DomainUnion {
			for _, mm := range m.Members {
				flatten(mm)
			}
			return
		}
		flat = append(flat, m)
	}
	for _, m := range d.Members {
		flatten(m)
	}

	var ranges []Domain
	var enumValues []model.Literal
	var other []Domain
	for _, m := range flat {
		switch m.Kind {
		case DomainRange:
			ranges = append(ranges, m)
		case DomainEnumeration:
			for _, v := range m.Values {
				if !containsLiteral(enumValues, v) {
					enumValues = append(enumValues, v)
				}
			}
		default:
			other = append(other, m)
		}
	}
	ranges = mergeRanges(ranges)

	var members []Domain
	members = append(members, ranges...)
	if len(enumValues) > 0 {
		members = append(members, enumDomain(enumValues...))
	}
	members = append(members, other...)

	if len(members) == 0 {
		return enumDomain()
	}
	if len(members) == 1 {
		return members[0]
	}
	return Domain{Kind: DomainUnion, Members: members}
}

// mergeRanges merges ranges whose bounds overlap or touch. Only ranges
// with order-comparable bounds on both sides are merged pairwise; ranges
// that cannot be compared (different unit categories) are kept distinct.
func mergeRanges(ranges []Domain) []Domain {
	changed := true
	for changed {
		changed = false
		for i := 0; i < len(ranges); i++ {
			for j := i + 1; j < len(ranges); j++ {
				if merged, ok := tryMergeRange(ranges[i], ranges[j]); ok {
					ranges[i] = merged
					ranges = append(ranges[:j], ranges[j+1:]...)
					changed = true
					break
				}
			}
			if changed {
				break
			}
		}
	}
	return ranges
}

func tryMergeRange(a, b Domain) (Domain, bool) {
	if overlapsOrTouches(a.Max, b.Min) && overlapsOrTouches(b.Max, a.Min) {
		return rangeDomain(looserLower(a.Min, b.Min), looserUpper(a.Max, b.Max)), true
	}
	return Domain{}, false
}

func overlapsOrTouches(upper, lower Bound) bool {
	if upper.Kind == Unbounded || lower.Kind == Unbounded {
		return true
	}
	cmp, ok := cmpLiteral(upper.Value, lower.Value)
	if !ok {
		return false
	}
	if cmp > 0 {
		return true
	}
	if cmp == 0 && (upper.Kind == Inclusive || lower.Kind == Inclusive) {
		return true
	}
	return false
}

func looserLower(a, b Bound) Bound {
	if a.Kind == Unbounded || b.Kind == Unbounded {
		return unbounded()
	}
	cmp, ok := cmpLiteral(a.Value, b.Value)
	if !ok {
		return a
	}
	switch {
	case cmp < 0:
		return a
	case cmp > 0:
		return b
	default:
		if a.Kind == Inclusive || b.Kind == Inclusive {
			return inclusive(a.Value)
		}
		return a
	}
}

func looserUpper(a, b Bound) Bound {
	if a.Kind == Unbounded || b.Kind == Unbounded {
		return unbounded()
	}
	cmp, ok := cmpLiteral(a.Value, b.Value)
	if !ok {
		return a
	}
	switch {
	case cmp > 0:
		return a
	case cmp < 0:
		return b
	default:
		if a.Kind == Inclusive || b.Kind == Inclusive {
			return inclusive(a.Value)
		}
		return a
	}
}

// negate turns a range into the union of its two complementary rays,
// recurses into unions, and is involutive on complements (section 4.3.3).
func negate(d Domain) Domain {
	switch d.Kind {
	case DomainUnconstrained:
		return enumDomain()
	case DomainComplement:
		return *d.Inner
	case DomainRange:
		below := rangeDomain(unbounded(), negateBound(d.Min))
		above := rangeDomain(negateBound(d.Max), unbounded())
		if d.Min.Kind == Unbounded && d.Max.Kind == Unbounded {
			return enumDomain()
		}
		if d.Min.Kind == Unbounded {
			return above
		}
		if d.Max.Kind == Unbounded {
			return below
		}
		return normalize(unionDomain(below, above))
	case DomainUnion:
		result := unconstrainedDomain()
		for _, m := range d.Members {
			result = intersect(result, negate(m))
		}
		return result
	case DomainEnumeration:
		return complementDomain(d)
	default:
		return complementDomain(d)
	}
}

func negateBound(b Bound) Bound {
	switch b.Kind {
	case Inclusive:
		return exclusive(b.Value)
	case Exclusive:
		return inclusive(b.Value)
	default:
		return unbounded()
	}
}

// isEmpty reports whether d can be proven to contain no values (section
// 4.3.1 step 4's "drop if unsatisfiable").
func isEmpty(d Domain) bool {
	switch d.Kind {
	case DomainEnumeration:
		return len(d.Values) == 0
	case DomainRange:
		return rangeContradicts(d.Min, d.Max)
	case DomainUnion:
		for _, m := range d.Members {
			if !isEmpty(m) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
