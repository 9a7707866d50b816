package model

import (
	"fmt"
	"math/big"
)

// Category groups related units, per the fixed catalogue of section 3.
type Category int

const (
	CategoryMass Category = iota
	CategoryLength
	CategoryVolume
	CategoryDuration
	CategoryTemperature
	CategoryPower
	CategoryForce
	CategoryPressure
	CategoryEnergy
	CategoryFrequency
	CategoryDataSize
	CategoryMoney
)

func (c Category) String() string {
	switch c {
	case CategoryMass:
		return "mass"
	case CategoryLength:
		return "length"
	case CategoryVolume:
		return "volume"
	case CategoryDuration:
		return "duration"
	case CategoryTemperature:
		return "temperature"
	case CategoryPower:
		return "power"
	case CategoryForce:
		return "force"
	case CategoryPressure:
		return "pressure"
	case CategoryEnergy:
		return "energy"
	case CategoryFrequency:
		return "frequency"
	case CategoryDataSize:
		return "data_size"
	case CategoryMoney:
		return "money"
	default:
		return "unknown"
	}
}

// UnitDef describes one member of the catalogue.
//
// Conversion to the category's base unit is value_base = (value + PreOffset) * ToBase.
// PreOffset is nil for every category except Temperature.
//
// Calendar marks "month" and "year": calendar-aware durations whose length
// depends on which date they are added to. They carry no fixed ToBase
// factor and cannot be converted to any other unit, including each other.
//
// Currency marks members of CategoryMoney: there is no shared base unit for
// money, conversion between two Currency units is always a Runtime error
// regardless of numeric factors (section 8, "Money safety").
type UnitDef struct {
	Symbol    string
	Name      string
	NamePlur  string
	Category  Category
	ToBase    *big.Rat
	PreOffset *big.Rat
	Calendar  bool
	Currency  bool
}

// HasOffset reports whether this unit needs an affine (not purely scalar)
// conversion, as temperature units do.
func (u *UnitDef) HasOffset() bool {
	return u.PreOffset != nil && u.PreOffset.Sign() != 0
}

func ratFrac(num, den int64) *big.Rat { return new(big.Rat).SetFrac64(num, den) }

// catalogue is the fixed set of units named in section 3. Lookup is exact
// and case-sensitive on Symbol — see SPEC_FULL.md §3.1.
var catalogue = []*UnitDef{
	// Mass (base: gram)
	{Symbol: "mg", Name: "milligram", NamePlur: "milligrams", Category: CategoryMass, ToBase: ratFrac(1, 1000)},
	{Symbol: "g", Name: "gram", NamePlur: "grams", Category: CategoryMass, ToBase: ratFrac(1, 1)},
	{Symbol: "kg", Name: "kilogram", NamePlur: "kilograms", Category: CategoryMass, ToBase: ratFrac(1000, 1)},
	{Symbol: "t", Name: "ton", NamePlur: "tons", Category: CategoryMass, ToBase: ratFrac(1000000, 1)},
	{Symbol: "lb", Name: "pound", NamePlur: "pounds", Category: CategoryMass, ToBase: ratFrac(45359237, 100000)},
	{Symbol: "oz", Name: "ounce", NamePlur: "ounces", Category: CategoryMass, ToBase: ratFrac(45359237, 1600000)},

	// Length (base: meter)
	{Symbol: "mm", Name: "millimeter", NamePlur: "millimeters", Category: CategoryLength, ToBase: ratFrac(1, 1000)},
	{Symbol: "cm", Name: "centimeter", NamePlur: "centimeters", Category: CategoryLength, ToBase: ratFrac(1, 100)},
	{Symbol: "m", Name: "meter", NamePlur: "meters", Category: CategoryLength, ToBase: ratFrac(1, 1)},
	{Symbol: "km", Name: "kilometer", NamePlur: "kilometers", Category: CategoryLength, ToBase: ratFrac(1000, 1)},
	{Symbol: "in", Name: "inch", NamePlur: "inches", Category: CategoryLength, ToBase: ratFrac(127, 5000)},
	{Symbol: "ft", Name: "foot", NamePlur: "feet", Category: CategoryLength, ToBase: ratFrac(381, 1250)},
	{Symbol: "yd", Name: "yard", NamePlur: "yards", Category: CategoryLength, ToBase: ratFrac(1143, 1250)},
	{Symbol: "mi", Name: "mile", NamePlur: "miles", Category: CategoryLength, ToBase: ratFrac(201168, 125)},
	{Symbol: "nmi", Name: "nautical_mile", NamePlur: "nautical_miles", Category: CategoryLength, ToBase: ratFrac(1852, 1)},

	// Volume (base: liter)
	{Symbol: "mL", Name: "milliliter", NamePlur: "milliliters", Category: CategoryVolume, ToBase: ratFrac(1, 1000)},
	{Symbol: "L", Name: "liter", NamePlur: "liters", Category: CategoryVolume, ToBase: ratFrac(1, 1)},
	{Symbol: "m3", Name: "cubic_meter", NamePlur: "cubic_meters", Category: CategoryVolume, ToBase: ratFrac(1000, 1)},
	{Symbol: "cm3", Name: "cubic_centimeter", NamePlur: "cubic_centimeters", Category: CategoryVolume, ToBase: ratFrac(1, 1000)},
	{Symbol: "gal", Name: "gallon", NamePlur: "gallons", Category: CategoryVolume, ToBase: ratFrac(473176473, 125000000)},
	{Symbol: "qt", Name: "quart", NamePlur: "quarts", Category: CategoryVolume, ToBase: ratFrac(473176473, 500000000)},
	{Symbol: "pt", Name: "pint", NamePlur: "pints", Category: CategoryVolume, ToBase: ratFrac(473176473, 1000000000)},
	{Symbol: "floz", Name: "fluid_ounce", NamePlur: "fluid_ounces", Category: CategoryVolume, ToBase: ratFrac(473176473, 16000000000)},

	// Duration (base: second for time units; month/year are Calendar, see doc comment)
	{Symbol: "us", Name: "microsecond", NamePlur: "microseconds", Category: CategoryDuration, ToBase: ratFrac(1, 1000000)},
	{Symbol: "ms", Name: "millisecond", NamePlur: "milliseconds", Category: CategoryDuration, ToBase: ratFrac(1, 1000)},
	{Symbol: "s", Name: "second", NamePlur: "seconds", Category: CategoryDuration, ToBase: ratFrac(1, 1)},
	{Symbol: "min", Name: "minute", NamePlur: "minutes", Category: CategoryDuration, ToBase: ratFrac(60, 1)},
	{Symbol: "hr", Name: "hour", NamePlur: "hours", Category: CategoryDuration, ToBase: ratFrac(3600, 1)},
	{Symbol: "d", Name: "day", NamePlur: "days", Category: CategoryDuration, ToBase: ratFrac(86400, 1)},
	{Symbol: "wk", Name: "week", NamePlur: "weeks", Category: CategoryDuration, ToBase: ratFrac(604800, 1)},
	{Symbol: "mo", Name: "month", NamePlur: "months", Category: CategoryDuration, Calendar: true},
	{Symbol: "yr", Name: "year", NamePlur: "years", Category: CategoryDuration, Calendar: true},

	// Temperature (base: kelvin)
	{Symbol: "K", Name: "kelvin", NamePlur: "kelvin", Category: CategoryTemperature, ToBase: ratFrac(1, 1), PreOffset: new(big.Rat)},
	{Symbol: "C", Name: "celsius", NamePlur: "celsius", Category: CategoryTemperature, ToBase: ratFrac(1, 1), PreOffset: ratFrac(27315, 100)},
	{Symbol: "F", Name: "fahrenheit", NamePlur: "fahrenheit", Category: CategoryTemperature, ToBase: ratFrac(5, 9), PreOffset: ratFrac(45967, 100)},

	// Power (base: watt)
	{Symbol: "W", Name: "watt", NamePlur: "watts", Category: CategoryPower, ToBase: ratFrac(1, 1)},
	{Symbol: "kW", Name: "kilowatt", NamePlur: "kilowatts", Category: CategoryPower, ToBase: ratFrac(1000, 1)},
	{Symbol: "MW", Name: "megawatt", NamePlur: "megawatts", Category: CategoryPower, ToBase: ratFrac(1000000, 1)},
	{Symbol: "hp", Name: "horsepower", NamePlur: "horsepower", Category: CategoryPower, ToBase: ratFrac(37284993579113511, 50000000000000)},

	// Force (base: newton)
	{Symbol: "N", Name: "newton", NamePlur: "newtons", Category: CategoryForce, ToBase: ratFrac(1, 1)},
	{Symbol: "kN", Name: "kilonewton", NamePlur: "kilonewtons", Category: CategoryForce, ToBase: ratFrac(1000, 1)},
	{Symbol: "lbf", Name: "pound_force", NamePlur: "pounds_force", Category: CategoryForce, ToBase: ratFrac(8896443230521, 2000000000000)},

	// Pressure (base: pascal)
	{Symbol: "Pa", Name: "pascal", NamePlur: "pascals", Category: CategoryPressure, ToBase: ratFrac(1, 1)},
	{Symbol: "kPa", Name: "kilopascal", NamePlur: "kilopascals", Category: CategoryPressure, ToBase: ratFrac(1000, 1)},
	{Symbol: "bar", Name: "bar", NamePlur: "bars", Category: CategoryPressure, ToBase: ratFrac(100000, 1)},
	{Symbol: "atm", Name: "atmosphere", NamePlur: "atmospheres", Category: CategoryPressure, ToBase: ratFrac(101325, 1)},
	{Symbol: "psi", Name: "psi", NamePlur: "psi", Category: CategoryPressure, ToBase: ratFrac(8896443230521, 1290320000)},
	{Symbol: "torr", Name: "torr", NamePlur: "torr", Category: CategoryPressure, ToBase: ratFrac(101325, 760)},
	{Symbol: "mmHg", Name: "mmHg", NamePlur: "mmHg", Category: CategoryPressure, ToBase: ratFrac(101325, 760)},

	// Energy (base: joule)
	{Symbol: "J", Name: "joule", NamePlur: "joules", Category: CategoryEnergy, ToBase: ratFrac(1, 1)},
	{Symbol: "kJ", Name: "kilojoule", NamePlur: "kilojoules", Category: CategoryEnergy, ToBase: ratFrac(1000, 1)},
	{Symbol: "Wh", Name: "watt_hour", NamePlur: "watt_hours", Category: CategoryEnergy, ToBase: ratFrac(3600, 1)},
	{Symbol: "kWh", Name: "kilowatt_hour", NamePlur: "kilowatt_hours", Category: CategoryEnergy, ToBase: ratFrac(3600000, 1)},
	{Symbol: "cal", Name: "calorie", NamePlur: "calories", Category: CategoryEnergy, ToBase: ratFrac(4184, 1000)},
	{Symbol: "kcal", Name: "kilocalorie", NamePlur: "kilocalories", Category: CategoryEnergy, ToBase: ratFrac(4184, 1)},
	{Symbol: "BTU", Name: "BTU", NamePlur: "BTU", Category: CategoryEnergy, ToBase: ratFrac(52752792631, 50000000)},

	// Frequency (base: hertz)
	{Symbol: "Hz", Name: "hertz", NamePlur: "hertz", Category: CategoryFrequency, ToBase: ratFrac(1, 1)},
	{Symbol: "kHz", Name: "kilohertz", NamePlur: "kilohertz", Category: CategoryFrequency, ToBase: ratFrac(1000, 1)},
	{Symbol: "MHz", Name: "megahertz", NamePlur: "megahertz", Category: CategoryFrequency, ToBase: ratFrac(1000000, 1)},
	{Symbol: "GHz", Name: "gigahertz", NamePlur: "gigahertz", Category: CategoryFrequency, ToBase: ratFrac(1000000000, 1)},

	// Data size (base: byte; decimal and binary prefixes)
	{Symbol: "B", Name: "byte", NamePlur: "bytes", Category: CategoryDataSize, ToBase: ratFrac(1, 1)},
	{Symbol: "kB", Name: "kilobyte", NamePlur: "kilobytes", Category: CategoryDataSize, ToBase: ratFrac(1000, 1)},
	{Symbol: "MB", Name: "megabyte", NamePlur: "megabytes", Category: CategoryDataSize, ToBase: ratFrac(1000000, 1)},
	{Symbol: "GB", Name: "gigabyte", NamePlur: "gigabytes", Category: CategoryDataSize, ToBase: ratFrac(1000000000, 1)},
	{Symbol: "TB", Name: "terabyte", NamePlur: "terabytes", Category: CategoryDataSize, ToBase: ratFrac(1000000000000, 1)},
	{Symbol: "PB", Name: "petabyte", NamePlur: "petabytes", Category: CategoryDataSize, ToBase: ratFrac(1000000000000000, 1)},
	{Symbol: "KiB", Name: "kibibyte", NamePlur: "kibibytes", Category: CategoryDataSize, ToBase: ratFrac(1024, 1)},
	{Symbol: "MiB", Name: "mebibyte", NamePlur: "mebibytes", Category: CategoryDataSize, ToBase: ratFrac(1048576, 1)},
	{Symbol: "GiB", Name: "gibibyte", NamePlur: "gibibytes", Category: CategoryDataSize, ToBase: ratFrac(1073741824, 1)},
	{Symbol: "TiB", Name: "tebibyte", NamePlur: "tebibytes", Category: CategoryDataSize, ToBase: ratFrac(1099511627776, 1)},

	// Money — fixed currency set, no conversion factors between members.
	{Symbol: "USD", Name: "US dollar", NamePlur: "US dollars", Category: CategoryMoney, Currency: true},
	{Symbol: "EUR", Name: "euro", NamePlur: "euros", Category: CategoryMoney, Currency: true},
	{Symbol: "GBP", Name: "British pound", NamePlur: "British pounds", Category: CategoryMoney, Currency: true},
	{Symbol: "JPY", Name: "Japanese yen", NamePlur: "Japanese yen", Category: CategoryMoney, Currency: true},
	{Symbol: "CNY", Name: "Chinese yuan", NamePlur: "Chinese yuan", Category: CategoryMoney, Currency: true},
	{Symbol: "CHF", Name: "Swiss franc", NamePlur: "Swiss francs", Category: CategoryMoney, Currency: true},
	{Symbol: "CAD", Name: "Canadian dollar", NamePlur: "Canadian dollars", Category: CategoryMoney, Currency: true},
	{Symbol: "AUD", Name: "Australian dollar", NamePlur: "Australian dollars", Category: CategoryMoney, Currency: true},
	{Symbol: "INR", Name: "Indian rupee", NamePlur: "Indian rupees", Category: CategoryMoney, Currency: true},
}

var unitsBySymbol map[string]*UnitDef

func init() {
	unitsBySymbol = make(map[string]*UnitDef, len(catalogue))
	for _, u := range catalogue {
		unitsBySymbol[u.Symbol] = u
	}
}

// LookupUnit resolves an exact, case-sensitive unit symbol.
func LookupUnit(symbol string) (*UnitDef, bool) {
	u, ok := unitsBySymbol[symbol]
	return u, ok
}

// MustLookupUnit panics if symbol is not in the catalogue; only safe for
// catalogue symbols baked into Go source (tests, constructors), never for
// symbols sourced from documents.
func MustLookupUnit(symbol string) *UnitDef {
	u, ok := LookupUnit(symbol)
	if !ok {
		panic("model: unknown unit symbol " + symbol)
	}
	return u
}

// Convert converts amount (expressed in `from`) into `to`'s unit, when both
// share a category. Temperature uses the affine PreOffset/ToBase form.
// Calendar units (month, year) are never convertible — see UnitDef doc.
// Money requires identical currency.
func Convert(amount *big.Rat, from, to *UnitDef) (*big.Rat, error) {
	if from.Category != to.Category {
		return nil, incompatibleCategoriesErr(from, to)
	}
	if from.Category == CategoryMoney {
		if from.Symbol != to.Symbol {
			return nil, currencyMismatchErr(from.Symbol, to.Symbol)
		}
		return new(big.Rat).Set(amount), nil
	}
	if from.Calendar || to.Calendar {
		return nil, calendarConversionErr(from, to)
	}
	// base = (amount + from.PreOffset) * from.ToBase
	base := new(big.Rat)
	if from.HasOffset() {
		base.Add(amount, from.PreOffset)
	} else {
		base.Set(amount)
	}
	base.Mul(base, from.ToBase)
	// result = base/to.ToBase - to.PreOffset
	result := new(big.Rat).Quo(base, to.ToBase)
	if to.HasOffset() {
		result.Sub(result, to.PreOffset)
	}
	return result, nil
}

func incompatibleCategoriesErr(from, to *UnitDef) error {
	return fmt.Errorf("cannot convert %s (%s) to %s (%s)", from.Symbol, from.Category, to.Symbol, to.Category)
}

func currencyMismatchErr(from, to string) error {
	return fmt.Errorf("cannot convert currency %s to %s", from, to)
}

func calendarConversionErr(from, to *UnitDef) error {
	return fmt.Errorf("calendar unit %s cannot be converted to %s", from.Symbol, to.Symbol)
}

// CompatibleCategory reports whether two units share a category (the
// condition under which the evaluator converts rather than falling back to
// a plain number, per section 4.2.3).
func CompatibleCategory(a, b *UnitDef) bool {
	return a.Category == b.Category
}
