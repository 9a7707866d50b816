package ops

import (
	"math/big"
	"testing"

	"github.com/decisionml/decisionml/model"
)

func TestArithmeticPriceQuantity(t *testing.T) {
	price := model.NumberFromInt(100)
	qty := model.NumberFromInt(5)
	got, err := Arithmetic(model.Multiply, price, qty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Number.Cmp(big.NewRat(500, 1)) != 0 {
		t.Errorf("got %s, want 500", got.Number.RatString())
	}
}

func TestMoneyMismatchIsRuntimeError(t *testing.T) {
	usd := model.UnitValue(big.NewRat(100, 1), model.MustLookupUnit("USD"))
	eur := model.UnitValue(big.NewRat(80, 1), model.MustLookupUnit("EUR"))
	if _, err := Arithmetic(model.Add, usd, eur); err == nil {
		t.Fatal("expected a currency mismatch error")
	}
	if _, err := Compare(model.Gt, usd, eur); err == nil {
		t.Fatal("expected a currency mismatch error on comparison")
	}
}

func TestUnitRoundTrip(t *testing.T) {
	km := model.MustLookupUnit("km")
	mi := model.MustLookupUnit("mi")
	v := big.NewRat(42, 1)
	toMiles, err := model.Convert(v, km, mi)
	if err != nil {
		t.Fatal(err)
	}
	back, err := model.Convert(toMiles, mi, km)
	if err != nil {
		t.Fatal(err)
	}
	diff := new(big.Rat).Sub(back, v)
	diff.Abs(diff)
	if diff.Cmp(big.NewRat(1, 1000000)) > 0 {
		t.Errorf("round trip drifted: got %s want %s", back.RatString(), v.RatString())
	}
}

func TestDateLeapYearAddOneYear(t *testing.T) {
	leap := model.DateValue{Year: 2024, Month: 2, Day: 29}
	oneYear := model.UnitValue(big.NewRat(1, 1), model.MustLookupUnit("yr"))
	got, err := Arithmetic(model.Add, model.Date(leap), oneYear)
	if err != nil {
		t.Fatal(err)
	}
	if got.Date.Year != 2025 || got.Date.Month != 2 || got.Date.Day != 28 {
		t.Errorf("got %+v, want 2025-02-28", got.Date)
	}
}

func TestPercentageApplication(t *testing.T) {
	n := model.NumberFromInt(200)
	p := model.Percentage(big.NewRat(10, 1))
	got, err := Arithmetic(model.Add, n, p)
	if err != nil {
		t.Fatal(err)
	}
	if got.Number.Cmp(big.NewRat(220, 1)) != 0 {
		t.Errorf("200 + 10%% = %s, want 220", got.Number.RatString())
	}

	mult, err := Arithmetic(model.Multiply, p, n)
	if err != nil {
		t.Fatal(err)
	}
	if mult.Number.Cmp(big.NewRat(20, 1)) != 0 {
		t.Errorf("10%% * 200 = %s, want 20", mult.Number.RatString())
	}
}

func TestDivisionByZero(t *testing.T) {
	if _, err := Arithmetic(model.Divide, model.NumberFromInt(1), model.NumberFromInt(0)); err == nil {
		t.Fatal("expected division-by-zero error")
	}
}

func TestCalendarConversionRejected(t *testing.T) {
	month := model.MustLookupUnit("mo")
	second := model.MustLookupUnit("s")
	if _, err := model.Convert(big.NewRat(1, 1), month, second); err == nil {
		t.Fatal("expected calendar conversion to be rejected")
	}
}
