package car

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRecomputeTotal(t *testing.T) {
	c := &Car{
		THS:      dec("100.00"),
		Sklad:    dec("50.00"),
		DaysCost: dec("12.50"),
		Prof:     dec("37.50"),
	}
	got := RecomputeTotal(c)
	if !got.Equal(dec("200.00")) {
		t.Fatalf("expected total 200.00, got %s", got)
	}
	if !c.Total.Equal(got) {
		t.Fatalf("expected total written back, got %s", c.Total)
	}
}

func TestRecomputeTotalZero(t *testing.T) {
	c := &Car{}
	if got := RecomputeTotal(c); !got.Equal(decimal.Zero) {
		t.Fatalf("expected zero total, got %s", got)
	}
}

func TestApplyCostsPartialUpdate(t *testing.T) {
	c := &Car{THS: dec("100.00"), Sklad: dec("50.00")}
	days := dec("30.00")
	ApplyCosts(c, CostInput{DaysCost: &days})

	if !c.THS.Equal(dec("100.00")) || !c.Sklad.Equal(dec("50.00")) {
		t.Fatalf("unrelated components must not change")
	}
	if !c.DaysCost.Equal(dec("30.00")) {
		t.Fatalf("expected days_cost 30.00, got %s", c.DaysCost)
	}
	if !c.Total.Equal(dec("180.00")) {
		t.Fatalf("expected total 180.00, got %s", c.Total)
	}
}

func TestApplyCostsSkladCombined(t *testing.T) {
	c := &Car{Sklad: dec("200.00")}
	combined := dec("350.00")
	ApplyCosts(c, CostInput{SkladCombined: &combined})

	if !c.Sklad.Equal(dec("200.00")) {
		t.Fatalf("sklad must stay put, got %s", c.Sklad)
	}
	if !c.Prof.Equal(dec("150.00")) {
		t.Fatalf("expected prof 150.00 (combined - sklad), got %s", c.Prof)
	}
	if !c.Total.Equal(dec("350.00")) {
		t.Fatalf("expected total 350.00, got %s", c.Total)
	}
}

func TestApplyCostsSkladCombinedNegativeProf(t *testing.T) {
	c := &Car{Sklad: dec("400.00")}
	combined := dec("350.00")
	ApplyCosts(c, CostInput{SkladCombined: &combined})

	if !c.Prof.Equal(dec("-50.00")) {
		t.Fatalf("expected prof -50.00, got %s", c.Prof)
	}
}
