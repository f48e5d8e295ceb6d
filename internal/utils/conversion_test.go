package utils

import (
	"errors"
	"math"
	"testing"
)

func TestUsdToAssetUnits(t *testing.T) {
	units, err := UsdToAssetUnits(320, 3200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 0.1; math.Abs(units-want) > 1e-12 {
		t.Fatalf("units=%f, want %f", units, want)
	}
}

func TestAssetUnitsToUsd(t *testing.T) {
	usd, err := AssetUnitsToUsd(0.5, 130)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 65.0; math.Abs(usd-want) > 1e-12 {
		t.Fatalf("usd=%f, want %f", usd, want)
	}
}

func TestConversion_RejectsBadPrices(t *testing.T) {
	for _, price := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := UsdToAssetUnits(100, price); !errors.Is(err, ErrNonPositivePrice) {
			t.Fatalf("price %f: err=%v, want ErrNonPositivePrice", price, err)
		}
		if _, err := AssetUnitsToUsd(1, price); !errors.Is(err, ErrNonPositivePrice) {
			t.Fatalf("price %f: err=%v, want ErrNonPositivePrice", price, err)
		}
	}
}

func TestConversion_RejectsNonFiniteAmounts(t *testing.T) {
	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := UsdToAssetUnits(amount, 100); !errors.Is(err, ErrNotFinite) {
			t.Fatalf("amount %f: err=%v, want ErrNotFinite", amount, err)
		}
		if _, err := AssetUnitsToUsd(amount, 100); !errors.Is(err, ErrNotFinite) {
			t.Fatalf("amount %f: err=%v, want ErrNotFinite", amount, err)
		}
	}
}
