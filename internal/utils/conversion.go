/*
This file contains common utility functions for converting between dollar
amounts and asset units at an oracle price.
*/

package utils

import (
	"errors"
	"fmt"
	"math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrNotFinite        = errors.New("value is not finite")
	ErrNonPositivePrice = errors.New("price is not positive")
)

// UsdToAssetUnits converts a USD amount to asset units at the given price.
func UsdToAssetUnits(usd, priceUSD float64) (float64, error) {
	if math.IsNaN(usd) || math.IsInf(usd, 0) {
		return 0, fmt.Errorf("%w: usd amount is %f", ErrNotFinite, usd)
	}
	if priceUSD <= 0 || math.IsNaN(priceUSD) || math.IsInf(priceUSD, 0) {
		return 0, fmt.Errorf("%w: %f", ErrNonPositivePrice, priceUSD)
	}
	return usd / priceUSD, nil
}

// AssetUnitsToUsd converts asset units to a USD amount at the given price.
func AssetUnitsToUsd(units, priceUSD float64) (float64, error) {
	if math.IsNaN(units) || math.IsInf(units, 0) {
		return 0, fmt.Errorf("%w: unit amount is %f", ErrNotFinite, units)
	}
	if priceUSD <= 0 || math.IsNaN(priceUSD) || math.IsInf(priceUSD, 0) {
		return 0, fmt.Errorf("%w: %f", ErrNonPositivePrice, priceUSD)
	}
	return units * priceUSD, nil
}
