/*

This file contains the price oracle used by the world simulator.

Backing-asset prices are static constants for now. The PriceSource
interface is the seam where a stochastic price process would plug in
later without touching the pool or the engine.

*/

package oracle

import (
	"errors"
	"fmt"

	"github.com/auth-labs/worldsim/internal/types"
)

// ErrUnknownAsset is returned when a price is requested for an asset the
// source does not quote. The basket token is never quoted here; its price
// is derived from the collateral pool.
var ErrUnknownAsset = errors.New("no price for asset")

// PriceSource quotes a positive USD price per unit of an asset.
type PriceSource interface {
	Price(asset types.Asset) (float64, error)
}

// Static is a PriceSource backed by a fixed price table.
type Static struct {
	prices map[types.Asset]float64
}

// NewStatic creates a static oracle from a price table. Every backing
// asset must have a positive price.
func NewStatic(prices map[types.Asset]float64) (*Static, error) {
	for _, a := range types.BackingAssets() {
		price, ok := prices[a]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, a)
		}
		if price <= 0 {
			return nil, fmt.Errorf("price for %s must be positive, got %f", a, price)
		}
	}

	// Copy so later mutation of the caller's map cannot skew a running sim.
	table := make(map[types.Asset]float64, len(prices))
	for a, p := range prices {
		table[a] = p
	}
	return &Static{prices: table}, nil
}

// Price returns the USD price per unit of the given asset.
func (s *Static) Price(asset types.Asset) (float64, error) {
	price, ok := s.prices[asset]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAsset, asset)
	}
	return price, nil
}
