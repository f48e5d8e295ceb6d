/*

This file contains the collateral pool backing the AUTH basket token.

The pool holds quantities of each backing asset plus the total basket
supply. Contributions issue new basket units by linear dilution: the
contributor's share of the post-contribution pool equals their dollar
share of the post-contribution value. There is no redemption operation
yet; burning basket units to claim proportional collateral is a planned
extension of this type.

*/

package pool

import (
	"errors"
	"fmt"

	"github.com/auth-labs/worldsim/internal/oracle"
	"github.com/auth-labs/worldsim/internal/types"
)

var (
	// ErrNonPositiveSeedSupply is returned when a pool is constructed with
	// a zero or negative basket supply. The seed must be positive so the
	// basket price is well-defined from the first query.
	ErrNonPositiveSeedSupply = errors.New("seed basket supply must be positive")

	// ErrNegativeAmount is returned when a negative quantity is contributed.
	ErrNegativeAmount = errors.New("contribution amount cannot be negative")
)

// CollateralPool is the shared reserve whose aggregate dollar value
// determines the basket token's price. It is mutated only through
// Contribute; all other methods are read-only.
type CollateralPool struct {
	prices   oracle.PriceSource
	balances map[types.Asset]float64
	supply   float64
}

// New creates a pool with the given seed balances and basket supply.
// The price source must quote every backing asset; this is checked here
// so valuation can never fail mid-run.
func New(prices oracle.PriceSource, seedBalances map[types.Asset]float64, seedSupply float64) (*CollateralPool, error) {
	if prices == nil {
		return nil, fmt.Errorf("price source cannot be nil")
	}
	if seedSupply <= 0 {
		return nil, fmt.Errorf("%w: got %f", ErrNonPositiveSeedSupply, seedSupply)
	}

	balances := make(map[types.Asset]float64, len(types.BackingAssets()))
	for _, a := range types.BackingAssets() {
		if _, err := prices.Price(a); err != nil {
			return nil, fmt.Errorf("price source cannot value pool: %w", err)
		}
		balances[a] = 0
	}
	for a, quantity := range seedBalances {
		if quantity < 0 {
			return nil, fmt.Errorf("%w: %f %s", ErrNegativeAmount, quantity, a)
		}
		balances[a] = quantity
	}

	return &CollateralPool{
		prices:   prices,
		balances: balances,
		supply:   seedSupply,
	}, nil
}

// DollarValue returns the aggregate USD value of the backing assets.
// Contributed basket tokens are tracked as balances but carry no backing
// value of their own, so they are excluded here.
func (p *CollateralPool) DollarValue() (float64, error) {
	var sum float64
	for _, a := range types.BackingAssets() {
		price, err := p.prices.Price(a)
		if err != nil {
			return 0, fmt.Errorf("failed to value pool: %w", err)
		}
		sum += p.balances[a] * price
	}
	return sum, nil
}

// BasketPrice returns the USD price of one basket unit: pool dollar value
// divided by basket supply. The supply is positive by construction.
func (p *CollateralPool) BasketPrice() (float64, error) {
	value, err := p.DollarValue()
	if err != nil {
		return 0, err
	}
	return value / p.supply, nil
}

// Contribute deposits amount units of asset into the pool and returns the
// number of basket units issued for the deposit.
//
// The issuance uses the pool value captured before the balance mutation.
// Computing it after would double-count the fresh deposit and under-issue.
func (p *CollateralPool) Contribute(asset types.Asset, amount float64) (float64, error) {
	if !asset.Valid() {
		return 0, fmt.Errorf("cannot contribute unknown asset %q", asset)
	}
	if amount < 0 {
		return 0, fmt.Errorf("%w: %f %s", ErrNegativeAmount, amount, asset)
	}

	price, err := p.assetPrice(asset)
	if err != nil {
		return 0, err
	}
	valueBefore, err := p.DollarValue()
	if err != nil {
		return 0, err
	}

	dollarContribution := amount * price
	issued := dollarContribution / (valueBefore + dollarContribution) * p.supply

	p.balances[asset] += amount
	p.supply += issued
	return issued, nil
}

// Supply returns the total basket units issued. It only ever increases.
func (p *CollateralPool) Supply() float64 {
	return p.supply
}

// Balance returns the pool's holding of the given asset.
func (p *CollateralPool) Balance(asset types.Asset) float64 {
	return p.balances[asset]
}

// Balances returns a copy of the pool's per-asset holdings.
func (p *CollateralPool) Balances() map[types.Asset]float64 {
	out := make(map[types.Asset]float64, len(p.balances))
	for a, quantity := range p.balances {
		out[a] = quantity
	}
	return out
}

// assetPrice values one unit of the given asset, answering for the basket
// token itself so spent AUTH can be contributed back to the pool.
func (p *CollateralPool) assetPrice(asset types.Asset) (float64, error) {
	if asset == types.AUTH {
		return p.BasketPrice()
	}
	return p.prices.Price(asset)
}
