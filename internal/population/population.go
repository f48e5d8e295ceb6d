/*

This file contains the user population model: randomized creation of new
users each day and the growing registry of everyone created so far.

*/

package population

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/auth-labs/worldsim/internal/logger"
	"github.com/auth-labs/worldsim/internal/oracle"
	"github.com/auth-labs/worldsim/internal/types"
	"github.com/auth-labs/worldsim/internal/utils"
)

// GrowthFunc returns the number of users to create on the given day.
// It is the extension point for non-constant adoption curves.
type GrowthFunc func(day int) int

// Population owns the set of active users. Users are appended in creation
// order and never removed; iteration order is insertion order.
type Population struct {
	params types.SimulationParameters
	prices oracle.PriceSource
	rng    *rand.Rand
	growth GrowthFunc
	users  []*types.User
	logger zerolog.Logger
}

// New creates an empty population. A nil growth function falls back to the
// constant NewUsersPerDay parameter.
func New(params types.SimulationParameters, prices oracle.PriceSource, rng *rand.Rand, growth GrowthFunc) (*Population, error) {
	if prices == nil {
		return nil, fmt.Errorf("price source cannot be nil")
	}
	if rng == nil {
		return nil, fmt.Errorf("random source cannot be nil")
	}
	if growth == nil {
		growth = func(day int) int { return params.NewUsersPerDay }
	}
	return &Population{
		params: params,
		prices: prices,
		rng:    rng,
		growth: growth,
		logger: logger.GetForComponent("population"),
	}, nil
}

// SpawnDay creates the day's new users and adds them to the active set.
// It returns the number created.
func (p *Population) SpawnDay(day int) (int, error) {
	count := p.growth(day)
	for i := 0; i < count; i++ {
		user, err := p.newUser()
		if err != nil {
			return i, fmt.Errorf("failed to create user on day %d: %w", day, err)
		}
		p.users = append(p.users, user)
	}

	p.logger.Debug().
		Int("day", day).
		Int("created", count).
		Int("active", len(p.users)).
		Msg("Spawned daily users")
	return count, nil
}

// Users returns the active set in insertion order. The slice is shared
// with the population; callers must not reorder it.
func (p *Population) Users() []*types.User {
	return p.users
}

// Size returns the number of active users.
func (p *Population) Size() int {
	return len(p.users)
}

// newUser samples a fresh user with a random balance profile, a lifetime
// transaction rate, and a unique id.
func (p *Population) newUser() (*types.User, error) {
	balances, err := p.sampleBalances()
	if err != nil {
		return nil, err
	}
	balances[types.AUTH] = 0

	return &types.User{
		ID:           uuid.New().String(),
		Balances:     balances,
		DailyTxnRate: p.sampleDailyTxnRate(),
	}, nil
}

// sampleDailyTxnRate draws the user's expected transactions per day,
// fixed for the user's lifetime.
func (p *Population) sampleDailyTxnRate() float64 {
	return p.uniform(p.params.MinDailyTxnRate, p.params.MaxDailyTxnRate)
}

// sampleBalances draws the two-tier starting balance profile: most users
// hold a single asset, the rest a weighted split across all backing assets.
//
// Single-asset branch selection intentionally checks each branch's
// unconditional probability in sequence without re-normalizing the
// remaining mass; the resulting selection skew is part of the model.
func (p *Population) sampleBalances() (map[types.Asset]float64, error) {
	balances := make(map[types.Asset]float64, len(types.BackingAssets())+1)

	if p.rng.Float64() < p.params.SingleAssetProbability {
		var asset types.Asset
		switch {
		case p.rng.Float64() < p.params.UsdtOnlyProbability:
			asset = types.USDT
		case p.rng.Float64() < p.params.EthOnlyProbability:
			asset = types.ETH
		default:
			asset = types.SOL
		}

		usd := p.uniform(p.params.SingleAssetMinUSD, p.params.SingleAssetMaxUSD)
		units, err := p.usdToUnits(usd, asset)
		if err != nil {
			return nil, err
		}
		balances[asset] = units
		return balances, nil
	}

	totalUSD := p.uniform(p.params.MultiAssetMinUSD, p.params.MultiAssetMaxUSD)
	for _, asset := range types.BackingAssets() {
		units, err := p.usdToUnits(totalUSD*p.params.MultiAssetWeights[asset], asset)
		if err != nil {
			return nil, err
		}
		balances[asset] = units
	}
	return balances, nil
}

func (p *Population) usdToUnits(usd float64, asset types.Asset) (float64, error) {
	price, err := p.prices.Price(asset)
	if err != nil {
		return 0, err
	}
	return utils.UsdToAssetUnits(usd, price)
}

func (p *Population) uniform(min, max float64) float64 {
	return p.rng.Float64()*(max-min) + min
}
