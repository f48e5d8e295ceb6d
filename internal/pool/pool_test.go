package pool

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/auth-labs/worldsim/internal/oracle"
	"github.com/auth-labs/worldsim/internal/types"
)

func testOracle(t *testing.T) *oracle.Static {
	t.Helper()
	prices, err := oracle.NewStatic(map[types.Asset]float64{
		types.USDT: 1,
		types.ETH:  3200,
		types.SOL:  130,
	})
	if err != nil {
		t.Fatalf("NewStatic err=%v", err)
	}
	return prices
}

func newSeededPool(t *testing.T) *CollateralPool {
	t.Helper()
	p, err := New(testOracle(t), map[types.Asset]float64{types.USDT: 1}, 1)
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	return p
}

func mustValue(t *testing.T, p *CollateralPool) float64 {
	t.Helper()
	v, err := p.DollarValue()
	if err != nil {
		t.Fatalf("DollarValue err=%v", err)
	}
	return v
}

func mustPrice(t *testing.T, p *CollateralPool) float64 {
	t.Helper()
	v, err := p.BasketPrice()
	if err != nil {
		t.Fatalf("BasketPrice err=%v", err)
	}
	return v
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNew_RejectsNonPositiveSeedSupply(t *testing.T) {
	for _, supply := range []float64{0, -1} {
		_, err := New(testOracle(t), nil, supply)
		if !errors.Is(err, ErrNonPositiveSeedSupply) {
			t.Fatalf("supply=%f: want ErrNonPositiveSeedSupply, got %v", supply, err)
		}
	}
}

func TestNew_RejectsNegativeSeedBalance(t *testing.T) {
	_, err := New(testOracle(t), map[types.Asset]float64{types.ETH: -0.5}, 1)
	if !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("want ErrNegativeAmount, got %v", err)
	}
}

func TestContribute_LinearDilution(t *testing.T) {
	p := newSeededPool(t)

	// Seeded with 1 USDT and supply 1: contributing 1 USDT doubles the
	// pool value, so the contributor's post-contribution share is half of
	// half the supply: issued = 1/(1+1) * 1 = 0.5.
	issued, err := p.Contribute(types.USDT, 1)
	if err != nil {
		t.Fatalf("Contribute err=%v", err)
	}
	if !approxEqual(issued, 0.5) {
		t.Fatalf("issued=%f, want 0.5", issued)
	}
	if got := mustValue(t, p); !approxEqual(got, 2) {
		t.Fatalf("pool value=%f, want 2", got)
	}
	if got := p.Supply(); !approxEqual(got, 1.5) {
		t.Fatalf("supply=%f, want 1.5", got)
	}
	if got := mustPrice(t, p); !approxEqual(got, 2.0/1.5) {
		t.Fatalf("basket price=%f, want %f", got, 2.0/1.5)
	}
}

func TestContribute_ZeroIsNoOp(t *testing.T) {
	p := newSeededPool(t)
	valueBefore := mustValue(t, p)
	supplyBefore := p.Supply()

	issued, err := p.Contribute(types.ETH, 0)
	if err != nil {
		t.Fatalf("Contribute err=%v", err)
	}
	if issued != 0 {
		t.Fatalf("issued=%f, want 0", issued)
	}
	if mustValue(t, p) != valueBefore || p.Supply() != supplyBefore {
		t.Fatal("zero contribution changed pool state")
	}
}

func TestContribute_RejectsNegativeAmount(t *testing.T) {
	p := newSeededPool(t)
	if _, err := p.Contribute(types.USDT, -1); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("want ErrNegativeAmount, got %v", err)
	}
}

func TestContribute_RejectsUnknownAsset(t *testing.T) {
	p := newSeededPool(t)
	if _, err := p.Contribute(types.Asset("doge"), 1); err == nil {
		t.Fatal("want error for unknown asset, got nil")
	}
}

func TestContribute_AuthExcludedFromValuation(t *testing.T) {
	p := newSeededPool(t)

	// Spent AUTH flows back into the pool as a tracked balance but adds no
	// backing value: the existing holders absorb the issued dilution.
	basketPrice := mustPrice(t, p)
	issued, err := p.Contribute(types.AUTH, 2)
	if err != nil {
		t.Fatalf("Contribute err=%v", err)
	}
	wantIssued := 2 * basketPrice / (1 + 2*basketPrice) * 1
	if !approxEqual(issued, wantIssued) {
		t.Fatalf("issued=%f, want %f", issued, wantIssued)
	}
	if got := mustValue(t, p); !approxEqual(got, 1) {
		t.Fatalf("pool value=%f, want 1 (AUTH carries no backing value)", got)
	}
	if got := p.Balance(types.AUTH); !approxEqual(got, 2) {
		t.Fatalf("AUTH balance=%f, want 2", got)
	}
}

func TestInvariants_HoldAcrossContributionSequences(t *testing.T) {
	p := newSeededPool(t)
	rng := rand.New(rand.NewSource(7))
	backing := types.BackingAssets()

	for i := 0; i < 1000; i++ {
		asset := backing[rng.Intn(len(backing))]
		supplyBefore := p.Supply()

		if _, err := p.Contribute(asset, rng.Float64()*10); err != nil {
			t.Fatalf("Contribute err=%v", err)
		}

		if p.Supply() < supplyBefore {
			t.Fatalf("supply decreased: %f -> %f", supplyBefore, p.Supply())
		}
		if p.Supply() <= 0 {
			t.Fatalf("supply not positive: %f", p.Supply())
		}
		if v := mustValue(t, p); v < 0 {
			t.Fatalf("pool value negative: %f", v)
		}
		// Basket price must always recompute consistently from current
		// state, with no drift against a stale cache.
		if got, want := mustPrice(t, p), mustValue(t, p)/p.Supply(); !approxEqual(got, want) {
			t.Fatalf("basket price drifted: got %f, want %f", got, want)
		}
	}
}
