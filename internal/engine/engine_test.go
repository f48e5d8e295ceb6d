package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/auth-labs/worldsim/internal/config"
	"github.com/auth-labs/worldsim/internal/oracle"
	"github.com/auth-labs/worldsim/internal/pool"
	"github.com/auth-labs/worldsim/internal/types"
)

func newTestEngine(t *testing.T, params types.SimulationParameters, seed int64) (*Engine, *pool.CollateralPool) {
	t.Helper()
	prices, err := oracle.NewStatic(params.PriceUSD)
	if err != nil {
		t.Fatalf("NewStatic err=%v", err)
	}
	cp, err := pool.New(prices, params.SeedBalances, params.SeedSupply)
	if err != nil {
		t.Fatalf("pool.New err=%v", err)
	}
	e, err := New(Config{
		Params: params,
		Prices: prices,
		Pool:   cp,
		Rng:    rand.New(rand.NewSource(seed)),
	})
	if err != nil {
		t.Fatalf("engine.New err=%v", err)
	}
	return e, cp
}

func TestTransactsOn_MatchesExpectedRate(t *testing.T) {
	cases := []struct {
		rate float64
		days int
		want int
	}{
		{0.5, 10, 5},
		{0.5, 9, 4},
		{1.0, 30, 30},
		{0.03, 30, 0}, // floor(0.03*30) = 0: first txn lands on day 33
		{0.03, 34, 1},
		{1.5, 10, 10}, // rates above 1 cap at one eligible day per day
	}
	for _, tc := range cases {
		count := 0
		for day := 0; day < tc.days; day++ {
			if TransactsOn(tc.rate, day) {
				count++
			}
		}
		if count != tc.want {
			t.Fatalf("rate=%f days=%d: eligible=%d, want %d", tc.rate, tc.days, count, tc.want)
		}
	}
}

func TestTransactsOn_EligibleDaysEqualFloorOfCumulativeRate(t *testing.T) {
	for _, rate := range []float64{0.03, 0.25, 0.5, 0.99, 1.0} {
		for _, horizon := range []int{1, 7, 30, 365} {
			count := 0
			for day := 0; day < horizon; day++ {
				if TransactsOn(rate, day) {
					count++
				}
			}
			if want := int(math.Floor(rate * float64(horizon))); count != want {
				t.Fatalf("rate=%f horizon=%d: eligible=%d, want %d", rate, horizon, count, want)
			}
		}
	}
}

func TestChargedFee_FloorRuleDominates(t *testing.T) {
	// 0.1*2 = 0.2 leaves only 0.1 of margin, so the minimum-additional
	// floor lifts the charge to 0.3.
	if got := ChargedFee(0.1, 2, 0.2); got != 0.3 {
		t.Fatalf("ChargedFee(0.1, 2, 0.2)=%f, want 0.3", got)
	}
	// 0.5*2 = 1.0 already carries 0.5 of margin; the multiple wins.
	if got := ChargedFee(0.5, 2, 0.2); got != 1.0 {
		t.Fatalf("ChargedFee(0.5, 2, 0.2)=%f, want 1.0", got)
	}
}

func TestProcessUser_NoActivityLeavesStateUntouched(t *testing.T) {
	params := config.DefaultSimulationParameters
	e, cp := newTestEngine(t, params, 1)
	supplyBefore := cp.Supply()

	// rate 0.4: floor(0) == floor(0.4), no transaction on day 0.
	user := &types.User{
		ID:           "u1",
		Balances:     map[types.Asset]float64{types.USDT: 100},
		DailyTxnRate: 0.4,
	}
	outcome, err := e.ProcessUser(user, 0)
	if err != nil {
		t.Fatalf("ProcessUser err=%v", err)
	}
	if outcome != OutcomeNoActivity {
		t.Fatalf("outcome=%v, want OutcomeNoActivity", outcome)
	}
	if user.Balance(types.USDT) != 100 || cp.Supply() != supplyBefore {
		t.Fatal("no-activity day mutated state")
	}
}

func TestProcessUser_BelowThresholdsAlwaysTopsUp(t *testing.T) {
	params := config.DefaultSimulationParameters
	e, _ := newTestEngine(t, params, 2)

	for i := 0; i < 1000; i++ {
		user := &types.User{
			ID: "poor",
			Balances: map[types.Asset]float64{
				types.USDT: 4.9,   // threshold 5
				types.ETH:  0.009, // threshold 0.01
				types.SOL:  0.005, // threshold 0.01
				types.AUTH: 9.5,   // threshold 10
			},
			DailyTxnRate: 1.0, // transacts every day
		}
		outcome, err := e.ProcessUser(user, i)
		if err != nil {
			t.Fatalf("ProcessUser err=%v", err)
		}
		if outcome != OutcomeTopUp {
			t.Fatalf("trial %d: outcome=%v, want OutcomeTopUp", i, outcome)
		}
		if got := user.Balance(types.USDT); got != 4.9+params.TopUpAmountUSDT {
			t.Fatalf("trial %d: USDT=%f after top-up, want %f", i, got, 4.9+params.TopUpAmountUSDT)
		}
	}
	if e.TotalTopUps() != 1000 {
		t.Fatalf("top-up counter=%d, want 1000", e.TotalTopUps())
	}
	if e.TotalTransactions() != 0 {
		t.Fatalf("transaction counter=%d, want 0", e.TotalTransactions())
	}
}

func TestProcessUser_SettlementMovesValue(t *testing.T) {
	params := config.DefaultSimulationParameters
	e, cp := newTestEngine(t, params, 3)

	user := &types.User{
		ID:           "rich",
		Balances:     map[types.Asset]float64{types.USDT: 1000},
		DailyTxnRate: 1.0,
	}
	supplyBefore := cp.Supply()
	valueBefore, err := cp.DollarValue()
	if err != nil {
		t.Fatalf("DollarValue err=%v", err)
	}

	outcome, err := e.ProcessUser(user, 0)
	if err != nil {
		t.Fatalf("ProcessUser err=%v", err)
	}
	if outcome != OutcomeSettled {
		t.Fatalf("outcome=%v, want OutcomeSettled", outcome)
	}

	// Fee charged in USDT units: balance drops by at least the minimum
	// possible charge and at most the maximum possible charge.
	spent := 1000 - user.Balance(types.USDT)
	minCharge := ChargedFee(params.MinGasFeeUSD, params.GasFeeMultiple, params.MinAdditionalFeeUSD)
	maxCharge := ChargedFee(params.MaxGasFeeUSD, params.GasFeeMultiple, params.MinAdditionalFeeUSD)
	if spent < minCharge || spent > maxCharge {
		t.Fatalf("spent %f USDT, want within [%f, %f]", spent, minCharge, maxCharge)
	}

	valueAfter, err := cp.DollarValue()
	if err != nil {
		t.Fatalf("DollarValue err=%v", err)
	}
	if valueAfter < valueBefore {
		t.Fatalf("pool value decreased: %f -> %f", valueBefore, valueAfter)
	}
	if cp.Supply() < supplyBefore {
		t.Fatalf("supply decreased: %f -> %f", supplyBefore, cp.Supply())
	}

	// The user receives the issued basket units net of the refund tax.
	issued := cp.Supply() - supplyBefore
	wantAuth := issued * (1 - params.RefundTax)
	if got := user.Balance(types.AUTH); math.Abs(got-wantAuth) > 1e-12 {
		t.Fatalf("user AUTH=%f, want %f", got, wantAuth)
	}
	if e.TotalTransactions() != 1 {
		t.Fatalf("transaction counter=%d, want 1", e.TotalTransactions())
	}
}

func TestProcessUser_PicksOnlyQualifyingAssets(t *testing.T) {
	params := config.DefaultSimulationParameters
	e, _ := newTestEngine(t, params, 4)

	// Only SOL clears its threshold, so every settlement must spend SOL.
	for i := 0; i < 200; i++ {
		user := &types.User{
			ID: "sol-only",
			Balances: map[types.Asset]float64{
				types.USDT: 1,
				types.SOL:  5,
			},
			DailyTxnRate: 1.0,
		}
		outcome, err := e.ProcessUser(user, i)
		if err != nil {
			t.Fatalf("ProcessUser err=%v", err)
		}
		if outcome != OutcomeSettled {
			t.Fatalf("outcome=%v, want OutcomeSettled", outcome)
		}
		if user.Balance(types.SOL) >= 5 {
			t.Fatal("settlement did not spend SOL")
		}
		if user.Balance(types.USDT) != 1 {
			t.Fatal("settlement spent a non-qualifying asset")
		}
	}
}

func TestProcessUser_StrictModeRejectsNegativeBalances(t *testing.T) {
	// A 0.1 USDT balance clears a lowered threshold but cannot cover the
	// minimum possible charge of 0.3, so strict mode must reject.
	params := config.DefaultSimulationParameters
	params.StrictBalances = true
	params.SpendThresholds = map[types.Asset]float64{
		types.USDT: 0.05,
		types.ETH:  1e9,
		types.SOL:  1e9,
		types.AUTH: 1e9,
	}
	e, cp := newTestEngine(t, params, 5)
	supplyBefore := cp.Supply()

	user := &types.User{
		ID:           "broke",
		Balances:     map[types.Asset]float64{types.USDT: 0.1},
		DailyTxnRate: 1.0,
	}
	outcome, err := e.ProcessUser(user, 0)
	if err != nil {
		t.Fatalf("ProcessUser err=%v", err)
	}
	if outcome != OutcomeRejected {
		t.Fatalf("outcome=%v, want OutcomeRejected", outcome)
	}
	if user.Balance(types.USDT) != 0.1 {
		t.Fatalf("rejected settlement mutated balance: %f", user.Balance(types.USDT))
	}
	if cp.Supply() != supplyBefore {
		t.Fatal("rejected settlement mutated pool")
	}
	if e.TotalRejected() != 1 {
		t.Fatalf("rejected counter=%d, want 1", e.TotalRejected())
	}
}

func TestProcessUser_DefaultModeAllowsNegativeBalances(t *testing.T) {
	params := config.DefaultSimulationParameters
	params.SpendThresholds = map[types.Asset]float64{
		types.USDT: 0.05,
		types.ETH:  1e9,
		types.SOL:  1e9,
		types.AUTH: 1e9,
	}
	e, _ := newTestEngine(t, params, 6)

	user := &types.User{
		ID:           "overdrawn",
		Balances:     map[types.Asset]float64{types.USDT: 0.1},
		DailyTxnRate: 1.0,
	}
	outcome, err := e.ProcessUser(user, 0)
	if err != nil {
		t.Fatalf("ProcessUser err=%v", err)
	}
	if outcome != OutcomeSettled {
		t.Fatalf("outcome=%v, want OutcomeSettled", outcome)
	}
	// Minimum possible charge is 0.3 USD against a 0.1 USDT balance.
	if user.Balance(types.USDT) >= 0 {
		t.Fatalf("balance=%f, want negative in default mode", user.Balance(types.USDT))
	}
}
