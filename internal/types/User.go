package types

// User is a simulated protocol user. Balances are owned exclusively by the
// record and mutated in place by the transaction engine; users are never
// removed within a simulation run.
type User struct {
	ID           string            `json:"id"`
	Balances     map[Asset]float64 `json:"balances"`
	DailyTxnRate float64           `json:"daily_txn_rate"` // Expected transactions per day, sampled once at creation.
}

// Balance returns the user's holding of the given asset.
func (u *User) Balance(a Asset) float64 {
	return u.Balances[a]
}
