/*

This file contains the asset denominations known to the world simulator.

*/

package types

// Asset identifies a denomination tracked by the simulator.
type Asset string

const (
	USDT Asset = "usdt"
	ETH  Asset = "eth"
	SOL  Asset = "sol"

	// AUTH is the basket token. It is not priced by the static oracle;
	// its price is derived from the collateral pool composition.
	AUTH Asset = "auth"
)

// BackingAssets returns the denominations that collateralize the basket,
// in the fixed order used for pool valuation.
func BackingAssets() []Asset {
	return []Asset{USDT, ETH, SOL}
}

// SpendableAssets returns the denominations a user may fund a transaction
// with, in the fixed order the engine scans them. The order matters for
// determinism: the funding pick draws an index into this slice.
func SpendableAssets() []Asset {
	return []Asset{USDT, ETH, SOL, AUTH}
}

// Valid reports whether a is a known denomination.
func (a Asset) Valid() bool {
	switch a {
	case USDT, ETH, SOL, AUTH:
		return true
	}
	return false
}
