// Package domain holds the plain data types shared across storage, the
// trading engine and the simulators. Types here carry no behavior beyond
// small pure helpers; all timestamps are Unix milliseconds.
package domain

// Token is a tradable asset with its embedded constant-product liquidity
// pool. Reserves and price are mutated only under the engine's per-token
// lock. Corresponds to the tokens table in PostgreSQL.
type Token struct {
	ID        string `json:"id"`
	CreatorID string `json:"creator_id"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"` // stored and looked up upper-cased

	TotalSupply       float64 `json:"total_supply"`
	CirculatingSupply float64 `json:"circulating_supply"` // supply held outside the pool

	InitialPrice float64 `json:"initial_price"`
	CurrentPrice float64 `json:"current_price"` // always baseReserve/tokenReserve

	PoolTokenReserve float64 `json:"pool_token_reserve"`
	PoolBaseReserve  float64 `json:"pool_base_reserve"`

	PriceChange24h    float64 `json:"price_change_24h"` // percent, simulator-maintained
	Volume24h         float64 `json:"volume_24h"`
	AllTimeHigh       float64 `json:"all_time_high"`
	AllTimeLow        float64 `json:"all_time_low"`
	TotalHolders      int     `json:"total_holders"`
	TotalTransactions int     `json:"total_transactions"`

	IsRugged  bool  `json:"is_rugged"` // terminal; rugged tokens never trade again
	IsLocked  bool  `json:"is_locked"`
	LockUntil int64 `json:"lock_until"` // Unix ms; rug pulls blocked until then

	CreatedAt   int64 `json:"created_at"`
	LastUpdated int64 `json:"last_updated"`
}

// PoolConstant returns the invariant k = tokenReserve * baseReserve.
func (t *Token) PoolConstant() float64 {
	return t.PoolTokenReserve * t.PoolBaseReserve
}

// MarketCap returns the fully diluted valuation at the current price.
func (t *Token) MarketCap() float64 {
	return t.TotalSupply * t.CurrentPrice
}

// LockActive reports whether the liquidity lock blocks a rug pull at nowMs.
func (t *Token) LockActive(nowMs int64) bool {
	return t.IsLocked && nowMs < t.LockUntil
}
