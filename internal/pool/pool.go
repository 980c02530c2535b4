// Package pool implements the constant-product (x*y=k) swap math shared by
// the trading engine and the market simulator. Everything here is pure; the
// caller owns reserve state and serialization.
package pool

import "math"

// FeeRate is the trading fee retained by the pool on every swap (0.3%).
const FeeRate = 0.003

// BuyQuote is the outcome of swapping cash into the pool. TokensOut already
// has the trading fee deducted; the fee portion stays in the pool, which is
// why NewTokenReserve is computed from TokensOut rather than the raw swap
// amount. NewPrice is derived from the actual post-fee reserves so price and
// reserves can never drift apart.
type BuyQuote struct {
	TokensOut       float64 // post-fee amount leaving the pool
	Fee             float64 // token-denominated fee retained by the pool
	NewTokenReserve float64
	NewBaseReserve  float64
	NewPrice        float64
}

// SellQuote mirrors BuyQuote for the sell direction; the fee is cash
// denominated and likewise never leaves the pool.
type SellQuote struct {
	CashOut         float64 // post-fee cash leaving the pool
	Fee             float64 // cash-denominated fee retained by the pool
	NewTokenReserve float64
	NewBaseReserve  float64
	NewPrice        float64
}

// SimulateBuy computes the raw constant-product swap of cashIn into a pool
// with the given reserves: newB = B + cashIn, newT = k/newB. Returns the
// pre-fee token output and the pre-fee marginal price. Zero output signals
// an unusable pool (either reserve empty).
func SimulateBuy(tokenReserve, baseReserve, cashIn float64) (tokensOut, newPrice float64) {
	if tokenReserve <= 0 || baseReserve <= 0 || cashIn <= 0 {
		return 0, 0
	}

	k := tokenReserve * baseReserve
	newBase := baseReserve + cashIn
	newToken := k / newBase
	return tokenReserve - newToken, newBase / newToken
}

// SimulateSell computes the raw constant-product swap of tokensIn into the
// pool: newT = T + tokensIn, newB = k/newT. Returns the pre-fee cash output
// and the pre-fee marginal price.
func SimulateSell(tokenReserve, baseReserve, tokensIn float64) (cashOut, newPrice float64) {
	if tokenReserve <= 0 || baseReserve <= 0 || tokensIn <= 0 {
		return 0, 0
	}

	k := tokenReserve * baseReserve
	newToken := tokenReserve + tokensIn
	newBase := k / newToken
	return baseReserve - newBase, newBase / newToken
}

// PriceImpactPercent returns the absolute percentage deviation between the
// effective per-token price of the swap and currentPrice. Used only for
// slippage-limit checks, never for reserve updates.
func PriceImpactPercent(tokenReserve, baseReserve, currentPrice, amount float64, isBuy bool) float64 {
	if tokenReserve <= 0 || baseReserve <= 0 || currentPrice <= 0 {
		return 0
	}

	if isBuy {
		tokensOut, _ := SimulateBuy(tokenReserve, baseReserve, amount)
		if tokensOut <= 0 {
			return 0
		}
		effective := amount / tokensOut
		return math.Abs((effective - currentPrice) / currentPrice * 100)
	}

	cashOut, _ := SimulateSell(tokenReserve, baseReserve, amount)
	if cashOut <= 0 {
		return 0
	}
	effective := cashOut / amount
	return math.Abs((currentPrice - effective) / currentPrice * 100)
}

// QuoteBuy runs the full buy swap including the fee. The fee is deducted from
// the token output before the reserves are committed, so k is non-decreasing
// across swaps. A zero-valued quote signals an unusable pool.
func QuoteBuy(tokenReserve, baseReserve, cashIn, feeRate float64) BuyQuote {
	raw, _ := SimulateBuy(tokenReserve, baseReserve, cashIn)
	if raw <= 0 {
		return BuyQuote{}
	}

	fee := raw * feeRate
	out := raw - fee
	newToken := tokenReserve - out
	newBase := baseReserve + cashIn

	return BuyQuote{
		TokensOut:       out,
		Fee:             fee,
		NewTokenReserve: newToken,
		NewBaseReserve:  newBase,
		NewPrice:        newBase / newToken,
	}
}

// QuoteSell runs the full sell swap including the fee, deducted from the cash
// output before the reserves are committed.
func QuoteSell(tokenReserve, baseReserve, tokensIn, feeRate float64) SellQuote {
	raw, _ := SimulateSell(tokenReserve, baseReserve, tokensIn)
	if raw <= 0 {
		return SellQuote{}
	}

	fee := raw * feeRate
	out := raw - fee
	newToken := tokenReserve + tokensIn
	newBase := baseReserve - out

	return SellQuote{
		CashOut:         out,
		Fee:             fee,
		NewTokenReserve: newToken,
		NewBaseReserve:  newBase,
		NewPrice:        newBase / newToken,
	}
}

// DriftReserves rescales both reserves so the pool prices at newPrice while
// preserving k. Solving T*B = k and B/T = p gives B = sqrt(k*p), T = sqrt(k/p).
// Used by the market simulator's ambient drift, which is not a counter-party
// swap and must not leak or mint reserves.
func DriftReserves(tokenReserve, baseReserve, newPrice float64) (newToken, newBase float64) {
	if tokenReserve <= 0 || baseReserve <= 0 || newPrice <= 0 {
		return tokenReserve, baseReserve
	}

	k := tokenReserve * baseReserve
	return math.Sqrt(k / newPrice), math.Sqrt(k * newPrice)
}
