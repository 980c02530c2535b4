package domain

// Portfolio is one trader's position in one token. The cost basis is a
// cost-weighted average over buys; selling the full balance resets it.
// Corresponds to the portfolios table in PostgreSQL.
type Portfolio struct {
	TraderID string `json:"trader_id"`
	TokenID  string `json:"token_id"`

	TokenBalance    float64 `json:"token_balance"`
	AverageBuyPrice float64 `json:"average_buy_price"`
	TotalInvested   float64 `json:"total_invested"`
	RealizedProfit  float64 `json:"realized_profit"`

	FirstPurchase   int64 `json:"first_purchase"`   // Unix ms, zero until first buy
	LastTransaction int64 `json:"last_transaction"` // Unix ms
}

// ApplyBuy folds a purchase into the position, re-deriving the average buy
// price from total invested over total held.
func (p *Portfolio) ApplyBuy(tokens, cashSpent float64, nowMs int64) {
	if p.FirstPurchase == 0 {
		p.FirstPurchase = nowMs
	}

	p.TokenBalance += tokens
	p.TotalInvested += cashSpent
	if p.TokenBalance > 0 {
		p.AverageBuyPrice = p.TotalInvested / p.TokenBalance
	}
	p.LastTransaction = nowMs
}

// ApplySell removes tokens from the position and returns the realized profit
// of the sale against the average cost basis. Selling down to zero clears the
// basis so a later re-entry starts fresh.
func (p *Portfolio) ApplySell(tokens, cashReceived float64, nowMs int64) float64 {
	costBasis := tokens * p.AverageBuyPrice
	profit := cashReceived - costBasis

	p.TokenBalance -= tokens
	p.TotalInvested -= costBasis
	p.RealizedProfit += profit
	p.LastTransaction = nowMs

	if p.TokenBalance <= 0 {
		p.TokenBalance = 0
		p.TotalInvested = 0
		p.AverageBuyPrice = 0
	}
	return profit
}

// UnrealizedPnL values the open position at price against its cost basis.
func (p *Portfolio) UnrealizedPnL(price float64) float64 {
	return p.TokenBalance*price - p.TotalInvested
}
