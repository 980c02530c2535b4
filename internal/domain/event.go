package domain

// Event kinds published to the notification sink.
const (
	EventBigTrade   = "big_trade"
	EventRugPull    = "rug_pull"
	EventPriceAlert = "price_alert"
	EventWhaleAlert = "whale_alert"
	EventMarketMove = "market_move" // pump/dump regime announcements
)

// BigTradeEvent announces a trade whose cash value crossed the big-trade
// threshold.
type BigTradeEvent struct {
	Direction   string  `json:"direction"` // "BUY" or "SELL"
	TokenSymbol string  `json:"token_symbol"`
	TokenAmount float64 `json:"token_amount"`
	CashValue   float64 `json:"cash_value"`
}

// RugPullEvent announces a manual rug pull or an auto-detected rug-style
// crash (sell with impact > 20% moving > 1,000 cash).
type RugPullEvent struct {
	TokenSymbol  string  `json:"token_symbol"`
	TokenName    string  `json:"token_name"`
	CrashPercent float64 `json:"crash_percent"`
	AmountLost   float64 `json:"amount_lost"`
}

// PriceAlertEvent announces a notable price move (new all-time high with a
// large change, or simulator pump/dump headlines).
type PriceAlertEvent struct {
	TokenSymbol   string  `json:"token_symbol"`
	NewPrice      float64 `json:"new_price"`
	ChangePercent float64 `json:"change_percent"`
}

// WhaleAlertEvent announces a large synthetic transfer observed by the
// market simulator. Informational only; no state change.
type WhaleAlertEvent struct {
	TokenSymbol string  `json:"token_symbol"`
	CashValue   float64 `json:"cash_value"`
	Direction   string  `json:"direction"`
}
