package domain

// Trade is one append-only ledger entry recording an executed (or, when the
// engine is configured to record them, rejected) operation.
// Corresponds to trades table in PostgreSQL. Immutable once written.
type Trade struct {
	TxHash   string // deterministic simulated transaction hash
	TokenID  string
	TraderID string
	Type     string // TradeType* constant

	// Transaction values
	TokenAmount   float64
	CashAmount    float64
	PricePerToken float64
	PriceImpact   float64 // percent
	Slippage      float64 // tolerance the caller accepted, percent
	TradingFee    float64 // fee charged, cash or token denominated per side

	// Pool state after the operation. Must stay consistent with the
	// constant-product formula: PriceAfter == PoolBaseAfter / PoolTokenAfter
	// whenever PoolTokenAfter > 0.
	PoolTokenAfter float64
	PoolBaseAfter  float64
	PriceAfter     float64

	RealizedPnL float64 // sells only

	IsSuccessful  bool
	FailureReason string // empty on success
	Timestamp     int64  // Unix ms
}

// Trade type constants
const (
	TradeTypeBuy             = "buy"
	TradeTypeSell            = "sell"
	TradeTypeAddLiquidity    = "add_liquidity"
	TradeTypeRemoveLiquidity = "remove_liquidity"
	TradeTypeMint            = "mint"
	TradeTypeBurn            = "burn"
	TradeTypeRugPull         = "rug_pull"
)
