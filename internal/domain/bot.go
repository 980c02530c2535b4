package domain

// BotPersonality selects a trading bot's target, direction and sizing rules.
type BotPersonality string

const (
	BotWhale       BotPersonality = "whale"        // big tickets, biggest market cap
	BotScalper     BotPersonality = "scalper"      // many small trades
	BotHODLer      BotPersonality = "hodler"       // buys and never sells
	BotPanicSeller BotPersonality = "panic_seller" // dumps everything on drawdowns
	BotFOMOBuyer   BotPersonality = "fomo_buyer"   // chases the biggest gainer
	BotSniper      BotPersonality = "sniper"       // buys the newest token
	BotDumper      BotPersonality = "dumper"       // sells off progressively
)

// AllPersonalities lists every personality, in the order used for uniform
// random draws when building the roster.
var AllPersonalities = []BotPersonality{
	BotWhale,
	BotScalper,
	BotHODLer,
	BotPanicSeller,
	BotFOMOBuyer,
	BotSniper,
	BotDumper,
}

// TradingBot is one autonomous agent. Holdings mirrors the bot's persisted
// Portfolio rows so the strategy loop can pick sell candidates without store
// reads; the engine's ledger stays the source of truth.
type TradingBot struct {
	Name          string
	Personality   BotPersonality
	CashBalance   float64
	RiskTolerance float64 // 0..1
	TradesPerHour float64
	Holdings      map[string]float64
}

// Holding returns the bot's balance in the given token.
func (b *TradingBot) Holding(tokenID string) float64 {
	return b.Holdings[tokenID]
}
