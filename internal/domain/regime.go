package domain

// MarketTrend is the per-token regime governing the statistical bias of
// ambient price drift applied by the market simulator.
type MarketTrend string

const (
	TrendBullish  MarketTrend = "bullish"  // skews up
	TrendBearish  MarketTrend = "bearish"  // skews down
	TrendSideways MarketTrend = "sideways" // dampened noise
	TrendVolatile MarketTrend = "volatile" // wide symmetric swings
	TrendPumping  MarketTrend = "pumping"  // artificial pump
	TrendDumping  MarketTrend = "dumping"  // on its way out
)

// AllTrends lists every regime, in the order used for uniform random draws.
var AllTrends = []MarketTrend{
	TrendBullish,
	TrendBearish,
	TrendSideways,
	TrendVolatile,
	TrendPumping,
	TrendDumping,
}
