package domain

// PricePoint is one snapshot of a token's market state, appended by the
// market simulator on every drift tick. Corresponds to price_history table
// in ClickHouse.
type PricePoint struct {
	TokenID      string
	TimestampMs  int64
	Price        float64
	TokenReserve float64
	BaseReserve  float64
	Volume24h    float64
}
