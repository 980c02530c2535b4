// Package market runs the ambient market simulation: regime-biased price
// drift, synthetic background volume and occasional special events. Drift is
// not a counter-party swap; it rescales both reserves so the pool constant
// is preserved, standing in for off-screen market activity.
package market

import (
	"context"
	"log"
	"math/rand"
	"time"

	"meme-market-sim/internal/domain"
	"meme-market-sim/internal/engine"
	"meme-market-sim/internal/notify"
	"meme-market-sim/internal/observability"
	"meme-market-sim/internal/pool"
	"meme-market-sim/internal/storage"
)

// Simulation parameters.
const (
	DefaultDriftInterval = 30 * time.Second
	DefaultEventInterval = 2 * time.Minute

	driftTokenLimit = 20 // tokens drifted per tick, bounds per-tick cost
	noiseTokenLimit = 10 // tokens considered for synthetic trades and events

	minPrice = 1e-8 // drift floor, tokens never hit exact zero

	syntheticTradeChance = 0.15
	whaleTradeThreshold  = 25_000.0

	specialEventChance = 0.05
	forcedRugSubChance = 0.10 // applies after the rug event type is drawn
	trendRerollChance  = 0.20

	athAlertPercent = 50.0 // ATH break above this move emits a price alert
)

// Simulator owns the two background cadences: a fast drift tick and a slower
// event tick. All token mutation happens inside the shared per-token lock
// table, so drift never interleaves with a trade's read-compute-write.
type Simulator struct {
	tokens  storage.TokenStore
	history storage.PriceHistoryStore
	sink    notify.Sink
	locks   *engine.LockTable
	logger  *log.Logger
	rng     *rand.Rand

	driftInterval time.Duration
	eventInterval time.Duration
	now           func() int64

	trends map[string]domain.MarketTrend
}

// Options configures a new Simulator.
type Options struct {
	Tokens  storage.TokenStore
	History storage.PriceHistoryStore // optional; nil disables snapshots
	Sink    notify.Sink
	Locks   *engine.LockTable
	Logger  *log.Logger

	// Rand drives every draw the simulator makes. Seed it for determinism.
	Rand *rand.Rand

	DriftInterval time.Duration
	EventInterval time.Duration

	// Now overrides the clock. Defaults to time.Now().UnixMilli.
	Now func() int64
}

// New creates a Simulator.
func New(opts Options) *Simulator {
	sink := opts.Sink
	if sink == nil {
		sink = notify.NopSink{}
	}
	locks := opts.Locks
	if locks == nil {
		locks = engine.NewLockTable()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	driftInterval := opts.DriftInterval
	if driftInterval <= 0 {
		driftInterval = DefaultDriftInterval
	}
	eventInterval := opts.EventInterval
	if eventInterval <= 0 {
		eventInterval = DefaultEventInterval
	}
	now := opts.Now
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}

	return &Simulator{
		tokens:        opts.Tokens,
		history:       opts.History,
		sink:          sink,
		locks:         locks,
		logger:        logger,
		rng:           rng,
		driftInterval: driftInterval,
		eventInterval: eventInterval,
		now:           now,
		trends:        make(map[string]domain.MarketTrend),
	}
}

// Run drives both cadences until the context is cancelled. Per-token
// failures are logged and skipped; they never abort the loop.
func (s *Simulator) Run(ctx context.Context) error {
	s.logger.Printf("market simulation started (drift %v, events %v)", s.driftInterval, s.eventInterval)

	driftTicker := time.NewTicker(s.driftInterval)
	defer driftTicker.Stop()
	eventTicker := time.NewTicker(s.eventInterval)
	defer eventTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Println("market simulation stopped")
			return ctx.Err()
		case <-driftTicker.C:
			s.driftTick(ctx)
			s.syntheticTradeTick(ctx)
		case <-eventTicker.C:
			s.eventTick(ctx)
		}
	}
}

// driftTick applies one regime-biased price move to a bounded subset of
// active tokens and snapshots the results into price history.
func (s *Simulator) driftTick(ctx context.Context) {
	observability.DefaultMetrics.MarketTicks.Inc()

	tokens, err := s.tokens.ListActive(ctx, driftTokenLimit)
	if err != nil {
		s.logger.Printf("drift tick: list tokens: %v", err)
		return
	}

	var points []*domain.PricePoint
	for _, t := range tokens {
		point, err := s.driftToken(ctx, t.ID)
		if err != nil {
			s.logger.Printf("drift %s: %v", t.Symbol, err)
			continue
		}
		if point != nil {
			points = append(points, point)
		}
	}

	if s.history != nil && len(points) > 0 {
		if err := s.history.InsertBulk(ctx, points); err != nil {
			s.logger.Printf("drift tick: store price points: %v", err)
			return
		}
		observability.DefaultMetrics.PricePointsStored.Add(float64(len(points)))
	}
}

// driftToken moves one token's price inside its critical section. Returns
// nil without error when the token became untradable since listing.
func (s *Simulator) driftToken(ctx context.Context, tokenID string) (*domain.PricePoint, error) {
	lock := s.locks.For(tokenID)
	lock.Lock()
	defer lock.Unlock()

	token, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if token.IsRugged || token.CurrentPrice <= 0 {
		return nil, nil
	}

	delta := s.priceDelta(s.trendFor(tokenID))
	oldPrice := token.CurrentPrice
	newPrice := oldPrice * (1 + delta)
	if newPrice < minPrice {
		newPrice = minPrice
	}

	token.PoolTokenReserve, token.PoolBaseReserve = pool.DriftReserves(token.PoolTokenReserve, token.PoolBaseReserve, newPrice)
	token.CurrentPrice = newPrice

	changePercent := (newPrice - oldPrice) / oldPrice * 100
	token.PriceChange24h += changePercent

	if newPrice > token.AllTimeHigh {
		token.AllTimeHigh = newPrice
		if changePercent > athAlertPercent {
			s.sink.PriceAlert(domain.PriceAlertEvent{
				TokenSymbol:   token.Symbol,
				NewPrice:      newPrice,
				ChangePercent: changePercent,
			})
		}
	}
	if newPrice < token.AllTimeLow {
		token.AllTimeLow = newPrice
	}

	// Ambient volume churn, ±10%.
	volumeFactor := 1 + (s.rng.Float64()*0.2 - 0.1)
	token.Volume24h *= volumeFactor
	if token.Volume24h < 0 {
		token.Volume24h = 0
	}

	nowMs := s.now()
	token.LastUpdated = nowMs

	if err := s.tokens.Update(ctx, token); err != nil {
		return nil, err
	}

	return &domain.PricePoint{
		TokenID:      token.ID,
		TimestampMs:  nowMs,
		Price:        newPrice,
		TokenReserve: token.PoolTokenReserve,
		BaseReserve:  token.PoolBaseReserve,
		Volume24h:    token.Volume24h,
	}, nil
}

// priceDelta draws one fractional price move biased by the regime.
func (s *Simulator) priceDelta(trend domain.MarketTrend) float64 {
	base := (s.rng.Float64() - 0.5) * 0.02 // ±1% noise floor

	switch trend {
	case domain.TrendBullish:
		return base + s.rng.Float64()*0.03
	case domain.TrendBearish:
		return base - s.rng.Float64()*0.03
	case domain.TrendSideways:
		return base * 0.5
	case domain.TrendVolatile:
		return (s.rng.Float64() - 0.5) * 0.1
	case domain.TrendPumping:
		return s.rng.Float64() * 0.08
	case domain.TrendDumping:
		return -s.rng.Float64() * 0.12
	default:
		return base
	}
}

// syntheticTradeTick bumps volume and transaction counts with background
// trades that have no counter-party, announcing the whale-sized ones.
func (s *Simulator) syntheticTradeTick(ctx context.Context) {
	tokens, err := s.tokens.ListActive(ctx, noiseTokenLimit)
	if err != nil {
		s.logger.Printf("synthetic trades: list tokens: %v", err)
		return
	}

	for _, t := range tokens {
		if s.rng.Float64() >= syntheticTradeChance {
			continue
		}

		value := s.randomTradeValue()
		if err := s.applySyntheticTrade(ctx, t.ID, value); err != nil {
			s.logger.Printf("synthetic trade %s: %v", t.Symbol, err)
		}
	}
}

func (s *Simulator) applySyntheticTrade(ctx context.Context, tokenID string, value float64) error {
	lock := s.locks.For(tokenID)
	lock.Lock()
	defer lock.Unlock()

	token, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		return err
	}
	if token.IsRugged || token.CurrentPrice <= 0 {
		return nil
	}

	if value > whaleTradeThreshold {
		direction := "BUY"
		if s.rng.Float64() > 0.5 {
			direction = "SELL"
		}
		s.sink.BigTrade(domain.BigTradeEvent{
			Direction:   direction,
			TokenSymbol: token.Symbol,
			TokenAmount: value / token.CurrentPrice,
			CashValue:   value,
		})
	}

	token.Volume24h += value
	token.TotalTransactions++
	token.LastUpdated = s.now()

	if err := s.tokens.Update(ctx, token); err != nil {
		return err
	}
	observability.DefaultMetrics.SyntheticTrades.Inc()
	return nil
}

// randomTradeValue draws a trade size from the tiered distribution: mostly
// small retail, a thin whale tail.
func (s *Simulator) randomTradeValue() float64 {
	roll := s.rng.Float64()
	switch {
	case roll < 0.70:
		return s.rng.Float64()*500 + 10
	case roll < 0.90:
		return s.rng.Float64()*2000 + 500
	case roll < 0.98:
		return s.rng.Float64()*10000 + 2500
	default:
		return s.rng.Float64()*50000 + 10000
	}
}

// eventTick fires the occasional special event and re-rolls regimes.
func (s *Simulator) eventTick(ctx context.Context) {
	if s.rng.Float64() < specialEventChance {
		s.triggerSpecialEvent(ctx)
	}
	s.rerollTrends(ctx)
}

func (s *Simulator) triggerSpecialEvent(ctx context.Context) {
	tokens, err := s.tokens.ListActive(ctx, noiseTokenLimit)
	if err != nil || len(tokens) == 0 {
		return
	}
	target := tokens[s.rng.Intn(len(tokens))]

	switch s.rng.Intn(4) {
	case 0:
		s.trends[target.ID] = domain.TrendPumping
		s.sink.PriceAlert(domain.PriceAlertEvent{
			TokenSymbol:   target.Symbol,
			NewPrice:      target.CurrentPrice,
			ChangePercent: 0,
		})
		observability.DefaultMetrics.SpecialEvents.WithLabelValues("pump").Inc()
		s.logger.Printf("special event: %s is pumping", target.Symbol)
	case 1:
		s.trends[target.ID] = domain.TrendDumping
		observability.DefaultMetrics.SpecialEvents.WithLabelValues("dump").Inc()
		s.logger.Printf("special event: %s is dumping", target.Symbol)
	case 2:
		amount := s.rng.Float64()*100_000 + 50_000
		s.sink.WhaleAlert(domain.WhaleAlertEvent{
			TokenSymbol: target.Symbol,
			CashValue:   amount,
			Direction:   "MOVE",
		})
		observability.DefaultMetrics.SpecialEvents.WithLabelValues("whale_alert").Inc()
	case 3:
		if s.rng.Float64() < forcedRugSubChance {
			if err := s.forceRug(ctx, target.ID); err != nil {
				s.logger.Printf("forced rug %s: %v", target.Symbol, err)
			}
		}
	}
}

// forceRug is the market randomly killing a token: terminal rug with the
// liquidity simply gone, no creator payout.
func (s *Simulator) forceRug(ctx context.Context, tokenID string) error {
	lock := s.locks.For(tokenID)
	lock.Lock()
	defer lock.Unlock()

	token, err := s.tokens.GetByID(ctx, tokenID)
	if err != nil {
		return err
	}
	if token.IsRugged {
		return nil
	}

	lost := token.PoolBaseReserve
	token.IsRugged = true
	token.PoolBaseReserve = 0
	token.CurrentPrice = 0
	token.LastUpdated = s.now()

	if err := s.tokens.Update(ctx, token); err != nil {
		return err
	}

	s.sink.RugPull(domain.RugPullEvent{
		TokenSymbol:  token.Symbol,
		TokenName:    token.Name,
		CrashPercent: 100,
		AmountLost:   lost,
	})
	observability.DefaultMetrics.SpecialEvents.WithLabelValues("forced_rug").Inc()
	observability.RecordRugPull("forced")
	s.logger.Printf("special event: %s got rugged by the market, %.2f gone", token.Symbol, lost)
	return nil
}

// rerollTrends gives every tracked token a 20% chance of a new regime and
// assigns regimes to tokens seen for the first time.
func (s *Simulator) rerollTrends(ctx context.Context) {
	tokens, err := s.tokens.ListActive(ctx, noiseTokenLimit)
	if err != nil {
		return
	}

	for _, t := range tokens {
		if _, tracked := s.trends[t.ID]; !tracked {
			s.trends[t.ID] = s.randomTrend()
			continue
		}
		if s.rng.Float64() < trendRerollChance {
			s.trends[t.ID] = s.randomTrend()
			observability.DefaultMetrics.RegimeChanges.Inc()
		}
	}
}

// trendFor returns the token's regime, assigning a random one on first sight.
func (s *Simulator) trendFor(tokenID string) domain.MarketTrend {
	trend, ok := s.trends[tokenID]
	if !ok {
		trend = s.randomTrend()
		s.trends[tokenID] = trend
	}
	return trend
}

func (s *Simulator) randomTrend() domain.MarketTrend {
	return domain.AllTrends[s.rng.Intn(len(domain.AllTrends))]
}
