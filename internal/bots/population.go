// Package bots runs the autonomous trader population. Each bot has a
// personality selecting its target token, trade direction and sizing; orders
// go through the trading engine like any player's, so bot flow obeys every
// pool and ledger invariant.
package bots

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"meme-market-sim/internal/domain"
	"meme-market-sim/internal/engine"
	"meme-market-sim/internal/observability"
	"meme-market-sim/internal/storage"
)

const (
	DefaultTickInterval = 5 * time.Second

	rosterSize        = 20
	maxActivePerTick  = 5
	candidateLimit    = 20   // tokens a bot considers per action
	minPoolBase       = 10.0 // skip near-drained pools
	panicSellDrawdown = -5.0 // percent move that triggers a panic seller
	botSlippage       = 100.0

	// Activation probability divides the hourly frequency target by the
	// number of 5-second intervals per hour.
	intervalsPerHour = 720.0
)

var botNames = []string{
	"CryptoWhale", "DiamondHands", "PaperHands", "MoonBoy", "BearKiller",
	"SatoshiJr", "VitalikFan", "DogeLord", "APEstrong", "ChadTrader",
	"WenLambo", "NGMI", "WAGMI", "Degen420", "ShillMaster",
	"RugDoctor", "FudBuster", "HodlGang", "PumpChaser", "DumpDetective",
}

// Population owns the bot roster and its trading loop.
type Population struct {
	engine   *engine.Engine
	tokens   storage.TokenStore
	balances storage.BalanceStore
	logger   *log.Logger
	rng      *rand.Rand
	interval time.Duration

	bots   []*domain.TradingBot
	funded bool
}

// Options configures a new Population.
type Options struct {
	Engine   *engine.Engine
	Tokens   storage.TokenStore
	Balances storage.BalanceStore
	Logger   *log.Logger

	// Rand drives roster creation and every trading decision. Seed it for
	// determinism.
	Rand *rand.Rand

	TickInterval time.Duration
}

// New creates a Population with a freshly drawn roster.
func New(opts Options) *Population {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	interval := opts.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	p := &Population{
		engine:   opts.Engine,
		tokens:   opts.Tokens,
		balances: opts.Balances,
		logger:   logger,
		rng:      rng,
		interval: interval,
	}
	p.buildRoster()
	return p
}

// buildRoster draws personalities, bankrolls, risk tolerances and frequency
// targets for the fixed-size roster.
func (p *Population) buildRoster() {
	for i := 0; i < rosterSize; i++ {
		personality := domain.AllPersonalities[p.rng.Intn(len(domain.AllPersonalities))]

		var bankroll float64
		switch personality {
		case domain.BotWhale:
			bankroll = float64(10_000 + p.rng.Intn(90_000))
		case domain.BotSniper:
			bankroll = float64(5_000 + p.rng.Intn(15_000))
		default:
			bankroll = float64(100 + p.rng.Intn(4_900))
		}

		var risk float64
		switch personality {
		case domain.BotPanicSeller:
			risk = 0.1
		case domain.BotFOMOBuyer:
			risk = 0.9
		case domain.BotWhale:
			risk = 0.7
		default:
			risk = p.rng.Float64()
		}

		var freq float64
		switch personality {
		case domain.BotScalper:
			freq = float64(10 + p.rng.Intn(20))
		case domain.BotHODLer:
			freq = float64(1 + p.rng.Intn(2))
		default:
			freq = float64(3 + p.rng.Intn(7))
		}

		p.bots = append(p.bots, &domain.TradingBot{
			Name:          fmt.Sprintf("%s%d", botNames[i%len(botNames)], 1+p.rng.Intn(998)),
			Personality:   personality,
			CashBalance:   bankroll,
			RiskTolerance: risk,
			TradesPerHour: freq,
			Holdings:      make(map[string]float64),
		})
	}

	p.logger.Printf("initialized %d trading bots", len(p.bots))
}

// Bots returns the roster (shared slice, read-only by convention).
func (p *Population) Bots() []*domain.TradingBot {
	return p.bots
}

// Run funds the roster and ticks the trading loop until the context is
// cancelled. Per-bot failures are logged and skipped.
func (p *Population) Run(ctx context.Context) error {
	if err := p.fund(ctx); err != nil {
		return fmt.Errorf("fund bots: %w", err)
	}

	p.logger.Printf("bot trading started (interval %v)", p.interval)
	observability.DefaultMetrics.BotsActive.Set(float64(len(p.bots)))
	defer observability.DefaultMetrics.BotsActive.Set(0)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Println("bot trading stopped")
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// fund credits each bot's bankroll into the shared balance ledger once.
func (p *Population) fund(ctx context.Context) error {
	if p.funded {
		return nil
	}
	for _, b := range p.bots {
		if err := p.balances.Credit(ctx, b.Name, b.CashBalance); err != nil {
			return fmt.Errorf("credit %s: %w", b.Name, err)
		}
	}
	p.funded = true
	return nil
}

// tick activates a frequency-gated subset of the roster.
func (p *Population) tick(ctx context.Context) {
	active := 0
	for _, b := range p.bots {
		if active >= maxActivePerTick {
			break
		}
		if p.rng.Float64() >= b.TradesPerHour/intervalsPerHour {
			continue
		}
		active++

		if err := p.act(ctx, b); err != nil {
			observability.DefaultMetrics.BotTradeErrors.Inc()
			p.logger.Printf("bot %s: %v", b.Name, err)
		}
	}
}

// act runs one bot decision: pick a token, pick a direction and size, route
// the order through the engine and update the holdings mirror.
func (p *Population) act(ctx context.Context, b *domain.TradingBot) error {
	candidates, err := p.candidates(ctx)
	if err != nil {
		return fmt.Errorf("list candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil
	}

	target := p.selectToken(b, candidates)
	if target == nil {
		return nil
	}

	action, amount, err := p.decide(ctx, b, target)
	if err != nil {
		return err
	}
	if action == actionNone || amount <= 0 {
		return nil
	}

	switch action {
	case actionBuy:
		trade, err := p.engine.Buy(ctx, b.Name, target.ID, amount, botSlippage)
		if err != nil {
			return fmt.Errorf("buy %s: %w", target.Symbol, err)
		}
		b.Holdings[target.ID] += trade.TokenAmount
		observability.RecordBotTrade(string(b.Personality), "buy")
		p.logger.Printf("bot %s bought %.2f %s for %.2f", b.Name, trade.TokenAmount, target.Symbol, amount)
	case actionSell:
		trade, err := p.engine.Sell(ctx, b.Name, target.ID, amount, botSlippage)
		if err != nil {
			return fmt.Errorf("sell %s: %w", target.Symbol, err)
		}
		b.Holdings[target.ID] -= amount
		if b.Holdings[target.ID] <= 0 {
			delete(b.Holdings, target.ID)
		}
		observability.RecordBotTrade(string(b.Personality), "sell")
		p.logger.Printf("bot %s sold %.2f %s for %.2f", b.Name, amount, target.Symbol, trade.CashAmount)
	}
	return nil
}

// candidates returns tradable tokens with a live pool, busiest first.
func (p *Population) candidates(ctx context.Context) ([]*domain.Token, error) {
	tokens, err := p.tokens.ListActive(ctx, 0)
	if err != nil {
		return nil, err
	}

	var result []*domain.Token
	for _, t := range tokens {
		if t.PoolBaseReserve > minPoolBase && t.CurrentPrice > 0 {
			result = append(result, t)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Volume24h > result[j].Volume24h
	})
	if len(result) > candidateLimit {
		result = result[:candidateLimit]
	}
	return result, nil
}

// selectToken applies the personality's targeting rule.
func (p *Population) selectToken(b *domain.TradingBot, candidates []*domain.Token) *domain.Token {
	switch b.Personality {
	case domain.BotWhale:
		return maxBy(candidates, func(t *domain.Token) float64 { return t.MarketCap() })
	case domain.BotSniper:
		return maxBy(candidates, func(t *domain.Token) float64 { return float64(t.CreatedAt) })
	case domain.BotFOMOBuyer:
		return maxBy(candidates, func(t *domain.Token) float64 { return t.PriceChange24h })
	case domain.BotPanicSeller:
		return maxBy(candidates, func(t *domain.Token) float64 { return -t.PriceChange24h })
	default:
		return candidates[p.rng.Intn(len(candidates))]
	}
}

func maxBy(tokens []*domain.Token, score func(*domain.Token) float64) *domain.Token {
	if len(tokens) == 0 {
		return nil
	}
	best := tokens[0]
	for _, t := range tokens[1:] {
		if score(t) > score(best) {
			best = t
		}
	}
	return best
}

type botAction int

const (
	actionNone botAction = iota
	actionBuy
	actionSell
)

// decide picks the direction and size for one bot/token pair.
func (p *Population) decide(ctx context.Context, b *domain.TradingBot, t *domain.Token) (botAction, float64, error) {
	holding := b.Holding(t.ID)
	hasHoldings := holding > 0

	var action botAction
	switch b.Personality {
	case domain.BotFOMOBuyer:
		if t.PriceChange24h > 0 {
			action = actionBuy
		}
	case domain.BotPanicSeller:
		if t.PriceChange24h < panicSellDrawdown && hasHoldings {
			action = actionSell
		}
	case domain.BotHODLer:
		// Accumulates and never exits.
		if !hasHoldings {
			action = actionBuy
		}
	case domain.BotDumper:
		if hasHoldings && p.rng.Float64() > 0.7 {
			action = actionSell
		}
	default:
		if p.rng.Float64() > 0.5 {
			action = actionBuy
		} else if hasHoldings {
			action = actionSell
		}
	}

	switch action {
	case actionBuy:
		amount, err := p.buySize(ctx, b)
		return actionBuy, amount, err
	case actionSell:
		return actionSell, p.sellSize(b, holding), nil
	default:
		return actionNone, 0, nil
	}
}

// buySize draws a personality ticket size capped by risk and the bot's real
// ledger balance.
func (p *Population) buySize(ctx context.Context, b *domain.TradingBot) (float64, error) {
	balance, err := p.balances.Get(ctx, b.Name)
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	if balance <= 0 {
		return 0, nil
	}

	var ticket float64
	switch b.Personality {
	case domain.BotWhale:
		ticket = float64(1_000 + p.rng.Intn(4_000))
	case domain.BotScalper:
		ticket = float64(10 + p.rng.Intn(90))
	default:
		ticket = float64(50 + p.rng.Intn(450))
	}

	maxSpend := balance * b.RiskTolerance * 0.1
	if ticket > maxSpend {
		ticket = maxSpend
	}
	if half := balance * 0.5; ticket > half {
		ticket = half
	}
	return ticket, nil
}

// sellSize picks how much of the holding to unload.
func (p *Population) sellSize(b *domain.TradingBot, holding float64) float64 {
	switch b.Personality {
	case domain.BotPanicSeller:
		return holding
	case domain.BotDumper:
		return holding * 0.2
	default:
		return holding * p.rng.Float64()
	}
}
