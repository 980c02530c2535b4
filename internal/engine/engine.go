// Package engine executes trades against constant-product liquidity pools:
// buys, sells, rug pulls and token creation. Every operation is atomic:
// pool reserves, portfolio, cash balance and the trade ledger either all
// move together or not at all.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"meme-market-sim/internal/domain"
	"meme-market-sim/internal/idhash"
	"meme-market-sim/internal/notify"
	"meme-market-sim/internal/observability"
	"meme-market-sim/internal/pool"
	"meme-market-sim/internal/storage"
)

// Trading parameters.
const (
	MinTradeAmount    = 0.01   // smallest accepted cash amount for a buy
	BigTradeThreshold = 5000.0 // cash value above which a big-trade event fires
	FeeRate           = pool.FeeRate

	// A sell that moves the price more than this while draining more than
	// RugDetectCashFloor is reported as a rug-style crash.
	RugDetectImpactPercent = 20.0
	RugDetectCashFloor     = 1000.0
)

// Token creation parameters.
const (
	TokenCreationCost    = 10.0
	MinInitialLiquidity  = 100.0
	MaxInitialSupply     = 1_000_000_000.0
	MaxTokensPerCreator  = 10
	CreatorSupplyPercent = 0.10 // creator keeps 10%, the rest seeds the pool
)

// Engine is the trading core. All mutation of a token's reserves is
// serialized behind the shared LockTable.
type Engine struct {
	tokens     storage.TokenStore
	portfolios storage.PortfolioStore
	trades     storage.TradeStore
	balances   storage.BalanceStore
	sink       notify.Sink
	locks      *LockTable
	logger     *log.Logger

	recordFailures bool
	now            func() int64 // Unix ms, injectable for tests
	seq            atomic.Uint64
}

// Options configures a new Engine.
type Options struct {
	Tokens     storage.TokenStore
	Portfolios storage.PortfolioStore
	Trades     storage.TradeStore
	Balances   storage.BalanceStore
	Sink       notify.Sink
	Locks      *LockTable
	Logger     *log.Logger

	// RecordFailures appends unsuccessful Trade rows (with a failure
	// reason) for rejected operations.
	RecordFailures bool

	// Now overrides the clock. Defaults to time.Now().UnixMilli.
	Now func() int64
}

// New creates an Engine.
func New(opts Options) *Engine {
	sink := opts.Sink
	if sink == nil {
		sink = notify.NopSink{}
	}
	locks := opts.Locks
	if locks == nil {
		locks = NewLockTable()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}

	return &Engine{
		tokens:         opts.Tokens,
		portfolios:     opts.Portfolios,
		trades:         opts.Trades,
		balances:       opts.Balances,
		sink:           sink,
		locks:          locks,
		logger:         logger,
		recordFailures: opts.RecordFailures,
		now:            now,
	}
}

// Locks exposes the engine's lock table so the market simulator can enter
// the same per-token critical sections for its direct reserve drift.
func (e *Engine) Locks() *LockTable {
	return e.locks
}

// Buy swaps cashAmount of the trader's cash into the token. The trade is
// rejected before any mutation if the token is missing or rugged, the amount
// is below MinTradeAmount, the trader cannot cover it, or the price impact
// exceeds maxSlippagePercent.
func (e *Engine) Buy(ctx context.Context, traderID, tokenID string, cashAmount, maxSlippagePercent float64) (*domain.Trade, error) {
	if cashAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	lock := e.locks.For(tokenID)
	lock.Lock()
	defer lock.Unlock()

	token, err := e.tokens.GetByID(ctx, tokenID)
	if err != nil {
		return nil, e.reject(ctx, tokenID, traderID, domain.TradeTypeBuy, ErrTokenNotFound)
	}
	if token.IsRugged {
		return nil, e.reject(ctx, tokenID, traderID, domain.TradeTypeBuy, ErrTokenRugged)
	}
	if cashAmount < MinTradeAmount {
		return nil, e.reject(ctx, tokenID, traderID, domain.TradeTypeBuy, ErrBelowMinTrade)
	}

	balance, err := e.balances.Get(ctx, traderID)
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	if balance < cashAmount {
		return nil, e.reject(ctx, tokenID, traderID, domain.TradeTypeBuy, ErrInsufficientCash)
	}

	impact := pool.PriceImpactPercent(token.PoolTokenReserve, token.PoolBaseReserve, token.CurrentPrice, cashAmount, true)
	if impact > maxSlippagePercent {
		return nil, e.reject(ctx, tokenID, traderID, domain.TradeTypeBuy, fmt.Errorf("%w: impact %.2f%% > %.2f%%", ErrPriceImpact, impact, maxSlippagePercent))
	}

	quote := pool.QuoteBuy(token.PoolTokenReserve, token.PoolBaseReserve, cashAmount, FeeRate)
	if quote.TokensOut <= 0 {
		return nil, e.reject(ctx, tokenID, traderID, domain.TradeTypeBuy, ErrInvalidPool)
	}

	nowMs := e.now()

	// Stage the new token state.
	updated := *token
	updated.PoolTokenReserve = quote.NewTokenReserve
	updated.PoolBaseReserve = quote.NewBaseReserve
	updated.CurrentPrice = quote.NewPrice
	updated.Volume24h += cashAmount
	updated.TotalTransactions++
	updated.LastUpdated = nowMs
	if quote.NewPrice > updated.AllTimeHigh {
		updated.AllTimeHigh = quote.NewPrice
	}

	// Stage the portfolio.
	prior, err := e.portfolios.Get(ctx, traderID, tokenID)
	var position domain.Portfolio
	newHolder := false
	switch {
	case err == nil:
		position = *prior
		newHolder = position.TokenBalance == 0
	case err == storage.ErrNotFound:
		position = domain.Portfolio{TraderID: traderID, TokenID: tokenID}
		newHolder = true
	default:
		return nil, fmt.Errorf("read portfolio: %w", err)
	}
	position.ApplyBuy(quote.TokensOut, cashAmount, nowMs)
	if newHolder {
		updated.TotalHolders++
	}

	trade := &domain.Trade{
		TxHash:         e.txHash(tokenID, traderID, domain.TradeTypeBuy, nowMs),
		TokenID:        tokenID,
		TraderID:       traderID,
		Type:           domain.TradeTypeBuy,
		TokenAmount:    quote.TokensOut,
		CashAmount:     cashAmount,
		PricePerToken:  cashAmount / quote.TokensOut,
		PriceImpact:    impact,
		Slippage:       maxSlippagePercent,
		TradingFee:     quote.Fee,
		PoolTokenAfter: quote.NewTokenReserve,
		PoolBaseAfter:  quote.NewBaseReserve,
		PriceAfter:     quote.NewPrice,
		IsSuccessful:   true,
		Timestamp:      nowMs,
	}

	commit := commitPlan{
		debit:          cashAmount,
		traderID:       traderID,
		token:          &updated,
		tokenPrior:     token,
		portfolio:      &position,
		portfolioPrior: prior,
		trade:          trade,
	}
	if err := e.commit(ctx, commit); err != nil {
		return nil, fmt.Errorf("buy %s: %w", token.Symbol, err)
	}

	if cashAmount > BigTradeThreshold {
		e.sink.BigTrade(domain.BigTradeEvent{
			Direction:   "BUY",
			TokenSymbol: token.Symbol,
			TokenAmount: quote.TokensOut,
			CashValue:   cashAmount,
		})
	}

	observability.RecordTrade(domain.TradeTypeBuy, cashAmount, quote.Fee)
	e.logger.Printf("trader %s bought %.2f %s for %.2f cash", traderID, quote.TokensOut, token.Symbol, cashAmount)
	return trade, nil
}

// Sell swaps tokenAmount of the trader's holding back into cash. The fee is
// deducted from the cash output. A sell whose impact exceeds 20% while
// draining more than 1,000 cash is additionally reported as a rug-style
// crash on the notification channel.
func (e *Engine) Sell(ctx context.Context, traderID, tokenID string, tokenAmount, maxSlippagePercent float64) (*domain.Trade, error) {
	if tokenAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	lock := e.locks.For(tokenID)
	lock.Lock()
	defer lock.Unlock()

	token, err := e.tokens.GetByID(ctx, tokenID)
	if err != nil {
		return nil, e.reject(ctx, tokenID, traderID, domain.TradeTypeSell, ErrTokenNotFound)
	}
	if token.IsRugged {
		return nil, e.reject(ctx, tokenID, traderID, domain.TradeTypeSell, ErrTokenRugged)
	}

	prior, err := e.portfolios.Get(ctx, traderID, tokenID)
	switch {
	case err == storage.ErrNotFound:
		return nil, e.reject(ctx, tokenID, traderID, domain.TradeTypeSell, ErrInsufficientTokens)
	case err != nil:
		return nil, fmt.Errorf("read portfolio: %w", err)
	}
	if prior.TokenBalance < tokenAmount {
		return nil, e.reject(ctx, tokenID, traderID, domain.TradeTypeSell, ErrInsufficientTokens)
	}

	impact := pool.PriceImpactPercent(token.PoolTokenReserve, token.PoolBaseReserve, token.CurrentPrice, tokenAmount, false)
	if impact > maxSlippagePercent {
		return nil, e.reject(ctx, tokenID, traderID, domain.TradeTypeSell, fmt.Errorf("%w: impact %.2f%% > %.2f%%", ErrPriceImpact, impact, maxSlippagePercent))
	}

	quote := pool.QuoteSell(token.PoolTokenReserve, token.PoolBaseReserve, tokenAmount, FeeRate)
	if quote.CashOut <= 0 {
		return nil, e.reject(ctx, tokenID, traderID, domain.TradeTypeSell, ErrInvalidPool)
	}

	nowMs := e.now()

	updated := *token
	updated.PoolTokenReserve = quote.NewTokenReserve
	updated.PoolBaseReserve = quote.NewBaseReserve
	updated.CurrentPrice = quote.NewPrice
	updated.Volume24h += quote.CashOut
	updated.TotalTransactions++
	updated.LastUpdated = nowMs
	if quote.NewPrice < updated.AllTimeLow {
		updated.AllTimeLow = quote.NewPrice
	}

	position := *prior
	profit := position.ApplySell(tokenAmount, quote.CashOut, nowMs)
	if position.TokenBalance == 0 && updated.TotalHolders > 0 {
		updated.TotalHolders--
	}

	trade := &domain.Trade{
		TxHash:         e.txHash(tokenID, traderID, domain.TradeTypeSell, nowMs),
		TokenID:        tokenID,
		TraderID:       traderID,
		Type:           domain.TradeTypeSell,
		TokenAmount:    tokenAmount,
		CashAmount:     quote.CashOut,
		PricePerToken:  quote.CashOut / tokenAmount,
		PriceImpact:    impact,
		Slippage:       maxSlippagePercent,
		TradingFee:     quote.Fee,
		PoolTokenAfter: quote.NewTokenReserve,
		PoolBaseAfter:  quote.NewBaseReserve,
		PriceAfter:     quote.NewPrice,
		RealizedPnL:    profit,
		IsSuccessful:   true,
		Timestamp:      nowMs,
	}

	commit := commitPlan{
		credit:         quote.CashOut,
		traderID:       traderID,
		token:          &updated,
		tokenPrior:     token,
		portfolio:      &position,
		portfolioPrior: prior,
		trade:          trade,
	}
	if err := e.commit(ctx, commit); err != nil {
		return nil, fmt.Errorf("sell %s: %w", token.Symbol, err)
	}

	// Auto-detected rug-style crash: same channel as a manual rug pull,
	// different trigger.
	if impact > RugDetectImpactPercent && quote.CashOut > RugDetectCashFloor {
		observability.RecordRugPull("detected")
		e.sink.RugPull(domain.RugPullEvent{
			TokenSymbol:  token.Symbol,
			TokenName:    token.Name,
			CrashPercent: impact,
			AmountLost:   quote.CashOut,
		})
	}
	if quote.CashOut > BigTradeThreshold {
		e.sink.BigTrade(domain.BigTradeEvent{
			Direction:   "SELL",
			TokenSymbol: token.Symbol,
			TokenAmount: tokenAmount,
			CashValue:   quote.CashOut,
		})
	}

	observability.RecordTrade(domain.TradeTypeSell, quote.CashOut, quote.Fee)
	e.logger.Printf("trader %s sold %.2f %s for %.2f cash", traderID, tokenAmount, token.Symbol, quote.CashOut)
	return trade, nil
}

// RugPull drains the pool's entire cash reserve to the creator and marks the
// token terminally rugged. Only the creator may trigger it, and only while
// no liquidity lock is active. Returns the cash recovered.
func (e *Engine) RugPull(ctx context.Context, callerID, tokenID string) (float64, error) {
	lock := e.locks.For(tokenID)
	lock.Lock()
	defer lock.Unlock()

	token, err := e.tokens.GetByID(ctx, tokenID)
	if err != nil {
		return 0, ErrTokenNotFound
	}
	if token.CreatorID != callerID {
		return 0, ErrNotCreator
	}
	if token.IsRugged {
		return 0, ErrAlreadyRugged
	}
	nowMs := e.now()
	if token.LockActive(nowMs) {
		return 0, ErrLiquidityLocked
	}

	stolen := token.PoolBaseReserve

	updated := *token
	updated.IsRugged = true
	updated.PoolBaseReserve = 0
	updated.CurrentPrice = 0
	updated.LastUpdated = nowMs

	trade := &domain.Trade{
		TxHash:         e.txHash(tokenID, callerID, domain.TradeTypeRugPull, nowMs),
		TokenID:        tokenID,
		TraderID:       callerID,
		Type:           domain.TradeTypeRugPull,
		TokenAmount:    0,
		CashAmount:     stolen,
		PricePerToken:  0,
		PriceImpact:    100,
		PoolTokenAfter: updated.PoolTokenReserve,
		PoolBaseAfter:  0,
		PriceAfter:     0,
		IsSuccessful:   true,
		Timestamp:      nowMs,
	}

	commit := commitPlan{
		credit:     stolen,
		traderID:   callerID,
		token:      &updated,
		tokenPrior: token,
		trade:      trade,
	}
	if err := e.commit(ctx, commit); err != nil {
		return 0, fmt.Errorf("rug pull %s: %w", token.Symbol, err)
	}

	e.sink.RugPull(domain.RugPullEvent{
		TokenSymbol:  token.Symbol,
		TokenName:    token.Name,
		CrashPercent: 100,
		AmountLost:   stolen,
	})

	observability.RecordRugPull("manual")
	observability.DefaultMetrics.RuggedTokens.Inc()
	observability.DefaultMetrics.ActiveTokens.Dec()
	e.logger.Printf("RUG PULL: %s rugged %s, recovering %.2f cash", callerID, token.Symbol, stolen)
	return stolen, nil
}

// CreateTokenParams describes a mint request.
type CreateTokenParams struct {
	CreatorID        string
	Name             string
	Symbol           string
	TotalSupply      float64
	InitialLiquidity float64

	// Optional liquidity lock blocking RugPull until LockUntil (Unix ms).
	LockUntil int64
}

// CreateToken mints a new token: the creator keeps a fixed share of supply,
// the remainder plus the initial liquidity seeds the pool. The creator pays
// the creation cost plus the liquidity out of their cash balance.
func (e *Engine) CreateToken(ctx context.Context, p CreateTokenParams) (*domain.Token, error) {
	if p.CreatorID == "" || p.Name == "" || p.Symbol == "" || p.TotalSupply <= 0 {
		return nil, storage.ErrInvalidInput
	}
	if p.InitialLiquidity < MinInitialLiquidity {
		return nil, ErrLiquidityTooSmall
	}
	if p.TotalSupply > MaxInitialSupply {
		return nil, ErrSupplyTooLarge
	}

	count, err := e.tokens.CountByCreator(ctx, p.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("count creator tokens: %w", err)
	}
	if count >= MaxTokensPerCreator {
		return nil, ErrTooManyTokens
	}

	if _, err := e.tokens.GetBySymbol(ctx, p.Symbol); err == nil {
		return nil, ErrSymbolTaken
	}

	totalCost := TokenCreationCost + p.InitialLiquidity
	balance, err := e.balances.Get(ctx, p.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	if balance < totalCost {
		return nil, ErrInsufficientCash
	}

	nowMs := e.now()
	creatorShare := p.TotalSupply * CreatorSupplyPercent
	poolSupply := p.TotalSupply - creatorShare
	initialPrice := p.InitialLiquidity / poolSupply

	token := &domain.Token{
		ID:                uuid.NewString(),
		CreatorID:         p.CreatorID,
		Name:              p.Name,
		Symbol:            p.Symbol,
		TotalSupply:       p.TotalSupply,
		CirculatingSupply: creatorShare,
		InitialPrice:      initialPrice,
		CurrentPrice:      initialPrice,
		PoolTokenReserve:  poolSupply,
		PoolBaseReserve:   p.InitialLiquidity,
		TotalHolders:      1, // the creator
		AllTimeHigh:       initialPrice,
		AllTimeLow:        initialPrice,
		IsLocked:          p.LockUntil > nowMs,
		LockUntil:         p.LockUntil,
		CreatedAt:         nowMs,
		LastUpdated:       nowMs,
	}

	if err := e.balances.Debit(ctx, p.CreatorID, totalCost); err != nil {
		if err == storage.ErrInsufficientFunds {
			return nil, ErrInsufficientCash
		}
		return nil, fmt.Errorf("debit creator: %w", err)
	}

	if err := e.tokens.Insert(ctx, token); err != nil {
		// Roll the debit back; the mint never happened.
		if cerr := e.balances.Credit(ctx, p.CreatorID, totalCost); cerr != nil {
			e.logger.Printf("rollback credit failed for %s: %v", p.CreatorID, cerr)
		}
		if err == storage.ErrDuplicateKey {
			return nil, ErrSymbolTaken
		}
		return nil, fmt.Errorf("insert token: %w", err)
	}

	// The creator's share is a holding like any other, minus a cost basis.
	creatorPosition := &domain.Portfolio{
		TraderID:        p.CreatorID,
		TokenID:         token.ID,
		TokenBalance:    creatorShare,
		FirstPurchase:   nowMs,
		LastTransaction: nowMs,
	}
	if err := e.portfolios.Upsert(ctx, creatorPosition); err != nil {
		e.logger.Printf("creator portfolio write failed for %s: %v", token.Symbol, err)
	}

	mint := &domain.Trade{
		TxHash:         e.txHash(token.ID, p.CreatorID, domain.TradeTypeMint, nowMs),
		TokenID:        token.ID,
		TraderID:       p.CreatorID,
		Type:           domain.TradeTypeMint,
		TokenAmount:    p.TotalSupply,
		CashAmount:     p.InitialLiquidity,
		PricePerToken:  initialPrice,
		PoolTokenAfter: poolSupply,
		PoolBaseAfter:  p.InitialLiquidity,
		PriceAfter:     initialPrice,
		IsSuccessful:   true,
		Timestamp:      nowMs,
	}
	if err := e.trades.Append(ctx, mint); err != nil {
		e.logger.Printf("mint trade append failed for %s: %v", token.Symbol, err)
	}

	observability.DefaultMetrics.TokensCreated.Inc()
	observability.DefaultMetrics.ActiveTokens.Inc()
	e.logger.Printf("minted %s (%s): supply %.0f, pool %.0f tokens / %.2f cash, price %.8f",
		token.Name, token.Symbol, p.TotalSupply, poolSupply, p.InitialLiquidity, initialPrice)
	return token, nil
}

// GetPortfolio returns one (trader, token) position, or storage.ErrNotFound.
func (e *Engine) GetPortfolio(ctx context.Context, traderID, tokenID string) (*domain.Portfolio, error) {
	return e.portfolios.Get(ctx, traderID, tokenID)
}

// GetRecentTrades returns the newest trades, optionally filtered by token
// (empty tokenID means all tokens).
func (e *Engine) GetRecentTrades(ctx context.Context, tokenID string, limit int) ([]*domain.Trade, error) {
	if limit <= 0 {
		limit = 50
	}
	return e.trades.GetRecent(ctx, tokenID, limit)
}

// commitPlan is the atomic mutation set of one operation: optional cash
// debit or credit, token overwrite, optional portfolio overwrite, ledger
// append. Applied in order; any failure rolls back everything applied so far.
type commitPlan struct {
	traderID string
	debit    float64
	credit   float64

	token      *domain.Token
	tokenPrior *domain.Token

	portfolio      *domain.Portfolio
	portfolioPrior *domain.Portfolio // nil when the row did not exist

	trade *domain.Trade
}

func (e *Engine) commit(ctx context.Context, p commitPlan) error {
	var undo []func()

	rollback := func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}

	if p.debit > 0 {
		if err := e.balances.Debit(ctx, p.traderID, p.debit); err != nil {
			return fmt.Errorf("debit cash: %w", err)
		}
		undo = append(undo, func() {
			if err := e.balances.Credit(ctx, p.traderID, p.debit); err != nil {
				e.logger.Printf("rollback credit failed for %s: %v", p.traderID, err)
			}
		})
	}
	if p.credit > 0 {
		if err := e.balances.Credit(ctx, p.traderID, p.credit); err != nil {
			rollback()
			return fmt.Errorf("credit cash: %w", err)
		}
		undo = append(undo, func() {
			if err := e.balances.Debit(ctx, p.traderID, p.credit); err != nil {
				e.logger.Printf("rollback debit failed for %s: %v", p.traderID, err)
			}
		})
	}

	if err := e.tokens.Update(ctx, p.token); err != nil {
		rollback()
		return fmt.Errorf("update token: %w", err)
	}
	undo = append(undo, func() {
		if err := e.tokens.Update(ctx, p.tokenPrior); err != nil {
			e.logger.Printf("rollback token restore failed for %s: %v", p.tokenPrior.ID, err)
		}
	})

	if p.portfolio != nil {
		if err := e.portfolios.Upsert(ctx, p.portfolio); err != nil {
			rollback()
			return fmt.Errorf("upsert portfolio: %w", err)
		}
		undo = append(undo, func() {
			restore := p.portfolioPrior
			if restore == nil {
				// The row did not exist; the closest we can get to undoing
				// the insert is an empty position.
				restore = &domain.Portfolio{TraderID: p.portfolio.TraderID, TokenID: p.portfolio.TokenID}
			}
			if err := e.portfolios.Upsert(ctx, restore); err != nil {
				e.logger.Printf("rollback portfolio restore failed: %v", err)
			}
		})
	}

	if err := e.trades.Append(ctx, p.trade); err != nil {
		rollback()
		return fmt.Errorf("append trade: %w", err)
	}

	return nil
}

// reject optionally records the failed attempt in the ledger and returns the
// validation error unchanged.
func (e *Engine) reject(ctx context.Context, tokenID, traderID, tradeType string, cause error) error {
	observability.RecordRejectedTrade(rejectReason(cause))
	if !e.recordFailures {
		return cause
	}

	nowMs := e.now()
	failed := &domain.Trade{
		TxHash:        e.txHash(tokenID, traderID, tradeType, nowMs),
		TokenID:       tokenID,
		TraderID:      traderID,
		Type:          tradeType,
		IsSuccessful:  false,
		FailureReason: cause.Error(),
		Timestamp:     nowMs,
	}
	if err := e.trades.Append(ctx, failed); err != nil {
		e.logger.Printf("failed-trade append error: %v", err)
	}
	return cause
}

// rejectReason maps a validation error to a stable metric label.
func rejectReason(cause error) string {
	switch {
	case errors.Is(cause, ErrTokenNotFound):
		return "token_not_found"
	case errors.Is(cause, ErrTokenRugged):
		return "token_rugged"
	case errors.Is(cause, ErrBelowMinTrade):
		return "below_min_trade"
	case errors.Is(cause, ErrInsufficientCash):
		return "insufficient_cash"
	case errors.Is(cause, ErrInsufficientTokens):
		return "insufficient_tokens"
	case errors.Is(cause, ErrPriceImpact):
		return "price_impact"
	case errors.Is(cause, ErrInvalidPool):
		return "invalid_pool"
	default:
		return "other"
	}
}

func (e *Engine) txHash(tokenID, traderID, tradeType string, nowMs int64) string {
	return idhash.ComputeTxHash(tokenID, traderID, tradeType, nowMs, e.seq.Add(1))
}

// SellAll is a convenience for bots and panic flows: sells the trader's
// entire balance with a permissive slippage tolerance.
func (e *Engine) SellAll(ctx context.Context, traderID, tokenID string, maxSlippagePercent float64) (*domain.Trade, error) {
	position, err := e.portfolios.Get(ctx, traderID, tokenID)
	if err == storage.ErrNotFound {
		return nil, ErrInsufficientTokens
	}
	if err != nil {
		return nil, fmt.Errorf("read portfolio: %w", err)
	}
	if position.TokenBalance <= 0 {
		return nil, ErrInsufficientTokens
	}
	return e.Sell(ctx, traderID, tokenID, position.TokenBalance, maxSlippagePercent)
}
