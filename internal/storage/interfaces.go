package storage

import (
	"context"

	"meme-market-sim/internal/domain"
)

// TokenStore provides access to tokens storage. The engine serializes all
// read-modify-write cycles on a token behind its own per-token lock; stores
// only need to be internally thread-safe.
type TokenStore interface {
	// Insert adds a new token. Returns ErrDuplicateKey if the id or symbol exists.
	Insert(ctx context.Context, t *domain.Token) error

	// GetByID retrieves a token by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tokenID string) (*domain.Token, error)

	// GetBySymbol retrieves a token by its (upper-cased) symbol.
	GetBySymbol(ctx context.Context, symbol string) (*domain.Token, error)

	// Update overwrites an existing token. Returns ErrNotFound if not exists.
	Update(ctx context.Context, t *domain.Token) error

	// ListActive retrieves all non-rugged tokens, newest first, up to limit.
	// limit <= 0 means no limit.
	ListActive(ctx context.Context, limit int) ([]*domain.Token, error)

	// ListAll retrieves every token including rugged ones, newest first.
	ListAll(ctx context.Context) ([]*domain.Token, error)

	// CountByCreator returns how many tokens the creator has minted.
	CountByCreator(ctx context.Context, creatorID string) (int, error)
}

// PortfolioStore provides access to portfolios storage. Rows are never
// deleted; zero-balance rows persist as history.
type PortfolioStore interface {
	// Get retrieves one (trader, token) position. Returns ErrNotFound if the
	// trader never bought the token.
	Get(ctx context.Context, traderID, tokenID string) (*domain.Portfolio, error)

	// Upsert inserts or overwrites a position.
	Upsert(ctx context.Context, p *domain.Portfolio) error

	// GetByTrader retrieves all positions for a trader with nonzero balance,
	// no particular order.
	GetByTrader(ctx context.Context, traderID string) ([]*domain.Portfolio, error)

	// CountHolders returns the number of traders with a nonzero balance in
	// the token.
	CountHolders(ctx context.Context, tokenID string) (int, error)
}

// TradeStore provides access to the append-only trades ledger.
type TradeStore interface {
	// Append adds a trade. Returns ErrDuplicateKey if the tx hash exists.
	Append(ctx context.Context, t *domain.Trade) error

	// GetRecent retrieves the newest trades, optionally filtered by token
	// (empty tokenID means all tokens), newest first.
	GetRecent(ctx context.Context, tokenID string, limit int) ([]*domain.Trade, error)

	// GetByTrader retrieves all trades by a trader, newest first.
	GetByTrader(ctx context.Context, traderID string, limit int) ([]*domain.Trade, error)
}

// BalanceStore provides the single debit/credit surface over trader cash the
// engine requires. The account subsystem owns everything else about players.
type BalanceStore interface {
	// Get returns the trader's cash balance; zero if the trader is unknown.
	Get(ctx context.Context, traderID string) (float64, error)

	// Credit adds amount to the trader's balance. Amount must be positive.
	Credit(ctx context.Context, traderID string, amount float64) error

	// Debit removes amount from the trader's balance. Returns
	// ErrInsufficientFunds without mutating if the balance is too small.
	Debit(ctx context.Context, traderID string, amount float64) error
}

// PriceHistoryStore provides access to the simulator's price snapshot
// timeseries (append-heavy, read for charts and bot targeting).
type PriceHistoryStore interface {
	// InsertBulk appends multiple points.
	InsertBulk(ctx context.Context, points []*domain.PricePoint) error

	// GetByToken retrieves all points for a token, ordered by timestamp ASC.
	GetByToken(ctx context.Context, tokenID string) ([]*domain.PricePoint, error)

	// GetByTimeRange retrieves points for a token within [start, end] ms
	// (inclusive), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, tokenID string, start, end int64) ([]*domain.PricePoint, error)
}
