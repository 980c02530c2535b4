package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"meme-market-sim/internal/domain"
	"meme-market-sim/internal/storage"
)

const tradeColumns = `
	tx_hash, token_id, trader_id, trade_type,
	token_amount, cash_amount, price_per_token,
	price_impact, slippage, trading_fee,
	pool_token_after, pool_base_after, price_after,
	realized_pnl, is_successful, failure_reason, ts
`

// TradeStore implements storage.TradeStore using PostgreSQL. The trades
// table is append-only.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// Append adds a trade. Returns ErrDuplicateKey if the tx hash exists.
func (s *TradeStore) Append(ctx context.Context, t *domain.Trade) error {
	if t == nil || t.TxHash == "" || t.TokenID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trades (` + tradeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := s.pool.Exec(ctx, query,
		t.TxHash, t.TokenID, t.TraderID, t.Type,
		t.TokenAmount, t.CashAmount, t.PricePerToken,
		t.PriceImpact, t.Slippage, t.TradingFee,
		t.PoolTokenAfter, t.PoolBaseAfter, t.PriceAfter,
		t.RealizedPnL, t.IsSuccessful, t.FailureReason, t.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("append trade: %w", err)
	}
	return nil
}

// GetRecent retrieves the newest trades, optionally filtered by token.
func (s *TradeStore) GetRecent(ctx context.Context, tokenID string, limit int) ([]*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades`
	var args []any
	if tokenID != "" {
		query += ` WHERE token_id = $1`
		args = append(args, tokenID)
	}
	query += ` ORDER BY ts DESC, tx_hash ASC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get recent trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetByTrader retrieves all trades by a trader, newest first.
func (s *TradeStore) GetByTrader(ctx context.Context, traderID string, limit int) ([]*domain.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE trader_id = $1
		ORDER BY ts DESC, tx_hash ASC
	`
	args := []any{traderID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get trades by trader: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// scanTrade scans a single row into a Trade.
func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var t domain.Trade
	err := row.Scan(
		&t.TxHash, &t.TokenID, &t.TraderID, &t.Type,
		&t.TokenAmount, &t.CashAmount, &t.PricePerToken,
		&t.PriceImpact, &t.Slippage, &t.TradingFee,
		&t.PoolTokenAfter, &t.PoolBaseAfter, &t.PriceAfter,
		&t.RealizedPnL, &t.IsSuccessful, &t.FailureReason, &t.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// scanTrades scans multiple rows into a slice of Trade.
func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}
