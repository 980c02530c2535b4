package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"meme-market-sim/internal/domain"
	"meme-market-sim/internal/storage"
)

const portfolioColumns = `
	trader_id, token_id, token_balance, average_buy_price,
	total_invested, realized_profit, first_purchase, last_transaction
`

// PortfolioStore implements storage.PortfolioStore using PostgreSQL.
type PortfolioStore struct {
	pool *Pool
}

// NewPortfolioStore creates a new PortfolioStore.
func NewPortfolioStore(pool *Pool) *PortfolioStore {
	return &PortfolioStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PortfolioStore = (*PortfolioStore)(nil)

// Get retrieves one (trader, token) position. Returns ErrNotFound if the
// trader never bought the token.
func (s *PortfolioStore) Get(ctx context.Context, traderID, tokenID string) (*domain.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE trader_id = $1 AND token_id = $2`

	p, err := scanPortfolio(s.pool.QueryRow(ctx, query, traderID, tokenID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get portfolio: %w", err)
	}
	return p, nil
}

// Upsert inserts or overwrites a position.
func (s *PortfolioStore) Upsert(ctx context.Context, p *domain.Portfolio) error {
	if p == nil || p.TraderID == "" || p.TokenID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO portfolios (` + portfolioColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (trader_id, token_id) DO UPDATE SET
			token_balance = EXCLUDED.token_balance,
			average_buy_price = EXCLUDED.average_buy_price,
			total_invested = EXCLUDED.total_invested,
			realized_profit = EXCLUDED.realized_profit,
			first_purchase = EXCLUDED.first_purchase,
			last_transaction = EXCLUDED.last_transaction
	`

	_, err := s.pool.Exec(ctx, query,
		p.TraderID, p.TokenID, p.TokenBalance, p.AverageBuyPrice,
		p.TotalInvested, p.RealizedProfit, p.FirstPurchase, p.LastTransaction,
	)
	if err != nil {
		return fmt.Errorf("upsert portfolio: %w", err)
	}
	return nil
}

// GetByTrader retrieves all positions for a trader with nonzero balance.
func (s *PortfolioStore) GetByTrader(ctx context.Context, traderID string) ([]*domain.Portfolio, error) {
	query := `
		SELECT ` + portfolioColumns + `
		FROM portfolios
		WHERE trader_id = $1 AND token_balance > 0
	`

	rows, err := s.pool.Query(ctx, query, traderID)
	if err != nil {
		return nil, fmt.Errorf("get portfolios by trader: %w", err)
	}
	defer rows.Close()

	return scanPortfolios(rows)
}

// CountHolders returns the number of traders with a nonzero balance in the token.
func (s *PortfolioStore) CountHolders(ctx context.Context, tokenID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM portfolios WHERE token_id = $1 AND token_balance > 0`,
		tokenID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count holders: %w", err)
	}
	return count, nil
}

// scanPortfolio scans a single row into a Portfolio.
func scanPortfolio(row pgx.Row) (*domain.Portfolio, error) {
	var p domain.Portfolio
	err := row.Scan(
		&p.TraderID, &p.TokenID, &p.TokenBalance, &p.AverageBuyPrice,
		&p.TotalInvested, &p.RealizedProfit, &p.FirstPurchase, &p.LastTransaction,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// scanPortfolios scans multiple rows into a slice of Portfolio.
func scanPortfolios(rows pgx.Rows) ([]*domain.Portfolio, error) {
	var portfolios []*domain.Portfolio

	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("scan portfolio row: %w", err)
		}
		portfolios = append(portfolios, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate portfolio rows: %w", err)
	}

	return portfolios, nil
}
