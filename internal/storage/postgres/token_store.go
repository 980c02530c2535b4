package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"meme-market-sim/internal/domain"
	"meme-market-sim/internal/storage"
)

const tokenColumns = `
	id, creator_id, name, symbol,
	total_supply, circulating_supply, initial_price, current_price,
	pool_token_reserve, pool_base_reserve,
	price_change_24h, volume_24h, all_time_high, all_time_low,
	total_holders, total_transactions,
	is_rugged, is_locked, lock_until,
	created_at, last_updated
`

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

// Insert adds a new token. Returns ErrDuplicateKey if the id or symbol exists.
func (s *TokenStore) Insert(ctx context.Context, t *domain.Token) error {
	if t == nil || t.ID == "" || t.Symbol == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO tokens (` + tokenColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := s.pool.Exec(ctx, query,
		t.ID, t.CreatorID, t.Name, strings.ToUpper(t.Symbol),
		t.TotalSupply, t.CirculatingSupply, t.InitialPrice, t.CurrentPrice,
		t.PoolTokenReserve, t.PoolBaseReserve,
		t.PriceChange24h, t.Volume24h, t.AllTimeHigh, t.AllTimeLow,
		t.TotalHolders, t.TotalTransactions,
		t.IsRugged, t.IsLocked, t.LockUntil,
		t.CreatedAt, t.LastUpdated,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// GetByID retrieves a token by id. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByID(ctx context.Context, tokenID string) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE id = $1`

	t, err := scanToken(s.pool.QueryRow(ctx, query, tokenID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token by id: %w", err)
	}
	return t, nil
}

// GetBySymbol retrieves a token by its (upper-cased) symbol.
func (s *TokenStore) GetBySymbol(ctx context.Context, symbol string) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE symbol = $1`

	t, err := scanToken(s.pool.QueryRow(ctx, query, strings.ToUpper(symbol)))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token by symbol: %w", err)
	}
	return t, nil
}

// Update overwrites an existing token. Returns ErrNotFound if not exists.
func (s *TokenStore) Update(ctx context.Context, t *domain.Token) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE tokens SET
			creator_id = $2, name = $3, symbol = $4,
			total_supply = $5, circulating_supply = $6, initial_price = $7, current_price = $8,
			pool_token_reserve = $9, pool_base_reserve = $10,
			price_change_24h = $11, volume_24h = $12, all_time_high = $13, all_time_low = $14,
			total_holders = $15, total_transactions = $16,
			is_rugged = $17, is_locked = $18, lock_until = $19,
			created_at = $20, last_updated = $21
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		t.ID, t.CreatorID, t.Name, strings.ToUpper(t.Symbol),
		t.TotalSupply, t.CirculatingSupply, t.InitialPrice, t.CurrentPrice,
		t.PoolTokenReserve, t.PoolBaseReserve,
		t.PriceChange24h, t.Volume24h, t.AllTimeHigh, t.AllTimeLow,
		t.TotalHolders, t.TotalTransactions,
		t.IsRugged, t.IsLocked, t.LockUntil,
		t.CreatedAt, t.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("update token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListActive retrieves all non-rugged tokens, newest first, up to limit.
func (s *TokenStore) ListActive(ctx context.Context, limit int) ([]*domain.Token, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM tokens
		WHERE NOT is_rugged
		ORDER BY created_at DESC, id ASC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active tokens: %w", err)
	}
	defer rows.Close()

	return scanTokens(rows)
}

// ListAll retrieves every token including rugged ones, newest first.
func (s *TokenStore) ListAll(ctx context.Context) ([]*domain.Token, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM tokens
		ORDER BY created_at DESC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all tokens: %w", err)
	}
	defer rows.Close()

	return scanTokens(rows)
}

// CountByCreator returns how many tokens the creator has minted.
func (s *TokenStore) CountByCreator(ctx context.Context, creatorID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tokens WHERE creator_id = $1`, creatorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tokens by creator: %w", err)
	}
	return count, nil
}

// scanToken scans a single row into a Token.
func scanToken(row pgx.Row) (*domain.Token, error) {
	var t domain.Token
	err := row.Scan(
		&t.ID, &t.CreatorID, &t.Name, &t.Symbol,
		&t.TotalSupply, &t.CirculatingSupply, &t.InitialPrice, &t.CurrentPrice,
		&t.PoolTokenReserve, &t.PoolBaseReserve,
		&t.PriceChange24h, &t.Volume24h, &t.AllTimeHigh, &t.AllTimeLow,
		&t.TotalHolders, &t.TotalTransactions,
		&t.IsRugged, &t.IsLocked, &t.LockUntil,
		&t.CreatedAt, &t.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// scanTokens scans multiple rows into a slice of Token.
func scanTokens(rows pgx.Rows) ([]*domain.Token, error) {
	var tokens []*domain.Token

	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token row: %w", err)
		}
		tokens = append(tokens, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token rows: %w", err)
	}

	return tokens, nil
}
