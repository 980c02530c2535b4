package postgres

import (
	"context"
	"fmt"

	"meme-market-sim/internal/storage"
)

// BalanceStore implements storage.BalanceStore using PostgreSQL. Debit is a
// single conditional UPDATE, so concurrent debits can never overdraw.
type BalanceStore struct {
	pool *Pool
}

// NewBalanceStore creates a new BalanceStore.
func NewBalanceStore(pool *Pool) *BalanceStore {
	return &BalanceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BalanceStore = (*BalanceStore)(nil)

// Get returns the trader's cash balance; zero if the trader is unknown.
func (s *BalanceStore) Get(ctx context.Context, traderID string) (float64, error) {
	var balance float64
	err := s.pool.QueryRow(ctx,
		`SELECT balance FROM balances WHERE trader_id = $1`,
		traderID,
	).Scan(&balance)
	if err != nil {
		if isNotFoundError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

// Credit adds amount to the trader's balance. Amount must be positive.
func (s *BalanceStore) Credit(ctx context.Context, traderID string, amount float64) error {
	if traderID == "" || amount <= 0 {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO balances (trader_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (trader_id) DO UPDATE SET balance = balances.balance + EXCLUDED.balance
	`

	if _, err := s.pool.Exec(ctx, query, traderID, amount); err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	return nil
}

// Debit removes amount from the trader's balance. Returns
// ErrInsufficientFunds without mutating if the balance is too small.
func (s *BalanceStore) Debit(ctx context.Context, traderID string, amount float64) error {
	if traderID == "" || amount <= 0 {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE balances
		SET balance = balance - $2
		WHERE trader_id = $1 AND balance >= $2
	`

	tag, err := s.pool.Exec(ctx, query, traderID, amount)
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrInsufficientFunds
	}
	return nil
}
