package memory

import (
	"context"
	"sync"

	"meme-market-sim/internal/storage"
)

// BalanceStore is an in-memory implementation of storage.BalanceStore.
type BalanceStore struct {
	mu   sync.RWMutex
	data map[string]float64 // trader id -> cash balance
}

// NewBalanceStore creates a new in-memory balance store.
func NewBalanceStore() *BalanceStore {
	return &BalanceStore{
		data: make(map[string]float64),
	}
}

// Get returns the trader's cash balance; zero if the trader is unknown.
func (s *BalanceStore) Get(_ context.Context, traderID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data[traderID], nil
}

// Credit adds amount to the trader's balance. Amount must be positive.
func (s *BalanceStore) Credit(_ context.Context, traderID string, amount float64) error {
	if traderID == "" || amount <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[traderID] += amount
	return nil
}

// Debit removes amount from the trader's balance. Returns
// ErrInsufficientFunds without mutating if the balance is too small.
func (s *BalanceStore) Debit(_ context.Context, traderID string, amount float64) error {
	if traderID == "" || amount <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data[traderID] < amount {
		return storage.ErrInsufficientFunds
	}

	s.data[traderID] -= amount
	return nil
}

var _ storage.BalanceStore = (*BalanceStore)(nil)
