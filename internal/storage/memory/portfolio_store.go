package memory

import (
	"context"
	"fmt"
	"sync"

	"meme-market-sim/internal/domain"
	"meme-market-sim/internal/storage"
)

// PortfolioStore is an in-memory implementation of storage.PortfolioStore.
type PortfolioStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Portfolio // keyed by composite key
}

// NewPortfolioStore creates a new in-memory portfolio store.
func NewPortfolioStore() *PortfolioStore {
	return &PortfolioStore{
		data: make(map[string]*domain.Portfolio),
	}
}

// portfolioKey generates a unique key for a (trader, token) position.
func portfolioKey(traderID, tokenID string) string {
	return fmt.Sprintf("%s|%s", traderID, tokenID)
}

// Get retrieves one (trader, token) position. Returns ErrNotFound if the
// trader never bought the token.
func (s *PortfolioStore) Get(_ context.Context, traderID, tokenID string) (*domain.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[portfolioKey(traderID, tokenID)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cp := *p
	return &cp, nil
}

// Upsert inserts or overwrites a position.
func (s *PortfolioStore) Upsert(_ context.Context, p *domain.Portfolio) error {
	if p == nil || p.TraderID == "" || p.TokenID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	s.data[portfolioKey(p.TraderID, p.TokenID)] = &cp
	return nil
}

// GetByTrader retrieves all positions for a trader with nonzero balance.
func (s *PortfolioStore) GetByTrader(_ context.Context, traderID string) ([]*domain.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Portfolio
	for _, p := range s.data {
		if p.TraderID == traderID && p.TokenBalance > 0 {
			cp := *p
			result = append(result, &cp)
		}
	}
	return result, nil
}

// CountHolders returns the number of traders with a nonzero balance in the token.
func (s *PortfolioStore) CountHolders(_ context.Context, tokenID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, p := range s.data {
		if p.TokenID == tokenID && p.TokenBalance > 0 {
			count++
		}
	}
	return count, nil
}

var _ storage.PortfolioStore = (*PortfolioStore)(nil)
