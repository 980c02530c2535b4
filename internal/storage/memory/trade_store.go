package memory

import (
	"context"
	"sort"
	"sync"

	"meme-market-sim/internal/domain"
	"meme-market-sim/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
// The ledger is append-only; rows are never mutated after Append.
type TradeStore struct {
	mu     sync.RWMutex
	seen   map[string]struct{} // tx hashes
	trades []*domain.Trade     // append order
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		seen: make(map[string]struct{}),
	}
}

// Append adds a trade. Returns ErrDuplicateKey if the tx hash exists.
func (s *TradeStore) Append(_ context.Context, t *domain.Trade) error {
	if t == nil || t.TxHash == "" || t.TokenID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[t.TxHash]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *t
	s.seen[t.TxHash] = struct{}{}
	s.trades = append(s.trades, &cp)
	return nil
}

// GetRecent retrieves the newest trades, optionally filtered by token.
func (s *TradeStore) GetRecent(_ context.Context, tokenID string, limit int) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.trades {
		if tokenID != "" && t.TokenID != tokenID {
			continue
		}
		cp := *t
		result = append(result, &cp)
	}

	sortTradesNewestFirst(result)

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// GetByTrader retrieves all trades by a trader, newest first.
func (s *TradeStore) GetByTrader(_ context.Context, traderID string, limit int) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.trades {
		if t.TraderID != traderID {
			continue
		}
		cp := *t
		result = append(result, &cp)
	}

	sortTradesNewestFirst(result)

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func sortTradesNewestFirst(trades []*domain.Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp > trades[j].Timestamp
	})
}

var _ storage.TradeStore = (*TradeStore)(nil)
