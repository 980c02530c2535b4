package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"meme-market-sim/internal/domain"
	"meme-market-sim/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu       sync.RWMutex
	data     map[string]*domain.Token // keyed by token id
	bySymbol map[string]string        // upper symbol -> id
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		data:     make(map[string]*domain.Token),
		bySymbol: make(map[string]string),
	}
}

// Insert adds a new token. Returns ErrDuplicateKey if the id or symbol exists.
func (s *TokenStore) Insert(_ context.Context, t *domain.Token) error {
	if t == nil || t.ID == "" || t.Symbol == "" {
		return storage.ErrInvalidInput
	}

	symbol := strings.ToUpper(t.Symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.ID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.bySymbol[symbol]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *t
	s.data[t.ID] = &cp
	s.bySymbol[symbol] = t.ID
	return nil
}

// GetByID retrieves a token by id. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByID(_ context.Context, tokenID string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[tokenID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cp := *t
	return &cp, nil
}

// GetBySymbol retrieves a token by its (upper-cased) symbol.
func (s *TokenStore) GetBySymbol(_ context.Context, symbol string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.bySymbol[strings.ToUpper(symbol)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cp := *s.data[id]
	return &cp, nil
}

// Update overwrites an existing token. Returns ErrNotFound if not exists.
func (s *TokenStore) Update(_ context.Context, t *domain.Token) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.ID]; !exists {
		return storage.ErrNotFound
	}

	cp := *t
	s.data[t.ID] = &cp
	return nil
}

// ListActive retrieves all non-rugged tokens, newest first, up to limit.
func (s *TokenStore) ListActive(_ context.Context, limit int) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Token
	for _, t := range s.data {
		if t.IsRugged {
			continue
		}
		cp := *t
		result = append(result, &cp)
	}

	sortTokensNewestFirst(result)

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ListAll retrieves every token including rugged ones, newest first.
func (s *TokenStore) ListAll(_ context.Context) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Token, 0, len(s.data))
	for _, t := range s.data {
		cp := *t
		result = append(result, &cp)
	}

	sortTokensNewestFirst(result)
	return result, nil
}

// CountByCreator returns how many tokens the creator has minted.
func (s *TokenStore) CountByCreator(_ context.Context, creatorID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, t := range s.data {
		if t.CreatorID == creatorID {
			count++
		}
	}
	return count, nil
}

func sortTokensNewestFirst(tokens []*domain.Token) {
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].CreatedAt != tokens[j].CreatedAt {
			return tokens[i].CreatedAt > tokens[j].CreatedAt
		}
		return tokens[i].ID < tokens[j].ID
	})
}

var _ storage.TokenStore = (*TokenStore)(nil)
