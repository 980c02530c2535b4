package memory

import (
	"context"
	"sort"
	"sync"

	"meme-market-sim/internal/domain"
	"meme-market-sim/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of storage.PriceHistoryStore.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.PricePoint // keyed by token id
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{
		data: make(map[string][]*domain.PricePoint),
	}
}

// InsertBulk appends multiple points.
func (s *PriceHistoryStore) InsertBulk(_ context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	for _, p := range points {
		if p == nil || p.TokenID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		cp := *p
		s.data[p.TokenID] = append(s.data[p.TokenID], &cp)
	}
	return nil
}

// GetByToken retrieves all points for a token, ordered by timestamp ASC.
func (s *PriceHistoryStore) GetByToken(_ context.Context, tokenID string) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := s.data[tokenID]
	result := make([]*domain.PricePoint, 0, len(points))
	for _, p := range points {
		cp := *p
		result = append(result, &cp)
	}

	sortPointsAscending(result)
	return result, nil
}

// GetByTimeRange retrieves points for a token within [start, end] (inclusive).
func (s *PriceHistoryStore) GetByTimeRange(_ context.Context, tokenID string, start, end int64) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PricePoint
	for _, p := range s.data[tokenID] {
		if p.TimestampMs >= start && p.TimestampMs <= end {
			cp := *p
			result = append(result, &cp)
		}
	}

	sortPointsAscending(result)
	return result, nil
}

func sortPointsAscending(points []*domain.PricePoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].TimestampMs < points[j].TimestampMs
	})
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)
