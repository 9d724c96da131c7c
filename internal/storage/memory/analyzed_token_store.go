// Package memory provides in-memory store implementations used by
// tests and by the server when no database is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/storage"
)

// AnalyzedTokenStore is an in-memory implementation of storage.AnalyzedTokenStore.
type AnalyzedTokenStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*domain.AnalyzedToken
	byMint map[string]int64
}

// NewAnalyzedTokenStore creates a new in-memory analyzed token store.
func NewAnalyzedTokenStore() *AnalyzedTokenStore {
	return &AnalyzedTokenStore{
		nextID: 1,
		byID:   make(map[int64]*domain.AnalyzedToken),
		byMint: make(map[string]int64),
	}
}

var _ storage.AnalyzedTokenStore = (*AnalyzedTokenStore)(nil)

// Upsert inserts or replaces the analysis record for a mint.
func (s *AnalyzedTokenStore) Upsert(_ context.Context, t *domain.AnalyzedToken) (int64, error) {
	if t == nil || t.Mint == "" {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.byMint[t.Mint]
	if !exists {
		id = s.nextID
		s.nextID++
		s.byMint[t.Mint] = id
	}

	rec := *t
	rec.ID = id
	s.byID[id] = &rec
	return id, nil
}

// GetByID retrieves a record by its ID.
func (s *AnalyzedTokenStore) GetByID(_ context.Context, id int64) (*domain.AnalyzedToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.byID[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	rec := *t
	return &rec, nil
}

// GetByMint retrieves the record for a mint.
func (s *AnalyzedTokenStore) GetByMint(_ context.Context, mint string) (*domain.AnalyzedToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byMint[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}
	rec := *s.byID[id]
	return &rec, nil
}

// List retrieves records ordered by analyzed_at DESC.
func (s *AnalyzedTokenStore) List(_ context.Context, limit, offset int) ([]*domain.AnalyzedToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedLocked()
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Search retrieves records matching the query, case-insensitive.
func (s *AnalyzedTokenStore) Search(_ context.Context, query string, limit int) ([]*domain.AnalyzedToken, error) {
	q := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AnalyzedToken
	for _, t := range s.sortedLocked() {
		if strings.Contains(strings.ToLower(t.Mint), q) ||
			strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.Symbol), q) ||
			strings.Contains(strings.ToLower(t.Acronym), q) {
			result = append(result, t)
			if limit > 0 && len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

// sortedLocked returns copies of all records, newest first. Caller must
// hold at least a read lock.
func (s *AnalyzedTokenStore) sortedLocked() []*domain.AnalyzedToken {
	result := make([]*domain.AnalyzedToken, 0, len(s.byID))
	for _, t := range s.byID {
		rec := *t
		result = append(result, &rec)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AnalyzedAt != result[j].AnalyzedAt {
			return result[i].AnalyzedAt > result[j].AnalyzedAt
		}
		return result[i].ID > result[j].ID
	})
	return result
}
