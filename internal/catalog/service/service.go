package service

import (
	"context"
	"fmt"
	"sort"

	"printsite_backend/internal/catalog/repository"
	"printsite_backend/internal/catalog/transport"
	"printsite_backend/platform/logger"
)

// Cache stores the grouped catalog between reads.
type Cache interface {
	Get(ctx context.Context) ([]transport.CategoryGroup, bool, error)
	Set(ctx context.Context, groups []transport.CategoryGroup) error
}

// Service provides read-only catalog queries.
type Service struct {
	repo  repository.Reader
	cache Cache // optional
	log   *logger.Logger
}

// New creates a new catalog service.
func New(repo repository.Reader, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SetCache enables read-through caching of the grouped catalog.
func (s *Service) SetCache(cache Cache) {
	s.cache = cache
}

// ListActiveGrouped returns active offerings grouped by category. Cache
// failures fall back to the database.
func (s *Service) ListActiveGrouped(ctx context.Context) ([]transport.CategoryGroup, error) {
	if s.cache != nil {
		groups, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn("catalog cache read failed", "error", err)
		} else if ok {
			return groups, nil
		}
	}

	items, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	groups := GroupByCategory(items)

	if s.cache != nil {
		if err := s.cache.Set(ctx, groups); err != nil {
			s.log.Warn("catalog cache write failed", "error", err)
		}
	}
	return groups, nil
}

// GroupByCategory groups offerings by category. Categories keep the order in
// which they first appear; offerings inside a category are sorted by sort
// order, then name.
func GroupByCategory(items []repository.Offering) []transport.CategoryGroup {
	index := make(map[string]int)
	sorted := make([][]repository.Offering, 0)
	names := make([]string, 0)

	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(names)
			index[item.Category] = i
			names = append(names, item.Category)
			sorted = append(sorted, nil)
		}
		sorted[i] = append(sorted[i], item)
	}

	groups := make([]transport.CategoryGroup, len(names))
	for i, name := range names {
		members := sorted[i]
		sort.SliceStable(members, func(a, b int) bool {
			if members[a].SortOrder != members[b].SortOrder {
				return members[a].SortOrder < members[b].SortOrder
			}
			return members[a].Name < members[b].Name
		})

		offerings := make([]transport.OfferingResponse, len(members))
		for j, m := range members {
			offerings[j] = transport.OfferingResponse{ID: m.ID, Name: m.Name, Slug: m.Slug, Description: m.Description}
		}
		groups[i] = transport.CategoryGroup{Category: name, Offerings: offerings}
	}
	return groups
}
