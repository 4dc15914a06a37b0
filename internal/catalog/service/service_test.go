package service

import (
	"context"
	"errors"
	"testing"

	"printsite_backend/internal/catalog/repository"
	"printsite_backend/internal/catalog/transport"
	"printsite_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeReader struct {
	items []repository.Offering
	calls int
	err   error
}

func (r *fakeReader) ListActive(context.Context) ([]repository.Offering, error) {
	r.calls++
	return r.items, r.err
}

func (r *fakeReader) GetBySlug(context.Context, string) (repository.Offering, error) {
	return repository.Offering{}, errors.New("not used")
}

type mapCache struct {
	groups []transport.CategoryGroup
	getErr error
	sets   int
}

func (c *mapCache) Get(context.Context) ([]transport.CategoryGroup, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.groups, c.groups != nil, nil
}

func (c *mapCache) Set(_ context.Context, groups []transport.CategoryGroup) error {
	c.sets++
	c.groups = groups
	return nil
}

func offering(category, name string, order int) repository.Offering {
	return repository.Offering{ID: uuid.New(), Category: category, Name: name, Slug: name, SortOrder: order, IsActive: true}
}

func TestGroupByCategory(t *testing.T) {
	groups := GroupByCategory([]repository.Offering{
		offering("Printing", "Posters", 30),
		offering("Signage", "Shopfront Signs", 10),
		offering("Printing", "Business Cards", 10),
		offering("Printing", "Flyers", 10),
	})

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Category != "Printing" || groups[1].Category != "Signage" {
		t.Fatalf("unexpected category order %q, %q", groups[0].Category, groups[1].Category)
	}

	want := []string{"Business Cards", "Flyers", "Posters"}
	for i, name := range want {
		if groups[0].Offerings[i].Name != name {
			t.Fatalf("position %d: expected %q, got %q", i, name, groups[0].Offerings[i].Name)
		}
	}
}

func TestListActiveGroupedUsesCache(t *testing.T) {
	reader := &fakeReader{items: []repository.Offering{offering("Signage", "Banners", 10)}}
	cache := &mapCache{}
	svc := New(reader, logger.New("test"))
	svc.SetCache(cache)

	for i := 0; i < 2; i++ {
		groups, err := svc.ListActiveGrouped(context.Background())
		if err != nil {
			t.Fatalf("ListActiveGrouped: %v", err)
		}
		if len(groups) != 1 {
			t.Fatalf("expected 1 group, got %d", len(groups))
		}
	}
	if reader.calls != 1 || cache.sets != 1 {
		t.Fatalf("expected one database read and one cache write, got %d and %d", reader.calls, cache.sets)
	}
}

func TestListActiveGroupedFallsBackOnCacheError(t *testing.T) {
	reader := &fakeReader{items: []repository.Offering{offering("Signage", "Banners", 10)}}
	svc := New(reader, logger.New("test"))
	svc.SetCache(&mapCache{getErr: errors.New("redis down")})

	groups, err := svc.ListActiveGrouped(context.Background())
	if err != nil {
		t.Fatalf("cache failure must not fail the read: %v", err)
	}
	if len(groups) != 1 || reader.calls != 1 {
		t.Fatalf("expected database fallback, got %d groups after %d reads", len(groups), reader.calls)
	}
}

func TestListActiveGroupedPropagatesRepoError(t *testing.T) {
	svc := New(&fakeReader{err: errors.New("boom")}, logger.New("test"))
	if _, err := svc.ListActiveGrouped(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
