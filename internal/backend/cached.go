package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cached memoizes successful pages of an inner backend for a short TTL, so
// retyping a query or reopening a search does not hit the index again.
type Cached struct {
	inner Backend
	store *cache.Cache
}

// NewCached wraps inner. A non-positive ttl disables caching.
func NewCached(inner Backend, ttl time.Duration) *Cached {
	var store *cache.Cache
	if ttl > 0 {
		store = cache.New(ttl, 2*ttl)
	}
	return &Cached{inner: inner, store: store}
}

// SearchStandard serves from cache when the exact query was seen recently
func (c *Cached) SearchStandard(ctx context.Context, q StandardQuery) (StandardPage, error) {
	if c.store == nil {
		return c.inner.SearchStandard(ctx, q)
	}
	key := fmt.Sprintf("std|%+v", q)
	if v, ok := c.store.Get(key); ok {
		return v.(StandardPage), nil
	}
	page, err := c.inner.SearchStandard(ctx, q)
	if err != nil {
		return page, err
	}
	c.store.SetDefault(key, page)
	return page, nil
}

// SearchRestricted serves from cache when the exact query was seen recently
func (c *Cached) SearchRestricted(ctx context.Context, q RestrictedQuery) (RestrictedPage, error) {
	if c.store == nil {
		return c.inner.SearchRestricted(ctx, q)
	}
	key := fmt.Sprintf("rst|%+v", q)
	if v, ok := c.store.Get(key); ok {
		return v.(RestrictedPage), nil
	}
	page, err := c.inner.SearchRestricted(ctx, q)
	if err != nil {
		return page, err
	}
	c.store.SetDefault(key, page)
	return page, nil
}

// CountRestricted forwards to the inner backend when it can count
func (c *Cached) CountRestricted(ctx context.Context, q RestrictedQuery) (int, error) {
	counter, ok := c.inner.(Counter)
	if !ok {
		return 0, fmt.Errorf("backend %T cannot count restricted results", c.inner)
	}
	return counter.CountRestricted(ctx, q)
}

// Flush drops every cached page, e.g. after the index changed
func (c *Cached) Flush() {
	if c.store != nil {
		c.store.Flush()
	}
}
