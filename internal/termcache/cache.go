// Package termcache holds the local copy of the site's taxonomy terms.
//
// Terms are keyed by taxonomy then slug. A refresh replaces a taxonomy's
// terms wholesale and is never persisted on its own: callers flush the
// cache to its store with Save after a successful remote create or update.
package termcache

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/pbaille/mdpress/internal/domain"
	"github.com/pbaille/mdpress/internal/store"
)

// Lister fetches every term of a taxonomy from the remote site
type Lister interface {
	ListTerms(ctx context.Context, taxonomy string) ([]domain.Term, error)
}

// Cache maps taxonomy name to slug to term
type Cache struct {
	terms  store.Snapshot
	store  store.Store
	logger *slog.Logger
}

// New returns an empty cache backed by s (which may be nil for a memory-only cache)
func New(s store.Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{terms: store.Snapshot{}, store: s, logger: logger}
}

// Load returns a cache primed from s
func Load(s store.Store, logger *slog.Logger) (*Cache, error) {
	c := New(s, logger)
	snap, err := s.Load()
	if err != nil {
		return nil, fmt.Errorf("load term cache: %w", err)
	}
	c.terms = snap
	c.logger.Debug("term cache loaded", "terms", snap.Count(), "taxonomies", len(snap))
	return c, nil
}

// Terms returns a copy of the cached terms of taxonomy; empty when not cached
func (c *Cache) Terms(taxonomy string) map[string]domain.Term {
	out := make(map[string]domain.Term, len(c.terms[taxonomy]))
	for slug, t := range c.terms[taxonomy] {
		out[slug] = t
	}
	return out
}

// Sorted returns the cached terms of taxonomy ordered by slug
func (c *Cache) Sorted(taxonomy string) []domain.Term {
	terms := make([]domain.Term, 0, len(c.terms[taxonomy]))
	for _, t := range c.terms[taxonomy] {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Slug < terms[j].Slug })
	return terms
}

// Has reports whether taxonomy has been cached
func (c *Cache) Has(taxonomy string) bool {
	_, ok := c.terms[taxonomy]
	return ok
}

// Replace drops every cached term of taxonomy and stores terms instead
func (c *Cache) Replace(taxonomy string, terms []domain.Term) {
	fresh := make(map[string]domain.Term, len(terms))
	for _, t := range terms {
		if t.Taxonomy == "" {
			t.Taxonomy = taxonomy
		}
		fresh[t.Slug] = t
	}
	c.terms[taxonomy] = fresh
}

// Put inserts or overwrites a single term
func (c *Cache) Put(t domain.Term) {
	if c.terms[t.Taxonomy] == nil {
		c.terms[t.Taxonomy] = map[string]domain.Term{}
	}
	c.terms[t.Taxonomy][t.Slug] = t
}

// Remove drops a single term
func (c *Cache) Remove(taxonomy, slug string) {
	delete(c.terms[taxonomy], slug)
}

// Lookup finds a term by slug, then by case-insensitive name.
// It never goes to the network.
func (c *Cache) Lookup(taxonomy, name string) (domain.Term, bool) {
	terms := c.terms[taxonomy]
	if t, ok := terms[name]; ok {
		return t, true
	}
	for _, t := range terms {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return domain.Term{}, false
}

// Refresh fetches taxonomy from the site and replaces the cached copy.
// On failure the cache is left untouched.
func (c *Cache) Refresh(ctx context.Context, lister Lister, taxonomy string) ([]domain.Term, error) {
	terms, err := lister.ListTerms(ctx, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", taxonomy, err)
	}
	c.Replace(taxonomy, terms)
	c.logger.Debug("taxonomy refreshed", "taxonomy", taxonomy, "terms", len(terms))
	return terms, nil
}

// Resolve maps category and tag names to cached terms.
// It is all or nothing: the first unknown name fails the whole call.
func (c *Cache) Resolve(categories, tags []string) ([]domain.Term, error) {
	var terms []domain.Term
	for _, group := range []struct {
		taxonomy string
		names    []string
	}{
		{domain.TaxonomyCategory, categories},
		{domain.TaxonomyTag, tags},
	} {
		for _, name := range group.names {
			t, ok := c.Lookup(group.taxonomy, name)
			if !ok {
				return nil, &domain.UnresolvedTermError{Taxonomy: group.taxonomy, Name: name}
			}
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return nil, domain.ErrNoTerms
	}
	return terms, nil
}

// Snapshot returns a deep copy of the whole cache
func (c *Cache) Snapshot() store.Snapshot {
	snap := make(store.Snapshot, len(c.terms))
	for taxonomy := range c.terms {
		snap[taxonomy] = c.Terms(taxonomy)
	}
	return snap
}

// Save writes the whole cache to its store
func (c *Cache) Save() error {
	if c.store == nil {
		return nil
	}
	snap := c.Snapshot()
	if err := c.store.Save(snap); err != nil {
		return fmt.Errorf("save term cache: %w", err)
	}

	attrs := []any{"terms", snap.Count()}
	if r, ok := c.store.(interface{ Revision() string }); ok {
		attrs = append(attrs, "revision", r.Revision())
	}
	c.logger.Debug("term cache saved", attrs...)
	return nil
}
