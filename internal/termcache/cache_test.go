package termcache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/mdpress/internal/domain"
	"github.com/pbaille/mdpress/internal/store"
)

type stubLister struct {
	responses [][]domain.Term
	err       error
	calls     int
}

func (s *stubLister) ListTerms(ctx context.Context, taxonomy string) ([]domain.Term, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func cat(slug string) domain.Term {
	return domain.Term{ID: slug + "-id", Taxonomy: domain.TaxonomyCategory, Name: slug, Slug: slug}
}

func tag(slug string) domain.Term {
	return domain.Term{ID: slug + "-id", Taxonomy: domain.TaxonomyTag, Name: slug, Slug: slug}
}

func TestRefresh_ReplacesWholesale(t *testing.T) {
	c := New(nil, nil)
	lister := &stubLister{responses: [][]domain.Term{
		{cat("a"), cat("b")},
		{cat("c")},
	}}

	_, err := c.Refresh(context.Background(), lister, domain.TaxonomyCategory)
	require.NoError(t, err)
	assert.Len(t, c.Terms(domain.TaxonomyCategory), 2)

	got, err := c.Refresh(context.Background(), lister, domain.TaxonomyCategory)
	require.NoError(t, err)
	assert.Equal(t, []domain.Term{cat("c")}, got)
	assert.Equal(t, map[string]domain.Term{"c": cat("c")}, c.Terms(domain.TaxonomyCategory))
}

func TestRefresh_FailureLeavesCache(t *testing.T) {
	c := New(nil, nil)
	c.Put(cat("news"))

	lister := &stubLister{err: domain.ErrCredential}
	got, err := c.Refresh(context.Background(), lister, domain.TaxonomyCategory)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrCredential)
	assert.Equal(t, map[string]domain.Term{"news": cat("news")}, c.Terms(domain.TaxonomyCategory))
}

func TestRefresh_OtherTaxonomyUntouched(t *testing.T) {
	c := New(nil, nil)
	c.Put(tag("go"))

	_, err := c.Refresh(context.Background(), &stubLister{responses: [][]domain.Term{{cat("x")}}}, domain.TaxonomyCategory)
	require.NoError(t, err)

	_, ok := c.Lookup(domain.TaxonomyTag, "go")
	assert.True(t, ok)
}

func TestLookup(t *testing.T) {
	c := New(nil, nil)
	c.Put(domain.Term{ID: "1", Taxonomy: domain.TaxonomyCategory, Name: "Daily News", Slug: "news"})

	got, ok := c.Lookup(domain.TaxonomyCategory, "news")
	require.True(t, ok)
	assert.Equal(t, "1", got.ID)

	got, ok = c.Lookup(domain.TaxonomyCategory, "daily news")
	require.True(t, ok)
	assert.Equal(t, "news", got.Slug)

	_, ok = c.Lookup(domain.TaxonomyTag, "news")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	c := New(nil, nil)
	c.Put(cat("news"))
	c.Put(tag("go"))
	c.Put(tag("cli"))

	t.Run("all known", func(t *testing.T) {
		terms, err := c.Resolve([]string{"news"}, []string{"go", "cli"})
		require.NoError(t, err)
		assert.Equal(t, []domain.Term{cat("news"), tag("go"), tag("cli")}, terms)
	})

	t.Run("one unknown discards everything", func(t *testing.T) {
		terms, err := c.Resolve([]string{"news", "x"}, nil)
		assert.Nil(t, terms)
		require.ErrorIs(t, err, domain.ErrUnresolvedTerm)

		var unresolved *domain.UnresolvedTermError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, "x", unresolved.Name)
		assert.Equal(t, domain.TaxonomyCategory, unresolved.Taxonomy)
	})

	t.Run("unknown tag", func(t *testing.T) {
		_, err := c.Resolve([]string{"news"}, []string{"rust"})
		var unresolved *domain.UnresolvedTermError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, domain.TaxonomyTag, unresolved.Taxonomy)
	})

	t.Run("nothing to resolve", func(t *testing.T) {
		_, err := c.Resolve(nil, nil)
		assert.True(t, errors.Is(err, domain.ErrNoTerms))
	})
}

func TestSaveAndLoad(t *testing.T) {
	s := store.NewFile(filepath.Join(t.TempDir(), "terms.yaml"), store.FormatYAML)

	c, err := Load(s, nil)
	require.NoError(t, err)
	assert.False(t, c.Has(domain.TaxonomyCategory))

	c.Put(cat("news"))
	require.NoError(t, c.Save())

	reloaded, err := Load(s, nil)
	require.NoError(t, err)
	assert.True(t, reloaded.Has(domain.TaxonomyCategory))
	assert.Equal(t, []domain.Term{cat("news")}, reloaded.Sorted(domain.TaxonomyCategory))
}
