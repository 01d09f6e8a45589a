package publish

import (
	"context"
	"fmt"

	"github.com/pbaille/mdpress/internal/domain"
)

// NewTerm creates a term from query: taxonomy, slug, optional name (defaults
// to slug) and optional description. The taxonomy is refreshed first and an
// existing slug aborts with a *domain.CollisionError. The created term is
// read back from the site and saved to the cache.
func (p *Publisher) NewTerm(ctx context.Context, query []string) error {
	if len(query) < 2 {
		return fmt.Errorf("new term needs <taxonomy> <slug> [name [description]]: %w", ErrUsage)
	}
	taxonomy, slug := query[0], query[1]
	term := domain.Term{Taxonomy: taxonomy, Slug: slug, Name: slug}
	if len(query) > 2 {
		term.Name = query[2]
	}
	if len(query) > 3 {
		term.Description = query[3]
	}

	remote, err := p.site()
	if err != nil {
		return err
	}
	cache, err := p.terms()
	if err != nil {
		return err
	}
	if _, err := cache.Refresh(ctx, remote, taxonomy); err != nil {
		return err
	}
	if _, exists := cache.Terms(taxonomy)[slug]; exists {
		return &domain.CollisionError{Taxonomy: taxonomy, Slug: slug}
	}

	id, err := remote.NewTerm(ctx, term)
	if err != nil {
		return fmt.Errorf("create term %s: %w", slug, err)
	}
	if id == "" {
		return fmt.Errorf("create term %s: site returned no id", slug)
	}
	created, err := remote.GetTerm(ctx, taxonomy, id)
	if err != nil {
		return fmt.Errorf("read back term %s: %w", id, err)
	}
	if created.Taxonomy == "" {
		created.Taxonomy = taxonomy
	}
	p.printer.Success("term %s (%s) created", term.Name, id)

	cache.Put(*created)
	if err := cache.Save(); err != nil {
		return err
	}
	p.printer.Info("term %s saved to cache", created.Slug)
	return nil
}

// UpdateTerm refreshes a taxonomy and, given taxonomy, slug-or-name, new name
// and optional description, rewrites that term on the site. The slug is kept
// and tags never carry a parent. Once the site accepts the edit the term is
// read back and the cache saved.
func (p *Publisher) UpdateTerm(ctx context.Context, query []string) error {
	if len(query) == 0 {
		return fmt.Errorf("taxonomy name required, list them with 'mdpress show tax': %w", ErrUsage)
	}
	taxonomy := query[0]

	remote, err := p.site()
	if err != nil {
		return err
	}
	cache, err := p.terms()
	if err != nil {
		return err
	}
	terms, err := cache.Refresh(ctx, remote, taxonomy)
	if err != nil {
		return err
	}

	if len(query) < 3 {
		if len(terms) == 0 {
			p.printer.Warning("no terms in %s", taxonomy)
			return nil
		}
		p.printer.Success("%s refreshed, %d terms", taxonomy, len(terms))
		return nil
	}

	current, ok := cache.Lookup(taxonomy, query[1])
	if !ok {
		return fmt.Errorf("term %q in %s: %w", query[1], taxonomy, domain.ErrNotFound)
	}
	term, err := remote.GetTerm(ctx, taxonomy, current.ID)
	if err != nil {
		return fmt.Errorf("read term %s: %w", current.ID, err)
	}
	if term.Taxonomy == "" {
		term.Taxonomy = taxonomy
	}

	// query[1] may have matched the name; the slug stays the site's
	term.Slug = current.Slug
	term.Name = query[2]
	if len(query) > 3 {
		term.Description = query[3]
	}
	if term.Taxonomy == domain.TaxonomyTag {
		term.ParentID = ""
	}

	ok, err = remote.EditTerm(ctx, term.ID, *term)
	if err != nil {
		return fmt.Errorf("update term %s: %w", term.ID, err)
	}
	if !ok {
		return fmt.Errorf("site rejected the update of term %s (%s)", term.Slug, term.ID)
	}

	saved, err := remote.GetTerm(ctx, taxonomy, term.ID)
	if err != nil {
		return fmt.Errorf("read back term %s: %w", term.ID, err)
	}
	if saved.Taxonomy == "" {
		saved.Taxonomy = taxonomy
	}

	cache.Remove(taxonomy, current.Slug)
	cache.Put(*saved)
	if err := cache.Save(); err != nil {
		return err
	}
	p.printer.Success("term %s (%s) saved", saved.Slug, saved.ID)
	return nil
}
