package publish

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pbaille/mdpress/internal/domain"
	"github.com/pbaille/mdpress/internal/site"
)

// ShowPosts prints one post when an id is given, otherwise the latest posts
func (p *Publisher) ShowPosts(ctx context.Context, query []string) error {
	return p.showArticles(ctx, domain.PostTypePost, query)
}

// ShowPages prints one page (by id or local slug) or the latest pages
func (p *Publisher) ShowPages(ctx context.Context, query []string) error {
	if len(query) > 0 {
		id, err := p.pageID(query[0])
		if err != nil {
			return err
		}
		query = []string{id}
	}
	return p.showArticles(ctx, domain.PostTypePage, query)
}

func (p *Publisher) showArticles(ctx context.Context, postType domain.PostType, query []string) error {
	remote, err := p.site()
	if err != nil {
		return err
	}

	if len(query) > 0 {
		post, err := remote.GetPost(ctx, query[0])
		if err != nil {
			return err
		}
		if p.json {
			return p.printer.JSON(post)
		}
		p.printer.Post(post)
		return nil
	}

	filter := p.filter
	filter.Type = postType
	posts, err := remote.ListPosts(ctx, filter)
	if err != nil {
		return err
	}
	if p.json {
		return p.printer.JSON(posts)
	}
	if len(posts) == 0 {
		p.printer.Warning("no %ss", postType)
		return nil
	}
	p.printer.Posts(posts)
	return nil
}

// pageID returns ref when numeric, otherwise the postid recorded in the
// local page file named ref
func (p *Publisher) pageID(ref string) (string, error) {
	if _, err := strconv.Atoi(ref); err == nil {
		return ref, nil
	}
	path, err := p.layout.Find(site.KindPage, ref)
	if err != nil {
		return "", err
	}
	doc, err := p.renderer.ParseFile(path)
	if err != nil {
		return "", err
	}
	return doc.Meta.PostID, nil
}

// ShowDrafts lists the local draft files
func (p *Publisher) ShowDrafts(ctx context.Context, query []string) error {
	files, err := p.layout.List(site.KindDraft)
	if err != nil {
		return err
	}
	if p.json {
		return p.printer.JSON(files)
	}
	if len(files) == 0 {
		p.printer.Warning("no drafts in %s", p.layout.Dir(site.KindDraft))
		return nil
	}
	for _, f := range files {
		p.printer.Print("%s", f)
	}
	return nil
}

// ShowOptions prints the named site options, or all of them
func (p *Publisher) ShowOptions(ctx context.Context, query []string) error {
	remote, err := p.site()
	if err != nil {
		return err
	}
	options, err := remote.GetOptions(ctx, query)
	if err != nil {
		return err
	}
	if p.json {
		return p.printer.JSON(options)
	}
	if len(options) == 0 {
		p.printer.Warning("no options")
		return nil
	}
	p.printer.Options(options)
	return nil
}

// ShowTaxonomies lists the site taxonomies, or a single one by name
func (p *Publisher) ShowTaxonomies(ctx context.Context, query []string) error {
	remote, err := p.site()
	if err != nil {
		return err
	}

	var taxonomies []domain.Taxonomy
	if len(query) > 0 {
		tax, err := remote.GetTaxonomy(ctx, query[0])
		if err != nil {
			return err
		}
		taxonomies = []domain.Taxonomy{*tax}
	} else {
		taxonomies, err = remote.ListTaxonomies(ctx)
		if err != nil {
			return err
		}
	}

	if p.json {
		return p.printer.JSON(taxonomies)
	}
	if len(taxonomies) == 0 {
		p.printer.Warning("no taxonomies")
		return nil
	}
	p.printer.Taxonomies(taxonomies)
	return nil
}

// ShowTerms prints the cached terms of a taxonomy, or one term by slug or
// name. A taxonomy missing from the cache is fetched first.
func (p *Publisher) ShowTerms(ctx context.Context, query []string) error {
	if len(query) == 0 {
		return fmt.Errorf("taxonomy name required, list them with 'mdpress show tax': %w", domain.ErrNotFound)
	}
	taxonomy := query[0]

	cache, err := p.terms()
	if err != nil {
		return err
	}
	if !cache.Has(taxonomy) {
		remote, err := p.site()
		if err != nil {
			return err
		}
		if _, err := cache.Refresh(ctx, remote, taxonomy); err != nil {
			return err
		}
	}

	if len(query) > 1 {
		term, ok := cache.Lookup(taxonomy, query[1])
		if !ok {
			p.printer.Warning("no term %q in %s", query[1], taxonomy)
			return nil
		}
		if p.json {
			return p.printer.JSON(term)
		}
		p.printer.Term(term)
		return nil
	}

	terms := cache.Sorted(taxonomy)
	if p.json {
		return p.printer.JSON(terms)
	}
	if len(terms) == 0 {
		p.printer.Warning("no terms in %s", taxonomy)
		return nil
	}
	p.printer.Terms(terms)
	return nil
}
