package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/pbaille/mdpress/internal/domain"
	"github.com/pbaille/mdpress/internal/markdown"
	"github.com/pbaille/mdpress/internal/site"
	"github.com/pbaille/mdpress/internal/termcache"
)

// NewDraft publishes the draft named by query[0]. On success the placeholder
// tokens in the draft are replaced by the new id and the file is moved to the
// posts or pages directory.
func (p *Publisher) NewDraft(ctx context.Context, query []string) error {
	if len(query) == 0 || query[0] == "" {
		return fmt.Errorf("no draft id given: %w", domain.ErrNotFound)
	}

	path, err := p.layout.Find(site.KindDraft, query[0])
	if err != nil {
		return err
	}
	doc, err := p.renderer.ParseFile(path)
	if err != nil {
		return err
	}

	remote, err := p.site()
	if err != nil {
		return err
	}
	cache, err := p.terms()
	if err != nil {
		return err
	}
	if err := p.refreshArticleTaxonomies(ctx, remote, cache); err != nil {
		return err
	}
	terms, err := cache.Resolve(doc.Meta.Categories, doc.Meta.Tags)
	if err != nil {
		return fmt.Errorf("draft %s: %w", query[0], err)
	}

	post := articlePost(doc, terms)
	id, err := remote.NewPost(ctx, post)
	if err != nil {
		return fmt.Errorf("publish draft %s: %w", query[0], err)
	}
	if id == "" {
		return fmt.Errorf("publish draft %s: site returned no id", query[0])
	}
	p.printer.Success("%s %s created", post.Type, id)

	if err := site.WriteBack(path, id); err != nil {
		return err
	}
	dst := p.layout.PublishedPath(doc.Meta, id)
	if err := site.Move(path, dst); err != nil {
		return err
	}
	p.printer.Info("moved %s to %s", path, dst)
	return nil
}

// articlePost builds the remote record for a parsed article
func articlePost(doc *markdown.Document, terms []domain.Term) *domain.Post {
	meta := doc.Meta
	post := &domain.Post{
		Type:     domain.PostTypePost,
		Title:    meta.Title,
		Slug:     meta.NiceName,
		Date:     meta.Date,
		Modified: meta.Modified,
		Author:   meta.Author,
		Content:  doc.HTML,
		Status:   meta.PostStatus,
		Terms:    terms,
	}
	if meta.IsPage() {
		post.Type = domain.PostTypePage
	}
	return post
}

// UpdateArticles pushes the local copies of the given posts, pages or drafts.
// Ranges such as 3-5 are expanded. Each id is handled on its own: a failure is
// reported and the batch moves on.
func (p *Publisher) UpdateArticles(ctx context.Context, kind site.Kind, query []string) error {
	ids, err := ExpandIDs(query)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no %s id given: %w", kind, domain.ErrNotFound)
	}

	remote, err := p.site()
	if err != nil {
		return err
	}
	cache, err := p.terms()
	if err != nil {
		return err
	}
	if err := p.refreshArticleTaxonomies(ctx, remote, cache); err != nil {
		return err
	}

	failed := 0
	for _, id := range ids {
		if err := p.updateArticle(ctx, remote, cache, kind, id); err != nil {
			failed++
			p.printer.Report(fmt.Errorf("update %s %s: %w", kind, id, err))
		}
	}
	if failed > 0 && len(ids) > 1 {
		p.printer.Warning("%d of %d updates failed", failed, len(ids))
	}
	return nil
}

func (p *Publisher) updateArticle(ctx context.Context, remote Remote, cache *termcache.Cache, kind site.Kind, id string) error {
	path, err := p.layout.Find(kind, id)
	if err != nil {
		return err
	}
	doc, err := p.renderer.ParseFile(path)
	if err != nil {
		return err
	}
	meta := doc.Meta

	// drafts and pages are not named by their remote id
	remoteID := id
	if kind == site.KindDraft || kind == site.KindPage {
		remoteID = meta.PostID
	}

	post, err := remote.GetPost(ctx, remoteID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			p.printer.Warning("no post %q on the site", remoteID)
			return nil
		}
		return err
	}
	p.printer.Header("old article")
	p.printer.Post(post)

	post.Title = meta.Title
	post.Author = meta.Author
	post.Slug = meta.NiceName
	post.Date = meta.Date
	post.Content = doc.HTML
	if meta.Modified != nil {
		post.Modified = meta.Modified
	}
	post.Status = meta.PostStatus

	terms, err := cache.Resolve(meta.Categories, meta.Tags)
	if err != nil {
		return err
	}
	post.Terms = terms

	ok, err := remote.EditPost(ctx, remoteID, post)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("site rejected the update of %s", remoteID)
	}
	p.printer.Success("updated %s", remoteID)
	return nil
}
