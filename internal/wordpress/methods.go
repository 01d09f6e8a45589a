package wordpress

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pbaille/mdpress/internal/domain"
)

// remotePost is the wire shape of a post or page
type remotePost struct {
	ID       string        `xmlrpc:"post_id"`
	Title    string        `xmlrpc:"post_title"`
	Date     time.Time     `xmlrpc:"post_date"`
	Modified time.Time     `xmlrpc:"post_modified"`
	Status   string        `xmlrpc:"post_status"`
	Type     string        `xmlrpc:"post_type"`
	Name     string        `xmlrpc:"post_name"`
	Author   string        `xmlrpc:"post_author"`
	Content  string        `xmlrpc:"post_content"`
	Terms    []domain.Term `xmlrpc:"terms"`
}

func (r remotePost) toDomain() *domain.Post {
	post := &domain.Post{
		ID:      r.ID,
		Type:    domain.PostType(r.Type),
		Title:   r.Title,
		Slug:    r.Name,
		Date:    r.Date,
		Author:  r.Author,
		Content: r.Content,
		Status:  domain.PostStatus(r.Status),
		Terms:   r.Terms,
	}
	if !r.Modified.IsZero() {
		modified := r.Modified
		post.Modified = &modified
	}
	return post
}

// postContent builds the content struct for wp.newPost / wp.editPost
func postContent(post *domain.Post) map[string]interface{} {
	content := map[string]interface{}{
		"post_type":    string(post.Type),
		"post_status":  string(post.Status),
		"post_title":   post.Title,
		"post_name":    post.Slug,
		"post_content": post.Content,
	}
	if post.Type == "" {
		content["post_type"] = string(domain.PostTypePost)
	}
	if !post.Date.IsZero() {
		content["post_date"] = post.Date
	}
	if post.Modified != nil {
		content["post_modified"] = *post.Modified
	}
	if post.Author != "" {
		if id, err := strconv.Atoi(post.Author); err == nil {
			content["post_author"] = id
		} else {
			content["post_author"] = post.Author
		}
	}
	if len(post.Terms) > 0 {
		byTaxonomy := map[string][]string{}
		for _, t := range post.Terms {
			byTaxonomy[t.Taxonomy] = append(byTaxonomy[t.Taxonomy], t.ID)
		}
		content["terms"] = byTaxonomy
	}
	return content
}

// termContent builds the content struct for wp.newTerm / wp.editTerm.
// An empty parent is left out.
func termContent(t domain.Term) map[string]interface{} {
	content := map[string]interface{}{
		"taxonomy": t.Taxonomy,
		"name":     t.Name,
		"slug":     t.Slug,
	}
	if t.Description != "" {
		content["description"] = t.Description
	}
	if t.ParentID != "" && t.ParentID != "0" {
		content["parent"] = t.ParentID
	}
	return content
}

// ListPosts returns posts matching filter
func (c *Client) ListPosts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	f := map[string]interface{}{}
	if filter.Type != "" {
		f["post_type"] = string(filter.Type)
	}
	if filter.Number > 0 {
		f["number"] = filter.Number
	}
	if filter.OrderBy != "" {
		f["orderby"] = filter.OrderBy
	}
	if filter.Order != "" {
		f["order"] = filter.Order
	}

	var reply []remotePost
	if err := c.call(ctx, "wp.getPosts", &reply, f); err != nil {
		return nil, err
	}
	posts := make([]domain.Post, len(reply))
	for i, r := range reply {
		posts[i] = *r.toDomain()
	}
	return posts, nil
}

// GetPost fetches a single post or page by id
func (c *Client) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	var reply remotePost
	if err := c.call(ctx, "wp.getPost", &reply, id); err != nil {
		return nil, err
	}
	if reply.ID == "" {
		return nil, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	return reply.toDomain(), nil
}

// NewPost creates a post or page and returns its id
func (c *Client) NewPost(ctx context.Context, post *domain.Post) (string, error) {
	var id string
	if err := c.call(ctx, "wp.newPost", &id, postContent(post)); err != nil {
		return "", err
	}
	return id, nil
}

// EditPost overwrites post id and reports whether the site accepted it
func (c *Client) EditPost(ctx context.Context, id string, post *domain.Post) (bool, error) {
	var ok bool
	if err := c.call(ctx, "wp.editPost", &ok, id, postContent(post)); err != nil {
		return false, err
	}
	return ok, nil
}

type remoteTaxonomy struct {
	Name         string `xmlrpc:"name"`
	Label        string `xmlrpc:"label"`
	Hierarchical bool   `xmlrpc:"hierarchical"`
	Public       bool   `xmlrpc:"public"`
	Builtin      bool   `xmlrpc:"_builtin"`
}

func (r remoteTaxonomy) toDomain() domain.Taxonomy {
	return domain.Taxonomy{
		Name:         r.Name,
		Label:        r.Label,
		Hierarchical: r.Hierarchical,
		Public:       r.Public,
		Builtin:      r.Builtin,
	}
}

// ListTaxonomies returns every registered taxonomy
func (c *Client) ListTaxonomies(ctx context.Context) ([]domain.Taxonomy, error) {
	var reply []remoteTaxonomy
	if err := c.call(ctx, "wp.getTaxonomies", &reply); err != nil {
		return nil, err
	}
	out := make([]domain.Taxonomy, len(reply))
	for i, r := range reply {
		out[i] = r.toDomain()
	}
	return out, nil
}

// GetTaxonomy fetches a single taxonomy by name
func (c *Client) GetTaxonomy(ctx context.Context, name string) (*domain.Taxonomy, error) {
	var reply remoteTaxonomy
	if err := c.call(ctx, "wp.getTaxonomy", &reply, name); err != nil {
		return nil, err
	}
	tax := reply.toDomain()
	return &tax, nil
}

// ListTerms returns every term of taxonomy
func (c *Client) ListTerms(ctx context.Context, taxonomy string) ([]domain.Term, error) {
	var reply []domain.Term
	if err := c.call(ctx, "wp.getTerms", &reply, taxonomy); err != nil {
		return nil, err
	}
	return reply, nil
}

// GetTerm fetches a term by id
func (c *Client) GetTerm(ctx context.Context, taxonomy, id string) (*domain.Term, error) {
	var reply domain.Term
	if err := c.call(ctx, "wp.getTerm", &reply, taxonomy, id); err != nil {
		return nil, err
	}
	if reply.ID == "" {
		return nil, fmt.Errorf("term %s/%s: %w", taxonomy, id, domain.ErrNotFound)
	}
	return &reply, nil
}

// NewTerm creates a term and returns its id
func (c *Client) NewTerm(ctx context.Context, t domain.Term) (string, error) {
	var id string
	if err := c.call(ctx, "wp.newTerm", &id, termContent(t)); err != nil {
		return "", err
	}
	return id, nil
}

// EditTerm overwrites term id and reports whether the site accepted it
func (c *Client) EditTerm(ctx context.Context, id string, t domain.Term) (bool, error) {
	var ok bool
	if err := c.call(ctx, "wp.editTerm", &ok, id, termContent(t)); err != nil {
		return false, err
	}
	return ok, nil
}

type remoteOption struct {
	Desc     string      `xmlrpc:"desc"`
	Value    interface{} `xmlrpc:"value"`
	ReadOnly bool        `xmlrpc:"readonly"`
}

// GetOptions returns the named site options, or all of them when names is empty
func (c *Client) GetOptions(ctx context.Context, names []string) ([]domain.Option, error) {
	var reply map[string]remoteOption
	args := []interface{}{}
	if len(names) > 0 {
		args = append(args, names)
	}
	if err := c.call(ctx, "wp.getOptions", &reply, args...); err != nil {
		return nil, err
	}

	out := make([]domain.Option, 0, len(reply))
	for name, o := range reply {
		value := ""
		if o.Value != nil {
			value = fmt.Sprint(o.Value)
		}
		out = append(out, domain.Option{Name: name, Desc: o.Desc, Value: value, ReadOnly: o.ReadOnly})
	}
	return out, nil
}
