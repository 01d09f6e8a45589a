package domain

import "time"

// Well-known taxonomy names
const (
	TaxonomyCategory = "category"
	TaxonomyTag      = "post_tag"
)

// PostType distinguishes posts from pages
type PostType string

const (
	PostTypePost PostType = "post"
	PostTypePage PostType = "page"
)

// PostStatus is the publication state of a post or page
type PostStatus string

const (
	StatusPublish PostStatus = "publish"
	StatusDraft   PostStatus = "draft"
	StatusPending PostStatus = "pending"
	StatusPrivate PostStatus = "private"
)

// Article is the metadata parsed from a Markdown file header.
// It is never mutated after parsing.
type Article struct {
	Title      string            `json:"title"`
	PostID     string            `json:"postid"`
	NiceName   string            `json:"nicename"`
	Slug       string            `json:"slug"`
	Date       time.Time         `json:"date"`
	Author     string            `json:"author"`
	Tags       []string          `json:"tags,omitempty"`
	Categories []string          `json:"category,omitempty"`
	Modified   *time.Time        `json:"modified,omitempty"`
	PostType   PostType          `json:"posttype"`
	PostStatus PostStatus        `json:"poststatus"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// IsPage reports whether the article should be published as a page
func (a *Article) IsPage() bool {
	return a.PostType == PostTypePage
}

// Term is a single value within a taxonomy. Identity is (Taxonomy, Slug).
type Term struct {
	ID          string `json:"id" yaml:"id" toml:"id" xmlrpc:"term_id"`
	GroupID     string `json:"group" yaml:"group" toml:"group" xmlrpc:"term_group"`
	TaxonomyID  string `json:"taxonomy_id" yaml:"taxonomy_id" toml:"taxonomy_id" xmlrpc:"term_taxonomy_id"`
	Taxonomy    string `json:"taxonomy" yaml:"taxonomy" toml:"taxonomy" xmlrpc:"taxonomy"`
	Name        string `json:"name" yaml:"name" toml:"name" xmlrpc:"name"`
	Slug        string `json:"slug" yaml:"slug" toml:"slug" xmlrpc:"slug"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty" xmlrpc:"description"`
	ParentID    string `json:"parent,omitempty" yaml:"parent,omitempty" toml:"parent,omitempty" xmlrpc:"parent"`
	Count       int    `json:"count" yaml:"count" toml:"count" xmlrpc:"count"`
}

// Post is the record sent to and received from the remote service.
// Type discriminates between a post and a page.
type Post struct {
	ID       string     `json:"id"`
	Type     PostType   `json:"type"`
	Title    string     `json:"title"`
	Slug     string     `json:"slug"`
	Date     time.Time  `json:"date"`
	Modified *time.Time `json:"modified,omitempty"`
	Author   string     `json:"author"`
	Content  string     `json:"content,omitempty"`
	Status   PostStatus `json:"status"`
	Terms    []Term     `json:"terms,omitempty"`
}

// Taxonomy describes a classification scheme on the remote site
type Taxonomy struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	Hierarchical bool   `json:"hierarchical"`
	Public       bool   `json:"public"`
	Builtin      bool   `json:"builtin"`
}

// Option is a single site option
type Option struct {
	Name     string `json:"name"`
	Desc     string `json:"desc"`
	Value    string `json:"value"`
	ReadOnly bool   `json:"readonly"`
}

// PostFilter narrows a post listing
type PostFilter struct {
	Type    PostType `json:"post_type,omitempty"`
	Number  int      `json:"number,omitempty"`
	OrderBy string   `json:"orderby,omitempty"`
	Order   string   `json:"order,omitempty"`
}
