// Package publish implements the mdpress workflows: promoting drafts to the
// site, updating posts and pages, maintaining taxonomy terms and showing
// remote state.
//
// Every workflow runs against a Publisher built once per invocation. Errors
// are returned to the caller, which reports them and carries on; batch
// updates report per identifier and never abort the batch.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pbaille/mdpress/internal/domain"
	"github.com/pbaille/mdpress/internal/markdown"
	"github.com/pbaille/mdpress/internal/output"
	"github.com/pbaille/mdpress/internal/site"
	"github.com/pbaille/mdpress/internal/termcache"
)

// ErrUsage marks a command that was invoked with the wrong arguments
var ErrUsage = errors.New("invalid arguments")

// Remote is the site API, one method per remote procedure
type Remote interface {
	ListPosts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error)
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	NewPost(ctx context.Context, post *domain.Post) (string, error)
	EditPost(ctx context.Context, id string, post *domain.Post) (bool, error)
	ListTaxonomies(ctx context.Context) ([]domain.Taxonomy, error)
	GetTaxonomy(ctx context.Context, name string) (*domain.Taxonomy, error)
	ListTerms(ctx context.Context, taxonomy string) ([]domain.Term, error)
	GetTerm(ctx context.Context, taxonomy, id string) (*domain.Term, error)
	NewTerm(ctx context.Context, t domain.Term) (string, error)
	EditTerm(ctx context.Context, id string, t domain.Term) (bool, error)
	GetOptions(ctx context.Context, names []string) ([]domain.Option, error)
}

// Options wires a Publisher
type Options struct {
	// Remote is used as is when set; otherwise Connect is called on first use
	Remote  Remote
	Connect func() (Remote, error)

	// Cache is used as is when set; otherwise OpenCache is called the first
	// time a workflow needs the term cache
	Cache     *termcache.Cache
	OpenCache func() (*termcache.Cache, error)

	Layout   *site.Layout
	Renderer *markdown.Renderer
	Printer  *output.Printer
	Logger   *slog.Logger

	// Listing defaults for show post / show page
	Filter domain.PostFilter
	// JSON prints fetched entities as JSON instead of log lines
	JSON bool
}

// Publisher carries the state shared by the workflows of one invocation
type Publisher struct {
	remote    Remote
	connect   func() (Remote, error)
	cache     *termcache.Cache
	openCache func() (*termcache.Cache, error)
	layout    *site.Layout
	renderer  *markdown.Renderer
	printer   *output.Printer
	logger    *slog.Logger
	filter    domain.PostFilter
	json      bool
}

// New creates a Publisher
func New(opts Options) *Publisher {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Renderer == nil {
		opts.Renderer = markdown.NewRenderer()
	}
	if opts.Cache == nil && opts.OpenCache == nil {
		opts.Cache = termcache.New(nil, opts.Logger)
	}
	if opts.Printer == nil {
		opts.Printer = output.NewPrinter(output.PrinterOptions{})
	}
	return &Publisher{
		remote:    opts.Remote,
		connect:   opts.Connect,
		cache:     opts.Cache,
		openCache: opts.OpenCache,
		layout:    opts.Layout,
		renderer:  opts.Renderer,
		printer:   opts.Printer,
		logger:    opts.Logger,
		filter:    opts.Filter,
		json:      opts.JSON,
	}
}

// site returns the remote, connecting on first use
func (p *Publisher) site() (Remote, error) {
	if p.remote != nil {
		return p.remote, nil
	}
	if p.connect == nil {
		return nil, fmt.Errorf("no site configured: %w", domain.ErrConfig)
	}
	r, err := p.connect()
	if err != nil {
		return nil, err
	}
	p.remote = r
	return r, nil
}

// terms returns the term cache, loading it on first use
func (p *Publisher) terms() (*termcache.Cache, error) {
	if p.cache != nil {
		return p.cache, nil
	}
	c, err := p.openCache()
	if err != nil {
		return nil, err
	}
	p.cache = c
	return c, nil
}

// refreshArticleTaxonomies reloads categories and tags before a post is sent
func (p *Publisher) refreshArticleTaxonomies(ctx context.Context, remote Remote, cache *termcache.Cache) error {
	for _, taxonomy := range []string{domain.TaxonomyCategory, domain.TaxonomyTag} {
		if _, err := cache.Refresh(ctx, remote, taxonomy); err != nil {
			return err
		}
	}
	return nil
}

// Action is the verb of a command
type Action string

const (
	ActionNew    Action = "new"
	ActionUpdate Action = "update"
	ActionShow   Action = "show"
	ActionDelete Action = "delete"
)

// Kind is the entity a command acts on
type Kind string

const (
	KindDraft  Kind = "draft"
	KindPost   Kind = "post"
	KindPage   Kind = "page"
	KindTerm   Kind = "term"
	KindTax    Kind = "tax"
	KindOption Kind = "option"
)

// Command is a parsed invocation: action, entity kind and positional query
type Command struct {
	Action Action
	Kind   Kind
	Query  []string
}

type handler func(p *Publisher, ctx context.Context, query []string) error

var handlers = map[Action]map[Kind]handler{
	ActionNew: {
		KindDraft: (*Publisher).NewDraft,
		KindTerm:  (*Publisher).NewTerm,
	},
	ActionUpdate: {
		KindPost:  articleUpdater(site.KindPost),
		KindPage:  articleUpdater(site.KindPage),
		KindDraft: articleUpdater(site.KindDraft),
		KindTerm:  (*Publisher).UpdateTerm,
	},
	ActionShow: {
		KindPost:   (*Publisher).ShowPosts,
		KindPage:   (*Publisher).ShowPages,
		KindDraft:  (*Publisher).ShowDrafts,
		KindOption: (*Publisher).ShowOptions,
		KindTax:    (*Publisher).ShowTaxonomies,
		KindTerm:   (*Publisher).ShowTerms,
	},
}

func articleUpdater(kind site.Kind) handler {
	return func(p *Publisher, ctx context.Context, query []string) error {
		return p.UpdateArticles(ctx, kind, query)
	}
}

// Kinds lists the entity kinds accepted by action
func Kinds(action Action) []Kind {
	var kinds []Kind
	for _, k := range []Kind{KindDraft, KindPost, KindPage, KindTerm, KindTax, KindOption} {
		if _, ok := handlers[action][k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Run dispatches cmd to its workflow
func (p *Publisher) Run(ctx context.Context, cmd Command) error {
	if cmd.Action == ActionDelete {
		return fmt.Errorf("delete is not supported: %w", domain.ErrUnsupported)
	}
	byKind, ok := handlers[cmd.Action]
	if !ok {
		return fmt.Errorf("unknown command %q: %w", cmd.Action, ErrUsage)
	}
	h, ok := byKind[cmd.Kind]
	if !ok {
		return fmt.Errorf("%s does not accept %q (want one of %v): %w", cmd.Action, cmd.Kind, Kinds(cmd.Action), ErrUsage)
	}
	p.logger.Debug("running command", "action", cmd.Action, "kind", cmd.Kind, "query", cmd.Query)
	return h(p, ctx, cmd.Query)
}
