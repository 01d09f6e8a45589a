package output

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pbaille/mdpress/internal/domain"
	"github.com/pbaille/mdpress/internal/markdown"
)

const (
	timeLayout    = "2006-01-02 15:04:05"
	previewLength = 60
)

// Term logs a single term
func (p *Printer) Term(t domain.Term) {
	p.Info("id=%s, group=%s, taxonomy_id=%s, name=%s, slug=%s, parent=%s, count=%d",
		t.ID, t.GroupID, t.TaxonomyID, t.Name, t.Slug, t.ParentID, t.Count)
}

// Terms renders terms as a table
func (p *Printer) Terms(terms []domain.Term) {
	table := p.Table([]string{"ID", "SLUG", "NAME", "PARENT", "COUNT"})
	for _, t := range terms {
		table.AddRow([]string{t.ID, p.Bold(t.Slug), t.Name, t.ParentID, fmt.Sprint(t.Count)})
	}
	table.Render()
}

// Post logs a single post or page; verbose mode adds a content preview
func (p *Printer) Post(post *domain.Post) {
	p.Info("id=%s, date=%s, date_modified=%s, slug=%s, title=%s, post_status=%s, post_type=%s",
		post.ID, formatTime(post.Date), formatTimePtr(post.Modified),
		post.Slug, post.Title, post.Status, post.Type)
	if len(post.Terms) > 0 {
		names := make([]string, len(post.Terms))
		for i, t := range post.Terms {
			names[i] = t.Taxonomy + ":" + t.Slug
		}
		p.Info("  terms=%s", strings.Join(names, ", "))
	}
	if p.verbose && post.Content != "" {
		p.Print("  %s", markdown.PlainText(post.Content, previewLength))
	}
}

// Posts renders posts as a table
func (p *Printer) Posts(posts []domain.Post) {
	table := p.Table([]string{"ID", "DATE", "STATUS", "TYPE", "SLUG", "TITLE"})
	for _, post := range posts {
		table.AddRow([]string{
			post.ID, formatTime(post.Date), string(post.Status), string(post.Type),
			post.Slug, p.Bold(post.Title),
		})
	}
	table.Render()
}

// Taxonomies renders taxonomies as a table
func (p *Printer) Taxonomies(taxonomies []domain.Taxonomy) {
	table := p.Table([]string{"NAME", "LABEL", "HIERARCHICAL", "PUBLIC", "BUILTIN"})
	for _, tax := range taxonomies {
		table.AddRow([]string{
			p.Bold(tax.Name), tax.Label, yesNo(tax.Hierarchical), yesNo(tax.Public), yesNo(tax.Builtin),
		})
	}
	table.Render()
}

// Options logs options as "name value" lines sorted by name
func (p *Printer) Options(options []domain.Option) {
	sorted := append([]domain.Option(nil), options...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for _, o := range sorted {
		p.Info("%s %s", o.Name, o.Value)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
