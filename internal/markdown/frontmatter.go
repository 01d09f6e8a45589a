package markdown

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/pbaille/mdpress/internal/domain"
)

// Meta keys recognised in a document header
const (
	KeyTitle      = "title"
	KeyPostID     = "postid"
	KeyNiceName   = "nicename"
	KeySlug       = "slug"
	KeyDate       = "date"
	KeyAuthor     = "author"
	KeyTags       = "tags"
	KeyCategory   = "category"
	KeyModified   = "modified"
	KeyPostType   = "posttype"
	KeyPostStatus = "poststatus"
)

var requiredKeys = []string{KeyTitle, KeyPostID, KeyNiceName, KeySlug, KeyDate, KeyAuthor}

var knownKeys = map[string]bool{
	KeyTitle: true, KeyPostID: true, KeyNiceName: true, KeySlug: true, KeyDate: true,
	KeyAuthor: true, KeyTags: true, KeyCategory: true, KeyModified: true,
	KeyPostType: true, KeyPostStatus: true,
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Meta is the raw header: lowercased key to its values in order of appearance
type Meta map[string][]string

// First returns the first value for key, or "" when absent
func (m Meta) First(key string) string {
	if v := m[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

var (
	metaLine = regexp.MustCompile(`^[ ]{0,3}([A-Za-z0-9_-]+):\s*(.*)$`)
	metaMore = regexp.MustCompile(`^[ ]{4,}(.*)$`)
)

// SplitMeta separates the header block from the Markdown body.
// Delimited YAML (---) and TOML (+++) headers are decoded with adrg/frontmatter,
// anything else is read as a plain "key: value" header that ends at the first blank line.
func SplitMeta(source []byte) (Meta, []byte, error) {
	trimmed := bytes.TrimPrefix(source, []byte("\ufeff"))
	if bytes.HasPrefix(trimmed, []byte("---")) || bytes.HasPrefix(trimmed, []byte("+++")) {
		return splitDelimited(trimmed)
	}
	meta, body := splitPlain(trimmed)
	return meta, body, nil
}

func splitDelimited(source []byte) (Meta, []byte, error) {
	var raw map[string]interface{}
	body, err := frontmatter.Parse(bytes.NewReader(source), &raw)
	if err != nil {
		return nil, nil, &domain.MetadataError{Field: "header", Reason: err.Error()}
	}

	meta := make(Meta, len(raw))
	for key, value := range raw {
		k := strings.ToLower(strings.TrimSpace(key))
		meta[k] = append(meta[k], flatten(value)...)
	}
	return meta, body, nil
}

func flatten(value interface{}) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, flatten(item)...)
		}
		return out
	case []string:
		return append([]string(nil), v...)
	case time.Time:
		return []string{v.Format("2006-01-02 15:04:05")}
	default:
		return []string{fmt.Sprint(v)}
	}
}

func splitPlain(source []byte) (Meta, []byte) {
	meta := Meta{}
	scanner := bufio.NewScanner(bytes.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		key      string
		consumed int
		body     []string
	)
	inHeader := true
	for scanner.Scan() {
		line := scanner.Text()
		if !inHeader {
			body = append(body, line)
			continue
		}
		if strings.TrimSpace(line) == "" {
			inHeader = false
			consumed++
			continue
		}
		if m := metaLine.FindStringSubmatch(line); m != nil {
			key = strings.ToLower(m[1])
			meta[key] = append(meta[key], strings.TrimSpace(m[2]))
			consumed++
			continue
		}
		if m := metaMore.FindStringSubmatch(line); m != nil && key != "" {
			meta[key] = append(meta[key], strings.TrimSpace(m[1]))
			consumed++
			continue
		}
		// Not a header line: the rest is body.
		inHeader = false
		body = append(body, line)
	}
	if consumed == 0 {
		return Meta{}, source
	}
	return meta, []byte(strings.Join(body, "\n"))
}

// ToArticle validates the header and converts it into an Article.
func ToArticle(meta Meta) (*domain.Article, error) {
	for _, key := range requiredKeys {
		if strings.TrimSpace(meta.First(key)) == "" {
			return nil, &domain.MetadataError{Field: key}
		}
	}

	date, err := parseDate(meta.First(KeyDate))
	if err != nil {
		return nil, &domain.MetadataError{Field: KeyDate, Reason: err.Error()}
	}

	article := &domain.Article{
		Title:      meta.First(KeyTitle),
		PostID:     meta.First(KeyPostID),
		NiceName:   meta.First(KeyNiceName),
		Slug:       meta.First(KeySlug),
		Date:       date,
		Author:     meta.First(KeyAuthor),
		Tags:       splitList(meta[KeyTags]),
		Categories: splitList(append(append([]string(nil), meta[KeyCategory]...), meta["categories"]...)),
		PostType:   domain.PostTypePost,
		PostStatus: domain.StatusPublish,
	}

	if raw := meta.First(KeyModified); raw != "" {
		modified, err := parseDate(raw)
		if err != nil {
			return nil, &domain.MetadataError{Field: KeyModified, Reason: err.Error()}
		}
		article.Modified = &modified
	}
	if v := meta.First(KeyPostType); v != "" {
		article.PostType = domain.PostType(strings.ToLower(v))
	}
	if v := meta.First(KeyPostStatus); v != "" {
		article.PostStatus = domain.PostStatus(strings.ToLower(v))
	}

	for key, values := range meta {
		if knownKeys[key] || key == "categories" || len(values) == 0 {
			continue
		}
		if article.Extra == nil {
			article.Extra = map[string]string{}
		}
		article.Extra[key] = strings.Join(values, " ")
	}

	return article, nil
}

// splitList turns comma separated values into a trimmed ordered list.
// Absent input yields nil.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}
