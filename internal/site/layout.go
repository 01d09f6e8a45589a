// Package site maps article identifiers onto the local Markdown tree.
//
// Drafts live under the drafts directory as <id>.md. Once published, posts
// are stored as <postId>.md under the posts directory and pages as
// <slug>.md under the pages directory.
package site

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pbaille/mdpress/internal/config"
	"github.com/pbaille/mdpress/internal/domain"
)

// Ext is the extension of every article file
const Ext = ".md"

// Placeholder tokens rewritten after a draft is published
var placeholders = [][]byte{[]byte("POSTID"), []byte("SLUG")}

// Kind selects one of the three article directories
type Kind string

const (
	KindDraft Kind = "draft"
	KindPost  Kind = "post"
	KindPage  Kind = "page"
)

// Layout resolves article paths below a root directory
type Layout struct {
	drafts string
	posts  string
	pages  string
}

// New returns the layout described by paths
func New(paths config.PathsConfig) *Layout {
	return &Layout{
		drafts: paths.DraftsDir(),
		posts:  paths.PostsDir(),
		pages:  paths.PagesDir(),
	}
}

// Dir returns the directory holding articles of kind
func (l *Layout) Dir(kind Kind) string {
	switch kind {
	case KindPost:
		return l.posts
	case KindPage:
		return l.pages
	default:
		return l.drafts
	}
}

// Path returns where the article id of kind would live; it does not touch the disk
func (l *Layout) Path(kind Kind, id string) string {
	name := id
	if !strings.HasSuffix(name, Ext) {
		name += Ext
	}
	return filepath.Join(l.Dir(kind), name)
}

// Find returns the path of an existing article or ErrNotFound
func (l *Layout) Find(kind Kind, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("%s id is empty: %w", kind, domain.ErrNotFound)
	}
	path := l.Path(kind, id)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s %s (%s): %w", kind, id, path, domain.ErrNotFound)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory: %w", path, domain.ErrNotFound)
	}
	return path, nil
}

// PublishedPath is the destination of a draft once the site assigned id.
// Pages are named by their nicename (or slug), posts by id.
func (l *Layout) PublishedPath(article *domain.Article, id string) string {
	if article.IsPage() {
		name := article.NiceName
		if name == "" || name == "SLUG" {
			name = article.Slug
		}
		if name == "" || name == "SLUG" {
			name = id
		}
		return l.Path(KindPage, name)
	}
	return l.Path(KindPost, id)
}

// List returns every article file of kind, recursively, sorted by path
func (l *Layout) List(kind Kind) ([]string, error) {
	root := l.Dir(kind)
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				return fs.SkipAll
			}
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == Ext {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// WriteBack replaces the placeholder tokens in the file at path with id
func WriteBack(path, id string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("write back %s: %w", path, err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("write back %s: %w", path, err)
	}
	for _, token := range placeholders {
		content = bytes.ReplaceAll(content, token, []byte(id))
	}
	if err := os.WriteFile(path, content, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write back %s: %w", path, err)
	}
	return nil
}

// Move renames src to dst, creating dst's directory. An existing dst is an error.
func Move(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("move %s: destination %s already exists", src, dst)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("move %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("move %s: %w", src, err)
	}
	return nil
}
