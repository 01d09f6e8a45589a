package markdown

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/mdpress/internal/domain"
)

var fullHeader = map[string]string{
	"title":    "Hello",
	"postid":   "42",
	"nicename": "hello",
	"slug":     "hello",
	"date":     "2015-03-01 10:00:00",
	"author":   "zrong",
}

func plainDoc(fields map[string]string, extra ...string) string {
	var sb strings.Builder
	for _, key := range []string{"title", "postid", "nicename", "slug", "date", "author"} {
		if v, ok := fields[key]; ok {
			sb.WriteString(key + ": " + v + "\n")
		}
	}
	for _, line := range extra {
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n# Heading\n\nSome *text*.\n")
	return sb.String()
}

func TestParse_MissingRequiredField(t *testing.T) {
	r := NewRenderer()
	for _, missing := range requiredKeys {
		t.Run(missing, func(t *testing.T) {
			fields := map[string]string{}
			for k, v := range fullHeader {
				if k != missing {
					fields[k] = v
				}
			}

			_, err := r.Parse([]byte(plainDoc(fields)))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrMetadata)

			var metaErr *domain.MetadataError
			require.ErrorAs(t, err, &metaErr)
			assert.Equal(t, missing, metaErr.Field)
		})
	}
}

func TestParse_TagsAndCategories(t *testing.T) {
	doc, err := NewRenderer().Parse([]byte(plainDoc(fullHeader, "tags: a, b", "category: x")))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, doc.Meta.Tags)
	assert.Equal(t, []string{"x"}, doc.Meta.Categories)
	assert.Equal(t, "Hello", doc.Meta.Title)
	assert.Equal(t, "42", doc.Meta.PostID)
	assert.Contains(t, doc.HTML, "<em>text</em>")
	assert.NotContains(t, doc.HTML, "postid")
}

func TestParse_Defaults(t *testing.T) {
	doc, err := NewRenderer().Parse([]byte(plainDoc(fullHeader)))
	require.NoError(t, err)

	assert.Equal(t, domain.PostTypePost, doc.Meta.PostType)
	assert.Equal(t, domain.StatusPublish, doc.Meta.PostStatus)
	assert.Nil(t, doc.Meta.Tags)
	assert.Nil(t, doc.Meta.Categories)
	assert.Nil(t, doc.Meta.Modified)
}

func TestParse_OptionalFields(t *testing.T) {
	doc, err := NewRenderer().Parse([]byte(plainDoc(fullHeader,
		"modified: 2015-03-02",
		"PostType: page",
		"poststatus: draft",
		"summary: first line",
		"    second line",
	)))
	require.NoError(t, err)

	assert.True(t, doc.Meta.IsPage())
	assert.Equal(t, domain.StatusDraft, doc.Meta.PostStatus)
	require.NotNil(t, doc.Meta.Modified)
	assert.Equal(t, 2, doc.Meta.Modified.Day())
	assert.Equal(t, "first line second line", doc.Meta.Extra["summary"])
}

func TestParse_DateLayouts(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2015-03-01 10:20:30", time.Date(2015, 3, 1, 10, 20, 30, 0, time.Local)},
		{"2015-03-01 10:20", time.Date(2015, 3, 1, 10, 20, 0, 0, time.Local)},
		{"2015-03-01", time.Date(2015, 3, 1, 0, 0, 0, 0, time.Local)},
		{"2015-03-01T10:20:30", time.Date(2015, 3, 1, 10, 20, 30, 0, time.Local)},
		{"2015-03-01T10:20:30Z", time.Date(2015, 3, 1, 10, 20, 30, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			fields := map[string]string{}
			for k, v := range fullHeader {
				fields[k] = v
			}
			fields["date"] = tt.raw

			doc, err := NewRenderer().Parse([]byte(plainDoc(fields)))
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(doc.Meta.Date), "got %s", doc.Meta.Date)
		})
	}
}

func TestParse_BadDate(t *testing.T) {
	fields := map[string]string{}
	for k, v := range fullHeader {
		fields[k] = v
	}
	fields["date"] = "yesterday"

	_, err := NewRenderer().Parse([]byte(plainDoc(fields)))
	var metaErr *domain.MetadataError
	require.ErrorAs(t, err, &metaErr)
	assert.Equal(t, "date", metaErr.Field)
}

func TestParse_YAMLHeader(t *testing.T) {
	src := `---
title: Hello
postid: 42
nicename: hello
slug: hello
date: "2015-03-01 10:00:00"
author: zrong
tags: [a, b]
category: x, y
---
Body | Col
---- | ---
1 | 2
`
	doc, err := NewRenderer().Parse([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "42", doc.Meta.PostID)
	assert.Equal(t, []string{"a", "b"}, doc.Meta.Tags)
	assert.Equal(t, []string{"x", "y"}, doc.Meta.Categories)
	assert.Contains(t, doc.HTML, "<table>")
}

func TestParse_TOMLHeader(t *testing.T) {
	src := `+++
title = "Hello"
postid = "POSTID"
nicename = "hello"
slug = "SLUG"
date = "2015-03-01"
author = "zrong"
tags = ["go"]
+++
text
`
	doc, err := NewRenderer().Parse([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "POSTID", doc.Meta.PostID)
	assert.Equal(t, []string{"go"}, doc.Meta.Tags)
	assert.Equal(t, 2015, doc.Meta.Date.Year())
}

func TestParseFile_NotFound(t *testing.T) {
	_, err := NewRenderer().ParseFile(t.TempDir() + "/missing.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlainText(t *testing.T) {
	got := PlainText("<h1>Title</h1><p>Some <b>bold</b>\n text</p><script>x()</script>", 0)
	assert.Equal(t, "Title Some bold text", got)

	assert.Equal(t, "Title S...", PlainText("<p>Title Some bold</p>", 10))
}
