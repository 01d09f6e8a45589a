package markdown

import (
	"strings"

	"golang.org/x/net/html"
)

// Tags whose text never reaches a preview
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"iframe": true, "pre": true,
}

// PlainText strips markup from rendered HTML and collapses whitespace.
// Output longer than max runes is cut and suffixed with "..."; max <= 0 disables the cut.
func PlainText(htmlContent string, max int) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)

	result := strings.Join(strings.Fields(sb.String()), " ")
	return truncate(result, max)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
