package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags are elements that terminate a visual line when flattened.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "li": true,
	"table": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"blockquote": true, "pre": true, "section": true,
}

// cellTags separate columns within one visual line.
var cellTags = map[string]bool{
	"td": true, "th": true,
}

// LooksLikeHTML reports whether the content is an HTML message body
// rather than plain text.
func LooksLikeHTML(content string) bool {
	head := strings.ToLower(content)
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(head, "<html") || strings.Contains(head, "<body") ||
		strings.Contains(head, "<table") || strings.Contains(head, "<div")
}

// HTMLToText flattens an HTML message body into plain text lines,
// preserving the visual line order of the rendered document. Script and
// style subtrees are skipped; block elements emit line breaks and table
// cells emit a column gap so whitespace-sensitive layouts survive.
func HTMLToText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		// html.Parse is tolerant by design; on a hard failure fall back to
		// the raw content so the extractor still sees something.
		return content
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" || n.Data == "head" {
				return
			}
		case html.TextNode:
			text := strings.TrimSpace(n.Data)
			if text != "" {
				b.WriteString(text)
				b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			if blockTags[n.Data] {
				b.WriteByte('\n')
			} else if cellTags[n.Data] {
				b.WriteString("  ")
			}
		}
	}
	walk(doc)

	// Collapse runs of blank lines left by nested block elements
	lines := strings.Split(b.String(), "\n")
	var out []string
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" && len(out) > 0 && out[len(out)-1] == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
