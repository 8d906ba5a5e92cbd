// Package textutil normalizes comment content for keyword matching.
// Comment bodies on the platform may carry emoji image spans and other
// inline markup, so matching runs on the extracted text only.
package textutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Normalize prepares content for substring matching: markup stripped,
// lowercased, surrounding whitespace removed.
func Normalize(content string) string {
	content = StripTags(content)
	content = strings.ToLower(content)
	return strings.TrimSpace(content)
}

// StripTags extracts the text content of a possibly-HTML string. Input
// that fails to parse is returned as is.
func StripTags(content string) string {
	if !strings.ContainsRune(content, '<') {
		return content
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}
	var buf bytes.Buffer
	for _, node := range doc.Nodes {
		collectText(node, &buf)
	}
	return buf.String()
}

func collectText(node *html.Node, buf *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buf.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, buf)
	}
}

// FirstMatch returns the first keyword (in list order) contained in
// content. content is expected to be normalized already.
func FirstMatch(content string, keywords []string) (string, bool) {
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(content, keyword) {
			return keyword, true
		}
	}
	return "", false
}
