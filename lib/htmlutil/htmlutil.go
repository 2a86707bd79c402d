package htmlutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// GetText concatenates every text node under node in document order.
func GetText(node *html.Node) string {
	var buffer strings.Builder
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *strings.Builder) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

// CleanText drops non-printable characters, trims and collapses runs of
// whitespace into a single space.
func CleanText(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, s)
	cleaned = innerWhitespace.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
