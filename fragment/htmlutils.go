package fragment

import (
	"strings"

	"golang.org/x/net/html"
)

// AttrValue returns the value of the attribute key on n, or "".
func AttrValue(n *html.Node, key string) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// collectText extracts the text content of a node subtree
func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)

	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.TrimSpace(sb.String())
}
