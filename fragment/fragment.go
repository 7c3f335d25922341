package fragment

import (
	"fmt"
	"io"
	"sort"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Fragment is a parsed HTML body or document that iframes can be cut from.
type Fragment struct {
	source string
	root   *html.Node
	doc    *goquery.Document
	// spans holds the source byte range of every iframe element
	spans map[*html.Node]span
}

type span struct {
	start, end int
}

// Parse parses s as a whole document when it starts with a doctype or an
// <html> tag and as the content of a <body> element otherwise.
func Parse(s string) (*Fragment, error) {
	var root *html.Node
	if isDocument(s) {
		var err error
		if root, err = html.Parse(strings.NewReader(s)); err != nil {
			return nil, fmt.Errorf("failed to parse HTML document: %w", err)
		}
	} else {
		body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
		nodes, err := html.ParseFragment(strings.NewReader(s), body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTML fragment: %w", err)
		}
		root = &html.Node{Type: html.DocumentNode}
		for _, n := range nodes {
			root.AppendChild(n)
		}
	}

	f := &Fragment{
		source: s,
		root:   root,
		doc:    goquery.NewDocumentFromNode(root),
	}
	f.spans = f.iframeSpans()
	return f, nil
}

func isDocument(s string) bool {
	head := strings.ToLower(strings.TrimLeft(strings.TrimPrefix(s, "\ufeff"), " \t\r\n"))
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}

// iframeSpans pairs the iframe elements of the tree with the iframe tags of
// the source. Pairing is by order and src; on any mismatch no spans are kept.
func (f *Fragment) iframeSpans() map[*html.Node]span {
	iframes := f.Iframes()
	if len(iframes) == 0 {
		return nil
	}

	type tagSpan struct {
		span
		src string
	}
	var (
		found  []tagSpan
		open   *tagSpan
		offset int
	)
	z := html.NewTokenizer(strings.NewReader(f.source))
	for {
		tt := z.Next()
		start := offset
		offset += len(z.Raw())
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				return nil
			}
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken && tt != html.EndTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if atom.Lookup(name) != atom.Iframe {
			continue
		}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			ts := tagSpan{span: span{start: start, end: offset}}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "src" {
					ts.src = string(val)
				}
			}
			// a self-closing iframe still opens raw text up to </iframe>
			open = &ts
		case html.EndTagToken:
			if open != nil {
				open.end = offset
				found = append(found, *open)
				open = nil
			}
		}
	}
	if open != nil {
		open.end = len(f.source)
		found = append(found, *open)
	}

	if len(found) != len(iframes) {
		return nil
	}
	spans := make(map[*html.Node]span, len(found))
	for i, iframe := range iframes {
		if AttrValue(iframe, "src") != found[i].src {
			return nil
		}
		spans[iframe] = found[i].span
	}
	return spans
}

// Iframes returns the iframe elements of the fragment in document order.
func (f *Fragment) Iframes() []*html.Node {
	return f.doc.Find("iframe").Nodes
}

// Text returns the trimmed text content of the fragment.
func (f *Fragment) Text() string {
	return collectText(f.root)
}

// Without returns the source with the given iframes cut out. All other
// bytes are kept as written. When an iframe cannot be located in the source
// the edited tree is rendered instead.
func (f *Fragment) Without(iframes []*html.Node) (string, error) {
	if len(iframes) == 0 {
		return f.source, nil
	}

	cuts := make([]span, 0, len(iframes))
	for _, n := range iframes {
		s, ok := f.spans[n]
		if !ok {
			return f.render(iframes)
		}
		cuts = append(cuts, s)
	}
	sort.Slice(cuts, func(i, j int) bool { return cuts[i].start < cuts[j].start })

	var sb strings.Builder
	last := 0
	for _, c := range cuts {
		if c.start < last {
			continue
		}
		sb.WriteString(f.source[last:c.start])
		last = c.end
	}
	sb.WriteString(f.source[last:])
	return sb.String(), nil
}

func (f *Fragment) render(iframes []*html.Node) (string, error) {
	f.doc.FindNodes(iframes...).Remove()

	var sb strings.Builder
	for c := f.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", fmt.Errorf("failed to render HTML: %w", err)
		}
	}
	return sb.String(), nil
}

var previewPolicy = bluemonday.UGCPolicy()

// Markdown sanitizes an HTML body and converts it to markdown.
func Markdown(s string) (string, error) {
	sanitized := previewPolicy.Sanitize(s)
	markdown, err := htmltomarkdown.ConvertString(sanitized)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return markdown, nil
}
