package olx

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/foomo/olxexport/service/vo"
)

const xmlHeader = `<?xml version="1.0" ?>`

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\n", "&#10;",
	"\r", "&#13;",
	"\t", "&#9;",
)

// Render writes doc as indented XML. Raw node content is written as CDATA
// without escaping.
func Render(w io.Writer, doc *vo.Document) error {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	buf.WriteByte('\n')
	if doc.Comment != "" {
		fmt.Fprintf(&buf, "<!--%s-->\n", doc.Comment)
	}
	if doc.Root != nil {
		writeNode(&buf, doc.Root, 0)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// RenderString renders doc into a string.
func RenderString(doc *vo.Document) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeNode(buf *bytes.Buffer, n *vo.MarkupNode, depth int) {
	indent := strings.Repeat("\t", depth)
	buf.WriteString(indent)
	buf.WriteByte('<')
	buf.WriteString(n.Tag)
	for _, a := range n.Attrs {
		fmt.Fprintf(buf, ` %s="%s"`, a.Name, attrEscaper.Replace(a.Value))
	}

	switch {
	case n.Raw == nil && len(n.Children) == 0:
		buf.WriteString("/>\n")
	case len(n.Children) == 0:
		buf.WriteByte('>')
		writeCDATA(buf, n.RawText())
		fmt.Fprintf(buf, "</%s>\n", n.Tag)
	default:
		buf.WriteString(">\n")
		if n.Raw != nil {
			buf.WriteString(indent + "\t")
			writeCDATA(buf, n.RawText())
			buf.WriteByte('\n')
		}
		for _, child := range n.Children {
			writeNode(buf, child, depth+1)
		}
		fmt.Fprintf(buf, "%s</%s>\n", indent, n.Tag)
	}
}

// writeCDATA splits any "]]>" across two sections so the content survives verbatim
func writeCDATA(buf *bytes.Buffer, s string) {
	buf.WriteString("<![CDATA[")
	buf.WriteString(strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>"))
	buf.WriteString("]]>")
}
