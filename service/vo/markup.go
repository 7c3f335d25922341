package vo

type Attr struct {
	Name  string
	Value string
}

// MarkupNode is an element of the produced OLX tree. Raw, when set, is
// emitted verbatim as character data.
type MarkupNode struct {
	Tag      string
	Attrs    []Attr
	Children []*MarkupNode
	Raw      *string
}

func NewNode(tag string, attrs ...Attr) *MarkupNode {
	return &MarkupNode{Tag: tag, Attrs: attrs}
}

func NewRawNode(tag, raw string) *MarkupNode {
	return &MarkupNode{Tag: tag, Raw: &raw}
}

// SetAttr overwrites an existing attribute in place or appends a new one.
func (n *MarkupNode) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

func (n *MarkupNode) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *MarkupNode) AppendChild(child *MarkupNode) {
	n.Children = append(n.Children, child)
}

// RawText returns the raw content or "" when none is set.
func (n *MarkupNode) RawText() string {
	if n.Raw == nil {
		return ""
	}
	return *n.Raw
}

// Document owns a rendered course tree.
type Document struct {
	Comment string
	Root    *MarkupNode
}
