package olx

import (
	"errors"
	"strings"
	"testing"

	"github.com/foomo/olxexport/fragment"
	"github.com/foomo/olxexport/service/vo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

type resources map[string]vo.Details

func (r resources) ResourceContent(ref string) (vo.Details, bool) {
	d, ok := r[ref]
	return d, ok
}

// kalturaParser consumes every iframe served from a kaltura host.
type kalturaParser struct{}

func (kalturaParser) VideoNodes(iframes []*html.Node) ([]*vo.MarkupNode, []*html.Node) {
	var videos []*vo.MarkupNode
	var consumed []*html.Node
	for _, iframe := range iframes {
		src := fragment.AttrValue(iframe, "src")
		if strings.Contains(src, "kaltura") {
			videos = append(videos, VideoNode(src[strings.LastIndex(src, "/")+1:]))
			consumed = append(consumed, iframe)
		}
	}
	return videos, consumed
}

func outline(leaves ...*vo.OutlineNode) *vo.OutlineNode {
	return &vo.OutlineNode{Children: []*vo.OutlineNode{
		{Title: "Chapter", ResourceRef: "c1", Children: []*vo.OutlineNode{
			{Title: "Sequence", ResourceRef: "s1", Children: []*vo.OutlineNode{
				{Title: "Vertical", ResourceRef: "v1", Children: leaves},
			}},
		}},
	}}
}

func convert(t *testing.T, c *Converter, root *vo.OutlineNode) *Result {
	t.Helper()
	res, err := c.Convert(vo.CourseInfo{Org: "org", Slug: "slug", Name: "Course"}, root)
	require.NoError(t, err)
	return res
}

// leaves returns the children of the single vertical of the document
func leaves(t *testing.T, res *Result) []*vo.MarkupNode {
	t.Helper()
	course := res.Document.Root
	require.Len(t, course.Children, 1)
	chapter := course.Children[0]
	require.Equal(t, "chapter", chapter.Tag)
	require.Len(t, chapter.Children, 1)
	sequential := chapter.Children[0]
	require.Equal(t, "sequential", sequential.Tag)
	require.Len(t, sequential.Children, 1)
	vertical := sequential.Children[0]
	require.Equal(t, "vertical", vertical.Tag)
	return vertical.Children
}

func attr(t *testing.T, n *vo.MarkupNode, name string) string {
	t.Helper()
	v, ok := n.Attr(name)
	require.True(t, ok, "attribute %s missing on %s", name, n.Tag)
	return v
}

func TestConvertCourseStructure(t *testing.T) {
	c := NewConverter(resources{"r-html": vo.HTMLDetails{HTML: "<p>Welcome</p>"}}, nil)
	res := convert(t, c, outline(&vo.OutlineNode{Title: "Welcome", ResourceRef: "r-html"}))

	course := res.Document.Root
	assert.Equal(t, "course", course.Tag)
	assert.Equal(t, []vo.Attr{{Name: "org", Value: "org"}, {Name: "course", Value: "slug"}, {Name: "name", Value: "Course"}}, course.Attrs)
	assert.Equal(t, " Generated by olxexport ", res.Document.Comment)

	chapter := course.Children[0]
	assert.Equal(t, "Chapter", attr(t, chapter, "display_name"))
	assert.Equal(t, "c1", attr(t, chapter, "url_name"))

	nodes := leaves(t, res)
	require.Len(t, nodes, 1)
	assert.Equal(t, "html", nodes[0].Tag)
	assert.Equal(t, "<p>Welcome</p>", nodes[0].RawText())
	assert.Equal(t, "Welcome", attr(t, nodes[0], "display_name"))
	assert.Equal(t, "r-html", attr(t, nodes[0], "url_name"))
	assert.Empty(t, res.Diagnostics)
}

func TestConvertUntitledContainers(t *testing.T) {
	root := &vo.OutlineNode{Children: []*vo.OutlineNode{
		{Children: []*vo.OutlineNode{{Children: []*vo.OutlineNode{{}}}}},
	}}
	res := convert(t, NewConverter(resources{}, nil), root)

	chapter := res.Document.Root.Children[0]
	assert.Empty(t, chapter.Attrs)
	vertical := chapter.Children[0].Children[0]
	assert.Equal(t, "vertical", vertical.Tag)
	assert.Empty(t, vertical.Children, "vertical without children has no leaves")
}

func TestConvertMissingContent(t *testing.T) {
	c := NewConverter(resources{}, nil)
	res := convert(t, c, outline(
		&vo.OutlineNode{Title: "No ref"},
		&vo.OutlineNode{Title: "Unknown", ResourceRef: "nope"},
	))

	nodes := leaves(t, res)
	require.Len(t, nodes, 2)
	for _, n := range nodes {
		assert.Equal(t, "html", n.Tag)
		assert.Equal(t, "<p>MISSING CONTENT</p>", n.RawText())
	}
	_, ok := nodes[0].Attr("url_name")
	assert.False(t, ok)
	assert.Equal(t, "nope", attr(t, nodes[1], "url_name"))
}

func TestConvertLeafChildrenAreLeaves(t *testing.T) {
	c := NewConverter(resources{
		"r-html":  vo.HTMLDetails{HTML: "<p>outer</p>"},
		"r-inner": vo.HTMLDetails{HTML: "<p>inner</p>"},
	}, nil)
	res := convert(t, c, outline(&vo.OutlineNode{
		ResourceRef: "r-html",
		Children:    []*vo.OutlineNode{{ResourceRef: "r-inner"}},
	}))

	nodes := leaves(t, res)
	require.Len(t, nodes, 1)
	require.Len(t, nodes[0].Children, 1)
	inner := nodes[0].Children[0]
	assert.Equal(t, "html", inner.Tag)
	assert.Equal(t, "<p>inner</p>", inner.RawText())
}

func TestConvertDeepOutlineKeepsThreeContainerLevels(t *testing.T) {
	c := NewConverter(resources{}, nil)
	deep := &vo.OutlineNode{Title: "L4", Children: []*vo.OutlineNode{
		{Title: "L5", Children: []*vo.OutlineNode{{Title: "L6"}}},
	}}
	res := convert(t, c, outline(deep))

	var depth func(n *vo.MarkupNode) int
	depth = func(n *vo.MarkupNode) int {
		switch n.Tag {
		case "chapter", "sequential", "vertical":
		default:
			return 0
		}
		deepest := 0
		for _, child := range n.Children {
			if d := depth(child); d > deepest {
				deepest = d
			}
		}
		return deepest + 1
	}
	assert.Equal(t, 3, depth(res.Document.Root.Children[0]))
}

func TestConvertLinks(t *testing.T) {
	c := NewConverter(resources{
		"yt":  vo.LinkDetails{Href: "https://www.youtube.com/watch?v=ABC123&list=XYZ"},
		"web": vo.LinkDetails{Href: "https://example.com", Text: "site"},
	}, nil)
	res := convert(t, c, outline(
		&vo.OutlineNode{ResourceRef: "yt"},
		&vo.OutlineNode{ResourceRef: "web"},
	))

	nodes := leaves(t, res)
	require.Len(t, nodes, 2)
	assert.Equal(t, "video", nodes[0].Tag)
	assert.Equal(t, []vo.Attr{
		{Name: "youtube", Value: "1.00:ABC123"},
		{Name: "youtube_id_1_0", Value: "ABC123"},
	}, nodes[0].Attrs)
	assert.Equal(t, "html", nodes[1].Tag)
	assert.Equal(t, "<a href='https://example.com'>site</a>", nodes[1].RawText())
}

func TestConvertExternalTool(t *testing.T) {
	c := NewConverter(resources{"lti": vo.ExternalToolDetails{
		Title:       "Tool",
		Description: "A tool",
		LaunchURL:   "https://tool.example.com/launch",
		Height:      "400",
		Width:       "600",
		CustomParameters: []vo.CustomParameter{
			{Key: "course", Value: "101"},
			{Key: "mode", Value: "embed"},
		},
	}}, nil)
	res := convert(t, c, outline(&vo.OutlineNode{ResourceRef: "lti"}))

	nodes := leaves(t, res)
	require.Len(t, nodes, 1)
	assert.Equal(t, "lti_consumer", nodes[0].Tag)
	assert.Equal(t, []vo.Attr{
		{Name: "custom_parameters", Value: `["course=101", "mode=embed"]`},
		{Name: "description", Value: "A tool"},
		{Name: "display_name", Value: "Tool"},
		{Name: "inline_height", Value: "400"},
		{Name: "inline_width", Value: "600"},
		{Name: "launch_url", Value: "https://tool.example.com/launch"},
		{Name: "modal_height", Value: "400"},
		{Name: "modal_width", Value: "600"},
		{Name: "xblock-family", Value: "xblock.v1"},
	}, nodes[0].Attrs)
}

func TestConvertExternalToolWithoutParameters(t *testing.T) {
	c := NewConverter(resources{"lti": vo.ExternalToolDetails{Title: "Tool"}}, nil)
	nodes := leaves(t, convert(t, c, outline(&vo.OutlineNode{ResourceRef: "lti"})))
	assert.Equal(t, "[]", attr(t, nodes[0], "custom_parameters"))
}

func TestConvertDiscussion(t *testing.T) {
	c := NewConverter(resources{"disc": vo.DiscussionDetails{
		Title: "Introduce yourself",
		Text:  "<p>Say <b>hi</b> &amp; more</p>",
	}}, nil)

	nodes := leaves(t, convert(t, c, outline(&vo.OutlineNode{ResourceRef: "disc"})))
	require.Len(t, nodes, 2)
	assert.Equal(t, "html", nodes[0].Tag)
	assert.Equal(t, "<p>Say <b>hi</b> &amp; more</p>", nodes[0].RawText())
	assert.Equal(t, "discussion", nodes[1].Tag)
	assert.Equal(t, []vo.Attr{
		{Name: "display_name", Value: ""},
		{Name: "discussion_category", Value: "Introduce yourself"},
		{Name: "discussion_target", Value: "Introduce yourself"},
	}, nodes[1].Attrs)

	nodes = leaves(t, convert(t, c, outline(&vo.OutlineNode{Title: "Forum", ResourceRef: "disc"})))
	require.Len(t, nodes, 2)
	assert.Equal(t, "Forum", attr(t, nodes[0], "display_name"))
	assert.Equal(t, "Forum", attr(t, nodes[1], "display_name"))
	assert.Equal(t, "disc", attr(t, nodes[1], "url_name"))
}

func TestConvertAssessment(t *testing.T) {
	details := vo.AssessmentDetails{Data: map[string]interface{}{"questions": 2}}

	var got vo.AssessmentDetails
	c := NewConverter(resources{"qti": details}, nil, WithAssessmentConverter(
		AssessmentConverterFunc(func(d vo.AssessmentDetails) ([]*vo.MarkupNode, error) {
			got = d
			return []*vo.MarkupNode{vo.NewNode("problem"), vo.NewNode("problem")}, nil
		}),
	))

	nodes := leaves(t, convert(t, c, outline(&vo.OutlineNode{ResourceRef: "qti"})))
	assert.Equal(t, details, got)
	require.Len(t, nodes, 2)
	assert.Equal(t, "problem", nodes[0].Tag)
}

func TestConvertAssessmentErrors(t *testing.T) {
	root := outline(&vo.OutlineNode{ResourceRef: "qti"})
	res := resources{"qti": vo.AssessmentDetails{}}

	_, err := NewConverter(res, nil).Convert(vo.CourseInfo{}, root)
	assert.ErrorIs(t, err, ErrNoAssessmentConverter)

	boom := errors.New("boom")
	_, err = NewConverter(res, nil, WithAssessmentConverter(
		AssessmentConverterFunc(func(vo.AssessmentDetails) ([]*vo.MarkupNode, error) { return nil, boom }),
	)).Convert(vo.CourseInfo{}, root)
	assert.ErrorIs(t, err, boom)
}

func TestSynthesizeUnsupportedContentType(t *testing.T) {
	run := &conversion{Converter: NewConverter(nil, nil)}

	nodes, err := run.synthesize(vo.LinkDetails{Href: "https://example.com"})
	assert.Nil(t, nodes)
	var unsupported *UnsupportedContentTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, vo.ContentTypeLink, unsupported.Type)
	assert.Contains(t, err.Error(), `"link"`)
}

func TestConvertDiagnostics(t *testing.T) {
	c := NewConverter(resources{
		"page": vo.HTMLDetails{HTML: `<a href="$WIKI_REFERENCE$/pages/gone">x</a><img src="$IMS-CC-FILEBASE$/a.png">`},
	}, vo.ResourceIndex{"wiki_content/other.html": "o"})

	res := convert(t, c, outline(&vo.OutlineNode{ResourceRef: "page"}))
	nodes := leaves(t, res)
	assert.Equal(t, `<a href="$WIKI_REFERENCE$/pages/gone">x</a><img src="/static/a.png">`, nodes[0].RawText())
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "$WIKI_REFERENCE$/pages/gone", res.Diagnostics[0].Value)

	// each run owns its diagnostics
	again := convert(t, c, outline(&vo.OutlineNode{ResourceRef: "page"}))
	assert.Len(t, again.Diagnostics, 1)
}

func TestConvertIframes(t *testing.T) {
	body := `<p>Intro</p><iframe src="https://kaltura.example.com/entry/k1"></iframe><iframe src="https://other.example.com/2"></iframe>`
	c := NewConverter(resources{"page": vo.HTMLDetails{HTML: body}}, nil, WithIframeVideoParser(kalturaParser{}))

	nodes := leaves(t, convert(t, c, outline(&vo.OutlineNode{Title: "Lecture", ResourceRef: "page"})))
	require.Len(t, nodes, 2)
	assert.Equal(t, "html", nodes[0].Tag)
	assert.Equal(t, `<p>Intro</p><iframe src="https://other.example.com/2"></iframe>`, nodes[0].RawText())
	assert.Equal(t, "video", nodes[1].Tag)
	assert.Equal(t, "k1", attr(t, nodes[1], "youtube_id_1_0"))
	assert.Equal(t, "Lecture", attr(t, nodes[1], "display_name"))
}

func TestConvertIframesInWholeDocument(t *testing.T) {
	body := "<html>\n<head><title>Page</title><meta charset=\"utf-8\"></head>\n" +
		"<body class=\"x\"><p>Intro&nbsp;text<br></p><iframe src=\"https://kaltura.example.com/entry/k1\"></iframe></body>\n</html>"
	c := NewConverter(resources{"page": vo.HTMLDetails{HTML: body}}, nil, WithIframeVideoParser(kalturaParser{}))

	nodes := leaves(t, convert(t, c, outline(&vo.OutlineNode{Title: "Lecture", ResourceRef: "page"})))
	require.Len(t, nodes, 2)
	assert.Equal(t, "<html>\n<head><title>Page</title><meta charset=\"utf-8\"></head>\n"+
		"<body class=\"x\"><p>Intro&nbsp;text<br></p></body>\n</html>", nodes[0].RawText())
	assert.Equal(t, "k1", attr(t, nodes[1], "youtube_id_1_0"))
}

func TestConvertIframesUnconsumedKeepsMarkup(t *testing.T) {
	body := `<p>Intro<iframe src="https://other.example.com/2"></iframe>`
	c := NewConverter(resources{"page": vo.HTMLDetails{HTML: body}}, nil, WithIframeVideoParser(kalturaParser{}))

	nodes := leaves(t, convert(t, c, outline(&vo.OutlineNode{ResourceRef: "page"})))
	require.Len(t, nodes, 1)
	assert.Equal(t, body, nodes[0].RawText())
}

func TestConvertUnsupportedAbortsWholeConversion(t *testing.T) {
	c := NewConverter(resources{
		"ok":  vo.HTMLDetails{HTML: "<p>ok</p>"},
		"qti": vo.AssessmentDetails{},
	}, nil)
	res, err := c.Convert(vo.CourseInfo{}, outline(
		&vo.OutlineNode{ResourceRef: "ok"},
		&vo.OutlineNode{ResourceRef: "qti"},
	))
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestConvertNilOutline(t *testing.T) {
	res := convert(t, NewConverter(nil, nil), nil)
	assert.Empty(t, res.Document.Root.Children)
}
