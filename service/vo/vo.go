package vo

import "strings"

type ContentType string

const (
	ContentTypeHTML         ContentType = "html"
	ContentTypeLink         ContentType = "link"
	ContentTypeVideo        ContentType = "video"
	ContentTypeExternalTool ContentType = "lti"
	ContentTypeAssessment   ContentType = "qti"
	ContentTypeDiscussion   ContentType = "discussion"
)

// OutlineNode is one level of the normalized course outline.
type OutlineNode struct {
	Title       string         `json:"title,omitempty"`
	ResourceRef string         `json:"identifierref,omitempty"`
	Children    []*OutlineNode `json:"children,omitempty"`
}

func (n *OutlineNode) HasTitle() bool {
	return n.Title != ""
}

// HasChildren reports whether the source tree carried a children list,
// even an empty one.
func (n *OutlineNode) HasChildren() bool {
	return n.Children != nil
}

// DefaultCourseSlug is the course attribute written when none is configured.
const DefaultCourseSlug = "Some_cc_Course"

// CourseInfo holds the attributes of the root course element.
type CourseInfo struct {
	Org  string `json:"org" yaml:"org"`
	Slug string `json:"slug" yaml:"slug"`
	Name string `json:"name" yaml:"name"`
}

// ResourceIndex maps a normalized resource href to the platform identifier.
type ResourceIndex map[string]string

// MatchSuffix returns the identifier of the index key ending with suffix.
// When several keys match, the lexicographically smallest key wins.
func (idx ResourceIndex) MatchSuffix(suffix string) (key, id string, ok bool) {
	for k, v := range idx {
		if !strings.HasSuffix(k, suffix) {
			continue
		}
		if !ok || k < key {
			key, id, ok = k, v, true
		}
	}
	return key, id, ok
}

type DiagnosticKind string

const DiagnosticUnresolvedWikiReference DiagnosticKind = "unresolved_wiki_reference"

// Diagnostic is a non-fatal conversion finding.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Value   string         `json:"value"`
	Message string         `json:"message"`
}

// Conversion is a rendered course.xml with its diagnostics.
type Conversion struct {
	XML         string       `json:"xml"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Preview is an HTML body after link rewriting, rendered for reading.
type Preview struct {
	HTML        string       `json:"html"`
	Markdown    string       `json:"markdown"`
	Text        string       `json:"text"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}
