package olx

import (
	"github.com/foomo/olxexport/service/vo"
	"go.uber.org/zap"
)

const missingContentHTML = "<p>MISSING CONTENT</p>"

// containerLevels names the container elements below the course, outermost first.
var containerLevels = []string{"chapter", "sequential", "vertical"}

// ResourceResolver looks up the content of a resource reference.
type ResourceResolver interface {
	ResourceContent(ref string) (vo.Details, bool)
}

// AssessmentConverter converts assessment details into OLX problem nodes.
type AssessmentConverter interface {
	ConvertAssessment(details vo.AssessmentDetails) ([]*vo.MarkupNode, error)
}

type AssessmentConverterFunc func(details vo.AssessmentDetails) ([]*vo.MarkupNode, error)

func (f AssessmentConverterFunc) ConvertAssessment(details vo.AssessmentDetails) ([]*vo.MarkupNode, error) {
	return f(details)
}

type Option func(c *Converter)

func WithIframeVideoParser(p IframeVideoParser) Option {
	return func(c *Converter) {
		c.iframes = p
	}
}

func WithAssessmentConverter(a AssessmentConverter) Option {
	return func(c *Converter) {
		c.assessments = a
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// Converter exports a normalized cartridge outline to an OLX course tree.
// It holds no per-run state and may be shared.
type Converter struct {
	resources   ResourceResolver
	index       vo.ResourceIndex
	iframes     IframeVideoParser
	assessments AssessmentConverter
	logger      *zap.Logger
}

func NewConverter(resources ResourceResolver, index vo.ResourceIndex, opts ...Option) *Converter {
	c := &Converter{
		resources: resources,
		index:     index,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of one conversion.
type Result struct {
	Document    *vo.Document
	Diagnostics []vo.Diagnostic
}

// conversion carries the state of a single Convert call.
type conversion struct {
	*Converter
	diagnostics []vo.Diagnostic
}

// Convert maps the children of root to the chapters of a new course
// document. Any error invalidates the whole document.
func (c *Converter) Convert(course vo.CourseInfo, root *vo.OutlineNode) (*Result, error) {
	run := &conversion{Converter: c}

	xcourse := vo.NewNode("course",
		vo.Attr{Name: "org", Value: course.Org},
		vo.Attr{Name: "course", Value: course.Slug},
		vo.Attr{Name: "name", Value: course.Name},
	)
	if root != nil {
		chapters, err := run.mapOutline(root.Children, containerLevels)
		if err != nil {
			return nil, err
		}
		xcourse.Children = chapters
	}

	return &Result{
		Document: &vo.Document{
			Comment: " Generated by olxexport ",
			Root:    xcourse,
		},
		Diagnostics: run.diagnostics,
	}, nil
}

// mapOutline builds the nodes for one outline level. Containers are created
// while levels remain; after that every item is resolved to content. Items
// with children are descended into regardless of their level.
func (c *conversion) mapOutline(items []*vo.OutlineNode, levels []string) ([]*vo.MarkupNode, error) {
	var out []*vo.MarkupNode
	for _, item := range items {
		var nodes []*vo.MarkupNode
		if len(levels) == 0 {
			var err error
			nodes, err = c.synthesize(c.resolve(item))
			if err != nil {
				return nil, err
			}
		} else {
			nodes = []*vo.MarkupNode{vo.NewNode(levels[0])}
		}

		for _, node := range nodes {
			if item.HasTitle() {
				node.SetAttr(attrDisplayName, item.Title)
				if item.ResourceRef != "" {
					node.SetAttr(attrURLName, item.ResourceRef)
				}
			}
			if item.HasChildren() {
				children, err := c.mapOutline(item.Children, remaining(levels))
				if err != nil {
					return nil, err
				}
				for _, child := range children {
					node.AppendChild(child)
				}
			}
			out = append(out, node)
		}
	}
	return out, nil
}

func remaining(levels []string) []string {
	if len(levels) == 0 {
		return nil
	}
	return levels[1:]
}

// resolve looks up the content of a leaf. Anything unresolvable becomes a
// missing content placeholder and links are classified.
func (c *conversion) resolve(item *vo.OutlineNode) vo.Details {
	var details vo.Details
	if item.ResourceRef != "" && c.resources != nil {
		if d, ok := c.resources.ResourceContent(item.ResourceRef); ok && d != nil {
			details = d
		}
	}
	if details == nil {
		c.logger.Debug("missing content", zap.String("ref", item.ResourceRef))
		details = vo.HTMLDetails{HTML: missingContentHTML}
	}
	if link, ok := details.(vo.LinkDetails); ok {
		details = ClassifyLink(link)
	}
	return details
}
