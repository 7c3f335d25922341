package olx

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/foomo/olxexport/service/vo"
	"go.uber.org/zap"
)

const (
	tagHTML        = "html"
	tagVideo       = "video"
	tagLTIConsumer = "lti_consumer"
	tagDiscussion  = "discussion"

	attrDisplayName = "display_name"
	attrURLName     = "url_name"
)

// synthesize builds the OLX nodes for resolved resource details.
func (c *conversion) synthesize(details vo.Details) ([]*vo.MarkupNode, error) {
	switch d := details.(type) {
	case vo.HTMLDetails:
		return c.htmlNodes(d.HTML)
	case vo.VideoDetails:
		return []*vo.MarkupNode{VideoNode(d.VideoID)}, nil
	case vo.ExternalToolDetails:
		return []*vo.MarkupNode{ltiNode(d)}, nil
	case vo.AssessmentDetails:
		if c.assessments == nil {
			return nil, ErrNoAssessmentConverter
		}
		nodes, err := c.assessments.ConvertAssessment(d)
		if err != nil {
			return nil, fmt.Errorf("failed to convert assessment: %w", err)
		}
		return nodes, nil
	case vo.DiscussionDetails:
		return discussionNodes(d), nil
	}

	var contentType vo.ContentType
	if details != nil {
		contentType = details.ContentType()
	}
	c.logger.Debug("unsupported content", zap.String("details", spew.Sdump(details)))
	return nil, &UnsupportedContentTypeError{Type: contentType}
}

func (c *conversion) htmlNodes(body string) ([]*vo.MarkupNode, error) {
	body, diags := RewriteStaticLinks(body, c.index)
	for _, diag := range diags {
		c.logger.Warn("unable to process wiki link", zap.String("value", diag.Value))
	}
	c.diagnostics = append(c.diagnostics, diags...)

	var videos []*vo.MarkupNode
	if c.iframes != nil {
		var err error
		body, videos, err = extractIframes(body, c.iframes)
		if err != nil {
			return nil, err
		}
	}

	return append([]*vo.MarkupNode{vo.NewRawNode(tagHTML, body)}, videos...), nil
}

// VideoNode returns a YouTube backed video node.
func VideoNode(youtubeID string) *vo.MarkupNode {
	return vo.NewNode(tagVideo,
		vo.Attr{Name: "youtube", Value: "1.00:" + youtubeID},
		vo.Attr{Name: "youtube_id_1_0", Value: youtubeID},
	)
}

func ltiNode(d vo.ExternalToolDetails) *vo.MarkupNode {
	params := make([]string, len(d.CustomParameters))
	for i, p := range d.CustomParameters {
		params[i] = `"` + p.Key + "=" + p.Value + `"`
	}

	return vo.NewNode(tagLTIConsumer,
		vo.Attr{Name: "custom_parameters", Value: "[" + strings.Join(params, ", ") + "]"},
		vo.Attr{Name: "description", Value: d.Description},
		vo.Attr{Name: attrDisplayName, Value: d.Title},
		vo.Attr{Name: "inline_height", Value: d.Height},
		vo.Attr{Name: "inline_width", Value: d.Width},
		vo.Attr{Name: "launch_url", Value: d.LaunchURL},
		vo.Attr{Name: "modal_height", Value: d.Height},
		vo.Attr{Name: "modal_width", Value: d.Width},
		vo.Attr{Name: "xblock-family", Value: "xblock.v1"},
	)
}

func discussionNodes(d vo.DiscussionDetails) []*vo.MarkupNode {
	return []*vo.MarkupNode{
		vo.NewRawNode(tagHTML, d.Text),
		vo.NewNode(tagDiscussion,
			vo.Attr{Name: attrDisplayName, Value: ""},
			vo.Attr{Name: "discussion_category", Value: d.Title},
			vo.Attr{Name: "discussion_target", Value: d.Title},
		),
	}
}
