package olx

import (
	"fmt"

	"github.com/foomo/olxexport/fragment"
	"github.com/foomo/olxexport/service/vo"
	"golang.org/x/net/html"
)

// IframeVideoParser maps embedded player iframes to video nodes. It returns
// the produced nodes and the iframes it consumed to produce them.
type IframeVideoParser interface {
	VideoNodes(iframes []*html.Node) (videos []*vo.MarkupNode, consumed []*html.Node)
}

// extractIframes converts recognized iframes of s into video nodes and cuts
// them from the markup, leaving everything else as written. Without any
// video node the input is returned as is.
func extractIframes(s string, parser IframeVideoParser) (string, []*vo.MarkupNode, error) {
	frag, err := fragment.Parse(s)
	if err != nil {
		return "", nil, err
	}

	iframes := frag.Iframes()
	if len(iframes) == 0 {
		return s, nil, nil
	}

	videos, consumed := parser.VideoNodes(iframes)
	if len(videos) == 0 {
		return s, nil, nil
	}

	out, err := frag.Without(consumed)
	if err != nil {
		return "", nil, fmt.Errorf("failed to render HTML without iframes: %w", err)
	}
	return out, videos, nil
}
