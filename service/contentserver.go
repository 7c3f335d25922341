package service

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	contentserverclient "github.com/foomo/contentserver/client"
	"github.com/foomo/contentserver/content"
	"github.com/foomo/contentserver/requests"
	"github.com/foomo/olxexport/service/vo"
)

// detailFields are the item data fields read into resource details.
var detailFields = []string{
	"html", "href", "text", "youtube", "title", "description",
	"launch_url", "height", "width", "custom_parameters", "data",
}

// ContentServerSettings configures how a contentserver tree maps to a cartridge.
type ContentServerSettings struct {
	URL string
	Env *requests.Env
	// MimeTypes maps item mime types to resource content types. Items with
	// other mime types become outline nodes without content.
	MimeTypes map[string]vo.ContentType
	// ContainerMimeTypes are requested in addition to MimeTypes to keep the
	// outline levels.
	ContainerMimeTypes []string
}

func (settings ContentServerSettings) mimeTypes() []string {
	mimeTypes := make([]string, 0, len(settings.MimeTypes)+len(settings.ContainerMimeTypes))
	for mimeType := range settings.MimeTypes {
		mimeTypes = append(mimeTypes, mimeType)
	}
	sort.Strings(mimeTypes)
	return append(mimeTypes, settings.ContainerMimeTypes...)
}

// ContentServerSource reads course outlines from a foomo contentserver.
type ContentServerSource struct {
	client   *contentserverclient.Client
	settings ContentServerSettings
}

func NewContentServerSource(settings ContentServerSettings, httpClient *http.Client) *ContentServerSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	client := contentserverclient.New(
		contentserverclient.NewHTTPTransport(
			settings.URL,
			contentserverclient.HTTPTransportWithHTTPClient(httpClient),
		))

	return &ContentServerSource{
		client:   client,
		settings: settings,
	}
}

// Cartridge loads the tree below the node with the given id. The node's
// children become the chapters of the course.
func (s *ContentServerSource) Cartridge(ctx context.Context, rootID string) (*vo.Cartridge, error) {
	nodes, err := s.client.GetNodes(ctx, s.settings.Env, map[string]*requests.Node{
		rootID: {
			ID:         rootID,
			MimeTypes:  s.settings.mimeTypes(),
			Expand:     true,
			DataFields: detailFields,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes for %s: %w", rootID, err)
	}
	root, ok := nodes[rootID]
	if !ok || root.Item == nil {
		return nil, fmt.Errorf("root node %s not found", rootID)
	}
	return cartridgeFromNode(root, s.settings.MimeTypes), nil
}

func cartridgeFromNode(root *content.Node, mimeTypes map[string]vo.ContentType) *vo.Cartridge {
	cartridge := &vo.Cartridge{
		Title:         root.Item.Name,
		Resources:     map[string]vo.Resource{},
		ResourceIndex: vo.ResourceIndex{},
	}

	var walk func(n *content.Node) *vo.OutlineNode
	walk = func(n *content.Node) *vo.OutlineNode {
		item := n.Item
		outline := &vo.OutlineNode{
			Title:       item.Name,
			ResourceRef: item.ID,
		}
		if contentType, ok := mimeTypes[item.MimeType]; ok {
			cartridge.Resources[item.ID] = vo.Resource{Details: detailsFromData(contentType, item.Data)}
		}
		if item.URI != "" {
			cartridge.ResourceIndex[strings.TrimPrefix(item.URI, "/")+".html"] = item.ID
		}
		for _, id := range n.Index {
			child, ok := n.Nodes[id]
			if !ok || child.Item == nil {
				continue
			}
			outline.Children = append(outline.Children, walk(child))
		}
		return outline
	}

	cartridge.Outline = walk(root)
	return cartridge
}

func detailsFromData(contentType vo.ContentType, data map[string]interface{}) vo.Details {
	switch contentType {
	case vo.ContentTypeHTML:
		return vo.HTMLDetails{HTML: stringField(data, "html")}
	case vo.ContentTypeLink:
		return vo.LinkDetails{Href: stringField(data, "href"), Text: stringField(data, "text")}
	case vo.ContentTypeVideo:
		return vo.VideoDetails{VideoID: stringField(data, "youtube")}
	case vo.ContentTypeExternalTool:
		return vo.ExternalToolDetails{
			Title:            stringField(data, "title"),
			Description:      stringField(data, "description"),
			LaunchURL:        stringField(data, "launch_url"),
			Height:           stringField(data, "height"),
			Width:            stringField(data, "width"),
			CustomParameters: customParameters(data["custom_parameters"]),
		}
	case vo.ContentTypeAssessment:
		assessment, _ := data["data"].(map[string]interface{})
		return vo.AssessmentDetails{Data: assessment}
	case vo.ContentTypeDiscussion:
		return vo.DiscussionDetails{Title: stringField(data, "title"), Text: stringField(data, "text")}
	}
	return nil
}

func stringField(data map[string]interface{}, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// customParameters reads a data map sorted by key; contentserver data carries no key order
func customParameters(v interface{}) []vo.CustomParameter {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	params := make([]vo.CustomParameter, len(keys))
	for i, k := range keys {
		params[i] = vo.CustomParameter{Key: k, Value: fmt.Sprint(m[k])}
	}
	return params
}
