package linkmap

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/foomo/olxexport/fragment"
	"github.com/foomo/olxexport/olx"
	"github.com/foomo/olxexport/service/vo"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	ColumnExternalLink = "External Video Link"
	ColumnEdxID        = "Edx Id"
	ColumnYouTubeID    = "Youtube Id"
)

// Entry holds the platform ids of one external video.
type Entry struct {
	EdxID     string
	YouTubeID string
}

// Parser maps embedded player iframes to video nodes using a link map.
type Parser struct {
	logger *zap.Logger
	links  map[string]Entry
}

var _ olx.IframeVideoParser = (*Parser)(nil)

// Load reads the link map CSV at path.
func Load(path string, logger *zap.Logger) (*Parser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open link map: %w", err)
	}
	defer f.Close()
	return New(f, logger)
}

// New reads a link map CSV with a header row naming the external link and
// at least one of the id columns.
func New(r io.Reader, logger *zap.Logger) (*Parser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read link map header: %w", err)
	}

	columns := map[string]int{}
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	linkCol, ok := columns[ColumnExternalLink]
	if !ok {
		return nil, fmt.Errorf("link map is missing the %q column", ColumnExternalLink)
	}

	p := &Parser{logger: logger, links: map[string]Entry{}}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read link map: %w", err)
		}
		link := field(record, linkCol)
		if link == "" {
			continue
		}
		p.links[link] = Entry{
			EdxID:     column(record, columns, ColumnEdxID),
			YouTubeID: column(record, columns, ColumnYouTubeID),
		}
	}
	logger.Debug("loaded link map", zap.Int("links", len(p.links)))
	return p, nil
}

// Lookup finds the entry for an external link, ignoring its query string
// when the exact link is unknown.
func (p *Parser) Lookup(link string) (Entry, bool) {
	if e, ok := p.links[link]; ok {
		return e, true
	}
	if i := strings.IndexByte(link, '?'); i >= 0 {
		e, ok := p.links[link[:i]]
		return e, ok
	}
	return Entry{}, false
}

// VideoNodes implements olx.IframeVideoParser.
func (p *Parser) VideoNodes(iframes []*html.Node) ([]*vo.MarkupNode, []*html.Node) {
	var (
		videos   []*vo.MarkupNode
		consumed []*html.Node
	)
	for _, iframe := range iframes {
		src := fragment.AttrValue(iframe, "src")
		entry, ok := p.Lookup(src)
		if !ok || (entry.EdxID == "" && entry.YouTubeID == "") {
			p.logger.Debug("iframe not in link map", zap.String("src", src))
			continue
		}

		var video *vo.MarkupNode
		if entry.YouTubeID != "" {
			video = olx.VideoNode(entry.YouTubeID)
		} else {
			video = vo.NewNode("video")
		}
		if entry.EdxID != "" {
			video.SetAttr("edx_video_id", entry.EdxID)
		}
		videos = append(videos, video)
		consumed = append(consumed, iframe)
	}
	return videos, consumed
}

func column(record []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok {
		return ""
	}
	return field(record, i)
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
