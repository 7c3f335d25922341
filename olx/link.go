package olx

import (
	"fmt"
	"regexp"

	"github.com/foomo/olxexport/service/vo"
)

// YouTube links may carry extra parameters, e.g.
// https://www.youtube.com/watch?v=gQ-cZRmHfs4&amp;amp;list=PL5B350D511278A56B
var youtubeWatchPattern = regexp.MustCompile(`youtube.com/watch\?v=([-\w]+)`)

// ClassifyLink turns a link into a video when it points at a YouTube watch
// page and into an anchor otherwise.
func ClassifyLink(link vo.LinkDetails) vo.Details {
	if m := youtubeWatchPattern.FindStringSubmatch(link.Href); m != nil {
		return vo.VideoDetails{VideoID: m[1]}
	}
	return vo.HTMLDetails{
		HTML: fmt.Sprintf("<a href='%s'>%s</a>", link.Href, link.Text),
	}
}
