package olx

import (
	"testing"

	"github.com/foomo/olxexport/service/vo"
	"github.com/stretchr/testify/assert"
)

func TestClassifyLink(t *testing.T) {
	tests := []struct {
		name string
		link vo.LinkDetails
		want vo.Details
	}{
		{
			name: "youtube watch url with extra parameters",
			link: vo.LinkDetails{Href: "https://www.youtube.com/watch?v=ABC123&list=XYZ"},
			want: vo.VideoDetails{VideoID: "ABC123"},
		},
		{
			name: "youtube id with dash and escaped separator",
			link: vo.LinkDetails{Href: "https://www.youtube.com/watch?v=gQ-cZRmHfs4&amp;amp;list=PL5B350D511278A56B"},
			want: vo.VideoDetails{VideoID: "gQ-cZRmHfs4"},
		},
		{
			name: "plain link becomes an anchor",
			link: vo.LinkDetails{Href: "https://example.com/a", Text: "Example"},
			want: vo.HTMLDetails{HTML: "<a href='https://example.com/a'>Example</a>"},
		},
		{
			name: "missing text",
			link: vo.LinkDetails{Href: "https://youtube.com/channel/x"},
			want: vo.HTMLDetails{HTML: "<a href='https://youtube.com/channel/x'></a>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyLink(tt.link))
		})
	}
}
