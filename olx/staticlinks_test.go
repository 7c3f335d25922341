package olx

import (
	"testing"

	"github.com/foomo/olxexport/service/vo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteStaticLinks(t *testing.T) {
	index := vo.ResourceIndex{
		"wiki_content/intro-page.html": "abc123",
		"web_resources/notes.html":     "notes1",
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "file base drops query and unescapes entities",
			in:   `<img src="$IMS-CC-FILEBASE$/img/a.png?x=1&amp;y=2">`,
			want: `<img src="/static/img/a.png">`,
		},
		{
			name: "percent encoded file base",
			in:   `<a href="%24IMS-CC-FILEBASE%24/My%20File%20%26amp%3B%20Notes.pdf">notes</a>`,
			want: `<a href="/static/My File & Notes.pdf">notes</a>`,
		},
		{
			name: "malformed escapes stay literal",
			in:   `<img src="$IMS-CC-FILEBASE$/a%zz.png">`,
			want: `<img src="/static/a%zz.png">`,
		},
		{
			name: "valid escapes decode next to malformed ones",
			in:   `<img src="$IMS-CC-FILEBASE$/My%20File%zz.png">`,
			want: `<img src="/static/My File%zz.png">`,
		},
		{
			name: "encoded file base with a stray percent",
			in:   `<img src="%24IMS-CC-FILEBASE%24/a%20b%.png">`,
			want: `<img src="/static/a b%.png">`,
		},
		{
			name: "trailing percent escape",
			in:   `<a href="$IMS-CC-FILEBASE$/c%41%4">c</a>`,
			want: `<a href="/static/cA%4">c</a>`,
		},
		{
			name: "wiki reference resolves to jump url",
			in:   `<a href="$WIKI_REFERENCE$/pages/intro-page?module_item_id=3">Intro</a>`,
			want: `<a href="/jump_to_id/abc123">Intro</a>`,
		},
		{
			name: "unrelated values are untouched",
			in:   `<a href = "https://example.com/?a=1&amp;b=2">x</a> src="plain.png"`,
			want: `<a href = "https://example.com/?a=1&amp;b=2">x</a> src="plain.png"`,
		},
		{
			name: "several values in source order",
			in:   `<p><img src="$IMS-CC-FILEBASE$/1.png"> and <a href="$WIKI_REFERENCE$/pages/notes">n</a></p>`,
			want: `<p><img src="/static/1.png"> and <a href="/jump_to_id/notes1">n</a></p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diags := RewriteStaticLinks(tt.in, index)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, diags)
		})
	}
}

func TestRewriteStaticLinksUnresolvedWikiReference(t *testing.T) {
	in := `<p><a href="$WIKI_REFERENCE$/pages/gone?x=1">gone</a></p>`

	got, diags := RewriteStaticLinks(in, vo.ResourceIndex{"wiki_content/other.html": "o"})
	assert.Equal(t, in, got)
	require.Len(t, diags, 1)
	assert.Equal(t, vo.DiagnosticUnresolvedWikiReference, diags[0].Kind)
	assert.Equal(t, "$WIKI_REFERENCE$/pages/gone?x=1", diags[0].Value)
}

func TestRewriteStaticLinksIdempotent(t *testing.T) {
	index := vo.ResourceIndex{"wiki_content/intro-page.html": "abc123"}
	in := `<div><img src="$IMS-CC-FILEBASE$/img/a.png?x=1"><a href="$WIKI_REFERENCE$/pages/intro-page">i</a><a href="https://x.org">x</a></div>`

	once, _ := RewriteStaticLinks(in, index)
	twice, diags := RewriteStaticLinks(once, index)
	assert.Equal(t, once, twice)
	assert.Empty(t, diags)
}

func TestRewriteStaticLinksWikiTieBreak(t *testing.T) {
	index := vo.ResourceIndex{
		"z/pages/intro.html": "from-z",
		"a/pages/intro.html": "from-a",
	}
	got, _ := RewriteStaticLinks(`<a href="$WIKI_REFERENCE$/pages/intro">i</a>`, index)
	assert.Equal(t, `<a href="/jump_to_id/from-a">i</a>`, got)
}
