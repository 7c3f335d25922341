package olx

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/foomo/olxexport/service/vo"
)

const (
	fileBaseToken       = "IMS-CC-FILEBASE"
	fileBasePlaceholder = "$IMS-CC-FILEBASE$"
	staticPrefix        = "/static"

	wikiToken       = "WIKI_REFERENCE"
	wikiPlaceholder = "$WIKI_REFERENCE$/pages/"
	wikiSuffix      = ".html"
	jumpToIDPrefix  = "/jump_to_id/"
)

var linkAttrPattern = regexp.MustCompile(`(src|href)\s*=\s*"(.+?)"`)

// RewriteStaticLinks resolves file base and wiki reference placeholders in
// src and href attribute values. Only the matched values are replaced, the
// rest of the text is kept as is. Wiki references missing from the index
// stay untouched and are reported as diagnostics.
func RewriteStaticLinks(s string, index vo.ResourceIndex) (string, []vo.Diagnostic) {
	matches := linkAttrPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	var (
		sb    strings.Builder
		diags []vo.Diagnostic
		last  int
	)
	for _, m := range matches {
		start, end := m[4], m[5]
		value := s[start:end]

		var rewritten string
		switch {
		case strings.Contains(value, fileBaseToken):
			rewritten = rewriteFileBase(value)
		case strings.Contains(value, wikiToken):
			var ok bool
			rewritten, ok = rewriteWikiReference(value, index)
			if !ok {
				diags = append(diags, vo.Diagnostic{
					Kind:    vo.DiagnosticUnresolvedWikiReference,
					Value:   value,
					Message: fmt.Sprintf("unable to process wiki link %s", value),
				})
			}
		default:
			rewritten = value
		}

		sb.WriteString(s[last:start])
		sb.WriteString(rewritten)
		last = end
	}
	sb.WriteString(s[last:])
	return sb.String(), diags
}

func rewriteFileBase(value string) string {
	v := strings.ReplaceAll(unquote(value), fileBasePlaceholder, staticPrefix)
	v = stripQuery(v)
	// &amp; is not valid in a URL but shows up in exported file names
	return strings.ReplaceAll(v, "&amp;", "&")
}

func rewriteWikiReference(value string, index vo.ResourceIndex) (string, bool) {
	key := strings.ReplaceAll(unquote(value), wikiPlaceholder, "")
	key = stripQuery(key) + wikiSuffix
	_, id, ok := index.MatchSuffix(key)
	if !ok {
		return value, false
	}
	return jumpToIDPrefix + id, true
}

func stripQuery(v string) string {
	if i := strings.IndexByte(v, '?'); i >= 0 {
		return v[:i]
	}
	return v
}

// unquote decodes every valid %XX escape of v and keeps malformed ones
// literally. Invalid UTF-8 in the result becomes U+FFFD.
func unquote(v string) string {
	if !strings.Contains(v, "%") {
		return v
	}
	buf := make([]byte, 0, len(v))
	for i := 0; i < len(v); i++ {
		if v[i] == '%' && i+2 < len(v) {
			if b, err := hex.DecodeString(v[i+1 : i+3]); err == nil {
				buf = append(buf, b[0])
				i += 2
				continue
			}
		}
		buf = append(buf, v[i])
	}
	return strings.ToValidUTF8(string(buf), "\uFFFD")
}
