package bookmark

import (
	"strings"

	"golang.org/x/net/html"
)

// allowedTags maps inert tags to the attributes they may keep. Tags not listed
// are escaped as text; attributes not listed (including every on* handler and
// style) are dropped.
var allowedTags = map[string][]string{
	"a":          {"href", "title", "target"},
	"abbr":       {"title"},
	"address":    nil,
	"article":    nil,
	"aside":      nil,
	"b":          nil,
	"bdi":        {"dir"},
	"bdo":        {"dir"},
	"big":        nil,
	"blockquote": {"cite"},
	"br":         nil,
	"caption":    nil,
	"center":     nil,
	"cite":       nil,
	"code":       nil,
	"col":        {"align", "valign", "span", "width"},
	"colgroup":   {"align", "valign", "span", "width"},
	"dd":         nil,
	"del":        {"datetime"},
	"details":    {"open"},
	"div":        nil,
	"dl":         nil,
	"dt":         nil,
	"em":         nil,
	"figcaption": nil,
	"figure":     nil,
	"font":       {"color", "size", "face"},
	"footer":     nil,
	"h1":         nil,
	"h2":         nil,
	"h3":         nil,
	"h4":         nil,
	"h5":         nil,
	"h6":         nil,
	"header":     nil,
	"hr":         nil,
	"i":          nil,
	"img":        {"src", "alt", "title", "width", "height"},
	"ins":        {"datetime"},
	"kbd":        nil,
	"li":         nil,
	"mark":       nil,
	"nav":        nil,
	"ol":         nil,
	"p":          nil,
	"pre":        nil,
	"s":          nil,
	"section":    nil,
	"small":      nil,
	"span":       nil,
	"sub":        nil,
	"summary":    nil,
	"sup":        nil,
	"strong":     nil,
	"strike":     nil,
	"table":      {"width", "border", "align", "valign"},
	"tbody":      {"align", "valign"},
	"td":         {"width", "rowspan", "colspan", "align", "valign"},
	"tfoot":      {"align", "valign"},
	"th":         {"width", "rowspan", "colspan", "align", "valign"},
	"thead":      {"align", "valign"},
	"tr":         {"rowspan", "align", "valign"},
	"tt":         nil,
	"u":          nil,
	"ul":         nil,
}

// safeSchemes are the only schemes href and src may carry.
var safeSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
	"tel":    true,
	"ftp":    true,
}

var (
	textEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")
	// TagAttr returns decoded values, so & must be re-encoded for the
	// output to decode back to the same value.
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")
)

// Sanitize neutralizes active markup in s. Allow-listed tags survive with
// their allow-listed attributes; every other tag is entity-escaped, comments
// are removed, and in text only < and > are escaped so existing entities are
// left alone. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		// TagName and TagAttr rewrite the token buffer in place, so take a
		// copy of the raw bytes first.
		raw := string(z.Raw())

		switch tt {
		case html.ErrorToken:
			// EOF. Raw holds an unterminated tag, if any.
			b.WriteString(textEscaper.Replace(raw))
			return b.String()
		case html.TextToken:
			b.WriteString(textEscaper.Replace(raw))
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, hasAttr := z.TagName()
			attrs, ok := allowedTags[string(name)]
			if !ok {
				b.WriteString(textEscaper.Replace(raw))
				continue
			}
			writeTag(&b, z, tt, string(name), hasAttr, attrs)
		case html.CommentToken:
		default:
			b.WriteString(textEscaper.Replace(raw))
		}
	}
}

func writeTag(b *strings.Builder, z *html.Tokenizer, tt html.TokenType, name string, hasAttr bool, allowed []string) {
	if tt == html.EndTagToken {
		b.WriteString("</" + name + ">")
		return
	}

	b.WriteString("<" + name)
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		k := string(key)
		if !contains(allowed, k) {
			continue
		}
		v := string(val)
		if (k == "href" || k == "src") && !safeURL(v) {
			continue
		}
		b.WriteString(" " + k + `="` + attrEscaper.Replace(v) + `"`)
	}
	if tt == html.SelfClosingTagToken {
		b.WriteString(" /")
	}
	b.WriteString(">")
}

// safeURL rejects URLs whose scheme is not in safeSchemes. Relative URLs,
// fragments and query-only references are allowed.
func safeURL(v string) bool {
	// Browsers ignore control characters and whitespace inside a scheme.
	cleaned := strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, v)

	i := strings.IndexAny(cleaned, ":/?#")
	if i < 0 || cleaned[i] != ':' {
		return true
	}
	return safeSchemes[strings.ToLower(cleaned[:i])]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
