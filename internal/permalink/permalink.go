// Package permalink builds public links for posts.
package permalink

import (
	"net/url"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Prefix is the route posts are served under.
const Prefix = "/blogs/"

// Slug turns a title or file name into a URL segment: diacritics are
// folded, letters lowercased, and every other run of characters becomes a
// single hyphen.
func Slug(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// Generate returns the permalink for the post stored at postPath. The slug
// comes from the file name; baseURL may be empty for a site-relative link.
func Generate(baseURL, postPath string) string {
	name := path.Base(strings.ReplaceAll(postPath, "\\", "/"))
	name = strings.TrimSuffix(name, path.Ext(name))

	link := Prefix + url.PathEscape(Slug(name))
	if baseURL == "" {
		return link
	}
	return strings.TrimRight(baseURL, "/") + link
}
