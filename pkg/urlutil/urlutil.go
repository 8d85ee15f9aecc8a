package urlutil

import (
	"net/url"
	"path"
	"sort"
	"strings"
)

// Canonicalize maps equivalent spellings of a URL to one form.
//
// Scheme and host are lowercased, default ports dropped, trailing slashes
// removed (except root) and the fragment cleared. Unlike a generic web
// crawler, query parameters are kept because the portals address
// documents by them (ItemID, tab). They are re-encoded in key order.
func Canonicalize(sourceUrl url.URL) url.URL {
	canonical := sourceUrl

	canonical.Scheme = strings.ToLower(canonical.Scheme)
	canonical.Host = strings.ToLower(canonical.Host)

	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	for len(canonical.Path) > 1 && strings.HasSuffix(canonical.Path, "/") {
		canonical.Path = strings.TrimSuffix(canonical.Path, "/")
	}
	canonical.RawPath = ""

	canonical.Fragment = ""
	canonical.RawFragment = ""

	if canonical.RawQuery != "" {
		canonical.RawQuery = canonical.Query().Encode()
	}
	canonical.ForceQuery = false

	return canonical
}

// Resolve turns href, as found in a page, into an absolute URL against base.
// Hrefs that do not parse are reported as not ok.
func Resolve(base url.URL, href string) (url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return url.URL{}, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return url.URL{}, false
	}
	return *base.ResolveReference(ref), true
}

// Basename returns the last path segment of u, still percent-encoded.
func Basename(u url.URL) string {
	p := u.EscapedPath()
	if p == "" || p == "/" {
		return ""
	}
	return path.Base(p)
}

// QueryValue returns the first value of key, matching the key
// case-insensitively. Portal links mix "ItemID" and "itemid".
func QueryValue(u url.URL, key string) string {
	q := u.Query()
	if v := q.Get(key); v != "" {
		return v
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, key) && len(q[k]) > 0 {
			return q[k][0]
		}
	}
	return ""
}
