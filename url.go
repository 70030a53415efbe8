package mdextract

import (
	"net/url"
	"strings"
)

// ValidateURL checks that raw is an absolute http(s) URL with a host.
// It never touches the network.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, Errorf(EINVALID, "Invalid URL format. Please include http:// or https://")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, Errorf(EINVALID, "Invalid URL format. Please include http:// or https://")
	}
	return u, nil
}

// ResolveURL resolves href against base. Unparseable references are
// returned unchanged.
func ResolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
