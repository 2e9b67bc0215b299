package classify

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Reverse search often returns CDN image URLs instead of the photo page that
// carries attribution. These rules rewrite the known CDN shapes onto their
// page URLs so the adapters have something to extract from.
var rewriteRules = []struct {
	host    string
	pattern *regexp.Regexp
	page    string
}{
	{"images.pexels.com", regexp.MustCompile(`/photos/(\d+)/`), "https://www.pexels.com/photo/%s/"},
	{"images.unsplash.com", regexp.MustCompile(`photo-([a-zA-Z0-9_-]+)`), "https://unsplash.com/photos/%s"},
	{"cdn.pixabay.com", regexp.MustCompile(`-(\d+)\.[a-z]+$`), "https://pixabay.com/photos/id-%s/"},
	{"media.gettyimages.com", regexp.MustCompile(`/id/(\d+)/`), "https://www.gettyimages.com/detail/%s"},
	{"image.shutterstock.com", regexp.MustCompile(`-(\d+)\.[a-z]+$`), "https://www.shutterstock.com/image-photo/%s"},
}

// PageURL rewrites a CDN image URL to its photo page URL where a rule
// matches, and returns the input unchanged otherwise.
func PageURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, rule := range rewriteRules {
		if host != rule.host {
			continue
		}
		if m := rule.pattern.FindStringSubmatch(u.Path); m != nil {
			return fmt.Sprintf(rule.page, m[1])
		}
	}
	return rawURL
}

// PageURL delegates to the package-level rewrite so the registry satisfies
// the orchestrator's classifier contract.
func (r *Registry) PageURL(rawURL string) string { return PageURL(rawURL) }

// PhotoID delegates likewise.
func (r *Registry) PhotoID(rawURL string) string { return PhotoID(rawURL) }

// photoIDPatterns extract a stable per-source photo identifier so the same
// photo reached through different URL shapes is scraped only once.
var photoIDPatterns = []struct {
	domain  string
	pattern *regexp.Regexp
	prefix  string
}{
	{"pexels.com", regexp.MustCompile(`/photos?/(?:[^/]+-)?(\d+)`), "pexels_"},
	{"unsplash.com", regexp.MustCompile(`photo[s/-]([a-zA-Z0-9_-]+)`), "unsplash_"},
	{"pixabay.com", regexp.MustCompile(`-(\d+)`), "pixabay_"},
	{"gettyimages", regexp.MustCompile(`/(?:detail|id)/(\d+)`), "getty_"},
	{"flickr.com", regexp.MustCompile(`/photos/[^/]+/(\d+)`), "flickr_"},
}

// PhotoID returns a per-source photo identifier for URLs whose shape encodes
// one, or "" when no pattern applies.
func PhotoID(rawURL string) string {
	lower := strings.ToLower(rawURL)
	for _, p := range photoIDPatterns {
		if !strings.Contains(lower, p.domain) {
			continue
		}
		if m := p.pattern.FindStringSubmatch(rawURL); m != nil {
			return p.prefix + m[1]
		}
	}
	return ""
}