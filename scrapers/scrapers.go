// Package scrapers holds one attribution adapter per supported source. Each
// adapter fetches a photo page (or queries the source's API when a
// credential is configured) and extracts structured attribution fields.
package scrapers

import (
	"fmt"

	"go.uber.org/zap"

	"imagecredit/attribution"
	"imagecredit/fetcher"
)

// ParseError reports a structural mismatch between a fetched page and what
// the adapter expects: changed markup, a bot challenge, or a non-HTML body.
type ParseError struct {
	URL    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.URL, e.Reason)
}

// Credentials are the optional per-source API keys. A missing key means the
// scrape-only variant is used; it is never an error.
type Credentials struct {
	PexelsAPIKey      string
	UnsplashAccessKey string
	FlickrAPIKey      string
}

// Registry holds the adapter for every supported source. Variants (API vs
// scrape-only) are resolved here, once, from the credentials present at
// startup.
type Registry struct {
	byKey   map[string]attribution.Scraper
	fetcher *fetcher.Client
	logger  *zap.Logger
}

func NewRegistry(f *fetcher.Client, logger *zap.Logger, creds Credentials) *Registry {
	r := &Registry{fetcher: f, logger: logger}
	r.byKey = map[string]attribution.Scraper{
		"getty":        &Getty{fetcher: f},
		"shutterstock": &Shutterstock{fetcher: f},
		"unsplash":     &Unsplash{fetcher: f, apiKey: creds.UnsplashAccessKey},
		"pexels":       &Pexels{fetcher: f, apiKey: creds.PexelsAPIKey, logger: logger},
		"pixabay":      &Pixabay{fetcher: f},
		"flickr":       &Flickr{fetcher: f, apiKey: creds.FlickrAPIKey},
		"alamy":        &Alamy{fetcher: f},
		"news":         &News{fetcher: f},
	}
	return r
}

// For returns the adapter registered for key. Sources without a dedicated
// adapter (custom registry entries) get generic extraction under their own
// source name.
func (r *Registry) For(key string) attribution.Scraper {
	if s, ok := r.byKey[key]; ok {
		return s
	}
	return &Generic{fetcher: r.fetcher, source: key}
}

// Generic returns the fallback adapter used for unclassified candidates.
func (r *Registry) Generic() attribution.Scraper {
	return &Generic{fetcher: r.fetcher, source: "generic"}
}

// APIBacked reports which sources run their API variant, for status
// reporting.
func (r *Registry) APIBacked() []string {
	var out []string
	for key, s := range r.byKey {
		if a, ok := s.(interface{ apiConfigured() bool }); ok && a.apiConfigured() {
			out = append(out, key)
		}
	}
	return out
}
