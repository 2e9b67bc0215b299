// Package classify maps candidate URLs from reverse search onto the registry
// of known attribution sources.
package classify

import (
	"net/url"
	"strings"

	"imagecredit/attribution"
)

// builtinSources is the static registry of supported sources, ordered by
// reliability. Priority is the index: lower wins ties.
var builtinSources = []registryEntry{
	{
		Source: attribution.Source{
			Key:            "getty",
			APICapable:     false,
			ExpectedFields: []string{"creator", "title", "license", "description"},
		},
		Domains: []string{"gettyimages.com", "gettyimages.co.uk", "media.gettyimages.com", "istockphoto.com"},
	},
	{
		Source: attribution.Source{
			Key:            "shutterstock",
			APICapable:     false,
			ExpectedFields: []string{"creator", "title", "license"},
		},
		Domains: []string{"shutterstock.com", "image.shutterstock.com"},
	},
	{
		Source: attribution.Source{
			Key:            "unsplash",
			APICapable:     true,
			ExpectedFields: []string{"creator", "title", "license", "description"},
		},
		Domains: []string{"unsplash.com", "images.unsplash.com"},
	},
	{
		Source: attribution.Source{
			Key:            "pexels",
			APICapable:     true,
			ExpectedFields: []string{"creator", "creator_url", "title", "license", "location"},
		},
		Domains: []string{"pexels.com", "images.pexels.com"},
	},
	{
		Source: attribution.Source{
			Key:            "pixabay",
			APICapable:     false,
			ExpectedFields: []string{"creator", "creator_url", "title", "license"},
		},
		Domains: []string{"pixabay.com", "cdn.pixabay.com"},
	},
	{
		Source: attribution.Source{
			Key:            "flickr",
			APICapable:     true,
			ExpectedFields: []string{"creator", "title", "license"},
		},
		Domains: []string{"flickr.com", "staticflickr.com"},
	},
	{
		Source: attribution.Source{
			Key:            "alamy",
			APICapable:     false,
			ExpectedFields: []string{"creator", "title", "license"},
		},
		Domains: []string{"alamy.com"},
	},
	{
		Source: attribution.Source{
			Key:            "news",
			APICapable:     false,
			ExpectedFields: []string{"creator", "title"},
		},
		Domains: []string{"apimages.com", "apnews.com", "reuters.com", "nytimes.com"},
	},
}

type registryEntry struct {
	Source  attribution.Source
	Domains []string
}

// Registry resolves URL domains to attribution sources. It is built once at
// startup and read-only afterwards.
type Registry struct {
	entries []registryEntry
}

// NewRegistry builds the registry from the built-in source table.
func NewRegistry() *Registry {
	entries := make([]registryEntry, len(builtinSources))
	copy(entries, builtinSources)
	for i := range entries {
		entries[i].Source.Priority = i
	}
	return &Registry{entries: entries}
}

// Classify maps a candidate URL to a known source. The second return is
// false for unclassified URLs.
func (r *Registry) Classify(rawURL string) (attribution.Source, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return attribution.Source{}, false
	}
	domain := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if domain == "" {
		return attribution.Source{}, false
	}
	for _, e := range r.entries {
		for _, d := range e.Domains {
			if domain == d || strings.HasSuffix(domain, "."+d) {
				return e.Source, true
			}
		}
	}
	return attribution.Source{}, false
}

// Sources returns every registered source in priority order.
func (r *Registry) Sources() []attribution.Source {
	out := make([]attribution.Source, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Source
	}
	return out
}

// add appends a source after the built-ins, used by the YAML extension file.
func (r *Registry) add(src attribution.Source, domains []string) {
	src.Priority = len(r.entries)
	r.entries = append(r.entries, registryEntry{Source: src, Domains: domains})
}
