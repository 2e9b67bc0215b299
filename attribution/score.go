package attribution

import (
	"net/url"
	"sort"
	"strings"
)

// Candidate pairs an extracted result with how it was obtained, which is what
// the scoring policy keys on.
type Candidate struct {
	Result         Result
	Class          SourceClass
	Priority       int
	ExpectedFields []string
}

const (
	embeddedConfidence     = 1.0
	apiConfidence          = 0.9
	scrapeBaseConfidence   = 0.6
	scrapeFieldBonus       = 0.25
	unclassifiedConfidence = 0.3
)

// Score assigns a deterministic confidence by origin. Embedded metadata and
// API answers have fixed values; scraped results earn a bonus proportional to
// how many of the source's expected fields came back populated.
func Score(c Candidate) float64 {
	switch c.Class {
	case ClassEmbedded:
		return embeddedConfidence
	case ClassAPI:
		return apiConfidence
	case ClassScrape:
		if len(c.ExpectedFields) == 0 {
			return scrapeBaseConfidence
		}
		populated := 0
		for _, f := range c.ExpectedFields {
			if fieldPopulated(c.Result, f) {
				populated++
			}
		}
		return scrapeBaseConfidence + scrapeFieldBonus*float64(populated)/float64(len(c.ExpectedFields))
	default:
		return unclassifiedConfidence
	}
}

func fieldPopulated(r Result, field string) bool {
	switch field {
	case "creator":
		return r.Creator != ""
	case "creator_url":
		return r.CreatorURL != ""
	case "title":
		return r.Title != ""
	case "copyright":
		return r.Copyright != ""
	case "license":
		return r.License != ""
	case "description":
		return r.Description != ""
	case "keywords":
		return len(r.Keywords) > 0
	case "date_created":
		return r.DateCreated != ""
	case "location":
		return r.Location != ""
	}
	return false
}

// Aggregate scores every candidate, collapses duplicates pointing at the same
// page, orders the survivors and truncates to maxResults. Merging never
// overwrites a populated field with an empty one; the higher-confidence entry
// wins, picking up any fields only the loser had.
func Aggregate(candidates []Candidate, maxResults int) []Result {
	merged := make(map[string]*Candidate)
	var keys []string
	for _, c := range candidates {
		c.Result.Confidence = Score(c)
		key := dedupKey(c.Result)
		prev, ok := merged[key]
		if !ok {
			cc := c
			merged[key] = &cc
			keys = append(keys, key)
			continue
		}
		if c.Result.Confidence > prev.Result.Confidence {
			mergeFields(&c.Result, prev.Result)
			*prev = c
		} else {
			mergeFields(&prev.Result, c.Result)
		}
	}

	out := make([]Candidate, 0, len(keys))
	for _, k := range keys {
		out = append(out, *merged[k])
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Result.Confidence != b.Result.Confidence {
			return a.Result.Confidence > b.Result.Confidence
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.Result.SourceURL < b.Result.SourceURL
	})

	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	results := make([]Result, len(out))
	for i, c := range out {
		results[i] = c.Result
	}
	return results
}

// dedupKey normalizes the (source_domain, source_url) pair: lowercase host
// minus www, path minus trailing slash, query and fragment dropped.
func dedupKey(r Result) string {
	return strings.ToLower(r.SourceDomain) + "|" + normalizeURL(r.SourceURL)
}

func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return host + strings.TrimSuffix(u.Path, "/")
}

func mergeFields(dst *Result, src Result) {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Creator == "" {
		dst.Creator = src.Creator
	}
	if dst.CreatorURL == "" {
		dst.CreatorURL = src.CreatorURL
	}
	if dst.Copyright == "" {
		dst.Copyright = src.Copyright
	}
	if dst.License == "" {
		dst.License = src.License
	}
	if dst.Description == "" {
		dst.Description = src.Description
	}
	if dst.DateCreated == "" {
		dst.DateCreated = src.DateCreated
	}
	if dst.Location == "" {
		dst.Location = src.Location
	}
	if len(src.Keywords) > 0 {
		seen := make(map[string]bool, len(dst.Keywords))
		for _, k := range dst.Keywords {
			seen[k] = true
		}
		for _, k := range src.Keywords {
			if !seen[k] {
				dst.Keywords = append(dst.Keywords, k)
			}
		}
	}
}
