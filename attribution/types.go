package attribution

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// Result is a single attribution candidate for an image: who made it, where
// it was published and under which license.
type Result struct {
	Type         string   `json:"type"`
	ID           string   `json:"id"`
	Title        string   `json:"title,omitempty"`
	Creator      string   `json:"creator,omitempty"`
	CreatorURL   string   `json:"creator_url,omitempty"`
	Copyright    string   `json:"copyright,omitempty"`
	License      string   `json:"license,omitempty"`
	Description  string   `json:"description,omitempty"`
	Keywords     []string `json:"keywords"`
	DateCreated  string   `json:"date_created,omitempty"`
	Location     string   `json:"location,omitempty"`
	SourceURL    string   `json:"source_url,omitempty"`
	SourceDomain string   `json:"source_domain"`
	Confidence   float64  `json:"confidence"`
}

// EmbeddedSource is the source_domain used for results extracted from
// metadata embedded in the image itself.
const EmbeddedSource = "iptc_embedded"

// NewResult returns a Result with the constant type set and a non-nil
// keyword slice so the field always serializes as an array.
func NewResult(sourceDomain, sourceURL string) Result {
	return Result{
		Type:         "image",
		ID:           ResultID(sourceDomain, sourceURL),
		Keywords:     []string{},
		SourceURL:    sourceURL,
		SourceDomain: sourceDomain,
	}
}

// ResultID derives a deterministic identifier from the source and the page
// (or image) the result came from.
func ResultID(sourceDomain, sourceURL string) string {
	sum := md5.Sum([]byte(sourceDomain + "|" + sourceURL))
	return "img_" + hex.EncodeToString(sum[:])[:8]
}

// SourceClass orders result origins by reliability. It drives the tie-break
// ordering when two results share a confidence value.
type SourceClass int

const (
	ClassEmbedded SourceClass = iota
	ClassAPI
	ClassScrape
	ClassUnclassified
)

func (c SourceClass) String() string {
	switch c {
	case ClassEmbedded:
		return "embedded"
	case ClassAPI:
		return "api"
	case ClassScrape:
		return "scrape"
	case ClassUnclassified:
		return "unclassified"
	}
	return fmt.Sprintf("class(%d)", int(c))
}

// ImageRef identifies the image being resolved: either a dereferenceable URL
// or an in-memory buffer, never both. Immutable for the life of one request.
type ImageRef struct {
	URL         string
	Data        []byte
	ContentType string
}

// Request is a single-image attribution request. ImageData carries uploaded
// bytes and is mutually exclusive with ImageURL.
type Request struct {
	ImageURL   string   `json:"image_url,omitempty"`
	ImageData  []byte   `json:"-"`
	MaxResults int      `json:"max_results,omitempty"`
	Timeout    int      `json:"timeout,omitempty"`
	Engines    []string `json:"engines,omitempty"`
}

// Response is the ranked outcome for one image.
type Response struct {
	Found             bool     `json:"found"`
	ImageURL          string   `json:"image_url"`
	Results           []Result `json:"results"`
	MatchedURLs       []string `json:"matched_urls"`
	SearchEnginesUsed []string `json:"search_engines_used"`
	TotalMatchesFound int      `json:"total_matches_found"`
	Error             string   `json:"error,omitempty"`
}

// SearchHit is one candidate page URL produced by a reverse-search engine.
type SearchHit struct {
	URL    string
	Engine string
	Title  string
}

// SearchHits is the union of all engines' candidates for one image.
type SearchHits struct {
	Hits        []SearchHit
	EnginesUsed []string
	Errors      []string
}

// Source describes a supported attribution source from the classifier
// registry.
type Source struct {
	Key            string
	Priority       int
	APICapable     bool
	ExpectedFields []string
}
