package scrapers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"imagecredit/attribution"
	"imagecredit/fetcher"
)

// Pexels extracts attribution from Pexels photo pages. With an API key it
// resolves the photo through the Pexels API first and only scrapes when the
// API cannot answer.
type Pexels struct {
	fetcher *fetcher.Client
	apiKey  string
	logger  *zap.Logger
}

func (p *Pexels) Source() string { return "pexels" }

func (p *Pexels) apiConfigured() bool { return p.apiKey != "" }

var pexelsIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`pexels\.com/photo/[^/]+-(\d+)`),
	regexp.MustCompile(`pexels\.com/photo/(\d+)`),
	regexp.MustCompile(`images\.pexels\.com/photos/(\d+)/`),
	regexp.MustCompile(`pexels-photo-(\d+)`),
}

func (p *Pexels) Extract(ctx context.Context, pageURL string) (attribution.Result, attribution.SourceClass, error) {
	if p.apiKey != "" {
		if id := pexelsPhotoID(pageURL); id != "" {
			r, err := p.extractAPI(ctx, id)
			if err == nil {
				return r, attribution.ClassAPI, nil
			}
			p.logger.Warn("pexels api lookup failed, falling back to scrape",
				zap.String("photo_id", id), zap.Error(err))
		}
	}
	r, err := p.extractPage(ctx, pageURL)
	return r, attribution.ClassScrape, err
}

func pexelsPhotoID(rawURL string) string {
	for _, p := range pexelsIDPatterns {
		if m := p.FindStringSubmatch(strings.ToLower(rawURL)); m != nil {
			return m[1]
		}
	}
	return ""
}

type pexelsPhoto struct {
	ID              int    `json:"id"`
	URL             string `json:"url"`
	Alt             string `json:"alt"`
	Photographer    string `json:"photographer"`
	PhotographerURL string `json:"photographer_url"`
}

func (p *Pexels) extractAPI(ctx context.Context, photoID string) (attribution.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://api.pexels.com/v1/photos/"+photoID, nil)
	if err != nil {
		return attribution.Result{}, err
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.fetcher.Do(ctx, req)
	if err != nil {
		return attribution.Result{}, err
	}

	var photo pexelsPhoto
	if err := json.Unmarshal(resp.Body, &photo); err != nil {
		return attribution.Result{}, fmt.Errorf("decoding pexels response: %w", err)
	}
	if photo.Photographer == "" {
		return attribution.Result{}, &ParseError{URL: photo.URL, Reason: "api response without photographer"}
	}

	r := attribution.NewResult(p.Source(), photo.URL)
	r.Creator = photo.Photographer
	r.CreatorURL = photo.PhotographerURL
	r.Title = photo.Alt
	if r.Title == "" {
		r.Title = fmt.Sprintf("Pexels Photo %d", photo.ID)
	}
	r.Description = photo.Alt
	r.License = "Pexels License"
	r.Copyright = buildCopyright(r.Creator, "")
	return r, nil
}

var (
	pexelsProfileHref = regexp.MustCompile(`^/@[a-zA-Z0-9_-]+/?$`)
	pexelsTitleNoise  = regexp.MustCompile(`(?i)\s*[·|]\s*(Free|Pexels).*$`)
)

func (p *Pexels) extractPage(ctx context.Context, pageURL string) (attribution.Result, error) {
	doc, err := fetchDocument(ctx, p.fetcher, pageURL)
	if err != nil {
		return attribution.Result{}, err
	}

	r := attribution.NewResult(p.Source(), pageURL)
	r.License = "Pexels License"

	if obj, ok := findJSONLD(doc); ok {
		applyJSONLD(&r, obj)
		r.License = "Pexels License"
	}

	// Photographer profile links use the /@username pattern.
	if r.Creator == "" {
		doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			href, _ := sel.Attr("href")
			if !pexelsProfileHref.MatchString(href) {
				return true
			}
			name := cleanText(sel.Text())
			if name == "" || len(name) >= 100 {
				return true
			}
			r.Creator = name
			r.CreatorURL = "https://www.pexels.com" + strings.TrimSuffix(href, "/")
			return false
		})
	}

	if r.Title == "" {
		if title := metaContent(doc, `meta[property="og:title"]`); title != "" {
			r.Title = cleanText(pexelsTitleNoise.ReplaceAllString(title, ""))
		}
	}

	// Pexels marks some photos CC0 rather than the house license.
	if strings.Contains(strings.ToLower(doc.Text()), "cc0") {
		r.License = "CC0 (Public Domain)"
	}

	fillCommon(&r, doc)
	return finish(r, pageURL)
}
