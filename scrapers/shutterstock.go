package scrapers

import (
	"context"
	"regexp"

	"imagecredit/attribution"
	"imagecredit/fetcher"
)

// Shutterstock extracts attribution from Shutterstock image pages. The
// contributor link (/g/<name>) is the reliable signal.
type Shutterstock struct {
	fetcher *fetcher.Client
}

func (s *Shutterstock) Source() string { return "shutterstock" }

var shutterstockTitleNoise = regexp.MustCompile(`(?i)\s*[-|]\s*Shutterstock.*$`)

func (s *Shutterstock) Extract(ctx context.Context, pageURL string) (attribution.Result, attribution.SourceClass, error) {
	doc, err := fetchDocument(ctx, s.fetcher, pageURL)
	if err != nil {
		return attribution.Result{}, attribution.ClassScrape, err
	}

	r := attribution.NewResult(s.Source(), pageURL)
	r.License = "Royalty Free"

	if obj, ok := findJSONLD(doc); ok {
		applyJSONLD(&r, obj)
		r.License = "Royalty Free"
	}

	if r.Creator == "" {
		if contrib := doc.Find(`a[href^="/g/"]`).First(); contrib.Length() > 0 {
			r.Creator = cleanText(contrib.Text())
			if href, ok := contrib.Attr("href"); ok {
				r.CreatorURL = "https://www.shutterstock.com" + href
			}
		}
	}

	if r.Title == "" {
		if h1 := doc.Find("h1").First(); h1.Length() > 0 {
			r.Title = cleanText(h1.Text())
		}
	}
	if r.Title == "" {
		if title := metaContent(doc, `meta[property="og:title"]`); title != "" {
			r.Title = cleanText(shutterstockTitleNoise.ReplaceAllString(title, ""))
		}
	}

	fillCommon(&r, doc)
	res, err := finish(r, pageURL)
	return res, attribution.ClassScrape, err
}
