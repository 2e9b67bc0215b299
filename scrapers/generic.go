package scrapers

import (
	"context"

	"imagecredit/attribution"
	"imagecredit/fetcher"
)

// Generic is the fallback adapter for pages with no dedicated extractor:
// custom registry sources and unclassified candidates. It relies on
// schema.org markup and standard meta tags only. Extraction is a page
// scrape; whether the candidate counts as unclassified is the caller's
// call, not this adapter's.
type Generic struct {
	fetcher *fetcher.Client
	source  string
}

func (g *Generic) Source() string { return g.source }

func (g *Generic) Extract(ctx context.Context, pageURL string) (attribution.Result, attribution.SourceClass, error) {
	doc, err := fetchDocument(ctx, g.fetcher, pageURL)
	if err != nil {
		return attribution.Result{}, attribution.ClassScrape, err
	}

	r := attribution.NewResult(g.source, pageURL)

	if obj, ok := findJSONLD(doc); ok {
		applyJSONLD(&r, obj)
	}
	if r.Creator == "" {
		r.Creator = cleanText(metaContent(doc,
			`meta[name="author"]`,
			`meta[name="DC.creator"]`,
			`meta[property="article:author"]`))
	}
	if r.Creator == "" {
		if creator := metaContent(doc, `meta[name="twitter:creator"]`); creator != "" && creator[0] != '@' {
			r.Creator = cleanText(creator)
		}
	}
	if r.Title == "" {
		r.Title = cleanText(metaContent(doc, `meta[property="og:title"]`))
	}
	if r.Title == "" {
		if t := doc.Find("title").First(); t.Length() > 0 {
			r.Title = cleanText(t.Text())
		}
	}
	if r.License == "" {
		if cc := doc.Find(`a[href*="creativecommons.org"]`).First(); cc.Length() > 0 {
			r.License = cleanText(cc.Text())
			if r.License == "" {
				r.License = "Creative Commons"
			}
		}
	}

	fillCommon(&r, doc)
	res, err := finish(r, pageURL)
	return res, attribution.ClassScrape, err
}
