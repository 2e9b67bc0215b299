package scrapers

import (
	"context"
	"regexp"

	"imagecredit/attribution"
	"imagecredit/fetcher"
)

// Alamy extracts attribution from Alamy stock photo pages.
type Alamy struct {
	fetcher *fetcher.Client
}

func (a *Alamy) Source() string { return "alamy" }

var alamyCreditPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Contributor[:\s]+([^,<\n]+)`),
	regexp.MustCompile(`(?i)Photographer[:\s]+([^,<\n]+)`),
	regexp.MustCompile(`(?i)Credit[:\s]+([^,<\n]+)`),
}

func (a *Alamy) Extract(ctx context.Context, pageURL string) (attribution.Result, attribution.SourceClass, error) {
	doc, err := fetchDocument(ctx, a.fetcher, pageURL)
	if err != nil {
		return attribution.Result{}, attribution.ClassScrape, err
	}

	r := attribution.NewResult(a.Source(), pageURL)

	if obj, ok := findJSONLD(doc); ok {
		applyJSONLD(&r, obj)
	}

	if r.Creator == "" {
		if contrib := doc.Find(`a[href*="/search/contributor"], a[href*="/portfolio/"]`).First(); contrib.Length() > 0 {
			r.Creator = cleanText(contrib.Text())
		}
	}

	pageText := doc.Text()
	if r.Creator == "" {
		for _, p := range alamyCreditPatterns {
			if m := p.FindStringSubmatch(pageText); m != nil {
				if creator := cleanText(m[1]); creator != "" && len(creator) < 100 {
					r.Creator = creator
					break
				}
			}
		}
	}

	if r.Title == "" {
		r.Title = cleanText(metaContent(doc, `meta[property="og:title"]`))
	}
	if r.License == "" {
		r.License = licenseFromText(pageText)
	}

	fillCommon(&r, doc)
	res, err := finish(r, pageURL)
	return res, attribution.ClassScrape, err
}
