package scrapers

import (
	"context"
	"regexp"
	"strings"

	"imagecredit/attribution"
	"imagecredit/fetcher"
)

// Getty extracts attribution from Getty Images and iStock detail pages.
// Getty carries well-structured JSON-LD plus explicit credit lines.
type Getty struct {
	fetcher *fetcher.Client
}

func (g *Getty) Source() string { return "getty" }

var gettyCreditPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Credit[:\s]+([^,<\n]+)`),
	regexp.MustCompile(`(?i)Artist[:\s]+([^,<\n]+)`),
	regexp.MustCompile(`(?i)By[:\s]+([^,<\n]+)`),
}

func (g *Getty) Extract(ctx context.Context, pageURL string) (attribution.Result, attribution.SourceClass, error) {
	doc, err := fetchDocument(ctx, g.fetcher, pageURL)
	if err != nil {
		return attribution.Result{}, attribution.ClassScrape, err
	}

	r := attribution.NewResult(g.Source(), pageURL)

	if obj, ok := findJSONLD(doc); ok {
		applyJSONLD(&r, obj)
	}
	if r.Creator == "" {
		r.Creator = cleanText(metaContent(doc, `meta[name="artist"]`))
	}
	if r.Title == "" {
		r.Title = cleanText(metaContent(doc, `meta[property="og:title"]`))
	}

	pageText := doc.Text()
	if r.Creator == "" {
		for _, p := range gettyCreditPatterns {
			if m := p.FindStringSubmatch(pageText); m != nil {
				if creator := cleanText(m[1]); creator != "" && len(creator) < 100 {
					r.Creator = creator
					break
				}
			}
		}
	}
	if r.License == "" {
		r.License = licenseFromText(pageText)
	}

	fillCommon(&r, doc)
	res, err := finish(r, pageURL)
	return res, attribution.ClassScrape, err
}

// licenseFromText recognizes the licensing models rights-managed agencies
// advertise in page copy.
func licenseFromText(pageText string) string {
	lower := strings.ToLower(pageText)
	switch {
	case strings.Contains(lower, "rights managed") || strings.Contains(lower, "rights-managed"):
		return "Rights Managed"
	case strings.Contains(lower, "royalty free") || strings.Contains(lower, "royalty-free"):
		return "Royalty Free"
	case strings.Contains(lower, "editorial"):
		return "Editorial"
	}
	return ""
}
