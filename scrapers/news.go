package scrapers

import (
	"context"
	"regexp"
	"strings"

	"imagecredit/attribution"
	"imagecredit/fetcher"
)

// News extracts photo credits from wire-service and newspaper article pages.
// Wire credits follow fixed formats: "(AP Photo/Jane Doe)", "REUTERS/John
// Smith", or a figcaption credit element on newspaper sites.
type News struct {
	fetcher *fetcher.Client
}

func (n *News) Source() string { return "news" }

var (
	apCreditPattern      = regexp.MustCompile(`\(AP Photo/([^)]+)\)`)
	reutersCreditPattern = regexp.MustCompile(`REUTERS/([A-Z][a-zA-Z.' -]+?)(?:[\n<]|$|\s{2})`)
	genericPhotoCredit   = regexp.MustCompile(`(?i)Photo(?:graph)?(?:\s+by|:)\s+([A-Z][a-zA-Z.' -]{2,60}?)(?:\s*[/|]|[\n<]|$)`)
)

func (n *News) Extract(ctx context.Context, pageURL string) (attribution.Result, attribution.SourceClass, error) {
	doc, err := fetchDocument(ctx, n.fetcher, pageURL)
	if err != nil {
		return attribution.Result{}, attribution.ClassScrape, err
	}

	r := attribution.NewResult(n.Source(), pageURL)
	r.License = "Editorial"

	if obj, ok := findJSONLD(doc); ok {
		applyJSONLD(&r, obj)
		r.License = "Editorial"
	}

	// Credit elements newspapers attach to figures, checked before the
	// free-text wire patterns so the structured markup wins.
	if r.Creator == "" {
		if credit := doc.Find(`figcaption .credit, figcaption [class*="credit"], span[class*="credit"], [itemprop="copyrightHolder"]`).First(); credit.Length() > 0 {
			r.Creator = cleanText(credit.Text())
		}
	}

	pageText := doc.Text()
	if r.Creator == "" {
		if m := apCreditPattern.FindStringSubmatch(pageText); m != nil {
			r.Creator = cleanText(m[1])
			r.Copyright = "AP Photo/" + r.Creator
		}
	}
	if r.Creator == "" {
		if m := reutersCreditPattern.FindStringSubmatch(pageText); m != nil {
			r.Creator = cleanText(m[1])
			r.Copyright = "REUTERS/" + r.Creator
		}
	}
	if r.Creator == "" {
		if m := genericPhotoCredit.FindStringSubmatch(pageText); m != nil {
			if creator := cleanText(m[1]); !looksLikeSentence(creator) {
				r.Creator = creator
			}
		}
	}

	if r.Title == "" {
		r.Title = cleanText(metaContent(doc, `meta[property="og:title"]`))
	}
	if r.Title == "" {
		if h1 := doc.Find("h1").First(); h1.Length() > 0 {
			r.Title = cleanText(h1.Text())
		}
	}

	fillCommon(&r, doc)
	res, err := finish(r, pageURL)
	return res, attribution.ClassScrape, err
}

// looksLikeSentence filters regex captures that grabbed prose rather than a
// byline, which shows up as many lowercase words.
func looksLikeSentence(s string) bool {
	words := strings.Fields(s)
	if len(words) > 5 {
		return true
	}
	lower := 0
	for _, w := range words {
		if w != "" && w[0] >= 'a' && w[0] <= 'z' {
			lower++
		}
	}
	return lower > 1
}
