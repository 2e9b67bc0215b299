package scrapers

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"imagecredit/fetcher"
)

// fetchDocument retrieves a page and parses it, rejecting bot-challenge
// pages and non-HTML bodies before the adapter wastes time on them.
func fetchDocument(ctx context.Context, f *fetcher.Client, pageURL string) (*goquery.Document, error) {
	resp, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	head := resp.Body
	if len(head) > 1000 {
		head = head[:1000]
	}
	if bytes.Contains(head, []byte("Just a moment")) || bytes.Contains(head, []byte("_cf_chl_opt")) {
		return nil, &ParseError{URL: pageURL, Reason: "bot challenge page"}
	}
	if trimmed := bytes.TrimSpace(resp.Body); len(trimmed) == 0 || trimmed[0] != '<' {
		return nil, &ParseError{URL: pageURL, Reason: "response is not HTML"}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &ParseError{URL: pageURL, Reason: err.Error()}
	}
	return doc, nil
}

// creditPrefixes are stripped from extracted attribution text.
var creditPrefixes = []string{
	"Photo by ",
	"By ",
	"Credit: ",
	"Image by ",
	"Photographer: ",
	"Photography by ",
	"© ",
	"Copyright ",
}

// cleanText collapses whitespace and strips common credit prefixes.
func cleanText(text string) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	for _, prefix := range creditPrefixes {
		cleaned = strings.TrimPrefix(cleaned, prefix)
	}
	return strings.TrimSpace(cleaned)
}

// metaContent returns the content attribute of the first matching meta tag.
func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

const maxKeywords = 20

func extractKeywords(doc *goquery.Document) []string {
	var keywords []string
	seen := make(map[string]bool)
	add := func(k string) {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] || len(keywords) >= maxKeywords {
			return
		}
		seen[k] = true
		keywords = append(keywords, k)
	}

	for _, k := range strings.Split(metaContent(doc, `meta[name="keywords"]`), ",") {
		add(k)
	}
	doc.Find(`meta[property="article:tag"]`).Each(func(_ int, sel *goquery.Selection) {
		if v, ok := sel.Attr("content"); ok {
			add(v)
		}
	})
	return keywords
}

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

func extractDate(doc *goquery.Document) string {
	candidates := []string{
		metaContent(doc,
			`meta[property="article:published_time"]`,
			`meta[property="og:published_time"]`,
			`meta[name="date"]`,
			`meta[name="DC.date"]`),
	}
	if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		candidates = append(candidates, dt)
	}
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if isoDate.MatchString(c) {
			return c[:10]
		}
	}
	return ""
}

func extractDescription(doc *goquery.Document) string {
	desc := metaContent(doc, `meta[property="og:description"]`, `meta[name="description"]`)
	if len(desc) <= 10 {
		return ""
	}
	if len(desc) > 500 {
		desc = desc[:500]
	}
	return desc
}

func extractLocation(doc *goquery.Document) string {
	if obj, ok := findJSONLD(doc); ok && obj.Location != "" {
		return obj.Location
	}
	return metaContent(doc,
		`meta[name="geo.placename"]`,
		`meta[name="geo.region"]`,
		`meta[name="ICBM"]`)
}

// buildCopyright composes a © line from the creator and, when known, the
// year the photo was taken.
func buildCopyright(creator, dateCreated string) string {
	if creator == "" {
		return ""
	}
	if len(dateCreated) >= 4 {
		return "© " + dateCreated[:4] + " " + creator
	}
	return "© " + creator
}
