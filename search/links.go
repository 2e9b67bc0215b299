package search

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"imagecredit/attribution"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// harvestLinks collects external candidate links from an engine's result
// page: anything http(s) that is not the engine's own property and not a
// bare image file.
func harvestLinks(html []byte, engine string, selfDomains []string) ([]attribution.SearchHit, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing %s results: %w", engine, err)
	}

	var hits []attribution.SearchHit
	seen := make(map[string]bool)
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if !strings.HasPrefix(href, "http") {
			return true
		}
		lower := strings.ToLower(href)
		for _, d := range selfDomains {
			if strings.Contains(lower, d) {
				return true
			}
		}
		for _, ext := range imageExtensions {
			if strings.HasSuffix(lower, ext) {
				return true
			}
		}
		if seen[href] {
			return true
		}
		seen[href] = true
		hits = append(hits, attribution.SearchHit{
			URL:    href,
			Engine: engine,
			Title:  strings.TrimSpace(sel.Text()),
		})
		return len(hits) < perEngineLimit
	})
	return hits, nil
}
