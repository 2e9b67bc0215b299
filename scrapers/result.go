package scrapers

import (
	"github.com/PuerkitoBio/goquery"

	"imagecredit/attribution"
)

// applyJSONLD copies structured-data fields onto a result without
// overwriting anything already extracted.
func applyJSONLD(r *attribution.Result, obj imageObject) {
	if r.Creator == "" {
		r.Creator = obj.Creator
	}
	if r.CreatorURL == "" {
		r.CreatorURL = obj.CreatorURL
	}
	if r.Title == "" {
		r.Title = obj.Title
	}
	if r.Description == "" {
		r.Description = obj.Description
	}
	if r.DateCreated == "" {
		r.DateCreated = obj.Date
	}
	if len(r.Keywords) == 0 && len(obj.Keywords) > 0 {
		r.Keywords = obj.Keywords
	}
	if r.Location == "" {
		r.Location = obj.Location
	}
	if r.License == "" {
		r.License = obj.License
	}
}

// fillCommon completes a result from the generic page signals every site
// exposes (og/meta tags), then derives the © line.
func fillCommon(r *attribution.Result, doc *goquery.Document) {
	if r.Description == "" {
		r.Description = extractDescription(doc)
	}
	if len(r.Keywords) == 0 {
		if kw := extractKeywords(doc); len(kw) > 0 {
			r.Keywords = kw
		}
	}
	if r.DateCreated == "" {
		r.DateCreated = extractDate(doc)
	}
	if r.Location == "" {
		r.Location = extractLocation(doc)
	}
	if r.Copyright == "" {
		r.Copyright = buildCopyright(r.Creator, r.DateCreated)
	}
}

// finish validates that extraction produced something usable.
func finish(r attribution.Result, pageURL string) (attribution.Result, error) {
	if r.Creator == "" && r.Title == "" {
		return attribution.Result{}, &ParseError{URL: pageURL, Reason: "no attribution fields found"}
	}
	if r.Keywords == nil {
		r.Keywords = []string{}
	}
	return r, nil
}
