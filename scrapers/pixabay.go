package scrapers

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"imagecredit/attribution"
	"imagecredit/fetcher"
)

// Pixabay extracts attribution from Pixabay image pages. All Pixabay content
// ships under the Pixabay License.
type Pixabay struct {
	fetcher *fetcher.Client
}

func (p *Pixabay) Source() string { return "pixabay" }

var (
	pixabayTitleNoise = regexp.MustCompile(`(?i)\s*-\s*Free.*on Pixabay\s*$`)
	pixabaySlug       = regexp.MustCompile(`pixabay\.com/(?:[a-z]{2}/)?(?:photos|illustrations|vectors)/([a-z0-9-]+)-\d+`)
)

func (p *Pixabay) Extract(ctx context.Context, pageURL string) (attribution.Result, attribution.SourceClass, error) {
	doc, err := fetchDocument(ctx, p.fetcher, pageURL)
	if err != nil {
		return attribution.Result{}, attribution.ClassScrape, err
	}

	r := attribution.NewResult(p.Source(), pageURL)
	r.License = "Pixabay License"

	if obj, ok := findJSONLD(doc); ok {
		applyJSONLD(&r, obj)
		r.License = "Pixabay License"
	}

	if r.Creator == "" {
		if user := doc.Find(`a[href*="/users/"]`).First(); user.Length() > 0 {
			r.Creator = cleanText(user.Text())
			if href, ok := user.Attr("href"); ok {
				if u, err := url.Parse(pageURL); err == nil {
					if abs, err := u.Parse(href); err == nil {
						r.CreatorURL = abs.String()
					}
				}
			}
		}
	}

	if r.Title == "" {
		if title := metaContent(doc, `meta[property="og:title"]`); title != "" {
			r.Title = cleanText(pixabayTitleNoise.ReplaceAllString(title, ""))
		}
	}
	if r.Title == "" {
		r.Title = pixabayTitleFromURL(pageURL)
	}

	fillCommon(&r, doc)
	res, err := finish(r, pageURL)
	return res, attribution.ClassScrape, err
}

// pixabayTitleFromURL recovers a human title from the URL slug, e.g.
// /photos/mountain-lake-sunset-123456/ becomes "Mountain Lake Sunset".
func pixabayTitleFromURL(rawURL string) string {
	m := pixabaySlug.FindStringSubmatch(strings.ToLower(rawURL))
	if m == nil {
		return ""
	}
	words := strings.Split(m[1], "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
