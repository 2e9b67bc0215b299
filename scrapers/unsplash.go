package scrapers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"imagecredit/attribution"
	"imagecredit/fetcher"
)

// Unsplash extracts attribution from Unsplash photo pages, preferring the
// official API when an access key is configured. Every Unsplash photo is
// published under the Unsplash License.
type Unsplash struct {
	fetcher *fetcher.Client
	apiKey  string
}

func (u *Unsplash) Source() string { return "unsplash" }

func (u *Unsplash) apiConfigured() bool { return u.apiKey != "" }

var unsplashPhotoID = regexp.MustCompile(`unsplash\.com/photos/([a-zA-Z0-9_-]+)`)

func (u *Unsplash) Extract(ctx context.Context, pageURL string) (attribution.Result, attribution.SourceClass, error) {
	if u.apiKey != "" {
		if m := unsplashPhotoID.FindStringSubmatch(pageURL); m != nil {
			if r, err := u.extractAPI(ctx, m[1]); err == nil {
				return r, attribution.ClassAPI, nil
			}
		}
	}
	r, err := u.extractPage(ctx, pageURL)
	return r, attribution.ClassScrape, err
}

type unsplashPhoto struct {
	Description    string `json:"description"`
	AltDescription string `json:"alt_description"`
	CreatedAt      string `json:"created_at"`
	Links          struct {
		HTML string `json:"html"`
	} `json:"links"`
	User struct {
		Name  string `json:"name"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"user"`
}

func (u *Unsplash) extractAPI(ctx context.Context, photoID string) (attribution.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://api.unsplash.com/photos/"+photoID, nil)
	if err != nil {
		return attribution.Result{}, err
	}
	req.Header.Set("Authorization", "Client-ID "+u.apiKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := u.fetcher.Do(ctx, req)
	if err != nil {
		return attribution.Result{}, err
	}

	var photo unsplashPhoto
	if err := json.Unmarshal(resp.Body, &photo); err != nil {
		return attribution.Result{}, fmt.Errorf("decoding unsplash response: %w", err)
	}
	if photo.User.Name == "" {
		return attribution.Result{}, &ParseError{URL: photo.Links.HTML, Reason: "api response without user"}
	}

	sourceURL := photo.Links.HTML
	if sourceURL == "" {
		sourceURL = "https://unsplash.com/photos/" + photoID
	}
	r := attribution.NewResult(u.Source(), sourceURL)
	r.Creator = photo.User.Name
	r.CreatorURL = photo.User.Links.HTML
	r.Title = photo.Description
	if r.Title == "" {
		r.Title = photo.AltDescription
	}
	if len(photo.CreatedAt) >= 10 {
		r.DateCreated = photo.CreatedAt[:10]
	}
	r.License = "Unsplash License"
	r.Copyright = buildCopyright(r.Creator, r.DateCreated)
	return r, nil
}

var unsplashByLine = regexp.MustCompile(`Photo by ([^|]+?)(?: on Unsplash)?$`)

func (u *Unsplash) extractPage(ctx context.Context, pageURL string) (attribution.Result, error) {
	doc, err := fetchDocument(ctx, u.fetcher, pageURL)
	if err != nil {
		return attribution.Result{}, err
	}

	r := attribution.NewResult(u.Source(), pageURL)
	r.License = "Unsplash License"

	if obj, ok := findJSONLD(doc); ok {
		applyJSONLD(&r, obj)
		r.License = "Unsplash License"
	}

	if r.Creator == "" {
		if creator := metaContent(doc, `meta[name="twitter:creator"]`); creator != "" {
			r.Creator = cleanText(strings.TrimPrefix(creator, "@"))
		}
	}

	// og:title carries "Photo by X on Unsplash" when nothing better exists.
	if r.Creator == "" || r.Title == "" {
		if title := metaContent(doc, `meta[property="og:title"]`); title != "" {
			if m := unsplashByLine.FindStringSubmatch(title); m != nil {
				if r.Creator == "" {
					r.Creator = cleanText(m[1])
				}
			} else if r.Title == "" {
				r.Title = cleanText(title)
			}
		}
	}

	fillCommon(&r, doc)
	return finish(r, pageURL)
}
