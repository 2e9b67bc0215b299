package scrapers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"

	"imagecredit/attribution"
	"imagecredit/fetcher"
)

// flickrLicenses maps Flickr license codes to their names.
var flickrLicenses = map[string]string{
	"0":  "All Rights Reserved",
	"1":  "CC BY-NC-SA 2.0",
	"2":  "CC BY-NC 2.0",
	"3":  "CC BY-NC-ND 2.0",
	"4":  "CC BY 2.0",
	"5":  "CC BY-SA 2.0",
	"6":  "CC BY-ND 2.0",
	"7":  "No known copyright restrictions",
	"8":  "United States Government Work",
	"9":  "CC0 1.0",
	"10": "Public Domain Mark 1.0",
}

// Flickr extracts attribution from Flickr photo pages, preferring the
// photos.getInfo API when a key is configured.
type Flickr struct {
	fetcher *fetcher.Client
	apiKey  string
}

func (fl *Flickr) Source() string { return "flickr" }

func (fl *Flickr) apiConfigured() bool { return fl.apiKey != "" }

var flickrPhotoID = regexp.MustCompile(`flickr\.com/photos/[^/]+/(\d+)`)

func (fl *Flickr) Extract(ctx context.Context, pageURL string) (attribution.Result, attribution.SourceClass, error) {
	if fl.apiKey != "" {
		if m := flickrPhotoID.FindStringSubmatch(pageURL); m != nil {
			if r, err := fl.extractAPI(ctx, m[1], pageURL); err == nil {
				return r, attribution.ClassAPI, nil
			}
		}
	}
	r, err := fl.extractPage(ctx, pageURL)
	return r, attribution.ClassScrape, err
}

type flickrInfo struct {
	Stat  string `json:"stat"`
	Photo struct {
		License string `json:"license"`
		Owner   struct {
			Username string `json:"username"`
			Realname string `json:"realname"`
			NSID     string `json:"nsid"`
		} `json:"owner"`
		Title struct {
			Content string `json:"_content"`
		} `json:"title"`
		Description struct {
			Content string `json:"_content"`
		} `json:"description"`
		Dates struct {
			Taken string `json:"taken"`
		} `json:"dates"`
	} `json:"photo"`
}

func (fl *Flickr) extractAPI(ctx context.Context, photoID, pageURL string) (attribution.Result, error) {
	params := url.Values{}
	params.Set("method", "flickr.photos.getInfo")
	params.Set("api_key", fl.apiKey)
	params.Set("photo_id", photoID)
	params.Set("format", "json")
	params.Set("nojsoncallback", "1")

	resp, err := fl.fetcher.Fetch(ctx, "https://api.flickr.com/services/rest/?"+params.Encode())
	if err != nil {
		return attribution.Result{}, err
	}

	var info flickrInfo
	if err := json.Unmarshal(resp.Body, &info); err != nil {
		return attribution.Result{}, fmt.Errorf("decoding flickr response: %w", err)
	}
	if info.Stat != "ok" {
		return attribution.Result{}, &ParseError{URL: pageURL, Reason: "flickr api stat " + info.Stat}
	}

	r := attribution.NewResult(fl.Source(), pageURL)
	r.Creator = info.Photo.Owner.Realname
	if r.Creator == "" {
		r.Creator = info.Photo.Owner.Username
	}
	if info.Photo.Owner.NSID != "" {
		r.CreatorURL = "https://www.flickr.com/photos/" + info.Photo.Owner.NSID
	}
	r.Title = info.Photo.Title.Content
	r.Description = info.Photo.Description.Content
	if len(info.Photo.Dates.Taken) >= 10 {
		r.DateCreated = info.Photo.Dates.Taken[:10]
	}
	if name, ok := flickrLicenses[info.Photo.License]; ok {
		r.License = name
	}
	r.Copyright = buildCopyright(r.Creator, r.DateCreated)
	return finish(r, pageURL)
}

func (fl *Flickr) extractPage(ctx context.Context, pageURL string) (attribution.Result, error) {
	doc, err := fetchDocument(ctx, fl.fetcher, pageURL)
	if err != nil {
		return attribution.Result{}, err
	}

	r := attribution.NewResult(fl.Source(), pageURL)

	if owner := doc.Find(`a.owner-name, a.attribution, a.photo-owner`).First(); owner.Length() > 0 {
		r.Creator = cleanText(owner.Text())
		if href, ok := owner.Attr("href"); ok && href != "" {
			if href[0] == '/' {
				href = "https://www.flickr.com" + href
			}
			r.CreatorURL = href
		}
	}
	if r.Creator == "" {
		r.Creator = cleanText(metaContent(doc, `meta[name="twitter:creator"]`))
	}

	if title := doc.Find("h1.photo-title").First(); title.Length() > 0 {
		r.Title = cleanText(title.Text())
	}
	if r.Title == "" {
		r.Title = cleanText(metaContent(doc, `meta[property="og:title"]`))
	}

	if cc := doc.Find(`a[href*="creativecommons.org"]`).First(); cc.Length() > 0 {
		r.License = cleanText(cc.Text())
		if r.License == "" {
			r.License = "Creative Commons"
		}
	}

	fillCommon(&r, doc)
	return finish(r, pageURL)
}
