package search

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"imagecredit/attribution"
	"imagecredit/fetcher"
)

// Bing reverse-searches via the visual search result page. Scrape-based, no
// credential needed.
type Bing struct {
	fetcher *fetcher.Client
}

func NewBing(f *fetcher.Client) *Bing {
	return &Bing{fetcher: f}
}

func (b *Bing) Name() string { return "bing" }

func (b *Bing) Search(ctx context.Context, ref attribution.ImageRef) ([]attribution.SearchHit, error) {
	var resp *fetcher.Response
	var err error
	switch {
	case ref.URL != "":
		searchURL := "https://www.bing.com/images/search?view=detailv2&iss=sbi&q=imgurl:" + url.QueryEscape(ref.URL)
		resp, err = b.fetcher.Fetch(ctx, searchURL)
	case len(ref.Data) > 0:
		resp, err = b.upload(ctx, ref)
	default:
		return nil, fmt.Errorf("bing: no image provided")
	}
	if err != nil {
		return nil, fmt.Errorf("bing: %w", err)
	}
	return harvestLinks(resp.Body, b.Name(), []string{"bing.com", "microsoft.com", "msn.com"})
}

func (b *Bing) upload(ctx context.Context, ref attribution.ImageRef) (*fetcher.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("imageBin", base64.StdEncoding.EncodeToString(ref.Data)); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://www.bing.com/images/search?view=detailv2&iss=sbiupload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return b.fetcher.Do(ctx, req)
}
