package search

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"imagecredit/attribution"
	"imagecredit/fetcher"
)

// Yandex reverse-searches via the public images endpoint. Scrape-based, no
// credential needed.
type Yandex struct {
	fetcher *fetcher.Client
}

func NewYandex(f *fetcher.Client) *Yandex {
	return &Yandex{fetcher: f}
}

func (y *Yandex) Name() string { return "yandex" }

func (y *Yandex) Search(ctx context.Context, ref attribution.ImageRef) ([]attribution.SearchHit, error) {
	var resp *fetcher.Response
	var err error
	switch {
	case ref.URL != "":
		searchURL := "https://yandex.com/images/search?rpt=imageview&url=" + url.QueryEscape(ref.URL)
		resp, err = y.fetcher.Fetch(ctx, searchURL)
	case len(ref.Data) > 0:
		resp, err = y.upload(ctx, ref)
	default:
		return nil, fmt.Errorf("yandex: no image provided")
	}
	if err != nil {
		return nil, fmt.Errorf("yandex: %w", err)
	}
	return harvestLinks(resp.Body, y.Name(), []string{"yandex."})
}

func (y *Yandex) upload(ctx context.Context, ref attribution.ImageRef) (*fetcher.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("upfile", "image")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(ref.Data); err != nil {
		return nil, err
	}
	if err := mw.WriteField("rpt", "imageview"); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://yandex.com/images/search", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return y.fetcher.Do(ctx, req)
}
