package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"imagecredit/attribution"
	"imagecredit/fetcher"
)

// Google reverse-searches through Google Lens. With a SerpAPI key it uses
// the structured google_lens endpoint; without one it falls back to scraping
// the Lens upload-by-URL page. Neither path supports raw bytes: Lens needs a
// publicly reachable URL.
type Google struct {
	fetcher *fetcher.Client
	apiKey  string
}

func NewGoogle(f *fetcher.Client, serpAPIKey string) *Google {
	return &Google{fetcher: f, apiKey: serpAPIKey}
}

func (g *Google) Name() string { return "google" }

func (g *Google) Search(ctx context.Context, ref attribution.ImageRef) ([]attribution.SearchHit, error) {
	if ref.URL == "" {
		return nil, fmt.Errorf("google: lens requires an image URL")
	}
	if g.apiKey != "" {
		return g.searchSerpAPI(ctx, ref.URL)
	}
	return g.searchLensPage(ctx, ref.URL)
}

type serpAPIResponse struct {
	VisualMatches []struct {
		Link  string `json:"link"`
		Title string `json:"title"`
	} `json:"visual_matches"`
	KnowledgeGraph struct {
		Source struct {
			Link string `json:"link"`
			Name string `json:"name"`
		} `json:"source"`
	} `json:"knowledge_graph"`
}

func (g *Google) searchSerpAPI(ctx context.Context, imageURL string) ([]attribution.SearchHit, error) {
	params := url.Values{}
	params.Set("engine", "google_lens")
	params.Set("url", imageURL)
	params.Set("api_key", g.apiKey)

	resp, err := g.fetcher.Fetch(ctx, "https://serpapi.com/search?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("google: serpapi: %w", err)
	}

	var parsed serpAPIResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, fmt.Errorf("google: decoding serpapi response: %w", err)
	}

	var hits []attribution.SearchHit
	// A knowledge-graph source is Google's best guess at the origin page;
	// it goes first.
	if kg := parsed.KnowledgeGraph.Source; kg.Link != "" {
		hits = append(hits, attribution.SearchHit{URL: kg.Link, Engine: g.Name(), Title: kg.Name})
	}
	for _, m := range parsed.VisualMatches {
		if m.Link == "" {
			continue
		}
		hits = append(hits, attribution.SearchHit{URL: m.Link, Engine: g.Name(), Title: m.Title})
		if len(hits) >= perEngineLimit {
			break
		}
	}
	return hits, nil
}

func (g *Google) searchLensPage(ctx context.Context, imageURL string) ([]attribution.SearchHit, error) {
	searchURL := "https://lens.google.com/uploadbyurl?url=" + url.QueryEscape(imageURL)
	resp, err := g.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("google: %w", err)
	}
	return harvestLinks(resp.Body, g.Name(), []string{"google.com", "google.co", "gstatic.com", "googleapis.com"})
}
