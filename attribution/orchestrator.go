// Package attribution resolves who created an image. It owns the shared data
// model, the confidence policy and the pipeline that ties the metadata probe,
// reverse search, classification and per-source extraction together.
package attribution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrInvalidInput marks request validation failures. Transport maps it to a
// client error; everything else in the pipeline degrades to a found=false
// response instead.
var ErrInvalidInput = errors.New("invalid input")

const (
	// DefaultMaxResults caps the ranked result list when the request does
	// not ask for a size.
	DefaultMaxResults = 10
	// DefaultTimeoutSeconds bounds one image's whole pipeline.
	DefaultTimeoutSeconds = 30
	// MaxBatchSize is the per-request image cap in batch mode.
	MaxBatchSize = 50

	maxImageBytes     = 10 << 20
	scrapeLimit       = 8
	scrapeConcurrency = 4
	batchConcurrency  = 3
)

// Prober extracts attribution from metadata embedded in the image bytes.
type Prober interface {
	Probe(data []byte) (Result, bool)
}

// ProbeFunc adapts a plain probe function to the Prober interface.
type ProbeFunc func(data []byte) (Result, bool)

func (f ProbeFunc) Probe(data []byte) (Result, bool) { return f(data) }

// ImageFetcher retrieves image bytes for URL-mode requests.
type ImageFetcher interface {
	FetchImage(ctx context.Context, rawURL string) ([]byte, string, error)
}

// SearchGateway fans one image out to the configured reverse-search engines.
type SearchGateway interface {
	Search(ctx context.Context, ref ImageRef, engines []string) SearchHits
	EngineNames() []string
}

// Classifier maps candidate page URLs onto the source registry and knows the
// CDN URL shapes well enough to rewrite and deduplicate them.
type Classifier interface {
	Classify(rawURL string) (Source, bool)
	PageURL(rawURL string) string
	PhotoID(rawURL string) string
}

// Scraper extracts attribution from one source's pages. The returned class
// reports whether the answer came from the source's API or a page scrape.
type Scraper interface {
	Source() string
	Extract(ctx context.Context, pageURL string) (Result, SourceClass, error)
}

// ScraperRegistry resolves source keys to adapters.
type ScraperRegistry interface {
	For(key string) Scraper
	Generic() Scraper
}

// Orchestrator drives one image through metadata check, search fan-out,
// classification, extraction and scoring.
type Orchestrator struct {
	prober   Prober
	images   ImageFetcher
	gateway  SearchGateway
	classes  Classifier
	scrapers ScraperRegistry
	logger   *zap.Logger
}

func NewOrchestrator(prober Prober, images ImageFetcher, gateway SearchGateway, classes Classifier, scrapers ScraperRegistry, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		prober:   prober,
		images:   images,
		gateway:  gateway,
		classes:  classes,
		scrapers: scrapers,
		logger:   logger,
	}
}

// Resolve runs the full pipeline for one image. The returned error is
// non-nil only for invalid input; pipeline failures come back as a
// found=false response.
func (o *Orchestrator) Resolve(ctx context.Context, req Request) (Response, error) {
	if err := o.validate(&req); err != nil {
		return Response{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(req.Timeout)*time.Second)
	defer cancel()
	return o.resolve(ctx, req), nil
}

// ResolveBatch resolves up to MaxBatchSize images, at most batchConcurrency
// at a time. Every request is validated before any work starts; a request
// that fails validation gets a per-image error response. Responses keep the
// input order.
func (o *Orchestrator) ResolveBatch(ctx context.Context, reqs []Request) ([]Response, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrInvalidInput)
	}
	if len(reqs) > MaxBatchSize {
		return nil, fmt.Errorf("%w: batch of %d images exceeds the limit of %d", ErrInvalidInput, len(reqs), MaxBatchSize)
	}

	out := make([]Response, len(reqs))
	valid := make([]bool, len(reqs))
	for i := range reqs {
		if err := o.validate(&reqs[i]); err != nil {
			out[i] = emptyResponse(reqs[i].ImageURL)
			out[i].Error = err.Error()
			continue
		}
		valid[i] = true
	}

	var g errgroup.Group
	g.SetLimit(batchConcurrency)
	for i := range reqs {
		if !valid[i] {
			continue
		}
		i := i
		g.Go(func() error {
			rctx, cancel := context.WithTimeout(ctx, time.Duration(reqs[i].Timeout)*time.Second)
			defer cancel()
			out[i] = o.resolve(rctx, reqs[i])
			return nil
		})
	}
	g.Wait()
	return out, nil
}

// Attribute resolves attribution for a known source page URL directly,
// skipping the metadata probe and search fan-out.
func (o *Orchestrator) Attribute(ctx context.Context, pageURL string) (Response, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Response{}, fmt.Errorf("%w: url must be an absolute http(s) URL", ErrInvalidInput)
	}
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeoutSeconds*time.Second)
	defer cancel()

	resp := emptyResponse(pageURL)
	page := o.classes.PageURL(pageURL)
	task := scrapeTask{url: page}
	if src, ok := o.classes.Classify(page); ok {
		task.source = src
		task.classified = true
	}
	resp.MatchedURLs = []string{page}
	resp.Results = Aggregate(o.scrapeCandidates(ctx, []scrapeTask{task}), DefaultMaxResults)
	resp.Found = len(resp.Results) > 0
	return resp, nil
}

func (o *Orchestrator) validate(req *Request) error {
	hasURL := req.ImageURL != ""
	hasData := len(req.ImageData) > 0
	if hasURL == hasData {
		return fmt.Errorf("%w: provide exactly one of image_url or image data", ErrInvalidInput)
	}
	if hasURL {
		u, err := url.Parse(req.ImageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: image_url must be an absolute http(s) URL", ErrInvalidInput)
		}
	}
	if hasData {
		if len(req.ImageData) > maxImageBytes {
			return fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidInput, maxImageBytes)
		}
		if _, _, err := image.DecodeConfig(bytes.NewReader(req.ImageData)); err != nil {
			return fmt.Errorf("%w: unsupported or corrupt image data", ErrInvalidInput)
		}
	}
	if req.MaxResults < 0 {
		return fmt.Errorf("%w: max_results must be positive", ErrInvalidInput)
	}
	if req.MaxResults == 0 {
		req.MaxResults = DefaultMaxResults
	}
	if req.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidInput)
	}
	if req.Timeout == 0 {
		req.Timeout = DefaultTimeoutSeconds
	}
	if len(req.Engines) > 0 {
		supported := make(map[string]bool)
		for _, name := range o.gateway.EngineNames() {
			supported[name] = true
		}
		for _, name := range req.Engines {
			if !supported[name] {
				return fmt.Errorf("%w: unknown search engine %q", ErrInvalidInput, name)
			}
		}
	}
	return nil
}

func (o *Orchestrator) resolve(ctx context.Context, req Request) Response {
	resp := emptyResponse(req.ImageURL)

	var candidates []Candidate

	// Metadata first: embedded attribution with a creator short-circuits
	// the whole search pipeline.
	data := req.ImageData
	if data == nil {
		fetched, _, err := o.images.FetchImage(ctx, req.ImageURL)
		if err != nil {
			o.logger.Debug("image fetch for metadata probe failed",
				zap.String("url", req.ImageURL), zap.Error(err))
		} else {
			data = fetched
		}
	}
	if data != nil {
		if r, ok := o.prober.Probe(data); ok {
			if r.Creator != "" {
				resp.Results = Aggregate([]Candidate{{Result: r, Class: ClassEmbedded}}, req.MaxResults)
				resp.Found = true
				return resp
			}
			candidates = append(candidates, Candidate{Result: r, Class: ClassEmbedded})
		}
	}

	hits := o.gateway.Search(ctx, ImageRef{URL: req.ImageURL, Data: req.ImageData}, req.Engines)
	if hits.EnginesUsed != nil {
		resp.SearchEnginesUsed = hits.EnginesUsed
	}
	resp.TotalMatchesFound = len(hits.Hits)
	resp.MatchedURLs = o.candidateURLs(hits.Hits)

	tasks := o.classifyCandidates(resp.MatchedURLs)
	candidates = append(candidates, o.scrapeCandidates(ctx, tasks)...)

	resp.Results = Aggregate(candidates, req.MaxResults)
	resp.Found = len(resp.Results) > 0
	return resp
}

// candidateURLs rewrites CDN image URLs to their photo pages and drops URLs
// pointing at a photo already seen under another shape.
func (o *Orchestrator) candidateURLs(hits []SearchHit) []string {
	seenURL := make(map[string]bool)
	seenPhoto := make(map[string]bool)
	urls := make([]string, 0, len(hits))
	for _, h := range hits {
		u := o.classes.PageURL(h.URL)
		if seenURL[u] {
			continue
		}
		seenURL[u] = true
		if id := o.classes.PhotoID(u); id != "" {
			if seenPhoto[id] {
				continue
			}
			seenPhoto[id] = true
		}
		urls = append(urls, u)
	}
	return urls
}

type scrapeTask struct {
	url        string
	source     Source
	classified bool
}

// classifyCandidates keeps classified URLs ordered by registry priority and
// capped at scrapeLimit. Unclassified URLs are dropped unless nothing
// classified, in which case the first one survives as a low-confidence
// fallback.
func (o *Orchestrator) classifyCandidates(urls []string) []scrapeTask {
	var tasks []scrapeTask
	var fallback string
	for _, u := range urls {
		if src, ok := o.classes.Classify(u); ok {
			tasks = append(tasks, scrapeTask{url: u, source: src, classified: true})
		} else if fallback == "" {
			fallback = u
		}
	}
	if len(tasks) == 0 {
		if fallback == "" {
			return nil
		}
		return []scrapeTask{{url: fallback}}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].source.Priority < tasks[j].source.Priority
	})
	if len(tasks) > scrapeLimit {
		tasks = tasks[:scrapeLimit]
	}
	return tasks
}

func (o *Orchestrator) scrapeCandidates(ctx context.Context, tasks []scrapeTask) []Candidate {
	var (
		mu         sync.Mutex
		candidates []Candidate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scrapeConcurrency)
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			scraper := o.scrapers.Generic()
			if t.classified {
				scraper = o.scrapers.For(t.source.Key)
			}
			r, class, err := scraper.Extract(gctx, t.url)
			if err != nil {
				o.logger.Debug("extraction failed",
					zap.String("source", scraper.Source()),
					zap.String("url", t.url),
					zap.Error(err))
				return nil
			}
			if !t.classified {
				class = ClassUnclassified
			}
			mu.Lock()
			candidates = append(candidates, Candidate{
				Result:         r,
				Class:          class,
				Priority:       t.source.Priority,
				ExpectedFields: t.source.ExpectedFields,
			})
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return candidates
}

func emptyResponse(imageURL string) Response {
	return Response{
		ImageURL:          imageURL,
		Results:           []Result{},
		MatchedURLs:       []string{},
		SearchEnginesUsed: []string{},
	}
}
