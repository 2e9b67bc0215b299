package search

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"imagecredit/attribution"
)

// engineTimeout boxes each engine call so one slow provider cannot eat the
// whole request budget.
const engineTimeout = 20 * time.Second

// Gateway queries the configured engines concurrently and unions their
// candidates. A failing or blocked engine is logged and excluded from
// EnginesUsed; it never aborts the others.
type Gateway struct {
	engines []Engine
	logger  *zap.Logger
}

func NewGateway(logger *zap.Logger, engines ...Engine) *Gateway {
	return &Gateway{engines: engines, logger: logger}
}

// EngineNames lists the configured engines.
func (g *Gateway) EngineNames() []string {
	names := make([]string, len(g.engines))
	for i, e := range g.engines {
		names[i] = e.Name()
	}
	return names
}

type engineResult struct {
	name string
	hits []attribution.SearchHit
	err  error
}

// Search runs every requested engine. An empty request means all configured
// engines. Candidates are deduplicated by URL across engines, keeping the
// first engine's tag.
func (g *Gateway) Search(ctx context.Context, ref attribution.ImageRef, requested []string) attribution.SearchHits {
	selected := g.selectEngines(requested)

	results := make([]engineResult, len(selected))
	var wg sync.WaitGroup
	for i, eng := range selected {
		wg.Add(1)
		go func(i int, eng Engine) {
			defer wg.Done()
			engCtx, cancel := context.WithTimeout(ctx, engineTimeout)
			defer cancel()
			hits, err := eng.Search(engCtx, ref)
			results[i] = engineResult{name: eng.Name(), hits: hits, err: err}
		}(i, eng)
	}
	wg.Wait()

	var out attribution.SearchHits
	seen := make(map[string]bool)
	for _, r := range results {
		if r.err != nil {
			g.logger.Warn("search engine failed",
				zap.String("engine", r.name),
				zap.Error(r.err))
			out.Errors = append(out.Errors, r.name+": "+r.err.Error())
			continue
		}
		if len(r.hits) == 0 {
			continue
		}
		out.EnginesUsed = append(out.EnginesUsed, r.name)
		for _, h := range r.hits {
			if seen[h.URL] {
				continue
			}
			seen[h.URL] = true
			out.Hits = append(out.Hits, h)
		}
	}
	sort.Strings(out.EnginesUsed)
	return out
}

func (g *Gateway) selectEngines(requested []string) []Engine {
	if len(requested) == 0 {
		return g.engines
	}
	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		want[name] = true
	}
	var selected []Engine
	for _, e := range g.engines {
		if want[e.Name()] {
			selected = append(selected, e)
		}
	}
	return selected
}
