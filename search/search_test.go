package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"imagecredit/attribution"
)

type fakeEngine struct {
	name string
	hits []attribution.SearchHit
	err  error
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Search(ctx context.Context, ref attribution.ImageRef) ([]attribution.SearchHit, error) {
	return f.hits, f.err
}

func hit(engine, url string) attribution.SearchHit {
	return attribution.SearchHit{URL: url, Engine: engine}
}

func TestGatewayToleratesEngineFailure(t *testing.T) {
	gw := NewGateway(zap.NewNop(),
		&fakeEngine{name: "good", hits: []attribution.SearchHit{hit("good", "https://a.example/1")}},
		&fakeEngine{name: "broken", err: errors.New("bot challenge")},
	)

	out := gw.Search(context.Background(), attribution.ImageRef{URL: "https://img.example/x.jpg"}, nil)
	if len(out.Hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(out.Hits))
	}
	if len(out.EnginesUsed) != 1 || out.EnginesUsed[0] != "good" {
		t.Errorf("expected engines_used [good], got %v", out.EnginesUsed)
	}
	if len(out.Errors) != 1 {
		t.Errorf("expected 1 recorded error, got %v", out.Errors)
	}
}

func TestGatewayDedupsAcrossEngines(t *testing.T) {
	shared := "https://a.example/photo"
	gw := NewGateway(zap.NewNop(),
		&fakeEngine{name: "one", hits: []attribution.SearchHit{hit("one", shared), hit("one", "https://b.example/2")}},
		&fakeEngine{name: "two", hits: []attribution.SearchHit{hit("two", shared)}},
	)

	out := gw.Search(context.Background(), attribution.ImageRef{URL: "https://img.example/x.jpg"}, nil)
	if len(out.Hits) != 2 {
		t.Fatalf("expected 2 hits after dedup, got %d", len(out.Hits))
	}
	count := 0
	for _, h := range out.Hits {
		if h.URL == shared {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected shared URL once, got %d", count)
	}
}

func TestGatewaySelectEngines(t *testing.T) {
	gw := NewGateway(zap.NewNop(),
		&fakeEngine{name: "google", hits: []attribution.SearchHit{hit("google", "https://a.example/1")}},
		&fakeEngine{name: "yandex", hits: []attribution.SearchHit{hit("yandex", "https://b.example/2")}},
	)

	testCases := []struct {
		name      string
		requested []string
		wantHits  int
	}{
		{"all by default", nil, 2},
		{"subset", []string{"yandex"}, 1},
		{"unknown name matches nothing", []string{"altavista"}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := gw.Search(context.Background(), attribution.ImageRef{URL: "https://img.example/x.jpg"}, tc.requested)
			if len(out.Hits) != tc.wantHits {
				t.Errorf("expected %d hits, got %d", tc.wantHits, len(out.Hits))
			}
		})
	}
}

func TestGatewayEmptyEngineNotListedAsUsed(t *testing.T) {
	gw := NewGateway(zap.NewNop(),
		&fakeEngine{name: "empty"},
		&fakeEngine{name: "good", hits: []attribution.SearchHit{hit("good", "https://a.example/1")}},
	)
	out := gw.Search(context.Background(), attribution.ImageRef{URL: "https://img.example/x.jpg"}, nil)
	if len(out.EnginesUsed) != 1 || out.EnginesUsed[0] != "good" {
		t.Errorf("expected engines_used [good], got %v", out.EnginesUsed)
	}
}

func TestHarvestLinks(t *testing.T) {
	html := []byte(`<html><body>
		<a href="https://stocksite.example/photo/1">A landscape</a>
		<a href="https://yandex.com/internal">internal</a>
		<a href="https://cdn.example/pic.jpg">raw image</a>
		<a href="/relative">relative</a>
		<a href="https://stocksite.example/photo/1">duplicate</a>
		<a href="https://news.example/story">story</a>
	</body></html>`)

	hits, err := harvestLinks(html, "yandex", []string{"yandex."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d: %v", len(hits), hits)
	}
	if hits[0].URL != "https://stocksite.example/photo/1" {
		t.Errorf("unexpected first hit %q", hits[0].URL)
	}
	if hits[0].Title != "A landscape" {
		t.Errorf("expected link text as title, got %q", hits[0].Title)
	}
	if hits[0].Engine != "yandex" {
		t.Errorf("expected engine tag yandex, got %q", hits[0].Engine)
	}
}

func TestHarvestLinksCapped(t *testing.T) {
	var html []byte
	html = append(html, []byte("<html><body>")...)
	for i := 0; i < perEngineLimit+10; i++ {
		html = append(html, []byte(fmt.Sprintf(`<a href="https://site.example/%d">x</a>`, i))...)
	}
	html = append(html, []byte("</body></html>")...)

	hits, err := harvestLinks(html, "bing", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != perEngineLimit {
		t.Errorf("expected %d hits, got %d", perEngineLimit, len(hits))
	}
}

func TestGoogleRequiresImageURL(t *testing.T) {
	g := NewGoogle(nil, "")
	if _, err := g.Search(context.Background(), attribution.ImageRef{Data: []byte{1, 2, 3}}); err == nil {
		t.Fatal("expected error for bytes-only reference")
	}
}
