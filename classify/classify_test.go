package classify

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClassify(t *testing.T) {
	registry := NewRegistry()

	testCases := []struct {
		name    string
		url     string
		wantKey string
		wantOK  bool
	}{
		{"getty", "https://www.gettyimages.com/detail/12345", "getty", true},
		{"istock maps to getty", "https://www.istockphoto.com/photo/x", "getty", true},
		{"unsplash", "https://unsplash.com/photos/abc123", "unsplash", true},
		{"unsplash cdn", "https://images.unsplash.com/photo-abc", "unsplash", true},
		{"pexels subdomain", "https://de.pexels.com/photo/x-1", "pexels", true},
		{"flickr static", "https://live.staticflickr.com/65535/1_b.jpg", "flickr", true},
		{"reuters", "https://www.reuters.com/world/photo-story", "news", true},
		{"unknown blog", "https://example.com/post", "", false},
		{"not a suffix match", "https://notpexels.com/photo", "", false},
		{"invalid url", "://bad", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src, ok := registry.Classify(tc.url)
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v, got %v", tc.wantOK, ok)
			}
			if ok && src.Key != tc.wantKey {
				t.Errorf("expected key %q, got %q", tc.wantKey, src.Key)
			}
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	registry := NewRegistry()
	sources := registry.Sources()
	if len(sources) == 0 {
		t.Fatal("expected built-in sources")
	}
	for i, src := range sources {
		if src.Priority != i {
			t.Errorf("source %q has priority %d at index %d", src.Key, src.Priority, i)
		}
	}
}

func TestPageURL(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{
			"pexels cdn",
			"https://images.pexels.com/photos/1234567/pexels-photo-1234567.jpeg",
			"https://www.pexels.com/photo/1234567/",
		},
		{
			"unsplash cdn",
			"https://images.unsplash.com/photo-1518791841217-8f162f1e1131",
			"https://unsplash.com/photos/1518791841217-8f162f1e1131",
		},
		{
			"getty media",
			"https://media.gettyimages.com/id/1234567/photo/x.jpg",
			"https://www.gettyimages.com/detail/1234567",
		},
		{
			"no rule",
			"https://example.com/image.jpg",
			"https://example.com/image.jpg",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PageURL(tc.in); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestPhotoID(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"pexels page", "https://www.pexels.com/photo/city-lights-1234567/", "pexels_1234567"},
		{"flickr page", "https://www.flickr.com/photos/someone/9876543210/", "flickr_9876543210"},
		{"getty detail", "https://www.gettyimages.com/detail/555", "getty_555"},
		{"no id", "https://example.com/post", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PhotoID(tc.in); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestPhotoIDSharedAcrossURLShapes(t *testing.T) {
	// A CDN image URL and its photo page must resolve to the same ID so the
	// orchestrator scrapes the photo only once.
	page := PhotoID("https://www.pexels.com/photo/city-lights-1234567/")
	cdn := PhotoID("https://images.pexels.com/photos/1234567/pexels-photo-1234567.jpeg")
	if page == "" || page != cdn {
		t.Errorf("expected matching ids, got %q and %q", page, cdn)
	}
}

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	content := `sources:
  - key: natgeo
    domains:
      - nationalgeographic.com
    expected_fields:
      - creator
      - title
      - copyright
  - key: minimal
    domains:
      - minimal.example
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	registry := NewRegistry()
	builtins := len(registry.Sources())
	if err := registry.LoadSources(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src, ok := registry.Classify("https://www.nationalgeographic.com/photo/1")
	if !ok {
		t.Fatal("expected natgeo to classify")
	}
	if src.Key != "natgeo" {
		t.Errorf("expected key natgeo, got %q", src.Key)
	}
	if src.Priority < builtins {
		t.Errorf("custom source priority %d should come after %d built-ins", src.Priority, builtins)
	}
	if src.APICapable {
		t.Error("custom sources are scrape-only")
	}

	min, ok := registry.Classify("https://minimal.example/x")
	if !ok {
		t.Fatal("expected minimal source to classify")
	}
	if len(min.ExpectedFields) == 0 {
		t.Error("expected default expected_fields")
	}
}

func TestLoadSourcesMissingFile(t *testing.T) {
	registry := NewRegistry()
	if err := registry.LoadSources("/does/not/exist.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
