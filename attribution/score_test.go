package attribution

import (
	"testing"
)

func TestScoreBands(t *testing.T) {
	expected := []string{"creator", "title", "license", "description"}

	testCases := []struct {
		name string
		cand Candidate
		want float64
	}{
		{
			"embedded metadata",
			Candidate{Result: Result{Creator: "Jane"}, Class: ClassEmbedded},
			1.0,
		},
		{
			"api backed",
			Candidate{Result: Result{Creator: "Jane"}, Class: ClassAPI},
			0.9,
		},
		{
			"scrape all fields",
			Candidate{
				Result:         Result{Creator: "Jane", Title: "T", License: "L", Description: "long enough"},
				Class:          ClassScrape,
				ExpectedFields: expected,
			},
			0.85,
		},
		{
			"scrape half fields",
			Candidate{
				Result:         Result{Creator: "Jane", Title: "T"},
				Class:          ClassScrape,
				ExpectedFields: expected,
			},
			0.725,
		},
		{
			"scrape no expected fields known",
			Candidate{Result: Result{Creator: "Jane"}, Class: ClassScrape},
			0.6,
		},
		{
			"unclassified",
			Candidate{Result: Result{Creator: "Jane", Title: "T", License: "L"}, Class: ClassUnclassified},
			0.3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.cand)
			if got < tc.want-1e-9 || got > tc.want+1e-9 {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
			if got < 0 || got > 1 {
				t.Errorf("confidence %v outside [0,1]", got)
			}
		})
	}
}

func TestAggregateMergesDuplicates(t *testing.T) {
	a := Candidate{
		Result: Result{
			Creator:      "Jane Doe",
			SourceDomain: "pexels",
			SourceURL:    "https://www.pexels.com/photo/1234/",
		},
		Class: ClassAPI,
	}
	b := Candidate{
		Result: Result{
			Creator:      "Jane Doe",
			Title:        "City Lights",
			License:      "Pexels License",
			Keywords:     []string{"city", "night"},
			SourceDomain: "pexels",
			// Same page reached with query noise and no trailing slash.
			SourceURL: "https://pexels.com/photo/1234?utm_source=x",
		},
		Class:          ClassScrape,
		ExpectedFields: []string{"creator", "title"},
	}

	out := Aggregate([]Candidate{a, b}, 10)
	if len(out) != 1 {
		t.Fatalf("expected 1 merged result, got %d", len(out))
	}
	merged := out[0]
	if merged.Confidence != 0.9 {
		t.Errorf("expected max confidence 0.9, got %v", merged.Confidence)
	}
	if merged.Title != "City Lights" {
		t.Errorf("expected title union, got %q", merged.Title)
	}
	if merged.License != "Pexels License" {
		t.Errorf("expected license union, got %q", merged.License)
	}
	if len(merged.Keywords) != 2 {
		t.Errorf("expected keyword union, got %v", merged.Keywords)
	}
}

func TestAggregateNeverOverwritesPopulatedFields(t *testing.T) {
	a := Candidate{
		Result: Result{
			Creator:      "Jane Doe",
			Title:        "Original Title",
			SourceDomain: "getty",
			SourceURL:    "https://www.gettyimages.com/detail/1",
		},
		Class: ClassAPI,
	}
	b := Candidate{
		Result: Result{
			Creator:      "J. Doe",
			Title:        "Other Title",
			SourceDomain: "getty",
			SourceURL:    "https://www.gettyimages.com/detail/1",
		},
		Class: ClassScrape,
	}

	out := Aggregate([]Candidate{a, b}, 10)
	if len(out) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out))
	}
	if out[0].Creator != "Jane Doe" || out[0].Title != "Original Title" {
		t.Errorf("higher-confidence fields were overwritten: %+v", out[0])
	}
}

func TestAggregateOrdering(t *testing.T) {
	cands := []Candidate{
		{Result: Result{Creator: "c", SourceDomain: "news", SourceURL: "https://apnews.com/a"}, Class: ClassScrape, Priority: 7},
		{Result: Result{Creator: "a", SourceDomain: "iptc_embedded"}, Class: ClassEmbedded},
		{Result: Result{Creator: "b", SourceDomain: "pexels", SourceURL: "https://pexels.com/photo/1"}, Class: ClassAPI, Priority: 3},
		{Result: Result{Creator: "d", SourceDomain: "blog", SourceURL: "https://blog.example/x"}, Class: ClassUnclassified},
	}

	out := Aggregate(cands, 10)
	if len(out) != 4 {
		t.Fatalf("expected 4 results, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].Confidence > out[i-1].Confidence {
			t.Fatalf("results not ordered by confidence: %v then %v", out[i-1].Confidence, out[i].Confidence)
		}
	}
	if out[0].SourceDomain != "iptc_embedded" {
		t.Errorf("expected embedded first, got %q", out[0].SourceDomain)
	}
	if out[len(out)-1].SourceDomain != "blog" {
		t.Errorf("expected unclassified last, got %q", out[len(out)-1].SourceDomain)
	}
}

func TestAggregateTieBreakByClassThenPriority(t *testing.T) {
	// Same confidence band: two API results, then class beats priority.
	cands := []Candidate{
		{Result: Result{Creator: "x", SourceDomain: "flickr", SourceURL: "https://flickr.com/photos/a/1"}, Class: ClassAPI, Priority: 5},
		{Result: Result{Creator: "y", SourceDomain: "pexels", SourceURL: "https://pexels.com/photo/2"}, Class: ClassAPI, Priority: 3},
	}
	out := Aggregate(cands, 10)
	if out[0].SourceDomain != "pexels" {
		t.Errorf("expected lower priority value first, got %q", out[0].SourceDomain)
	}
}

func TestAggregateTruncates(t *testing.T) {
	var cands []Candidate
	for i := 0; i < 5; i++ {
		cands = append(cands, Candidate{
			Result: Result{
				Creator:      "someone",
				SourceDomain: "news",
				SourceURL:    "https://apnews.com/" + string(rune('a'+i)),
			},
			Class: ClassScrape,
		})
	}
	out := Aggregate(cands, 2)
	if len(out) != 2 {
		t.Errorf("expected truncation to 2, got %d", len(out))
	}
}

func TestResultID(t *testing.T) {
	a := ResultID("pexels", "https://pexels.com/photo/1")
	b := ResultID("pexels", "https://pexels.com/photo/1")
	c := ResultID("pexels", "https://pexels.com/photo/2")
	if a != b {
		t.Error("expected deterministic IDs")
	}
	if a == c {
		t.Error("expected distinct IDs for distinct URLs")
	}
	if len(a) != 12 || a[:4] != "img_" {
		t.Errorf("unexpected id shape %q", a)
	}
}
