package metadata

import (
	"testing"
)

func TestProbeMalformedData(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("not an image at all")},
		{"truncated jpeg", []byte{0xff, 0xd8, 0xff}},
		{"html", []byte("<html><body>nope</body></html>")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, found := Probe(tc.data); found {
				t.Error("expected no metadata")
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"20240115", "2024-01-15"},
		{"2024-01-15", "2024-01-15"},
		{"  20240115 ", "2024-01-15"},
		{"January 15", "January 15"},
		{"", ""},
	}

	for _, tc := range testCases {
		if got := normalizeDate(tc.in); got != tc.want {
			t.Errorf("normalizeDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestJoinLocation(t *testing.T) {
	testCases := []struct {
		name  string
		parts []string
		want  string
	}{
		{"all parts", []string{"Paris", "Île-de-France", "France"}, "Paris, Île-de-France, France"},
		{"missing middle", []string{"Paris", "", "France"}, "Paris, France"},
		{"none", []string{"", "", ""}, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := joinLocation(tc.parts...); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestFieldsToResultPrefersBylineOverCredit(t *testing.T) {
	f := fields{creator: "Jane Doe", credit: "AP", copyright: "© Jane Doe"}
	r := f.toResult(contentHash([]byte("image")))
	if r.Creator != "Jane Doe" {
		t.Errorf("expected byline creator, got %q", r.Creator)
	}

	f = fields{credit: "AP"}
	r = f.toResult(contentHash([]byte("image")))
	if r.Creator != "AP" {
		t.Errorf("expected credit fallback, got %q", r.Creator)
	}
	if r.SourceDomain != "iptc_embedded" {
		t.Errorf("expected iptc_embedded source, got %q", r.SourceDomain)
	}
	if r.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %v", r.Confidence)
	}
}

func TestEmbeddedResultIDFollowsImageContent(t *testing.T) {
	f := fields{creator: "Jane Doe"}
	a := f.toResult(contentHash([]byte("first image bytes")))
	b := f.toResult(contentHash([]byte("second image bytes")))
	again := f.toResult(contentHash([]byte("first image bytes")))

	if a.ID == b.ID {
		t.Errorf("different images share id %q", a.ID)
	}
	if a.ID != again.ID {
		t.Errorf("same image produced ids %q and %q", a.ID, again.ID)
	}
}

func TestTagStrings(t *testing.T) {
	testCases := []struct {
		name string
		in   any
		want int
	}{
		{"comma separated", "nature, city , sky", 3},
		{"string slice", []string{"a", "b"}, 2},
		{"any slice", []any{"a", 1, "b"}, 2},
		{"unsupported", 42, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tagStrings(tc.in); len(got) != tc.want {
				t.Errorf("expected %d values, got %v", tc.want, got)
			}
		})
	}
}
