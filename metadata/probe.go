// Package metadata extracts descriptive metadata embedded in image files
// (IPTC, EXIF, XMP). It is the fast path of attribution resolution: when the
// creator travels inside the file, no network fan-out is needed.
package metadata

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/bep/imagemeta"

	"imagecredit/attribution"
)

// fields accumulates the raw tag values we care about before they are mapped
// onto an attribution result.
type fields struct {
	creator     string
	credit      string
	copyright   string
	title       string
	description string
	keywords    []string
	date        string
	city        string
	state       string
	country     string
}

// wantedTags maps (source, tag-name) → true for every tag the probe reads.
var wantedTags = map[imagemeta.Source]map[string]bool{
	imagemeta.IPTC: {
		"Byline":          true,
		"Credit":          true,
		"CopyrightNotice": true,
		"ObjectName":      true,
		"Caption":         true,
		"Keywords":        true,
		"DateCreated":     true,
		"City":            true,
		"ProvinceState":   true,
		"CountryName":     true,
	},
	imagemeta.EXIF: {
		"Artist":           true,
		"Copyright":        true,
		"ImageDescription": true,
		"DateTimeOriginal": true,
	},
	imagemeta.XMP: {
		"Creator": true,
		"Rights":  true,
	},
}

var exifDate = regexp.MustCompile(`^(\d{4}):(\d{2}):(\d{2})`)

// Probe parses embedded metadata from raw image bytes. The boolean reports
// whether any creator, copyright or title was found. Malformed or
// unsupported data yields (zero, false) — never an error — so the probe can
// never block the pipeline.
func Probe(data []byte) (attribution.Result, bool) {
	if len(data) == 0 {
		return attribution.Result{}, false
	}

	var f fields
	err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF | imagemeta.IPTC | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			if tags, ok := wantedTags[ti.Source]; ok {
				return tags[ti.Tag]
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			f.handle(ti)
			return nil
		},
	})
	if err != nil {
		return attribution.Result{}, false
	}

	if f.creator == "" && f.copyright == "" && f.title == "" {
		return attribution.Result{}, false
	}
	return f.toResult(contentHash(data)), true
}

// contentHash identifies the probed image. Embedded results have no source
// URL, so the result ID hangs off the image bytes instead.
func contentHash(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func (f *fields) handle(ti imagemeta.TagInfo) {
	switch ti.Source {
	case imagemeta.IPTC:
		f.handleIPTC(ti)
	case imagemeta.EXIF:
		f.handleEXIF(ti)
	case imagemeta.XMP:
		f.handleXMP(ti)
	}
}

func (f *fields) handleIPTC(ti imagemeta.TagInfo) {
	switch ti.Tag {
	case "Keywords":
		f.keywords = append(f.keywords, tagStrings(ti.Value)...)
		return
	}
	s := tagString(ti.Value)
	if s == "" {
		return
	}
	switch ti.Tag {
	case "Byline":
		f.creator = s
	case "Credit":
		f.credit = s
	case "CopyrightNotice":
		f.copyright = s
	case "ObjectName":
		f.title = s
	case "Caption":
		f.description = s
	case "DateCreated":
		f.date = s
	case "City":
		f.city = s
	case "ProvinceState":
		f.state = s
	case "CountryName":
		f.country = s
	}
}

// EXIF supplements IPTC but never overrides it.
func (f *fields) handleEXIF(ti imagemeta.TagInfo) {
	s := tagString(ti.Value)
	if s == "" {
		return
	}
	switch ti.Tag {
	case "Artist":
		if f.creator == "" {
			f.creator = s
		}
	case "Copyright":
		if f.copyright == "" {
			f.copyright = s
		}
	case "ImageDescription":
		if f.description == "" {
			f.description = s
		}
	case "DateTimeOriginal":
		if f.date == "" {
			// "YYYY:MM:DD HH:MM:SS" → "YYYY-MM-DD"
			if m := exifDate.FindStringSubmatch(s); m != nil {
				f.date = m[1] + "-" + m[2] + "-" + m[3]
			}
		}
	}
}

func (f *fields) handleXMP(ti imagemeta.TagInfo) {
	s := tagString(ti.Value)
	if s == "" {
		return
	}
	switch ti.Tag {
	case "Creator":
		if f.creator == "" {
			f.creator = s
		}
	case "Rights":
		if f.copyright == "" {
			f.copyright = s
		}
	}
}

func (f *fields) toResult(imageHash string) attribution.Result {
	r := attribution.NewResult(attribution.EmbeddedSource, "")
	r.ID = attribution.ResultID(attribution.EmbeddedSource, imageHash)
	r.Creator = strings.TrimSpace(f.creator)
	if r.Creator == "" {
		r.Creator = strings.TrimSpace(f.credit)
	}
	r.Copyright = strings.TrimSpace(f.copyright)
	r.Title = strings.TrimSpace(f.title)
	r.Description = strings.TrimSpace(f.description)
	r.DateCreated = normalizeDate(f.date)
	r.Location = joinLocation(f.city, f.state, f.country)
	for _, k := range f.keywords {
		if k = strings.TrimSpace(k); k != "" {
			r.Keywords = append(r.Keywords, k)
		}
	}
	r.Confidence = 1.0
	return r
}

// normalizeDate converts IPTC YYYYMMDD and EXIF-style dates to YYYY-MM-DD.
// Anything else passes through untouched.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 8 && isDigits(s) {
		return s[:4] + "-" + s[4:6] + "-" + s[6:]
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func joinLocation(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// tagString extracts a string from a tag value. XMP values may be string or
// a list from altList/seqList.
func tagString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func tagStrings(v any) []string {
	switch val := v.(type) {
	case string:
		var out []string
		for _, k := range strings.Split(val, ",") {
			out = append(out, strings.TrimSpace(k))
		}
		return out
	case []string:
		return val
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
