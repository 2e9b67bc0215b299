package scrapers

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// imageObject is the subset of schema.org ImageObject/Photograph data the
// adapters use.
type imageObject struct {
	Creator     string
	CreatorURL  string
	Title       string
	Description string
	Date        string
	Keywords    []string
	Location    string
	License     string
}

var imageObjectTypes = map[string]bool{
	"ImageObject":  true,
	"Photograph":   true,
	"CreativeWork": true,
}

// findJSONLD walks every ld+json script on the page and returns the first
// image-like object. Stock sites embed their most reliable metadata here.
func findJSONLD(doc *goquery.Document) (imageObject, bool) {
	var found imageObject
	ok := false
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(sel.Text()), &raw); err != nil {
			return true
		}
		for _, node := range flatten(raw) {
			if obj, isImage := parseImageObject(node); isImage {
				found = obj
				ok = true
				return false
			}
		}
		return true
	})
	return found, ok
}

func flatten(raw any) []map[string]any {
	switch v := raw.(type) {
	case map[string]any:
		return []map[string]any{v}
	case []any:
		var out []map[string]any
		for _, item := range v {
			if m, isMap := item.(map[string]any); isMap {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func parseImageObject(node map[string]any) (imageObject, bool) {
	typ, _ := node["@type"].(string)
	if !imageObjectTypes[typ] {
		return imageObject{}, false
	}

	var obj imageObject
	author := node["author"]
	if author == nil {
		author = node["creator"]
	}
	switch a := author.(type) {
	case map[string]any:
		obj.Creator = cleanText(str(a["name"]))
		obj.CreatorURL = str(a["url"])
	case string:
		obj.Creator = cleanText(a)
	}

	obj.Title = cleanText(str(node["name"]))
	if obj.Title == "" {
		obj.Title = cleanText(str(node["headline"]))
	}
	obj.Description = str(node["description"])

	for _, key := range []string{"dateCreated", "uploadDate", "datePublished"} {
		if d := str(node[key]); len(d) >= 10 {
			obj.Date = d[:10]
			break
		}
	}

	switch kw := node["keywords"].(type) {
	case string:
		for _, k := range strings.Split(kw, ",") {
			if k = strings.TrimSpace(k); k != "" && len(obj.Keywords) < maxKeywords {
				obj.Keywords = append(obj.Keywords, k)
			}
		}
	case []any:
		for _, item := range kw {
			if s, isStr := item.(string); isStr && len(obj.Keywords) < maxKeywords {
				obj.Keywords = append(obj.Keywords, s)
			}
		}
	}

	switch loc := node["contentLocation"].(type) {
	case map[string]any:
		obj.Location = str(loc["name"])
	case string:
		obj.Location = loc
	}

	obj.License = str(node["license"])
	return obj, true
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
