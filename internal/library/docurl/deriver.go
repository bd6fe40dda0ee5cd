// Package docurl maps repository file paths to canonical public documentation URLs.
//
// Documentation trees follow the Antora-style convention
// `{product}/modules/ROOT/pages/{subpath...}/{filename}.ext`.
package docurl

import (
	"path"
	"strings"
	"unicode/utf8"
)

// defaultProductMappings rewrites raw product keys into the URL segments the
// public documentation site actually serves. Tenant overrides are merged on top.
var defaultProductMappings = map[string]string{
	"catbm":   "general",
	"cn-docs": "canton-network",
}

// productDisplayNames supplies human-readable product names for prose and the
// smart index. Kept separate from defaultProductMappings: one controls URL
// segments, the other controls display text.
var productDisplayNames = map[string]string{
	"canton":    "Canton",
	"catbm":     "General Documentation",
	"cn-docs":   "Canton Network",
	"general":   "General Documentation",
	"validator": "Validator Operations",
}

// Deriver computes source URLs for one tenant's documentation tree.
type Deriver struct {
	baseURL  string
	mappings map[string]string
}

// NewDeriver merges the built-in product mappings with tenant overrides;
// overrides win. A trailing slash on docsBaseURL is normalized away.
func NewDeriver(docsBaseURL string, overrides map[string]string) *Deriver {
	mappings := make(map[string]string, len(defaultProductMappings)+len(overrides))
	for key, segment := range defaultProductMappings {
		mappings[key] = segment
	}
	for key, segment := range overrides {
		mappings[key] = segment
	}

	return &Deriver{
		baseURL:  strings.TrimRight(docsBaseURL, "/"),
		mappings: mappings,
	}
}

// SourceURL derives the canonical documentation URL for a repository-relative
// path. Returns "" when no base URL is configured or the path is empty.
func (d *Deriver) SourceURL(repoPath string) string {
	if d.baseURL == "" {
		return ""
	}

	segments := splitPath(repoPath)
	if len(segments) == 0 {
		return ""
	}

	filename := segments[len(segments)-1]
	stem := strings.TrimSuffix(filename, path.Ext(filename))
	if stem == "" {
		return ""
	}

	product := productKey(segments)
	mapped := product
	if segment, ok := d.mappings[product]; ok {
		mapped = segment
	}

	parts := []string{d.baseURL, mapped}
	// subpath is every segment strictly between "pages" and the filename
	if idx := indexOfSegment(segments, "pages"); idx >= 0 {
		parts = append(parts, segments[idx+1:len(segments)-1]...)
	}
	parts = append(parts, stem+".html")

	return strings.Join(parts, "/")
}

// ProductKey returns the raw product key for a repository path: the segment
// immediately preceding "modules", else the first segment.
func ProductKey(repoPath string) string {
	return productKey(splitPath(repoPath))
}

// DisplayName resolves a product key to its human-readable name, falling back
// to the capitalized raw key.
func DisplayName(product string) string {
	if name, ok := productDisplayNames[product]; ok {
		return name
	}
	if product == "" {
		return ""
	}

	// capitalize the first rune, not the first byte
	first, size := utf8.DecodeRuneInString(product)
	return strings.ToUpper(string(first)) + product[size:]
}

func splitPath(repoPath string) []string {
	trimmed := strings.Trim(repoPath, "/")
	if trimmed == "" {
		return nil
	}

	return strings.Split(trimmed, "/")
}

func productKey(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	if idx := indexOfSegment(segments, "modules"); idx > 0 {
		return segments[idx-1]
	}

	return segments[0]
}

func indexOfSegment(segments []string, target string) int {
	for idx, segment := range segments {
		if segment == target {
			return idx
		}
	}

	return -1
}
