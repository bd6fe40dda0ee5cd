package asciidoc

import (
	"fmt"
	"strings"
)

// sourceMarker detects an already-injected source line, keeping injection
// idempotent under repeated application.
const sourceMarker = "> **Source:**"

// InjectProvenance inserts the product-context sentence and the source link
// immediately after the first level-1 heading. Both insertions are idempotent:
// content already carrying them passes through unchanged.
func InjectProvenance(content string, prov Provenance) string {
	out := content

	var contextSentence string
	if prov.ProductContext != "" {
		contextSentence = fmt.Sprintf("This document is part of the `%s` documentation.", prov.ProductContext)
		if !strings.Contains(out, contextSentence) {
			out = insertAfterHeading(out, contextSentence)
		}
	}

	if prov.SourceURL != "" && !strings.Contains(out, sourceMarker) {
		sourceLine := fmt.Sprintf("%s [%s](%s)", sourceMarker, prov.SourceURL, prov.SourceURL)
		out = insertAfterLine(out, contextSentence, sourceLine)
	}

	return out
}

// insertAfterHeading places line after the first `# ` heading, separated by a
// blank line, or at the top when the document has no level-1 heading.
func insertAfterHeading(content, line string) string {
	lines := strings.Split(content, "\n")
	for idx, existing := range lines {
		if strings.HasPrefix(existing, "# ") {
			inserted := make([]string, 0, len(lines)+2)
			inserted = append(inserted, lines[:idx+1]...)
			inserted = append(inserted, "", line)
			inserted = append(inserted, lines[idx+1:]...)
			return strings.Join(inserted, "\n")
		}
	}

	return line + "\n\n" + content
}

// insertAfterLine places line after the first line containing anchor, falling
// back to the heading position when the anchor is absent.
func insertAfterLine(content, anchor, line string) string {
	if anchor == "" {
		return insertAfterHeading(content, line)
	}

	lines := strings.Split(content, "\n")
	for idx, existing := range lines {
		if strings.Contains(existing, anchor) {
			inserted := make([]string, 0, len(lines)+2)
			inserted = append(inserted, lines[:idx+1]...)
			inserted = append(inserted, "", line)
			inserted = append(inserted, lines[idx+1:]...)
			return strings.Join(inserted, "\n")
		}
	}

	return insertAfterHeading(content, line)
}
